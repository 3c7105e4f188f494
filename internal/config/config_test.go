package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		databaseDSNEnv, openAIAPIKeyEnv, openAIModelEnv, openAIBaseURLEnv,
		telegramTokenEnv, telegramChatIDEnv, logLevelEnv,
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadFile("")

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "0 6 * * *", cfg.Scheduler.CronExpression)
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "Sri Lanka", cfg.Analysis.GeographicScope)
	assert.Equal(t, 24, cfg.Analysis.LookbackHours)
	assert.False(t, cfg.LLM.Configured())
	require.Len(t, cfg.Sites, 4)
	names := map[string]string{}
	for _, site := range cfg.Sites {
		require.NotEmpty(t, site.Categories, site.Name)
		names[site.Name] = site.Scanner
	}
	assert.Equal(t, map[string]string{
		"Ada Derana":      "html",
		"Daily Mirror":    "html",
		"News First":      "html",
		"Colombo Gazette": "rss",
	}, names)
}

func TestLoadFileMergesOverrides(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
database:
  driver: postgres
  dsn: postgres://risk@localhost/risk
scheduler:
  cronExpression: "30 5 * * *"
  timezone: Asia/Colombo
llm:
  model: gpt-4o
  timeout: 15s
analysis:
  workers: 4
sites:
  - name: Example Feed
    scanner: rss
    categories:
      - name: top
        url: https://news.example.lk/rss
`)

	cfg := LoadFile(path)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://risk@localhost/risk", cfg.Database.DSN)
	assert.Equal(t, "30 5 * * *", cfg.Scheduler.CronExpression)
	assert.Equal(t, "Asia/Colombo", cfg.Scheduler.Location().String())
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	require.NotNil(t, cfg.LLM.Temperature)
	assert.InDelta(t, 0.3, float64(*cfg.LLM.Temperature), 1e-6)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, "Sri Lanka", cfg.Analysis.GeographicScope)

	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "rss", cfg.Sites[0].Scanner)
	assert.Equal(t, "https://news.example.lk/rss", cfg.Sites[0].Categories[0].URL)
}

func TestLoadFileKeepsZeroTemperature(t *testing.T) {
	clearEnv(t)

	cfg := LoadFile(writeConfig(t, "llm:\n  temperature: 0\n"))

	require.NotNil(t, cfg.LLM.Temperature)
	assert.Zero(t, *cfg.LLM.Temperature)
}

func TestLoadFileEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(openAIAPIKeyEnv, "sk-test")
	t.Setenv(openAIModelEnv, "gpt-4.1-mini")
	t.Setenv(databaseDSNEnv, "/tmp/risk.db")
	t.Setenv(telegramTokenEnv, "token")
	t.Setenv(telegramChatIDEnv, "42")
	t.Setenv(logLevelEnv, "debug")

	cfg := LoadFile(writeConfig(t, "llm:\n  apiKey: from-file\n"))

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.True(t, cfg.LLM.Configured())
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)
	assert.Equal(t, "/tmp/risk.db", cfg.Database.DSN)
	assert.Equal(t, "token", cfg.Notifications.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Notifications.Telegram.ChatID)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFileFallsBackOnBadInput(t *testing.T) {
	clearEnv(t)

	missing := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, defaultConfig().Database, missing.Database)

	broken := LoadFile(writeConfig(t, "database: [not, a, map"))
	assert.Equal(t, defaultConfig().LLM, broken.LLM)
}

func TestLoadFileUnknownTimezone(t *testing.T) {
	clearEnv(t)

	cfg := LoadFile(writeConfig(t, "scheduler:\n  timezone: Mars/Olympus\n"))
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
}

func TestLoadUsesEnvPath(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, writeConfig(t, "reports:\n  dir: out\n"))

	assert.Equal(t, "out", Load().Reports.Dir)
}
