package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "NEWS_RISK_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv    = "OPENAI_MODEL"
	openAIBaseURLEnv  = "OPENAI_BASE_URL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	LLM           LLMConfig          `yaml:"llm"`
	Analysis      AnalysisConfig     `yaml:"analysis"`
	Enrichment    EnrichmentConfig   `yaml:"enrichment"`
	Notifications NotificationConfig `yaml:"notifications"`
	Reports       ReportsConfig      `yaml:"reports"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Telemetry     TelemetryConfig    `yaml:"telemetry"`
	Sites         []SiteConfig       `yaml:"sites"`
}

// LoggingConfig selects slog level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig describes the store; driver is sqlite or postgres.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig defines when the pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LLMConfig defines how to contact the generative analysis backend.
// The backend counts as configured only when APIKey is set. A nil Temperature is unset; 0 is a valid value.
type LLMConfig struct {
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	Temperature *float32      `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Configured reports whether the generative strategy can be selected.
func (l LLMConfig) Configured() bool {
	return l.APIKey != ""
}

// AnalysisConfig tunes the risk engine.
type AnalysisConfig struct {
	Workers         int    `yaml:"workers"`
	GeographicScope string `yaml:"geographicScope"`
	LookbackHours   int    `yaml:"lookbackHours"`
}

// EnrichmentConfig points at the optional entity extraction service.
type EnrichmentConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"apiKey"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// ReportsConfig sets where report documents are written.
type ReportsConfig struct {
	Dir string `yaml:"dir"`
}

// MetricsConfig sets the Prometheus listen address for long-running modes.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// TelemetryConfig toggles trace export to stdout.
type TelemetryConfig struct {
	StdoutTraces bool `yaml:"stdoutTraces"`
}

// SiteConfig describes a single news site with its scanner strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig holds the concrete endpoints to crawl (section pages or feeds).
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration from the env-provided path (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile reads YAML configuration from path (if non-empty) and applies environment overrides.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(openAIBaseURLEnv); v != "" {
		c.LLM.BaseURL = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.LLM.BaseURL != "" {
		base.LLM.BaseURL = override.LLM.BaseURL
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Temperature != nil {
		base.LLM.Temperature = override.LLM.Temperature
	}
	if override.LLM.MaxTokens > 0 {
		base.LLM.MaxTokens = override.LLM.MaxTokens
	}
	if override.LLM.Timeout > 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}

	if override.Analysis.Workers > 0 {
		base.Analysis.Workers = override.Analysis.Workers
	}
	if override.Analysis.GeographicScope != "" {
		base.Analysis.GeographicScope = override.Analysis.GeographicScope
	}
	if override.Analysis.LookbackHours > 0 {
		base.Analysis.LookbackHours = override.Analysis.LookbackHours
	}

	if override.Enrichment.URL != "" {
		base.Enrichment.URL = override.Enrichment.URL
	}
	if override.Enrichment.APIKey != "" {
		base.Enrichment.APIKey = override.Enrichment.APIKey
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Reports.Dir != "" {
		base.Reports.Dir = override.Reports.Dir
	}
	if override.Metrics.Addr != "" {
		base.Metrics.Addr = override.Metrics.Addr
	}
	if override.Telemetry.StdoutTraces {
		base.Telemetry.StdoutTraces = true
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Database:  DatabaseConfig{Driver: "sqlite", DSN: "data/news_risk.db"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		LLM: LLMConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			APIKey:      "",
			Temperature: float32Ptr(0.3),
			MaxTokens:   1000,
			Timeout:     60 * time.Second,
		},
		Analysis: AnalysisConfig{Workers: 1, GeographicScope: "Sri Lanka", LookbackHours: 24},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Reports: ReportsConfig{Dir: "reports"},
		Metrics: MetricsConfig{Addr: ":9090"},
		Sites: []SiteConfig{
			{
				Name:    "Ada Derana",
				Scanner: "html",
				Categories: []CategoryConfig{
					{Name: "news", URL: "https://www.adaderana.lk/news.php"},
				},
				Options: map[string]string{
					"headlines": `li a[href*="/news/"]`,
					"timestamp": "time",
				},
			},
			{
				Name:    "Daily Mirror",
				Scanner: "html",
				Categories: []CategoryConfig{
					{Name: "front", URL: "https://www.dailymirror.lk/"},
				},
				Options: map[string]string{
					"headlines": "h3.title a, h2.entry-title a, div.col_item_mid h4 a, h4 a",
					"timestamp": "time.entry-date",
				},
			},
			{
				Name:    "News First",
				Scanner: "html",
				Categories: []CategoryConfig{
					{Name: "front", URL: "https://www.newsfirst.lk/"},
				},
				Options: map[string]string{
					"headlines": `div.ng-star-inserted a[href^="/20"]`,
					"timestamp": "span.date",
				},
			},
			{
				Name:    "Colombo Gazette",
				Scanner: "rss",
				Categories: []CategoryConfig{
					{Name: "latest", URL: "https://colombogazette.com/feed/"},
				},
			},
		},
	}
}

func float32Ptr(v float32) *float32 {
	return &v
}
