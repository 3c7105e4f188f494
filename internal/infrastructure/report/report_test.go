package report

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRiskAgent/internal/domain"
)

func sampleSummary() domain.Summary {
	high := domain.Assessment{
		ArticleID:          "abc",
		ArticleTitle:       "Military coup attempt reported as militant groups riot during deep recession <live>",
		RiskLevel:          domain.LevelHigh,
		RiskCategories:     []domain.Category{domain.CategoryPoliticalInstability, domain.CategoryCivilUnrest, domain.CategoryTerrorism},
		Confidence:         0.6,
		RecommendedActions: []string{"Alert senior analysts immediately"},
	}
	return domain.Summary{
		Timestamp:             time.Date(2025, time.November, 8, 6, 0, 0, 0, time.UTC),
		TotalArticlesAnalyzed: 2,
		RiskDistribution: domain.Distribution{
			domain.LevelNone: 1, domain.LevelLow: 0, domain.LevelMedium: 0, domain.LevelHigh: 1, domain.LevelCritical: 0,
		},
		TopRiskCategories: []domain.CategoryCount{
			{Category: domain.CategoryPoliticalInstability, Count: 1},
		},
		HighPriorityCount:    1,
		HighPriorityArticles: []domain.Assessment{high},
		AverageConfidence:    0.45,
	}
}

func TestFileWriterWriteReport(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "reports")
	w := NewFileWriter(dir)

	path, err := w.WriteReport(context.Background(), domain.Report{RunID: "run-1", Summary: sampleSummary()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<live>")

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.JSONEq(t, `[]`, string(doc["detailed_assessments"]))

	var summary map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["summary"], &summary))
	assert.JSONEq(t, `{"None":1,"Low":0,"Medium":0,"High":1,"Critical":0}`, string(summary["risk_distribution"]))
	assert.JSONEq(t, `[["Political Instability",1]]`, string(summary["top_risk_categories"]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileWriterCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileWriter(t.TempDir()).WriteReport(ctx, domain.Report{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestConsoleRenderSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).RenderSummary(sampleSummary()))

	out := buf.String()
	assert.Contains(t, out, "RISK ANALYSIS SUMMARY")
	assert.Contains(t, out, "Total Articles Analyzed: 2")
	assert.Contains(t, out, "Average Confidence: 45%")
	assert.Contains(t, out, "High: 1")
	assert.Contains(t, out, "Political Instability: 1 articles")
	assert.Contains(t, out, "1. Military coup attempt reported as militant groups riot durin...")
	assert.Contains(t, out, "Categories: Political Instability, Civil Unrest\n")
	assert.Contains(t, out, "Actions: Alert senior analysts immediately")
}

func TestConsoleRenderStatistics(t *testing.T) {
	t.Parallel()

	oldest := time.Date(2025, time.November, 7, 6, 0, 0, 0, time.UTC)
	newest := time.Date(2025, time.November, 8, 6, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).RenderStatistics(domain.SourceStats{
		Total:    3,
		BySource: map[string]int{"Daily Mirror": 1, "Ada Derana": 2},
		Oldest:   &oldest,
		Newest:   &newest,
	}))

	out := buf.String()
	assert.Contains(t, out, "Total Articles: 3")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Ada Derana: 2")), bytes.Index(buf.Bytes(), []byte("Daily Mirror: 1")))
	assert.Contains(t, out, "2025-11-07 06:00 and 2025-11-08 06:00")
}
