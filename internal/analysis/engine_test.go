package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRiskAgent/internal/domain"
)

func TestNewEngineSelectsStrategy(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "keyword", NewEngine(EngineDeps{}).StrategyName())
	assert.Equal(t, "generative", NewEngine(EngineDeps{Backend: &stubBackend{}}).StrategyName())
}

func TestEngineAnalyzeAttachesTrace(t *testing.T) {
	t.Parallel()

	a, err := NewEngine(EngineDeps{}).Analyze(context.Background(), protestArticle)
	require.NoError(t, err)

	assert.Equal(t, domain.LevelMedium, a.RiskLevel)
	require.Len(t, a.ReasoningTrace, 1)
	assert.Equal(t, 0, a.ReasoningTrace[0].Step)
	assert.Equal(t, "KEYWORD_SCAN keywords_found=3 (executed)", a.ReasoningTrace[0].Action)
}

func TestEngineGenerativeTrace(t *testing.T) {
	t.Parallel()

	engine := NewEngine(EngineDeps{Backend: &stubBackend{output: modelAnswer}})
	a, err := engine.Analyze(context.Background(), protestArticle)
	require.NoError(t, err)

	require.Len(t, a.ReasoningTrace, 3)
	for i, step := range a.ReasoningTrace {
		assert.Equal(t, i, step.Step)
	}
}

func TestEngineUsesCustomIndicators(t *testing.T) {
	t.Parallel()

	table := domain.NewIndicatorTable([]domain.Indicator{
		{Category: domain.CategoryNaturalDisaster, Phrases: []string{"Series A"}},
	})
	a, err := NewEngine(EngineDeps{Indicators: &table, GeographicScope: "South Asia"}).
		Analyze(context.Background(), startupArticle)
	require.NoError(t, err)

	assert.Equal(t, domain.LevelLow, a.RiskLevel)
	assert.Equal(t, []domain.Category{domain.CategoryNaturalDisaster}, a.RiskCategories)
	assert.Equal(t, "South Asia", a.GeographicScope)
}

func TestEngineRejectsArticleWithoutURL(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(EngineDeps{}).Analyze(context.Background(), domain.Article{Title: "orphan"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArticle)
}

func TestEngineHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &stubBackend{output: modelAnswer}
	_, err := NewEngine(EngineDeps{Backend: backend}).Analyze(ctx, protestArticle)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, backend.requests)
}

func TestEngineFillsEntitiesFromExtractor(t *testing.T) {
	t.Parallel()

	extractor := &stubEntities{entities: []string{"Colombo", "Police"}}
	a, err := NewEngine(EngineDeps{Entities: extractor}).Analyze(context.Background(), protestArticle)
	require.NoError(t, err)

	assert.Equal(t, []string{"Colombo", "Police"}, a.KeyEntities)
	assert.Equal(t, 1, extractor.calls)
}

func TestEngineKeepsModelEntities(t *testing.T) {
	t.Parallel()

	extractor := &stubEntities{entities: []string{"ignored"}}
	engine := NewEngine(EngineDeps{Backend: &stubBackend{output: modelAnswer}, Entities: extractor})

	a, err := engine.Analyze(context.Background(), protestArticle)
	require.NoError(t, err)

	assert.Equal(t, []string{"Colombo", "Central Bank"}, a.KeyEntities)
	assert.Zero(t, extractor.calls)
}

func TestEngineIgnoresExtractorFailure(t *testing.T) {
	t.Parallel()

	extractor := &stubEntities{err: errors.New("service down")}
	a, err := NewEngine(EngineDeps{Entities: extractor}).Analyze(context.Background(), protestArticle)
	require.NoError(t, err)

	assert.Empty(t, a.KeyEntities)
	assert.Equal(t, domain.LevelMedium, a.RiskLevel)
}

func TestEngineAnalysisIsIndependentPerArticle(t *testing.T) {
	t.Parallel()

	engine := NewEngine(EngineDeps{})
	first, err := engine.Analyze(context.Background(), protestArticle)
	require.NoError(t, err)
	_, err = engine.Analyze(context.Background(), corruptionArticle)
	require.NoError(t, err)
	again, err := engine.Analyze(context.Background(), protestArticle)
	require.NoError(t, err)

	assert.Equal(t, first, again)
}
