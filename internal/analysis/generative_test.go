package analysis

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/ports"
	"NewsRiskAgent/internal/reasoning"
)

const modelAnswer = `THOUGHT: Street protests are escalating alongside inflation.
ACTION: FLAG_RISK
OBSERVATION: Police used tear gas near the presidential palace.

Risk Level: High
Risk Categories: Civil Unrest, Economic Crisis
Confidence: 80%
Key Entities: Colombo, Central Bank
Recommended Actions: monitor, brief stakeholders`

func newGenerative(backend *stubBackend, opts GenerationOptions) *GenerativeStrategy {
	return NewGenerativeStrategy(backend, newKeyword(), "", opts, nil)
}

func TestGenerativeStrategySuccess(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{output: modelAnswer}
	trace := reasoning.NewTrace(3, nil)

	a, err := newGenerative(backend, GenerationOptions{}).Analyze(context.Background(), protestArticle, trace)
	require.NoError(t, err)

	assert.Equal(t, domain.LevelHigh, a.RiskLevel)
	assert.Equal(t, []domain.Category{domain.CategoryCivilUnrest, domain.CategoryEconomicCrisis}, a.RiskCategories)
	assert.InDelta(t, 0.8, a.Confidence, 1e-9)
	assert.Equal(t, []string{"Colombo", "Central Bank"}, a.KeyEntities)
	assert.Equal(t, modelAnswer, a.Reasoning)
	assert.Equal(t, Recommend(domain.LevelHigh, a.RiskCategories), a.RecommendedActions)
	assert.Equal(t, "Sri Lanka", a.GeographicScope)
	assert.Equal(t, protestArticle.ID(), a.ArticleID)

	steps := trace.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, "[Step 1 - THOUGHT] Analyzing article for risk indicators...", steps[0].Thought)
	assert.True(t, strings.HasPrefix(steps[0].Action, reasoning.ActionPreparePrompt))
	assert.True(t, strings.HasPrefix(steps[1].Action, reasoning.ActionAnalyzeWithLLM))
	assert.True(t, strings.HasPrefix(steps[2].Action, actionParseResponse))
	assert.True(t, strings.HasPrefix(steps[1].Thought, "[Step 2 - THOUGHT]"))
	assert.Equal(t, "[Step 3 - OBSERVATION] "+modelAnswer, steps[2].Observation)

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Contains(t, req.SystemInstruction, "Risk Categories to Consider")
	assert.Contains(t, req.UserInstruction, protestArticle.Title)
	assert.InDelta(t, float64(DefaultTemperature), float64(req.Temperature), 1e-6)
	assert.Equal(t, DefaultMaxOutputTokens, req.MaxOutputTokens)
}

func TestGenerativeStrategyPassesOptions(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{output: modelAnswer}
	temperature := float32(0.7)
	opts := GenerationOptions{Temperature: &temperature, MaxOutputTokens: 256}

	_, err := newGenerative(backend, opts).Analyze(context.Background(), protestArticle, reasoning.NewTrace(3, nil))
	require.NoError(t, err)

	require.Len(t, backend.requests, 1)
	assert.InDelta(t, 0.7, float64(backend.requests[0].Temperature), 1e-6)
	assert.Equal(t, 256, backend.requests[0].MaxOutputTokens)
}

func TestGenerativeStrategyKeepsZeroTemperature(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{output: modelAnswer}
	var zero float32

	_, err := newGenerative(backend, GenerationOptions{Temperature: &zero}).
		Analyze(context.Background(), protestArticle, reasoning.NewTrace(3, nil))
	require.NoError(t, err)

	require.Len(t, backend.requests, 1)
	assert.Zero(t, backend.requests[0].Temperature)
}

func TestGenerativeFallbackMatchesKeyword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		backend *stubBackend
		opts    GenerationOptions
	}{
		{"backend error", &stubBackend{err: errBackendDown}, GenerationOptions{}},
		{"empty completion", &stubBackend{output: "  \n "}, GenerationOptions{}},
		{"backend panic", &stubBackend{panicMsg: "boom"}, GenerationOptions{}},
		{"timeout", &stubBackend{block: true}, GenerationOptions{Timeout: 20 * time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, article := range []domain.Article{protestArticle, startupArticle, corruptionArticle} {
				genTrace := reasoning.NewTrace(3, nil)
				got, err := newGenerative(tt.backend, tt.opts).Analyze(context.Background(), article, genTrace)
				require.NoError(t, err)

				kwTrace := reasoning.NewTrace(3, nil)
				want, err := newKeyword().Analyze(context.Background(), article, kwTrace)
				require.NoError(t, err)

				assert.Equal(t, want, got)
				assert.Equal(t, kwTrace.Steps(), genTrace.Steps())
				assert.Len(t, genTrace.Steps(), 1)
			}
		})
	}
}

func TestGenerativeStrategyRespectsTraceCeiling(t *testing.T) {
	t.Parallel()

	trace := reasoning.NewTrace(2, nil)
	a, err := newGenerative(&stubBackend{output: modelAnswer}, GenerationOptions{}).
		Analyze(context.Background(), protestArticle, trace)
	require.NoError(t, err)

	assert.Equal(t, domain.LevelHigh, a.RiskLevel)
	assert.Equal(t, 2, trace.CurrentStep())
}

func TestFallbackReason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "timeout", fallbackReason(context.DeadlineExceeded))
	assert.Equal(t, "empty_response", fallbackReason(ports.ErrEmptyCompletion))
	assert.Equal(t, "empty_response", fallbackReason(fmt.Errorf("complete: %w", fmt.Errorf("no choices: %w", ports.ErrEmptyCompletion))))
	assert.Equal(t, "panic", fallbackReason(errAnalysisPanic))
	assert.Equal(t, "backend_error", fallbackReason(errBackendDown))
}
