package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/ports"
	"NewsRiskAgent/internal/reasoning"
)

var errAnalysisPanic = errors.New("analysis panicked")

// EngineDeps wires the engine. A nil Backend selects the keyword strategy.
type EngineDeps struct {
	Backend         ports.CompletionBackend
	Entities        ports.EntityExtractor
	Indicators      *domain.IndicatorTable
	GeographicScope string
	Generation      GenerationOptions
	MaxIterations   int
	Workers         int
	Logger          *slog.Logger
}

// Engine is the per-article orchestrator. The strategy is chosen once, at construction.
type Engine struct {
	strategy      Strategy
	entities      ports.EntityExtractor
	maxIterations int
	workers       int
	logger        *slog.Logger
}

// NewEngine selects the generative strategy when a backend is configured, otherwise keyword detection.
func NewEngine(deps EngineDeps) *Engine {
	table := domain.DefaultIndicators()
	if deps.Indicators != nil {
		table = *deps.Indicators
	}

	keyword := NewKeywordStrategy(table, deps.GeographicScope, componentLogger(deps.Logger, "strategy.keyword"))

	var strategy Strategy = keyword
	if deps.Backend != nil {
		strategy = NewGenerativeStrategy(deps.Backend, keyword, deps.GeographicScope, deps.Generation,
			componentLogger(deps.Logger, "strategy.generative"))
	}

	maxIterations := deps.MaxIterations
	if maxIterations <= 0 {
		maxIterations = reasoning.DefaultMaxIterations
	}
	workers := deps.Workers
	if workers <= 0 {
		workers = 1
	}

	e := &Engine{
		strategy:      strategy,
		entities:      deps.Entities,
		maxIterations: maxIterations,
		workers:       workers,
		logger:        deps.Logger,
	}
	e.info("risk engine ready", "strategy", strategy.Name(), "workers", workers)
	return e
}

// StrategyName reports which strategy the engine selected.
func (e *Engine) StrategyName() string {
	return e.strategy.Name()
}

// Analyze builds one assessment on a fresh trace and attaches the trace to it.
func (e *Engine) Analyze(ctx context.Context, article domain.Article) (domain.Assessment, error) {
	if article.URL == "" {
		return domain.Assessment{}, fmt.Errorf("analyze %q: %w", article.Title, ErrInvalidArticle)
	}
	if err := ctx.Err(); err != nil {
		return domain.Assessment{}, fmt.Errorf("analyze %s: %w", article.URL, err)
	}

	ctx, span := startAnalyzeSpan(ctx, article, e.strategy.Name())
	defer span.End()

	trace := reasoning.NewTrace(e.maxIterations, componentLogger(e.logger, "reasoning"))

	assessment, err := e.strategy.Analyze(ctx, article, trace)
	if err != nil {
		endSpanWithError(span, err)
		return domain.Assessment{}, fmt.Errorf("analyze %s: %w", article.URL, err)
	}

	if len(assessment.KeyEntities) == 0 && e.entities != nil {
		entities, eErr := e.entities.ExtractEntities(ctx, article)
		if eErr != nil {
			e.warn("entity extraction failed", "url", article.URL, "error", eErr)
		} else if len(entities) > 0 {
			assessment.KeyEntities = entities
		}
	}

	assessment.ReasoningTrace = trace.Records()

	setAnalyzeSpanResult(span, assessment)
	assessmentsTotal.WithLabelValues(assessment.RiskLevel.String(), e.strategy.Name()).Inc()
	return assessment, nil
}

func (e *Engine) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Engine) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

func (e *Engine) logError(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Error(msg, args...)
	}
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With("component", component)
}
