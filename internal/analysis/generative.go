package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/ports"
	"NewsRiskAgent/internal/reasoning"
)

const (
	generativeStrategyName = "generative"

	DefaultTemperature     float32 = 0.3
	DefaultMaxOutputTokens         = 1000
	DefaultBackendTimeout          = 60 * time.Second

	actionParseResponse = "PARSE_RESPONSE"
)

// GenerationOptions bound a single backend call.
// A nil Temperature selects DefaultTemperature; an explicit zero is sent as zero.
type GenerationOptions struct {
	Temperature     *float32
	MaxOutputTokens int
	Timeout         time.Duration
}

func (o GenerationOptions) withDefaults() GenerationOptions {
	if o.Temperature == nil {
		t := DefaultTemperature
		o.Temperature = &t
	}
	if o.MaxOutputTokens <= 0 {
		o.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultBackendTimeout
	}
	return o
}

// GenerativeStrategy asks a completion backend for an analysis and parses its text.
// Any backend or parsing failure falls back to the keyword strategy on the same trace.
type GenerativeStrategy struct {
	backend      ports.CompletionBackend
	fallback     *KeywordStrategy
	systemPrompt string
	scope        string
	opts         GenerationOptions
	logger       *slog.Logger
}

var _ Strategy = (*GenerativeStrategy)(nil)

// NewGenerativeStrategy wires the backend with its keyword fallback.
func NewGenerativeStrategy(backend ports.CompletionBackend, fallback *KeywordStrategy, scope string, opts GenerationOptions, logger *slog.Logger) *GenerativeStrategy {
	scope = scopeOrDefault(scope)
	return &GenerativeStrategy{
		backend:      backend,
		fallback:     fallback,
		systemPrompt: BuildSystemPrompt(domain.Categories(), scope),
		scope:        scope,
		opts:         opts.withDefaults(),
		logger:       logger,
	}
}

// Name identifies the strategy in logs and metrics.
func (g *GenerativeStrategy) Name() string {
	return generativeStrategyName
}

// Analyze never returns a backend error; failures are logged and answered by the fallback.
func (g *GenerativeStrategy) Analyze(ctx context.Context, article domain.Article, trace *reasoning.Trace) (domain.Assessment, error) {
	assessment, err := g.attempt(ctx, article, trace)
	if err == nil {
		return assessment, nil
	}

	g.logError("generative analysis failed, using keyword fallback", "url", article.URL, "error", err)
	fallbacksTotal.WithLabelValues(fallbackReason(err)).Inc()
	return g.fallback.Analyze(ctx, article, trace)
}

// attempt records no steps unless the backend answered and the answer parsed.
func (g *GenerativeStrategy) attempt(ctx context.Context, article domain.Article, trace *reasoning.Trace) (assessment domain.Assessment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errAnalysisPanic, r)
		}
	}()

	if g.backend == nil {
		return domain.Assessment{}, errors.New("no completion backend configured")
	}

	userPrompt := BuildAnalysisPrompt(article)
	intent := trace.Thought("Analyzing article for risk indicators...")

	started := time.Now()
	output, err := g.complete(ctx, userPrompt)
	elapsed := time.Since(started)
	if err != nil {
		backendLatency.WithLabelValues("error").Observe(elapsed.Seconds())
		return domain.Assessment{}, err
	}
	backendLatency.WithLabelValues("ok").Observe(elapsed.Seconds())

	verdict := ParseVerdict(output)

	g.record(trace, intent,
		trace.Act(reasoning.ActionPreparePrompt, map[string]any{"prompt_chars": len(userPrompt)}).String(),
		trace.Observe(fmt.Sprintf("Prepared analysis prompt for %q", article.Title)))
	g.record(trace,
		trace.Thought("Model analysis received"),
		trace.Act(reasoning.ActionAnalyzeWithLLM, map[string]any{
			"max_output_tokens": g.opts.MaxOutputTokens,
			"temperature":       *g.opts.Temperature,
		}).String(),
		trace.Observe(fmt.Sprintf("Backend answered in %s with %d characters", elapsed.Round(time.Millisecond), len(output))))
	g.record(trace,
		trace.Thought("Extracting structured verdict from model output"),
		trace.Act(actionParseResponse, map[string]any{
			"risk_level": verdict.Level.String(),
			"categories": len(verdict.Categories),
		}).String(),
		trace.Observe(output))

	return domain.Assessment{
		ArticleID:          article.ID(),
		ArticleTitle:       article.Title,
		RiskLevel:          verdict.Level,
		RiskCategories:     truncateCategories(verdict.Categories, maxAssessmentCategories),
		Reasoning:          output,
		Confidence:         verdict.Confidence,
		RecommendedActions: Recommend(verdict.Level, verdict.Categories),
		KeyEntities:        verdict.Entities,
		GeographicScope:    g.scope,
	}, nil
}

func (g *GenerativeStrategy) complete(ctx context.Context, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	ctx, span := startBackendSpan(ctx)
	defer span.End()

	output, err := g.backend.Complete(ctx, ports.CompletionRequest{
		SystemInstruction: g.systemPrompt,
		UserInstruction:   userPrompt,
		Temperature:       *g.opts.Temperature,
		MaxOutputTokens:   g.opts.MaxOutputTokens,
	})
	if err != nil {
		endSpanWithError(span, err)
		return "", fmt.Errorf("complete: %w", err)
	}
	if strings.TrimSpace(output) == "" {
		endSpanWithError(span, ports.ErrEmptyCompletion)
		return "", ports.ErrEmptyCompletion
	}
	return output, nil
}

func (g *GenerativeStrategy) record(trace *reasoning.Trace, thought, action, observation string) {
	if err := trace.Append(thought, action, observation); err != nil && g.logger != nil {
		g.logger.Warn("generative step not recorded", "error", err)
	}
}

func (g *GenerativeStrategy) logError(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Error(msg, args...)
	}
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ports.ErrEmptyCompletion):
		return "empty_response"
	case errors.Is(err, errAnalysisPanic):
		return "panic"
	default:
		return "backend_error"
	}
}
