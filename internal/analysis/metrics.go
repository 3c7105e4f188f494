package analysis

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"NewsRiskAgent/internal/domain"
)

var tracer = otel.Tracer("newsriskagent/analysis")

var (
	// assessmentsTotal counts produced assessments.
	// Labels: level, strategy (the strategy the engine selected)
	assessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsrisk",
		Subsystem: "analysis",
		Name:      "assessments_total",
		Help:      "Total risk assessments produced",
	}, []string{"level", "strategy"})

	// fallbacksTotal counts generative analyses answered by the keyword strategy.
	// Labels: reason (backend_error, timeout, empty_response, panic)
	fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsrisk",
		Subsystem: "analysis",
		Name:      "fallbacks_total",
		Help:      "Total generative analyses that fell back to keyword detection",
	}, []string{"reason"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "newsrisk",
		Subsystem: "analysis",
		Name:      "backend_latency_seconds",
		Help:      "Generative backend call latency in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"status"})

	batchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newsrisk",
		Subsystem: "analysis",
		Name:      "batch_failures_total",
		Help:      "Articles skipped in a batch because their analysis failed",
	})
)

func startAnalyzeSpan(ctx context.Context, article domain.Article, strategy string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Engine.Analyze",
		trace.WithAttributes(
			attribute.String("article.source", article.Source),
			attribute.String("analysis.strategy", strategy),
		),
	)
}

func setAnalyzeSpanResult(span trace.Span, assessment domain.Assessment) {
	span.SetAttributes(
		attribute.String("risk.level", assessment.RiskLevel.String()),
		attribute.Int("risk.categories", len(assessment.RiskCategories)),
		attribute.Float64("risk.confidence", assessment.Confidence),
	)
}

func startBackendSpan(ctx context.Context) (context.Context, trace.Span) {
	return tracer.Start(ctx, "GenerativeStrategy.Complete")
}

func endSpanWithError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
