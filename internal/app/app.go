package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"NewsRiskAgent/internal/analysis"
	"NewsRiskAgent/internal/config"
	"NewsRiskAgent/internal/infrastructure/enrichment"
	"NewsRiskAgent/internal/infrastructure/llm"
	"NewsRiskAgent/internal/infrastructure/parser"
	"NewsRiskAgent/internal/infrastructure/report"
	"NewsRiskAgent/internal/infrastructure/scheduler"
	"NewsRiskAgent/internal/infrastructure/storage"
	"NewsRiskAgent/internal/infrastructure/telegram"
	"NewsRiskAgent/internal/logging"
	"NewsRiskAgent/internal/ports"
	"NewsRiskAgent/internal/scanner"
	"NewsRiskAgent/internal/usecase"
)

// Options are command-line adjustments layered over configuration.
type Options struct {
	// NoLLM forces the keyword strategy even when an API key is configured.
	NoLLM bool
	// Workers overrides analysis.workers when positive.
	Workers int
	// Out receives console summaries; defaults to stdout.
	Out io.Writer
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.SQLRepository
	engine   *analysis.Engine
	pipeline *usecase.Pipeline
	console  *report.Console
	closers  []func(context.Context) error
}

// New opens the store and builds every adapter named by cfg.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	a := &Application{cfg: cfg, logger: baseLogger, console: report.NewConsole(out)}

	if cfg.Telemetry.StdoutTraces {
		shutdown, err := initTracing(os.Stderr)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, shutdown)
	}

	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, func(context.Context) error { return store.Close() })

	backend, err := a.completionBackend(opts)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	var entities ports.EntityExtractor
	if cfg.Enrichment.URL != "" {
		entities = enrichment.NewClient(cfg.Enrichment.URL, cfg.Enrichment.APIKey)
	}

	workers := cfg.Analysis.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	a.engine = analysis.NewEngine(analysis.EngineDeps{
		Backend:         backend,
		Entities:        entities,
		GeographicScope: cfg.Analysis.GeographicScope,
		Generation: analysis.GenerationOptions{
			Temperature:     cfg.LLM.Temperature,
			MaxOutputTokens: cfg.LLM.MaxTokens,
			Timeout:         cfg.LLM.Timeout,
		},
		Workers: workers,
		Logger:  baseLogger.With("component", "engine"),
	})

	registry := scanner.NewRegistry(
		parser.NewHTMLScanner(nil),
		parser.NewRSSScanner(nil),
	)
	source := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID); tg.Configured() {
		notifier = tg
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:      source,
		Articles:    store,
		Assessments: store,
		Analyzer:    a.engine,
		Reports:     report.NewFileWriter(cfg.Reports.Dir),
		Notifier:    notifier,
		Logger:      baseLogger.With("component", "pipeline"),
		Now:         a.now,
	})

	return a, nil
}

// completionBackend returns nil (keyword strategy) unless an API key is set and NoLLM is off.
// The nil must stay an untyped interface so the engine sees no backend.
func (a *Application) completionBackend(opts Options) (ports.CompletionBackend, error) {
	if opts.NoLLM || !a.cfg.LLM.Configured() {
		return nil, nil
	}
	backend, err := llm.NewOpenAIBackend(a.cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm backend: %w", err)
	}
	return backend, nil
}

// StrategyName reports the analysis strategy selected at startup.
func (a *Application) StrategyName() string {
	return a.engine.StrategyName()
}

// Scrape fetches today's articles into the store and prints store statistics.
func (a *Application) Scrape(ctx context.Context) error {
	articles, err := a.pipeline.Scrape(ctx, a.now())
	if err != nil {
		return err
	}
	a.logger.Info("scrape finished", "articles", len(articles))
	return a.printStatistics(ctx)
}

// Risk assesses articles stored within the lookback window.
func (a *Application) Risk(ctx context.Context, force bool) error {
	result, err := a.pipeline.AnalyzeStored(ctx, a.since(), force)
	if err != nil {
		return err
	}
	return a.console.RenderSummary(result.Summary)
}

// Report rebuilds the report document from assessments within the lookback window.
func (a *Application) Report(ctx context.Context) error {
	result, err := a.pipeline.Report(ctx, a.since())
	if err != nil {
		return err
	}
	return a.console.RenderSummary(result.Summary)
}

// Run performs one full pipeline execution.
func (a *Application) Run(ctx context.Context) error {
	result, err := a.pipeline.ProcessDay(ctx, a.now())
	if err != nil {
		return err
	}
	return a.console.RenderSummary(result.Summary)
}

// Schedule runs the pipeline on the configured cron expression until ctx is cancelled,
// serving Prometheus metrics meanwhile.
func (a *Application) Schedule(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	next, err := driver.NextRun(a.now())
	if err != nil {
		return err
	}

	srv := a.metricsServer()
	if srv != nil {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server stopped", "addr", srv.Addr, "error", err)
			}
		}()
	}

	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "next_run", next)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if srv != nil {
		_ = srv.Shutdown(shutdownCtx)
	}
	return sched.Stop(shutdownCtx)
}

func (a *Application) metricsServer() *http.Server {
	if a.cfg.Metrics.Addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// Close releases the store and flushes telemetry.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *Application) printStatistics(ctx context.Context) error {
	stats, err := a.pipeline.Statistics(ctx)
	if err != nil {
		return err
	}
	return a.console.RenderStatistics(stats)
}

func (a *Application) now() time.Time {
	return time.Now().In(a.cfg.Scheduler.Location())
}

func (a *Application) since() time.Time {
	hours := a.cfg.Analysis.LookbackHours
	if hours <= 0 {
		hours = 24
	}
	return a.now().Add(-time.Duration(hours) * time.Hour)
}
