package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"NewsRiskAgent/internal/app"
	"NewsRiskAgent/internal/config"
	"NewsRiskAgent/internal/logging"
)

type globalFlags struct {
	configPath string
	noLLM      bool
	workers    int
}

func main() {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "newsriskagent",
		Short:         "Scrape news and assess political, economic and security risk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("NEWS_RISK_CONFIG"), "path to YAML config")
	root.PersistentFlags().BoolVar(&flags.noLLM, "no-llm", false, "use keyword detection even when an API key is configured")
	root.PersistentFlags().IntVar(&flags.workers, "workers", 0, "concurrent article analyses (0 = from config)")

	root.AddCommand(
		newRunCmd(flags),
		newScrapeCmd(flags),
		newRiskCmd(flags),
		newReportCmd(flags),
		newScheduleCmd(flags),
	)

	if err := root.Execute(); err != nil {
		logging.New("error", "text").Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scrape, assess, report and notify once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.Application) error {
				return a.Run(ctx)
			})
		},
	}
}

func newScrapeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Fetch today's articles into the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.Application) error {
				return a.Scrape(ctx)
			})
		},
	}
}

func newRiskCmd(flags *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Assess stored articles from the lookback window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.Application) error {
				return a.Risk(ctx, force)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-assess articles that already have an assessment")
	return cmd
}

func newReportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Rebuild the risk report from stored assessments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.Application) error {
				return a.Report(ctx)
			})
		},
	}
}

func newScheduleCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on the configured cron expression",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.Application) error {
				return a.Schedule(ctx)
			})
		},
	}
}

func withApp(cmd *cobra.Command, flags *globalFlags, fn func(context.Context, *app.Application) error) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.LoadFile(flags.configPath)
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger, app.Options{
		NoLLM:   flags.noLLM,
		Workers: flags.workers,
		Out:     cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			logger.Warn("shutdown", "error", err)
		}
	}()

	logger.Info("starting", "command", cmd.Name(), "strategy", application.StrategyName())
	return fn(ctx, application)
}
