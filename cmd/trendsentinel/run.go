package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"TrendSentinel/internal/classifier"
	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/pipeline"
	"TrendSentinel/internal/report"
)

const telegramRetries = 3

var noCharts bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze the configured series once and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		newAnalysis(cfg).Run(logger.WithContext(ctx))
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&noCharts, "no-charts", false, "skip PNG chart output")
}

// analysis wires one full pass: pipeline, console report and optional delivery.
type analysis struct {
	cfg      *config.Config
	runner   *pipeline.Runner
	console  *report.Console
	notifier notifier.Notifier
}

func newAnalysis(cfg *config.Config) *analysis {
	fetcher := collector.NewBCBFetcher(
		cfg.Source.BaseURL,
		model.PayloadFormat(cfg.Source.Format),
		cfg.Source.Timeout,
		cfg.RequestInterval(),
		cfg.Proxy,
	)
	logger.Info().Str("source", fetcher.Name()).Str("base_url", fetcher.BaseURL).Msg("data source ready")

	var charts pipeline.ChartWriter
	if cfg.Output.Charts && !noCharts {
		charts = report.NewChartWriter(cfg.Output.ChartDir)
	}

	a := &analysis{
		cfg:     cfg,
		runner:  pipeline.NewRunner(collector.NewCollector(fetcher), classifier.New(cfg.Analysis.MinSamples), charts),
		console: report.NewConsole(os.Stdout, report.ResolveColors(cfg.Output.Color)),
	}
	if cfg.TelegramEnabled() {
		a.notifier = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}
	return a
}

// Run performs one analysis pass. Per-series failures end up in the report;
// only configuration problems are logged as errors here.
func (a *analysis) Run(ctx context.Context) {
	log := zerolog.Ctx(ctx)
	reqs, err := a.cfg.Requests(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("build series requests")
		return
	}

	store := a.runner.Run(ctx, reqs)
	if err := a.console.Render(store); err != nil {
		log.Error().Err(err).Str("run_id", store.RunID).Msg("render report")
	}

	if a.notifier == nil {
		return
	}
	if err := a.notifier.SendWithRetry(ctx, report.FormatSummary(store), telegramRetries); err != nil {
		log.Error().Err(err).Str("run_id", store.RunID).Msg("send summary")
		return
	}
	log.Info().Str("run_id", store.RunID).Msgf("summary sent to chat %s", a.cfg.Telegram.ChatID)
}
