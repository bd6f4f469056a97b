package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TrendSentinel/internal/scheduler"
)

var runOnStart bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the analysis on the configured cron schedule",
	Long: `watch keeps running and repeats the full analysis on schedule.cron
(six fields, seconds first). A tick is skipped while the previous run is
still in progress.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithContext(ctx)

		sched := scheduler.NewScheduler(ctx, newAnalysis(cfg).Run)
		if err := sched.Register(cfg.Schedule.Cron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		if runOnStart || os.Getenv("RUN_ON_START") == "true" {
			logger.Info().Msg("run on start enabled, executing analysis now")
			go sched.RunNow()
		}

		logger.Info().Strs("next", sched.Next()).Msg("TrendSentinel is running, press Ctrl+C to stop")
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received, stopping")
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&runOnStart, "run-now", false, "run one analysis immediately")
}
