package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"TrendSentinel/internal/config"
)

const defaultConfigPath = "configs/config.yaml"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "trendsentinel",
	Short: "Trend analysis of Banco Central do Brasil time series",
	Long: `trendsentinel fetches economic time series from the Banco Central do Brasil
SGS API, fits a linear trend to each one and reports whether it is rising,
falling or stable.

Example usage:
  trendsentinel                 # Analyze the configured series once
  trendsentinel run --no-charts # Same, without writing PNG charts
  trendsentinel watch           # Re-run on the configured cron schedule`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or "+defaultConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().BoolVar(&noCharts, "no-charts", false, "skip PNG chart output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return defaultConfigPath
}

// initConfig loads and validates configuration, then builds the logger.
func initConfig() error {
	var err error
	cfg, err = config.Load(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	logger.Debug().
		Str("config", configPath()).
		Str("base_url", cfg.Source.BaseURL).
		Str("format", cfg.Source.Format).
		Int("series", len(cfg.Series)).
		Msg("configuration loaded")
	return nil
}
