package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aphasia-lab/pausa/config"
	"github.com/aphasia-lab/pausa/logging"
)

var (
	configPath string
	logLevel   string

	// cfg is the loaded configuration tree, available to all subcommands
	// after PersistentPreRunE.
	cfg *config.Root
)

var rootCmd = &cobra.Command{
	Use:   "pausa",
	Short: "Speech pause and prosody analysis for progressive aphasia research",
	Long: `pausa extracts pause, timing and prosody metrics from speech recordings.

The pipeline decodes a recording to mono PCM, extracts a smoothed
amplitude envelope, segments pauses against an adaptive noise floor,
classifies each pause as breath or pathological, and reports timing
and prosody metrics suitable for cohort-level statistics.

Examples:
  pausa analyze session7.wav
  pausa analyze session7.wav --segments-csv segments.csv --report-json report.json
  pausa batch /data/ppa --output ppa_features.csv --workers 8
  pausa batch /data/ppa --subtype nfvppa --max-files 50`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		logging.SetLevel(level)
		return nil
	},
}

// Execute runs the command tree under a signal-aware context so Ctrl-C
// stops batch runs cleanly after the in-flight files finish.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to pausa.yaml (default: ./pausa.yaml, ./config/pausa.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error, fatal")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
}
