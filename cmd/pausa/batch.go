package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aphasia-lab/pausa/analysis"
	"github.com/aphasia-lab/pausa/batch"
	"github.com/aphasia-lab/pausa/transcode"
)

var (
	batchOutput       string
	batchWorkers      int
	batchSubtype      string
	batchMaxFiles     int
	batchZCRThreshold float64
	batchMinPause     float64
	batchCacheDir     string
	batchNoCache      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <root>",
	Short: "Analyze a recording corpus and export a feature CSV",
	Long: `Batch walks a corpus laid out one cohort per directory (nfvPPA, lvPPA,
svPPA, Controls), analyzes every WAV file on a worker pool, and writes
one CSV row per recording with all report metrics. Failures are recorded
per file without stopping the run; with a cache directory, unchanged
files are skipped on re-runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "ppa_features.csv", "output CSV path")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent analyses (default: configured worker count)")
	batchCmd.Flags().StringVar(&batchSubtype, "subtype", "", "restrict to one cohort: nfvppa, lvppa, svppa, controls")
	batchCmd.Flags().IntVar(&batchMaxFiles, "max-files", 0, "cap the number of files processed (0 = all)")
	batchCmd.Flags().Float64Var(&batchZCRThreshold, "zcr-threshold", analysis.DefaultZCRThreshold, "zero-crossing rate threshold for breath classification")
	batchCmd.Flags().Float64Var(&batchMinPause, "min-pause-duration", analysis.DefaultMinPauseDuration, "minimum pause duration in seconds")
	batchCmd.Flags().StringVar(&batchCacheDir, "cache-dir", "", "badger cache directory for resumable runs (default: configured)")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "disable the result cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchSubtype != "" && !validSubtype(batchSubtype) {
		return fmt.Errorf("unknown subtype %q (expected one of: %s)",
			batchSubtype, strings.Join(batch.Subtypes(), ", "))
	}

	analysisCfg := cfg.AnalysisConfig()
	if cmd.Flags().Changed("zcr-threshold") {
		analysisCfg.ZCRThreshold = batchZCRThreshold
	}
	if cmd.Flags().Changed("min-pause-duration") {
		analysisCfg.MinPauseDuration = batchMinPause
	}

	decoder := transcode.NewDecoder(cfg.DecoderConfig())
	if err := decoder.CheckBinaries(); err != nil {
		return err
	}

	pipeline, err := analysis.NewPipelineWithDecoder(analysisCfg, decoder)
	if err != nil {
		return err
	}

	workers := cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		workers = batchWorkers
	}

	cacheDir := cfg.Batch.CacheDir
	if cmd.Flags().Changed("cache-dir") {
		cacheDir = batchCacheDir
	}
	if batchNoCache {
		cacheDir = ""
	}

	runner := batch.NewRunner(pipeline, batch.Options{
		Root:      args[0],
		OutputCSV: batchOutput,
		Workers:   workers,
		Subtype:   strings.ToLower(batchSubtype),
		MaxFiles:  batchMaxFiles,
		CacheDir:  cacheDir,
	})

	summary, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Results: %s\n", batchOutput)
	fmt.Printf("Processed: %d of %d (%d failed, %d cached)\n",
		summary.Processed, summary.Total, summary.Failed, summary.CacheHits)

	return nil
}

func validSubtype(subtype string) bool {
	for _, s := range batch.Subtypes() {
		if strings.EqualFold(subtype, s) {
			return true
		}
	}
	return false
}
