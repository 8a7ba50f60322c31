package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aphasia-lab/pausa/analysis"
	"github.com/aphasia-lab/pausa/transcode"
)

var (
	analyzeZCRThreshold float64
	analyzeMinPause     float64
	segmentsCSVPath     string
	reportJSONPath      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a single recording",
	Long: `Analyze runs the full pipeline on one recording and prints the segment
table and headline metrics. Thresholds default to the loaded
configuration; flags override them for this run.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeZCRThreshold, "zcr-threshold", analysis.DefaultZCRThreshold, "zero-crossing rate threshold for breath classification")
	analyzeCmd.Flags().Float64Var(&analyzeMinPause, "min-pause-duration", analysis.DefaultMinPauseDuration, "minimum pause duration in seconds")
	analyzeCmd.Flags().StringVar(&segmentsCSVPath, "segments-csv", "", "write the segment table to this CSV file")
	analyzeCmd.Flags().StringVar(&reportJSONPath, "report-json", "", "write the metric report to this JSON file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	analysisCfg := cfg.AnalysisConfig()
	if cmd.Flags().Changed("zcr-threshold") {
		analysisCfg.ZCRThreshold = analyzeZCRThreshold
	}
	if cmd.Flags().Changed("min-pause-duration") {
		analysisCfg.MinPauseDuration = analyzeMinPause
	}

	decoder := transcode.NewDecoder(cfg.DecoderConfig())
	pipeline, err := analysis.NewPipelineWithDecoder(analysisCfg, decoder)
	if err != nil {
		return err
	}

	result, err := pipeline.Analyze(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printResult(result)

	if segmentsCSVPath != "" {
		if err := writeSegmentsCSV(segmentsCSVPath, result.Segments); err != nil {
			return err
		}
		fmt.Printf("CSV: %s\n", segmentsCSVPath)
	}
	if reportJSONPath != "" {
		if err := writeReportJSON(reportJSONPath, result.Report); err != nil {
			return err
		}
		fmt.Printf("JSON: %s\n", reportJSONPath)
	}

	return nil
}

func printResult(result *analysis.Result) {
	fmt.Printf("WAV: %s\n", result.Path)
	fmt.Printf("Duration: %.2f s\n", result.Duration)
	fmt.Printf("Segments: %d\n", len(result.Segments))

	if len(result.Segments) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\tSTART\tEND\tDURATION\tLABEL\tZCR\tENERGY")
		for i, seg := range result.Segments {
			fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.3f\t%s\t%.4f\t%.6f\n",
				i+1, seg.Start, seg.End, seg.Duration(), seg.Label, seg.ZCR, seg.Energy)
		}
		w.Flush()
	}

	fmt.Printf("Pathological Pause Rate: %.1f%%\n", result.Report["pathological_pause_rate"]*100)
	fmt.Printf("Breath Frequency: %.2f /s\n", result.Report["breath_frequency"])
}

func writeSegmentsCSV(path string, segments []analysis.PauseSegment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := analysis.WriteSegmentsCSV(f, segments); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeReportJSON(path string, report analysis.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := analysis.WriteReportJSON(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
