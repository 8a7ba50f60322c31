package analysis

import (
	"fmt"
)

// Report is the flat map of metric names to values emitted for one
// recording. BreathCount is carried as a whole-numbered float64 so the
// report stays uniform for tabular export.
type Report map[string]float64

// canonicalKeys fixes the column order for tabular export: pause timing,
// speech activity, articulation, then prosody.
var canonicalKeys = []string{
	"pathological_pause_rate",
	"breath_frequency",
	"pathological_duration",
	"breath_count",
	"total_pause_duration",
	"pause_rate",

	"speaking_rate",
	"speech_duration",
	"total_duration",

	"articulation_rate",
	"pause_duration",
	"net_speech_duration",

	"f0_mean",
	"f0_std",
	"f0_min",
	"f0_max",
	"f0_range",
	"f0_cv",
	"voiced_ratio",
	"jitter_local",
	"jitter_rap",
	"jitter_ppq5",
	"shimmer_local",
	"shimmer_db",
	"shimmer_apq5",
	"intensity_mean",
	"intensity_std",
	"intensity_min",
	"intensity_max",
	"intensity_range",
}

// ReportKeys returns the canonical metric order used for CSV columns.
func ReportKeys() []string {
	keys := make([]string, len(canonicalKeys))
	copy(keys, canonicalKeys)
	return keys
}

// BuildReport merges the typed sub-reports into one flat report. Every
// contributor owns its keys exclusively; a collision means two sub-reports
// disagree about who measures what, and the merge fails naming the key
// rather than letting one value shadow the other.
func BuildReport(pause PauseMetrics, speaking SpeakingRateMetrics, articulation ArticulationMetrics, prosody ProsodyMetrics) (Report, error) {
	report := make(Report, len(canonicalKeys))

	parts := []map[string]float64{
		pause.metrics(),
		speaking.metrics(),
		articulation.metrics(),
		prosody.metrics(),
	}
	for _, part := range parts {
		if err := mergeMetrics(report, part); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// mergeMetrics copies src into dst, failing on the first key dst already
// holds.
func mergeMetrics(dst Report, src map[string]float64) error {
	for key, value := range src {
		if _, exists := dst[key]; exists {
			return fmt.Errorf("duplicate metric key %q in report merge", key)
		}
		dst[key] = value
	}
	return nil
}
