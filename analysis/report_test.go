package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportKeys(t *testing.T) {
	keys := ReportKeys()

	assert.Len(t, keys, 30)
	assert.Equal(t, "pathological_pause_rate", keys[0])
	assert.Equal(t, "intensity_range", keys[len(keys)-1])

	t.Run("returned slice is a copy", func(t *testing.T) {
		keys[0] = "mutated"
		assert.Equal(t, "pathological_pause_rate", ReportKeys()[0])
	})
}

func TestBuildReport(t *testing.T) {
	pause := PauseMetrics{
		PathologicalPauseRate: 0.15,
		BreathFrequency:       0.5,
		PathologicalDuration:  0.3,
		BreathCount:           1,
		TotalPauseDuration:    0.6,
		PauseRate:             0.3,
	}
	speaking := SpeakingRateMetrics{SpeakingRate: 0.5, SpeechDuration: 1.0, TotalDuration: 2.0}
	articulation := ArticulationMetrics{ArticulationRate: 0.7, PauseDuration: 0.6, NetSpeechDuration: 1.4}
	prosody := ProsodyMetrics{F0Mean: 200, F0Max: 250, IntensityMean: 0.5}

	report, err := BuildReport(pause, speaking, articulation, prosody)
	require.NoError(t, err)

	t.Run("every canonical key is present", func(t *testing.T) {
		assert.Len(t, report, len(ReportKeys()))
		for _, key := range ReportKeys() {
			_, ok := report[key]
			assert.True(t, ok, "missing key %q", key)
		}
	})

	t.Run("values land under their keys", func(t *testing.T) {
		assert.InDelta(t, 0.15, report["pathological_pause_rate"], 1e-12)
		assert.InDelta(t, 1.0, report["breath_count"], 1e-12)
		assert.InDelta(t, 0.5, report["speaking_rate"], 1e-12)
		assert.InDelta(t, 0.7, report["articulation_rate"], 1e-12)
		assert.InDelta(t, 200.0, report["f0_mean"], 1e-12)
		assert.InDelta(t, 0.5, report["intensity_mean"], 1e-12)
		assert.Zero(t, report["jitter_local"])
	})
}

func TestMergeMetrics(t *testing.T) {
	t.Run("disjoint maps merge cleanly", func(t *testing.T) {
		dst := Report{"a": 1}
		err := mergeMetrics(dst, map[string]float64{"b": 2, "c": 3})
		require.NoError(t, err)
		assert.Len(t, dst, 3)
	})

	t.Run("a colliding key fails naming the key", func(t *testing.T) {
		dst := Report{"pause_rate": 0.3}
		err := mergeMetrics(dst, map[string]float64{"pause_rate": 0.4})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"pause_rate"`)
	})
}
