package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDCRemoval_ConstantOffsetDecays(t *testing.T) {
	dc := NewDCRemoval()

	signal := make([]float64, 2000)
	for i := range signal {
		signal[i] = 1.0
	}

	out := dc.ProcessBuffer(signal)
	require.Len(t, out, len(signal))

	// First sample passes through, then the offset bleeds away.
	assert.InDelta(t, 1.0, out[0], 1e-12)
	assert.Less(t, math.Abs(out[len(out)-1]), 0.01)
}

func TestDCRemoval_SpeechBandPassesThrough(t *testing.T) {
	dc := NewDCRemoval()

	signal := sine(100.0, 16000, 16000)
	out := dc.ProcessBuffer(signal)

	// Steady-state gain at 100 Hz sits near unity for the default pole.
	ratio := rms(out[4000:]) / rms(signal[4000:])
	assert.InDelta(t, 1.0, ratio, 0.05)
}

func TestDCRemoval_RemovesOffsetFromTone(t *testing.T) {
	dc := NewDCRemoval()

	signal := sine(100.0, 16000, 16000)
	for i := range signal {
		signal[i] += 0.5
	}

	out := dc.ProcessBuffer(signal)

	tail := out[8000:]
	mean := 0.0
	for _, v := range tail {
		mean += v
	}
	mean /= float64(len(tail))
	assert.Less(t, math.Abs(mean), 0.01)
}

func TestDCRemoval_ResetClearsState(t *testing.T) {
	dc := NewDCRemoval()

	first := dc.Process(0.8)
	dc.Reset()
	second := dc.Process(0.8)

	assert.Equal(t, first, second)
}

func TestNewDCRemovalWithCutoff(t *testing.T) {
	t.Run("cutoff maps to pole and back", func(t *testing.T) {
		dc := NewDCRemovalWithCutoff(16000, 20.0)

		pole := dc.GetPoleLocation()
		assert.Greater(t, pole, 0.9)
		assert.Less(t, pole, 1.0)

		assert.InDelta(t, 20.0, dc.GetCutoffFrequency(16000), 1.0)
	})

	t.Run("extreme cutoffs clamp the pole", func(t *testing.T) {
		low := NewDCRemovalWithCutoff(16000, 0.0)
		assert.LessOrEqual(t, low.GetPoleLocation(), 0.999)

		high := NewDCRemovalWithCutoff(16000, 1e6)
		assert.GreaterOrEqual(t, high.GetPoleLocation(), 0.001)
	})
}
