package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroCrossingRate_Compute(t *testing.T) {
	zcr := NewZeroCrossingRate()

	t.Run("alternating signs give rate one", func(t *testing.T) {
		segment := []float64{1, -1, 1, -1, 1, -1, 1, -1}
		assert.InDelta(t, 1.0, zcr.Compute(segment), 1e-12)
	})

	t.Run("constant segment gives rate zero", func(t *testing.T) {
		segment := []float64{0.5, 0.5, 0.5, 0.5}
		assert.Zero(t, zcr.Compute(segment))
	})

	t.Run("short segments give rate zero", func(t *testing.T) {
		assert.Zero(t, zcr.Compute(nil))
		assert.Zero(t, zcr.Compute([]float64{}))
		assert.Zero(t, zcr.Compute([]float64{1.0}))
	})
}

func TestZeroCrossingRate_CountCrossings(t *testing.T) {
	zcr := NewZeroCrossingRate()

	tests := []struct {
		name    string
		segment []float64
		want    int
	}{
		{"full alternation", []float64{1, -1, 1}, 2},
		{"single change", []float64{1, 1, -1, -1}, 1},
		{"pair", []float64{-1, 1}, 1},
		{"zero counts as positive", []float64{0, -1}, 1},
		{"zeros only", []float64{0, 0, 0}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, zcr.CountCrossings(tt.segment))
		})
	}

	t.Run("negative zero counts as negative", func(t *testing.T) {
		segment := []float64{math.Copysign(0, -1), 1.0}
		assert.Equal(t, 1, zcr.CountCrossings(segment))
	})
}

func TestZeroCrossingRate_ComputePerSecond(t *testing.T) {
	zcr := NewZeroCrossingRate()

	t.Run("pure tone crosses twice per cycle", func(t *testing.T) {
		sampleRate := 8000
		signal := make([]float64, sampleRate)
		for i := range signal {
			signal[i] = math.Sin(2.0 * math.Pi * 100.0 * float64(i) / float64(sampleRate))
		}

		perSecond := zcr.ComputePerSecond(signal, sampleRate)
		assert.InDelta(t, 200.0, perSecond, 2.0)
	})

	t.Run("invalid inputs give zero", func(t *testing.T) {
		assert.Zero(t, zcr.ComputePerSecond([]float64{1, -1}, 0))
		assert.Zero(t, zcr.ComputePerSecond([]float64{1}, 8000))
	})
}
