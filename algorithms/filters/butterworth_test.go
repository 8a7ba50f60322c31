package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, sampleRate, n int) []float64 {
	signal := make([]float64, n)
	for i := 0; i < n; i++ {
		signal[i] = math.Sin(2.0 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func rms(signal []float64) float64 {
	if len(signal) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range signal {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(signal)))
}

func TestNewButterworthLowPass_Validation(t *testing.T) {
	tests := []struct {
		name       string
		order      int
		cutoff     float64
		sampleRate int
		wantErr    bool
	}{
		{"fourth order in band", 4, 50.0, 1000, false},
		{"second order in band", 2, 100.0, 8000, false},
		{"odd order", 3, 50.0, 1000, true},
		{"zero order", 0, 50.0, 1000, true},
		{"negative order", -2, 50.0, 1000, true},
		{"zero cutoff", 4, 0.0, 1000, true},
		{"negative cutoff", 4, -10.0, 1000, true},
		{"cutoff at nyquist", 4, 500.0, 1000, true},
		{"cutoff above nyquist", 4, 600.0, 1000, true},
		{"zero sample rate", 4, 50.0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bw, err := NewButterworthLowPass(tt.order, tt.cutoff, tt.sampleRate)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, bw)

			order, cutoff, rate := bw.GetParameters()
			assert.Equal(t, tt.order, order)
			assert.Equal(t, tt.cutoff, cutoff)
			assert.Equal(t, tt.sampleRate, rate)
		})
	}
}

func TestButterworthLowPass_FrequencyResponse(t *testing.T) {
	bw, err := NewButterworthLowPass(4, 50.0, 1000)
	require.NoError(t, err)

	t.Run("unity gain at DC", func(t *testing.T) {
		assert.InDelta(t, 1.0, bw.GetFrequencyResponse(0.0), 1e-9)
	})

	t.Run("minus 3 dB at cutoff", func(t *testing.T) {
		// The section Q values place the cascade exactly at 1/sqrt(2)
		// at the cutoff, the defining Butterworth property.
		assert.InDelta(t, 1.0/math.Sqrt2, bw.GetFrequencyResponse(50.0), 1e-9)
	})

	t.Run("monotone rolloff above cutoff", func(t *testing.T) {
		prev := bw.GetFrequencyResponse(50.0)
		for _, freq := range []float64{75, 100, 150, 200, 300, 400} {
			cur := bw.GetFrequencyResponse(freq)
			assert.Less(t, cur, prev, "response should fall toward Nyquist at %g Hz", freq)
			prev = cur
		}
	})

	t.Run("strong attenuation at four times cutoff", func(t *testing.T) {
		// Fourth order rolls off 24 dB per octave; two octaves above
		// cutoff leaves well under 1% of the input amplitude.
		assert.Less(t, bw.GetFrequencyResponse(200.0), 0.01)
	})
}

func TestButterworthLowPass_Apply(t *testing.T) {
	bw, err := NewButterworthLowPass(4, 50.0, 1000)
	require.NoError(t, err)

	t.Run("passband tone survives", func(t *testing.T) {
		signal := sine(10.0, 1000, 1000)
		filtered := bw.Apply(signal)
		require.Len(t, filtered, len(signal))

		// Compare steady-state RMS, past the startup transient.
		ratio := rms(filtered[200:]) / rms(signal[200:])
		assert.InDelta(t, 1.0, ratio, 0.02)
	})

	t.Run("stopband tone is removed", func(t *testing.T) {
		signal := sine(200.0, 1000, 1000)
		filtered := bw.Apply(signal)

		ratio := rms(filtered[200:]) / rms(signal[200:])
		assert.Less(t, ratio, 0.05)
	})

	t.Run("repeat calls are deterministic", func(t *testing.T) {
		signal := sine(30.0, 1000, 500)
		first := bw.Apply(signal)
		second := bw.Apply(signal)
		assert.Equal(t, first, second)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, bw.Apply(nil))
	})
}

func TestButterworthLowPass_ApplyZeroPhase(t *testing.T) {
	bw, err := NewButterworthLowPass(4, 50.0, 1000)
	require.NoError(t, err)

	t.Run("constant signal passes through unchanged", func(t *testing.T) {
		signal := make([]float64, 300)
		for i := range signal {
			signal[i] = 0.75
		}

		filtered := bw.ApplyZeroPhase(signal)
		require.Len(t, filtered, len(signal))
		for i, v := range filtered {
			assert.InDeltaf(t, 0.75, v, 1e-9, "sample %d", i)
		}
	})

	t.Run("impulse response is symmetric", func(t *testing.T) {
		n := 401
		center := 200
		signal := make([]float64, n)
		signal[center] = 1.0

		filtered := bw.ApplyZeroPhase(signal)
		require.Len(t, filtered, n)

		for k := 1; k <= 100; k++ {
			assert.InDeltaf(t, filtered[center-k], filtered[center+k], 1e-6,
				"lag %d", k)
		}
	})

	t.Run("peak stays aligned with input", func(t *testing.T) {
		// A slow Gaussian-ish bump should keep its maximum position.
		n := 600
		signal := make([]float64, n)
		for i := 0; i < n; i++ {
			d := float64(i-300) / 40.0
			signal[i] = math.Exp(-d * d)
		}

		filtered := bw.ApplyZeroPhase(signal)

		maxIdx := 0
		for i, v := range filtered {
			if v > filtered[maxIdx] {
				maxIdx = i
			}
		}
		assert.InDelta(t, 300, maxIdx, 2)
	})

	t.Run("stopband attenuation doubles up", func(t *testing.T) {
		signal := sine(200.0, 1000, 1000)
		filtered := bw.ApplyZeroPhase(signal)

		ratio := rms(filtered[200:800]) / rms(signal[200:800])
		assert.Less(t, ratio, 0.01)
	})

	t.Run("short signal clamps the padding", func(t *testing.T) {
		signal := []float64{0.1, 0.2, 0.3, 0.2, 0.1}
		filtered := bw.ApplyZeroPhase(signal)
		require.Len(t, filtered, len(signal))
		for _, v := range filtered {
			assert.False(t, math.IsNaN(v))
			assert.False(t, math.IsInf(v, 0))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, bw.ApplyZeroPhase(nil))
	})
}
