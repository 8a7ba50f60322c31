package tonal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pseudoNoise produces a deterministic white-ish sequence in [-1, 1].
func pseudoNoise(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		v := math.Sin(float64(i)*12.9898) * 43758.5453
		out[i] = 2.0*(v-math.Floor(v)) - 1.0
	}
	return out
}

func TestPitchTracker_NumFrames(t *testing.T) {
	pt := NewPitchTracker(75, 400, 2048, 512)

	assert.Equal(t, 32, pt.NumFrames(16000))
	assert.Equal(t, 1, pt.NumFrames(1))
	assert.Equal(t, 0, pt.NumFrames(0))

	bad := NewPitchTracker(75, 400, 2048, 0)
	assert.Equal(t, 0, bad.NumFrames(16000))
}

func TestPitchTracker_Track(t *testing.T) {
	t.Run("steady tone tracks at its frequency", func(t *testing.T) {
		sampleRate := 16000
		signal := make([]float64, sampleRate)
		for i := range signal {
			signal[i] = math.Sin(2.0 * math.Pi * 200.0 * float64(i) / float64(sampleRate))
		}

		pt := NewPitchTracker(75, 400, 2048, 512)
		f0, voiced := pt.Track(signal, sampleRate)

		numFrames := pt.NumFrames(len(signal))
		require.Len(t, f0, numFrames)
		require.Len(t, voiced, numFrames)

		// Edge frames see zero padding; judge the interior.
		for i := 4; i < numFrames-4; i++ {
			require.True(t, voiced[i], "frame %d should be voiced", i)
			assert.InDelta(t, 200.0, f0[i], 5.0)
		}

		voicedCount := 0
		for _, v := range voiced {
			if v {
				voicedCount++
			}
		}
		assert.Greater(t, voicedCount, numFrames/2)
	})

	t.Run("silence is unvoiced", func(t *testing.T) {
		signal := make([]float64, 8000)

		pt := NewPitchTracker(75, 400, 2048, 512)
		f0, voiced := pt.Track(signal, 16000)

		for i := range voiced {
			assert.False(t, voiced[i])
			assert.Zero(t, f0[i])
		}
	})

	t.Run("aperiodic noise is unvoiced", func(t *testing.T) {
		signal := pseudoNoise(4096)

		pt := NewPitchTracker(75, 400, 2048, 512)
		_, voiced := pt.Track(signal, 16000)

		for i := range voiced {
			assert.False(t, voiced[i])
		}
	})

	t.Run("lag range collapse yields unvoiced frames", func(t *testing.T) {
		// A 16 sample frame cannot hold a 75 Hz period at 16 kHz.
		signal := make([]float64, 256)
		for i := range signal {
			signal[i] = math.Sin(2.0 * math.Pi * 200.0 * float64(i) / 16000.0)
		}

		pt := NewPitchTracker(75, 400, 16, 8)
		f0, voiced := pt.Track(signal, 16000)

		require.Len(t, f0, pt.NumFrames(len(signal)))
		for i := range voiced {
			assert.False(t, voiced[i])
			assert.Zero(t, f0[i])
		}
	})

	t.Run("empty signal gives empty outputs", func(t *testing.T) {
		pt := NewPitchTracker(75, 400, 2048, 512)

		f0, voiced := pt.Track(nil, 16000)
		assert.Empty(t, f0)
		assert.Empty(t, voiced)

		f0, voiced = pt.Track([]float64{0.1, 0.2}, 0)
		assert.Empty(t, f0)
		assert.Empty(t, voiced)
	})
}

func TestPitchTracker_SetThreshold(t *testing.T) {
	sampleRate := 16000
	signal := make([]float64, 8000)
	noise := pseudoNoise(len(signal))
	for i := range signal {
		signal[i] = math.Sin(2.0*math.Pi*200.0*float64(i)/float64(sampleRate)) + 0.05*noise[i]
	}

	strict := NewPitchTracker(75, 400, 2048, 512)
	strict.SetThreshold(0.15)
	_, voicedStrict := strict.Track(signal, sampleRate)

	lenient := NewPitchTracker(75, 400, 2048, 512)
	lenient.SetThreshold(0.5)
	_, voicedLenient := lenient.Track(signal, sampleRate)

	countStrict := 0
	for _, v := range voicedStrict {
		if v {
			countStrict++
		}
	}
	countLenient := 0
	for _, v := range voicedLenient {
		if v {
			countLenient++
		}
	}

	assert.GreaterOrEqual(t, countLenient, countStrict)
	assert.Greater(t, countLenient, 0)
}
