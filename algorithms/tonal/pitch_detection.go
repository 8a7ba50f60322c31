package tonal

import (
	"math"
)

// PitchTracker estimates the fundamental frequency contour of a speech
// signal frame by frame using the YIN algorithm: a squared difference
// function over candidate lags, cumulative mean normalization, and an
// absolute threshold on the normalized minimum. Frames whose best
// candidate never falls below the threshold are reported unvoiced.
//
// References:
//   - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency
//     estimator for speech and music"
//   - Mauch, M., Dixon, S. (2014). "pYIN: A fundamental frequency estimator
//     using probabilistic threshold distributions"
type PitchTracker struct {
	minFreq     float64 // Lowest F0 candidate in Hz
	maxFreq     float64 // Highest F0 candidate in Hz
	frameLength int     // Analysis frame length in samples
	hopLength   int     // Hop between frames in samples
	threshold   float64 // Absolute CMNDF threshold for voicing
}

// NewPitchTracker creates a pitch tracker for the given F0 search range and
// framing. The voicing threshold defaults to 0.15.
func NewPitchTracker(minFreq, maxFreq float64, frameLength, hopLength int) *PitchTracker {
	return &PitchTracker{
		minFreq:     minFreq,
		maxFreq:     maxFreq,
		frameLength: frameLength,
		hopLength:   hopLength,
		threshold:   0.15,
	}
}

// SetThreshold overrides the CMNDF voicing threshold. Typical values lie
// between 0.1 and 0.5; lower values are stricter about periodicity.
func (pt *PitchTracker) SetThreshold(threshold float64) {
	pt.threshold = threshold
}

// NumFrames returns the number of centered analysis frames for a signal of
// length n: 1 + n/hopLength.
func (pt *PitchTracker) NumFrames(n int) int {
	if n <= 0 || pt.hopLength <= 0 {
		return 0
	}
	return 1 + n/pt.hopLength
}

// Track estimates F0 for every frame of the signal. Frames are centered on
// sample positions i*hopLength by zero-padding half a frame at each end, so
// frame i describes the signal around time i*hopLength/sampleRate.
//
// Returns one F0 value and one voicing flag per frame. Unvoiced frames
// carry an F0 of 0.
func (pt *PitchTracker) Track(signal []float64, sampleRate int) ([]float64, []bool) {
	numFrames := pt.NumFrames(len(signal))
	if numFrames == 0 || sampleRate <= 0 || pt.frameLength <= 0 {
		return []float64{}, []bool{}
	}

	f0 := make([]float64, numFrames)
	voiced := make([]bool, numFrames)

	// Candidate lag range from the F0 search range
	tauMin := 1
	if pt.maxFreq > 0 {
		tauMin = int(math.Ceil(float64(sampleRate) / pt.maxFreq))
		if tauMin < 1 {
			tauMin = 1
		}
	}

	windowSize := pt.frameLength / 2
	tauMax := windowSize - 1
	if pt.minFreq > 0 {
		byRange := int(float64(sampleRate) / pt.minFreq)
		if byRange < tauMax {
			tauMax = byRange
		}
	}
	if tauMin >= tauMax {
		return f0, voiced
	}

	pad := pt.frameLength / 2
	padded := make([]float64, pad+len(signal)+pad)
	copy(padded[pad:], signal)

	frame := make([]float64, pt.frameLength)
	diff := make([]float64, tauMax+1)
	cmndf := make([]float64, tauMax+1)

	for i := 0; i < numFrames; i++ {
		start := i * pt.hopLength
		copy(frame, padded[start:start+pt.frameLength])

		f0[i], voiced[i] = pt.trackFrame(frame, sampleRate, windowSize, tauMin, tauMax, diff, cmndf)
	}

	return f0, voiced
}

// trackFrame runs YIN on a single frame. The diff and cmndf buffers are
// reused across frames to avoid per-frame allocation.
func (pt *PitchTracker) trackFrame(frame []float64, sampleRate, windowSize, tauMin, tauMax int, diff, cmndf []float64) (float64, bool) {
	// Squared difference function over candidate lags
	for tau := 0; tau <= tauMax; tau++ {
		sum := 0.0
		for j := 0; j < windowSize; j++ {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}

	// Cumulative mean normalized difference function
	cmndf[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau <= tauMax; tau++ {
		runningSum += diff[tau]
		if runningSum > 0 {
			cmndf[tau] = diff[tau] / (runningSum / float64(tau))
		} else {
			cmndf[tau] = 1.0
		}
	}

	// First dip below the threshold, descended to its local minimum
	minTau := -1
	for tau := tauMin; tau <= tauMax; tau++ {
		if cmndf[tau] < pt.threshold {
			for tau+1 <= tauMax && cmndf[tau+1] < cmndf[tau] {
				tau++
			}
			minTau = tau
			break
		}
	}

	if minTau < 0 {
		return 0.0, false
	}

	// Parabolic interpolation for sub-sample period accuracy
	period := pt.parabolicInterpolation(cmndf[:tauMax+1], minTau)
	if period <= 0 {
		return 0.0, false
	}

	frequency := float64(sampleRate) / period
	if frequency < pt.minFreq || frequency > pt.maxFreq {
		return 0.0, false
	}

	return frequency, true
}

// parabolicInterpolation refines a minimum location by fitting a parabola
// through the point and its two neighbors.
func (pt *PitchTracker) parabolicInterpolation(data []float64, peakIdx int) float64 {
	if peakIdx <= 0 || peakIdx >= len(data)-1 {
		return float64(peakIdx)
	}

	y1 := data[peakIdx-1]
	y2 := data[peakIdx]
	y3 := data[peakIdx+1]

	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2

	if a == 0 {
		return float64(peakIdx)
	}

	xPeak := -b / (2 * a)

	return float64(peakIdx) + xPeak
}
