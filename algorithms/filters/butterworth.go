package filters

import (
	"fmt"
	"math"
)

// ButterworthLowPass implements an even-order Butterworth low-pass filter as a
// cascade of second-order sections using biquad topology.
//
// Section coefficients come from the cookbook formulas in Robert Bristow-Johnson's
// "Cookbook formulae for audio EQ biquad filter coefficients" with the Q of each
// section taken from the Butterworth pole angles, so the cascade matches the
// classic maximally-flat magnitude response.
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
type ButterworthLowPass struct {
	sampleRate int
	cutoffFreq float64 // -3dB cutoff frequency in Hz
	order      int     // Filter order, must be even

	sections []biquadSection
}

// biquadSection holds normalized coefficients (a0 == 1) and the
// direct form II transposed state for one second-order section.
type biquadSection struct {
	b0, b1, b2 float64
	a1, a2     float64

	s1, s2 float64
}

// NewButterworthLowPass creates a low-pass filter of the given even order.
//
// Parameters:
//   - order: filter order (2, 4, 6, ...)
//   - cutoffFreq: -3dB cutoff frequency in Hz
//   - sampleRate: sample rate in Hz
//
// The cutoff must lie strictly below the Nyquist frequency; the bilinear
// transform is undefined at and above it.
func NewButterworthLowPass(order int, cutoffFreq float64, sampleRate int) (*ButterworthLowPass, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", sampleRate)
	}
	if order <= 0 || order%2 != 0 {
		return nil, fmt.Errorf("filter order must be a positive even number: %d", order)
	}
	if cutoffFreq <= 0 {
		return nil, fmt.Errorf("cutoff frequency must be positive: %g Hz", cutoffFreq)
	}
	nyquist := float64(sampleRate) / 2.0
	if cutoffFreq >= nyquist {
		return nil, fmt.Errorf("cutoff frequency (%g Hz) must be below Nyquist (%g Hz)", cutoffFreq, nyquist)
	}

	bw := &ButterworthLowPass{
		sampleRate: sampleRate,
		cutoffFreq: cutoffFreq,
		order:      order,
	}
	bw.computeCoefficients()
	return bw, nil
}

// computeCoefficients builds one biquad per conjugate pole pair.
// The k-th Butterworth pole pair sits at angle (2k+1)*pi/(2N) from the
// negative real axis, giving section Q = 1/(2*cos(theta)).
func (bw *ButterworthLowPass) computeCoefficients() {
	numSections := bw.order / 2
	bw.sections = make([]biquadSection, numSections)

	w0 := 2.0 * math.Pi * bw.cutoffFreq / float64(bw.sampleRate)
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)

	for k := 0; k < numSections; k++ {
		theta := math.Pi * float64(2*k+1) / float64(2*bw.order)
		q := 1.0 / (2.0 * math.Cos(theta))

		// Low-pass coefficients (cookbook formula)
		alpha := sinW0 / (2.0 * q)
		b0 := (1.0 - cosW0) / 2.0
		b1 := 1.0 - cosW0
		b2 := (1.0 - cosW0) / 2.0
		a0 := 1.0 + alpha
		a1 := -2.0 * cosW0
		a2 := 1.0 - alpha

		bw.sections[k] = biquadSection{
			b0: b0 / a0,
			b1: b1 / a0,
			b2: b2 / a0,
			a1: a1 / a0,
			a2: a2 / a0,
		}
	}
}

// process runs one sample through the section (direct form II transposed).
func (s *biquadSection) process(x float64) float64 {
	y := s.b0*x + s.s1
	s.s1 = s.b1*x - s.a1*y + s.s2
	s.s2 = s.b2*x - s.a2*y
	return y
}

// dcGain returns the section gain for a constant input.
func (s *biquadSection) dcGain() float64 {
	return (s.b0 + s.b1 + s.b2) / (1.0 + s.a1 + s.a2)
}

// primeSteadyState sets the section state to the steady-state response for a
// constant input level, so filtering does not start with a step transient.
func (s *biquadSection) primeSteadyState(input float64) {
	y := s.dcGain() * input
	s.s2 = s.b2*input - s.a2*y
	s.s1 = s.b1*input - s.a1*y + s.s2
}

// reset clears the section state.
func (s *biquadSection) reset() {
	s.s1, s.s2 = 0.0, 0.0
}

// Apply runs the filter causally over the buffer from zero initial state.
// The output carries the usual group delay of the cascade; use ApplyZeroPhase
// when peak timing must be preserved.
func (bw *ButterworthLowPass) Apply(signal []float64) []float64 {
	output := make([]float64, len(signal))
	copy(output, signal)

	for k := range bw.sections {
		bw.sections[k].reset()
		for i, sample := range output {
			output[i] = bw.sections[k].process(sample)
		}
		bw.sections[k].reset()
	}

	return output
}

// ApplyZeroPhase filters forward and backward so the net phase response is
// zero and peaks stay aligned with the input. The signal is extended at both
// ends by odd reflection and each section starts from its steady state for
// the first extended sample, which keeps edge transients out of the result.
func (bw *ButterworthLowPass) ApplyZeroPhase(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return []float64{}
	}

	padLen := 3 * (bw.order + 1)
	if padLen > n-1 {
		padLen = n - 1
	}

	extended := oddExtend(signal, padLen)

	forward := bw.applyPrimed(extended)
	reverseInPlace(forward)
	backward := bw.applyPrimed(forward)
	reverseInPlace(backward)

	output := make([]float64, n)
	copy(output, backward[padLen:padLen+n])
	return output
}

// applyPrimed runs the cascade once, each section primed to the steady state
// for its own first input. The DC gain of earlier sections scales the level
// that later sections see.
func (bw *ButterworthLowPass) applyPrimed(signal []float64) []float64 {
	output := make([]float64, len(signal))
	copy(output, signal)
	if len(output) == 0 {
		return output
	}

	level := output[0]
	for k := range bw.sections {
		bw.sections[k].primeSteadyState(level)
		level *= bw.sections[k].dcGain()

		for i, sample := range output {
			output[i] = bw.sections[k].process(sample)
		}
		bw.sections[k].reset()
	}

	return output
}

// GetParameters returns the current filter parameters.
func (bw *ButterworthLowPass) GetParameters() (order int, cutoffFreq float64, sampleRate int) {
	return bw.order, bw.cutoffFreq, bw.sampleRate
}

// GetFrequencyResponse computes the cascade magnitude response at the given
// frequency (linear scale).
func (bw *ButterworthLowPass) GetFrequencyResponse(frequency float64) float64 {
	w := 2.0 * math.Pi * frequency / float64(bw.sampleRate)

	cosW := math.Cos(w)
	sinW := math.Sin(w)
	cos2W := math.Cos(2 * w)
	sin2W := math.Sin(2 * w)

	magnitude := 1.0
	for k := range bw.sections {
		s := &bw.sections[k]

		numReal := s.b0 + s.b1*cosW + s.b2*cos2W
		numImag := -s.b1*sinW - s.b2*sin2W
		denReal := 1.0 + s.a1*cosW + s.a2*cos2W
		denImag := -s.a1*sinW - s.a2*sin2W

		num := math.Sqrt(numReal*numReal + numImag*numImag)
		den := math.Sqrt(denReal*denReal + denImag*denImag)
		magnitude *= num / den
	}

	return magnitude
}

// oddExtend reflects padLen samples at each end of the signal through the
// boundary values, the standard extension for forward-backward filtering.
func oddExtend(signal []float64, padLen int) []float64 {
	n := len(signal)
	extended := make([]float64, padLen+n+padLen)

	for i := 0; i < padLen; i++ {
		extended[i] = 2.0*signal[0] - signal[padLen-i]
	}
	copy(extended[padLen:], signal)
	for i := 0; i < padLen; i++ {
		extended[padLen+n+i] = 2.0*signal[n-1] - signal[n-2-i]
	}

	return extended
}

func reverseInPlace(signal []float64) {
	for i, j := 0, len(signal)-1; i < j; i, j = i+1, j-1 {
		signal[i], signal[j] = signal[j], signal[i]
	}
}
