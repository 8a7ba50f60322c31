package analysis

import (
	"fmt"
	"math/cmplx"
)

// Envelope smoothing parameters. The Hilbert magnitude is low-passed at
// 50 Hz so syllable-scale amplitude structure survives while glottal
// pulsing is removed; a 4th-order response keeps the rolloff steep enough
// that pitch harmonics do not leak into the pause detector.
const (
	EnvelopeCutoffHz    = 50.0
	EnvelopeFilterOrder = 4
)

// EnvelopeExtractor computes the smoothed amplitude envelope a recording is
// segmented on: the magnitude of the analytic signal, low-pass filtered
// with zero phase so envelope features stay time-aligned with the samples
// they describe.
type EnvelopeExtractor struct {
	dsp DSP
}

// NewEnvelopeExtractor creates an envelope extractor on the given DSP
// provider.
func NewEnvelopeExtractor(dsp DSP) *EnvelopeExtractor {
	return &EnvelopeExtractor{dsp: dsp}
}

// Extract returns the smoothed Hilbert envelope of the signal. The output
// has the same length and time base as the input. An empty signal yields
// an empty envelope.
func (ee *EnvelopeExtractor) Extract(signal []float64, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidInput, sampleRate)
	}
	nyquist := float64(sampleRate) / 2.0
	if EnvelopeCutoffHz >= nyquist {
		return nil, fmt.Errorf("%w: cutoff frequency (%g Hz) must be below Nyquist (%g Hz)",
			ErrInvalidConfiguration, EnvelopeCutoffHz, nyquist)
	}
	if len(signal) == 0 {
		return []float64{}, nil
	}

	analytic := ee.dsp.AnalyticSignal(signal)

	magnitude := make([]float64, len(analytic))
	for i, val := range analytic {
		magnitude[i] = cmplx.Abs(val)
	}

	smoothed, err := ee.dsp.LowPassFilter(magnitude, EnvelopeFilterOrder, EnvelopeCutoffHz, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	return smoothed, nil
}
