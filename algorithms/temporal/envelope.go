package temporal

import (
	"math/cmplx"

	"github.com/aphasia-lab/pausa/algorithms/spectral"
)

// Envelope extracts the amplitude envelope of a signal through the analytic
// signal. The Hilbert magnitude tracks instantaneous amplitude sample by
// sample, so the envelope keeps the same length and time base as the input.
type Envelope struct {
	fft *spectral.FFT
}

// NewEnvelope creates a new envelope extractor
func NewEnvelope() *Envelope {
	return &Envelope{
		fft: spectral.NewFFT(),
	}
}

// AnalyticSignal computes the analytic signal via the frequency domain:
// transform, zero the negative frequencies, double the positive ones, and
// transform back. DC and (for even lengths) the Nyquist bin are shared
// between both half-spectra and keep unit weight.
func (e *Envelope) AnalyticSignal(signal []float64) []complex128 {
	n := len(signal)
	if n == 0 {
		return []complex128{}
	}

	spectrum := e.fft.Compute(signal)

	half := n / 2
	if n%2 == 0 {
		for k := 1; k < half; k++ {
			spectrum[k] *= 2
		}
		for k := half + 1; k < n; k++ {
			spectrum[k] = 0
		}
	} else {
		for k := 1; k <= half; k++ {
			spectrum[k] *= 2
		}
		for k := half + 1; k < n; k++ {
			spectrum[k] = 0
		}
	}

	return e.fft.ComputeInverse(spectrum)
}

// ComputeHilbert computes the Hilbert envelope, the magnitude of the
// analytic signal at every sample.
func (e *Envelope) ComputeHilbert(signal []float64) []float64 {
	analytic := e.AnalyticSignal(signal)

	envelope := make([]float64, len(analytic))
	for i, val := range analytic {
		envelope[i] = cmplx.Abs(val)
	}

	return envelope
}

