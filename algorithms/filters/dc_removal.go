package filters

import (
	"math"
)

// DCRemoval implements a DC blocking filter (first-order high-pass) that
// strips the 0 Hz component from decoded recordings. Field recordings and
// cheap microphone preamps often carry a constant offset that would bias
// energy and envelope measurements downstream.
//
// Reference: Julius O. Smith III, "Introduction to Digital Filters with
// Audio Applications", https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCRemoval struct {
	poleLocation float64 // R parameter (0 < R < 1)

	// State variables
	x1 float64 // Previous input sample x[n-1]
	y1 float64 // Previous output sample y[n-1]
}

// NewDCRemoval creates a DC removal filter with the standard audio pole
// location of 0.995 (cutoff around 13 Hz at 16 kHz).
func NewDCRemoval() *DCRemoval {
	return &DCRemoval{poleLocation: 0.995}
}

// NewDCRemovalWithCutoff creates a DC removal filter for a target -3dB
// cutoff frequency. The pole location is R = 1 - 2*pi*fc/fs, valid for
// cutoffs far below Nyquist.
func NewDCRemovalWithCutoff(sampleRate int, cutoffFreq float64) *DCRemoval {
	dc := &DCRemoval{poleLocation: 0.995}
	if sampleRate > 0 && cutoffFreq > 0 {
		r := 1.0 - (2.0 * math.Pi * cutoffFreq / float64(sampleRate))
		if r >= 1.0 {
			r = 0.999
		} else if r <= 0.0 {
			r = 0.001
		}
		dc.poleLocation = r
	}
	return dc
}

// Process applies DC removal to a single sample using
// y[n] = x[n] - x[n-1] + R*y[n-1].
func (dc *DCRemoval) Process(input float64) float64 {
	output := input - dc.x1 + dc.poleLocation*dc.y1

	dc.x1 = input
	dc.y1 = output

	return output
}

// ProcessBuffer applies DC removal to an entire buffer of samples.
func (dc *DCRemoval) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = dc.Process(sample)
	}
	return output
}

// Reset clears the filter state. Call this between unrelated recordings.
func (dc *DCRemoval) Reset() {
	dc.x1 = 0.0
	dc.y1 = 0.0
}

// GetCutoffFrequency reports the approximate -3dB cutoff for a sample rate,
// the inverse of the design formula: fc = (1-R)*fs/(2*pi).
func (dc *DCRemoval) GetCutoffFrequency(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0.0
	}
	return (1.0 - dc.poleLocation) * float64(sampleRate) / (2.0 * math.Pi)
}

// GetPoleLocation returns the R parameter.
func (dc *DCRemoval) GetPoleLocation() float64 {
	return dc.poleLocation
}
