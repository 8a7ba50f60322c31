package analysis

import (
	"github.com/aphasia-lab/pausa/algorithms/filters"
	"github.com/aphasia-lab/pausa/algorithms/temporal"
	"github.com/aphasia-lab/pausa/algorithms/tonal"
)

// DSP abstracts the numeric primitives the analysis pipeline depends on, so
// the segmentation and metric logic can be exercised against synthetic
// stand-ins without running real transforms.
type DSP interface {
	// AnalyticSignal returns the complex analytic signal whose magnitude
	// is the instantaneous amplitude envelope.
	AnalyticSignal(signal []float64) []complex128

	// LowPassFilter applies a zero-phase Butterworth low-pass of the given
	// order and cutoff. Fails when the cutoff is not realizable at the
	// sample rate.
	LowPassFilter(signal []float64, order int, cutoffHz float64, sampleRate int) ([]float64, error)

	// TrackPitch estimates a per-frame F0 contour and voicing decision
	// over the given search range and framing.
	TrackPitch(signal []float64, sampleRate int, minFreq, maxFreq float64, frameLength, hopLength int) ([]float64, []bool)

	// FrameSignal slices the signal into complete frames at a regular hop.
	FrameSignal(signal []float64, frameLength, hopLength int) [][]float64
}

// StandardDSP is the default DSP implementation backed by the algorithms
// packages.
type StandardDSP struct {
	envelope *temporal.Envelope
}

// NewStandardDSP creates the default DSP provider.
func NewStandardDSP() *StandardDSP {
	return &StandardDSP{
		envelope: temporal.NewEnvelope(),
	}
}

var _ DSP = (*StandardDSP)(nil)

func (d *StandardDSP) AnalyticSignal(signal []float64) []complex128 {
	return d.envelope.AnalyticSignal(signal)
}

func (d *StandardDSP) LowPassFilter(signal []float64, order int, cutoffHz float64, sampleRate int) ([]float64, error) {
	filter, err := filters.NewButterworthLowPass(order, cutoffHz, sampleRate)
	if err != nil {
		return nil, err
	}
	return filter.ApplyZeroPhase(signal), nil
}

func (d *StandardDSP) TrackPitch(signal []float64, sampleRate int, minFreq, maxFreq float64, frameLength, hopLength int) ([]float64, []bool) {
	tracker := tonal.NewPitchTracker(minFreq, maxFreq, frameLength, hopLength)
	return tracker.Track(signal, sampleRate)
}

func (d *StandardDSP) FrameSignal(signal []float64, frameLength, hopLength int) [][]float64 {
	extractor := temporal.NewFrameExtractor(frameLength, hopLength)
	return extractor.Frames(signal)
}
