package analysis

import (
	"fmt"
	"sort"

	"github.com/aphasia-lab/pausa/algorithms/spectral"
)

// Label classifies a detected pause.
type Label string

const (
	// LabelBreath marks a pause dominated by breath noise: high zero
	// crossing rate with energy clearly above the recording's noise floor.
	LabelBreath Label = "breath"

	// LabelPathological marks a true hesitation: low-energy or low-rate
	// silence consistent with word-finding difficulty.
	LabelPathological Label = "pathological"
)

// PauseSegment is one detected pause with the features it was classified on.
// Start is inclusive and End exclusive, both in seconds from the start of
// the recording.
type PauseSegment struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Label  Label   `json:"label"`
	ZCR    float64 `json:"zcr"`    // Normalized zero crossing rate of the raw samples
	Energy float64 `json:"energy"` // Mean squared amplitude of the raw samples
}

// Duration returns the segment length in seconds.
func (s PauseSegment) Duration() float64 {
	return s.End - s.Start
}

// PauseAnalyzer segments a recording into pauses using thresholds adapted
// to the recording itself. The envelope floor and energy floor are both
// estimated from the quietest tenth of the envelope, so a recording with a
// noisy room tone is held to a different standard than a studio capture.
type PauseAnalyzer struct {
	zcrThreshold     float64
	minPauseDuration float64

	zcr *spectral.ZeroCrossingRate
}

// NewPauseAnalyzer creates a pause analyzer. zcrThreshold separates breath
// noise from silence; minPauseDuration drops dips too short to be
// deliberate pauses.
func NewPauseAnalyzer(zcrThreshold, minPauseDuration float64) *PauseAnalyzer {
	return &PauseAnalyzer{
		zcrThreshold:     zcrThreshold,
		minPauseDuration: minPauseDuration,
		zcr:              spectral.NewZeroCrossingRate(),
	}
}

// Analyze detects and classifies pauses. signal and envelope must be the
// same length and describe the same samples at sampleRate.
//
// The returned segments are ordered by start time and never overlap. Every
// segment spans at least minPauseDuration worth of whole samples; the
// fractional sample count truncates toward zero.
func (pa *PauseAnalyzer) Analyze(signal []float64, sampleRate int, envelope []float64) ([]PauseSegment, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidInput, sampleRate)
	}
	if len(signal) != len(envelope) {
		return nil, fmt.Errorf("%w: signal and envelope lengths differ (%d vs %d)", ErrInvalidInput, len(signal), len(envelope))
	}
	if len(envelope) == 0 {
		return nil, fmt.Errorf("%w: envelope is empty", ErrInvalidInput)
	}

	envelopeFloor, energyFloor := pa.adaptiveFloors(signal, envelope)

	minSamples := int(pa.minPauseDuration * float64(sampleRate))

	segments := []PauseSegment{}
	for _, run := range silentRuns(envelope, envelopeFloor) {
		start, end := run[0], run[1]
		if end-start < minSamples {
			continue
		}
		segments = append(segments, pa.classify(signal[start:end], start, end, sampleRate, energyFloor))
	}

	return segments, nil
}

// adaptiveFloors estimates the envelope and energy noise floors from the
// quietest 10% of envelope samples. Both floors are measured over the same
// sample indices: the energy floor describes the raw signal power at the
// places the envelope says are quietest, which is what a breath has to
// exceed to count as airflow rather than room tone.
func (pa *PauseAnalyzer) adaptiveFloors(signal, envelope []float64) (float64, float64) {
	n := len(envelope)

	quietCount := int(0.1 * float64(n))
	if quietCount < 1 {
		quietCount = 1
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool {
		ia, ib := indices[a], indices[b]
		if envelope[ia] != envelope[ib] {
			return envelope[ia] < envelope[ib]
		}
		return ia < ib
	})

	envelopeSum := 0.0
	energySum := 0.0
	for _, idx := range indices[:quietCount] {
		envelopeSum += envelope[idx]
		energySum += signal[idx] * signal[idx]
	}

	return envelopeSum / float64(quietCount), energySum / float64(quietCount)
}

// silentRuns collapses the below-floor mask into half-open [start, end)
// index runs. A run still open at the end of the envelope is closed there.
// Samples exactly at the floor count as silent, so a recording that is
// quiet everywhere becomes a single full-length run.
func silentRuns(envelope []float64, floor float64) [][2]int {
	var runs [][2]int

	inRun := false
	runStart := 0
	for i, v := range envelope {
		silent := v <= floor
		if silent && !inRun {
			inRun = true
			runStart = i
		} else if !silent && inRun {
			inRun = false
			runs = append(runs, [2]int{runStart, i})
		}
	}
	if inRun {
		runs = append(runs, [2]int{runStart, len(envelope)})
	}

	return runs
}

// classify labels one pause run from its raw-sample features. Breath noise
// must both cross zero faster than the threshold and carry energy clearly
// above the floor; everything else is a pathological pause.
func (pa *PauseAnalyzer) classify(segment []float64, start, end, sampleRate int, energyFloor float64) PauseSegment {
	zcrValue := pa.zcr.Compute(segment)
	energy := meanSquare(segment)

	label := LabelPathological
	if zcrValue > pa.zcrThreshold && energy > energyFloor*1.1 {
		label = LabelBreath
	}

	return PauseSegment{
		Start:  float64(start) / float64(sampleRate),
		End:    float64(end) / float64(sampleRate),
		Label:  label,
		ZCR:    zcrValue,
		Energy: energy,
	}
}

// meanSquare returns the mean squared amplitude of the segment.
func meanSquare(segment []float64) float64 {
	if len(segment) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range segment {
		sum += v * v
	}

	return sum / float64(len(segment))
}
