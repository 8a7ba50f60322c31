package spectral

import (
	"math"
)

// ZeroCrossingRate computes the rate of sign changes between adjacent
// samples. Breath noise is dominated by broadband turbulence and crosses
// zero far more often than the low-frequency residue inside a true
// hesitation, which makes the rate a cheap discriminator for pause
// classification.
type ZeroCrossingRate struct{}

// NewZeroCrossingRate creates a new zero crossing rate calculator
func NewZeroCrossingRate() *ZeroCrossingRate {
	return &ZeroCrossingRate{}
}

// Compute returns the fraction of adjacent sample pairs whose sign bit
// differs, in [0, 1]. Segments shorter than two samples have no adjacent
// pairs and yield 0.
func (zcr *ZeroCrossingRate) Compute(segment []float64) float64 {
	if len(segment) < 2 {
		return 0.0
	}

	crossings := zcr.CountCrossings(segment)
	return float64(crossings) / float64(len(segment)-1)
}

// CountCrossings counts sign bit changes between adjacent samples.
// The sign bit distinguishes negative from non-negative values, so an
// exactly-zero sample counts as positive and a negative zero as negative.
func (zcr *ZeroCrossingRate) CountCrossings(segment []float64) int {
	crossings := 0
	for i := 1; i < len(segment); i++ {
		if math.Signbit(segment[i]) != math.Signbit(segment[i-1]) {
			crossings++
		}
	}
	return crossings
}

// ComputePerSecond converts the crossing count of a segment into crossings
// per second at the given sample rate.
func (zcr *ZeroCrossingRate) ComputePerSecond(segment []float64, sampleRate int) float64 {
	if len(segment) < 2 || sampleRate <= 0 {
		return 0.0
	}

	duration := float64(len(segment)) / float64(sampleRate)
	return float64(zcr.CountCrossings(segment)) / duration
}
