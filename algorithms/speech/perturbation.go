package speech

import (
	"math"
)

// PerturbationAnalyzer measures cycle-to-cycle irregularity of the voice:
// jitter on pitch periods and shimmer on per-frame amplitudes. Elevated
// perturbation reflects reduced laryngeal control and is a standard part
// of clinical voice assessment.
//
// References:
//   - Boersma, P., Weenink, D. "Praat: doing phonetics by computer",
//     voice report measures
//   - Teixeira, J.P., Oliveira, C., Lopes, C. (2013). "Vocal Acoustic
//     Analysis - Jitter, Shimmer and HNR Parameters"
type PerturbationAnalyzer struct{}

// JitterResult contains pitch period perturbation measures.
type JitterResult struct {
	Local float64 `json:"jitter_local"` // Mean absolute difference of consecutive periods (s)
	RAP   float64 `json:"jitter_rap"`   // Average perturbation against a 3-point moving mean
	PPQ5  float64 `json:"jitter_ppq5"`  // Perturbation quotient against a 5-point moving mean
}

// ShimmerResult contains amplitude perturbation measures.
type ShimmerResult struct {
	Local float64 `json:"shimmer_local"` // Mean absolute difference of consecutive amplitudes
	DB    float64 `json:"shimmer_db"`    // Mean absolute difference of amplitudes in dB
	APQ5  float64 `json:"shimmer_apq5"`  // Perturbation quotient against a 5-point moving mean
}

// NewPerturbationAnalyzer creates a new perturbation analyzer
func NewPerturbationAnalyzer() *PerturbationAnalyzer {
	return &PerturbationAnalyzer{}
}

// ComputeJitter measures period-to-period irregularity over a sequence of
// pitch periods in seconds. Fewer than two periods yield zeros; the RAP and
// PPQ5 variants additionally need three and five periods respectively.
func (pa *PerturbationAnalyzer) ComputeJitter(periods []float64) JitterResult {
	if len(periods) < 2 {
		return JitterResult{}
	}

	return JitterResult{
		Local: meanAbsDiff(periods),
		RAP:   movingMeanDeviation(periods, 1),
		PPQ5:  movingMeanDeviation(periods, 2),
	}
}

// ComputeShimmer measures amplitude irregularity over a sequence of
// per-cycle amplitudes. Fewer than two amplitudes yield zeros.
//
// The dB variant compares log amplitudes; a small epsilon keeps silent
// cycles out of the log singularity.
func (pa *PerturbationAnalyzer) ComputeShimmer(amplitudes []float64) ShimmerResult {
	if len(amplitudes) < 2 {
		return ShimmerResult{}
	}

	logAmps := make([]float64, len(amplitudes))
	for i, a := range amplitudes {
		logAmps[i] = 20.0 * math.Log10(a+1e-9)
	}

	return ShimmerResult{
		Local: meanAbsDiff(amplitudes),
		DB:    meanAbsDiff(logAmps),
		APQ5:  movingMeanDeviation(amplitudes, 2),
	}
}

// meanAbsDiff returns the mean absolute difference between consecutive
// values.
func meanAbsDiff(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}

	sum := 0.0
	for i := 1; i < len(values); i++ {
		sum += math.Abs(values[i] - values[i-1])
	}

	return sum / float64(len(values)-1)
}

// movingMeanDeviation returns the mean absolute deviation of each interior
// value from the mean of its centered window of 2*radius+1 values. Radius 1
// gives the 3-point measure, radius 2 the 5-point measure. Sequences too
// short for a full window yield 0.
func movingMeanDeviation(values []float64, radius int) float64 {
	window := 2*radius + 1
	if len(values) < window {
		return 0.0
	}

	sum := 0.0
	count := 0
	for i := radius; i < len(values)-radius; i++ {
		windowSum := 0.0
		for j := i - radius; j <= i+radius; j++ {
			windowSum += values[j]
		}
		sum += math.Abs(values[i] - windowSum/float64(window))
		count++
	}

	return sum / float64(count)
}
