package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/aphasia-lab/pausa/algorithms/speech"
)

// Prosody framing and F0 search parameters. 75-600 Hz spans pathological
// and healthy adult voices; 2048/512 at 16 kHz gives 128 ms frames every
// 32 ms.
const (
	ProsodyMinFreq     = 75.0
	ProsodyMaxFreq     = 600.0
	ProsodyFrameLength = 2048
	ProsodyHopLength   = 512
)

// ProsodyMetrics contains the melodic, perturbation, and loudness features
// of a recording. F0 statistics cover voiced frames only; intensity covers
// every complete frame.
type ProsodyMetrics struct {
	F0Mean      float64 `json:"f0_mean"`
	F0Std       float64 `json:"f0_std"`
	F0Min       float64 `json:"f0_min"`
	F0Max       float64 `json:"f0_max"`
	F0Range     float64 `json:"f0_range"`
	F0CV        float64 `json:"f0_cv"` // Coefficient of variation, std over mean
	VoicedRatio float64 `json:"voiced_ratio"`

	JitterLocal float64 `json:"jitter_local"`
	JitterRAP   float64 `json:"jitter_rap"`
	JitterPPQ5  float64 `json:"jitter_ppq5"`

	ShimmerLocal float64 `json:"shimmer_local"`
	ShimmerDB    float64 `json:"shimmer_db"`
	ShimmerAPQ5  float64 `json:"shimmer_apq5"`

	IntensityMean  float64 `json:"intensity_mean"`
	IntensityStd   float64 `json:"intensity_std"`
	IntensityMin   float64 `json:"intensity_min"`
	IntensityMax   float64 `json:"intensity_max"`
	IntensityRange float64 `json:"intensity_range"`
}

// ProsodyAnalyzer extracts pitch, perturbation, and intensity features.
// Degenerate inputs degrade to zeros rather than errors: a recording with
// no voiced frames is a valid clinical observation, not a failure.
type ProsodyAnalyzer struct {
	dsp          DSP
	perturbation *speech.PerturbationAnalyzer
}

// NewProsodyAnalyzer creates a prosody analyzer on the given DSP provider.
func NewProsodyAnalyzer(dsp DSP) *ProsodyAnalyzer {
	return &ProsodyAnalyzer{
		dsp:          dsp,
		perturbation: speech.NewPerturbationAnalyzer(),
	}
}

// Compute extracts all prosody features from a recording.
func (pa *ProsodyAnalyzer) Compute(signal []float64, sampleRate int) (ProsodyMetrics, error) {
	if sampleRate <= 0 {
		return ProsodyMetrics{}, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidInput, sampleRate)
	}

	var result ProsodyMetrics

	f0, voiced := pa.dsp.TrackPitch(signal, sampleRate, ProsodyMinFreq, ProsodyMaxFreq, ProsodyFrameLength, ProsodyHopLength)

	voicedF0 := make([]float64, 0, len(f0))
	for i, v := range voiced {
		if v {
			voicedF0 = append(voicedF0, f0[i])
		}
	}

	if len(voicedF0) > 0 {
		mean := stat.Mean(voicedF0, nil)
		std := stat.PopStdDev(voicedF0, nil)
		minF0 := floats.Min(voicedF0)
		maxF0 := floats.Max(voicedF0)

		result.F0Mean = mean
		result.F0Std = std
		result.F0Min = minF0
		result.F0Max = maxF0
		result.F0Range = maxF0 - minF0
		if mean > 0 {
			result.F0CV = std / mean
		}
		result.VoicedRatio = float64(len(voicedF0)) / float64(len(f0))
	}

	// Jitter works on pitch periods rather than frequencies; the epsilon
	// keeps the reciprocal finite if a zero F0 ever slips through voicing.
	periods := make([]float64, len(voicedF0))
	for i, v := range voicedF0 {
		periods[i] = 1.0 / (v + 1e-9)
	}
	jitter := pa.perturbation.ComputeJitter(periods)
	result.JitterLocal = jitter.Local
	result.JitterRAP = jitter.RAP
	result.JitterPPQ5 = jitter.PPQ5

	frames := pa.dsp.FrameSignal(signal, ProsodyFrameLength, ProsodyHopLength)

	// Pitch frames are centered and amplitude frames are not, so the
	// voicing mask runs ahead of the amplitude count; indexing by frame
	// position keeps the overlap aligned from the start of the recording.
	amplitudes := frameMeanAbs(frames)
	voicedAmplitudes := make([]float64, 0, len(amplitudes))
	for i, a := range amplitudes {
		if i < len(voiced) && voiced[i] {
			voicedAmplitudes = append(voicedAmplitudes, a)
		}
	}
	shimmer := pa.perturbation.ComputeShimmer(voicedAmplitudes)
	result.ShimmerLocal = shimmer.Local
	result.ShimmerDB = shimmer.DB
	result.ShimmerAPQ5 = shimmer.APQ5

	intensity := frameRMS(frames)
	if len(intensity) > 0 {
		minI := floats.Min(intensity)
		maxI := floats.Max(intensity)

		result.IntensityMean = stat.Mean(intensity, nil)
		result.IntensityStd = stat.PopStdDev(intensity, nil)
		result.IntensityMin = minI
		result.IntensityMax = maxI
		result.IntensityRange = maxI - minI
	}

	return result, nil
}

func (m ProsodyMetrics) metrics() map[string]float64 {
	return map[string]float64{
		"f0_mean":      m.F0Mean,
		"f0_std":       m.F0Std,
		"f0_min":       m.F0Min,
		"f0_max":       m.F0Max,
		"f0_range":     m.F0Range,
		"f0_cv":        m.F0CV,
		"voiced_ratio": m.VoicedRatio,

		"jitter_local": m.JitterLocal,
		"jitter_rap":   m.JitterRAP,
		"jitter_ppq5":  m.JitterPPQ5,

		"shimmer_local": m.ShimmerLocal,
		"shimmer_db":    m.ShimmerDB,
		"shimmer_apq5":  m.ShimmerAPQ5,

		"intensity_mean":  m.IntensityMean,
		"intensity_std":   m.IntensityStd,
		"intensity_min":   m.IntensityMin,
		"intensity_max":   m.IntensityMax,
		"intensity_range": m.IntensityRange,
	}
}

// frameMeanAbs reduces each frame to its mean absolute amplitude.
func frameMeanAbs(frames [][]float64) []float64 {
	values := make([]float64, len(frames))
	for i, frame := range frames {
		sum := 0.0
		for _, v := range frame {
			sum += math.Abs(v)
		}
		if len(frame) > 0 {
			values[i] = sum / float64(len(frame))
		}
	}
	return values
}

// frameRMS reduces each frame to its root mean square energy.
func frameRMS(frames [][]float64) []float64 {
	values := make([]float64, len(frames))
	for i, frame := range frames {
		sum := 0.0
		for _, v := range frame {
			sum += v * v
		}
		if len(frame) > 0 {
			values[i] = math.Sqrt(sum / float64(len(frame)))
		}
	}
	return values
}
