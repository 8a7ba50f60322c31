package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// PauseMetrics summarizes the pause inventory of a recording. All rates
// are fractions of the recording duration except BreathFrequency, which is
// breaths per second.
type PauseMetrics struct {
	PathologicalPauseRate float64 `json:"pathological_pause_rate"`
	BreathFrequency       float64 `json:"breath_frequency"`
	PathologicalDuration  float64 `json:"pathological_duration"`
	BreathCount           int     `json:"breath_count"`
	TotalPauseDuration    float64 `json:"total_pause_duration"`
	PauseRate             float64 `json:"pause_rate"`
}

// ComputePauseMetrics derives pause timing metrics from classified
// segments. A non-positive total duration yields all zeros.
func ComputePauseMetrics(segments []PauseSegment, totalDuration float64) PauseMetrics {
	if totalDuration <= 0 {
		return PauseMetrics{}
	}

	pathologicalDuration := 0.0
	breathCount := 0
	totalPauseDuration := 0.0

	for _, seg := range segments {
		duration := seg.Duration()
		totalPauseDuration += duration

		switch seg.Label {
		case LabelPathological:
			pathologicalDuration += duration
		case LabelBreath:
			breathCount++
		}
	}

	return PauseMetrics{
		PathologicalPauseRate: pathologicalDuration / totalDuration,
		BreathFrequency:       float64(breathCount) / totalDuration,
		PathologicalDuration:  pathologicalDuration,
		BreathCount:           breathCount,
		TotalPauseDuration:    totalPauseDuration,
		PauseRate:             totalPauseDuration / totalDuration,
	}
}

func (m PauseMetrics) metrics() map[string]float64 {
	return map[string]float64{
		"pathological_pause_rate": m.PathologicalPauseRate,
		"breath_frequency":        m.BreathFrequency,
		"pathological_duration":   m.PathologicalDuration,
		"breath_count":            float64(m.BreathCount),
		"total_pause_duration":    m.TotalPauseDuration,
		"pause_rate":              m.PauseRate,
	}
}

// SpeakingRateMetrics describes how much of a recording sits above the
// speech threshold.
type SpeakingRateMetrics struct {
	SpeakingRate   float64 `json:"speaking_rate"`   // Fraction of the recording spent speaking
	SpeechDuration float64 `json:"speech_duration"` // Time above the speech threshold (s)
	TotalDuration  float64 `json:"total_duration"`  // Recording length (s)
}

// speakingThresholdFactor scales the envelope mean contribution to the
// speech threshold; the standard deviation contributes a fixed tenth.
const speakingThresholdFactor = 0.1

// ComputeSpeakingRate derives speech activity from the envelope. The
// threshold adapts to the recording: a tenth of the envelope mean plus a
// tenth of its spread, so a uniformly quiet capture is not read as silence.
func ComputeSpeakingRate(signal []float64, sampleRate int, envelope []float64) (SpeakingRateMetrics, error) {
	if sampleRate <= 0 {
		return SpeakingRateMetrics{}, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidInput, sampleRate)
	}
	if len(signal) != len(envelope) {
		return SpeakingRateMetrics{}, fmt.Errorf("%w: signal and envelope lengths differ (%d vs %d)", ErrInvalidInput, len(signal), len(envelope))
	}
	if len(signal) == 0 {
		return SpeakingRateMetrics{}, nil
	}

	totalDuration := float64(len(signal)) / float64(sampleRate)

	threshold := stat.Mean(envelope, nil)*speakingThresholdFactor + stat.PopStdDev(envelope, nil)*0.1

	speechSamples := 0
	for _, v := range envelope {
		if v > threshold {
			speechSamples++
		}
	}
	speechDuration := float64(speechSamples) / float64(sampleRate)

	speakingRate := 0.0
	if totalDuration > 0 {
		speakingRate = speechDuration / totalDuration
	}

	return SpeakingRateMetrics{
		SpeakingRate:   speakingRate,
		SpeechDuration: speechDuration,
		TotalDuration:  totalDuration,
	}, nil
}

func (m SpeakingRateMetrics) metrics() map[string]float64 {
	return map[string]float64{
		"speaking_rate":   m.SpeakingRate,
		"speech_duration": m.SpeechDuration,
		"total_duration":  m.TotalDuration,
	}
}

// ArticulationMetrics describes the recording with pauses removed.
type ArticulationMetrics struct {
	ArticulationRate  float64 `json:"articulation_rate"`   // Non-pause fraction of the recording
	PauseDuration     float64 `json:"pause_duration"`      // Total pause time (s)
	NetSpeechDuration float64 `json:"net_speech_duration"` // Recording time outside pauses (s)
}

// ComputeArticulationRate derives pause-free timing from classified
// segments. A non-positive total duration yields all zeros.
func ComputeArticulationRate(segments []PauseSegment, totalDuration float64) ArticulationMetrics {
	if totalDuration <= 0 {
		return ArticulationMetrics{}
	}

	pauseDuration := 0.0
	for _, seg := range segments {
		pauseDuration += seg.Duration()
	}
	netSpeechDuration := totalDuration - pauseDuration

	return ArticulationMetrics{
		ArticulationRate:  netSpeechDuration / totalDuration,
		PauseDuration:     pauseDuration,
		NetSpeechDuration: netSpeechDuration,
	}
}

func (m ArticulationMetrics) metrics() map[string]float64 {
	return map[string]float64{
		"articulation_rate":   m.ArticulationRate,
		"pause_duration":      m.PauseDuration,
		"net_speech_duration": m.NetSpeechDuration,
	}
}
