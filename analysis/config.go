package analysis

import (
	"fmt"
)

// Default analysis parameters. The thresholds were tuned on progressive
// aphasia recordings sampled at 16 kHz.
const (
	DefaultZCRThreshold     = 0.05
	DefaultMinPauseDuration = 0.15
	DefaultTargetSampleRate = 16000
)

// Config holds the tunable parameters of the analysis pipeline.
type Config struct {
	// ZCRThreshold is the normalized zero crossing rate above which a
	// sufficiently energetic pause is labeled a breath, in [0, 1].
	ZCRThreshold float64 `json:"zcr_threshold"`

	// MinPauseDuration is the shortest silence kept as a pause, in
	// seconds. Shorter dips are treated as articulation gaps and ignored.
	MinPauseDuration float64 `json:"min_pause_duration"`

	// TargetSampleRate is the rate recordings are resampled to before
	// analysis, in Hz.
	TargetSampleRate int `json:"target_sample_rate"`
}

// DefaultConfig returns the standard analysis configuration.
func DefaultConfig() Config {
	return Config{
		ZCRThreshold:     DefaultZCRThreshold,
		MinPauseDuration: DefaultMinPauseDuration,
		TargetSampleRate: DefaultTargetSampleRate,
	}
}

// Validate checks the configuration before any audio is processed.
func (c Config) Validate() error {
	if c.ZCRThreshold < 0 || c.ZCRThreshold > 1 {
		return fmt.Errorf("%w: zcr threshold %g outside [0, 1]", ErrInvalidConfiguration, c.ZCRThreshold)
	}
	if c.MinPauseDuration < 0 {
		return fmt.Errorf("%w: min pause duration %g is negative", ErrInvalidConfiguration, c.MinPauseDuration)
	}
	if c.TargetSampleRate <= 0 {
		return fmt.Errorf("%w: target sample rate %d is not positive", ErrInvalidConfiguration, c.TargetSampleRate)
	}
	nyquist := float64(c.TargetSampleRate) / 2.0
	if EnvelopeCutoffHz >= nyquist {
		return fmt.Errorf("%w: target sample rate %d Hz leaves no room for the %g Hz envelope cutoff below Nyquist (%g Hz)",
			ErrInvalidConfiguration, c.TargetSampleRate, EnvelopeCutoffHz, nyquist)
	}
	return nil
}
