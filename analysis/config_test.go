package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.InDelta(t, 0.05, cfg.ZCRThreshold, 1e-12)
	assert.InDelta(t, 0.15, cfg.MinPauseDuration, 1e-12)
	assert.Equal(t, 16000, cfg.TargetSampleRate)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(c *Config) {}, false},
		{"zcr threshold at the bounds", func(c *Config) { c.ZCRThreshold = 1.0 }, false},
		{"negative zcr threshold", func(c *Config) { c.ZCRThreshold = -0.1 }, true},
		{"zcr threshold above one", func(c *Config) { c.ZCRThreshold = 1.1 }, true},
		{"negative min pause duration", func(c *Config) { c.MinPauseDuration = -0.1 }, true},
		{"zero min pause duration", func(c *Config) { c.MinPauseDuration = 0 }, false},
		{"zero sample rate", func(c *Config) { c.TargetSampleRate = 0 }, true},
		{"negative sample rate", func(c *Config) { c.TargetSampleRate = -16000 }, true},
		{"nyquist below the envelope cutoff", func(c *Config) { c.TargetSampleRate = 80 }, true},
		{"nyquist exactly at the envelope cutoff", func(c *Config) { c.TargetSampleRate = 100 }, true},
		{"nyquist just above the envelope cutoff", func(c *Config) { c.TargetSampleRate = 101 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
