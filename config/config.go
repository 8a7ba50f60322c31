// Package config layers run configuration for the pausa tools: built-in
// defaults, then an optional YAML file, then PAUSA_* environment
// variables. CLI flags are applied on top by the command layer.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/aphasia-lab/pausa/analysis"
	"github.com/aphasia-lab/pausa/transcode"
)

// Analysis configures the pause and prosody analysis stages.
type Analysis struct {
	ZCRThreshold     float64 `yaml:"zcr_threshold" env:"PAUSA_ZCR_THRESHOLD" validate:"gte=0,lte=1"`
	MinPauseDuration float64 `yaml:"min_pause_duration" env:"PAUSA_MIN_PAUSE_DURATION" validate:"gte=0"`
	TargetSampleRate int     `yaml:"target_sample_rate" env:"PAUSA_TARGET_SAMPLE_RATE" validate:"gt=0"`
}

// Decoder configures the ffmpeg-backed audio loader.
type Decoder struct {
	FFmpegPath      string `yaml:"ffmpeg_path" env:"PAUSA_FFMPEG_PATH" validate:"required"`
	FFprobePath     string `yaml:"ffprobe_path" env:"PAUSA_FFPROBE_PATH" validate:"required"`
	ResampleQuality string `yaml:"resample_quality" env:"PAUSA_RESAMPLE_QUALITY" validate:"oneof=fast medium high"`
	TimeoutSeconds  int    `yaml:"timeout_seconds" env:"PAUSA_DECODE_TIMEOUT_SECONDS" validate:"gt=0"`
	RemoveDC        bool   `yaml:"remove_dc" env:"PAUSA_REMOVE_DC"`
}

// Batch configures corpus-wide runs.
type Batch struct {
	Workers  int    `yaml:"workers" env:"PAUSA_WORKERS" validate:"gte=1"`
	CacheDir string `yaml:"cache_dir" env:"PAUSA_CACHE_DIR"`
}

// Log configures the process-wide logger.
type Log struct {
	Level string `yaml:"level" env:"PAUSA_LOG_LEVEL" validate:"oneof=debug info warn error fatal"`
}

// Root is the full configuration tree for the pausa tools.
type Root struct {
	Analysis Analysis `yaml:"analysis"`
	Decoder  Decoder  `yaml:"decoder"`
	Batch    Batch    `yaml:"batch"`
	Log      Log      `yaml:"log"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Root {
	return &Root{
		Analysis: Analysis{
			ZCRThreshold:     analysis.DefaultZCRThreshold,
			MinPauseDuration: analysis.DefaultMinPauseDuration,
			TargetSampleRate: analysis.DefaultTargetSampleRate,
		},
		Decoder: Decoder{
			FFmpegPath:      "ffmpeg",
			FFprobePath:     "ffprobe",
			ResampleQuality: "high",
			TimeoutSeconds:  120,
			RemoveDC:        false,
		},
		Batch: Batch{
			Workers:  runtime.NumCPU(),
			CacheDir: "",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// DefaultPaths lists the config file locations tried, in order, when no
// explicit path is given.
func DefaultPaths() []string {
	return []string{
		"pausa.yaml",
		filepath.Join("config", "pausa.yaml"),
	}
}

// Load builds the configuration tree. An explicit path must exist and
// parse; with an empty path the default locations are tried and a missing
// file falls back to defaults. Environment variables are applied last.
func Load(ctx context.Context, path string) (*Root, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		for _, candidate := range DefaultPaths() {
			err := decodeFile(candidate, cfg)
			if err == nil {
				break
			}
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, fmt.Errorf("config: environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decodeFile overlays one YAML file onto cfg. Unknown keys are rejected so
// a typoed threshold name fails loudly instead of silently keeping the
// default.
func decodeFile(path string, cfg *Root) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty file keeps defaults
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Validate checks tag constraints plus the relational rules the tags
// cannot express.
func (r *Root) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// The envelope low-pass must stay below Nyquist at the analysis rate.
	nyquist := float64(r.Analysis.TargetSampleRate) / 2.0
	if analysis.EnvelopeCutoffHz >= nyquist {
		return fmt.Errorf("config: target sample rate %d Hz puts Nyquist (%g Hz) at or below the %g Hz envelope cutoff",
			r.Analysis.TargetSampleRate, nyquist, analysis.EnvelopeCutoffHz)
	}

	return nil
}

// AnalysisConfig maps the tree onto the analysis pipeline configuration.
func (r *Root) AnalysisConfig() analysis.Config {
	return analysis.Config{
		ZCRThreshold:     r.Analysis.ZCRThreshold,
		MinPauseDuration: r.Analysis.MinPauseDuration,
		TargetSampleRate: r.Analysis.TargetSampleRate,
	}
}

// DecoderConfig maps the tree onto the ffmpeg decoder configuration.
func (r *Root) DecoderConfig() *transcode.DecoderConfig {
	cfg := transcode.DefaultDecoderConfig()
	cfg.TargetSampleRate = r.Analysis.TargetSampleRate
	cfg.FFmpegPath = r.Decoder.FFmpegPath
	cfg.FFprobePath = r.Decoder.FFprobePath
	cfg.ResampleQuality = r.Decoder.ResampleQuality
	cfg.Timeout = time.Duration(r.Decoder.TimeoutSeconds) * time.Second
	cfg.RemoveDC = r.Decoder.RemoveDC
	return cfg
}
