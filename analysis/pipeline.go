package analysis

import (
	"context"
	"fmt"

	"github.com/aphasia-lab/pausa/logging"
	"github.com/aphasia-lab/pausa/transcode"
)

// Recording is a decoded, resampled signal together with its smoothed
// envelope, ready for segmentation.
type Recording struct {
	Samples    []float64
	SampleRate int
	Envelope   []float64
}

// Duration returns the recording length in seconds.
func (r *Recording) Duration() float64 {
	if r.SampleRate <= 0 {
		return 0
	}
	return float64(len(r.Samples)) / float64(r.SampleRate)
}

// Result bundles everything the pipeline produces for one recording.
type Result struct {
	Path     string         `json:"path"`
	Duration float64        `json:"duration"`
	Segments []PauseSegment `json:"segments"`
	Report   Report         `json:"report"`
}

// Pipeline runs the full analysis chain: decode, envelope extraction,
// pause segmentation, and metric computation. A Pipeline is safe for
// concurrent use; every method works on its own data.
type Pipeline struct {
	cfg      Config
	decoder  *transcode.Decoder
	envelope *EnvelopeExtractor
	pauses   *PauseAnalyzer
	prosody  *ProsodyAnalyzer
	logger   logging.Logger
}

// NewPipeline creates a pipeline with the default DSP provider and decoder
// settings derived from the configuration.
func NewPipeline(cfg Config) (*Pipeline, error) {
	return NewPipelineWithDSP(cfg, NewStandardDSP())
}

// NewPipelineWithDSP creates a pipeline on a caller-supplied DSP provider.
func NewPipelineWithDSP(cfg Config, dsp DSP) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	decoderConfig := transcode.DefaultDecoderConfig()
	decoderConfig.TargetSampleRate = cfg.TargetSampleRate

	return &Pipeline{
		cfg:      cfg,
		decoder:  transcode.NewDecoder(decoderConfig),
		envelope: NewEnvelopeExtractor(dsp),
		pauses:   NewPauseAnalyzer(cfg.ZCRThreshold, cfg.MinPauseDuration),
		prosody:  NewProsodyAnalyzer(dsp),
		logger: logging.WithFields(logging.Fields{
			"component": "pipeline",
		}),
	}, nil
}

// NewPipelineWithDecoder creates a pipeline around an existing decoder,
// keeping the decoder's own target sample rate. The configuration's
// TargetSampleRate is ignored in favor of the decoder's.
func NewPipelineWithDecoder(cfg Config, decoder *transcode.Decoder) (*Pipeline, error) {
	p, err := NewPipelineWithDSP(cfg, NewStandardDSP())
	if err != nil {
		return nil, err
	}
	p.decoder = decoder
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Preprocess decodes the file to mono float64 samples at the target sample
// rate and extracts the smoothed envelope.
func (p *Pipeline) Preprocess(ctx context.Context, path string) (*Recording, error) {
	logger := p.logger.WithFields(logging.Fields{
		"function": "Preprocess",
		"path":     path,
	})

	audio, err := p.decoder.DecodeFile(ctx, path)
	if err != nil {
		return nil, err
	}

	envelope, err := p.envelope.Extract(audio.Samples, audio.SampleRate)
	if err != nil {
		return nil, err
	}

	logger.Debug("preprocessed recording", logging.Fields{
		"samples":     len(audio.Samples),
		"sample_rate": audio.SampleRate,
		"duration_s":  float64(len(audio.Samples)) / float64(audio.SampleRate),
	})

	return &Recording{
		Samples:    audio.Samples,
		SampleRate: audio.SampleRate,
		Envelope:   envelope,
	}, nil
}

// AnalyzePauses segments the recording into classified pauses.
func (p *Pipeline) AnalyzePauses(signal []float64, sampleRate int, envelope []float64) ([]PauseSegment, error) {
	return p.pauses.Analyze(signal, sampleRate, envelope)
}

// ComputeReport derives the full metric report from a recording and its
// pause segments.
func (p *Pipeline) ComputeReport(signal []float64, sampleRate int, envelope []float64, segments []PauseSegment, totalDuration float64) (Report, error) {
	pauseMetrics := ComputePauseMetrics(segments, totalDuration)

	speakingMetrics, err := ComputeSpeakingRate(signal, sampleRate, envelope)
	if err != nil {
		return nil, err
	}

	articulationMetrics := ComputeArticulationRate(segments, totalDuration)

	prosodyMetrics, err := p.prosody.Compute(signal, sampleRate)
	if err != nil {
		return nil, err
	}

	return BuildReport(pauseMetrics, speakingMetrics, articulationMetrics, prosodyMetrics)
}

// Analyze runs the complete chain on one file.
func (p *Pipeline) Analyze(ctx context.Context, path string) (*Result, error) {
	recording, err := p.Preprocess(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("preprocess %s: %w", path, err)
	}

	segments, err := p.AnalyzePauses(recording.Samples, recording.SampleRate, recording.Envelope)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", path, err)
	}

	duration := recording.Duration()
	report, err := p.ComputeReport(recording.Samples, recording.SampleRate, recording.Envelope, segments, duration)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", path, err)
	}

	p.logger.Info("analyzed recording", logging.Fields{
		"path":       path,
		"duration_s": duration,
		"segments":   len(segments),
	})

	return &Result{
		Path:     path,
		Duration: duration,
		Segments: segments,
		Report:   report,
	}, nil
}
