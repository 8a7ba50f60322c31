// Package transcode turns clinic recordings into analysis-ready PCM.
//
// Session audio arrives in whatever container the recording hardware
// produced (WAV, FLAC, MP3, M4A, ...). The decoder shells out to ffprobe
// to identify the audio stream and to ffmpeg to decode it into mono
// float64 samples at the pipeline's target sample rate.
package transcode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/aphasia-lab/pausa/algorithms/filters"
	"github.com/aphasia-lab/pausa/logging"
)

// Sentinel errors for decode failures. Callers distinguish environment
// problems (missing file, missing ffmpeg) from corrupt or non-audio input
// with errors.Is.
var (
	// ErrIO indicates the file or the ffmpeg/ffprobe binaries could not
	// be accessed at all.
	ErrIO = errors.New("audio io error")

	// ErrDecode indicates the input was readable but could not be decoded
	// as audio (no audio stream, corrupt container, empty output).
	ErrDecode = errors.New("audio decode error")
)

// AudioData holds decoded PCM ready for envelope extraction.
type AudioData struct {
	Samples    []float64     `json:"-"`           // Interleaved PCM, mono in practice
	SampleRate int           `json:"sample_rate"` // Post-resample rate
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
	Source     *SourceInfo   `json:"source,omitempty"`
}

// SourceInfo describes the original stream as reported by ffprobe, before
// resampling. Kept for provenance in batch reports.
type SourceInfo struct {
	Path       string  `json:"path"`
	Codec      string  `json:"codec"`
	SampleRate int     `json:"sample_rate,omitempty"`
	Channels   int     `json:"channels"`
	Duration   float64 `json:"duration,omitempty"`
	Bitrate    int     `json:"bitrate,omitempty"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"`
	TargetChannels   int           `json:"target_channels"`
	ResampleQuality  string        `json:"resample_quality"` // "fast", "medium", "high"
	MaxDuration      time.Duration `json:"max_duration"`     // 0 means no limit
	FFmpegPath       string        `json:"ffmpeg_path"`      // Path to ffmpeg binary
	FFprobePath      string        `json:"ffprobe_path"`     // Path to ffprobe binary
	Timeout          time.Duration `json:"timeout"`          // Timeout per ffmpeg/ffprobe run
	RemoveDC         bool          `json:"remove_dc"`        // High-pass out recorder DC offset
}

// DefaultDecoderConfig returns the decoder configuration used by the
// analysis pipeline: mono 16 kHz, high-quality soxr resampling.
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 16000,
		TargetChannels:   1,
		ResampleQuality:  "high",
		MaxDuration:      0,
		FFmpegPath:       "ffmpeg",  // Assume in PATH
		FFprobePath:      "ffprobe", // Assume in PATH
		Timeout:          2 * time.Minute,
		RemoveDC:         false,
	}
}

// Decoder handles audio decoding using FFmpeg
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// Config returns a copy of the decoder configuration.
func (d *Decoder) Config() DecoderConfig {
	return *d.config
}

// DecodeFile probes and decodes an audio file into mono PCM at the target
// sample rate. Unreadable paths and missing binaries return ErrIO; corrupt
// or audio-less input returns ErrDecode.
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	logger.Debug("Starting audio file decode")

	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %v", ErrIO, filename, err)
	}

	source, err := d.probeFile(ctx, filename)
	if err != nil {
		logger.Error(err, "Failed to probe audio file")
		return nil, err
	}

	logger.Debug("Audio stream detected", logging.Fields{
		"input_sample_rate": source.SampleRate,
		"input_channels":    source.Channels,
		"input_codec":       source.Codec,
		"input_duration":    source.Duration,
	})

	return d.decodeWithFFmpeg(ctx, filename, source)
}

// CheckBinaries verifies that ffmpeg and ffprobe are invocable. Batch runs
// call this once up front instead of failing on the first recording.
func (d *Decoder) CheckBinaries() error {
	if _, err := exec.LookPath(d.config.FFmpegPath); err != nil {
		return fmt.Errorf("%w: ffmpeg not found at %q: %v", ErrIO, d.config.FFmpegPath, err)
	}
	if _, err := exec.LookPath(d.config.FFprobePath); err != nil {
		return fmt.Errorf("%w: ffprobe not found at %q: %v", ErrIO, d.config.FFprobePath, err)
	}
	return nil
}

// probeFile uses ffprobe to identify the first audio stream of a file
func (d *Decoder) probeFile(ctx context.Context, filename string) (*SourceInfo, error) {
	args := []string{
		"-v", "quiet", // Suppress verbose output
		"-print_format", "json", // JSON output
		"-show_streams",          // Show stream info
		"-select_streams", "a:0", // First audio stream only
		filename,
	}

	runCtx, cancel := d.commandContext(ctx)
	defer cancel()

	cmd := exec.CommandContext(runCtx, d.config.FFprobePath, args...)

	output, err := cmd.Output()
	if err != nil {
		return nil, d.classifyToolError("ffprobe", err)
	}

	source, err := parseProbeOutput(output)
	if err != nil {
		return nil, err
	}
	source.Path = filename
	return source, nil
}

// parseProbeOutput parses ffprobe JSON to extract audio stream properties
func parseProbeOutput(jsonData []byte) (*SourceInfo, error) {
	var probe struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			CodecName  string `json:"codec_name"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
			Duration   string `json:"duration"`
			BitRate    string `json:"bit_rate"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("%w: malformed ffprobe output: %v", ErrDecode, err)
	}

	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("%w: no audio streams found", ErrDecode)
	}

	stream := probe.Streams[0]

	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("%w: stream is not audio type: %s", ErrDecode, stream.CodecType)
	}

	if stream.Channels <= 0 || stream.Channels > 8 {
		return nil, fmt.Errorf("%w: invalid channel count: %d", ErrDecode, stream.Channels)
	}

	// Sample rate, duration and bitrate are informational only; the decode
	// step resamples regardless, so parse failures degrade to zero.
	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil {
		sampleRate = 0
	}

	duration, err := strconv.ParseFloat(stream.Duration, 64)
	if err != nil {
		duration = 0
	}

	bitrate, err := strconv.Atoi(stream.BitRate)
	if err != nil {
		bitrate = 0
	}

	return &SourceInfo{
		Codec:      stream.CodecName,
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Duration:   duration,
		Bitrate:    bitrate,
	}, nil
}

// decodeWithFFmpeg performs the actual audio decoding
func (d *Decoder) decodeWithFFmpeg(ctx context.Context, filename string, source *SourceInfo) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "decodeWithFFmpeg",
		"filename":  filename,
	})

	args := d.buildFFmpegArgs(filename, source)

	runCtx, cancel := d.commandContext(ctx)
	defer cancel()

	cmd := exec.CommandContext(runCtx, d.config.FFmpegPath, args...)

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	startTime := time.Now()
	output, err := cmd.Output()
	if err != nil {
		toolErr := d.classifyToolError("ffmpeg", err)
		logger.Error(toolErr, "Ffmpeg decode failed")
		return nil, toolErr
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no audio samples decoded from %s", ErrDecode, filename)
	}

	if d.config.RemoveDC {
		samples = filters.NewDCRemoval().ProcessBuffer(samples)
	}

	samplesPerChannel := len(samples) / d.config.TargetChannels
	duration := time.Duration(samplesPerChannel) * time.Second / time.Duration(d.config.TargetSampleRate)

	logger.Debug("FFmpeg decode completed", logging.Fields{
		"input_sample_rate":  source.SampleRate,
		"input_codec":        source.Codec,
		"output_samples":     len(samples),
		"output_sample_rate": d.config.TargetSampleRate,
		"output_duration":    duration.Seconds(),
		"decode_time":        time.Since(startTime).Seconds(),
	})

	return &AudioData{
		Samples:    samples,
		SampleRate: d.config.TargetSampleRate,
		Channels:   d.config.TargetChannels,
		Duration:   duration,
		Source:     source,
	}, nil
}

// buildFFmpegArgs builds the ffmpeg arguments based on configuration and
// the probed stream properties
func (d *Decoder) buildFFmpegArgs(filename string, source *SourceInfo) []string {
	args := []string{
		"-v", "error", // Suppress all but errors
		"-i", filename,
		"-vn",         // No video
		"-f", "f64le", // Output raw float64 little-endian
		"-ac", strconv.Itoa(d.config.TargetChannels), // Target channels
		"-ar", strconv.Itoa(d.config.TargetSampleRate), // Target sample rate
	}

	// Resample with soxr when the source rate differs from the target
	if d.config.ResampleQuality != "" && source.SampleRate != d.config.TargetSampleRate {
		switch d.config.ResampleQuality {
		case "fast":
			args = append(args, "-af", "aresample=resampler=soxr:precision=16")
		case "medium":
			args = append(args, "-af", "aresample=resampler=soxr:precision=20")
		case "high":
			args = append(args, "-af", "aresample=resampler=soxr:precision=28")
		}
	}

	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}

	args = append(args, "pipe:1") // Output to stdout

	return args
}

// commandContext derives a context bounded by the configured timeout.
func (d *Decoder) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.config.Timeout > 0 {
		return context.WithTimeout(ctx, d.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// classifyToolError maps subprocess failures onto the sentinel errors. A
// tool that ran and exited nonzero points at the input (ErrDecode); a tool
// that could not run at all points at the environment (ErrIO).
func (d *Decoder) classifyToolError(tool string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		if stderr != "" {
			return fmt.Errorf("%w: %s: %s", ErrDecode, tool, stderr)
		}
		return fmt.Errorf("%w: %s: %v", ErrDecode, tool, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrIO, tool, err)
}

// bytesToFloat64 converts raw f64le bytes to []float64
func bytesToFloat64(data []byte) []float64 {
	if len(data)%8 != 0 {
		// Trim to multiple of 8 bytes
		data = data[:len(data)-(len(data)%8)]
	}

	if len(data) == 0 {
		return nil
	}

	sampleCount := len(data) / 8
	samples := make([]float64, sampleCount)

	for i := 0; i < sampleCount; i++ {
		// Convert 8 bytes to float64 (little-endian)
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}

	return samples
}
