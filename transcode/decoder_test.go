package transcode

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecoder(t *testing.T) {
	t.Run("nil config falls back to defaults", func(t *testing.T) {
		d := NewDecoder(nil)
		cfg := d.Config()

		assert.Equal(t, 16000, cfg.TargetSampleRate)
		assert.Equal(t, 1, cfg.TargetChannels)
		assert.Equal(t, "high", cfg.ResampleQuality)
		assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
		assert.Equal(t, "ffprobe", cfg.FFprobePath)
		assert.Equal(t, 2*time.Minute, cfg.Timeout)
		assert.False(t, cfg.RemoveDC)
	})

	t.Run("config is returned by value", func(t *testing.T) {
		d := NewDecoder(nil)

		cfg := d.Config()
		cfg.TargetSampleRate = 8000

		assert.Equal(t, 16000, d.Config().TargetSampleRate)
	})
}

func TestParseProbeOutput(t *testing.T) {
	t.Run("wav stream", func(t *testing.T) {
		data := []byte(`{
			"streams": [{
				"codec_type": "audio",
				"codec_name": "pcm_s16le",
				"sample_rate": "44100",
				"channels": 2,
				"duration": "12.5",
				"bit_rate": "1411200"
			}]
		}`)

		source, err := parseProbeOutput(data)
		require.NoError(t, err)
		assert.Equal(t, "pcm_s16le", source.Codec)
		assert.Equal(t, 44100, source.SampleRate)
		assert.Equal(t, 2, source.Channels)
		assert.InDelta(t, 12.5, source.Duration, 1e-9)
		assert.Equal(t, 1411200, source.Bitrate)
	})

	t.Run("missing optional fields degrade to zero", func(t *testing.T) {
		data := []byte(`{
			"streams": [{
				"codec_type": "audio",
				"codec_name": "opus",
				"channels": 1
			}]
		}`)

		source, err := parseProbeOutput(data)
		require.NoError(t, err)
		assert.Equal(t, "opus", source.Codec)
		assert.Zero(t, source.SampleRate)
		assert.Zero(t, source.Duration)
		assert.Zero(t, source.Bitrate)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parseProbeOutput([]byte(`{"streams": [`))
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("no streams", func(t *testing.T) {
		_, err := parseProbeOutput([]byte(`{"streams": []}`))
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("non audio stream", func(t *testing.T) {
		_, err := parseProbeOutput([]byte(`{"streams": [{"codec_type": "video", "channels": 1}]}`))
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("channel count out of range", func(t *testing.T) {
		_, err := parseProbeOutput([]byte(`{"streams": [{"codec_type": "audio", "channels": 0}]}`))
		assert.ErrorIs(t, err, ErrDecode)

		_, err = parseProbeOutput([]byte(`{"streams": [{"codec_type": "audio", "channels": 9}]}`))
		assert.ErrorIs(t, err, ErrDecode)
	})
}

func TestBytesToFloat64(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		want := []float64{0.5, -1.25, math.Pi}

		data := make([]byte, 8*len(want))
		for i, v := range want {
			binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
		}

		got := bytesToFloat64(data)
		assert.Equal(t, want, got)
	})

	t.Run("trailing partial sample is trimmed", func(t *testing.T) {
		data := make([]byte, 8)
		binary.LittleEndian.PutUint64(data, math.Float64bits(1.0))
		data = append(data, 0xAB, 0xCD, 0xEF)

		got := bytesToFloat64(data)
		assert.Equal(t, []float64{1.0}, got)
	})

	t.Run("too short for one sample", func(t *testing.T) {
		assert.Nil(t, bytesToFloat64(nil))
		assert.Nil(t, bytesToFloat64([]byte{0x01, 0x02}))
	})
}

func TestDecoder_BuildFFmpegArgs(t *testing.T) {
	source := &SourceInfo{SampleRate: 44100, Channels: 2}

	t.Run("standard decode", func(t *testing.T) {
		d := NewDecoder(nil)
		args := d.buildFFmpegArgs("in.wav", source)

		assert.Contains(t, args, "-f")
		assert.Contains(t, args, "f64le")
		assert.Contains(t, args, "-ac")
		assert.Contains(t, args, "1")
		assert.Contains(t, args, "-ar")
		assert.Contains(t, args, "16000")
		assert.Equal(t, "pipe:1", args[len(args)-1])
	})

	t.Run("resampler precision follows quality", func(t *testing.T) {
		for quality, filter := range map[string]string{
			"fast":   "aresample=resampler=soxr:precision=16",
			"medium": "aresample=resampler=soxr:precision=20",
			"high":   "aresample=resampler=soxr:precision=28",
		} {
			config := DefaultDecoderConfig()
			config.ResampleQuality = quality

			args := NewDecoder(config).buildFFmpegArgs("in.wav", source)
			assert.Contains(t, args, filter, "quality %s", quality)
		}
	})

	t.Run("no resample filter when rates already match", func(t *testing.T) {
		d := NewDecoder(nil)
		args := d.buildFFmpegArgs("in.wav", &SourceInfo{SampleRate: 16000, Channels: 1})

		assert.NotContains(t, args, "-af")
	})

	t.Run("duration cap adds a time limit", func(t *testing.T) {
		config := DefaultDecoderConfig()
		config.MaxDuration = 30 * time.Second

		args := NewDecoder(config).buildFFmpegArgs("in.wav", source)
		assert.Contains(t, args, "-t")
		assert.Contains(t, args, "30.00")
	})
}

func TestDecoder_ClassifyToolError(t *testing.T) {
	d := NewDecoder(nil)

	t.Run("exit error with stderr is a decode error", func(t *testing.T) {
		exitErr := &exec.ExitError{ProcessState: &os.ProcessState{}, Stderr: []byte("invalid data found\n")}

		err := d.classifyToolError("ffmpeg", exitErr)
		assert.ErrorIs(t, err, ErrDecode)
		assert.Contains(t, err.Error(), "invalid data found")
	})

	t.Run("exit error without stderr is still a decode error", func(t *testing.T) {
		exitErr := &exec.ExitError{ProcessState: &os.ProcessState{}}

		err := d.classifyToolError("ffprobe", exitErr)
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("launch failure is an io error", func(t *testing.T) {
		err := d.classifyToolError("ffmpeg", errors.New("executable file not found"))
		assert.ErrorIs(t, err, ErrIO)
		assert.Contains(t, err.Error(), "ffmpeg")
	})
}

func TestDecoder_DecodeFile_MissingFile(t *testing.T) {
	d := NewDecoder(nil)

	_, err := d.DecodeFile(context.Background(), filepath.Join(t.TempDir(), "no_such_recording.wav"))
	assert.ErrorIs(t, err, ErrIO)
}

func TestDecoder_CheckBinaries(t *testing.T) {
	config := DefaultDecoderConfig()
	config.FFmpegPath = filepath.Join(t.TempDir(), "ffmpeg-missing")

	err := NewDecoder(config).CheckBinaries()
	assert.ErrorIs(t, err, ErrIO)
	assert.Contains(t, err.Error(), "ffmpeg not found")
}
