package adapter

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrCaptureFailed = goerr.New("stream capture failed")
)

const (
	// CaptureMimeType is the format of audio returned by StreamCapture
	CaptureMimeType = "audio/wav"

	minStreamDumpBytes = 200000
	minAudioBytes      = 50000
)

// Capture records a fixed duration of audio from a live stream
type Capture interface {
	Record(ctx context.Context, streamURL string, duration time.Duration) ([]byte, error)
}

// StreamCapture dumps the stream with streamlink and converts it with ffmpeg
// to 16 kHz mono PCM WAV.
type StreamCapture struct {
	streamlink string
	ffmpeg     string
	retries    int
	workDir    string
}

type StreamCaptureOption func(*StreamCapture)

func WithStreamlinkPath(path string) StreamCaptureOption {
	return func(c *StreamCapture) { c.streamlink = path }
}

func WithFFmpegPath(path string) StreamCaptureOption {
	return func(c *StreamCapture) { c.ffmpeg = path }
}

func WithCaptureRetries(n int) StreamCaptureOption {
	return func(c *StreamCapture) { c.retries = n }
}

func WithCaptureWorkDir(dir string) StreamCaptureOption {
	return func(c *StreamCapture) { c.workDir = dir }
}

func NewStreamCapture(opts ...StreamCaptureOption) *StreamCapture {
	c := &StreamCapture{
		streamlink: "streamlink",
		ffmpeg:     "ffmpeg",
		retries:    2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *StreamCapture) Record(ctx context.Context, streamURL string, duration time.Duration) ([]byte, error) {
	dir, err := os.MkdirTemp(c.workDir, "streamear-capture-")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create capture directory")
	}
	defer os.RemoveAll(dir)

	var lastErr error
	for attempt := 1; attempt <= max(c.retries, 1); attempt++ {
		audio, err := c.record(ctx, dir, streamURL, duration)
		if err == nil {
			return audio, nil
		}
		if ctx.Err() != nil {
			return nil, goerr.Wrap(ctx.Err(), "capture cancelled")
		}
		lastErr = goerr.Wrap(err, "capture attempt failed", goerr.V("attempt", attempt))
	}
	return nil, lastErr
}

func (c *StreamCapture) record(ctx context.Context, dir, streamURL string, duration time.Duration) ([]byte, error) {
	dump := filepath.Join(dir, "stream.ts")
	wav := filepath.Join(dir, "stream.wav")
	_ = os.Remove(dump)

	seconds := strconv.Itoa(int(duration.Seconds()))
	if err := run(ctx, c.streamlink, "--hls-duration", seconds, "-o", dump, streamURL, "best"); err != nil {
		return nil, goerr.Wrap(ErrCaptureFailed, "streamlink failed",
			goerr.V("stream", streamURL), goerr.V("error", err.Error()))
	}

	info, err := os.Stat(dump)
	if err != nil || info.Size() < minStreamDumpBytes {
		// too small usually means an ad break or dead air
		return nil, goerr.Wrap(ErrCaptureFailed, "stream dump missing or too small", goerr.V("stream", streamURL))
	}

	if err := run(ctx, c.ffmpeg, "-y", "-i", dump, "-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", wav); err != nil {
		return nil, goerr.Wrap(ErrCaptureFailed, "ffmpeg failed", goerr.V("error", err.Error()))
	}

	audio, err := os.ReadFile(wav)
	if err != nil {
		return nil, goerr.Wrap(ErrCaptureFailed, "converted audio missing", goerr.V("error", err.Error()))
	}
	if len(audio) < minAudioBytes {
		return nil, goerr.Wrap(ErrCaptureFailed, "converted audio too small", goerr.V("bytes", len(audio)))
	}
	return audio, nil
}

func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return goerr.Wrap(err, "command failed", goerr.V("command", name), goerr.V("stderr", stderr.String()))
	}
	return nil
}
