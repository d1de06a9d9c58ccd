package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bowr/streamear/pkg/adapter"
	"github.com/bowr/streamear/pkg/repository"
	"github.com/bowr/streamear/pkg/usecase/seed"
	"github.com/bowr/streamear/pkg/utils/logging"
	"github.com/briandowns/spinner"
	"github.com/urfave/cli/v3"
)

func listenCommand() *cli.Command {
	var (
		cfg        config
		gemini     geminiConfig
		stream     string
		retryWait  time.Duration
		maxCycles  int64
		streamlink string
		ffmpeg     string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "stream",
			Usage:       "Stream URL to listen to instead of the streams in the settings file",
			Sources:     cli.EnvVars("STREAMEAR_STREAM"),
			Destination: &stream,
		},
		&cli.DurationFlag{
			Name:        "retry-wait",
			Usage:       "Pause after a failed capture or transcription",
			Value:       time.Hour,
			Sources:     cli.EnvVars("STREAMEAR_RETRY_WAIT"),
			Destination: &retryWait,
		},
		&cli.IntFlag{
			Name:        "max-cycles",
			Usage:       "Stop after this many cycles (0 runs until interrupted)",
			Sources:     cli.EnvVars("STREAMEAR_MAX_CYCLES"),
			Destination: &maxCycles,
		},
		&cli.StringFlag{
			Name:        "streamlink",
			Usage:       "Path to the streamlink binary",
			Value:       "streamlink",
			Sources:     cli.EnvVars("STREAMEAR_STREAMLINK"),
			Destination: &streamlink,
		},
		&cli.StringFlag{
			Name:        "ffmpeg",
			Usage:       "Path to the ffmpeg binary",
			Value:       "ffmpeg",
			Sources:     cli.EnvVars("STREAMEAR_FFMPEG"),
			Destination: &ffmpeg,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, geminiFlags(&gemini)...)

	return &cli.Command{
		Name:  "listen",
		Usage: "Record, transcribe and scan live streams for keywords until interrupted",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx, c.Root().ErrWriter)
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Initialize dependencies
			repo, closeRepo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			transcriber, err := gemini.newGemini(ctx)
			if err != nil {
				return err
			}

			// fail fast on a broken settings file; the loop re-reads it every cycle
			if _, err := cfg.loadSettings(); err != nil {
				return err
			}

			var (
				capture adapter.Capture = adapter.NewStreamCapture(
					adapter.WithStreamlinkPath(streamlink),
					adapter.WithFFmpegPath(ffmpeg),
				)
				tr adapter.Transcriber = transcriber
			)
			if cfg.logFormat != string(logging.FormatJSON) {
				capture = &spinnerCapture{Capture: capture, w: c.Root().ErrWriter}
				tr = &spinnerTranscriber{Transcriber: tr, w: c.Root().ErrWriter}
			}

			uc := seed.New(repo, seed.WithTranscriptLog(repository.NewTranscriptLog()))

			logging.From(ctx).Info("listener started",
				"settings", cfg.settingsPath,
				"backend", cfg.backend,
			)

			return uc.Listen(ctx, seed.ListenInput{
				Capture:      capture,
				Transcriber:  tr,
				LoadSettings: cfg.loadSettings,
				Stream:       stream,
				RetryWait:    retryWait,
				MaxCycles:    int(maxCycles),
			})
		},
	}
}

func newSpinner(w io.Writer, suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = suffix
	return s
}

// spinnerCapture shows terminal progress while a stream is recorded
type spinnerCapture struct {
	adapter.Capture
	w io.Writer
}

func (s *spinnerCapture) Record(ctx context.Context, streamURL string, duration time.Duration) ([]byte, error) {
	sp := newSpinner(s.w, fmt.Sprintf(" recording %s for %s", streamURL, duration))
	sp.Start()
	defer sp.Stop()
	return s.Capture.Record(ctx, streamURL, duration)
}

// spinnerTranscriber shows terminal progress while audio is transcribed
type spinnerTranscriber struct {
	adapter.Transcriber
	w io.Writer
}

func (s *spinnerTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	sp := newSpinner(s.w, fmt.Sprintf(" transcribing %d bytes", len(audio)))
	sp.Start()
	defer sp.Stop()
	return s.Transcriber.Transcribe(ctx, audio, mimeType)
}
