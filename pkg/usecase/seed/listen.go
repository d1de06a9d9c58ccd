package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bowr/streamear/pkg/adapter"
	"github.com/bowr/streamear/pkg/model"
	"github.com/bowr/streamear/pkg/settings"
	"github.com/bowr/streamear/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// ListenInput configures the listener loop
type ListenInput struct {
	Capture     adapter.Capture
	Transcriber adapter.Transcriber
	// LoadSettings is called at the start of every cycle
	LoadSettings func() (*settings.Settings, error)
	// Stream overrides the configured streams when set
	Stream string
	// RetryWait is the pause after a failed capture or transcription
	RetryWait time.Duration
	// MaxCycles stops the loop after that many cycles; zero runs until ctx ends
	MaxCycles int
}

// Listen repeatedly records a stream, transcribes it and runs detection.
// Configured streams are visited round-robin, one per cycle. It returns nil
// when ctx is cancelled.
func (u *UseCase) Listen(ctx context.Context, input ListenInput) error {
	if input.Capture == nil || input.Transcriber == nil || input.LoadSettings == nil {
		return goerr.New("capture, transcriber and settings loader are required")
	}
	logger := logging.From(ctx)

	for cycle := 0; input.MaxCycles == 0 || cycle < input.MaxCycles; cycle++ {
		cfg, err := input.LoadSettings()
		if err != nil {
			return goerr.Wrap(err, "failed to load settings")
		}

		stream := input.Stream
		if stream == "" {
			if len(cfg.Streams) == 0 {
				return goerr.New("no stream configured")
			}
			stream = cfg.Streams[cycle%len(cfg.Streams)]
		}

		if result, err := u.listenOnce(ctx, input, stream, cfg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("listener cycle failed, pausing", "stream", stream, "result", result, "error", err, "wait", input.RetryWait)
			u.putSnapshot(ctx, &model.StatusSnapshot{
				IsListening:  false,
				LastRun:      u.now().Format(model.TimestampLayout),
				LastStream:   stream,
				LastResult:   result,
				LastKeywords: []string{},
			})
			if err := u.sleep(ctx, input.RetryWait); err != nil {
				return nil
			}
		}

		logger.Info("waiting for next sample", "interval", cfg.Interval())
		if err := u.sleep(ctx, cfg.Interval()); err != nil {
			return nil
		}
		u.markIdle(ctx)
	}

	return nil
}

// listenOnce runs one cycle. On failure it returns the snapshot result that
// names the failed stage.
func (u *UseCase) listenOnce(ctx context.Context, input ListenInput, stream string, cfg *settings.Settings) (string, error) {
	logger := logging.From(ctx)
	logger.Info("listening", "stream", stream, "duration", cfg.RecordDuration())

	audio, err := input.Capture.Record(ctx, stream, cfg.RecordDuration())
	if err != nil {
		return model.ResultCaptureFailed, goerr.Wrap(err, "failed to record stream", goerr.V("stream", stream))
	}

	text, err := input.Transcriber.Transcribe(ctx, audio, adapter.CaptureMimeType)
	if err != nil {
		return model.ResultCaptureFailed, goerr.Wrap(err, "failed to transcribe audio", goerr.V("stream", stream))
	}
	logger.Debug("transcript", "length", len(text), "text", text)

	result, err := u.Detect(ctx, DetectInput{
		StreamURL: stream,
		Text:      text,
		Keywords:  cfg.Keywords,
		Listening: true,
		ReportDir: cfg.ReportDir,
	})
	if err != nil {
		return model.ResultStoreFailed, err
	}

	if len(result.Matched) > 0 {
		logger.Info("chirp detected", "keywords", result.Matched, "status", result.Seed.Status)
	}
	return model.ResultChirpProcessed, nil
}

func (u *UseCase) markIdle(ctx context.Context) {
	snapshot, err := u.repo.GetSnapshot(ctx)
	if err != nil {
		logging.From(ctx).Warn("failed to read status snapshot", "error", err)
		snapshot = &model.StatusSnapshot{}
	}
	snapshot.IsListening = false
	u.putSnapshot(ctx, snapshot)
}

func (u *UseCase) putSnapshot(ctx context.Context, snapshot *model.StatusSnapshot) {
	if err := u.repo.PutSnapshot(ctx, snapshot); err != nil && !errors.Is(err, context.Canceled) {
		logging.From(ctx).Warn("failed to write status snapshot", "error", err)
	}
}
