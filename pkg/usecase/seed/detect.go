package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bowr/streamear/pkg/model"
	"github.com/bowr/streamear/pkg/repository"
	"github.com/bowr/streamear/pkg/scoring"
	"github.com/bowr/streamear/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const maxIDAttempts = 3

// DetectInput is one detection event with the keyword set in force
type DetectInput struct {
	StreamURL string
	Text      string
	Keywords  []string
	// At is the event time; zero means now
	At time.Time
	// Listening is reported in the status snapshot
	Listening bool
	// ReportDir receives the transcript reports; empty skips them
	ReportDir string
}

// DetectResult describes the seed built from a detection event
type DetectResult struct {
	Seed     *model.Seed
	Matched  []string
	Appended bool
}

// Detect scores a transcript, plants the resulting seed unless the same
// event was already stored, and updates the status snapshot.
func (u *UseCase) Detect(ctx context.Context, input DetectInput) (*DetectResult, error) {
	logger := logging.From(ctx)

	at := input.At
	if at.IsZero() {
		at = u.now()
	}

	matched := scoring.MatchKeywords(input.Text, input.Keywords)
	confidence := scoring.DetectionConfidence(len(matched))
	status := scoring.ClassifyDetection(confidence)

	if u.reports != nil && input.ReportDir != "" {
		if err := u.reports.Append(input.ReportDir, at, matched, input.Text); err != nil {
			logger.Warn("failed to write transcript report", "error", err)
		}
	}

	var (
		seed     *model.Seed
		appended bool
	)
	for attempt := 1; ; attempt++ {
		seed = model.NewSeed(model.SeedInput{
			StreamURL:  input.StreamURL,
			Text:       input.Text,
			Keywords:   matched,
			DetectedAt: at,
			Confidence: confidence,
			Status:     status,
		})

		var err error
		appended, err = u.repo.AppendSeed(ctx, seed)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrSeedIDConflict) || attempt >= maxIDAttempts {
			return nil, goerr.Wrap(err, "failed to plant seed", goerr.V("stream", input.StreamURL))
		}
	}

	if appended {
		logger.Info("seed planted",
			"id", seed.ID,
			"keywords", matched,
			"confidence", seed.Confidence,
			"status", seed.Status,
		)
	} else {
		logger.Debug("duplicate detection suppressed", "timestamp", seed.Timestamp)
	}

	snapshot := &model.StatusSnapshot{
		IsListening:  input.Listening,
		LastRun:      u.now().Format(model.TimestampLayout),
		LastStream:   input.StreamURL,
		LastResult:   model.ResultChirpProcessed,
		LastKeywords: matched,
	}
	if err := u.repo.PutSnapshot(ctx, snapshot); err != nil {
		logger.Warn("failed to write status snapshot", "error", err)
	}

	return &DetectResult{
		Seed:     seed,
		Matched:  matched,
		Appended: appended,
	}, nil
}
