package seed

import (
	"context"
	"time"

	"github.com/bowr/streamear/pkg/adapter"
	"github.com/bowr/streamear/pkg/repository"
)

// TranscriptLog records every processed transcript into reports under dir
type TranscriptLog interface {
	Append(dir string, at time.Time, matched []string, text string) error
}

// UseCase provides the seed lifecycle operations. Operations are not safe
// to run concurrently against the same repository.
type UseCase struct {
	repo     repository.Repository
	news     adapter.News
	reports  TranscriptLog
	cooldown time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithNews sets the news provider used by germination
func WithNews(news adapter.News) Option {
	return func(uc *UseCase) {
		uc.news = news
	}
}

// WithCooldown sets the minimum delay between news fetches
func WithCooldown(d time.Duration) Option {
	return func(uc *UseCase) {
		uc.cooldown = d
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// WithTranscriptLog enables transcript reports
func WithTranscriptLog(reports TranscriptLog) Option {
	return func(uc *UseCase) {
		uc.reports = reports
	}
}

// WithSleep replaces the wait used between listener cycles
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(uc *UseCase) {
		uc.sleep = sleep
	}
}

// New creates a new seed UseCase instance
func New(repo repository.Repository, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:     repo,
		cooldown: time.Second,
		now:      time.Now,
		sleep:    sleepContext,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
