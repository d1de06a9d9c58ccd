package seed

import (
	"context"

	"github.com/bowr/streamear/pkg/model"
	"github.com/bowr/streamear/pkg/scoring"
	"github.com/bowr/streamear/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"
)

// GerminateInput carries the evidence configuration in force for one pass
type GerminateInput struct {
	TrustedSources []string
}

// Change records the re-scoring of one seed
type Change struct {
	ID             model.SeedID
	FromConfidence float64
	ToConfidence   float64
	FromStatus     model.Status
	ToStatus       model.Status
	Boost          float64
}

// GerminateResult summarizes a germination pass
type GerminateResult struct {
	Total     int
	Evaluated int
	Skipped   int
	Changes   []*Change
}

// Germinate re-scores every planted or sprouting seed against news coverage
// of its keywords and rewrites the whole collection. Fetches run one at a
// time, spaced by the cooldown. Fetch errors count as zero articles. Seeds
// failing validation are left untouched. If the pass stops before the
// rewrite, the store keeps its previous state.
func (u *UseCase) Germinate(ctx context.Context, input GerminateInput) (*GerminateResult, error) {
	if u.news == nil {
		return nil, goerr.New("news provider is not configured")
	}
	logger := logging.From(ctx)

	seeds, err := u.repo.LoadSeeds(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load seeds")
	}

	trusted := input.TrustedSources
	if len(trusted) == 0 {
		trusted = scoring.DefaultTrustedSources
	}

	limiter := rate.NewLimiter(rate.Every(u.cooldown), 1)
	now := u.now()
	result := &GerminateResult{Total: len(seeds)}

	for idx, s := range seeds {
		if !s.Status.Pending() {
			continue
		}
		if err := s.Validate(); err != nil {
			logger.Warn("skip malformed seed", "index", idx, "id", s.ID, "error", err)
			result.Skipped++
			continue
		}

		logger.Info("evaluating seed", "id", s.ID, "keywords", s.Keywords)

		var totalBoost float64
		for _, kw := range s.Keywords {
			if err := limiter.Wait(ctx); err != nil {
				return nil, goerr.Wrap(err, "germination interrupted", goerr.V("id", s.ID))
			}
			totalBoost += u.keywordBoost(ctx, kw, trusted)
		}

		age, _ := s.Age(now) // validated above
		confidence := scoring.ReevaluatedConfidence(s.Confidence, totalBoost)
		status := scoring.ClassifyReevaluation(confidence, age, s.Status)

		change := &Change{
			ID:             s.ID,
			FromConfidence: s.Confidence,
			ToConfidence:   confidence,
			FromStatus:     s.Status,
			ToStatus:       status,
			Boost:          totalBoost,
		}
		s.Confidence = confidence
		s.Status = status

		result.Evaluated++
		if change.FromConfidence != change.ToConfidence || change.FromStatus != change.ToStatus {
			result.Changes = append(result.Changes, change)
			logger.Info("seed re-scored",
				"id", s.ID,
				"confidence", confidence,
				"from", change.FromStatus,
				"to", status,
			)
		}
	}

	if err := u.repo.RewriteSeeds(ctx, seeds); err != nil {
		return nil, goerr.Wrap(err, "failed to rewrite seeds", goerr.V("count", len(seeds)))
	}
	u.markGerminated(ctx)

	return result, nil
}

func (u *UseCase) keywordBoost(ctx context.Context, keyword string, trusted []string) float64 {
	articles, err := u.news.Search(ctx, keyword)
	if err != nil {
		logging.From(ctx).Warn("news fetch failed, counting zero articles", "keyword", keyword, "error", err)
		return 0
	}
	return scoring.NewsBoost(articles, trusted)
}

func (u *UseCase) markGerminated(ctx context.Context) {
	snapshot, err := u.repo.GetSnapshot(ctx)
	if err != nil {
		logging.From(ctx).Warn("failed to read status snapshot", "error", err)
		snapshot = &model.StatusSnapshot{}
	}
	snapshot.LastResult = model.ResultGerminated
	u.putSnapshot(ctx, snapshot)
}
