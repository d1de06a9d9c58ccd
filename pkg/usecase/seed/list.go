package seed

import (
	"context"

	"github.com/bowr/streamear/pkg/model"
	"github.com/bowr/streamear/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
)

// List returns the seeds in the given status, or all seeds when status is
// empty. Records without a timestamp are not listed.
func (u *UseCase) List(ctx context.Context, status model.Status) ([]*model.Seed, error) {
	seeds, err := u.repo.LoadSeeds(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load seeds")
	}

	filtered := repository.FilterByStatus(seeds, status)
	listed := make([]*model.Seed, 0, len(filtered))
	for _, s := range filtered {
		if s.Timestamp != "" {
			listed = append(listed, s)
		}
	}
	return listed, nil
}

// Summary returns seed counts per status, including "all"
func (u *UseCase) Summary(ctx context.Context) (map[model.Status]int, error) {
	seeds, err := u.repo.LoadSeeds(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load seeds")
	}
	return repository.CountByStatus(seeds), nil
}

// Status returns the last listener status snapshot
func (u *UseCase) Status(ctx context.Context) (*model.StatusSnapshot, error) {
	snapshot, err := u.repo.GetSnapshot(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get status snapshot")
	}
	return snapshot, nil
}
