package repository

import (
	"context"
	"sync"

	"github.com/bowr/streamear/pkg/model"
)

// Memory keeps documents in process memory. Stored seeds are copied in and
// out so callers never alias persisted state.
type Memory struct {
	mu       sync.Mutex
	seeds    []*model.Seed
	snapshot *model.StatusSnapshot
}

func NewMemory(seeds ...*model.Seed) *Memory {
	return &Memory{seeds: copySeeds(seeds)}
}

func (r *Memory) LoadSeeds(ctx context.Context) ([]*model.Seed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copySeeds(r.seeds), nil
}

func (r *Memory) AppendSeed(ctx context.Context, seed *model.Seed) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seeds, appended, err := appendIfNew(copySeeds(r.seeds), seed.Copy())
	if err != nil || !appended {
		return false, err
	}
	r.seeds = seeds
	return true, nil
}

func (r *Memory) RewriteSeeds(ctx context.Context, seeds []*model.Seed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeds = copySeeds(seeds)
	return nil
}

func (r *Memory) PutSnapshot(ctx context.Context, snapshot *model.StatusSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *snapshot
	r.snapshot = &s
	return nil
}

func (r *Memory) GetSnapshot(ctx context.Context) (*model.StatusSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot == nil {
		return &model.StatusSnapshot{}, nil
	}
	s := *r.snapshot
	return &s, nil
}

func copySeeds(seeds []*model.Seed) []*model.Seed {
	out := make([]*model.Seed, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, s.Copy())
	}
	return out
}
