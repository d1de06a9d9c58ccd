package repository

import (
	"context"

	"github.com/bowr/streamear/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrSeedIDConflict = goerr.New("seed id already exists")
)

const (
	// SeedIndexName is the document name of the seed collection
	SeedIndexName = "seed_index.json"
	// SnapshotName is the document name of the listener status snapshot
	SnapshotName = "status.json"
)

// Repository persists the seed collection as a single ordered document. It
// does no locking: callers serialize detection appends and germination
// rewrites against the same store.
type Repository interface {
	// LoadSeeds returns the full ordered collection; a missing document is empty
	LoadSeeds(ctx context.Context) ([]*model.Seed, error)

	// AppendSeed appends the seed unless a seed with the same timestamp and
	// text exists. Returns whether the seed was appended.
	AppendSeed(ctx context.Context, seed *model.Seed) (bool, error)

	// RewriteSeeds replaces the whole collection in one write
	RewriteSeeds(ctx context.Context, seeds []*model.Seed) error

	// PutSnapshot writes the listener status snapshot
	PutSnapshot(ctx context.Context, snapshot *model.StatusSnapshot) error

	// GetSnapshot reads the listener status snapshot; missing yields a zero snapshot
	GetSnapshot(ctx context.Context) (*model.StatusSnapshot, error)
}

// appendIfNew applies the duplicate invariant to an in-memory collection
func appendIfNew(seeds []*model.Seed, seed *model.Seed) ([]*model.Seed, bool, error) {
	for _, s := range seeds {
		if s.DuplicateOf(seed) {
			return seeds, false, nil
		}
	}
	for _, s := range seeds {
		if s.ID == seed.ID {
			return nil, false, goerr.Wrap(ErrSeedIDConflict, "cannot append seed", goerr.V("id", seed.ID))
		}
	}
	return append(seeds, seed), true, nil
}
