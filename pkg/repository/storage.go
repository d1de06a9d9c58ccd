package repository

import (
	"context"
	"errors"
	"io"

	"github.com/bowr/streamear/pkg/adapter"
	"github.com/bowr/streamear/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Storage keeps the documents as objects in a bucket. An object write only
// becomes visible when the writer closes successfully.
type Storage struct {
	storage adapter.Storage
}

func NewStorage(storage adapter.Storage) *Storage {
	return &Storage{storage: storage}
}

func (r *Storage) LoadSeeds(ctx context.Context) ([]*model.Seed, error) {
	data, err := r.read(ctx, SeedIndexName)
	if err != nil {
		return nil, err
	}
	return decodeSeeds(ctx, data)
}

func (r *Storage) AppendSeed(ctx context.Context, seed *model.Seed) (bool, error) {
	seeds, err := r.LoadSeeds(ctx)
	if err != nil {
		return false, err
	}

	seeds, appended, err := appendIfNew(seeds, seed)
	if err != nil || !appended {
		return false, err
	}

	if err := r.RewriteSeeds(ctx, seeds); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Storage) RewriteSeeds(ctx context.Context, seeds []*model.Seed) error {
	data, err := encodeSeeds(seeds)
	if err != nil {
		return err
	}
	return r.write(ctx, SeedIndexName, data)
}

func (r *Storage) PutSnapshot(ctx context.Context, snapshot *model.StatusSnapshot) error {
	data, err := encodeJSON(snapshot)
	if err != nil {
		return err
	}
	return r.write(ctx, SnapshotName, data)
}

func (r *Storage) GetSnapshot(ctx context.Context) (*model.StatusSnapshot, error) {
	data, err := r.read(ctx, SnapshotName)
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(data)
}

func (r *Storage) read(ctx context.Context, key string) ([]byte, error) {
	reader, err := r.storage.Get(ctx, key)
	if errors.Is(err, adapter.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open document", goerr.V("key", key))
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read document", goerr.V("key", key))
	}
	return data, nil
}

func (r *Storage) write(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer, err := r.storage.Put(ctx, key)
	if err != nil {
		return goerr.Wrap(err, "failed to open document writer", goerr.V("key", key))
	}
	if _, err := writer.Write(data); err != nil {
		// cancel before Close so a partial object is never committed
		cancel()
		_ = writer.Close()
		return goerr.Wrap(err, "failed to write document", goerr.V("key", key))
	}
	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit document", goerr.V("key", key))
	}
	return nil
}
