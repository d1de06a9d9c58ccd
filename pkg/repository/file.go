package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bowr/streamear/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// File stores documents as JSON files in a directory
type File struct {
	dir string
}

// NewFile creates a file-backed repository rooted at dir
func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (r *File) seedPath() string     { return filepath.Join(r.dir, SeedIndexName) }
func (r *File) snapshotPath() string { return filepath.Join(r.dir, SnapshotName) }

func (r *File) LoadSeeds(ctx context.Context) ([]*model.Seed, error) {
	data, err := r.read(r.seedPath())
	if err != nil {
		return nil, err
	}
	return decodeSeeds(ctx, data)
}

func (r *File) AppendSeed(ctx context.Context, seed *model.Seed) (bool, error) {
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

func (r *File) RewriteSeeds(ctx context.Context, seeds []*model.Seed) error {
	data, err := encodeSeeds(seeds)
	if err != nil {
		return err
	}
	return r.write(r.seedPath(), data)
}

func (r *File) PutSnapshot(ctx context.Context, snapshot *model.StatusSnapshot) error {
	data, err := encodeJSON(snapshot)
	if err != nil {
		return err
	}
	return r.write(r.snapshotPath(), data)
}

func (r *File) GetSnapshot(ctx context.Context) (*model.StatusSnapshot, error) {
	data, err := r.read(r.snapshotPath())
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(data)
}

func (r *File) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read document", goerr.V("path", path))
	}
	return data, nil
}

// write replaces path atomically through a temp file in the same directory
func (r *File) write(path string, data []byte) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create data directory", goerr.V("dir", r.dir))
	}

	tmp, err := os.CreateTemp(r.dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file", goerr.V("dir", r.dir))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return goerr.Wrap(err, "failed to write temp file", goerr.V("path", tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temp file", goerr.V("path", tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return goerr.Wrap(err, "failed to replace document", goerr.V("path", path))
	}
	return nil
}
