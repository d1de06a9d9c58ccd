package repository_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bowr/streamear/pkg/adapter"
	"github.com/bowr/streamear/pkg/model"
	"github.com/bowr/streamear/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

// memoryBucket is an in-memory adapter.Storage
type memoryBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: make(map[string][]byte)}
}

type bucketWriter struct {
	bytes.Buffer
	bucket *memoryBucket
	key    string
}

func (w *bucketWriter) Close() error {
	w.bucket.mu.Lock()
	defer w.bucket.mu.Unlock()
	w.bucket.objects[w.key] = w.Bytes()
	return nil
}

func (b *memoryBucket) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	return &bucketWriter{bucket: b, key: key}, nil
}

func (b *memoryBucket) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, goerr.Wrap(adapter.ErrNotFound, "missing", goerr.V("key", key))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func newSeed(ts, text string) *model.Seed {
	at, err := time.ParseInLocation(model.TimestampLayout, ts, time.Local)
	if err != nil {
		panic(err)
	}
	return model.NewSeed(model.SeedInput{
		StreamURL:  "https://example.com/live",
		Text:       text,
		Keywords:   []string{"oil"},
		DetectedAt: at,
		Confidence: 0.4,
		Status:     model.StatusPlanted,
	})
}

func backends(t *testing.T) map[string]repository.Repository {
	return map[string]repository.Repository{
		"file":    repository.NewFile(filepath.Join(t.TempDir(), "static")),
		"memory":  repository.NewMemory(),
		"storage": repository.NewStorage(newMemoryBucket()),
	}
}

func TestRepositoryEmpty(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seeds, err := repo.LoadSeeds(ctx)
			gt.NoError(t, err)
			gt.A(t, seeds).Length(0)

			snapshot, err := repo.GetSnapshot(ctx)
			gt.NoError(t, err)
			gt.False(t, snapshot.IsListening)
		})
	}
}

func TestRepositoryAppendIsIdempotent(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := newSeed("2025-03-01 10:00:00", "opec meets")
			appended, err := repo.AppendSeed(ctx, first)
			gt.NoError(t, err)
			gt.True(t, appended)

			// same event, different id
			again := newSeed("2025-03-01 10:00:00", "opec meets")
			appended, err = repo.AppendSeed(ctx, again)
			gt.NoError(t, err)
			gt.False(t, appended)

			other := newSeed("2025-03-01 10:00:00", "oil rallies")
			appended, err = repo.AppendSeed(ctx, other)
			gt.NoError(t, err)
			gt.True(t, appended)

			seeds, err := repo.LoadSeeds(ctx)
			gt.NoError(t, err)
			gt.A(t, seeds).Length(2)
			gt.Equal(t, seeds[0].ID, first.ID)
			gt.Equal(t, seeds[1].ID, other.ID)
		})
	}
}

func TestRepositoryIDConflict(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := newSeed("2025-03-01 10:00:00", "opec meets")
			_, err := repo.AppendSeed(ctx, first)
			gt.NoError(t, err)

			clash := newSeed("2025-03-01 11:00:00", "different text")
			clash.ID = first.ID
			appended, err := repo.AppendSeed(ctx, clash)
			gt.Error(t, err)
			gt.False(t, appended)
			gt.True(t, errors.Is(err, repository.ErrSeedIDConflict))
		})
	}
}

func TestRepositoryRewriteRoundTrip(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, s := range []*model.Seed{
				newSeed("2025-03-01 10:00:00", "one"),
				newSeed("2025-03-01 10:05:00", "two"),
				newSeed("2025-03-01 10:10:00", "three"),
			} {
				_, err := repo.AppendSeed(ctx, s)
				gt.NoError(t, err)
			}

			before, err := repo.LoadSeeds(ctx)
			gt.NoError(t, err)
			gt.NoError(t, repo.RewriteSeeds(ctx, before))
			after, err := repo.LoadSeeds(ctx)
			gt.NoError(t, err)
			gt.Equal(t, after, before)
		})
	}
}

func TestRepositorySnapshot(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			snapshot := &model.StatusSnapshot{
				IsListening:  true,
				LastRun:      "2025-03-01 10:00:00",
				LastStream:   "https://example.com/live",
				LastResult:   model.ResultChirpProcessed,
				LastKeywords: []string{"opec"},
			}
			gt.NoError(t, repo.PutSnapshot(ctx, snapshot))

			got, err := repo.GetSnapshot(ctx)
			gt.NoError(t, err)
			gt.Equal(t, got, snapshot)
		})
	}
}

func TestFileRewriteIsByteStable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, repository.SeedIndexName)
	doc := `[
  {
    "id": "SEED-20250301-100000-a1b2c3",
    "timestamp": "2025-03-01 10:00:00",
    "stream_url": "https://example.com/live",
    "keywords": [
      "oil"
    ],
    "text": "oil & gas <update>",
    "confidence": 0.4,
    "status": "planted",
    "source": "Live Stream",
    "tags": []
  }
]
`
	gt.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	repo := repository.NewFile(dir)
	seeds, err := repo.LoadSeeds(ctx)
	gt.NoError(t, err)
	gt.NoError(t, repo.RewriteSeeds(ctx, seeds))

	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.Equal(t, string(data), doc)
}

func TestFileMalformedDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, repository.SeedIndexName)
	gt.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0o644))

	repo := repository.NewFile(dir)
	_, err := repo.LoadSeeds(ctx)
	gt.Error(t, err)

	// a failed load must not overwrite the existing document
	_, err = repo.AppendSeed(ctx, newSeed("2025-03-01 10:00:00", "x"))
	gt.Error(t, err)
	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.Equal(t, string(data), `{"not":"an array"}`)
}

func TestNullSeedEntriesAreDropped(t *testing.T) {
	ctx := context.Background()
	valid := `{"id":"SEED-1","timestamp":"2025-03-01 10:00:00","stream_url":"","keywords":["oil"],"text":"oil","confidence":0.4,"status":"planted","source":"Live Stream","tags":[]}`
	doc := []byte("[null, " + valid + ", null]")

	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, repository.SeedIndexName), doc, 0o644))
	bucket := newMemoryBucket()
	bucket.objects[repository.SeedIndexName] = doc

	testCases := map[string]repository.Repository{
		"file":    repository.NewFile(dir),
		"storage": repository.NewStorage(bucket),
	}
	for name, repo := range testCases {
		t.Run(name, func(t *testing.T) {
			seeds, err := repo.LoadSeeds(ctx)
			gt.NoError(t, err)
			gt.A(t, seeds).Length(1)
			gt.Equal(t, seeds[0].ID, model.SeedID("SEED-1"))

			counts := repository.CountByStatus(seeds)
			gt.Equal(t, counts[repository.StatusAll], 1)

			appended, err := repo.AppendSeed(ctx, newSeed("2025-03-01 11:00:00", "oil again"))
			gt.NoError(t, err)
			gt.True(t, appended)

			seeds, err = repo.LoadSeeds(ctx)
			gt.NoError(t, err)
			gt.A(t, seeds).Length(2)
		})
	}

	data, err := os.ReadFile(filepath.Join(dir, repository.SeedIndexName))
	gt.NoError(t, err)
	gt.S(t, string(data)).NotContains("null")
}

func TestRewriteFillsMissingLists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, repository.SeedIndexName)
	gt.NoError(t, os.WriteFile(path, []byte(`[{"id":"SEED-1","timestamp":"2025-03-01 10:00:00","text":"oil","confidence":0.4,"status":"planted"}]`), 0o644))

	repo := repository.NewFile(dir)
	seeds, err := repo.LoadSeeds(ctx)
	gt.NoError(t, err)
	gt.Equal(t, seeds[0].Keywords, []string{})
	gt.Equal(t, seeds[0].Tags, []string{})
	gt.NoError(t, repo.RewriteSeeds(ctx, seeds))

	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.S(t, string(data)).Contains(`"keywords": []`)
	gt.S(t, string(data)).Contains(`"tags": []`)
	gt.S(t, string(data)).NotContains("null")
}

func TestFilterByStatus(t *testing.T) {
	seeds := []*model.Seed{
		{ID: "a", Status: "Planted"},
		{ID: "b", Status: model.StatusSprouting},
		{ID: "c", Status: "PLANTED"},
		{ID: "d", Status: ""},
	}

	planted := repository.FilterByStatus(seeds, model.StatusPlanted)
	gt.A(t, planted).Length(2)
	gt.Equal(t, planted[0].ID, model.SeedID("a"))
	gt.Equal(t, planted[0].Status, model.StatusPlanted)
	gt.Equal(t, planted[1].ID, model.SeedID("c"))

	gt.A(t, repository.FilterByStatus(seeds, "")).Length(4)
	gt.A(t, repository.FilterByStatus(seeds, "SPROUTING")).Length(1)
	gt.A(t, repository.FilterByStatus(seeds, model.StatusBlooming)).Length(0)
}

func TestCountByStatus(t *testing.T) {
	seeds := []*model.Seed{
		{ID: "a", Status: "Planted"},
		{ID: "b", Status: model.StatusSprouting},
		{ID: "c", Status: "planted"},
		{ID: "d"},
	}

	counts := repository.CountByStatus(seeds)
	gt.Equal(t, counts[repository.StatusAll], 4)
	gt.Equal(t, counts[model.StatusPlanted], 2)
	gt.Equal(t, counts[model.StatusSprouting], 1)
	gt.Equal(t, counts[model.StatusUnknown], 1)
	gt.Equal(t, counts[model.StatusBlooming], 0)
}

func TestTranscriptLog(t *testing.T) {
	dir := t.TempDir()
	log := repository.NewTranscriptLog()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local)

	gt.NoError(t, log.Append(dir, at, nil, " nothing here "))
	gt.NoError(t, log.Append(dir, at, []string{"oil", "opec"}, "oil and opec, again"))

	all, err := os.ReadFile(filepath.Join(dir, "all_transcripts_2025_03_01.csv"))
	gt.NoError(t, err)
	gt.Equal(t, string(all), "timestamp,matched_keywords,snippet\n"+
		"2025-03-01 10:00:00,,nothing here\n"+
		"2025-03-01 10:00:00,\"oil, opec\",\"oil and opec, again\"\n")

	hits, err := os.ReadFile(filepath.Join(dir, "master_hits_2025_03_01.csv"))
	gt.NoError(t, err)
	gt.Equal(t, string(hits), "timestamp,matched_keywords,snippet\n"+
		"2025-03-01 10:00:00,\"oil, opec\",\"oil and opec, again\"\n")
}
