package repository

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/bowr/streamear/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	firestoreCollection  = "streamear"
	firestoreSeedIndexID = "seed_index"
	firestoreSnapshotID  = "status"
)

// Firestore keeps the seed collection as an array field of one document.
// Seeds are stored in their JSON record shape so every backend applies the
// same decoding rules. Appends run in a transaction; the 1 MiB document limit
// bounds the store.
type Firestore struct {
	client *firestore.Client
}

const (
	fieldSeeds     = "seeds"
	fieldUpdatedAt = "updated_at"
)

// NewFirestore creates a Firestore-backed repository
func NewFirestore(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}
	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) seedDoc() *firestore.DocumentRef {
	return r.client.Collection(firestoreCollection).Doc(firestoreSeedIndexID)
}

func (r *Firestore) snapshotDoc() *firestore.DocumentRef {
	return r.client.Collection(firestoreCollection).Doc(firestoreSnapshotID)
}

func decodeSeedIndex(ctx context.Context, snap *firestore.DocumentSnapshot, err error) ([]*model.Seed, error) {
	if status.Code(err) == codes.NotFound {
		return []*model.Seed{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get seed index")
	}

	raw, ok := snap.Data()[fieldSeeds]
	if !ok || raw == nil {
		return []*model.Seed{}, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to convert seed index")
	}
	return decodeSeeds(ctx, data)
}

// seedIndexData converts seeds into Firestore values via their JSON records
func seedIndexData(seeds []*model.Seed) (map[string]any, error) {
	data, err := encodeSeeds(seeds)
	if err != nil {
		return nil, err
	}
	records := []any{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, goerr.Wrap(err, "failed to convert seeds")
	}
	return map[string]any{
		fieldSeeds:     records,
		fieldUpdatedAt: time.Now(),
	}, nil
}

func (r *Firestore) LoadSeeds(ctx context.Context) ([]*model.Seed, error) {
	snap, err := r.seedDoc().Get(ctx)
	return decodeSeedIndex(ctx, snap, err)
}

func (r *Firestore) AppendSeed(ctx context.Context, seed *model.Seed) (bool, error) {
	var appended bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		appended = false
		snap, err := tx.Get(r.seedDoc())
		seeds, err := decodeSeedIndex(ctx, snap, err)
		if err != nil {
			return err
		}

		seeds, ok, err := appendIfNew(seeds, seed)
		if err != nil || !ok {
			return err
		}

		doc, err := seedIndexData(seeds)
		if err != nil {
			return err
		}
		if err := tx.Set(r.seedDoc(), doc); err != nil {
			return goerr.Wrap(err, "failed to set seed index")
		}
		appended = true
		return nil
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to append seed", goerr.V("id", seed.ID))
	}
	return appended, nil
}

func (r *Firestore) RewriteSeeds(ctx context.Context, seeds []*model.Seed) error {
	doc, err := seedIndexData(seeds)
	if err != nil {
		return err
	}
	if _, err := r.seedDoc().Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to rewrite seed index", goerr.V("count", len(seeds)))
	}
	return nil
}

func (r *Firestore) PutSnapshot(ctx context.Context, snapshot *model.StatusSnapshot) error {
	if _, err := r.snapshotDoc().Set(ctx, snapshot); err != nil {
		return goerr.Wrap(err, "failed to put status snapshot")
	}
	return nil
}

func (r *Firestore) GetSnapshot(ctx context.Context) (*model.StatusSnapshot, error) {
	snap, err := r.snapshotDoc().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return &model.StatusSnapshot{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get status snapshot")
	}

	var snapshot model.StatusSnapshot
	if err := snap.DataTo(&snapshot); err != nil {
		return nil, goerr.Wrap(err, "failed to decode status snapshot")
	}
	return &snapshot, nil
}
