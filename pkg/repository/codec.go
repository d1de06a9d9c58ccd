package repository

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/bowr/streamear/pkg/model"
	"github.com/bowr/streamear/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// decodeSeeds parses a seed document. Empty input is an empty collection.
// Null entries carry no seed and are dropped with a warning, so the next
// rewrite removes them.
func decodeSeeds(ctx context.Context, data []byte) ([]*model.Seed, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*model.Seed{}, nil
	}

	var decoded []*model.Seed
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, goerr.Wrap(err, "failed to decode seed document")
	}

	seeds := make([]*model.Seed, 0, len(decoded))
	for idx, s := range decoded {
		if s == nil {
			logging.From(ctx).Warn("drop null seed record", "index", idx)
			continue
		}
		seeds = append(seeds, s)
	}
	return seeds, nil
}

func encodeSeeds(seeds []*model.Seed) ([]byte, error) {
	if seeds == nil {
		seeds = []*model.Seed{}
	}
	return encodeJSON(seeds)
}

func encodeJSON(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, goerr.Wrap(err, "failed to encode document")
	}
	return buf.Bytes(), nil
}

func decodeSnapshot(data []byte) (*model.StatusSnapshot, error) {
	var snapshot model.StatusSnapshot
	if len(bytes.TrimSpace(data)) == 0 {
		return &snapshot, nil
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, goerr.Wrap(err, "failed to decode status snapshot")
	}
	return &snapshot, nil
}
