package seed

import (
	"context"

	"github.com/bowr/streamear/pkg/adapter"
	"github.com/bowr/streamear/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// ExportInput selects the seeds to export and the destination table
type ExportInput struct {
	Dataset string
	Table   string
	Status  model.Status
}

// Export streams seeds into BigQuery and returns the number exported
func (u *UseCase) Export(ctx context.Context, bq adapter.BigQuery, input ExportInput) (int, error) {
	if input.Dataset == "" || input.Table == "" {
		return 0, goerr.New("dataset and table are required")
	}

	seeds, err := u.List(ctx, input.Status)
	if err != nil {
		return 0, err
	}

	if err := bq.InsertSeeds(ctx, input.Dataset, input.Table, seeds); err != nil {
		return 0, goerr.Wrap(err, "failed to export seeds", goerr.V("count", len(seeds)))
	}
	return len(seeds), nil
}
