package adapter_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bowr/streamear/pkg/adapter"
	"github.com/bowr/streamear/pkg/model"
	"github.com/m-mizutani/gt"
)

func TestBigQueryInsertSeeds(t *testing.T) {
	projectID := os.Getenv("TEST_BIGQUERY_PROJECT")
	if projectID == "" {
		t.Skip("TEST_BIGQUERY_PROJECT is not set")
	}

	datasetID := os.Getenv("TEST_BIGQUERY_DATASET")
	if datasetID == "" {
		t.Skip("TEST_BIGQUERY_DATASET is not set")
	}

	table := os.Getenv("TEST_BIGQUERY_TABLE")
	if table == "" {
		t.Skip("TEST_BIGQUERY_TABLE is not set")
	}

	ctx := context.Background()
	client, err := adapter.NewBigQuery(ctx, projectID)
	gt.NoError(t, err)

	seed := model.NewSeed(model.SeedInput{
		StreamURL:  "https://example.com/live",
		Text:       "bigquery export test",
		Keywords:   []string{"oil"},
		DetectedAt: time.Now(),
		Confidence: 0.4,
		Status:     model.StatusPlanted,
	})

	gt.NoError(t, client.InsertSeeds(ctx, datasetID, table, []*model.Seed{seed}))
}
