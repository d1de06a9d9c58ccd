package adapter

import (
	"context"
	"errors"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/bowr/streamear/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// BigQuery is an interface for exporting seeds to a BigQuery table
type BigQuery interface {
	// InsertSeeds streams seeds into dataset.table, creating the table if absent
	InsertSeeds(ctx context.Context, datasetID, tableID string, seeds []*model.Seed) error
}

type bigqueryClient struct {
	client *bigquery.Client
}

// NewBigQuery creates a new BigQuery client
func NewBigQuery(ctx context.Context, projectID string, opts ...option.ClientOption) (BigQuery, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client")
	}

	return &bigqueryClient{
		client: client,
	}, nil
}

// seedRow is the exported shape of a seed
type seedRow struct {
	ID         string   `bigquery:"id"`
	Timestamp  string   `bigquery:"timestamp"`
	StreamURL  string   `bigquery:"stream_url"`
	Keywords   []string `bigquery:"keywords"`
	Text       string   `bigquery:"text"`
	Confidence float64  `bigquery:"confidence"`
	Status     string   `bigquery:"status"`
	Source     string   `bigquery:"source"`
	Tags       []string `bigquery:"tags"`
}

func (bq *bigqueryClient) ensureTable(ctx context.Context, table *bigquery.Table, schema bigquery.Schema) error {
	_, err := table.Metadata(ctx)
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return goerr.Wrap(err, "failed to get table metadata")
	}

	if err := table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return goerr.Wrap(err, "failed to create table")
	}
	return nil
}

func (bq *bigqueryClient) InsertSeeds(ctx context.Context, datasetID, tableID string, seeds []*model.Seed) error {
	schema, err := bigquery.InferSchema(seedRow{})
	if err != nil {
		return goerr.Wrap(err, "failed to infer seed schema")
	}

	table := bq.client.Dataset(datasetID).Table(tableID)
	if err := bq.ensureTable(ctx, table, schema); err != nil {
		return goerr.Wrap(err, "failed to prepare table",
			goerr.V("dataset", datasetID), goerr.V("table", tableID))
	}

	if len(seeds) == 0 {
		return nil
	}

	rows := make([]*bigquery.StructSaver, 0, len(seeds))
	for _, s := range seeds {
		rows = append(rows, &bigquery.StructSaver{
			Schema:   schema,
			InsertID: string(s.ID),
			Struct: seedRow{
				ID:         string(s.ID),
				Timestamp:  s.Timestamp,
				StreamURL:  s.StreamURL,
				Keywords:   s.Keywords,
				Text:       s.Text,
				Confidence: s.Confidence,
				Status:     string(s.Status),
				Source:     s.Source,
				Tags:       s.Tags,
			},
		})
	}

	if err := table.Inserter().Put(ctx, rows); err != nil {
		return goerr.Wrap(err, "failed to insert seeds",
			goerr.V("dataset", datasetID), goerr.V("table", tableID), goerr.V("count", len(rows)))
	}
	return nil
}
