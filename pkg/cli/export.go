package cli

import (
	"context"
	"strings"

	"github.com/bowr/streamear/pkg/adapter"
	"github.com/bowr/streamear/pkg/model"
	"github.com/bowr/streamear/pkg/usecase/seed"
	"github.com/bowr/streamear/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func exportCommand() *cli.Command {
	var (
		cfg       config
		bqProject string
		dataset   string
		table     string
		status    string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "bq-project",
			Usage:       "BigQuery project ID (defaults to --project)",
			Sources:     cli.EnvVars("STREAMEAR_BQ_PROJECT"),
			Destination: &bqProject,
		},
		&cli.StringFlag{
			Name:        "bq-dataset",
			Usage:       "BigQuery dataset ID",
			Sources:     cli.EnvVars("STREAMEAR_BQ_DATASET"),
			Destination: &dataset,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "bq-table",
			Usage:       "BigQuery table ID, created when missing",
			Value:       "seeds",
			Sources:     cli.EnvVars("STREAMEAR_BQ_TABLE"),
			Destination: &table,
		},
		&cli.StringFlag{
			Name:        "status",
			Usage:       "Only export seeds in this status",
			Destination: &status,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Stream seeds into a BigQuery table",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx, c.Root().ErrWriter)

			project := bqProject
			if project == "" {
				project = cfg.project
			}
			if project == "" {
				return goerr.New("bq-project or project is required")
			}

			// Initialize dependencies
			repo, closeRepo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			bq, err := adapter.NewBigQuery(ctx, project, cfg.clientOptions()...)
			if err != nil {
				return err
			}

			n, err := seed.New(repo).Export(ctx, bq, seed.ExportInput{
				Dataset: dataset,
				Table:   table,
				Status:  model.Status(strings.ToLower(status)),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to export seeds")
			}

			logging.From(ctx).Info("seeds exported", "count", n, "project", project, "dataset", dataset, "table", table)
			return nil
		},
	}
}
