package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bowr/streamear/pkg/model"
	"github.com/bowr/streamear/pkg/repository"
	"github.com/bowr/streamear/pkg/usecase/seed"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func seedsCommand() *cli.Command {
	return &cli.Command{
		Name:  "seeds",
		Usage: "Browse stored seeds",
		Commands: []*cli.Command{
			seedsListCommand(),
			seedsSummaryCommand(),
		},
	}
}

func seedsListCommand() *cli.Command {
	var (
		cfg    config
		status string
		limit  int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "status",
			Usage:       "Only list seeds in this status",
			Sources:     cli.EnvVars("STREAMEAR_SEEDS_STATUS"),
			Destination: &status,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of most recent seeds to list (0 lists all)",
			Sources:     cli.EnvVars("STREAMEAR_SEEDS_LIMIT"),
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List seeds",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx, c.Root().ErrWriter)

			repo, closeRepo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			seeds, err := seed.New(repo).List(ctx, model.Status(strings.ToLower(status)))
			if err != nil {
				return goerr.Wrap(err, "failed to list seeds")
			}
			if limit > 0 && len(seeds) > int(limit) {
				seeds = seeds[len(seeds)-int(limit):]
			}

			for _, s := range seeds {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%.2f\t%s\t%s\n",
					s.ID, s.Timestamp, s.Confidence, s.Status, strings.Join(s.Keywords, ", "))
			}
			return nil
		},
	}
}

func seedsSummaryCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "summary",
		Usage: "Count seeds per status",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx, c.Root().ErrWriter)

			repo, closeRepo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			counts, err := seed.New(repo).Summary(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to summarize seeds")
			}

			fmt.Fprintf(c.Root().Writer, "%s\t%d\n", repository.StatusAll, counts[repository.StatusAll])
			keys := make([]model.Status, 0, len(counts))
			for k := range counts {
				if k != repository.StatusAll {
					keys = append(keys, k)
				}
			}
			slices.Sort(keys)
			for _, k := range keys {
				fmt.Fprintf(c.Root().Writer, "%s\t%d\n", k, counts[k])
			}
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "status",
		Usage: "Show the listener status snapshot",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx, c.Root().ErrWriter)

			repo, closeRepo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			snapshot, err := seed.New(repo).Status(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to get status")
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "listening:\t%t\n", snapshot.IsListening)
			fmt.Fprintf(w, "last run:\t%s\n", snapshot.LastRun)
			fmt.Fprintf(w, "last stream:\t%s\n", snapshot.LastStream)
			fmt.Fprintf(w, "last result:\t%s\n", snapshot.LastResult)
			fmt.Fprintf(w, "last keywords:\t%s\n", strings.Join(snapshot.LastKeywords, ", "))
			return nil
		},
	}
}
