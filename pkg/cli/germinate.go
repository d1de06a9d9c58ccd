package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/bowr/streamear/pkg/adapter"
	"github.com/bowr/streamear/pkg/usecase/seed"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func germinateCommand() *cli.Command {
	var (
		cfg        config
		newsAPIKey string
		cooldown   time.Duration
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "news-api-key",
			Usage:       "NewsAPI key used to look up coverage of seed keywords",
			Sources:     cli.EnvVars("STREAMEAR_NEWS_API_KEY", "NEWS_API"),
			Destination: &newsAPIKey,
			Required:    true,
		},
		&cli.DurationFlag{
			Name:        "cooldown",
			Usage:       "Minimum delay between news requests",
			Value:       time.Second,
			Sources:     cli.EnvVars("STREAMEAR_COOLDOWN"),
			Destination: &cooldown,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "germinate",
		Usage: "Re-score planted and sprouting seeds against news coverage",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx, c.Root().ErrWriter)

			// Initialize dependencies
			repo, closeRepo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			s, err := cfg.loadSettings()
			if err != nil {
				return err
			}

			uc := seed.New(repo,
				seed.WithNews(adapter.NewNewsAPI(newsAPIKey)),
				seed.WithCooldown(cooldown),
			)

			result, err := uc.Germinate(ctx, seed.GerminateInput{
				TrustedSources: s.Trusted(),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to germinate seeds")
			}

			w := c.Root().Writer
			for _, ch := range result.Changes {
				fmt.Fprintf(w, "%s\t%.2f -> %.2f\t%s -> %s\n",
					ch.ID, ch.FromConfidence, ch.ToConfidence, ch.FromStatus, ch.ToStatus)
			}
			fmt.Fprintf(w, "evaluated %d of %d seeds, %d changed, %d skipped\n",
				result.Evaluated, result.Total, len(result.Changes), result.Skipped)
			return nil
		},
	}
}
