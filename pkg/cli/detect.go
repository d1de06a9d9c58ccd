package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bowr/streamear/pkg/repository"
	"github.com/bowr/streamear/pkg/usecase/seed"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func detectCommand() *cli.Command {
	var (
		cfg       config
		text      string
		inputPath string
		streamURL string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "text",
			Aliases:     []string{"t"},
			Usage:       "Transcript text to scan",
			Destination: &text,
		},
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to a file containing the transcript text",
			Destination: &inputPath,
		},
		&cli.StringFlag{
			Name:        "stream",
			Usage:       "Stream URL recorded with the seed",
			Sources:     cli.EnvVars("STREAMEAR_STREAM"),
			Destination: &streamURL,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "detect",
		Usage: "Scan one transcript for keywords and plant the resulting seed",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx, c.Root().ErrWriter)

			if inputPath != "" {
				data, err := os.ReadFile(inputPath)
				if err != nil {
					return goerr.Wrap(err, "failed to read input", goerr.V("path", inputPath))
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return goerr.New("either --text or --input is required")
			}

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

			uc := seed.New(repo, seed.WithTranscriptLog(repository.NewTranscriptLog()))
			result, err := uc.Detect(ctx, seed.DetectInput{
				StreamURL: streamURL,
				Text:      text,
				Keywords:  s.Keywords,
				ReportDir: s.ReportDir,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to detect")
			}

			w := c.Root().Writer
			if !result.Appended {
				fmt.Fprintf(w, "duplicate of an existing seed at %s, not stored\n", result.Seed.Timestamp)
				return nil
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n",
				result.Seed.ID,
				result.Seed.Status,
				result.Seed.Confidence,
				strings.Join(result.Matched, ", "),
			)
			return nil
		},
	}
}
