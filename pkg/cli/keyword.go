package cli

import (
	"context"
	"fmt"

	"github.com/bowr/streamear/pkg/settings"
	"github.com/bowr/streamear/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func keywordCommand() *cli.Command {
	return &cli.Command{
		Name:  "keyword",
		Usage: "Manage the keywords in the settings file",
		Commands: []*cli.Command{
			keywordAddCommand(),
			keywordListCommand(),
		},
	}
}

func keywordAddCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "add",
		Usage:     "Add a keyword",
		ArgsUsage: "<keyword>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx, c.Root().ErrWriter)

			if c.Args().Len() != 1 {
				return goerr.New("exactly one keyword is required")
			}

			keywords, added, err := settings.AddKeyword(cfg.settingsPath, c.Args().First())
			if err != nil {
				return goerr.Wrap(err, "failed to add keyword")
			}
			if added {
				logging.From(ctx).Info("keyword added", "keyword", keywords[len(keywords)-1], "settings", cfg.settingsPath)
			} else {
				logging.From(ctx).Info("keyword already present", "keyword", c.Args().First())
			}

			for _, kw := range keywords {
				fmt.Fprintln(c.Root().Writer, kw)
			}
			return nil
		},
	}
}

func keywordListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List keywords",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := cfg.loadSettings()
			if err != nil {
				return err
			}
			for _, kw := range s.Keywords {
				fmt.Fprintln(c.Root().Writer, kw)
			}
			return nil
		},
	}
}
