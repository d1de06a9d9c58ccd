package cli

import (
	"context"

	"github.com/bowr/streamear/pkg/service/mcp"
	"github.com/bowr/streamear/pkg/usecase/seed"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve read-only seed tools over MCP stdio",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			// stdout carries the MCP protocol, logs stay on stderr
			ctx = cfg.setupLogger(ctx, c.Root().ErrWriter)

			repo, closeRepo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			server := mcp.NewServer(seed.New(repo), Version)
			return mcp.Serve(ctx, server)
		},
	}
}
