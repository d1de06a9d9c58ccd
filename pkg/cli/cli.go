package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

// Version is reported by the MCP server
var Version = "dev"

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	if err := newApp().Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "streamear",
		Usage:     "Listen to live streams for keywords and track detections as seeds",
		Version:   Version,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			listenCommand(),
			detectCommand(),
			germinateCommand(),
			seedsCommand(),
			statusCommand(),
			keywordCommand(),
			exportCommand(),
			serveCommand(),
		},
	}
}
