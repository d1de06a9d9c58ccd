// Package mcp exposes read-only seed queries as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bowr/streamear/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SeedReader is the subset of seed operations served over MCP
type SeedReader interface {
	List(ctx context.Context, status model.Status) ([]*model.Seed, error)
	Summary(ctx context.Context) (map[model.Status]int, error)
	Status(ctx context.Context) (*model.StatusSnapshot, error)
}

type listSeedsParams struct {
	Status string `json:"status,omitempty" jsonschema:"seed status to filter by (dormant, discarded, planted, sprouting or blooming); empty lists all seeds"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of seeds to return, newest last; zero returns all"`
}

type emptyParams struct{}

// NewServer builds an MCP server backed by reader
func NewServer(reader SeedReader, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "streamear",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_seeds",
		Description: "List detected keyword seeds with their confidence and lifecycle status",
	}, func(ctx context.Context, req *mcp.CallToolRequest, params *listSeedsParams) (*mcp.CallToolResult, any, error) {
		seeds, err := reader.List(ctx, model.Status(strings.ToLower(params.Status)))
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to list seeds")
		}
		if params.Limit > 0 && len(seeds) > params.Limit {
			seeds = seeds[len(seeds)-params.Limit:]
		}
		return jsonResult(seeds)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "seed_summary",
		Description: "Count seeds per lifecycle status. The key \"all\" holds the total.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ *emptyParams) (*mcp.CallToolResult, any, error) {
		counts, err := reader.Summary(ctx)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to summarize seeds")
		}
		return jsonResult(counts)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "listener_status",
		Description: "Show whether the stream listener is active and what it processed last",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ *emptyParams) (*mcp.CallToolResult, any, error) {
		snapshot, err := reader.Status(ctx)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to get listener status")
		}
		return jsonResult(snapshot)
	})

	return server
}

// Serve runs server over stdio until the client disconnects or ctx ends
func Serve(ctx context.Context, server *mcp.Server) error {
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "mcp server stopped")
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to marshal result")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}
