package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/claude/odos/internal/mcp"
)

func newMCPCmd(configPath *string) *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP tools over stdio",
		Long: "Serve MCP tools over stdio. With --remote the tools read from a " +
			"running odos server, otherwise from an in-process catalog and an " +
			"empty history.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serveMCP(cmd.Context(), *configPath, remote)
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "base URL of an odos server (e.g. http://odos.tailnet.ts.net)")
	return cmd
}

func serveMCP(ctx context.Context, configPath, remote string) (err error) {
	a, err := loadApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.close()) }()

	var ds mcp.DataSource
	if remote != "" {
		ds = mcp.NewHTTPClient(remote)
		a.log.Info("mcp using remote server", "url", remote)
	} else {
		if err := a.catalog.Refresh(ctx); err != nil {
			a.log.Warn("initial catalog fetch failed", "error", err)
		}
		ds = &mcp.Local{Catalog: a.catalog, Planner: a.planner, History: a.history}
	}

	if err := server.ServeStdio(mcp.New(ds, Version, a.log)); err != nil {
		return fmt.Errorf("serving mcp: %w", err)
	}
	return nil
}
