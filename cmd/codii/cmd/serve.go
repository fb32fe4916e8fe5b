package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oOSomnus/codii/internal/mcp"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Start codii's Model Context Protocol server, exposing index_codebase,
search_code, get_indexing_status, and clear_index as tools an AI
coding assistant calls directly. Serves over stdio until the client
disconnects or the process receives an interrupt.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
	return cmd
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	embedder, err := resolveEmbedder(ctx)
	if err != nil {
		return err
	}

	server := mcp.NewServer(a.baseDir, a.orch, a.snap, embedder)
	return server.Serve(ctx)
}
