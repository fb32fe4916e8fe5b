// Package cmd implements codii's CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oOSomnus/codii/pkg/version"
)

// NewRootCmd builds the codii root command and its subcommand tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "codii",
		Short:         "Local-first hybrid code search",
		Long:          `codii indexes a codebase for hybrid lexical (BM25) and semantic (vector) search, exposed both as a CLI and as an MCP server for AI coding assistants.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("codii version {{.Version}}\n")

	root.AddCommand(newIndexCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newClearCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the CLI and returns the process exit code per spec.md
// §6: 0 success, 1 generic failure, 2 bad arguments, 3 not indexed.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitCode(err)
	}
	return 0
}
