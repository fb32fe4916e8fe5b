package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
	"github.com/oOSomnus/codii/internal/paths"
	"github.com/oOSomnus/codii/internal/search"
	"github.com/oOSomnus/codii/internal/store"
	"github.com/oOSomnus/codii/internal/ui"
	"github.com/oOSomnus/codii/internal/vectorindex"
)

func newSearchCmd() *cobra.Command {
	var (
		path            string
		limit           int
		extensionFilter []string
		rerank          bool
		jsonOutput      bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search an indexed repository",
		Long: `Search an indexed repository using combined BM25 and vector
similarity ranking (spec.md §4.7's Reciprocal Rank Fusion). Run
"codii index" first if the repository has never been indexed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, path, query, limit, extensionFilter, rerank, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "repository to search (default: current directory)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (default from .codii.yaml)")
	cmd.Flags().StringSliceVarP(&extensionFilter, "extension", "e", nil, "restrict results to these extensions, e.g. .go")
	cmd.Flags().BoolVar(&rerank, "rerank", false, "enable the cross-encoder reranking pass")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output results as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, pathArg, query string, limit int, extensionFilter []string, rerank, jsonOutput bool) error {
	if strings.TrimSpace(query) == "" {
		return codiierrors.ValidationError("query must not be empty", nil)
	}

	absPath, cfg, err := resolveRepoPath(pathArg)
	if err != nil {
		return err
	}
	absPath, err = resolveKnownRepoPath(absPath)
	if err != nil {
		return err
	}

	if limit <= 0 {
		limit = cfg.DefaultSearchLimit
	}
	if limit > cfg.MaxSearchLimit {
		limit = cfg.MaxSearchLimit
	}

	baseDir := paths.BaseDir()
	layout := paths.ForRepo(baseDir, absPath)
	if _, statErr := os.Stat(layout.ChunksDBPath); statErr != nil {
		return codiierrors.NotIndexedError(absPath)
	}

	chunks, err := store.Open(layout.ChunksDBPath)
	if err != nil {
		return codiierrors.IOError(fmt.Sprintf("opening chunk store for %q", absPath), err)
	}
	defer chunks.Close()

	embedder, err := resolveEmbedder(cmd.Context())
	if err != nil {
		return err
	}

	vectors := vectorindex.New(vectorindex.DefaultConfig(embedder.Dimensions()))
	if err := vectors.Load(layout.VectorPath); err != nil {
		return codiierrors.IOError(fmt.Sprintf("loading vector index for %q", absPath), err)
	}

	searcher := search.New(chunks, vectors, embedder, nil)
	results, err := searcher.Search(cmd.Context(), query, search.Options{
		Limit:           limit,
		ExtensionFilter: extensionFilter,
		Rerank:          rerank,
		Weights:         &search.Weights{Lexical: cfg.BM25Weight, Vector: cfg.VectorWeight},
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	return printSearchResults(cmd, query, results)
}

func printSearchResults(cmd *cobra.Command, query string, results []search.Result) error {
	noColor := ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout())
	header := lipgloss.NewStyle()
	location := lipgloss.NewStyle()
	dim := lipgloss.NewStyle()
	if !noColor {
		header = header.Bold(true).Foreground(lipgloss.Color("39"))
		location = location.Bold(true)
		dim = dim.Foreground(lipgloss.Color("245"))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, header.Render(fmt.Sprintf("%d results for %q", len(results), query)))
	fmt.Fprintln(out)

	for _, r := range results {
		fmt.Fprintf(out, "%d. %s\n", r.Rank, location.Render(fmt.Sprintf("%s:%d-%d", r.Path, r.StartLine, r.EndLine)))
		fmt.Fprintln(out, dim.Render(fmt.Sprintf("   score %.3f (bm25 %.3f, vector %.3f)", r.CombinedScore, r.BM25Score, r.VectorScore)))
		for _, line := range snippetLines(r.Content, 3) {
			fmt.Fprintln(out, "   "+line)
		}
		fmt.Fprintln(out)
	}

	return nil
}

func snippetLines(content string, n int) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}
