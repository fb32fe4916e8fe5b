package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oOSomnus/codii/internal/config"
	"github.com/oOSomnus/codii/internal/embed"
	codiierrors "github.com/oOSomnus/codii/internal/errors"
	"github.com/oOSomnus/codii/internal/orchestrator"
	"github.com/oOSomnus/codii/internal/paths"
	"github.com/oOSomnus/codii/internal/snapshot"
	"github.com/oOSomnus/codii/internal/telemetry"
)

// app bundles the shared, process-wide dependencies every subcommand
// needs: the storage root, the cross-repo status registry, and the
// orchestrator built over them.
type app struct {
	baseDir string
	snap    *snapshot.Store
	orch    *orchestrator.Orchestrator
	metrics *telemetry.Metrics
}

func newApp(ctx context.Context) (*app, error) {
	baseDir := paths.BaseDir()
	snap, err := snapshot.Open(filepath.Join(baseDir, "snapshots", "snapshot.json"))
	if err != nil {
		return nil, err
	}

	embedder, err := resolveEmbedder(ctx)
	if err != nil {
		return nil, err
	}

	metrics := telemetry.New()
	orch := orchestrator.New(baseDir, embedder, snap, metrics)
	return &app{baseDir: baseDir, snap: snap, orch: orch, metrics: metrics}, nil
}

// resolveEmbedder picks the embedding backend from CODII_EMBEDDER_BACKEND
// (http, native, static; unset or unrecognized defaults to static),
// matching internal/embed/factory.go's Backend enum and the
// process-wide singleton it maintains.
func resolveEmbedder(ctx context.Context) (embed.Embedder, error) {
	backend := embed.ParseBackend(os.Getenv("CODII_EMBEDDER_BACKEND"))
	cfg := embed.Config{Backend: backend}
	if backend == embed.BackendHTTP {
		cfg.HTTP = embed.DefaultHTTPConfig()
		if host := os.Getenv("CODII_EMBEDDER_HOST"); host != "" {
			cfg.HTTP.Host = host
		}
		if model := os.Getenv("CODII_EMBEDDER_MODEL"); model != "" {
			cfg.HTTP.Model = model
		}
	}
	return embed.Get(ctx, cfg)
}

// resolveRepoPath turns a CLI path argument into an absolute path
// (defaulting to the current directory) and loads its .codii.yaml.
func resolveRepoPath(arg string) (string, config.Config, error) {
	path := arg
	if path == "" {
		path = "."
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", config.Config{}, codiierrors.ValidationError(fmt.Sprintf("resolving path %q", path), err)
	}
	cfg, err := config.Load(absPath)
	if err != nil {
		return "", config.Config{}, err
	}
	return absPath, cfg, nil
}

// exitCode maps an error into spec.md §6's CLI exit codes: 0 success,
// 1 generic failure, 2 bad arguments, 3 not indexed.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce *codiierrors.Error
	if errors.As(err, &ce) {
		switch {
		case ce.Code == codiierrors.CodeNotIndexed:
			return 3
		case ce.Category == codiierrors.CategoryValidation:
			return 2
		}
	}
	return 1
}
