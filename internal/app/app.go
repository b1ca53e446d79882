// Package app implements the application layer for minic.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/minic/internal/adapters/artifact"
	"go.trai.ch/minic/internal/adapters/tracker"
	"go.trai.ch/minic/internal/core/domain"
	"go.trai.ch/minic/internal/core/ports"
	"go.trai.ch/minic/internal/engine/orchestrator"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	orch      *orchestrator.Orchestrator
	logger    ports.Logger
	tracer    ports.Tracer
	telemetry ports.Telemetry
	cacheDir  string
}

// New creates a new App instance.
func New(
	orch *orchestrator.Orchestrator,
	log ports.Logger,
	tracer ports.Tracer,
	tel ports.Telemetry,
	cacheDir string,
) *App {
	return &App{
		orch:      orch,
		logger:    log,
		tracer:    tracer,
		telemetry: tel,
		cacheDir:  cacheDir,
	}
}

// BuildOptions controls a build invocation.
type BuildOptions struct {
	// Output overrides the artifact output path. Only valid with a single
	// entry file.
	Output string
}

// Build compiles each entry file and writes its combined artifact next to the
// entry (or to opts.Output).
func (a *App) Build(ctx context.Context, entries []string, opts BuildOptions) error {
	if len(entries) == 0 {
		return domain.ErrNoEntrypoint
	}
	if opts.Output != "" && len(entries) > 1 {
		return zerr.New("-o is only valid with a single entry file")
	}

	ctx, span := a.tracer.Start(ctx, "build")
	defer span.End()
	span.SetAttribute("entries", entries)

	if err := a.orch.Load(); err != nil {
		// Load degrades internally; an error here is unexpected but still
		// must not block the build.
		a.logger.Warn("cache load: " + err.Error())
	}
	defer func() {
		if err := a.orch.Save(); err != nil {
			a.logger.Error(zerr.Wrap(err, "failed to persist cache state"))
		}
		if err := a.telemetry.Close(); err != nil {
			a.logger.Error(zerr.Wrap(err, "failed to close telemetry"))
		}
	}()

	for _, entry := range entries {
		data, err := a.orch.Build(ctx, entry)
		if err != nil {
			span.RecordError(err)
			return errors.Join(domain.ErrBuildFailed, zerr.With(err, "entry", entry))
		}

		out := opts.Output
		if out == "" {
			out = strings.TrimSuffix(entry, filepath.Ext(entry)) + ".ll"
		}
		//nolint:gosec // Output path is chosen by the user
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to write output artifact"), "path", out)
		}
		a.logger.Info("built " + entry + " -> " + out)
	}
	return nil
}

// CleanOptions controls what Clean removes.
type CleanOptions struct {
	// All also removes combined artifacts, not just indexes and blobs.
	All bool
}

// Clean removes cache state. Shard directories are independent, so they are
// removed concurrently.
func (a *App) Clean(ctx context.Context, opts CleanOptions) error {
	targets := []string{
		filepath.Join(a.cacheDir, tracker.StateFile),
		filepath.Join(a.cacheDir, artifact.FileIndexName),
		filepath.Join(a.cacheDir, artifact.FileBlobDir),
		filepath.Join(a.cacheDir, artifact.FunctionIndexName),
		filepath.Join(a.cacheDir, artifact.FunctionBlobDir),
	}
	if opts.All {
		targets = append(targets, filepath.Join(a.cacheDir, orchestrator.CombinedDir))
	}

	g, _ := errgroup.WithContext(ctx)
	for _, target := range targets {
		g.Go(func() error {
			if err := os.RemoveAll(target); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to remove cache path"), "path", target)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("cache cleaned")
	return nil
}
