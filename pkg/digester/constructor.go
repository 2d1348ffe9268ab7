// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package digester

import (
	"context"
	"fmt"
	"os"

	"github.com/petar-djukic/codedigest/internal/engine"
	"github.com/petar-djukic/codedigest/pkg/types"
)

const (
	defaultJobs           = 4
	defaultMapTokenBudget = 2048
)

// New validates the config and returns a ready-to-use Digester. It does not
// read the repository; files are digested on first use and cached.
func New(cfg Config) (Digester, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	runner := engine.NewRunner(engine.Deps{
		WorkDir:          cfg.WorkDir,
		Rev:              cfg.Rev,
		Jobs:             cfg.Jobs,
		ExcludeMarkers:   cfg.ExcludeMarkers,
		MapTokenBudget:   cfg.MapTokenBudget,
		ClassRenderLimit: cfg.ClassRenderLimit,
	})

	return &digesterAdapter{runner: runner}, nil
}

// digesterAdapter adapts internal/engine.Runner to the public Digester
// interface.
type digesterAdapter struct {
	runner *engine.Runner
}

func (a *digesterAdapter) RenderFile(ctx context.Context, path string, level types.DetailLevel, mode types.NumberMode) (string, error) {
	return a.runner.RenderFile(ctx, path, level, mode)
}

func (a *digesterAdapter) Function(ctx context.Context, path, name string, level types.DetailLevel, mode types.NumberMode) (*Lookup, error) {
	return a.show(ctx, engine.Query{Kind: engine.QueryFunction, Path: path, Name: name}, level, mode)
}

func (a *digesterAdapter) Class(ctx context.Context, path, name string, level types.DetailLevel, mode types.NumberMode) (*Lookup, error) {
	return a.show(ctx, engine.Query{Kind: engine.QueryClass, Path: path, Name: name}, level, mode)
}

func (a *digesterAdapter) Method(ctx context.Context, path, class, method string, level types.DetailLevel, mode types.NumberMode) (*Lookup, error) {
	return a.show(ctx, engine.Query{Kind: engine.QueryMethod, Path: path, Class: class, Name: method}, level, mode)
}

func (a *digesterAdapter) show(ctx context.Context, q engine.Query, level types.DetailLevel, mode types.NumberMode) (*Lookup, error) {
	res, err := a.runner.Show(ctx, q, level, mode)
	if res == nil {
		return &Lookup{}, err
	}
	return &Lookup{
		Text:        res.Text,
		Found:       res.Found,
		Suggestions: res.Suggestions,
	}, err
}

func (a *digesterAdapter) Excerpt(ctx context.Context, path string, start, end, contextLines int, mode types.NumberMode) (string, error) {
	return a.runner.Excerpt(ctx, path, start, end, contextLines, mode)
}

func (a *digesterAdapter) Outline(ctx context.Context, path string) ([]Entry, error) {
	entries, err := a.runner.Outline(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{
			Kind:      e.Kind,
			Name:      e.Name,
			StartLine: e.StartLine,
			EndLine:   e.EndLine,
		}
	}
	return out, nil
}

func (a *digesterAdapter) Map(ctx context.Context, personalized []string) (*types.RepoMapResult, error) {
	return a.runner.Map(ctx, personalized)
}

func (a *digesterAdapter) Dirs(ctx context.Context, prefix string, maxDepth int) ([]string, error) {
	return a.runner.Dirs(ctx, prefix, maxDepth)
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if cfg.WorkDir == "" {
		return fmt.Errorf("WorkDir is required")
	}
	if info, err := os.Stat(cfg.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("WorkDir %q does not exist or is not a directory", cfg.WorkDir)
	}
	if cfg.Jobs < 0 {
		return fmt.Errorf("Jobs must not be negative, got %d", cfg.Jobs)
	}
	if cfg.MapTokenBudget < 0 {
		return fmt.Errorf("MapTokenBudget must not be negative, got %d", cfg.MapTokenBudget)
	}
	if cfg.ClassRenderLimit < 0 {
		return fmt.Errorf("ClassRenderLimit must not be negative, got %d", cfg.ClassRenderLimit)
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Jobs == 0 {
		cfg.Jobs = defaultJobs
	}
	if cfg.MapTokenBudget == 0 {
		cfg.MapTokenBudget = defaultMapTokenBudget
	}
}
