// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package engine implements the Digester orchestrator, wiring the file
// extractor, the module indexes, and the repository map behind a single
// Runner.
package engine

import (
	"context"
	"fmt"

	"github.com/petar-djukic/codedigest/internal/digest"
	"github.com/petar-djukic/codedigest/internal/logging"
	"github.com/petar-djukic/codedigest/internal/lookup"
	"github.com/petar-djukic/codedigest/internal/markdown"
	"github.com/petar-djukic/codedigest/internal/repomap"
	"github.com/petar-djukic/codedigest/pkg/types"
)

const maxSuggestions = 3

// QueryKind selects what a Query looks up.
type QueryKind int

const (
	QueryFunction QueryKind = iota
	QueryClass
	QueryMethod
)

// String returns the lowercase name used on the command line.
func (k QueryKind) String() string {
	switch k {
	case QueryFunction:
		return "function"
	case QueryClass:
		return "class"
	case QueryMethod:
		return "method"
	default:
		return fmt.Sprintf("QueryKind(%d)", int(k))
	}
}

// Query names one declaration of one file. Class is only read for
// QueryMethod.
type Query struct {
	Kind  QueryKind
	Path  string
	Class string
	Name  string
}

// ShowResult holds the outcome of Runner.Show. A miss is not an error:
// Found is false and Suggestions lists the closest registered names.
type ShowResult struct {
	Text        string
	Found       bool
	Suggestions []string
}

// Deps holds injected dependencies for the runner.
type Deps struct {
	Extractor        *repomap.Extractor // Shared extractor; nil builds one from Jobs and ExcludeMarkers.
	WorkDir          string
	Rev              string
	Jobs             int
	ExcludeMarkers   []string
	MapTokenBudget   int
	ClassRenderLimit int
}

// Runner answers render, lookup, excerpt, and map requests for one
// repository. Per-file digests are cached by the extractor, so repeated
// requests only re-parse files that changed.
type Runner struct {
	deps Deps
	ext  *repomap.Extractor
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps Deps) *Runner {
	ext := deps.Extractor
	if ext == nil {
		ext = repomap.NewExtractor(repomap.Config{
			Jobs:           deps.Jobs,
			ExcludeMarkers: deps.ExcludeMarkers,
		})
	}
	return &Runner{deps: deps, ext: ext}
}

// File digests a single file of the repository.
func (r *Runner) File(ctx context.Context, relPath string) (*repomap.FileDigest, error) {
	fd, err := r.ext.ExtractFile(ctx, r.deps.WorkDir, r.deps.Rev, relPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", relPath, err)
	}
	return fd, nil
}

// RenderFile renders a whole file. Raw files are rendered verbatim, with
// line numbers when mode asks for them, except markdown files below FULL,
// which render as their heading outline.
func (r *Runner) RenderFile(ctx context.Context, relPath string, level types.DetailLevel, mode types.NumberMode) (string, error) {
	fd, err := r.File(ctx, relPath)
	if err != nil {
		return "", err
	}
	if fd.Module == nil {
		if level != types.Full && markdown.IsMarkdown(fd.Path) {
			return markdown.Outline(fd.Raw, mode), nil
		}
		return digest.NewSourceText(fd.Raw).RenderAll(mode), nil
	}
	return fd.Module.Render(level, mode), nil
}

// Show looks up one declaration. MODERATE class renders longer than the
// configured ClassRenderLimit fall back to SIGNATURE.
func (r *Runner) Show(ctx context.Context, q Query, level types.DetailLevel, mode types.NumberMode) (*ShowResult, error) {
	fd, err := r.File(ctx, q.Path)
	if err != nil {
		return nil, err
	}
	m := fd.Module
	if m == nil {
		logging.FromContext(ctx).Debug("lookup in raw file", logging.FieldPath, q.Path)
		return &ShowResult{}, nil
	}

	var text string
	var ok bool
	var candidates []string
	query := q.Name
	switch q.Kind {
	case QueryFunction:
		text, ok = m.GetFunction(q.Name, level, mode)
		candidates = m.Functions()
	case QueryClass:
		if level == types.Moderate && r.deps.ClassRenderLimit > 0 {
			text, ok = m.GetClassBounded(q.Name, r.deps.ClassRenderLimit, mode)
		} else {
			text, ok = m.GetClass(q.Name, level, mode)
		}
		candidates = m.Classes()
	case QueryMethod:
		text, ok = m.GetMethod(q.Class, q.Name, level, mode)
		if methods, found := m.Methods(q.Class); found {
			candidates = methods
		} else {
			candidates = m.Classes()
			query = q.Class
		}
	default:
		return nil, fmt.Errorf("unknown query kind %v", q.Kind)
	}

	if ok {
		return &ShowResult{Text: text, Found: true}, nil
	}
	return &ShowResult{Suggestions: lookup.Suggest(candidates, query, maxSuggestions)}, nil
}

// Excerpt renders the 1-based inclusive line window of a file widened by
// contextLines lines. lineEnd == -1 selects the end of the file.
func (r *Runner) Excerpt(ctx context.Context, relPath string, lineStart, lineEnd, contextLines int, mode types.NumberMode) (string, error) {
	fd, err := r.File(ctx, relPath)
	if err != nil {
		return "", err
	}
	if fd.Module == nil {
		return digest.NewSourceText(fd.Raw).Excerpt(lineStart, lineEnd, contextLines, mode), nil
	}
	return fd.Module.Excerpt(lineStart, lineEnd, contextLines, mode), nil
}

// Outline lists the registered declarations of a file. Raw files have none.
func (r *Runner) Outline(ctx context.Context, relPath string) ([]digest.OutlineEntry, error) {
	fd, err := r.File(ctx, relPath)
	if err != nil {
		return nil, err
	}
	if fd.Module == nil {
		return nil, nil
	}
	return fd.Module.Outline(), nil
}

// Map digests the whole repository and renders the ranked skeleton map.
func (r *Runner) Map(ctx context.Context, personalized []string) (*types.RepoMapResult, error) {
	d, err := repomap.Extract(ctx, r.ext, r.deps.WorkDir, r.deps.Rev)
	if err != nil {
		return nil, fmt.Errorf("building repo map: %w", err)
	}

	result := repomap.MapDigest(d, repomap.MapConfig{
		PersonalizedFiles: personalized,
		TokenBudget:       float64(r.deps.MapTokenBudget),
	})
	logging.FromContext(ctx).Debug("rendered repo map",
		logging.FieldFilesDiscovered, d.Stats.FilesDiscovered,
		logging.FieldDeclarations, result.TotalSyms,
		logging.FieldTokens, result.TokensUsed,
	)
	return result, nil
}

// Dirs lists the repository directories under prefix, at most maxDepth
// separators deep. A negative maxDepth lists every depth.
func (r *Runner) Dirs(ctx context.Context, prefix string, maxDepth int) ([]string, error) {
	d, err := repomap.Extract(ctx, r.ext, r.deps.WorkDir, r.deps.Rev)
	if err != nil {
		return nil, err
	}
	return d.DirsUnder(prefix, maxDepth), nil
}
