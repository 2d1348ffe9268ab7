// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package digester defines the public interface for codedigest, a
// structural digestion library for Python repositories. A Digester renders
// modules at a chosen level of detail, looks up individual declarations,
// and builds a ranked skeleton map of the whole repository.
package digester

import (
	"context"
	"errors"

	"github.com/petar-djukic/codedigest/internal/repomap"
	"github.com/petar-djukic/codedigest/pkg/types"
)

// Error types for the Digester API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrNotFound      = repomap.ErrNotFound
)

// Config configures a Digester instance.
type Config struct {
	WorkDir          string   // Repository root (required)
	Rev              string   // Read sources from this git revision (empty = working tree)
	Jobs             int      // Parallel file builds (default 4)
	ExcludeMarkers   []string // Comment markers that stop comment attachment (default TODO, FIXME)
	MapTokenBudget   int      // Token budget for the repository map (default 2048)
	ClassRenderLimit int      // MODERATE class renders longer than this fall back to SIGNATURE (0 = no limit)
}

// Lookup is the outcome of a declaration lookup. A name that is not
// registered is not an error: Found is false and Suggestions holds the
// closest registered names.
type Lookup struct {
	Text        string
	Found       bool
	Suggestions []string
}

// Entry describes one registered declaration of a file.
type Entry struct {
	Kind      types.DeclKind
	Name      string // "Class.member" for class members; empty for imports
	StartLine int    // 1-based
	EndLine   int    // 1-based, inclusive
}

// Digester answers structural queries about one repository. File paths are
// slash-separated and relative to the repository root.
type Digester interface {
	// RenderFile renders a whole module. Files that could not be parsed and
	// README files are returned as raw text.
	RenderFile(ctx context.Context, path string, level types.DetailLevel, mode types.NumberMode) (string, error)

	// Function, Class, and Method look up one declaration of a module.
	Function(ctx context.Context, path, name string, level types.DetailLevel, mode types.NumberMode) (*Lookup, error)
	Class(ctx context.Context, path, name string, level types.DetailLevel, mode types.NumberMode) (*Lookup, error)
	Method(ctx context.Context, path, class, method string, level types.DetailLevel, mode types.NumberMode) (*Lookup, error)

	// Excerpt renders the 1-based inclusive line window [start, end] widened
	// by contextLines on each side. end == -1 selects the end of the file.
	Excerpt(ctx context.Context, path string, start, end, contextLines int, mode types.NumberMode) (string, error)

	// Outline lists the registered declarations of a module in source order.
	Outline(ctx context.Context, path string) ([]Entry, error)

	// Map digests the whole repository and renders the ranked skeleton map.
	// Personalized files are ranked as if the reader were looking at them.
	Map(ctx context.Context, personalized []string) (*types.RepoMapResult, error)

	// Dirs lists repository directories starting with prefix, at most
	// maxDepth separators deep. A negative maxDepth lists every depth.
	Dirs(ctx context.Context, prefix string, maxDepth int) ([]string, error)
}
