// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repomap digests a whole Python repository: every module is
// indexed in parallel, files that cannot be parsed are kept as raw text,
// and the declarations are ranked by cross-file references into a compact
// skeleton map.
package repomap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-enry/go-enry/v2"
	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/codedigest/internal/digest"
	"github.com/petar-djukic/codedigest/internal/git"
	"github.com/petar-djukic/codedigest/internal/logging"
	"github.com/petar-djukic/codedigest/internal/pyparse"
	"github.com/petar-djukic/codedigest/pkg/types"
)

const (
	pythonExt      = ".py"
	compiledExt    = ".pyc"
	readmeMarker   = "README"
	pythonLanguage = "Python"
	shebangProbe   = 256
	defaultJobs    = 4
)

// excludedDirs are never descended into.
var excludedDirs = map[string]bool{
	".git":         true,
	".github":      true,
	"venv":         true,
	".venv":        true,
	"node_modules": true,
	"__pycache__":  true,
	"vendor":       true,
}

// FileDigest is the result for one file. Module is nil for raw files.
type FileDigest struct {
	Path   string
	Module *digest.ModuleIndex
	Raw    string
	Refs   []pyparse.Identifier
}

// Digest is a digested repository.
type Digest struct {
	Files map[string]*FileDigest
	Dirs  []string // slash-separated, sorted
	Stats ExtractStats
}

// ExtractStats tracks extraction statistics.
type ExtractStats struct {
	FilesDiscovered int
	FilesSkipped    int
	ModulesBuilt    int
	RawFiles        int
	CacheHits       int
	ParseCount      int
}

// Config configures an Extractor.
type Config struct {
	Jobs           int      // Parallel file builds (default 4)
	ExcludeMarkers []string // nil selects digest.DefaultExcludeMarkers
}

// cacheEntry stores a file result keyed by path and version. The version
// is the size and mod time for worktree files and the blob hash for files
// read from a revision.
type cacheEntry struct {
	version string
	file    *FileDigest
}

// Extractor builds Digests and caches per-file results between runs.
// It is safe for concurrent use.
type Extractor struct {
	cfg Config

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewExtractor creates a new extractor with an empty cache.
func NewExtractor(cfg Config) *Extractor {
	if cfg.Jobs <= 0 {
		cfg.Jobs = defaultJobs
	}
	return &Extractor{
		cfg:   cfg,
		cache: make(map[string]cacheEntry),
	}
}

// source is one file waiting to be digested.
type source struct {
	path    string
	version string
	load    func() ([]byte, error)
}

// ExtractAll walks workDir and digests every Python module and README.
func (e *Extractor) ExtractAll(ctx context.Context, workDir string) (*Digest, error) {
	log := logging.FromContext(ctx)

	var sources []source
	var dirs []string
	skipped := 0

	err := filepath.WalkDir(workDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries we cannot stat.
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, relErr := filepath.Rel(workDir, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			dirs = append(dirs, rel)
			return nil
		}
		if !wanted(rel) && !(scriptCandidate(rel) && sniffScript(p)) {
			skipped++
			return nil
		}
		info, err := d.Info()
		if err != nil {
			skipped++
			return nil
		}
		abs := p
		sources = append(sources, source{
			path:    rel,
			version: fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano()),
			load:    func() ([]byte, error) { return os.ReadFile(abs) },
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("walked repository", logging.FieldWorkingDir, workDir, logging.FieldFilesDiscovered, len(sources))
	return e.build(ctx, sources, dirs, skipped)
}

// ExtractRevision digests the files committed at rev instead of the
// working tree. An empty rev means HEAD.
func (e *Extractor) ExtractRevision(ctx context.Context, repo *git.Repo, rev string) (*Digest, error) {
	files, err := repo.Files(ctx, rev, func(p string) bool {
		return !inExcludedDir(p)
	})
	if err != nil {
		return nil, fmt.Errorf("reading revision: %w", err)
	}

	var sources []source
	dirSet := make(map[string]bool)
	skipped := 0
	for _, f := range files {
		for dir := path.Dir(f.Path); dir != "."; dir = path.Dir(dir) {
			dirSet[dir] = true
		}
		if !wanted(f.Path) && !(scriptCandidate(f.Path) && isPythonScript(f.Content)) {
			skipped++
			continue
		}
		content := f.Content
		sources = append(sources, source{
			path:    f.Path,
			version: f.Hash,
			load:    func() ([]byte, error) { return content, nil },
		})
	}

	dirs := make([]string, 0, len(dirSet))
	for d := range dirSet {
		dirs = append(dirs, d)
	}

	logging.FromContext(ctx).Debug("read revision", logging.FieldRevision, rev, logging.FieldFilesDiscovered, len(sources))
	return e.build(ctx, sources, dirs, skipped)
}

// ErrNotFound is returned by ExtractFile when the file does not exist or
// is not a Python module or README.
var ErrNotFound = errors.New("file not found")

// ExtractFile digests a single file of workDir, or of revision rev when rev
// is non-empty. It shares the cache with ExtractAll and ExtractRevision.
func (e *Extractor) ExtractFile(ctx context.Context, workDir, rev, relPath string) (*FileDigest, error) {
	relPath = path.Clean(filepath.ToSlash(relPath))
	if inExcludedDir(relPath) || !(wanted(relPath) || scriptCandidate(relPath)) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, relPath)
	}

	var src source
	if rev == "" {
		abs := filepath.Join(workDir, filepath.FromSlash(relPath))
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() || (!wanted(relPath) && !sniffScript(abs)) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, relPath)
		}
		src = source{
			path:    relPath,
			version: fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano()),
			load:    func() ([]byte, error) { return os.ReadFile(abs) },
		}
	} else {
		repo, err := git.Open(workDir)
		if err != nil {
			return nil, err
		}
		files, err := repo.Files(ctx, rev, func(p string) bool { return p == relPath })
		if err != nil {
			return nil, fmt.Errorf("reading revision: %w", err)
		}
		if len(files) == 0 || (!wanted(relPath) && !isPythonScript(files[0].Content)) {
			return nil, fmt.Errorf("%w: %s at %s", ErrNotFound, relPath, rev)
		}
		f := files[0]
		src = source{
			path:    f.Path,
			version: f.Hash,
			load:    func() ([]byte, error) { return f.Content, nil },
		}
	}

	fd, _, err := e.extractFile(ctx, src)
	if err != nil {
		return nil, err
	}
	if fd == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, relPath)
	}
	return fd, nil
}

// build digests sources with at most cfg.Jobs files in flight.
func (e *Extractor) build(ctx context.Context, sources []source, dirs []string, skipped int) (*Digest, error) {
	results := make([]*FileDigest, len(sources))
	hits := make([]bool, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Jobs)
	for i, src := range sources {
		g.Go(func() error {
			fd, hit, err := e.extractFile(gctx, src)
			if err != nil {
				return err
			}
			results[i] = fd
			hits[i] = hit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Digest{
		Files: make(map[string]*FileDigest, len(results)),
		Dirs:  dirs,
	}
	sort.Strings(d.Dirs)
	d.Stats.FilesDiscovered = len(sources)
	d.Stats.FilesSkipped = skipped
	for i, fd := range results {
		if fd == nil {
			continue
		}
		d.Files[fd.Path] = fd
		if fd.Module != nil {
			d.Stats.ModulesBuilt++
		} else {
			d.Stats.RawFiles++
		}
		if hits[i] {
			d.Stats.CacheHits++
		} else {
			d.Stats.ParseCount++
		}
	}

	logging.FromContext(ctx).Debug("digested files",
		logging.FieldFilesParsed, d.Stats.ModulesBuilt,
		logging.FieldFilesRaw, d.Stats.RawFiles,
		logging.FieldCacheHits, d.Stats.CacheHits,
		logging.FieldJobs, e.cfg.Jobs,
	)
	return d, nil
}

// extractFile digests a single file, using the cache if possible. The
// second result reports a cache hit.
func (e *Extractor) extractFile(ctx context.Context, src source) (*FileDigest, bool, error) {
	e.mu.Lock()
	if cached, ok := e.cache[src.path]; ok && cached.version == src.version {
		e.mu.Unlock()
		return cached.file, true, nil
	}
	e.mu.Unlock()

	content, err := src.load()
	if err != nil {
		// Unreadable files are dropped like the ones we never asked for.
		logging.FromContext(ctx).Warn("skipping unreadable file", logging.FieldPath, src.path, logging.FieldError, err)
		return nil, false, nil
	}

	fd, err := e.digestContent(ctx, src.path, content)
	if err != nil {
		return nil, false, err
	}

	e.mu.Lock()
	e.cache[src.path] = cacheEntry{version: src.version, file: fd}
	e.mu.Unlock()

	return fd, false, nil
}

// digestContent indexes Python modules and keeps everything else, and every
// module the parser rejects, as raw text.
func (e *Extractor) digestContent(ctx context.Context, relPath string, content []byte) (*FileDigest, error) {
	fd := &FileDigest{Path: relPath}
	isModule := strings.HasSuffix(relPath, pythonExt) || (scriptCandidate(relPath) && isPythonScript(content))
	if !isModule {
		fd.Raw = string(content)
		return fd, nil
	}

	res, err := pyparse.Analyze(ctx, content)
	if err == nil {
		fd.Module, err = digest.Build(string(content), res.Root, digest.WithExcludeMarkers(e.cfg.ExcludeMarkers))
	}
	switch {
	case err == nil:
		fd.Refs = res.Refs
	case errors.Is(err, digest.ErrParseFailure):
		logging.FromContext(ctx).Warn("keeping unparsable module as raw text", logging.FieldPath, relPath)
		fd.Module = nil
		fd.Raw = string(content)
	default:
		return nil, fmt.Errorf("digesting %s: %w", relPath, err)
	}
	return fd, nil
}

// Paths returns every digested file path, sorted.
func (d *Digest) Paths() []string {
	out := make([]string, 0, len(d.Files))
	for p := range d.Files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Module returns the index for relPath, or false if the file is missing or
// was kept as raw text.
func (d *Digest) Module(relPath string) (*digest.ModuleIndex, bool) {
	fd, ok := d.Files[relPath]
	if !ok || fd.Module == nil {
		return nil, false
	}
	return fd.Module, true
}

// RawFiles returns the paths kept as raw text, sorted.
func (d *Digest) RawFiles() []string {
	var out []string
	for _, p := range d.Paths() {
		if d.Files[p].Module == nil {
			out = append(out, p)
		}
	}
	return out
}

// DirsUnder lists directories starting with prefix that are at most
// maxDepth separators deep. A negative maxDepth disables the depth limit.
func (d *Digest) DirsUnder(prefix string, maxDepth int) []string {
	var out []string
	for _, dir := range d.Dirs {
		if maxDepth >= 0 && strings.Count(dir, "/") > maxDepth {
			continue
		}
		if strings.HasPrefix(dir, prefix) {
			out = append(out, dir)
		}
	}
	return out
}

// Symbols lists every registered declaration as a definition and every
// identifier occurrence as a reference. References to names the same file
// defines are dropped.
func (d *Digest) Symbols() []types.SymbolRef {
	var symbols []types.SymbolRef
	for _, p := range d.Paths() {
		fd := d.Files[p]
		if fd.Module == nil {
			continue
		}

		defined := make(map[string]bool)
		for _, e := range fd.Module.Outline() {
			decl := fd.Module.Decl(e.ID)
			if decl.Kind == types.Import {
				continue
			}
			defined[decl.Name] = true
			symbols = append(symbols, types.SymbolRef{
				Name:     decl.Name,
				Parent:   decl.Parent,
				FilePath: p,
				Line:     e.StartLine,
				Kind:     types.Definition,
				Decl:     decl.Kind,
			})
		}
		for _, r := range fd.Refs {
			if defined[r.Name] {
				continue
			}
			symbols = append(symbols, types.SymbolRef{
				Name:     r.Name,
				FilePath: p,
				Line:     r.Line,
				Kind:     types.Reference,
			})
		}
	}
	return symbols
}

// wanted reports whether relPath is a Python module or a README.
func wanted(relPath string) bool {
	if strings.HasSuffix(relPath, compiledExt) {
		return false
	}
	return strings.HasSuffix(relPath, pythonExt) || strings.Contains(path.Base(relPath), readmeMarker)
}

// scriptCandidate reports whether relPath may be an extensionless Python
// script, which only its shebang can confirm.
func scriptCandidate(relPath string) bool {
	return path.Ext(relPath) == "" && !strings.Contains(path.Base(relPath), readmeMarker)
}

// isPythonScript reports whether content opens with a Python shebang.
func isPythonScript(content []byte) bool {
	lang, safe := enry.GetLanguageByShebang(content)
	return safe && lang == pythonLanguage
}

// sniffScript reads the head of the file at abs and checks its shebang.
func sniffScript(abs string) bool {
	f, err := os.Open(abs)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, shebangProbe)
	n, _ := io.ReadFull(f, buf)
	return isPythonScript(buf[:n])
}

func inExcludedDir(relPath string) bool {
	for _, part := range strings.Split(path.Dir(relPath), "/") {
		if excludedDirs[part] {
			return true
		}
	}
	return false
}
