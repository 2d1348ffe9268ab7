// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/petar-djukic/codedigest/internal/digest"
	"github.com/petar-djukic/codedigest/internal/git"
	"github.com/petar-djukic/codedigest/internal/logging"
	"github.com/petar-djukic/codedigest/pkg/types"
)

const (
	defaultTokenRatio  = 0.25
	defaultTokenBudget = 4096
	maxLineLength      = 100
	memberIndent       = "    "
	topIndent          = "  "
)

// RenderConfig configures map rendering.
type RenderConfig struct {
	TokenBudget float64 // Maximum tokens for the map (default 4096)
	TokenRatio  float64 // Tokens per character (default 0.25)
}

// Render produces the skeleton map from ranked symbols, adding whole file
// sections in rank order until the token budget is spent. Within a file,
// symbols appear in source order.
func Render(ranked []types.RankedSymbol, totalFiles, totalSyms int, cfg RenderConfig) *types.RepoMapResult {
	budget := cfg.TokenBudget
	if budget == 0 {
		budget = defaultTokenBudget
	}
	ratio := cfg.TokenRatio
	if ratio == 0 {
		ratio = defaultTokenRatio
	}

	var fileOrder []string
	fileSyms := make(map[string][]types.RankedSymbol)
	for _, rs := range ranked {
		if _, seen := fileSyms[rs.FilePath]; !seen {
			fileOrder = append(fileOrder, rs.FilePath)
		}
		fileSyms[rs.FilePath] = append(fileSyms[rs.FilePath], rs)
	}

	// Reserve room for the header, which is only known at the end.
	headerPlaceholder := strings.Repeat(" ", 80) + "\n"
	tokensUsed := float64(len(headerPlaceholder)) * ratio

	var body strings.Builder
	filesShown, symsShown := 0, 0
	for _, file := range fileOrder {
		syms := fileSyms[file]
		sort.SliceStable(syms, func(i, j int) bool { return syms[i].Line < syms[j].Line })

		section := renderSection(file, syms)
		sectionTokens := float64(len(section)) * ratio
		if tokensUsed+sectionTokens > budget {
			break
		}
		body.WriteString(section)
		tokensUsed += sectionTokens
		filesShown++
		symsShown += len(syms)
	}

	header := fmt.Sprintf("Repository map (%d/%d files, %d/%d symbols)", filesShown, totalFiles, symsShown, totalSyms)
	mapText := header + "\n" + body.String()

	return &types.RepoMapResult{
		Map:        mapText,
		FileCount:  filesShown,
		TotalFiles: totalFiles,
		SymCount:   symsShown,
		TotalSyms:  totalSyms,
		TokensUsed: float64(len(mapText)) * ratio,
	}
}

func renderSection(file string, syms []types.RankedSymbol) string {
	var b strings.Builder
	b.WriteString(file + "\n")
	for _, s := range syms {
		indent := topIndent
		if s.Parent != "" {
			indent = memberIndent
		}
		text := s.Signature
		if text == "" {
			text = s.QualifiedName()
		}
		line := indent + text
		if len(line) > maxLineLength {
			line = line[:maxLineLength-3] + "..."
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// MapConfig configures BuildMap.
type MapConfig struct {
	WorkDir           string
	Rev               string // Read sources from this git revision instead of the working tree
	PersonalizedFiles []string
	TokenBudget       float64
}

// BuildMap runs the full pipeline: digest, build graph, rank, and render.
func BuildMap(ctx context.Context, ext *Extractor, cfg MapConfig) (*types.RepoMapResult, error) {
	d, err := Extract(ctx, ext, cfg.WorkDir, cfg.Rev)
	if err != nil {
		return nil, err
	}
	return MapDigest(d, cfg), nil
}

// Extract digests workDir, or the revision rev of the repository at
// workDir when rev is non-empty.
func Extract(ctx context.Context, ext *Extractor, workDir, rev string) (*Digest, error) {
	if rev == "" {
		d, err := ext.ExtractAll(ctx, workDir)
		if err != nil {
			return nil, fmt.Errorf("extracting symbols: %w", err)
		}
		return d, nil
	}

	repo, err := git.Open(workDir)
	if err != nil {
		return nil, err
	}
	if dirty, err := repo.IsDirty(); err == nil && dirty {
		logging.FromContext(ctx).Warn("working tree has changes not in the requested revision", logging.FieldRevision, rev)
	}
	return ext.ExtractRevision(ctx, repo, rev)
}

// MapDigest ranks and renders an already digested repository.
func MapDigest(d *Digest, cfg MapConfig) *types.RepoMapResult {
	symbols := d.Symbols()
	graph := BuildGraph(symbols)
	ranked := Rank(graph, symbols, RankConfig{
		PersonalizedFiles: cfg.PersonalizedFiles,
	})
	for i := range ranked {
		ranked[i].Signature = d.Signature(ranked[i])
	}

	return Render(ranked, len(d.Files), len(filterDefs(symbols)), RenderConfig{
		TokenBudget: cfg.TokenBudget,
	})
}

// Signature returns the one-line header of a ranked declaration, taken from
// its signature span, or from its first line for constants.
func (d *Digest) Signature(s types.RankedSymbol) string {
	m, ok := d.Module(s.FilePath)
	if !ok {
		return ""
	}
	decl, ok := lookupDecl(m, s)
	if !ok {
		return ""
	}
	span := decl.Signature
	if !span.Valid() {
		span = digest.Span{Lo: decl.Full.Lo, Hi: decl.Full.Lo}
	}
	return strings.Join(strings.Fields(m.Source().Text(span)), " ")
}

func lookupDecl(m *digest.ModuleIndex, s types.RankedSymbol) (*digest.Decl, bool) {
	switch {
	case s.Parent != "" && s.Decl == types.Function:
		return m.Method(s.Parent, s.Name)
	case s.Parent != "":
		return m.ClassConstant(s.Parent, s.Name)
	case s.Decl == types.Function:
		return m.Function(s.Name)
	case s.Decl == types.Class:
		return m.Class(s.Name)
	default:
		return m.Constant(s.Name)
	}
}

// filterDefs returns only definition symbols.
func filterDefs(symbols []types.SymbolRef) []types.SymbolRef {
	var defs []types.SymbolRef
	for _, s := range symbols {
		if s.Kind == types.Definition {
			defs = append(defs, s)
		}
	}
	return defs
}
