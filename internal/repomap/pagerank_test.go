// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"testing"

	"github.com/petar-djukic/codedigest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGraph_CrossFileEdges(t *testing.T) {
	symbols := []types.SymbolRef{
		{Name: "add", FilePath: "pkg/math.py", Line: 3, Kind: types.Definition, Decl: types.Function},
		{Name: "multiply", FilePath: "pkg/math.py", Line: 5, Kind: types.Definition, Decl: types.Function},
		{Name: "main", FilePath: "cli.py", Line: 7, Kind: types.Definition, Decl: types.Function},
		{Name: "add", FilePath: "cli.py", Line: 9, Kind: types.Reference},
		{Name: "multiply", FilePath: "cli.py", Line: 10, Kind: types.Reference},
		{Name: "multiply", FilePath: "cli.py", Line: 11, Kind: types.Reference},
	}

	g := BuildGraph(symbols)

	assert.Equal(t, []string{"cli.py", "pkg/math.py"}, g.Nodes)
	require.Len(t, g.Edges, 2)

	add, mul := g.Edges[0], g.Edges[1]
	assert.Equal(t, Edge{From: "cli.py", To: "pkg/math.py", Reference: "add", Weight: shortNameWeight}, add)
	assert.Equal(t, Edge{From: "cli.py", To: "pkg/math.py", Reference: "multiply", Weight: 2 * longNameWeight}, mul)
	assert.Equal(t, []string{"pkg/math.py"}, g.Definers("add"))
}

func TestBuildGraph_NoSelfEdges(t *testing.T) {
	symbols := []types.SymbolRef{
		{Name: "add", FilePath: "math.py", Line: 1, Kind: types.Definition},
		{Name: "add", FilePath: "math.py", Line: 5, Kind: types.Reference},
	}

	g := BuildGraph(symbols)
	assert.Empty(t, g.Edges, "self-references should not create edges")
}

func TestBuildGraph_MethodsSharingANameCountOnce(t *testing.T) {
	symbols := []types.SymbolRef{
		{Name: "run", Parent: "A", FilePath: "a.py", Line: 2, Kind: types.Definition},
		{Name: "run", Parent: "B", FilePath: "a.py", Line: 6, Kind: types.Definition},
		{Name: "run", FilePath: "b.py", Line: 1, Kind: types.Reference},
	}

	g := BuildGraph(symbols)
	assert.Equal(t, []string{"a.py"}, g.Definers("run"))
	require.Len(t, g.Edges, 1)
}

func TestIdentifierWeight(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"Calculator", longNameWeight},
		{"add", shortNameWeight},
		{"parse_me", longNameWeight},
		{"_private", privateWeight},
		{"__init__", dunderWeight},
		{"__version__", dunderWeight},
		{"__mangled", privateWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, identifierWeight(tt.name))
		})
	}
}

func TestCommonWeight(t *testing.T) {
	defs := map[string][]string{
		"setup":  {"a.py", "b.py", "c.py", "d.py", "e.py"},
		"unique": {"a.py"},
	}

	assert.Equal(t, commonFactor, commonWeight("setup", defs))
	assert.Equal(t, 1.0, commonWeight("unique", defs))
}

func TestRank_PersonalizationBiasesRelevantFiles(t *testing.T) {
	symbols := []types.SymbolRef{
		{Name: "add", FilePath: "pkg/math.py", Line: 3, Kind: types.Definition},
		{Name: "format_number", FilePath: "pkg/util.py", Line: 3, Kind: types.Definition},
		{Name: "main", FilePath: "cli.py", Line: 7, Kind: types.Definition},
		{Name: "add", FilePath: "cli.py", Line: 9, Kind: types.Reference},
		{Name: "format_number", FilePath: "cli.py", Line: 10, Kind: types.Reference},
	}

	g := BuildGraph(symbols)
	ranked := Rank(g, symbols, RankConfig{
		PersonalizedFiles: []string{"pkg/math.py"},
	})
	require.Len(t, ranked, 3)

	position := make(map[string]int)
	for i, r := range ranked {
		position[r.FilePath] = i
	}
	assert.Less(t, position["pkg/math.py"], position["pkg/util.py"], "personalized file should rank higher")
}

func TestRank_ReferencedSymbolsOutrankSiblings(t *testing.T) {
	symbols := []types.SymbolRef{
		{Name: "load_config", FilePath: "config.py", Line: 1, Kind: types.Definition},
		{Name: "unused_helper", FilePath: "config.py", Line: 9, Kind: types.Definition},
		{Name: "load_config", FilePath: "main.py", Line: 2, Kind: types.Reference},
	}

	ranked := Rank(BuildGraph(symbols), symbols, RankConfig{})
	require.Len(t, ranked, 2)
	assert.Equal(t, "load_config", ranked[0].Name)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRank_EmptyGraph(t *testing.T) {
	assert.Empty(t, Rank(&Graph{}, nil, RankConfig{}))
	assert.Nil(t, FileRanks(&Graph{}, RankConfig{}))
}

func TestFileRanks_SumToOne(t *testing.T) {
	symbols := []types.SymbolRef{
		{Name: "alpha_fn", FilePath: "a.py", Line: 1, Kind: types.Definition},
		{Name: "beta_fn", FilePath: "b.py", Line: 1, Kind: types.Definition},
		{Name: "alpha_fn", FilePath: "b.py", Line: 3, Kind: types.Reference},
		{Name: "beta_fn", FilePath: "a.py", Line: 3, Kind: types.Reference},
	}

	ranks := FileRanks(BuildGraph(symbols), RankConfig{})
	require.Len(t, ranks, 2)
	assert.InDelta(t, 1.0, ranks["a.py"]+ranks["b.py"], 1e-6)
	assert.InDelta(t, ranks["a.py"], ranks["b.py"], 0.01)
}
