// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"math"
	"sort"

	"github.com/petar-djukic/codedigest/pkg/types"
)

const (
	defaultDamping    = 0.85
	defaultMaxIter    = 100
	defaultTolerance  = 1e-6
	personalizeFactor = 100.0
)

// RankConfig configures PageRank computation.
type RankConfig struct {
	Damping           float64  // Damping factor (default 0.85)
	MaxIterations     int      // Maximum iterations (default 100)
	Tolerance         float64  // Convergence tolerance (default 1e-6)
	PersonalizedFiles []string // Files that receive 100x personalization weight
}

func (c RankConfig) withDefaults() RankConfig {
	if c.Damping == 0 {
		c.Damping = defaultDamping
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = defaultMaxIter
	}
	if c.Tolerance == 0 {
		c.Tolerance = defaultTolerance
	}
	return c
}

// FileRanks runs personalized PageRank over the file graph. The scores sum
// to one.
func FileRanks(g *Graph, cfg RankConfig) map[string]float64 {
	cfg = cfg.withDefaults()
	n := len(g.Nodes)
	if n == 0 {
		return nil
	}

	idx := make(map[string]int, n)
	for i, node := range g.Nodes {
		idx[node] = i
	}

	personalization := make([]float64, n)
	for i := range personalization {
		personalization[i] = 1.0
	}
	for _, f := range cfg.PersonalizedFiles {
		if i, ok := idx[f]; ok {
			personalization[i] = personalizeFactor
		}
	}
	normalize(personalization)

	type outEdge struct {
		to     int
		weight float64
	}
	outEdges := make([][]outEdge, n)
	outWeight := make([]float64, n)
	for _, e := range g.Edges {
		from, okF := idx[e.From]
		to, okT := idx[e.To]
		if !okF || !okT {
			continue
		}
		outEdges[from] = append(outEdges[from], outEdge{to: to, weight: e.Weight})
		outWeight[from] += e.Weight
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}
	next := make([]float64, n)
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		for i := range next {
			next[i] = (1.0 - cfg.Damping) * personalization[i]
		}
		for i := 0; i < n; i++ {
			if outWeight[i] == 0 {
				// Dangling node: redistribute through personalization.
				for j := range next {
					next[j] += cfg.Damping * rank[i] * personalization[j]
				}
				continue
			}
			for _, e := range outEdges[i] {
				next[e.to] += cfg.Damping * rank[i] * (e.weight / outWeight[i])
			}
		}

		diff := 0.0
		for i := range rank {
			diff += math.Abs(next[i] - rank[i])
		}
		copy(rank, next)
		if diff < cfg.Tolerance {
			break
		}
	}

	out := make(map[string]float64, n)
	for i, node := range g.Nodes {
		out[node] = rank[i]
	}
	return out
}

// Rank scores every definition and returns them highest first. A symbol
// inherits its file's rank, boosted by the weight of the references
// pointing at it from other files.
func Rank(g *Graph, symbols []types.SymbolRef, cfg RankConfig) []types.RankedSymbol {
	fileRank := FileRanks(g, cfg)
	if fileRank == nil {
		return nil
	}

	type target struct{ file, name string }
	inbound := make(map[target]float64)
	total := 0.0
	for _, e := range g.Edges {
		inbound[target{e.To, e.Reference}] += e.Weight
		total += e.Weight
	}

	var ranked []types.RankedSymbol
	for _, s := range symbols {
		if s.Kind != types.Definition {
			continue
		}
		score, ok := fileRank[s.FilePath]
		if !ok {
			continue
		}
		if total > 0 {
			score *= 1 + inbound[target{s.FilePath, s.Name}]/total
		}
		ranked = append(ranked, types.RankedSymbol{
			FilePath: s.FilePath,
			Name:     s.Name,
			Parent:   s.Parent,
			Line:     s.Line,
			Decl:     s.Decl,
			Score:    score,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].FilePath != ranked[j].FilePath {
			return ranked[i].FilePath < ranked[j].FilePath
		}
		return ranked[i].Line < ranked[j].Line
	})
	return ranked
}

func normalize(v []float64) {
	total := 0.0
	for _, x := range v {
		total += x
	}
	if total == 0 {
		return
	}
	for i := range v {
		v[i] /= total
	}
}
