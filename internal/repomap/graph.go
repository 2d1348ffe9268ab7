// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"slices"
	"sort"
	"strings"

	"github.com/petar-djukic/codedigest/pkg/types"
)

const (
	longNameThreshold = 8
	longNameWeight    = 1.0
	shortNameWeight   = 0.5
	privateWeight     = 0.1
	dunderWeight      = 0.05
	commonThreshold   = 5
	commonFactor      = 0.1
)

// Edge represents a directed edge in the reference graph.
type Edge struct {
	From      string  // Referencing file
	To        string  // File defining the symbol
	Reference string  // Symbol name
	Weight    float64 // Edge weight based on identifier quality
}

// Graph is a directed multigraph where nodes are files and edges
// represent cross-file symbol references.
type Graph struct {
	Nodes []string // All file paths, sorted
	Edges []Edge
	defs  map[string][]string // symbol name → files defining it
}

// BuildGraph constructs the reference graph from extracted symbols.
func BuildGraph(symbols []types.SymbolRef) *Graph {
	g := &Graph{
		defs: make(map[string][]string),
	}

	nodeSet := make(map[string]bool)
	for _, s := range symbols {
		nodeSet[s.FilePath] = true
		if s.Kind == types.Definition && !slices.Contains(g.defs[s.Name], s.FilePath) {
			g.defs[s.Name] = append(g.defs[s.Name], s.FilePath)
		}
	}
	for f := range nodeSet {
		g.Nodes = append(g.Nodes, f)
	}
	sort.Strings(g.Nodes)

	// Count references per (from, to, symbol) to weight edges.
	type edgeKey struct {
		from, to, ref string
	}
	edgeCounts := make(map[edgeKey]int)
	for _, s := range symbols {
		if s.Kind != types.Reference {
			continue
		}
		for _, defFile := range g.defs[s.Name] {
			if defFile == s.FilePath {
				continue
			}
			edgeCounts[edgeKey{from: s.FilePath, to: defFile, ref: s.Name}]++
		}
	}

	for key, count := range edgeCounts {
		g.Edges = append(g.Edges, Edge{
			From:      key.from,
			To:        key.to,
			Reference: key.ref,
			Weight:    float64(count) * identifierWeight(key.ref) * commonWeight(key.ref, g.defs),
		})
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Reference < b.Reference
	})

	return g
}

// Definers returns the files defining name.
func (g *Graph) Definers(name string) []string {
	return g.defs[name]
}

// identifierWeight scores a symbol name. Dunder names such as __init__ are
// defined everywhere and say almost nothing about a dependency; private
// names are discounted less.
func identifierWeight(name string) float64 {
	switch {
	case strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
		return dunderWeight
	case strings.HasPrefix(name, "_"):
		return privateWeight
	case len(name) >= longNameThreshold:
		return longNameWeight
	default:
		return shortNameWeight
	}
}

// commonWeight reduces weight for symbols defined in many files.
func commonWeight(name string, defs map[string][]string) float64 {
	if len(defs[name]) >= commonThreshold {
		return commonFactor
	}
	return 1.0
}
