// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package lookup ranks declaration names by similarity so that a failed
// lookup can offer "did you mean" candidates.
package lookup

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultThreshold is the minimum similarity for a name to be suggested.
const DefaultThreshold = 0.5

// Match is a candidate name with its similarity to the query.
type Match struct {
	Name  string
	Score float64
}

// Similarity computes the Levenshtein-based similarity ratio between two
// strings using go-diff. Returns a value between 0.0 and 1.0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)
	maxLen := max(len(a), len(b))
	return max(0, 1.0-float64(distance)/float64(maxLen))
}

// Rank scores every candidate against query, case-insensitively, and
// returns those at or above threshold, best first. Ties sort by name.
func Rank(candidates []string, query string, threshold float64) []Match {
	q := strings.ToLower(query)
	var out []Match
	for _, c := range candidates {
		score := Similarity(strings.ToLower(c), q)
		if score >= threshold {
			out = append(out, Match{Name: c, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Suggest returns at most n candidate names close to query.
func Suggest(candidates []string, query string, n int) []string {
	matches := Rank(candidates, query, DefaultThreshold)
	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	return names
}
