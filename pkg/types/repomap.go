// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// SymbolRef is one declaration or identifier occurrence in a repository
// file, used to build the cross-file reference graph.
type SymbolRef struct {
	Name     string // Bare symbol name
	Parent   string // Enclosing class for methods and class constants
	FilePath string // Slash-separated, relative to the repository root
	Line     int    // 1-based
	Kind     RefKind
	Decl     DeclKind // Meaningful for definitions only
}

// RefKind distinguishes symbol definitions from references.
type RefKind int

const (
	Definition RefKind = iota
	Reference
)

// RankedSymbol is a definition with its PageRank score.
type RankedSymbol struct {
	FilePath  string
	Name      string
	Parent    string
	Line      int
	Decl      DeclKind
	Signature string
	Score     float64
}

// QualifiedName returns "Parent.Name" for class members and Name otherwise.
func (s RankedSymbol) QualifiedName() string {
	if s.Parent == "" {
		return s.Name
	}
	return s.Parent + "." + s.Name
}

// RepoMapResult holds the rendered repository map and metadata.
type RepoMapResult struct {
	Map        string  // Rendered map text
	FileCount  int     // Number of files in the map
	TotalFiles int     // Total files in the repository
	SymCount   int     // Number of symbols in the map
	TotalSyms  int     // Total symbols extracted
	TokensUsed float64 // Estimated token count of the map
}
