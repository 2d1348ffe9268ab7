// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package digest

// NodeKind tags the statement kinds the walker distinguishes.
type NodeKind int

const (
	NodeOther NodeKind = iota
	NodeModule
	NodeImport
	NodeAssignment
	NodeFunctionDef
	NodeClassDef
)

// String returns the name of the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeModule:
		return "Module"
	case NodeImport:
		return "Import"
	case NodeAssignment:
		return "Assignment"
	case NodeFunctionDef:
		return "FunctionDef"
	case NodeClassDef:
		return "ClassDef"
	default:
		return "Other"
	}
}

// Node is the front-end independent parse tree consumed by Build.
// StartLine and EndLine are 1-based and inclusive.
type Node struct {
	Kind      NodeKind
	Name      string // function, class, or assignment target name
	StartLine int
	EndLine   int

	// SimpleTarget is set on assignments whose only target is a plain name.
	SimpleTarget bool

	Children []*Node
}
