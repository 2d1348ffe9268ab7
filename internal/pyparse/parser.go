// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pyparse turns Python source into the digest.Node tree consumed by
// internal/digest, using the tree-sitter Python grammar.
package pyparse

import (
	"context"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/petar-djukic/codedigest/internal/digest"
)

// refQuery captures every identifier for the cross-file reference graph.
const refQuery = `(identifier) @ref`

// Identifier is one identifier occurrence. Line is 1-based.
type Identifier struct {
	Name string
	Line int
}

// Result holds everything extracted from a single parse.
type Result struct {
	Root *digest.Node
	Refs []Identifier
}

// Analyze parses content once and returns both the declaration tree and the
// identifier occurrences. A syntax error anywhere in the file, or content
// that is not valid UTF-8, yields digest.ErrParseFailure.
func Analyze(ctx context.Context, content []byte) (*Result, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("invalid utf-8: %w", digest.ErrParseFailure)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil, digest.ErrParseFailure
	}

	c := converter{src: content}
	return &Result{
		Root: c.module(root),
		Refs: identifiers(root, content),
	}, nil
}

// Parse returns the declaration tree for content.
func Parse(ctx context.Context, content []byte) (*digest.Node, error) {
	r, err := Analyze(ctx, content)
	if err != nil {
		return nil, err
	}
	return r.Root, nil
}

// BuildModule parses content and indexes it.
func BuildModule(ctx context.Context, content []byte, opts ...digest.Option) (*digest.ModuleIndex, error) {
	root, err := Parse(ctx, content)
	if err != nil {
		return nil, err
	}
	return digest.Build(string(content), root, opts...)
}

type converter struct {
	src []byte
}

func (c converter) module(n *sitter.Node) *digest.Node {
	out := c.node(n, digest.NodeModule)
	out.Children = c.statements(n)
	return out
}

// convert maps one statement. Expression internals never hold declarations
// the builder cares about, so only statement structure is kept.
func (c converter) convert(n *sitter.Node) *digest.Node {
	switch n.Type() {
	case "import_statement", "import_from_statement", "future_import_statement":
		return c.node(n, digest.NodeImport)

	case "expression_statement":
		if n.NamedChildCount() > 0 {
			if a := n.NamedChild(0); a.Type() == "assignment" {
				return c.assignment(n, a)
			}
		}
		return c.node(n, digest.NodeOther)

	case "function_definition":
		out := c.node(n, digest.NodeFunctionDef)
		out.Name = c.fieldText(n, "name")
		out.Children = c.statements(n.ChildByFieldName("body"))
		return out

	case "class_definition":
		out := c.node(n, digest.NodeClassDef)
		out.Name = c.fieldText(n, "name")
		out.Children = c.statements(n.ChildByFieldName("body"))
		return out

	case "decorated_definition":
		if def := n.ChildByFieldName("definition"); def != nil {
			return c.convert(def)
		}
		return c.node(n, digest.NodeOther)

	case "comment":
		return nil
	}

	out := c.node(n, digest.NodeOther)
	out.Children = c.statements(n)
	return out
}

// assignment maps an expression statement holding an assignment. Only a bare
// identifier on the left of a single "=" is a simple target; chained
// assignments, tuples, attributes, and subscripts are not.
func (c converter) assignment(stmt, a *sitter.Node) *digest.Node {
	out := c.node(stmt, digest.NodeAssignment)
	left := a.ChildByFieldName("left")
	right := a.ChildByFieldName("right")
	if left != nil && left.Type() == "identifier" && (right == nil || right.Type() != "assignment") {
		out.Name = left.Content(c.src)
		out.SimpleTarget = true
	}
	return out
}

// statements converts the named children of n that describe statements.
func (c converter) statements(n *sitter.Node) []*digest.Node {
	if n == nil {
		return nil
	}
	var out []*digest.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || !isStatement(child) {
			continue
		}
		if conv := c.convert(child); conv != nil {
			out = append(out, conv)
		}
	}
	return out
}

func (c converter) node(n *sitter.Node, kind digest.NodeKind) *digest.Node {
	start, end := lineRange(n)
	return &digest.Node{Kind: kind, StartLine: start, EndLine: end}
}

func (c converter) fieldText(n *sitter.Node, field string) string {
	f := n.ChildByFieldName(field)
	if f == nil {
		return ""
	}
	return f.Content(c.src)
}

// lineRange returns the 1-based inclusive lines covered by n. A node that
// ends at column zero stops on the previous line, and trailing comments the
// grammar folded into a block are not counted.
func lineRange(n *sitter.Node) (int, int) {
	start := n.StartPoint()
	end := contentEnd(n)
	endRow := end.Row
	if end.Column == 0 && endRow > start.Row {
		endRow--
	}
	return int(start.Row) + 1, int(endRow) + 1
}

// contentEnd returns where the last non-comment content of n ends.
func contentEnd(n *sitter.Node) sitter.Point {
	end := n.EndPoint()
	count := int(n.NamedChildCount())
	if count == 0 {
		return end
	}
	last := n.NamedChild(count - 1)
	if last.EndPoint() != end {
		return end
	}
	if last.Type() != "comment" {
		return contentEnd(last)
	}
	for i := count - 2; i >= 0; i-- {
		if child := n.NamedChild(i); child.Type() != "comment" {
			return contentEnd(child)
		}
	}
	return end
}

// isStatement reports whether a named node can hold or be a declaration.
// Blocks and clauses are kept so that compound statements are walked.
func isStatement(n *sitter.Node) bool {
	switch n.Type() {
	case "import_statement", "import_from_statement", "future_import_statement",
		"expression_statement", "function_definition", "class_definition",
		"decorated_definition", "block",
		"if_statement", "elif_clause", "else_clause",
		"for_statement", "while_statement",
		"try_statement", "except_clause", "except_group_clause", "finally_clause",
		"with_statement", "match_statement", "case_clause":
		return true
	}
	return false
}

// identifiers runs refQuery over root. Each (name, line) pair is reported once.
func identifiers(root *sitter.Node, content []byte) []Identifier {
	q, err := sitter.NewQuery([]byte(refQuery), python.GetLanguage())
	if err != nil {
		return nil
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	type key struct {
		name string
		line int
	}
	seen := make(map[key]bool)
	var out []Identifier
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, capture := range m.Captures {
			id := Identifier{
				Name: capture.Node.Content(content),
				Line: int(capture.Node.StartPoint().Row) + 1,
			}
			k := key{id.Name, id.Line}
			if id.Name == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, id)
		}
	}
	return out
}
