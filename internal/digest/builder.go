// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package digest

import (
	"errors"

	"github.com/petar-djukic/codedigest/pkg/types"
)

// ErrParseFailure is returned when there is no usable parse tree for a
// file. Callers keep such files as raw text.
var ErrParseFailure = errors.New("source could not be parsed")

// Option configures a Builder.
type Option func(*options)

type options struct {
	excludeMarkers []string
}

// WithExcludeMarkers replaces the comment markers that are never attached
// to a declaration. An empty, non-nil slice disables exclusion.
func WithExcludeMarkers(markers []string) Option {
	return func(o *options) {
		o.excludeMarkers = markers
	}
}

// Builder registers declarations one at a time and produces a ModuleIndex.
// Line arguments are 1-based and inclusive. A Builder must not be used
// after Finish.
type Builder struct {
	src *SourceText
	res *Resolver
	mod *ModuleIndex
}

// NewBuilder starts an empty index over content.
func NewBuilder(content string, opts ...Option) *Builder {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	src := NewSourceText(content)
	return &Builder{
		src: src,
		res: NewResolver(src, o.excludeMarkers),
		mod: newModuleIndex(src),
	}
}

// Resolver returns the span resolver used by the builder.
func (b *Builder) Resolver() *Resolver { return b.res }

// SetModuleDoc derives the module documentation from the top of the file.
func (b *Builder) SetModuleDoc() {
	b.mod.doc = b.res.LowerSpan(NodeModule, 0, b.src.LineCount()-1)
}

// AddImport registers a top-level import.
func (b *Builder) AddImport(start, end int) DeclID {
	lo, hi := b.lines(start, end)
	id := b.push(Decl{
		Kind:      types.Import,
		Full:      b.res.FullSpan(lo, hi),
		Signature: NoSpan,
		Upper:     NoSpan,
		Lower:     NoSpan,
	})
	b.mod.imports = append(b.mod.imports, id)
	b.mod.order = append(b.mod.order, id)
	return id
}

// AddConstant registers a module-level constant.
func (b *Builder) AddConstant(name string, start, end int) DeclID {
	id := b.push(b.assignment(name, "", start, end))
	b.mod.constants[name] = id
	b.mod.order = append(b.mod.order, id)
	return id
}

// AddFunction registers a module-level function.
func (b *Builder) AddFunction(name string, start, end int) DeclID {
	id := b.push(b.block(types.Function, NodeFunctionDef, name, "", start, end))
	b.mod.functions[name] = id
	b.mod.order = append(b.mod.order, id)
	return id
}

// AddClass registers a top-level class.
func (b *Builder) AddClass(name string, start, end int) DeclID {
	d := b.block(types.Class, NodeClassDef, name, "", start, end)
	d.methods = make(map[string]DeclID)
	d.constants = make(map[string]DeclID)
	id := b.push(d)
	b.mod.classes[name] = id
	b.mod.order = append(b.mod.order, id)
	return id
}

// AddMethod registers a method of class.
func (b *Builder) AddMethod(class DeclID, name string, start, end int) DeclID {
	id := b.push(b.block(types.Function, NodeFunctionDef, name, b.mod.decls[class].Name, start, end))
	c := &b.mod.decls[class]
	c.methods[name] = id
	c.children = append(c.children, id)
	return id
}

// AddClassConstant registers a class-level constant of class.
func (b *Builder) AddClassConstant(class DeclID, name string, start, end int) DeclID {
	id := b.push(b.assignment(name, b.mod.decls[class].Name, start, end))
	c := &b.mod.decls[class]
	c.constants[name] = id
	c.children = append(c.children, id)
	return id
}

// Finish returns the completed index.
func (b *Builder) Finish() *ModuleIndex {
	m := b.mod
	b.mod = nil
	return m
}

func (b *Builder) assignment(name, parent string, start, end int) Decl {
	lo, hi := b.lines(start, end)
	return Decl{
		Kind:      types.Assignment,
		Name:      name,
		Parent:    parent,
		Full:      b.res.FullSpan(lo, hi),
		Signature: NoSpan,
		Upper:     b.res.UpperSpan(lo, true),
		Lower:     b.res.LowerSpan(NodeAssignment, lo, hi),
	}
}

func (b *Builder) block(kind types.DeclKind, node NodeKind, name, parent string, start, end int) Decl {
	lo, hi := b.lines(start, end)
	return Decl{
		Kind:      kind,
		Name:      name,
		Parent:    parent,
		Full:      b.res.FullSpan(lo, hi),
		Signature: b.res.SignatureSpan(lo, hi),
		Upper:     b.res.UpperSpan(lo, false),
		Lower:     b.res.LowerSpan(node, lo, hi),
	}
}

func (b *Builder) push(d Decl) DeclID {
	d.ID = DeclID(len(b.mod.decls))
	b.mod.decls = append(b.mod.decls, d)
	return d.ID
}

// lines converts 1-based inclusive lines to clamped zero-based indices.
func (b *Builder) lines(start, end int) (int, int) {
	last := b.src.LineCount() - 1
	lo := min(max(start-1, 0), last)
	hi := min(max(end-1, lo), last)
	return lo, hi
}

// Build walks root and returns the index for content. Only direct children
// of the module and of a top-level class body are registered; anything
// nested deeper, including statements under if or try blocks, is visited
// but never registered.
func Build(content string, root *Node, opts ...Option) (*ModuleIndex, error) {
	if root == nil || root.Kind != NodeModule {
		return nil, ErrParseFailure
	}
	b := NewBuilder(content, opts...)
	b.SetModuleDoc()
	w := walker{b: b}
	w.visitChildren(root, scope{topLevel: true, class: noDecl})
	return b.Finish(), nil
}

// scope is the walker state: whether statements are at module level and
// which registered class, if any, directly encloses them.
type scope struct {
	topLevel bool
	class    DeclID
}

type walker struct {
	b *Builder
}

func (w *walker) visit(n *Node, s scope) {
	switch n.Kind {
	case NodeFunctionDef:
		switch {
		case s.topLevel:
			w.b.AddFunction(n.Name, n.StartLine, n.EndLine)
		case s.class != noDecl:
			w.b.AddMethod(s.class, n.Name, n.StartLine, n.EndLine)
		}
		w.visitChildren(n, scope{class: noDecl})

	case NodeClassDef:
		inner := scope{class: noDecl}
		if s.topLevel {
			inner.class = w.b.AddClass(n.Name, n.StartLine, n.EndLine)
		}
		w.visitChildren(n, inner)

	case NodeAssignment:
		if n.SimpleTarget && n.Name != "" {
			switch {
			case s.topLevel:
				w.b.AddConstant(n.Name, n.StartLine, n.EndLine)
			case s.class != noDecl:
				w.b.AddClassConstant(s.class, n.Name, n.StartLine, n.EndLine)
			}
		}
		w.visitChildren(n, scope{class: noDecl})

	case NodeImport:
		if s.topLevel {
			w.b.AddImport(n.StartLine, n.EndLine)
		}

	default:
		w.visitChildren(n, scope{class: noDecl})
	}
}

func (w *walker) visitChildren(n *Node, s scope) {
	for _, c := range n.Children {
		if c != nil {
			w.visit(c, s)
		}
	}
}
