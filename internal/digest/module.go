// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package digest

import (
	"sort"
	"strings"

	"github.com/petar-djukic/codedigest/pkg/types"
)

// ModuleIndex holds every declaration registered for one file. It is
// immutable once returned by Builder.Finish and safe for concurrent reads.
type ModuleIndex struct {
	src   *SourceText
	decls []Decl

	order     []DeclID
	imports   []DeclID
	functions map[string]DeclID
	classes   map[string]DeclID
	constants map[string]DeclID
	doc       Span
}

func newModuleIndex(src *SourceText) *ModuleIndex {
	return &ModuleIndex{
		src:       src,
		functions: make(map[string]DeclID),
		classes:   make(map[string]DeclID),
		constants: make(map[string]DeclID),
		doc:       NoSpan,
	}
}

// Source returns the indexed file text.
func (m *ModuleIndex) Source() *SourceText { return m.src }

// Doc returns the module documentation span, or NoSpan.
func (m *ModuleIndex) Doc() Span { return m.doc }

// Len returns the number of registered declarations, class members included.
func (m *ModuleIndex) Len() int { return len(m.decls) }

// Decl returns the declaration with the given id.
func (m *ModuleIndex) Decl(id DeclID) *Decl { return &m.decls[id] }

// TopLevel returns the top-level declarations in source order.
func (m *ModuleIndex) TopLevel() []DeclID {
	out := make([]DeclID, len(m.order))
	copy(out, m.order)
	return out
}

// Imports returns the top-level imports in source order.
func (m *ModuleIndex) Imports() []DeclID {
	out := make([]DeclID, len(m.imports))
	copy(out, m.imports)
	return out
}

// Functions returns the names of the module-level functions, sorted.
func (m *ModuleIndex) Functions() []string { return sortedKeys(m.functions) }

// Classes returns the names of the top-level classes, sorted.
func (m *ModuleIndex) Classes() []string { return sortedKeys(m.classes) }

// Constants returns the names of the module-level constants, sorted.
func (m *ModuleIndex) Constants() []string { return sortedKeys(m.constants) }

// Methods returns the method names of class, sorted. It reports false if
// the class does not exist.
func (m *ModuleIndex) Methods(class string) ([]string, bool) {
	id, ok := m.classes[class]
	if !ok {
		return nil, false
	}
	return sortedKeys(m.decls[id].methods), true
}

// Function returns the module-level function named name.
func (m *ModuleIndex) Function(name string) (*Decl, bool) {
	return m.lookup(m.functions, name)
}

// Class returns the top-level class named name.
func (m *ModuleIndex) Class(name string) (*Decl, bool) {
	return m.lookup(m.classes, name)
}

// Constant returns the module-level constant named name.
func (m *ModuleIndex) Constant(name string) (*Decl, bool) {
	return m.lookup(m.constants, name)
}

// Method returns method of class.
func (m *ModuleIndex) Method(class, method string) (*Decl, bool) {
	c, ok := m.Class(class)
	if !ok {
		return nil, false
	}
	return m.lookup(c.methods, method)
}

// ClassConstant returns the class-level constant name of class.
func (m *ModuleIndex) ClassConstant(class, name string) (*Decl, bool) {
	c, ok := m.Class(class)
	if !ok {
		return nil, false
	}
	return m.lookup(c.constants, name)
}

// Render renders the whole module. Minimal yields only the module
// documentation, Signature the skeleton of all top-level declarations,
// Moderate both, and Full the original content.
func (m *ModuleIndex) Render(level types.DetailLevel, mode types.NumberMode) string {
	switch level {
	case types.Full:
		return m.src.RenderAll(mode)
	case types.Minimal:
		return m.src.Render(m.doc, mode)
	case types.Signature:
		return m.renderSeq(m.order, types.Signature, mode)
	default:
		return m.src.Render(m.doc, mode) + m.renderSeq(m.order, types.Moderate, mode)
	}
}

// RenderDecl renders a single declaration.
func (m *ModuleIndex) RenderDecl(id DeclID, level types.DetailLevel, mode types.NumberMode) string {
	return m.decls[id].render(m, level, mode)
}

// GetFunction renders the module-level function name. It reports false
// when no such function exists.
func (m *ModuleIndex) GetFunction(name string, level types.DetailLevel, mode types.NumberMode) (string, bool) {
	d, ok := m.Function(name)
	if !ok {
		return "", false
	}
	return d.render(m, level, mode), true
}

// GetClass renders the top-level class name.
func (m *ModuleIndex) GetClass(name string, level types.DetailLevel, mode types.NumberMode) (string, bool) {
	d, ok := m.Class(name)
	if !ok {
		return "", false
	}
	return d.render(m, level, mode), true
}

// GetMethod renders method of class.
func (m *ModuleIndex) GetMethod(class, method string, level types.DetailLevel, mode types.NumberMode) (string, bool) {
	d, ok := m.Method(class, method)
	if !ok {
		return "", false
	}
	return d.render(m, level, mode), true
}

// GetClassBounded renders class at Moderate, falling back to Signature when
// the Moderate text is longer than maxLen bytes. maxLen <= 0 disables the
// fallback.
func (m *ModuleIndex) GetClassBounded(name string, maxLen int, mode types.NumberMode) (string, bool) {
	text, ok := m.GetClass(name, types.Moderate, mode)
	if !ok || maxLen <= 0 || len(text) <= maxLen {
		return text, ok
	}
	return m.GetClass(name, types.Signature, mode)
}

// Excerpt renders a 1-based line window with context lines around it.
func (m *ModuleIndex) Excerpt(lineStart, lineEnd, context int, mode types.NumberMode) string {
	return m.src.Excerpt(lineStart, lineEnd, context, mode)
}

// OutlineEntry describes one registered declaration.
type OutlineEntry struct {
	ID        DeclID
	Kind      types.DeclKind
	Name      string // qualified for class members
	StartLine int    // 1-based
	EndLine   int    // 1-based, inclusive
}

// Outline lists every registered declaration in source order, with class
// members directly after their class.
func (m *ModuleIndex) Outline() []OutlineEntry {
	var out []OutlineEntry
	var add func(ids []DeclID)
	add = func(ids []DeclID) {
		for _, id := range ids {
			d := &m.decls[id]
			out = append(out, OutlineEntry{
				ID:        id,
				Kind:      d.Kind,
				Name:      d.QualifiedName(),
				StartLine: d.Full.Lo + 1,
				EndLine:   d.Full.Hi + 1,
			})
			add(d.children)
		}
	}
	add(m.order)
	return out
}

// renderSeq renders ids in order, separated by a blank line.
func (m *ModuleIndex) renderSeq(ids []DeclID, level types.DetailLevel, mode types.NumberMode) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = m.decls[id].render(m, level, mode)
	}
	return strings.Join(parts, "\n")
}

func (m *ModuleIndex) lookup(names map[string]DeclID, name string) (*Decl, bool) {
	id, ok := names[name]
	if !ok {
		return nil, false
	}
	return &m.decls[id], true
}

func sortedKeys(m map[string]DeclID) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
