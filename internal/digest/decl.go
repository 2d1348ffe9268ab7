// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package digest

import (
	"github.com/petar-djukic/codedigest/pkg/types"
)

// DeclID addresses a declaration in its ModuleIndex arena.
type DeclID int

// noDecl marks the absence of an enclosing class.
const noDecl DeclID = -1

// Decl is one indexed declaration. Signature is NoSpan for imports and
// assignments. Class members are held as ids into the same arena, so the
// ordered view and the name maps never duplicate records.
type Decl struct {
	ID     DeclID
	Kind   types.DeclKind
	Name   string
	Parent string // enclosing class for methods and class constants

	Full      Span
	Signature Span
	Upper     Span
	Lower     Span

	children  []DeclID
	methods   map[string]DeclID
	constants map[string]DeclID
}

// Children returns the class members in source order.
func (d *Decl) Children() []DeclID {
	out := make([]DeclID, len(d.children))
	copy(out, d.children)
	return out
}

// QualifiedName returns "Class.member" for class members and Name otherwise.
func (d *Decl) QualifiedName() string {
	if d.Parent == "" {
		return d.Name
	}
	return d.Parent + "." + d.Name
}

// render renders d at level. Class members are looked up in m.
func (d *Decl) render(m *ModuleIndex, level types.DetailLevel, mode types.NumberMode) string {
	src := m.src
	switch d.Kind {
	case types.Import:
		return src.Render(d.Full, mode)

	case types.Assignment:
		full := src.Render(d.Full, mode)
		if level == types.Signature {
			return full
		}
		return src.Render(d.Upper, mode) + full + src.Render(d.Lower, mode)

	case types.Function:
		switch level {
		case types.Signature:
			return src.Render(d.Signature, mode)
		case types.Full:
			return src.Render(d.Upper, mode) + src.Render(d.Full, mode)
		default:
			return src.Render(d.Upper, mode) + src.Render(d.Signature, mode) + src.Render(d.Lower, mode)
		}

	case types.Class:
		switch level {
		case types.Signature:
			return src.Render(d.Signature, mode) + m.renderSeq(d.children, types.Signature, mode)
		case types.Minimal:
			return src.Render(d.Upper, mode) + src.Render(d.Signature, mode) + src.Render(d.Lower, mode)
		case types.Moderate:
			return src.Render(d.Upper, mode) + src.Render(d.Signature, mode) + src.Render(d.Lower, mode) +
				m.renderSeq(d.children, types.Moderate, mode)
		default:
			return src.Render(d.Upper, mode) + src.Render(d.Full, mode)
		}
	}
	return ""
}
