// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package digest

import (
	"strings"
)

const (
	blockOpener   = ":"
	commentPrefix = "#"
	decoratorMark = "@"
)

// DefaultExcludeMarkers lists the comment markers that are never attached
// to a declaration.
var DefaultExcludeMarkers = []string{"TODO", "FIXME"}

// docstringTokens are the delimiters that open and close a docstring block.
var docstringTokens = []string{`"""`, `'''`}

// Resolver computes signature, full, and attached-comment spans over a
// SourceText. All methods are pure and never fail; degenerate input yields
// a safe default instead.
type Resolver struct {
	src     *SourceText
	markers []string
}

// NewResolver returns a Resolver that drops comment lines containing any of
// markers. A nil slice selects DefaultExcludeMarkers.
func NewResolver(src *SourceText, markers []string) *Resolver {
	if markers == nil {
		markers = DefaultExcludeMarkers
	}
	return &Resolver{src: src, markers: markers}
}

// SignatureSpan scans forward from lo until a line whose code ends with the
// block opener. The scan never passes hi; if no opener is found the span
// runs to hi (or to the end of the file when hi is out of range).
func (r *Resolver) SignatureSpan(lo, hi int) Span {
	last := r.src.LineCount() - 1
	if lo < 0 || lo > last {
		return NoSpan
	}
	if hi < lo || hi > last {
		hi = last
	}
	for i := lo; i <= hi; i++ {
		if strings.HasSuffix(codeOf(r.src.Stripped(i)), blockOpener) {
			return Span{Lo: lo, Hi: i}
		}
	}
	return Span{Lo: lo, Hi: hi}
}

// FullSpan returns the declaration's own lines.
func (r *Resolver) FullSpan(lo, hi int) Span {
	return Span{Lo: lo, Hi: hi}
}

// UpperSpan finds the comment run or docstring block sitting directly above
// the declaration starting at lo. Blank lines and decorators between the
// block and the declaration are skipped. Assignments never take a docstring
// from above.
func (r *Resolver) UpperSpan(lo int, isAssignment bool) Span {
	i := r.prevContent(lo - 1)
	if i < 0 {
		return NoSpan
	}
	line := r.src.Stripped(i)
	switch {
	case isComment(line):
		return r.commentRunUp(i)
	case !isAssignment && closingToken(line) != "":
		return r.docstringUp(i)
	}
	return NoSpan
}

// LowerSpan finds the comment run or docstring block directly below a
// declaration's header. The window depends on kind: the whole file for a
// module, the lines after the statement for an assignment, and the body
// after the signature for functions and classes. Blank lines are not
// skipped; the first line of the window must start the block.
func (r *Resolver) LowerSpan(kind NodeKind, lo, hi int) Span {
	last := r.src.LineCount() - 1
	var start, end int
	switch kind {
	case NodeModule:
		start, end = 0, last
	case NodeAssignment:
		start, end = hi+1, last
	case NodeFunctionDef, NodeClassDef:
		sig := r.SignatureSpan(lo, hi)
		if !sig.Valid() {
			return NoSpan
		}
		start, end = sig.Hi+1, min(hi, last)
	default:
		return NoSpan
	}
	if start < 0 || start > end {
		return NoSpan
	}

	first := r.src.Stripped(start)
	switch {
	case isComment(first) && kind != NodeAssignment:
		return r.commentRunDown(start, end)
	case openingToken(first) != "":
		return r.docstringDown(start, end)
	}
	return NoSpan
}

// commentRunUp collects comment lines upward from i. A line carrying an
// exclusion marker ends the run.
func (r *Resolver) commentRunUp(i int) Span {
	span := NoSpan
	for j := i; j >= 0; j = r.prevContent(j - 1) {
		line := r.src.Stripped(j)
		if !isComment(line) || r.excluded(line) {
			break
		}
		if span.Hi < 0 {
			span.Hi = j
		}
		span.Lo = j
	}
	return span
}

// commentRunDown collects contiguous comment lines from start through end.
func (r *Resolver) commentRunDown(start, end int) Span {
	span := NoSpan
	for j := start; j <= end; j++ {
		line := r.src.Stripped(j)
		if !isComment(line) || r.excluded(line) {
			break
		}
		if span.Lo < 0 {
			span.Lo = j
		}
		span.Hi = j
	}
	return span
}

// docstringUp walks upward from the closing line i to the line holding the
// matching opening delimiter. An unterminated block yields NoSpan.
func (r *Resolver) docstringUp(i int) Span {
	line := r.src.Stripped(i)
	tok := closingToken(line)
	if line != tok && strings.Contains(strings.TrimSuffix(line, tok), tok) {
		return Span{Lo: i, Hi: i}
	}
	for j := i - 1; j >= 0; j-- {
		if strings.Contains(r.src.Stripped(j), tok) {
			return Span{Lo: j, Hi: i}
		}
	}
	return NoSpan
}

// docstringDown walks downward from the opening line start to the line
// holding the matching closing delimiter, never passing end.
func (r *Resolver) docstringDown(start, end int) Span {
	line := r.src.Stripped(start)
	tok := openingToken(line)
	if strings.Contains(strings.TrimPrefix(line, tok), tok) {
		return Span{Lo: start, Hi: start}
	}
	for j := start + 1; j <= end; j++ {
		if strings.Contains(r.src.Stripped(j), tok) {
			return Span{Lo: start, Hi: j}
		}
	}
	return NoSpan
}

// prevContent returns the nearest index at or above i that is neither blank
// nor a decorator, or -1.
func (r *Resolver) prevContent(i int) int {
	for ; i >= 0; i-- {
		line := r.src.Stripped(i)
		if line != "" && !strings.HasPrefix(line, decoratorMark) {
			return i
		}
	}
	return -1
}

func (r *Resolver) excluded(line string) bool {
	for _, m := range r.markers {
		if m != "" && strings.Contains(line, m) {
			return true
		}
	}
	return false
}

func isComment(line string) bool {
	return strings.HasPrefix(line, commentPrefix)
}

// openingToken returns the docstring delimiter line starts with, or "".
func openingToken(line string) string {
	for _, tok := range docstringTokens {
		if strings.HasPrefix(line, tok) {
			return tok
		}
	}
	return ""
}

// closingToken returns the docstring delimiter line ends with, or "".
func closingToken(line string) string {
	for _, tok := range docstringTokens {
		if strings.HasSuffix(line, tok) {
			return tok
		}
	}
	return ""
}

// codeOf strips a trailing "# comment" that is not inside a string literal
// and returns the remaining code, trimmed.
func codeOf(line string) string {
	if !strings.Contains(line, commentPrefix) {
		return line
	}
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote == 0 && c == '#':
			return strings.TrimSpace(line[:i])
		}
	}
	return line
}
