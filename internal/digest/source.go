// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package digest builds a line-addressable index of the top-level
// declarations in a Python source file and renders them at several levels
// of detail.
//
// The package is pure: it never performs I/O. Callers supply the raw text
// and a parse tree (see Node) produced by a front end such as
// internal/pyparse, and receive an immutable ModuleIndex.
package digest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/petar-djukic/codedigest/pkg/types"
)

// Span is an inclusive range of zero-based line indices. Lo is also the
// line at which rendering starts numbering.
type Span struct {
	Lo int
	Hi int
}

// NoSpan is the explicit absent span. It renders to the empty string.
var NoSpan = Span{Lo: -1, Hi: -1}

// Valid reports whether the span covers at least one line.
func (s Span) Valid() bool {
	return s.Lo >= 0 && s.Hi >= s.Lo
}

// Len returns the number of lines covered by the span.
func (s Span) Len() int {
	if !s.Valid() {
		return 0
	}
	return s.Hi - s.Lo + 1
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Valid() && o.Valid() && s.Lo <= o.Lo && o.Hi <= s.Hi
}

// String renders the span as 1-based line numbers, e.g. "3-7".
func (s Span) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%d-%d", s.Lo+1, s.Hi+1)
}

// SourceText is an immutable, line-indexed view of one file's content.
type SourceText struct {
	content  string
	lines    []string
	stripped []string
	padding  int
}

// NewSourceText splits content into lines. A trailing newline yields a
// final empty line, so LineCount is always at least one.
func NewSourceText(content string) *SourceText {
	lines := strings.Split(content, "\n")
	stripped := make([]string, len(lines))
	for i, line := range lines {
		stripped[i] = strings.TrimSpace(line)
	}
	return &SourceText{
		content:  content,
		lines:    lines,
		stripped: stripped,
		padding:  len(strconv.Itoa(len(lines))),
	}
}

// Content returns the raw file content.
func (s *SourceText) Content() string { return s.content }

// LineCount returns the number of lines, including the empty line that
// follows a trailing newline.
func (s *SourceText) LineCount() int { return len(s.lines) }

// Line returns the raw line at zero-based index i.
func (s *SourceText) Line(i int) string { return s.lines[i] }

// Stripped returns line i with surrounding whitespace removed.
func (s *SourceText) Stripped(i int) string { return s.stripped[i] }

// Padding returns the width used to right-justify line numbers.
func (s *SourceText) Padding() int { return s.padding }

// Text returns the lines covered by span joined with newlines, without a
// trailing newline. An absent span yields "".
func (s *SourceText) Text(span Span) string {
	span, ok := s.clamp(span)
	if !ok {
		return ""
	}
	return strings.Join(s.lines[span.Lo:span.Hi+1], "\n")
}

// Render returns the lines covered by span, numbered according to mode.
func (s *SourceText) Render(span Span, mode types.NumberMode) string {
	span, ok := s.clamp(span)
	if !ok {
		return ""
	}
	return s.RenderLines(s.lines[span.Lo:span.Hi+1], span.Lo, mode)
}

// RenderLines renders explicit lines as if the first one sat at zero-based
// index start. Every rendered line ends with a newline; no lines yields "".
func (s *SourceText) RenderLines(lines []string, start int, mode types.NumberMode) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for i, line := range lines {
		if mode == types.NumbersEnabled {
			b.WriteString(fmt.Sprintf("%*d |", s.padding, start+i+1))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderAll renders the whole file. With numbering disabled the content is
// returned verbatim.
func (s *SourceText) RenderAll(mode types.NumberMode) string {
	if mode == types.NumbersDisabled {
		return s.content
	}
	return s.RenderLines(s.lines[:s.logicalCount()], 0, mode)
}

// Excerpt renders the 1-based inclusive window [lineStart, lineEnd], widened
// by context lines on each side and clamped to the file. lineEnd == -1
// selects the end of the file.
func (s *SourceText) Excerpt(lineStart, lineEnd, context int, mode types.NumberMode) string {
	last := s.logicalCount() - 1
	if last < 0 {
		return ""
	}
	if context < 0 {
		context = 0
	}
	if lineEnd == -1 {
		lineEnd = last + 1
	}
	lo := max(0, lineStart-1-context)
	hi := min(last, lineEnd-1+context)
	if lo > hi {
		return ""
	}
	return s.Render(Span{Lo: lo, Hi: hi}, mode)
}

// LineOf maps a byte offset into the content to a zero-based line index.
// Offsets past the end map to the last line.
func (s *SourceText) LineOf(offset int) int {
	if offset <= 0 {
		return 0
	}
	pos := 0
	for i, line := range s.lines {
		pos += len(line) + 1
		if offset < pos {
			return i
		}
	}
	return len(s.lines) - 1
}

// logicalCount is the line count without the empty line produced by a
// trailing newline.
func (s *SourceText) logicalCount() int {
	n := len(s.lines)
	if n > 0 && s.lines[n-1] == "" {
		n--
	}
	return n
}

// clamp trims span to the file, reporting false when nothing remains.
func (s *SourceText) clamp(span Span) (Span, bool) {
	if !span.Valid() || span.Lo >= len(s.lines) {
		return NoSpan, false
	}
	if span.Hi >= len(s.lines) {
		span.Hi = len(s.lines) - 1
	}
	return span, true
}
