// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package markdown reduces README files to their heading skeleton, the
// markdown counterpart of a module's signature render.
package markdown

import (
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/petar-djukic/codedigest/internal/digest"
	"github.com/petar-djukic/codedigest/pkg/types"
)

// Heading is one document heading. Line is zero-based.
type Heading struct {
	Level int
	Text  string
	Line  int
}

// IsMarkdown reports whether relPath names a markdown file.
func IsMarkdown(relPath string) bool {
	switch strings.ToLower(path.Ext(relPath)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Headings lists the ATX and setext headings of content in document order.
// Headings inside code blocks and empty headings are not reported.
func Headings(content []byte) []Heading {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(content))
	src := digest.NewSourceText(string(content))

	var out []Heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if lines := h.Lines(); lines.Len() > 0 {
			out = append(out, Heading{
				Level: h.Level,
				Text:  headingText(h, content),
				Line:  src.LineOf(lines.At(0).Start),
			})
		}
		return ast.WalkSkipChildren, nil
	})
	return out
}

// Outline renders the source line of every heading, numbered per mode.
func Outline(content string, mode types.NumberMode) string {
	src := digest.NewSourceText(content)
	var b strings.Builder
	for _, h := range Headings([]byte(content)) {
		b.WriteString(src.Render(digest.Span{Lo: h.Line, Hi: h.Line}, mode))
	}
	return b.String()
}

// headingText concatenates the text segments below h, so emphasis and code
// spans contribute their content without markup.
func headingText(h *ast.Heading, content []byte) string {
	var b strings.Builder
	ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			b.Write(t.Segment.Value(content))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
