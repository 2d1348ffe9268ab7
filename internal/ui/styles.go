// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ui styles the diagnostics the CLI writes to the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color modes accepted by ColorEnabled.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Styles holds the renderers for CLI diagnostics.
type Styles struct {
	Error      lipgloss.Style
	Name       lipgloss.Style
	Suggestion lipgloss.Style
	Dim        lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when colorEnabled is
// false.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &Styles{Error: plain, Name: plain, Suggestion: plain, Dim: plain}
	}
	return &Styles{
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Name:       lipgloss.NewStyle().Bold(true),
		Suggestion: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Italic(true),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// ColorEnabled resolves mode for writer. In auto mode color is used only
// when writer is a terminal and NO_COLOR is unset.
func ColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

// Miss reports a lookup that found nothing, with the closest names if any.
func (s *Styles) Miss(w io.Writer, kind, name string, suggestions []string) {
	fmt.Fprintf(w, "%s %s %s\n",
		s.Error.Render(kind),
		s.Name.Render(fmt.Sprintf("%q", name)),
		s.Dim.Render("not found"))
	if len(suggestions) == 0 {
		return
	}
	styled := make([]string, len(suggestions))
	for i, sug := range suggestions {
		styled[i] = s.Suggestion.Render(sug)
	}
	fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(styled, ", "))
}
