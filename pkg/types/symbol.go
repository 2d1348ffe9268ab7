// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across codedigest packages.
package types

import (
	"fmt"
	"strings"
)

// DeclKind identifies the category of an indexed declaration.
type DeclKind int

const (
	Import     DeclKind = iota // import or from-import statement
	Assignment                 // module or class constant
	Function                   // function or method definition
	Class                      // class definition
)

// String returns the human-readable name of the declaration kind.
func (k DeclKind) String() string {
	switch k {
	case Import:
		return "Import"
	case Assignment:
		return "Assignment"
	case Function:
		return "Function"
	case Class:
		return "Class"
	default:
		return "Unknown"
	}
}

// DetailLevel controls how much of a declaration is rendered. Levels are
// ordered from least to most detailed.
type DetailLevel int

const (
	Signature DetailLevel = iota // header lines only
	Minimal                      // header plus attached comments
	Moderate                     // Minimal, plus class members at Moderate
	Full                         // original text verbatim
)

// String returns the lowercase name used in flags and config files.
func (l DetailLevel) String() string {
	switch l {
	case Signature:
		return "signature"
	case Minimal:
		return "minimal"
	case Moderate:
		return "moderate"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("DetailLevel(%d)", int(l))
	}
}

// ParseDetailLevel converts a level name (case-insensitive) to a DetailLevel.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "signature":
		return Signature, nil
	case "minimal":
		return Minimal, nil
	case "moderate":
		return Moderate, nil
	case "full":
		return Full, nil
	default:
		return Signature, fmt.Errorf("unknown detail level %q", s)
	}
}

// NumberMode selects whether rendered lines carry their original line number.
type NumberMode int

const (
	NumbersEnabled NumberMode = iota
	NumbersDisabled
)

// String returns "enabled" or "disabled".
func (m NumberMode) String() string {
	if m == NumbersDisabled {
		return "disabled"
	}
	return "enabled"
}

// NumberModeOf maps a boolean flag to a NumberMode.
func NumberModeOf(enabled bool) NumberMode {
	if enabled {
		return NumbersEnabled
	}
	return NumbersDisabled
}
