// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package textnorm canonicalises the free text found in intrinsic
// catalogs and lays it out for display.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "..."

// Collapse replaces each run of white
// space in s with a single space and
// trims the ends.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalize applies Unicode compatibility
// normalisation (NFKC) to s and collapses
// its white space. Non-breaking spaces and
// similar catalog artefacts become plain
// spaces.
func Normalize(s string) string {
	return Collapse(norm.NFKC.String(s))
}

// NormalizeLines is like Normalize, but
// keeps line breaks. Trailing space is
// removed from each line and trailing
// blank lines are dropped.
func NormalizeLines(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}

	return strings.Join(lines, "\n")
}

// Canonical returns the case-folded,
// normalised form of s, suitable for use
// as a lookup key.
func Canonical(s string) string {
	return strings.ToUpper(Normalize(s))
}

// Truncate shortens s to at most max
// runes. If s is shortened, it ends
// with Ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= max {
		return s
	}

	if max <= len(Ellipsis) {
		return Ellipsis[:max]
	}

	return strings.TrimRightFunc(prefix(s, max-len(Ellipsis)), unicode.IsSpace) + Ellipsis
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}

		n--
	}

	return s
}
