// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package textnorm

import (
	"strings"
	"unicode/utf8"
)

// token is an unbreakable run of text.
type token struct {
	text  string
	space bool // Preceded by white space.
}

// isBreakAfter returns whether a line
// may end after r, even if no white
// space follows.
func isBreakAfter(r rune) bool {
	switch r {
	case ',', ';', ':', '.', '!', '?', ')', ']', '/':
		return true
	}

	return false
}

// tokenize splits a paragraph into the
// pieces between break opportunities.
func tokenize(para string) []token {
	var out []token
	for _, word := range strings.Fields(para) {
		space := true
		start := 0
		for i, r := range word {
			end := i + utf8.RuneLen(r)
			if isBreakAfter(r) && end < len(word) {
				out = append(out, token{text: word[start:end], space: space})
				space = false
				start = end
			}
		}

		out = append(out, token{text: word[start:], space: space})
	}

	return out
}

// Wrap lays s out in lines of at most
// width runes. Lines break at white
// space, or after punctuation such as a
// comma or full stop. A single piece of
// text longer than width is broken at
// exactly width runes.
//
// Line breaks in s are kept. If width
// is not positive, s is only split into
// its existing lines.
func Wrap(s string, width int) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if width <= 0 {
			lines = append(lines, Collapse(para))
			continue
		}

		lines = append(lines, wrapParagraph(para, width)...)
	}

	return lines
}

func wrapParagraph(para string, width int) []string {
	tokens := tokenize(para)
	if len(tokens) == 0 {
		return []string{""}
	}

	var lines []string
	var line strings.Builder
	lineLen := 0
	for _, tok := range tokens {
		n := utf8.RuneCountInString(tok.text)
		sep := 0
		if tok.space && lineLen > 0 {
			sep = 1
		}

		if lineLen+sep+n <= width {
			if sep > 0 {
				line.WriteByte(' ')
			}

			line.WriteString(tok.text)
			lineLen += sep + n
			continue
		}

		if lineLen > 0 {
			lines = append(lines, line.String())
			line.Reset()
			lineLen = 0
		}

		text := tok.text
		for n > width {
			head := prefix(text, width)
			lines = append(lines, head)
			text = text[len(head):]
			n -= width
		}

		line.WriteString(text)
		lineLen = n
	}

	if lineLen > 0 {
		lines = append(lines, line.String())
	}

	return lines
}
