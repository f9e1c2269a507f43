// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package catalog

import (
	"bufio"
	"io"
	"strings"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/intrinsic"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/textnorm"
)

// DescriptionRow is a mnemonic-level row
// of a tab-delimited catalog.
type DescriptionRow struct {
	Line        int
	Mnemonic    string // Upper case.
	Description string
	Reference   string // The documentation reference.
}

// SignatureRow is a signature-level row
// of a tab-delimited catalog.
type SignatureRow struct {
	Line          int
	Mnemonic      string // Upper case.
	Operands      string // The operand string, eg "xmm1, xmm2/m128".
	Arch          string // The architecture string, as written.
	Features      intrinsic.CpuFeature
	SignatureDoc  string
	Documentation string
}

// Equal returns whether r and other have
// the same content, ignoring their line
// numbers.
func (r SignatureRow) Equal(other SignatureRow) bool {
	r.Line = 0
	other.Line = 0
	return r == other
}

// MnemonicCatalog is the result of parsing
// a tab-delimited catalog.
type MnemonicCatalog struct {
	Source       string
	Descriptions []DescriptionRow
	Signatures   []SignatureRow
	Stats        Stats
}

// maxLineLength is the longest line a
// tab-delimited catalog may contain.
const maxLineLength = 1 << 20

// ParseTSV parses the tab-delimited form
// of a catalog.
//
// Blank lines and lines starting with ';'
// are ignored. A line with four columns
// is a DescriptionRow (the first column is
// ignored). A line with five or six columns
// is a SignatureRow (any sixth column is
// ignored). Other lines are skipped and
// reported to diags.
func ParseTSV(r io.Reader, source string, diags *Diagnostics) (*MnemonicCatalog, error) {
	c := &MnemonicCatalog{Source: source}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSuffix(s.Text(), "\r")
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}

		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}

		cols := strings.Split(text, "\t")
		for i, col := range cols {
			cols[i] = textnorm.Normalize(col)
		}

		switch len(cols) {
		case 4:
			if cols[1] == "" {
				c.Stats.Skip()
				diags.Addf(source, line, 0, "description row has no mnemonic")
				continue
			}

			c.Stats.DescriptionRow()
			c.Descriptions = append(c.Descriptions, DescriptionRow{
				Line:        line,
				Mnemonic:    strings.ToUpper(cols[1]),
				Description: cols[2],
				Reference:   cols[3],
			})
		case 5, 6:
			if cols[0] == "" {
				c.Stats.Skip()
				diags.Addf(source, line, 0, "signature row has no mnemonic")
				continue
			}

			c.Stats.SignatureRow()
			c.Signatures = append(c.Signatures, SignatureRow{
				Line:          line,
				Mnemonic:      strings.ToUpper(cols[0]),
				Operands:      cols[1],
				Arch:          cols[2],
				Features:      archFeatures(cols[2]),
				SignatureDoc:  cols[3],
				Documentation: cols[4],
			})
		default:
			c.Stats.Skip()
			diags.Addf(source, line, 0, "malformed line: got %d columns, want 4, 5, or 6", len(cols))
		}
	}

	if err := s.Err(); err != nil {
		return nil, Errorf(source, line+1, "failed to read catalog: %v", err)
	}

	return c, nil
}

// archFeatures parses an architecture
// string such as "X64,SSE2" or "IA32 AVX".
// Tokens that are not feature flags, such
// as "X64", are ignored.
func archFeatures(arch string) intrinsic.CpuFeature {
	var set intrinsic.CpuFeature
	tokens := strings.FieldsFunc(arch, func(r rune) bool {
		return r == ',' || r == ' ' || r == '/' || r == '|'
	})

	for _, tok := range tokens {
		if f, ok := intrinsic.ParseFeature(tok); ok {
			set |= f
		}
	}

	return set
}
