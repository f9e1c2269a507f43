// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package format renders intrinsic records as the
// short summaries shown in completion lists and the
// longer documentation shown on lookup.
package format

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/intrinsic"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/textnorm"
)

// Features renders a feature set, such as
// "SSE4.1, AVX". FeatureNone renders as the
// empty string.
func Features(f intrinsic.CpuFeature) string {
	return f.Join(", ")
}

// ShortSummary returns a single line in the
// form "name [F1,F2] - description", using
// at most max runes. A max of zero or less
// means no limit.
//
// If the line is too long it is truncated
// and ends with an ellipsis. The feature
// list is never cut: if it does not fit,
// it is left out entirely.
func ShortSummary(name string, features intrinsic.CpuFeature, description string, max int) string {
	head := name
	if features != intrinsic.FeatureNone {
		head += " [" + features.Join(",") + "]"
	}

	full := withDescription(head, description)
	if max <= 0 || utf8.RuneCountInString(full) <= max {
		return full
	}

	if utf8.RuneCountInString(head)+len(textnorm.Ellipsis) <= max {
		return truncate(full, max)
	}

	// Drop the feature list. Something has
	// now been left out, so the result always
	// ends in an ellipsis.
	if utf8.RuneCountInString(name)+len(textnorm.Ellipsis) <= max {
		return truncate(withDescription(name, description), max)
	}

	if max <= len(textnorm.Ellipsis) {
		return textnorm.Ellipsis[:max]
	}

	return truncate(name, max)
}

func withDescription(head, description string) string {
	if description == "" {
		return head
	}

	return head + " - " + description
}

// truncate shortens s to max runes, ending
// in an ellipsis, without leaving a dangling
// separator before the ellipsis. The ellipsis
// is added even if s already fits. max must
// exceed the length of the ellipsis.
func truncate(s string, max int) string {
	keep := max - len(textnorm.Ellipsis)
	for i := range s {
		if keep == 0 {
			s = s[:i]
			break
		}

		keep--
	}

	return strings.TrimRight(s, " -") + textnorm.Ellipsis
}

// Signature renders the C declaration of
// rec, such as
//
//	__m128 _mm_add_ps(__m128 a, __m128 b)
func Signature(rec *intrinsic.Record) string {
	var b strings.Builder
	b.WriteString(rec.ReturnType.String())
	b.WriteByte(' ')
	b.WriteString(rec.Name.String())
	b.WriteByte('(')
	for i, param := range rec.Params {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(param.Type.String())
		if param.Name != "" {
			b.WriteByte(' ')
			b.WriteString(param.Name)
		}
	}

	b.WriteByte(')')

	return b.String()
}

// Documentation renders the full documentation
// of rec, with the description wrapped to
// width runes.
//
// The documentation starts with the signature
// and required features, followed by the
// description, the instruction, and the optional
// operation and performance sections.
func Documentation(rec *intrinsic.Record, width int) string {
	var buf bytes.Buffer
	Fprint(&buf, rec, width)

	return strings.TrimRight(buf.String(), "\n")
}

// Fprint writes the documentation of rec
// to w. See Documentation.
func Fprint(w io.Writer, rec *intrinsic.Record, width int) error {
	var buf bytes.Buffer
	buf.WriteString(Signature(rec))
	if rec.Features != intrinsic.FeatureNone {
		buf.WriteString("  [")
		buf.WriteString(Features(rec.Features))
		buf.WriteByte(']')
	}

	buf.WriteByte('\n')

	if rec.Description != "" {
		buf.WriteByte('\n')
		for _, line := range textnorm.Wrap(rec.Description, width) {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}

	if rec.Instruction != "" {
		buf.WriteString("\nInstruction: ")
		buf.WriteString(rec.Instruction)
		if rec.InstructionNote != "" {
			buf.WriteByte(' ')
			buf.WriteString(rec.InstructionNote)
		}

		buf.WriteByte('\n')
	}

	if rec.Operation != "" {
		buf.WriteString("\nOperation:\n")
		buf.WriteString(rec.Operation)
		buf.WriteByte('\n')
	}

	if len(rec.Performance) != 0 {
		buf.WriteString("\nPerformance:\n")
		writePerformance(&buf, rec.Performance)
	}

	_, err := w.Write(buf.Bytes())

	return err
}

// writePerformance renders a performance
// table as fixed-width columns under a
// header row.
func writePerformance(buf *bytes.Buffer, rows []intrinsic.Performance) {
	var table bytes.Buffer
	tw := tablewriter.NewWriter(&table)
	tw.SetHeader([]string{"Architecture", "Latency", "Throughput"})
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetBorder(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		tw.Append([]string{row.Arch, row.Latency, row.Throughput})
	}

	tw.Render()

	// The table pads every cell, including
	// the last.
	for _, line := range strings.Split(strings.TrimRight(table.String(), "\n"), "\n") {
		buf.WriteString(strings.TrimRight(line, " "))
		buf.WriteByte('\n')
	}
}
