// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/intrinsic"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/textnorm"
)

// Catalog is the result of parsing an
// intrinsics catalog.
type Catalog struct {
	Source  string              // The name of the catalog source.
	Version string              // Any version declared by the catalog.
	Records []*intrinsic.Record // The records, in document order.
	Stats   Stats
}

// label is a recognised node class.
type label uint8

const (
	labelNone label = iota
	labelInstruction
	labelSignature
	labelRetType
	labelName
	labelParamType
	labelParamName
	labelDetails
	labelDescription
	labelOperation
	labelCPUID
	labelPerformance
)

// classLabel returns the first recognised
// class of n.
func classLabel(n *html.Node) label {
	for _, class := range strings.Fields(attr(n, "class")) {
		switch strings.ToUpper(class) {
		case "INSTRUCTION":
			return labelInstruction
		case "SIGNATURE":
			return labelSignature
		case "RETTYPE":
			return labelRetType
		case "NAME":
			return labelName
		case "PARAM_TYPE":
			return labelParamType
		case "PARAM_NAME":
			return labelParamName
		case "DETAILS":
			return labelDetails
		case "DESCRIPTION":
			return labelDescription
		case "OPERATION":
			return labelOperation
		case "CPUID":
			return labelCPUID
		case "PERFORMANCE":
			return labelPerformance
		}
	}

	return labelNone
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}

	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, got := range strings.Fields(attr(n, "class")) {
		if strings.EqualFold(got, class) {
			return true
		}
	}

	return false
}

// ParseHTML parses the structured-document
// form of an intrinsics catalog.
//
// Each element whose class list includes
// "intrinsic" is one entry. Entries that
// cannot be used are skipped and reported
// to diags. The only errors returned are
// failures to read r.
func ParseHTML(r io.Reader, source string, diags *Diagnostics) (*Catalog, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, Errorf(source, 0, "failed to parse catalog: %v", err)
	}

	c := &Catalog{Source: source}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if c.Version == "" {
				c.Version = strings.TrimSpace(attr(n, "data-version"))
			}

			if hasClass(n, "intrinsic") {
				c.Stats.Entry()
				p := entryParser{source: source, diags: diags, stats: &c.Stats}
				rec := p.parse(n)
				if rec != nil {
					c.Stats.Record()
					c.Records = append(c.Records, rec)
				}

				return
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	walk(doc)

	return c, nil
}

// entryParser builds one record from an
// intrinsic entry.
type entryParser struct {
	source string
	diags  *Diagnostics
	stats  *Stats

	rec          intrinsic.Record
	hasSignature bool
	hasName      bool
	unknownName  string
	description  []string
}

func (p *entryParser) warnf(format string, v ...any) {
	p.diags.Addf(p.source, 0, p.rec.ID, format, v...)
}

func (p *entryParser) parse(n *html.Node) *intrinsic.Record {
	p.rec.ID = entryID(n)
	if p.rec.ID == 0 {
		p.warnf("intrinsic entry has no numeric id")
	}

	p.walk(n, labelNone)

	switch {
	case !p.hasSignature:
		p.stats.Skip()
		p.warnf("skipping intrinsic entry with no signature")
		return nil
	case p.unknownName != "":
		p.stats.UnknownName()
		p.warnf("skipping unknown intrinsic %q", p.unknownName)
		return nil
	case !p.hasName:
		p.stats.Skip()
		p.warnf("skipping intrinsic entry with no name")
		return nil
	}

	// A lone void parameter means the
	// intrinsic takes no arguments.
	if len(p.rec.Params) == 1 && p.rec.Params[0].Type == intrinsic.ParamVoid && p.rec.Params[0].Name == "" {
		p.rec.Params = nil
	}

	p.rec.Description = strings.Join(p.description, " ")
	rec := p.rec

	return &rec
}

// entryID returns the trailing digits of
// the entry's id, such as 1234 for "b1234",
// or 0.
func entryID(n *html.Node) int {
	for _, key := range []string{"id", "data-id"} {
		val := strings.TrimSpace(attr(n, key))
		i := len(val)
		for i > 0 && '0' <= val[i-1] && val[i-1] <= '9' {
			i--
		}

		if i == len(val) {
			continue
		}

		id, err := strconv.Atoi(val[i:])
		if err == nil && id > 0 {
			return id
		}
	}

	return 0
}

func (p *entryParser) walk(n *html.Node, section label) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}

		switch l := classLabel(child); l {
		case labelInstruction:
			p.instruction(textOf(child))
		case labelSignature, labelDetails:
			if l == labelSignature {
				p.hasSignature = true
			}

			p.walk(child, l)
		case labelRetType, labelName, labelParamType, labelParamName:
			if section == labelSignature {
				p.signature(l, textnorm.Normalize(textOf(child)))
			}
		case labelDescription, labelOperation, labelCPUID, labelPerformance:
			if section == labelDetails {
				p.details(l, child)
			}
		default:
			p.walk(child, section)
		}
	}
}

func (p *entryParser) instruction(text string) {
	if p.rec.Instruction != "" {
		return
	}

	text = textnorm.Normalize(text)
	if len(text) > len("instruction:") && strings.EqualFold(text[:len("instruction:")], "instruction:") {
		text = strings.TrimSpace(text[len("instruction:"):])
	}

	mnemonic, note, _ := strings.Cut(text, " ")
	p.rec.Instruction = strings.ToUpper(mnemonic)
	p.rec.InstructionNote = strings.TrimSpace(note)
}

func (p *entryParser) signature(l label, text string) {
	switch l {
	case labelRetType:
		typ, ok := intrinsic.ParseReturnType(text)
		if !ok {
			p.stats.UnknownType()
			p.warnf("unknown return type %q", text)
		}

		p.rec.ReturnType = typ
	case labelName:
		if p.hasName || p.unknownName != "" {
			return
		}

		name, ok := intrinsic.ParseIntrinsic(text)
		if !ok {
			p.unknownName = text
			return
		}

		p.hasName = true
		p.rec.Name = name
	case labelParamType:
		typ, ok := intrinsic.ParseParamType(text)
		if !ok {
			p.stats.UnknownType()
			p.warnf("unknown parameter type %q", text)
		}

		p.rec.Params = append(p.rec.Params, intrinsic.Param{Type: typ})
	case labelParamName:
		if len(p.rec.Params) == 0 || p.rec.Params[len(p.rec.Params)-1].Name != "" {
			p.rec.Params = append(p.rec.Params, intrinsic.Param{Type: intrinsic.ParamUnknown})
		}

		p.rec.Params[len(p.rec.Params)-1].Name = text
	}
}

func (p *entryParser) details(l label, n *html.Node) {
	switch l {
	case labelDescription:
		if text := textnorm.Normalize(textOf(n)); text != "" {
			p.description = append(p.description, text)
		}
	case labelOperation:
		p.rec.Operation = textnorm.NormalizeLines(textOf(n))
	case labelCPUID:
		text := strings.ReplaceAll(textnorm.Normalize(textOf(n)), "/", ",")
		features, unknown := intrinsic.ParseFeatures(text)
		for _, tok := range unknown {
			p.stats.UnknownFeature()
			p.warnf("unknown CPUID feature %q", tok)
		}

		p.rec.Features |= features
	case labelPerformance:
		p.performance(n)
	}
}

// performance reads the rows of a
// performance table. Header rows, and
// rows with fewer than three cells, are
// ignored.
func (p *entryParser) performance(n *html.Node) {
	var rows func(n *html.Node)
	rows = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}

			if child.Data != "tr" {
				rows(child)
				continue
			}

			var cells []string
			for cell := child.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type == html.ElementNode && cell.Data == "td" {
					cells = append(cells, textnorm.Normalize(textOf(cell)))
				}
			}

			if len(cells) < 3 {
				continue
			}

			p.rec.Performance = append(p.rec.Performance, intrinsic.Performance{
				Arch:       cells[0],
				Latency:    cells[1],
				Throughput: cells[2],
			})
		}
	}

	rows(n)
}

// textOf returns the text content of n.
// Line break elements become newlines.
func textOf(n *html.Node) string {
	var b strings.Builder
	var text func(n *html.Node)
	text = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "br" {
				b.WriteByte('\n')
				return
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			text(child)
		}
	}

	text(n)

	return b.String()
}

// String summarises the catalog.
func (c *Catalog) String() string {
	return fmt.Sprintf("%s: %d records (version %q)", c.Source, len(c.Records), c.Version)
}
