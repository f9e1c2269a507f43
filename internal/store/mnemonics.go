// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/catalog"
)

// Mnemonic is everything known about one
// instruction mnemonic.
type Mnemonic struct {
	Name        string // Upper case.
	Description string
	Reference   string
	Signatures  []catalog.SignatureRow
}

func (m *Mnemonic) clone() *Mnemonic {
	c := *m
	c.Signatures = append([]catalog.SignatureRow(nil), m.Signatures...)
	return &c
}

// Mnemonics is a read-only table of
// instruction mnemonics. The zero value
// and nil are both empty tables.
type Mnemonics struct {
	entries map[string]*Mnemonic
	order   []string // In order of first appearance.
	sources []string
	diags   []catalog.Diagnostic
	stats   catalog.Stats
}

func emptyMnemonics() *Mnemonics {
	return &Mnemonics{entries: make(map[string]*Mnemonic)}
}

func (t *Mnemonics) get(mnemonic string) *Mnemonic {
	if t == nil {
		return nil
	}

	return t.entries[strings.ToUpper(strings.TrimSpace(mnemonic))]
}

// Len returns the number of mnemonics in
// the table.
func (t *Mnemonics) Len() int {
	if t == nil {
		return 0
	}

	return len(t.entries)
}

// Has returns whether the table includes
// the mnemonic.
func (t *Mnemonics) Has(mnemonic string) bool {
	return t.get(mnemonic) != nil
}

// Description returns the description of
// the mnemonic, or the empty string.
func (t *Mnemonics) Description(mnemonic string) string {
	if m := t.get(mnemonic); m != nil {
		return m.Description
	}

	return ""
}

// Reference returns the documentation
// reference of the mnemonic, or the empty
// string.
func (t *Mnemonics) Reference(mnemonic string) string {
	if m := t.get(mnemonic); m != nil {
		return m.Reference
	}

	return ""
}

// Signatures returns the signatures of the
// mnemonic, in load order.
func (t *Mnemonics) Signatures(mnemonic string) []catalog.SignatureRow {
	if m := t.get(mnemonic); m != nil && len(m.Signatures) != 0 {
		return append([]catalog.SignatureRow(nil), m.Signatures...)
	}

	return nil
}

// Lookup returns a copy of the mnemonic's
// entry.
func (t *Mnemonics) Lookup(mnemonic string) (Mnemonic, bool) {
	m := t.get(mnemonic)
	if m == nil {
		return Mnemonic{}, false
	}

	return *m.clone(), true
}

// Names returns the mnemonics in the table,
// sorted.
func (t *Mnemonics) Names() []string {
	if t == nil {
		return nil
	}

	names := append([]string(nil), t.order...)
	sort.Strings(names)

	return names
}

// Sources returns the files the table was
// loaded from, in load order.
func (t *Mnemonics) Sources() []string {
	if t == nil {
		return nil
	}

	return append([]string(nil), t.sources...)
}

// clone returns a copy of t that can be
// modified without affecting t.
func (t *Mnemonics) clone() *Mnemonics {
	c := &Mnemonics{
		entries: make(map[string]*Mnemonic, len(t.entries)),
		order:   append([]string(nil), t.order...),
		sources: append([]string(nil), t.sources...),
		diags:   append([]catalog.Diagnostic(nil), t.diags...),
		stats:   t.stats,
	}

	for name, m := range t.entries {
		c.entries[name] = m.clone()
	}

	return c
}

func (t *Mnemonics) entry(name string) *Mnemonic {
	m := t.entries[name]
	if m == nil {
		m = &Mnemonic{Name: name}
		t.entries[name] = m
		t.order = append(t.order, name)
	}

	return m
}

// apply adds the rows of c to t.
//
// In a regular load, the first description
// and reference of each mnemonic are kept,
// and a signature identical to an earlier
// one replaces it. In an override load, every
// description and reference replaces the
// earlier value, as does any signature with
// the same operands.
func (t *Mnemonics) apply(c *catalog.MnemonicCatalog, override bool, diags *catalog.Diagnostics) {
	t.sources = append(t.sources, c.Source)
	t.stats.Add(c.Stats)

	for _, row := range c.Descriptions {
		m := t.entry(row.Mnemonic)
		if override || m.Description == "" {
			m.Description = row.Description
		}

		if override || m.Reference == "" {
			m.Reference = row.Reference
		}
	}

	for _, row := range c.Signatures {
		m := t.entry(row.Mnemonic)
		replaced := false
		for i, old := range m.Signatures {
			if override && old.Operands == row.Operands || !override && old.Equal(row) {
				if !override {
					diags.Addf(c.Source, row.Line, 0, "duplicate signature for %s %s replaces line %d", row.Mnemonic, row.Operands, old.Line)
				}

				m.Signatures[i] = row
				replaced = true
				break
			}
		}

		if !replaced {
			m.Signatures = append(m.Signatures, row)
		}
	}
}

// Mnemonics returns the current mnemonic
// table. The table is never modified, so
// it remains valid after later loads.
func (s *Store) Mnemonics() *Mnemonics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.mnemonics
}

// LoadMnemonics adds the tab-delimited
// catalog read from r to the mnemonic
// table. If override is set, the catalog's
// entries replace any earlier values.
//
// Malformed lines are skipped and reported
// as diagnostics. If r cannot be read, the
// table is unchanged.
func (s *Store) LoadMnemonics(r io.Reader, source string, override bool) error {
	diags := catalog.NewDiagnostics(s.logger)
	c, err := catalog.ParseTSV(r, source, diags)
	if err != nil {
		s.logger.Error("failed to load mnemonic catalog", "source", source, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.mnemonics.clone()
	t.apply(c, override, diags)
	t.diags = append(t.diags, diags.List()...)
	s.mnemonics = t

	return nil
}

// LoadMnemonicFiles replaces the mnemonic
// table with one built from the files in
// regular, followed by those in overrides.
// The files are read concurrently and
// applied in order.
//
// A file that cannot be read is reported
// and skipped, and its error is included
// in the result. The table is still
// replaced with the data from the other
// files. If no file can be read, or ctx
// is cancelled, the table is unchanged.
func (s *Store) LoadMnemonicFiles(ctx context.Context, regular, overrides []string) error {
	paths := make([]string, 0, len(regular)+len(overrides))
	paths = append(paths, regular...)
	paths = append(paths, overrides...)
	files, err := catalog.ReadFiles(ctx, paths)
	if err != nil {
		return err
	}

	diags := catalog.NewDiagnostics(s.logger)
	t := emptyMnemonics()
	var errs []error
	for i, f := range files {
		if f.Err != nil {
			s.logger.Error("failed to read mnemonic catalog", "source", f.Path, "error", f.Err)
			errs = append(errs, f.Err)
			continue
		}

		c, err := catalog.ParseTSV(bytes.NewReader(f.Data), f.Path, diags)
		if err != nil {
			s.logger.Error("failed to load mnemonic catalog", "source", f.Path, "error", err)
			errs = append(errs, err)
			continue
		}

		t.apply(c, i >= len(regular), diags)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if len(paths) != 0 && len(errs) == len(paths) {
		return fmt.Errorf("failed to load mnemonic catalogs: %w", errors.Join(errs...))
	}

	t.diags = diags.List()

	s.mu.Lock()
	s.mnemonics = t
	s.mu.Unlock()

	s.logger.Info("loaded mnemonic catalogs",
		"files", len(paths)-len(errs),
		"mnemonics", t.Len(),
		"diagnostics", len(t.diags))

	if len(errs) != 0 {
		return fmt.Errorf("failed to load mnemonic catalogs: %w", errors.Join(errs...))
	}

	return nil
}
