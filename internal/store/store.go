// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package store holds the queryable index of
// intrinsics and instruction mnemonics built
// from the catalogs.
//
// The index is never patched incrementally.
// Each load builds a complete replacement off
// to the side and publishes it in one step, so
// readers always see either the old index or
// the new one. The only write path after a load
// is OverrideDescription.
package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/catalog"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/intrinsic"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/logging"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/textnorm"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for
// diagnostics and load failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.OrDiscard(logger)
	}
}

// Store is the index of intrinsic records
// and mnemonics. It is safe for concurrent
// use.
type Store struct {
	logger *slog.Logger

	mu        sync.RWMutex
	idx       *index
	mnemonics *Mnemonics
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		logger:    logging.Discard(),
		idx:       newIndex("", ""),
		mnemonics: emptyMnemonics(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.idx.diags = catalog.NewDiagnostics(s.logger)

	return s
}

// index is one published generation of
// the intrinsic data. Its maps are only
// modified by OverrideDescription, under
// the store's write lock.
type index struct {
	source  string
	version string

	names        []intrinsic.Intrinsic // In order of first appearance.
	variants     map[intrinsic.Intrinsic][]*intrinsic.Record
	features     map[intrinsic.Intrinsic]intrinsic.CpuFeature
	descriptions map[intrinsic.Intrinsic]string // Overrides.
	byMnemonic   map[string][]intrinsic.Intrinsic

	diags *catalog.Diagnostics
	stats catalog.Stats
}

func newIndex(source, version string) *index {
	return &index{
		source:       source,
		version:      version,
		variants:     make(map[intrinsic.Intrinsic][]*intrinsic.Record),
		features:     make(map[intrinsic.Intrinsic]intrinsic.CpuFeature),
		descriptions: make(map[intrinsic.Intrinsic]string),
		byMnemonic:   make(map[string][]intrinsic.Intrinsic),
	}
}

// sameContent returns whether a and b are
// structurally equal, ignoring their ids.
func sameContent(a, b *intrinsic.Record) bool {
	c := *b
	c.ID = a.ID
	return a.Equal(&c)
}

// add inserts rec, replacing any earlier
// record with the same content.
func (idx *index) add(rec *intrinsic.Record) {
	name := rec.Name
	list, seen := idx.variants[name]
	if !seen {
		idx.names = append(idx.names, name)
	}

	idx.features[name] |= rec.Features

	replaced := false
	for i, old := range list {
		if sameContent(old, rec) {
			idx.diags.Addf(idx.source, 0, rec.ID, "duplicate intrinsic %s replaces entry %d", name, old.ID)
			list[i] = rec
			replaced = true
			break
		}
	}

	if !replaced {
		list = append(list, rec)
	}

	idx.variants[name] = list

	if rec.Instruction == "" {
		return
	}

	names := idx.byMnemonic[rec.Instruction]
	for _, got := range names {
		if got == name {
			return
		}
	}

	idx.byMnemonic[rec.Instruction] = append(names, name)
}

func (s *Store) current() *index {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.idx
}

// Load replaces the store's intrinsics with
// those in the catalog read from r. Any
// description overrides are discarded.
//
// Malformed entries are skipped and reported
// as diagnostics. An error is only returned
// if r cannot be read or ctx is cancelled,
// in which case the store is unchanged.
func (s *Store) Load(ctx context.Context, r io.Reader, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	diags := catalog.NewDiagnostics(s.logger)
	cat, err := catalog.ParseHTML(r, source, diags)
	if err != nil {
		s.logger.Error("failed to load intrinsics catalog", "source", source, "error", err)
		return err
	}

	idx := newIndex(source, cat.Version)
	idx.diags = diags
	idx.stats = cat.Stats
	for _, rec := range cat.Records {
		idx.add(rec)
	}

	// The parse cannot be interrupted, but
	// a cancelled load is not published.
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()

	s.logger.Info("loaded intrinsics catalog",
		"source", source,
		"version", cat.Version,
		"intrinsics", len(idx.names),
		"records", len(cat.Records),
		"diagnostics", diags.Len())

	return nil
}

// LoadFile loads the catalog at path. Files
// compressed with gzip or zstd are read
// transparently. A tab-delimited file is
// loaded as the mnemonic table.
//
// If the file cannot be read, the error is
// logged and returned, and the store is
// unchanged.
func (s *Store) LoadFile(ctx context.Context, path string) error {
	if catalog.FormatOf(path) == catalog.FormatTSV {
		return s.LoadMnemonicFiles(ctx, []string{path}, nil)
	}

	rc, err := catalog.Open(path)
	if err != nil {
		s.logger.Error("failed to open intrinsics catalog", "source", path, "error", err)
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	defer rc.Close()

	return s.Load(ctx, rc, path)
}

// HasEntry returns whether the store has
// at least one record for name.
func (s *Store) HasEntry(name intrinsic.Intrinsic) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.idx
	return len(idx.variants[name]) != 0
}

// Variants returns the records for name, in
// catalog order. The result is empty if name
// is unknown. The records must not be
// modified.
func (s *Store) Variants(name intrinsic.Intrinsic) []*intrinsic.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.idx
	list := idx.variants[name]
	if len(list) == 0 {
		return nil
	}

	return append([]*intrinsic.Record(nil), list...)
}

// RequiredFeatures returns the union of the
// features required by name's records.
func (s *Store) RequiredFeatures(name intrinsic.Intrinsic) intrinsic.CpuFeature {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.idx
	return idx.features[name]
}

// Description returns the description of
// name. An override takes precedence over
// the descriptions in the catalog.
func (s *Store) Description(name intrinsic.Intrinsic) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.idx
	if text, ok := idx.descriptions[name]; ok {
		return text
	}

	for _, rec := range idx.variants[name] {
		if rec.Description != "" {
			return rec.Description
		}
	}

	return ""
}

// OverrideDescription replaces the description
// of every record for name with text. The
// override also applies to any records for
// name loaded later from the same index, but
// is discarded by the next Load.
func (s *Store) OverrideDescription(name intrinsic.Intrinsic, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.idx
	idx.descriptions[name] = text

	// Published records are immutable, so
	// the variants are replaced with copies.
	old := idx.variants[name]
	if len(old) == 0 {
		return
	}

	list := make([]*intrinsic.Record, len(old))
	for i, rec := range old {
		rec = rec.Clone()
		rec.Description = text
		list[i] = rec
	}

	idx.variants[name] = list
}

// DocumentationReference returns the
// identifier of name's documentation, or
// the empty string.
func (s *Store) DocumentationReference(name intrinsic.Intrinsic) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.idx
	for _, rec := range idx.variants[name] {
		if ref := rec.Reference(); ref != "" {
			return ref
		}
	}

	return ""
}

// IntrinsicsFor returns the intrinsics that
// lower to the instruction mnemonic, in the
// order they appear in the catalog.
func (s *Store) IntrinsicsFor(mnemonic string) []intrinsic.Intrinsic {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.idx
	list := idx.byMnemonic[strings.ToUpper(strings.TrimSpace(mnemonic))]
	if len(list) == 0 {
		return nil
	}

	return append([]intrinsic.Intrinsic(nil), list...)
}

// Names returns every intrinsic with at
// least one record, in the order they first
// appear in the catalog.
func (s *Store) Names() []intrinsic.Intrinsic {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.idx
	return append([]intrinsic.Intrinsic(nil), idx.names...)
}

// Source returns the name of the loaded
// intrinsics catalog.
func (s *Store) Source() string {
	return s.current().source
}

// Version returns the version declared by
// the loaded intrinsics catalog, if any.
func (s *Store) Version() string {
	return s.current().version
}

// Diagnostics returns the diagnostics from
// loading the current intrinsics catalog,
// its description overrides, and the
// mnemonic table.
func (s *Store) Diagnostics() []catalog.Diagnostic {
	s.mu.RLock()
	idx, m := s.idx, s.mnemonics
	s.mu.RUnlock()

	list := idx.diags.List()
	list = append(list, m.diags...)

	return list
}

// Stats returns the combined parse
// statistics of the current catalogs.
func (s *Store) Stats() catalog.Stats {
	s.mu.RLock()
	idx, m := s.idx, s.mnemonics
	s.mu.RUnlock()

	stats := idx.stats
	stats.Add(m.stats)

	return stats
}

// LoadDescriptionOverrides applies the
// handwritten descriptions read from r.
// Each line holds an intrinsic name and its
// description, separated by a tab. Blank
// lines and lines starting with ';' are
// ignored. Later lines replace earlier ones.
//
// LoadDescriptionOverrides returns the number
// of overrides applied. Lines that cannot be
// used are reported as diagnostics.
func (s *Store) LoadDescriptionOverrides(r io.Reader, source string) (int, error) {
	diags := s.current().diags

	applied := 0
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSuffix(sc.Text(), "\r")
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}

		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}

		key, description, ok := strings.Cut(text, "\t")
		if !ok {
			diags.Addf(source, line, 0, "malformed override: no tab after intrinsic name")
			continue
		}

		name, ok := intrinsic.ParseIntrinsic(key)
		if !ok {
			diags.Addf(source, line, 0, "override for unknown intrinsic %q", textnorm.Normalize(key))
			continue
		}

		s.OverrideDescription(name, textnorm.Normalize(description))
		applied++
	}

	if err := sc.Err(); err != nil {
		err = catalog.Errorf(source, line+1, "failed to read overrides: %v", err)
		s.logger.Error("failed to load description overrides", "source", source, "error", err)
		return applied, err
	}

	return applied, nil
}

// LoadDescriptionOverridesFile is like
// LoadDescriptionOverrides, reading from
// the file at path.
func (s *Store) LoadDescriptionOverridesFile(path string) (int, error) {
	rc, err := catalog.Open(path)
	if err != nil {
		s.logger.Error("failed to open description overrides", "source", path, "error", err)
		return 0, fmt.Errorf("failed to load overrides: %w", err)
	}

	n, err := s.LoadDescriptionOverrides(rc, path)
	if cerr := rc.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to load overrides: %w", cerr)
	}

	return n, err
}
