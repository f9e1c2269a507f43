// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package session answers the editor-facing queries
// (completion, quick info, and signature help) for one
// set of user settings over an intrinsic store.
package session

import (
	"sort"
	"strings"
	"sync"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/compat"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/format"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/intrinsic"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/store"
)

// Settings are the user's choices.
type Settings struct {
	Enabled      intrinsic.CpuFeature // The enabled CPU features.
	HideMMX      bool                 // Hide intrinsics that use MMX registers.
	SummaryWidth int                  // Maximum runes in a completion summary, or 0.
	WrapWidth    int                  // Wrap width for documentation, or 0.
}

// Completion is one entry of a completion
// list.
type Completion struct {
	Name     intrinsic.Intrinsic
	Features intrinsic.CpuFeature // Required by any variant.
	Summary  string
}

// Session combines a store with the user's
// settings. It is safe for concurrent use.
type Session struct {
	store    *store.Store
	settings Settings
	filter   compat.Filter

	mu    sync.RWMutex
	index []Completion // Sorted by name.
}

// New returns a session over st. The
// completion index is built from the
// store's current contents.
func New(st *store.Store, settings Settings) *Session {
	s := &Session{
		store:    st,
		settings: settings,
		filter: compat.Filter{
			Enabled: settings.Enabled,
			HideMMX: settings.HideMMX,
		},
	}

	s.Refresh()

	return s
}

// Settings returns the session's settings.
func (s *Session) Settings() Settings {
	return s.settings
}

// Refresh rebuilds the completion index. It
// must be called after the store is reloaded
// or its descriptions are overridden.
func (s *Session) Refresh() {
	names := s.store.Names()
	index := make([]Completion, 0, len(names))
	for _, name := range names {
		features := s.store.RequiredFeatures(name)
		index = append(index, Completion{
			Name:     name,
			Features: features,
			Summary:  format.ShortSummary(name.String(), features, s.store.Description(name), s.settings.SummaryWidth),
		})
	}

	sort.Slice(index, func(i, j int) bool {
		return index[i].Name.String() < index[j].Name.String()
	})

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()
}

// Completions returns the intrinsics whose
// names start with prefix, ignoring case,
// that should be offered under the session's
// settings. The results are sorted by name.
func (s *Session) Completions(prefix string) []Completion {
	prefix = strings.ToLower(strings.TrimSpace(prefix))

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := sort.Search(len(s.index), func(i int) bool {
		return s.index[i].Name.String() >= prefix
	})

	var out []Completion
	for _, c := range s.index[start:] {
		if !strings.HasPrefix(c.Name.String(), prefix) {
			break
		}

		if s.filter.Visible(c.Name, c.Features) {
			out = append(out, c)
		}
	}

	return out
}

// QuickInfo returns the documentation of
// every variant of the named intrinsic. It
// returns false if the store has no record
// of the intrinsic.
func (s *Session) QuickInfo(name string) (string, bool) {
	x, ok := intrinsic.ParseIntrinsic(name)
	if !ok {
		return "", false
	}

	variants := s.store.Variants(x)
	if len(variants) == 0 {
		return "", false
	}

	docs := make([]string, 0, len(variants)+1)
	for _, rec := range variants {
		docs = append(docs, format.Documentation(rec, s.settings.WrapWidth))
	}

	if required := s.store.RequiredFeatures(x); !s.filter.Usable(required) {
		docs = append(docs, "Note: "+x.String()+" is not enabled for "+s.settings.Enabled.String()+".")
	}

	return strings.Join(docs, "\n\n"), true
}

// SignatureHelp returns the signature of each
// variant of the named intrinsic, in catalog
// order.
func (s *Session) SignatureHelp(name string) []string {
	x, ok := intrinsic.ParseIntrinsic(name)
	if !ok {
		return nil
	}

	var out []string
	for _, rec := range s.store.Variants(x) {
		out = append(out, format.Signature(rec))
	}

	return out
}

// Enabled returns whether the named intrinsic
// can be used under the session's settings.
// Intrinsics the store does not know are
// never enabled.
func (s *Session) Enabled(name string) bool {
	x, ok := intrinsic.ParseIntrinsic(name)
	if !ok || !s.store.HasEntry(x) {
		return false
	}

	return s.filter.Usable(s.store.RequiredFeatures(x))
}
