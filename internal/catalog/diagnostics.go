// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package catalog

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Diagnostic is an advisory message about
// a catalog entry that was skipped or only
// partly understood.
type Diagnostic struct {
	Source  string // The name of the catalog source.
	Line    int    // The line in the source, or 0 if unknown.
	Entry   int    // The catalog identifier of the entry, or 0.
	Message string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Source)
	if d.Line != 0 {
		fmt.Fprintf(&b, ":%d", d.Line)
	}

	if d.Entry != 0 {
		fmt.Fprintf(&b, ": entry %d", d.Entry)
	}

	if b.Len() != 0 {
		b.WriteString(": ")
	}

	b.WriteString(d.Message)

	return b.String()
}

// Diagnostics collects the diagnostics
// produced while loading catalogs. Each
// diagnostic is also logged at warning
// level.
//
// A nil *Diagnostics discards everything
// and is safe to use.
type Diagnostics struct {
	logger *slog.Logger

	mu   sync.Mutex
	list []Diagnostic
}

// NewDiagnostics returns an empty set of
// diagnostics that logs to logger. If
// logger is nil, nothing is logged.
func NewDiagnostics(logger *slog.Logger) *Diagnostics {
	return &Diagnostics{logger: logger}
}

// Add records d.
func (d *Diagnostics) Add(diag Diagnostic) {
	if d == nil {
		return
	}

	if d.logger != nil {
		attrs := []any{slog.String("source", diag.Source)}
		if diag.Line != 0 {
			attrs = append(attrs, slog.Int("line", diag.Line))
		}

		if diag.Entry != 0 {
			attrs = append(attrs, slog.Int("entry", diag.Entry))
		}

		d.logger.Warn(diag.Message, attrs...)
	}

	d.mu.Lock()
	d.list = append(d.list, diag)
	d.mu.Unlock()
}

// Addf records a diagnostic with a
// formatted message.
func (d *Diagnostics) Addf(source string, line, entry int, format string, v ...any) {
	if d == nil {
		return
	}

	d.Add(Diagnostic{
		Source:  source,
		Line:    line,
		Entry:   entry,
		Message: fmt.Sprintf(format, v...),
	})
}

// Len returns the number of diagnostics
// recorded.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.list)
}

// List returns a copy of the diagnostics
// recorded, in the order they were added.
func (d *Diagnostics) List() []Diagnostic {
	if d == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]Diagnostic(nil), d.list...)
}
