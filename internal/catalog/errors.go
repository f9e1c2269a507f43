// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package catalog

import (
	"errors"
	"fmt"
)

// Error is a problem at a position in
// a catalog source.
type Error struct {
	Source string // The name of the catalog source.
	Line   int    // The line in the source, or 0 if unknown.
	Err    string // The error message.
}

func (err *Error) Error() string {
	switch {
	case err.Source == "":
		return err.Err
	case err.Line == 0:
		return fmt.Sprintf("%s: %s", err.Source, err.Err)
	default:
		return fmt.Sprintf("%s:%d: %s", err.Source, err.Line, err.Err)
	}
}

// Errorf returns an *Error at the given
// position. If the last argument is an
// error that carries a position, that
// position is kept and the message is
// rewritten without it.
func Errorf(source string, line int, format string, v ...any) error {
	if len(v) != 0 {
		var err *Error
		if last, ok := v[len(v)-1].(error); ok && errors.As(last, &err) {
			v[len(v)-1] = err.Err
			if err.Source != "" {
				source = err.Source
				line = err.Line
			}
		}
	}

	return &Error{
		Source: source,
		Line:   line,
		Err:    fmt.Sprintf(format, v...),
	}
}
