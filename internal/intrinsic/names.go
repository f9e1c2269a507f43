// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package intrinsic

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Intrinsic identifies one known intrinsic
// function name. The zero value is
// IntrinsicUnknown.
//
// Values are indices into a sorted, fixed
// name table, so they are only stable
// within one build.
type Intrinsic uint16

const IntrinsicUnknown Intrinsic = 0

//go:embed names.txt
var namesText string

// intrinsicNames holds the lowercase name
// of each intrinsic, sorted. Intrinsic(i)
// has the name intrinsicNames[i-1].
var intrinsicNames = loadNames(namesText)

func loadNames(text string) []string {
	names := strings.Fields(text)
	if !sort.StringsAreSorted(names) {
		panic("intrinsic: names.txt is not sorted")
	}

	if len(names) >= 1<<16 {
		panic("intrinsic: too many names for Intrinsic")
	}

	return names
}

// Intrinsics returns every known intrinsic,
// in name order.
func Intrinsics() []Intrinsic {
	out := make([]Intrinsic, len(intrinsicNames))
	for i := range out {
		out[i] = Intrinsic(i + 1)
	}

	return out
}

// ParseIntrinsic parses an intrinsic name,
// ignoring case and surrounding space.
//
// Unrecognised names return IntrinsicUnknown
// and false.
func ParseIntrinsic(s string) (Intrinsic, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return IntrinsicUnknown, false
	}

	i := sort.SearchStrings(intrinsicNames, s)
	if i == len(intrinsicNames) || intrinsicNames[i] != s {
		return IntrinsicUnknown, false
	}

	return Intrinsic(i + 1), true
}

// Valid returns whether x names a known
// intrinsic.
func (x Intrinsic) Valid() bool {
	return x != IntrinsicUnknown && int(x) <= len(intrinsicNames)
}

// String returns the lowercase display
// form of the name, as it is written in
// C source.
func (x Intrinsic) String() string {
	if !x.Valid() {
		if x == IntrinsicUnknown {
			return "UNKNOWN"
		}

		return fmt.Sprintf("Intrinsic(%d)", uint16(x))
	}

	return intrinsicNames[x-1]
}

// UpperName returns the canonical
// uppercase form of the name.
func (x Intrinsic) UpperName() string {
	return strings.ToUpper(x.String())
}

func (x Intrinsic) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.String())
}

func (x *Intrinsic) UnmarshalJSON(data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}

	got, ok := ParseIntrinsic(s)
	if !ok {
		return fmt.Errorf("invalid intrinsic %q", s)
	}

	*x = got

	return nil
}
