// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package catalog

import (
	"bytes"
	"fmt"
	"strconv"
)

var ignoredStats Stats

// Stats counts what happened while
// parsing catalogs.
type Stats struct {
	Entries         int // Intrinsic entries seen.
	Records         int // Records produced.
	Skipped         int // Entries or lines skipped.
	UnknownNames    int
	UnknownTypes    int
	UnknownFeatures int
	DescriptionRows int
	SignatureRows   int
}

func (s *Stats) notnil() *Stats {
	if s != nil {
		return s
	}

	return &ignoredStats
}

func (s *Stats) Entry()          { s.notnil().Entries++ }
func (s *Stats) Record()         { s.notnil().Records++ }
func (s *Stats) Skip()           { s.notnil().Skipped++ }
func (s *Stats) UnknownName()    { s.notnil().UnknownNames++ }
func (s *Stats) UnknownType()    { s.notnil().UnknownTypes++ }
func (s *Stats) UnknownFeature() { s.notnil().UnknownFeatures++ }
func (s *Stats) DescriptionRow() { s.notnil().DescriptionRows++ }
func (s *Stats) SignatureRow()   { s.notnil().SignatureRows++ }

// Add adds the counts in other to s.
func (s *Stats) Add(other Stats) {
	s = s.notnil()
	s.Entries += other.Entries
	s.Records += other.Records
	s.Skipped += other.Skipped
	s.UnknownNames += other.UnknownNames
	s.UnknownTypes += other.UnknownTypes
	s.UnknownFeatures += other.UnknownFeatures
	s.DescriptionRows += other.DescriptionRows
	s.SignatureRows += other.SignatureRows
}

func (s *Stats) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Found %s intrinsic entries.\n", humaniseNumber(s.Entries))
	fmt.Fprintf(&b, "Loaded %s intrinsic records.\n", humaniseNumber(s.Records))
	fmt.Fprintf(&b, "Loaded %s mnemonic descriptions.\n", humaniseNumber(s.DescriptionRows))
	fmt.Fprintf(&b, "Loaded %s mnemonic signatures.\n", humaniseNumber(s.SignatureRows))
	fmt.Fprintf(&b, "Skipped %s malformed entries.\n", humaniseNumber(s.Skipped))
	fmt.Fprintf(&b, "Ignored %s unknown names, %s unknown types, and %s unknown features.\n",
		humaniseNumber(s.UnknownNames), humaniseNumber(s.UnknownTypes), humaniseNumber(s.UnknownFeatures))

	return b.String()
}

func humaniseNumber(v int) string {
	prefix, suffix := strconv.Itoa(v), ""
	for len(prefix) > 3 {
		suffix = "," + prefix[len(prefix)-3:] + suffix
		prefix = prefix[:len(prefix)-3]
	}

	return prefix + suffix
}
