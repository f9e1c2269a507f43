// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package intrinsic

import (
	"strconv"
)

// Record includes structured information
// about one variant of an intrinsic, as
// described by a catalog entry.
//
// Records are immutable once they have
// been published by a store. Use Clone
// to derive a modified copy.
type Record struct {
	ID              int           `json:"id"`                        // The catalog's identifier for the entry.
	Name            Intrinsic     `json:"name"`                      // The intrinsic's name.
	ReturnType      ReturnType    `json:"returnType"`                // The C return type.
	Params          []Param       `json:"params"`                    // The parameters, in call order.
	Features        CpuFeature    `json:"features"`                  // The CPU features required.
	Instruction     string        `json:"instruction,omitempty"`     // The instruction mnemonic, in upper case.
	InstructionNote string        `json:"instructionNote,omitempty"` // Any operand form, eg "xmm, xmm".
	Description     string        `json:"description,omitempty"`
	Operation       string        `json:"operation,omitempty"` // Pseudocode, kept verbatim.
	Performance     []Performance `json:"performance,omitempty"`
}

// Param is one parameter to an
// intrinsic.
type Param struct {
	Type ParamType `json:"type"`
	Name string    `json:"name"`
}

// Performance is one row of an
// intrinsic's performance table.
type Performance struct {
	Arch       string `json:"arch"`
	Latency    string `json:"latency"`
	Throughput string `json:"throughput"`
}

// Reference returns the identifier used
// to locate the record's documentation
// in the vendor's reference.
func (r *Record) Reference() string {
	if r.ID <= 0 {
		return ""
	}

	return strconv.Itoa(r.ID)
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r
	if r.Params != nil {
		c.Params = append([]Param(nil), r.Params...)
	}

	if r.Performance != nil {
		c.Performance = append([]Performance(nil), r.Performance...)
	}

	return &c
}

// SameSignature returns whether r and
// other describe the same call form:
// the same name, return type, and
// parameter types.
func (r *Record) SameSignature(other *Record) bool {
	if r.Name != other.Name || r.ReturnType != other.ReturnType || len(r.Params) != len(other.Params) {
		return false
	}

	for i := range r.Params {
		if r.Params[i].Type != other.Params[i].Type {
			return false
		}
	}

	return true
}

// Equal returns whether r and other are
// structurally identical.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}

	if r.ID != other.ID ||
		r.Features != other.Features ||
		r.Instruction != other.Instruction ||
		r.InstructionNote != other.InstructionNote ||
		r.Description != other.Description ||
		r.Operation != other.Operation ||
		!r.SameSignature(other) ||
		len(r.Performance) != len(other.Performance) {
		return false
	}

	for i := range r.Params {
		if r.Params[i].Name != other.Params[i].Name {
			return false
		}
	}

	for i := range r.Performance {
		if r.Performance[i] != other.Performance[i] {
			return false
		}
	}

	return true
}
