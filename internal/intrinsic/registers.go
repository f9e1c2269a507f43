// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package intrinsic

import (
	"fmt"
	"strings"
)

// SimdRegisterType describes the class
// of SIMD register that holds a value.
type SimdRegisterType uint8

const (
	RegNone SimdRegisterType = iota // A scalar, pointer, or unknown type.
	RegMMX                          // A 64-bit MMX register (__m64).
	RegXMM                          // A 128-bit register (__m128*).
	RegYMM                          // A 256-bit register (__m256*).
	RegZMM                          // A 512-bit register (__m512*).
	RegMask                         // An AVX-512 opmask register (__mmask*).
)

func (r SimdRegisterType) String() string {
	switch r {
	case RegNone:
		return "none"
	case RegMMX:
		return "mmx"
	case RegXMM:
		return "xmm"
	case RegYMM:
		return "ymm"
	case RegZMM:
		return "zmm"
	case RegMask:
		return "k"
	default:
		return fmt.Sprintf("SimdRegisterType(%d)", r)
	}
}

// Bits returns the register width in
// bits. Mask registers report their
// maximum width of 64 bits.
func (r SimdRegisterType) Bits() int {
	switch r {
	case RegMMX, RegMask:
		return 64
	case RegXMM:
		return 128
	case RegYMM:
		return 256
	case RegZMM:
		return 512
	default:
		return 0
	}
}

// IsSIMD returns whether r is a
// SIMD register class.
func (r SimdRegisterType) IsSIMD() bool {
	return r != RegNone && r <= RegMask
}

// registerPrefixes is checked in order,
// so longer prefixes come first.
var registerPrefixes = []struct {
	Prefix string
	Reg    SimdRegisterType
}{
	{"__MMASK", RegMask},
	{"__M512", RegZMM},
	{"__M256", RegYMM},
	{"__M128", RegXMM},
	{"__M64", RegMMX},
}

// RegisterOfText classifies the textual
// form of a C type. Pointers to SIMD types
// are not themselves SIMD values, so they
// return RegNone.
func RegisterOfText(s string) SimdRegisterType {
	s = strings.ToUpper(strings.TrimSpace(s))
	if strings.Contains(s, "*") {
		return RegNone
	}

	s = strings.TrimSpace(strings.TrimPrefix(s, "CONST "))
	for _, p := range registerPrefixes {
		if !strings.HasPrefix(s, p.Prefix) {
			continue
		}

		// Make sure we match a whole word
		// of the right shape, such as __m128d
		// or __mmask16, rather than any name
		// starting with __m.
		rest := s[len(p.Prefix):]
		switch {
		case p.Reg == RegMask && rest != "" && isDigits(rest):
			return p.Reg
		case p.Reg == RegMMX && rest == "":
			return p.Reg
		case p.Reg != RegMask && p.Reg != RegMMX:
			switch rest {
			case "", "D", "I", "H", "BH":
				return p.Reg
			}
		}
	}

	return RegNone
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || '9' < r {
			return false
		}
	}

	return true
}
