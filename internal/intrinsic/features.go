// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package intrinsic

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strings"
)

// CpuFeature is a set of CPU instruction set
// extensions, with one bit per extension.
//
// The zero value, FeatureNone, is the empty
// set and means that no feature gating applies.
type CpuFeature uint64

const FeatureNone CpuFeature = 0

const (
	FeatureMMX CpuFeature = 1 << iota
	FeatureSSE
	FeatureSSE2
	FeatureSSE3
	FeatureSSSE3
	FeatureSSE4_1
	FeatureSSE4_2
	FeatureAVX
	FeatureAVX2
	FeatureFMA
	FeatureAVX512_F
	FeatureAVX512_CD
	FeatureAVX512_ER
	FeatureAVX512_PF
	FeatureAVX512_BW
	FeatureAVX512_DQ
	FeatureAVX512_VL
	FeatureAVX512_IFMA52
	FeatureAVX512_VBMI
	FeatureAVX512_VBMI2
	FeatureAVX512_VNNI
	FeatureAVX512_BITALG
	FeatureAVX512_VPOPCNTDQ
	FeatureAVX512_4VNNIW
	FeatureAVX512_4FMAPS
	FeatureAVX512_BF16
	FeatureAVX512_FP16
	FeatureAVX512_VP2INTERSECT
	FeatureAVX_VNNI
	FeatureKNCNI
	FeatureADX
	FeatureAES
	FeatureBMI1
	FeatureBMI2
	FeatureCLFLUSHOPT
	FeatureCLWB
	FeatureF16C
	FeatureFSGSBASE
	FeatureFXSR
	FeatureGFNI
	FeatureINVPCID
	FeatureLZCNT
	FeatureMONITOR
	FeatureMPX
	FeaturePCLMULQDQ
	FeaturePOPCNT
	FeaturePREFETCHWT1
	FeatureRDPID
	FeatureRDRAND
	FeatureRDSEED
	FeatureRDTSCP
	FeatureRTM
	FeatureSHA
	FeatureTSC
	FeatureVAES
	FeatureVPCLMULQDQ
	FeatureXSAVE
	FeatureXSAVEC
	FeatureXSAVEOPT
	FeatureXSS
	FeatureAMX_TILE
	FeatureAMX_INT8
	FeatureAMX_BF16

	// FeatureSVML marks intrinsics provided by
	// the vendor's short vector math library
	// rather than by the CPU.
	FeatureSVML
)

// FeatureInfo describes one
// named feature flag.
type FeatureInfo struct {
	Feature CpuFeature
	Name    string // Identifier spelling, eg "SSE4_1".
	Display string // Human-readable spelling, eg "SSE4.1".
}

// features lists every named flag in bit
// order. It is the only source used for
// iterating over or formatting flags.
var features = [...]FeatureInfo{
	{FeatureMMX, "MMX", "MMX"},
	{FeatureSSE, "SSE", "SSE"},
	{FeatureSSE2, "SSE2", "SSE2"},
	{FeatureSSE3, "SSE3", "SSE3"},
	{FeatureSSSE3, "SSSE3", "SSSE3"},
	{FeatureSSE4_1, "SSE4_1", "SSE4.1"},
	{FeatureSSE4_2, "SSE4_2", "SSE4.2"},
	{FeatureAVX, "AVX", "AVX"},
	{FeatureAVX2, "AVX2", "AVX2"},
	{FeatureFMA, "FMA", "FMA"},
	{FeatureAVX512_F, "AVX512_F", "AVX512_F"},
	{FeatureAVX512_CD, "AVX512_CD", "AVX512_CD"},
	{FeatureAVX512_ER, "AVX512_ER", "AVX512_ER"},
	{FeatureAVX512_PF, "AVX512_PF", "AVX512_PF"},
	{FeatureAVX512_BW, "AVX512_BW", "AVX512_BW"},
	{FeatureAVX512_DQ, "AVX512_DQ", "AVX512_DQ"},
	{FeatureAVX512_VL, "AVX512_VL", "AVX512_VL"},
	{FeatureAVX512_IFMA52, "AVX512_IFMA52", "AVX512_IFMA52"},
	{FeatureAVX512_VBMI, "AVX512_VBMI", "AVX512_VBMI"},
	{FeatureAVX512_VBMI2, "AVX512_VBMI2", "AVX512_VBMI2"},
	{FeatureAVX512_VNNI, "AVX512_VNNI", "AVX512_VNNI"},
	{FeatureAVX512_BITALG, "AVX512_BITALG", "AVX512_BITALG"},
	{FeatureAVX512_VPOPCNTDQ, "AVX512_VPOPCNTDQ", "AVX512_VPOPCNTDQ"},
	{FeatureAVX512_4VNNIW, "AVX512_4VNNIW", "AVX512_4VNNIW"},
	{FeatureAVX512_4FMAPS, "AVX512_4FMAPS", "AVX512_4FMAPS"},
	{FeatureAVX512_BF16, "AVX512_BF16", "AVX512_BF16"},
	{FeatureAVX512_FP16, "AVX512_FP16", "AVX512_FP16"},
	{FeatureAVX512_VP2INTERSECT, "AVX512_VP2INTERSECT", "AVX512_VP2INTERSECT"},
	{FeatureAVX_VNNI, "AVX_VNNI", "AVX_VNNI"},
	{FeatureKNCNI, "KNCNI", "KNCNI"},
	{FeatureADX, "ADX", "ADX"},
	{FeatureAES, "AES", "AES"},
	{FeatureBMI1, "BMI1", "BMI1"},
	{FeatureBMI2, "BMI2", "BMI2"},
	{FeatureCLFLUSHOPT, "CLFLUSHOPT", "CLFLUSHOPT"},
	{FeatureCLWB, "CLWB", "CLWB"},
	{FeatureF16C, "F16C", "F16C"},
	{FeatureFSGSBASE, "FSGSBASE", "FSGSBASE"},
	{FeatureFXSR, "FXSR", "FXSR"},
	{FeatureGFNI, "GFNI", "GFNI"},
	{FeatureINVPCID, "INVPCID", "INVPCID"},
	{FeatureLZCNT, "LZCNT", "LZCNT"},
	{FeatureMONITOR, "MONITOR", "MONITOR"},
	{FeatureMPX, "MPX", "MPX"},
	{FeaturePCLMULQDQ, "PCLMULQDQ", "PCLMULQDQ"},
	{FeaturePOPCNT, "POPCNT", "POPCNT"},
	{FeaturePREFETCHWT1, "PREFETCHWT1", "PREFETCHWT1"},
	{FeatureRDPID, "RDPID", "RDPID"},
	{FeatureRDRAND, "RDRAND", "RDRAND"},
	{FeatureRDSEED, "RDSEED", "RDSEED"},
	{FeatureRDTSCP, "RDTSCP", "RDTSCP"},
	{FeatureRTM, "RTM", "RTM"},
	{FeatureSHA, "SHA", "SHA"},
	{FeatureTSC, "TSC", "TSC"},
	{FeatureVAES, "VAES", "VAES"},
	{FeatureVPCLMULQDQ, "VPCLMULQDQ", "VPCLMULQDQ"},
	{FeatureXSAVE, "XSAVE", "XSAVE"},
	{FeatureXSAVEC, "XSAVEC", "XSAVEC"},
	{FeatureXSAVEOPT, "XSAVEOPT", "XSAVEOPT"},
	{FeatureXSS, "XSS", "XSS"},
	{FeatureAMX_TILE, "AMX_TILE", "AMX_TILE"},
	{FeatureAMX_INT8, "AMX_INT8", "AMX_INT8"},
	{FeatureAMX_BF16, "AMX_BF16", "AMX_BF16"},
	{FeatureSVML, "SVML", "SVML"},
}

// featureAliases holds spellings that do
// not reduce to a flag's name by dropping
// separators.
var featureAliases = map[string]CpuFeature{
	"FP16C":            FeatureF16C,
	"AVX512":           FeatureAVX512_F,
	"AVX512IFMA":       FeatureAVX512_IFMA52,
	"AVX512VPCLMULQDQ": FeatureVPCLMULQDQ,
	"AVX512GFNI":       FeatureGFNI,
	"AVX512VAES":       FeatureVAES,
	"AVXVNNI":          FeatureAVX_VNNI,
	"KNC":              FeatureKNCNI,
	"CLFLUSHOPTS":      FeatureCLFLUSHOPT,
	"XSAVES":           FeatureXSS,
	"AMXTILE":          FeatureAMX_TILE,
	"AMXINT8":          FeatureAMX_INT8,
	"AMXBF16":          FeatureAMX_BF16,
	"INTELSVML":        FeatureSVML,
}

// featuresByKey maps the separator-free
// upper-case spelling of each flag.
var featuresByKey map[string]CpuFeature

func init() {
	featuresByKey = make(map[string]CpuFeature, len(features)+len(featureAliases))
	for _, info := range features {
		featuresByKey[featureKey(info.Name)] = info.Feature
		featuresByKey[featureKey(info.Display)] = info.Feature
	}

	for alias, feature := range featureAliases {
		featuresByKey[featureKey(alias)] = feature
	}
}

// featureKey drops case and the separators
// that historical spellings disagree on.
func featureKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '.', '-', ' ', '\t':
			return -1
		}

		if 'a' <= r && r <= 'z' {
			return r - 'a' + 'A'
		}

		return r
	}, s)
}

// Features returns the table of named
// feature flags, in bit order.
func Features() []FeatureInfo {
	out := make([]FeatureInfo, len(features))
	copy(out[:], features[:])
	return out
}

// ParseFeature parses a single feature
// name. Matching ignores case and the
// separators '_', '.', and '-', so
// "AVX512BW", "AVX512_BW", "SSE4.1", and
// "SSE4_1" are all recognised.
//
// Unrecognised input returns FeatureNone
// and false.
func ParseFeature(s string) (CpuFeature, bool) {
	key := featureKey(strings.TrimSpace(s))
	if key == "" || key == "NONE" {
		return FeatureNone, false
	}

	f, ok := featuresByKey[key]
	if !ok {
		return FeatureNone, false
	}

	return f, true
}

// ParseFeatures parses a comma-separated
// list of feature names, returning the
// union of every recognised name and the
// list of tokens that were not recognised.
func ParseFeatures(s string) (set CpuFeature, unknown []string) {
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		f, ok := ParseFeature(tok)
		if !ok {
			unknown = append(unknown, tok)
			continue
		}

		set |= f
	}

	return set, unknown
}

// Has returns whether f contains
// every flag in other.
func (f CpuFeature) Has(other CpuFeature) bool {
	return f&other == other
}

// Intersects returns whether f and
// other share at least one flag.
func (f CpuFeature) Intersects(other CpuFeature) bool {
	return f&other != 0
}

// Len returns the number of flags in f.
func (f CpuFeature) Len() int {
	return bits.OnesCount64(uint64(f))
}

// Flags returns the individual flags
// in f, in bit order.
func (f CpuFeature) Flags() []CpuFeature {
	out := make([]CpuFeature, 0, f.Len())
	for _, info := range features {
		if f&info.Feature != 0 {
			out = append(out, info.Feature)
		}
	}

	return out
}

// Name returns the identifier spelling
// of a single flag.
func (f CpuFeature) Name() string {
	if f == FeatureNone {
		return "NONE"
	}

	if f.Len() == 1 {
		return features[bits.TrailingZeros64(uint64(f))].Name
	}

	return fmt.Sprintf("CpuFeature(%#x)", uint64(f))
}

// Display returns the human-readable
// spelling of a single flag.
func (f CpuFeature) Display() string {
	if f.Len() == 1 {
		return features[bits.TrailingZeros64(uint64(f))].Display
	}

	return f.Name()
}

// Join renders the flags in f with
// their display names, separated by
// sep. FeatureNone renders as the
// empty string.
func (f CpuFeature) Join(sep string) string {
	var b strings.Builder
	for _, info := range features {
		if f&info.Feature == 0 {
			continue
		}

		if b.Len() > 0 {
			b.WriteString(sep)
		}

		b.WriteString(info.Display)
	}

	return b.String()
}

func (f CpuFeature) String() string {
	if f == FeatureNone {
		return "NONE"
	}

	return f.Join(", ")
}

func (f CpuFeature) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, f.Len())
	for _, flag := range f.Flags() {
		names = append(names, flag.Name())
	}

	return json.Marshal(names)
}

func (f *CpuFeature) UnmarshalJSON(data []byte) error {
	var names []string
	err := json.Unmarshal(data, &names)
	if err != nil {
		return err
	}

	var set CpuFeature
	for _, name := range names {
		got, ok := ParseFeature(name)
		if !ok {
			return fmt.Errorf("invalid cpu feature %q", name)
		}

		set |= got
	}

	*f = set

	return nil
}
