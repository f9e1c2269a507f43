// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package format

import (
	"strings"
	"testing"
	"unicode/utf8"

	"rsc.io/diff"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/intrinsic"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/textnorm"
)

func mustIntrinsic(t *testing.T, name string) intrinsic.Intrinsic {
	t.Helper()
	x, ok := intrinsic.ParseIntrinsic(name)
	if !ok {
		t.Fatalf("unknown intrinsic %q", name)
	}

	return x
}

func TestFeatures(t *testing.T) {
	tests := []struct {
		Features intrinsic.CpuFeature
		Want     string
	}{
		{Features: intrinsic.FeatureNone, Want: ""},
		{Features: intrinsic.FeatureSSE4_1, Want: "SSE4.1"},
		{Features: intrinsic.FeatureSSE4_2 | intrinsic.FeatureSSE4_1, Want: "SSE4.1, SSE4.2"},
		{Features: intrinsic.FeatureAVX2 | intrinsic.FeatureSSE, Want: "SSE, AVX2"},
	}

	for _, test := range tests {
		if got := Features(test.Features); got != test.Want {
			t.Errorf("Features(%#x): got %q, want %q", uint64(test.Features), got, test.Want)
		}
	}
}

func TestShortSummary(t *testing.T) {
	const desc = "Add packed single-precision elements."
	tests := []struct {
		Name        string
		Intrinsic   string
		Features    intrinsic.CpuFeature
		Description string
		Max         int
		Want        string
	}{
		{
			Name:        "no limit",
			Intrinsic:   "_mm_add_ps",
			Features:    intrinsic.FeatureSSE,
			Description: desc,
			Want:        "_mm_add_ps [SSE] - Add packed single-precision elements.",
		},
		{
			Name:        "fits exactly",
			Intrinsic:   "_mm_add_ps",
			Features:    intrinsic.FeatureSSE,
			Description: desc,
			Max:         56,
			Want:        "_mm_add_ps [SSE] - Add packed single-precision elements.",
		},
		{
			Name:        "truncated description",
			Intrinsic:   "_mm_add_ps",
			Features:    intrinsic.FeatureSSE,
			Description: desc,
			Max:         30,
			Want:        "_mm_add_ps [SSE] - Add pack...",
		},
		{
			Name:        "several features",
			Intrinsic:   "_mm_crc32_u8",
			Features:    intrinsic.FeatureSSE4_2 | intrinsic.FeatureSSE,
			Description: "Accumulate a CRC32 value.",
			Want:        "_mm_crc32_u8 [SSE,SSE4.2] - Accumulate a CRC32 value.",
		},
		{
			Name:        "bracket dropped",
			Intrinsic:   "_mm_add_ps",
			Features:    intrinsic.FeatureSSE,
			Description: desc,
			Max:         18,
			Want:        "_mm_add_ps - Ad...",
		},
		{
			Name:        "no dangling separator",
			Intrinsic:   "_mm_add_ps",
			Features:    intrinsic.FeatureSSE,
			Description: desc,
			Max:         15,
			Want:        "_mm_add_ps...",
		},
		{
			Name:      "name truncated",
			Intrinsic: "_mm_add_ps",
			Features:  intrinsic.FeatureSSE,
			Max:       8,
			Want:      "_mm_a...",
		},
		{
			Name:        "name cut to fit ellipsis",
			Intrinsic:   "_mm_add_ps",
			Features:    intrinsic.FeatureSSE,
			Description: "Add packed values.",
			Max:         10,
			Want:        "_mm_add...",
		},
		{
			Name:        "name cut with room to spare",
			Intrinsic:   "_mm_add_ps",
			Features:    intrinsic.FeatureSSE,
			Description: "Add packed values.",
			Max:         12,
			Want:        "_mm_add_p...",
		},
		{
			Name:      "features dropped without description",
			Intrinsic: "_mm_crc32_u8",
			Features:  intrinsic.FeatureSSE4_2,
			Max:       15,
			Want:      "_mm_crc32_u8...",
		},
		{
			Name:      "features dropped and name cut",
			Intrinsic: "_mm_crc32_u8",
			Features:  intrinsic.FeatureSSE4_2,
			Max:       14,
			Want:      "_mm_crc32_u...",
		},
		{
			Name:      "tiny budget",
			Intrinsic: "_mm_add_ps",
			Features:  intrinsic.FeatureSSE,
			Max:       2,
			Want:      "..",
		},
		{
			Name:      "bare name",
			Intrinsic: "_mm_empty",
			Max:       20,
			Want:      "_mm_empty",
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got := ShortSummary(test.Intrinsic, test.Features, test.Description, test.Max)
			if got != test.Want {
				t.Fatalf("ShortSummary(): got %q, want %q", got, test.Want)
			}
		})
	}
}

func TestShortSummaryBudget(t *testing.T) {
	const (
		name = "_mm256_mask_add_epi32"
		desc = "Add packed 32-bit integers in a and b, and store the results using writemask k."
	)

	features := intrinsic.FeatureAVX512_F | intrinsic.FeatureAVX512_VL
	full := ShortSummary(name, features, desc, 0)
	for max := len(textnorm.Ellipsis); max <= utf8.RuneCountInString(full)+2; max++ {
		got := ShortSummary(name, features, desc, max)
		if n := utf8.RuneCountInString(got); n > max {
			t.Errorf("ShortSummary(max=%d): got %d runes: %q", max, n, got)
		}

		if got != full && !strings.HasSuffix(got, textnorm.Ellipsis) {
			t.Errorf("ShortSummary(max=%d): truncated without ellipsis: %q", max, got)
		}

		if strings.Contains(got, "[") != strings.Contains(got, "]") {
			t.Errorf("ShortSummary(max=%d): feature list was cut: %q", max, got)
		}
	}
}

func TestSignature(t *testing.T) {
	tests := []struct {
		Name   string
		Record *intrinsic.Record
		Want   string
	}{
		{
			Name: "vector",
			Record: &intrinsic.Record{
				Name:       mustIntrinsic(t, "_mm_add_ps"),
				ReturnType: intrinsic.ReturnM128,
				Params: []intrinsic.Param{
					{Type: intrinsic.ParamM128, Name: "a"},
					{Type: intrinsic.ParamM128, Name: "b"},
				},
			},
			Want: "__m128 _mm_add_ps(__m128 a, __m128 b)",
		},
		{
			Name: "no parameters",
			Record: &intrinsic.Record{
				Name:       mustIntrinsic(t, "_mm_empty"),
				ReturnType: intrinsic.ReturnVoid,
			},
			Want: "void _mm_empty()",
		},
		{
			Name: "pointer and unnamed",
			Record: &intrinsic.Record{
				Name:       mustIntrinsic(t, "_mm_load_ps"),
				ReturnType: intrinsic.ReturnM128,
				Params: []intrinsic.Param{
					{Type: intrinsic.ParamConstFloatPtr},
				},
			},
			Want: "__m128 _mm_load_ps(const float*)",
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			if got := Signature(test.Record); got != test.Want {
				t.Fatalf("Signature(): got %q, want %q", got, test.Want)
			}
		})
	}
}

func TestDocumentation(t *testing.T) {
	tests := []struct {
		Name   string
		Record *intrinsic.Record
		Width  int
		Want   string
	}{
		{
			Name: "full",
			Record: &intrinsic.Record{
				ID:         100,
				Name:       mustIntrinsic(t, "_mm_add_ps"),
				ReturnType: intrinsic.ReturnM128,
				Params: []intrinsic.Param{
					{Type: intrinsic.ParamM128, Name: "a"},
					{Type: intrinsic.ParamM128, Name: "b"},
				},
				Features:        intrinsic.FeatureSSE,
				Instruction:     "ADDPS",
				InstructionNote: "xmm, xmm",
				Description:     "Add packed single-precision (32-bit) floating-point elements.",
				Operation:       "FOR j := 0 to 3\n\ti := j*32\n\tdst[i+31:i] := a[i+31:i] + b[i+31:i]\nENDFOR",
				Performance: []intrinsic.Performance{
					{Arch: "Skylake", Latency: "4", Throughput: "0.5"},
					{Arch: "Broadwell", Latency: "3", Throughput: "1"},
				},
			},
			Width: 30,
			Want: `__m128 _mm_add_ps(__m128 a, __m128 b)  [SSE]

Add packed single-precision
(32-bit) floating-point
elements.

Instruction: ADDPS xmm, xmm

Operation:
FOR j := 0 to 3
	i := j*32
	dst[i+31:i] := a[i+31:i] + b[i+31:i]
ENDFOR

Performance:
  Architecture | Latency | Throughput
---------------+---------+-------------
  Skylake      | 4       | 0.5
  Broadwell    | 3       | 1`,
		},
		{
			Name: "minimal",
			Record: &intrinsic.Record{
				Name:       mustIntrinsic(t, "_mm_empty"),
				ReturnType: intrinsic.ReturnVoid,
			},
			Width: 80,
			Want:  "void _mm_empty()",
		},
		{
			Name: "description only",
			Record: &intrinsic.Record{
				Name:        mustIntrinsic(t, "_mm_sin_ps"),
				ReturnType:  intrinsic.ReturnM128,
				Params:      []intrinsic.Param{{Type: intrinsic.ParamM128, Name: "a"}},
				Features:    intrinsic.FeatureSSE | intrinsic.FeatureSVML,
				Description: "Compute the sine of packed single-precision elements in a.",
			},
			Width: 0,
			Want: `__m128 _mm_sin_ps(__m128 a)  [SSE, SVML]

Compute the sine of packed single-precision elements in a.`,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got := Documentation(test.Record, test.Width)
			if got != test.Want {
				t.Fatalf("Documentation():\n%s", diff.Format(got, test.Want))
			}
		})
	}
}
