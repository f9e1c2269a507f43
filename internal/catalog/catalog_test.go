// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package catalog

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/intrinsic"
)

func mustIntrinsic(t *testing.T, name string) intrinsic.Intrinsic {
	t.Helper()
	x, ok := intrinsic.ParseIntrinsic(name)
	if !ok {
		t.Fatalf("unknown intrinsic %q", name)
	}

	return x
}

func TestParseHTML(t *testing.T) {
	const source = "testdata/catalog.html"
	f, err := os.Open(source)
	if err != nil {
		t.Fatal(err)
	}

	defer f.Close()

	diags := NewDiagnostics(nil)
	got, err := ParseHTML(f, source, diags)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}

	want := []*intrinsic.Record{
		{
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
			Description:     `Add packed single-precision (32-bit) floating-point elements in "a" and "b", and store the results in "dst".`,
			Operation:       "FOR j := 0 to 3\n\ti := j*32\n\tdst[i+31:i] := a[i+31:i] + b[i+31:i]\nENDFOR",
			Performance: []intrinsic.Performance{
				{Arch: "Skylake", Latency: "4", Throughput: "0.5"},
				{Arch: "Broadwell", Latency: "3", Throughput: "1"},
			},
		},
		{
			ID:         200,
			Name:       mustIntrinsic(t, "_mm256_add_epi32"),
			ReturnType: intrinsic.ReturnM256I,
			Params: []intrinsic.Param{
				{Type: intrinsic.ParamM256I, Name: "a"},
				{Type: intrinsic.ParamM256I, Name: "b"},
			},
			Features:        intrinsic.FeatureAVX2,
			Instruction:     "VPADDD",
			InstructionNote: "ymm, ymm, ymm",
			Description:     `Add packed 32-bit integers in "a" and "b".`,
		},
		{
			ID:          500,
			Name:        mustIntrinsic(t, "_mm_empty"),
			ReturnType:  intrinsic.ReturnVoid,
			Features:    intrinsic.FeatureMMX,
			Instruction: "EMMS",
			Description: "Empty the MMX state.",
		},
		{
			ID:          600,
			Name:        mustIntrinsic(t, "_mm_sin_ps"),
			ReturnType:  intrinsic.ReturnM128,
			Params:      []intrinsic.Param{{Type: intrinsic.ParamM128, Name: "a"}},
			Features:    intrinsic.FeatureSSE | intrinsic.FeatureSVML,
			Description: `Compute the sine of packed single-precision (32-bit) floating-point elements in "a".`,
		},
		{
			ID:         700,
			Name:       mustIntrinsic(t, "_mm_crc32_u8"),
			ReturnType: intrinsic.ReturnUnsignedInt,
			Params: []intrinsic.Param{
				{Type: intrinsic.ParamUnsignedInt, Name: "crc"},
				{Type: intrinsic.ParamUnsignedChar, Name: "v"},
			},
			Features:        intrinsic.FeatureSSE4_2,
			Instruction:     "CRC32",
			InstructionNote: "r32, r8",
			Description:     "Accumulate a CRC32 value.",
		},
	}

	if diff := cmp.Diff(want, got.Records); diff != "" {
		t.Errorf("ParseHTML: records (-want, +got)\n%s", diff)
	}

	if got.Version != "3.6.9" {
		t.Errorf("ParseHTML: got version %q, want %q", got.Version, "3.6.9")
	}

	wantDiags := []Diagnostic{
		{Source: source, Entry: 300, Message: `skipping unknown intrinsic "_mm_bogus_ps"`},
		{Source: source, Entry: 400, Message: "skipping intrinsic entry with no signature"},
		{Source: source, Entry: 700, Message: `unknown CPUID feature "FOO"`},
	}

	if diff := cmp.Diff(wantDiags, diags.List()); diff != "" {
		t.Errorf("ParseHTML: diagnostics (-want, +got)\n%s", diff)
	}

	wantStats := Stats{
		Entries:         7,
		Records:         5,
		Skipped:         1,
		UnknownNames:    1,
		UnknownFeatures: 1,
	}

	if diff := cmp.Diff(wantStats, got.Stats); diff != "" {
		t.Errorf("ParseHTML: stats (-want, +got)\n%s", diff)
	}
}

func TestParseHTMLEntries(t *testing.T) {
	tests := []struct {
		Name  string
		HTML  string
		Want  *intrinsic.Record
		Diags int
	}{
		{
			Name: "unknown types",
			HTML: `<div class="INTRINSIC" id="b1"><div class="Signature">` +
				`<span class="rettype">struct foo</span> <span class="name">_mm_add_ps</span>` +
				`(<span class="param_type">struct bar</span> <span class="param_name">a</span>)</div></div>`,
			Want: &intrinsic.Record{
				ID:     1,
				Name:   mustIntrinsic(t, "_mm_add_ps"),
				Params: []intrinsic.Param{{Type: intrinsic.ParamUnknown, Name: "a"}},
			},
			Diags: 2,
		},
		{
			Name: "ignored classes",
			HTML: `<div class="intrinsic" id="x42"><div class="signature"><b class="extra">` +
				`<span class="rettype">int</span></b> <span class="name">_mm_popcnt_u32</span>` +
				`(<span class="param_type">unsigned int</span> <span class="param_name">a</span>)</div>` +
				`<div class="details"><span class="cpuid">POPCNT</span><span class="rettype">float</span></div></div>`,
			Want: &intrinsic.Record{
				ID:         42,
				Name:       mustIntrinsic(t, "_mm_popcnt_u32"),
				ReturnType: intrinsic.ReturnInt,
				Params:     []intrinsic.Param{{Type: intrinsic.ParamUnsignedInt, Name: "a"}},
				Features:   intrinsic.FeaturePOPCNT,
			},
		},
		{
			Name: "slash-separated features",
			HTML: `<div class="intrinsic" id="b7"><div class="signature"><span class="rettype">__m512</span> ` +
				`<span class="name">_mm512_add_ps</span></div>` +
				`<div class="details"><span class="cpuid">AVX512F/KNCNI</span></div></div>`,
			Want: &intrinsic.Record{
				ID:         7,
				Name:       mustIntrinsic(t, "_mm512_add_ps"),
				ReturnType: intrinsic.ReturnM512,
				Features:   intrinsic.FeatureAVX512_F | intrinsic.FeatureKNCNI,
			},
		},
		{
			Name: "missing id",
			HTML: `<div class="intrinsic"><div class="signature"><span class="name">_mm_pause</span></div></div>`,
			Want: &intrinsic.Record{
				Name: mustIntrinsic(t, "_mm_pause"),
			},
			Diags: 1,
		},
		{
			Name:  "missing name",
			HTML:  `<div class="intrinsic" id="b9"><div class="signature"><span class="rettype">int</span></div></div>`,
			Diags: 1,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			diags := NewDiagnostics(nil)
			c, err := ParseHTML(strings.NewReader(test.HTML), "test", diags)
			if err != nil {
				t.Fatalf("ParseHTML: %v", err)
			}

			var want []*intrinsic.Record
			if test.Want != nil {
				want = append(want, test.Want)
			}

			if diff := cmp.Diff(want, c.Records); diff != "" {
				t.Errorf("ParseHTML: (-want, +got)\n%s", diff)
			}

			if diags.Len() != test.Diags {
				t.Errorf("ParseHTML: got %d diagnostics, want %d: %v", diags.Len(), test.Diags, diags.List())
			}
		})
	}
}

func TestParseTSV(t *testing.T) {
	const source = "testdata/mnemonics.tsv"
	data, err := os.ReadFile(source)
	if err != nil {
		t.Fatal(err)
	}

	diags := NewDiagnostics(nil)
	got, err := ParseTSV(bytes.NewReader(data), source, diags)
	if err != nil {
		t.Fatalf("ParseTSV: %v", err)
	}

	wantDescriptions := []DescriptionRow{
		{Line: 3, Mnemonic: "ADDPS", Description: "Add Packed Single-Precision Floating-Point Values", Reference: "addps"},
		{Line: 4, Mnemonic: "ADDPS", Description: "A later description that is ignored", Reference: "addps-later"},
	}

	addps := SignatureRow{
		Line:          5,
		Mnemonic:      "ADDPS",
		Operands:      "xmm1, xmm2/m128",
		Arch:          "X64,SSE",
		Features:      intrinsic.FeatureSSE,
		SignatureDoc:  "ADDPS xmm1, xmm2/m128",
		Documentation: "Add packed single-precision values from xmm2/m128 to xmm1.",
	}

	legacy := addps
	legacy.Line = 6
	wantSignatures := []SignatureRow{
		addps,
		legacy,
		{
			Line:          7,
			Mnemonic:      "VADDPS",
			Operands:      "ymm1, ymm2, ymm3/m256",
			Arch:          "X64,AVX",
			Features:      intrinsic.FeatureAVX,
			SignatureDoc:  "VADDPS ymm1, ymm2, ymm3/m256",
			Documentation: "Add packed single-precision values from ymm3/m256 to ymm2.",
		},
	}

	if diff := cmp.Diff(wantDescriptions, got.Descriptions); diff != "" {
		t.Errorf("ParseTSV: descriptions (-want, +got)\n%s", diff)
	}

	if diff := cmp.Diff(wantSignatures, got.Signatures); diff != "" {
		t.Errorf("ParseTSV: signatures (-want, +got)\n%s", diff)
	}

	if !addps.Equal(legacy) {
		t.Errorf("SignatureRow.Equal: rows differing only in line are not equal")
	}

	wantDiags := []Diagnostic{
		{Source: source, Line: 8, Message: "malformed line: got 2 columns, want 4, 5, or 6"},
	}

	if diff := cmp.Diff(wantDiags, diags.List()); diff != "" {
		t.Errorf("ParseTSV: diagnostics (-want, +got)\n%s", diff)
	}
}

func TestParseTSVSkipsMalformed(t *testing.T) {
	text := "ADDPS\txmm1, xmm2\tSSE\tADDPS xmm1, xmm2\tAdd.\n" +
		"ADDPS\txmm1\tSSE\n"
	diags := NewDiagnostics(nil)
	c, err := ParseTSV(strings.NewReader(text), "inline", diags)
	if err != nil {
		t.Fatalf("ParseTSV: got error %v", err)
	}

	if len(c.Signatures) != 1 || len(c.Descriptions) != 0 {
		t.Errorf("ParseTSV: got %d signatures and %d descriptions, want 1 and 0", len(c.Signatures), len(c.Descriptions))
	}

	if diags.Len() != 1 {
		t.Errorf("ParseTSV: got %d diagnostics, want 1", diags.Len())
	}

	if c.Stats.Skipped != 1 {
		t.Errorf("ParseTSV: got %d skipped lines, want 1", c.Stats.Skipped)
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"intrinsics.html":    FormatHTML,
		"INTRINSICS.HTM":     FormatHTML,
		"data.html.gz":       FormatHTML,
		"mnemonics.tsv":      FormatTSV,
		"mnemonics.txt.zst":  FormatTSV,
		"handcrafted.tab":    FormatTSV,
		"catalog.json":       FormatUnknown,
		"no-extension":       FormatUnknown,
		"dir/mnemonics.tsv/": FormatUnknown,
	}

	for path, want := range tests {
		if got := FormatOf(path); got != want {
			t.Errorf("FormatOf(%q): got %v, want %v", path, got, want)
		}
	}
}

func TestOpenCompressed(t *testing.T) {
	const content = "1\tADDPS\tAdd\taddps\n"
	dir := t.TempDir()

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}

	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}

	zst := enc.EncodeAll([]byte(content), nil)
	enc.Close()

	files := map[string][]byte{
		"plain.tsv":      []byte(content),
		"gzipped.tsv.gz": gz.Bytes(),
		"zstd.tsv.zst":   zst,
	}

	var paths []string
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}

		paths = append(paths, path)
	}

	missing := filepath.Join(dir, "missing.tsv")
	paths = append(paths, missing)

	got, err := ReadFiles(context.Background(), paths)
	if err != nil {
		t.Fatalf("ReadFiles: %v", err)
	}

	if len(got) != len(paths) {
		t.Fatalf("ReadFiles: got %d files, want %d", len(got), len(paths))
	}

	for i, file := range got {
		if file.Path != paths[i] {
			t.Errorf("ReadFiles: file %d: got path %q, want %q", i, file.Path, paths[i])
		}

		if file.Path == missing {
			if !errors.Is(file.Err, fs.ErrNotExist) {
				t.Errorf("ReadFiles(%s): got error %v, want a missing file", file.Path, file.Err)
			}

			continue
		}

		if file.Err != nil {
			t.Errorf("ReadFiles(%s): %v", file.Path, file.Err)
			continue
		}

		if string(file.Data) != content {
			t.Errorf("ReadFiles(%s): got %q, want %q", file.Path, file.Data, content)
		}
	}
}

func TestReadFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadFiles(ctx, []string{"testdata/mnemonics.tsv"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadFiles: got error %v, want %v", err, context.Canceled)
	}
}

func TestErrorf(t *testing.T) {
	inner := Errorf("catalog.html", 12, "bad entry")
	if got, want := inner.Error(), "catalog.html:12: bad entry"; got != want {
		t.Errorf("Errorf: got %q, want %q", got, want)
	}

	outer := Errorf("", 0, "loading failed: %v", inner)
	if got, want := outer.Error(), "catalog.html:12: loading failed: bad entry"; got != want {
		t.Errorf("Errorf wrapping: got %q, want %q", got, want)
	}

	plain := Errorf("mnemonics.tsv", 0, "unreadable")
	if got, want := plain.Error(), "mnemonics.tsv: unreadable"; got != want {
		t.Errorf("Errorf without line: got %q, want %q", got, want)
	}
}

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		Diag Diagnostic
		Want string
	}{
		{Diagnostic{Source: "a.tsv", Line: 3, Message: "bad"}, "a.tsv:3: bad"},
		{Diagnostic{Source: "a.html", Entry: 42, Message: "bad"}, "a.html: entry 42: bad"},
		{Diagnostic{Message: "bad"}, "bad"},
	}

	for _, test := range tests {
		if got := test.Diag.String(); got != test.Want {
			t.Errorf("%#v.String(): got %q, want %q", test.Diag, got, test.Want)
		}
	}

	var nilDiags *Diagnostics
	nilDiags.Addf("x", 1, 0, "ignored")
	if nilDiags.Len() != 0 || nilDiags.List() != nil {
		t.Errorf("nil Diagnostics recorded a diagnostic")
	}
}
