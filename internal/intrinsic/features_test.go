// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package intrinsic

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/cpu"
)

func TestFeatureTable(t *testing.T) {
	if len(features) != 64 {
		t.Fatalf("got %d features, want 64", len(features))
	}

	seen := make(map[string]CpuFeature)
	for i, info := range features {
		if want := CpuFeature(1) << i; info.Feature != want {
			t.Errorf("features[%d] (%s): got %#x, want %#x", i, info.Name, uint64(info.Feature), uint64(want))
		}

		key := featureKey(info.Name)
		if other, ok := seen[key]; ok {
			t.Errorf("features[%d] (%s): key %q collides with %s", i, info.Name, key, other.Name())
		}

		seen[key] = info.Feature
	}

	if FeatureSVML != 1<<63 {
		t.Errorf("FeatureSVML: got %#x, want the top bit", uint64(FeatureSVML))
	}
}

func TestParseFeature(t *testing.T) {
	tests := []struct {
		Name string
		Text string
		Want CpuFeature
		OK   bool
	}{
		{Name: "canonical", Text: "AVX512_BW", Want: FeatureAVX512_BW, OK: true},
		{Name: "no separator", Text: "AVX512BW", Want: FeatureAVX512_BW, OK: true},
		{Name: "lower case", Text: "avx512-bw", Want: FeatureAVX512_BW, OK: true},
		{Name: "dotted", Text: "SSE4.1", Want: FeatureSSE4_1, OK: true},
		{Name: "underscore", Text: "sse4_2", Want: FeatureSSE4_2, OK: true},
		{Name: "padded", Text: "  AVX2 ", Want: FeatureAVX2, OK: true},
		{Name: "alias FP16C", Text: "FP16C", Want: FeatureF16C, OK: true},
		{Name: "alias KNC", Text: "KNC", Want: FeatureKNCNI, OK: true},
		{Name: "alias IFMA", Text: "AVX512IFMA", Want: FeatureAVX512_IFMA52, OK: true},
		{Name: "svml", Text: "svml", Want: FeatureSVML, OK: true},
		{Name: "empty", Text: "", Want: FeatureNone, OK: false},
		{Name: "none", Text: "NONE", Want: FeatureNone, OK: false},
		{Name: "unknown", Text: "X64", Want: FeatureNone, OK: false},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got, ok := ParseFeature(test.Text)
			if got != test.Want || ok != test.OK {
				t.Fatalf("ParseFeature(%q): got %v, %v, want %v, %v", test.Text, got, ok, test.Want, test.OK)
			}
		})
	}
}

func TestParseFeatures(t *testing.T) {
	got, unknown := ParseFeatures(" AVX2 , SSE4.1,bogus,, avx512f")
	want := FeatureAVX2 | FeatureSSE4_1 | FeatureAVX512_F
	if got != want {
		t.Errorf("ParseFeatures: got %v, want %v", got, want)
	}

	if diff := cmp.Diff([]string{"bogus"}, unknown); diff != "" {
		t.Errorf("ParseFeatures: unknown tokens (-want, +got)\n%s", diff)
	}
}

func TestFeatureRoundTrip(t *testing.T) {
	sets := []CpuFeature{
		FeatureNone,
		FeatureSSE4_1,
		FeatureSSE4_2 | FeatureAVX2 | FeatureSVML,
		FeatureAVX512_F | FeatureAVX512_VL | FeatureAVX512_BW,
		^FeatureNone,
	}

	for _, info := range Features() {
		sets = append(sets, info.Feature)
	}

	for _, set := range sets {
		got, unknown := ParseFeatures(set.Join(", "))
		if got != set || len(unknown) != 0 {
			t.Errorf("ParseFeatures(%q): got %v (unknown %q), want %v", set.Join(", "), got, unknown, set)
		}
	}
}

func TestFeatureString(t *testing.T) {
	tests := []struct {
		Set  CpuFeature
		Want string
	}{
		{FeatureNone, "NONE"},
		{FeatureAVX2, "AVX2"},
		{FeatureAVX2 | FeatureSSE4_1, "SSE4.1, AVX2"},
		{FeatureSVML | FeatureSSE, "SSE, SVML"},
	}

	for _, test := range tests {
		if got := test.Set.String(); got != test.Want {
			t.Errorf("%#x.String(): got %q, want %q", uint64(test.Set), got, test.Want)
		}
	}

	if got := FeatureSSE4_2.Name(); got != "SSE4_2" {
		t.Errorf("FeatureSSE4_2.Name(): got %q, want %q", got, "SSE4_2")
	}
}

func TestFeatureJSON(t *testing.T) {
	set := FeatureAVX | FeatureSSE2
	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("json.Marshal(%v): %v", set, err)
	}

	if got, want := string(data), `["SSE2","AVX"]`; got != want {
		t.Fatalf("json.Marshal(%v): got %s, want %s", set, got, want)
	}

	var got CpuFeature
	err = json.Unmarshal(data, &got)
	if err != nil {
		t.Fatalf("json.Unmarshal(%s): %v", data, err)
	}

	if got != set {
		t.Fatalf("json.Unmarshal(%s): got %v, want %v", data, got, set)
	}

	err = json.Unmarshal([]byte(`["AVX","X64"]`), &got)
	if err == nil {
		t.Fatalf("json.Unmarshal with unknown feature: got nil error")
	}
}

func TestHostFeatures(t *testing.T) {
	// The result depends on the machine, but
	// it must only contain detectable flags.
	host := HostFeatures()
	if host.Intersects(FeatureSVML | FeatureKNCNI | FeatureAVX512_VP2INTERSECT) {
		t.Fatalf("HostFeatures(): got %v, which includes undetectable flags", host)
	}
}

func TestHostFeatureFlags(t *testing.T) {
	saved := make([]bool, len(hostFlags))
	for i, flag := range hostFlags {
		saved[i] = *flag.Has
		*flag.Has = false
	}

	t.Cleanup(func() {
		for i, flag := range hostFlags {
			*flag.Has = saved[i]
		}
	})

	if got := HostFeatures(); got != FeatureNone {
		t.Fatalf("HostFeatures() with no flags: got %v", got)
	}

	tests := []struct {
		Name string
		Has  *bool
		Want CpuFeature
	}{
		{Name: "SSE4.1", Has: &cpu.X86.HasSSE41, Want: FeatureSSE4_1},
		{Name: "AVX512F", Has: &cpu.X86.HasAVX512F, Want: FeatureAVX512_F},
		{Name: "FMA", Has: &cpu.X86.HasFMA, Want: FeatureFMA | FeatureF16C},
		{Name: "AVX-VNNI", Has: &cpu.X86.HasAVXVNNI, Want: FeatureAVX_VNNI},
		{Name: "AMX-TILE", Has: &cpu.X86.HasAMXTile, Want: FeatureAMX_TILE},
		{Name: "AMX-INT8", Has: &cpu.X86.HasAMXInt8, Want: FeatureAMX_INT8},
		{Name: "AMX-BF16", Has: &cpu.X86.HasAMXBF16, Want: FeatureAMX_BF16},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			*test.Has = true
			defer func() { *test.Has = false }()

			if got := HostFeatures(); got != test.Want {
				t.Fatalf("HostFeatures(): got %v, want %v", got, test.Want)
			}
		})
	}
}
