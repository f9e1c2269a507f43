// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package intrinsic

import (
	"golang.org/x/sys/cpu"
)

// hostFlags maps the x/sys/cpu detection
// results onto feature flags. Extensions
// that x/sys/cpu does not report, such as
// AVX512_FP16 and AVX512_VP2INTERSECT, are
// never detected.
var hostFlags = []struct {
	Has     *bool
	Feature CpuFeature
}{
	{&cpu.X86.HasSSE2, FeatureMMX | FeatureSSE | FeatureSSE2 | FeatureFXSR | FeatureTSC},
	{&cpu.X86.HasSSE3, FeatureSSE3 | FeatureMONITOR},
	{&cpu.X86.HasSSSE3, FeatureSSSE3},
	{&cpu.X86.HasSSE41, FeatureSSE4_1},
	{&cpu.X86.HasSSE42, FeatureSSE4_2},
	{&cpu.X86.HasPOPCNT, FeaturePOPCNT},
	{&cpu.X86.HasAES, FeatureAES},
	{&cpu.X86.HasPCLMULQDQ, FeaturePCLMULQDQ},
	{&cpu.X86.HasOSXSAVE, FeatureXSAVE},
	{&cpu.X86.HasAVX, FeatureAVX},
	{&cpu.X86.HasAVX2, FeatureAVX2},
	{&cpu.X86.HasFMA, FeatureFMA},
	{&cpu.X86.HasBMI1, FeatureBMI1 | FeatureLZCNT},
	{&cpu.X86.HasBMI2, FeatureBMI2},
	{&cpu.X86.HasADX, FeatureADX},
	{&cpu.X86.HasRDRAND, FeatureRDRAND},
	{&cpu.X86.HasRDSEED, FeatureRDSEED},
	{&cpu.X86.HasAVX512F, FeatureAVX512_F},
	{&cpu.X86.HasAVX512CD, FeatureAVX512_CD},
	{&cpu.X86.HasAVX512ER, FeatureAVX512_ER},
	{&cpu.X86.HasAVX512PF, FeatureAVX512_PF},
	{&cpu.X86.HasAVX512BW, FeatureAVX512_BW},
	{&cpu.X86.HasAVX512DQ, FeatureAVX512_DQ},
	{&cpu.X86.HasAVX512VL, FeatureAVX512_VL},
	{&cpu.X86.HasAVX512IFMA, FeatureAVX512_IFMA52},
	{&cpu.X86.HasAVX512VBMI, FeatureAVX512_VBMI},
	{&cpu.X86.HasAVX512VBMI2, FeatureAVX512_VBMI2},
	{&cpu.X86.HasAVX512VNNI, FeatureAVX512_VNNI},
	{&cpu.X86.HasAVX512BITALG, FeatureAVX512_BITALG},
	{&cpu.X86.HasAVX512VPOPCNTDQ, FeatureAVX512_VPOPCNTDQ},
	{&cpu.X86.HasAVX5124VNNIW, FeatureAVX512_4VNNIW},
	{&cpu.X86.HasAVX5124FMAPS, FeatureAVX512_4FMAPS},
	{&cpu.X86.HasAVX512BF16, FeatureAVX512_BF16},
	{&cpu.X86.HasAVX512GFNI, FeatureGFNI},
	{&cpu.X86.HasAVX512VAES, FeatureVAES},
	{&cpu.X86.HasAVX512VPCLMULQDQ, FeatureVPCLMULQDQ},
	{&cpu.X86.HasAVXVNNI, FeatureAVX_VNNI},
	{&cpu.X86.HasAMXTile, FeatureAMX_TILE},
	{&cpu.X86.HasAMXInt8, FeatureAMX_INT8},
	{&cpu.X86.HasAMXBF16, FeatureAMX_BF16},
}

// HostFeatures returns the features
// supported by the running CPU. On
// other architectures it returns
// FeatureNone.
func HostFeatures() CpuFeature {
	var f CpuFeature
	for _, flag := range hostFlags {
		if *flag.Has {
			f |= flag.Feature
		}
	}

	// F16C is present on every CPU with FMA.
	if f.Has(FeatureFMA) {
		f |= FeatureF16C
	}

	return f
}
