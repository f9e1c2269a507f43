// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package compat decides whether intrinsics are
// available under a set of enabled CPU features.
//
// Catalog entries often list alternative or
// overlapping features rather than a strict
// conjunction, so an intrinsic is enabled if any
// of its features is enabled. The vendor math
// library (SVML) is the exception: it must always
// be enabled explicitly.
package compat

import (
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/intrinsic"
)

// Enabled returns whether an intrinsic that
// requires the features in required can be
// used when the features in enabled are
// enabled.
func Enabled(required, enabled intrinsic.CpuFeature) bool {
	if required == intrinsic.FeatureNone {
		return true
	}

	if required.Has(intrinsic.FeatureSVML) {
		return enabled.Has(intrinsic.FeatureSVML)
	}

	return required.Intersects(enabled)
}

// Offered returns whether an intrinsic with
// the aggregated features in required should
// be offered in a completion list when the
// features in enabled are enabled. This is
// stricter than Enabled: required must
// include every enabled feature.
func Offered(required, enabled intrinsic.CpuFeature) bool {
	if required == intrinsic.FeatureNone {
		return true
	}

	if required.Has(intrinsic.FeatureSVML) && !enabled.Has(intrinsic.FeatureSVML) {
		return false
	}

	return required.Has(enabled)
}

// Filter applies a user's feature settings.
type Filter struct {
	Enabled intrinsic.CpuFeature // The enabled features.
	HideMMX bool                 // Hide intrinsics that use MMX registers.
}

// Visible returns whether name, with the
// aggregated features in required, should
// appear in a completion list.
func (f Filter) Visible(name intrinsic.Intrinsic, required intrinsic.CpuFeature) bool {
	if f.HideMMX && intrinsic.UsesMMX(name) {
		return false
	}

	return Offered(required, f.Enabled)
}

// Usable returns whether an intrinsic that
// requires the features in required is
// enabled.
func (f Filter) Usable(required intrinsic.CpuFeature) bool {
	return Enabled(required, f.Enabled)
}
