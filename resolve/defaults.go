// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package resolve

import (
	"github.com/ProjectSerenity/svdgen/bitutil"
	"github.com/ProjectSerenity/svdgen/svd"
)

// mergeDefaults fills any unset field of child from parent, giving
// the cluster → peripheral → device fallback chain
// describes.
func mergeDefaults(child, parent svd.RegisterDefaults) svd.RegisterDefaults {
	if child.Width == nil {
		child.Width = parent.Width
	}
	if child.Access == nil {
		child.Access = parent.Access
	}
	if child.ResetValue == nil {
		child.ResetValue = parent.ResetValue
	}
	if child.ResetMask == nil {
		child.ResetMask = parent.ResetMask
	}

	return child
}

// applyRegisterDefaults fills any of reg's unset width, access, reset
// value, or reset mask from defaults, and then from the final
// hard-coded fallback: 32-bit, read-write, reset 0,
// reset mask all-ones.
func applyRegisterDefaults(reg *svd.Register, defaults svd.RegisterDefaults) {
	if reg.Width == nil {
		reg.Width = defaults.Width
	}
	if reg.Access == nil {
		reg.Access = defaults.Access
	}
	if reg.ResetValue == nil {
		reg.ResetValue = defaults.ResetValue
	}
	if reg.ResetMask == nil {
		reg.ResetMask = defaults.ResetMask
	}

	if reg.Width == nil {
		w := uint(32)
		reg.Width = &w
	}
	if reg.Access == nil {
		a := svd.ReadWrite
		reg.Access = &a
	}
	if reg.ResetValue == nil {
		v := uint64(0)
		reg.ResetValue = &v
	}
	if reg.ResetMask == nil {
		m := bitutil.Mask(*reg.Width)
		reg.ResetMask = &m
	}
}
