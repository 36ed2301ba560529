// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package rust

// Output is the generator's result for a single Device.
type Output struct {
	// Code is the primary output: a single Rust compilation unit.
	Code string

	// FeatureFlags lists one entry per peripheral, in the order they
	// were emitted, present only when Options.Conditional is set
	// (secondary output).
	FeatureFlags []string

	// GenericModuleSource holds the fixed generic façade's source,
	// populated only when Options.GenericMod is set (the caller is
	// responsible for writing it to the sibling `generic.rs` file;
	// file output itself is out of scope for this generator).
	GenericModuleSource string

	// Warnings carries non-fatal diagnostics collected while
	// resolving and generating the device, such as the
	// downgraded "partial enumeratedValues on a total-coverage field"
	// warning and the "field access broader than register
	// access" warning.
	Warnings []string
}
