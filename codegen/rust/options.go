// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package rust implements the Rust-targeting components of the
// generator: the generic façade, the field generator, the register
// generator, the peripheral and device assembler, the interrupt
// table, and the emission driver that concatenates their output into
// a single compilation unit.
package rust

// Target selects the microcontroller family the generated crate
// targets, which in turn selects the crate preamble, the
// critical-section primitive backing `Peripherals::take`, the
// core-peripheral re-exports, and the interrupt-table layout.
type Target uint8

const (
	// None targets no specific core. It has no known critical-section
	// primitive, so `take` is not emitted.
	None Target = iota
	CortexM
	MSP430
	RISCV
)

func (t Target) String() string {
	switch t {
	case CortexM:
		return "cortex-m"
	case MSP430:
		return "msp430"
	case RISCV:
		return "riscv"
	default:
		return "none"
	}
}

// criticalSectionCrate returns the crate whose `interrupt::free`
// furnishes the critical section `take` runs inside.
func (t Target) criticalSectionCrate() string {
	switch t {
	case CortexM:
		return "cortex_m"
	case MSP430:
		return "msp430"
	case RISCV:
		return "riscv"
	default:
		return ""
	}
}

// Options is the generator's configuration record.
type Options struct {
	// Target selects the microcontroller family.
	Target Target

	// Nightly permits emission of constructs that require unstable
	// language features (e.g. MSP430's interrupt ABI attribute).
	Nightly bool

	// GenericMod, when true, moves the generic façade to a sibling
	// module referenced by path instead of inlining it under a nested
	// module. This generator performs no file I/O, so the façade
	// source is instead returned via Output.GenericModuleSource for
	// the caller to write.
	GenericMod bool

	// Conditional, when true, gates each peripheral (and its field in
	// the Peripherals struct) behind a feature flag named after its
	// snake_case identifier.
	Conditional bool
}
