// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package rust

import (
	"fmt"
	"strings"

	"github.com/ProjectSerenity/svdgen/bitutil"
	"github.com/ProjectSerenity/svdgen/ident"
	"github.com/ProjectSerenity/svdgen/resolve"
	"github.com/ProjectSerenity/svdgen/svd"
)

// coreCortexMPeripherals lists the Cortex-M core peripheral names that
// ship in cortex_m::peripheral and are re-exported rather than
// regenerated.
var coreCortexMPeripherals = []string{
	"CBP", "CPUID", "DCB", "DWT", "FPB", "FPU", "ITM", "MPU", "NVIC", "SCB", "SYST", "TPIU",
}

// isCoreCortexMPeripheral reports whether name (already upper-cased by
// the caller) matches a Cortex-M core peripheral that fpuPresent makes
// available. FPU itself is dropped from the list when the CPU
// descriptor says no FPU is present.
func isCoreCortexMPeripheral(upperName string, fpuPresent bool) bool {
	for _, name := range coreCortexMPeripherals {
		if name == "FPU" && !fpuPresent {
			continue
		}
		if name == upperName {
			return true
		}
	}

	return false
}

// Generate renders dev into a single Rust compilation unit per the
// given Options: it resolves derivation and expansion, then assembles
// the crate preamble, the interrupt table, the core-peripheral
// re-exports, the generic façade, every non-core peripheral, and the
// Peripherals singleton, in that order.
//
// linkerFragment receives the PROVIDE(... = DefaultHandler) fragment
// for the interrupt table, appended to whatever it already held; pass
// a pointer to an empty string if the caller has no fragment of its
// own to prepend.
//
// Generate performs no file I/O: the caller is responsible for
// writing Output.Code, Output.GenericModuleSource (if
// Options.GenericMod), and *linkerFragment to disk.
func Generate(dev *svd.Device, opts Options, linkerFragment *string) (*Output, error) {
	res, err := resolve.Resolve(dev)
	if err != nil {
		return nil, err
	}

	resolved := res.Device

	fpuPresent := true
	if resolved.CPU != nil {
		fpuPresent = resolved.CPU.FPUPresent
	}

	out := &Output{Warnings: res.Warnings}

	var buf strings.Builder

	writeCratePreamble(&buf, resolved, opts)

	interruptCode, fragment, err := generateInterrupts(resolved.Peripherals, opts.Target)
	if err != nil {
		return nil, err
	}
	buf.WriteString(interruptCode)
	*linkerFragment += fragment

	writeCorePeripheralReexports(&buf, opts.Target, fpuPresent)

	writeGenericModule(&buf, opts)

	var kept []svd.Peripheral
	moduleNames := make(map[string]string, len(resolved.Peripherals))
	for _, p := range resolved.Peripherals {
		if opts.Target == CortexM && isCoreCortexMPeripheral(strings.ToUpper(p.Name), fpuPresent) {
			// Core peripherals are handled by the re-export above.
			continue
		}

		// A peripheral with no register block and no derivation has
		// nothing to generate, so it gets no module and no field in
		// the Peripherals struct.
		if len(p.Registers) == 0 && len(p.Clusters) == 0 && p.DerivedFrom == "" {
			continue
		}

		snake := ident.Snake(p.Name)
		if prev, ok := moduleNames[snake]; ok && prev != p.Name {
			return nil, svd.Errorf(svd.Path{resolved.Name, p.Name}, "peripheral name sanitizes to %q, colliding with peripheral %q", snake, prev)
		}
		moduleNames[snake] = p.Name

		periphSrc, err := generatePeripheral(p, opts)
		if err != nil {
			return nil, err
		}
		buf.WriteString(periphSrc)

		kept = append(kept, p)

		if opts.Conditional {
			out.FeatureFlags = append(out.FeatureFlags, ident.Snake(p.Name))
		}
	}

	buf.WriteString(renderPeripheralsStruct(kept, opts))

	if opts.GenericMod {
		out.GenericModuleSource = genericModuleSource
	}

	out.Code = buf.String()

	return out, nil
}

// writeCratePreamble renders the crate-level attributes, doc comment,
// optional NVIC_PRIO_BITS constant, and target-specific extern-crate
// lines.
func writeCratePreamble(buf *strings.Builder, dev *svd.Device, opts Options) {
	if opts.Target == MSP430 && opts.Nightly {
		buf.WriteString("#![feature(abi_msp430_interrupt)]\n")
	}

	fmt.Fprintf(buf, "//! Peripheral access API for %s microcontrollers.\n", strings.ToUpper(dev.Name))
	buf.WriteString("#![deny(missing_docs)]\n")
	buf.WriteString("#![allow(non_camel_case_types)]\n")
	buf.WriteString("#![no_std]\n\n")

	switch opts.Target {
	case CortexM:
		buf.WriteString("extern crate cortex_m;\n#[cfg(feature = \"rt\")]\nextern crate cortex_m_rt;\n\n")
	case MSP430:
		buf.WriteString("extern crate msp430;\n#[cfg(feature = \"rt\")]\nextern crate msp430_rt;\n#[cfg(feature = \"rt\")]\npub use msp430_rt::default_handler;\n\n")
	case RISCV:
		buf.WriteString("extern crate riscv;\n#[cfg(feature = \"rt\")]\nextern crate riscv_rt;\n\n")
	}

	buf.WriteString("extern crate bare_metal;\nextern crate vcell;\n\nuse core::ops::Deref;\nuse core::marker::PhantomData;\n\n")

	if dev.CPU != nil {
		fmt.Fprintf(buf, "/// The number of bits available in the NVIC for configuring priority.\npub const NVIC_PRIO_BITS: u8 = %s;\n\n", bitutil.Unsuffixed(uint64(dev.CPU.NVICPrioBits)))
	}
}

// writeCorePeripheralReexports re-exports the Cortex-M core peripheral
// set from cortex_m::peripheral, dropping FPU if fpuPresent is false;
// no other target ships a standard core-peripheral library, so on
// every other target no core peripherals are re-exported.
func writeCorePeripheralReexports(buf *strings.Builder, target Target, fpuPresent bool) {
	if target != CortexM {
		return
	}

	buf.WriteString("pub use cortex_m::peripheral::Peripherals as CorePeripherals;\n")
	buf.WriteString("#[cfg(feature = \"rt\")]\npub use cortex_m_rt::interrupt;\n")
	buf.WriteString("#[cfg(feature = \"rt\")]\npub use self::Interrupt as interrupt;\n\n")

	buf.WriteString("pub use cortex_m::peripheral::{\n")
	for _, name := range coreCortexMPeripherals {
		if name == "FPU" && !fpuPresent {
			continue
		}
		fmt.Fprintf(buf, "    %s,\n", name)
	}
	buf.WriteString("};\n\n")
}

// writeGenericModule splices in the fixed generic façade: inlined
// under a nested `generic` module when Options.GenericMod is false, or
// referenced by path (with the source handed back via
// Output.GenericModuleSource) when true.
func writeGenericModule(buf *strings.Builder, opts Options) {
	if opts.GenericMod {
		buf.WriteString("mod generic;\n#[allow(unused_imports)]\npub use generic::*;\n\n")
		return
	}

	buf.WriteString("#[allow(unused_imports)]\npub use generic::*;\n")
	buf.WriteString("/// Common register and bit access and modify traits.\npub mod generic {\n")
	buf.WriteString(indent(genericModuleSource, "    "))
	buf.WriteString("\n}\n\n")
}
