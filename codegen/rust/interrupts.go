// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package rust

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ProjectSerenity/svdgen/ident"
	"github.com/ProjectSerenity/svdgen/svd"
)

// interruptEntry is one deduplicated, sorted interrupt line contributed
// by some peripheral.
type interruptEntry struct {
	Name        string
	Value       int
	Description string
}

// collectInterrupts gathers every interrupt contributed by peripherals
// and sorts by number. Two entries with the same number and name are
// deduplicated; the same number under two names is an error.
func collectInterrupts(peripherals []svd.Peripheral) ([]interruptEntry, error) {
	var entries []interruptEntry
	seen := make(map[int]interruptEntry)

	for _, p := range peripherals {
		for _, irq := range p.Interrupts {
			if prev, ok := seen[irq.Value]; ok {
				if prev.Name == irq.Name {
					continue
				}

				return nil, svd.Errorf(svd.Path{p.Name, irq.Name}, "interrupt number %d is used by both %q and %q", irq.Value, prev.Name, irq.Name)
			}

			e := interruptEntry{Name: irq.Name, Value: irq.Value, Description: irq.Description}
			seen[irq.Value] = e
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Value < entries[j].Value })

	return entries, nil
}

// generateInterrupts renders the `Interrupt` enumeration, the
// feature-gated vector table, and the linker fragment declaring a
// PROVIDE fallback to DefaultHandler for every entry.
//
// The vector table's weak-default behaviour is not expressed as a Rust
// attribute (stable Rust has none for this): each interrupt handler is
// declared as an ordinary external symbol, and it is the returned
// linker fragment's job to PROVIDE a fallback definition. The runtime
// crate supplies the trampolines that turn a vector-table entry into
// a call; this generator only lays the table out.
func generateInterrupts(peripherals []svd.Peripheral, target Target) (code, linkerFragment string, err error) {
	entries, err := collectInterrupts(peripherals)
	if err != nil {
		return "", "", err
	}
	if len(entries) == 0 {
		return "", "", nil
	}

	var buf strings.Builder
	buf.WriteString("/// Enumeration of all the device's interrupts.\n")
	buf.WriteString("#[derive(Copy, Clone, Debug, PartialEq, Eq)]\n")
	buf.WriteString("#[repr(i16)]\n")
	buf.WriteString("pub enum Interrupt {\n")
	for _, e := range entries {
		if e.Description != "" {
			fmt.Fprintf(&buf, "    /// %d - %s\n", e.Value, e.Description)
		} else {
			fmt.Fprintf(&buf, "    /// %d\n", e.Value)
		}
		fmt.Fprintf(&buf, "    %s = %d,\n", ident.Scream(e.Name), e.Value)
	}
	buf.WriteString("}\n\n")

	if target == CortexM {
		buf.WriteString("unsafe impl cortex_m::interrupt::InterruptNumber for Interrupt {\n")
		buf.WriteString("    #[inline(always)]\n    fn number(self) -> u16 {\n        self as i16 as u16\n    }\n}\n\n")
	}

	buf.WriteString("#[cfg(feature = \"rt\")]\nmod interrupt_vector {\n")
	for _, e := range entries {
		fmt.Fprintf(&buf, "    extern \"C\" {\n        fn %s();\n    }\n", ident.Scream(e.Name))
	}
	buf.WriteString("\n    #[derive(Copy, Clone)]\n    #[repr(C)]\n    union Vector {\n        handler: unsafe extern \"C\" fn(),\n        reserved: u32,\n    }\n\n")

	byNumber := make(map[int]interruptEntry, len(entries))
	maxNum := entries[len(entries)-1].Value
	for _, e := range entries {
		byNumber[e.Value] = e
	}

	fmt.Fprintf(&buf, "    #[link_section = \".vector_table.interrupts\"]\n")
	buf.WriteString("    #[no_mangle]\n")
	fmt.Fprintf(&buf, "    pub static __INTERRUPTS: [Vector; %d] = [\n", maxNum+1)
	for n := 0; n <= maxNum; n++ {
		if e, ok := byNumber[n]; ok {
			fmt.Fprintf(&buf, "        Vector { handler: %s }, // %d: %s\n", ident.Scream(e.Name), n, e.Name)
		} else {
			fmt.Fprintf(&buf, "        Vector { reserved: 0 }, // %d: reserved\n", n)
		}
	}
	buf.WriteString("    ];\n}\n\n")

	var lf strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&lf, "PROVIDE(%s = DefaultHandler);\n", ident.Scream(e.Name))
	}

	return buf.String(), lf.String(), nil
}
