// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package rust

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ProjectSerenity/svdgen/bitutil"
	"github.com/ProjectSerenity/svdgen/ident"
	"github.com/ProjectSerenity/svdgen/svd"
)

// generatePeripheral renders one fully-resolved peripheral as its own
// Rust module: the padded RegisterBlock, the zero-sized
// handle type and its Deref to RegisterBlock, and every register and
// field nested inside.
//
// Clusters are flattened into the peripheral's own register list
// (their name prefixed onto each contained register's, their address
// offset added in) rather than reproduced as nested Rust structs: SVD
// clusters exist to let a vendor factor out a repeated sub-block, and
// the array-expansion handling already covers the repeated case: a
// cluster with a Dim becomes a run of flattened, distinctly-offset
// registers exactly like a dimmed register does, so no second nested
// addressing scheme is needed to reach the same bytes.
func generatePeripheral(p svd.Peripheral, opts Options) (string, error) {
	modName := ident.Snake(p.Name)
	handle := ident.Scream(p.Name)
	gate := ""
	if opts.Conditional {
		gate = fmt.Sprintf("#[cfg(feature = \"%s\")]\n", modName)
	}

	var buf strings.Builder
	if p.Description != "" {
		fmt.Fprintf(&buf, "/// %s\n", p.Description)
	}
	buf.WriteString(gate)
	fmt.Fprintf(&buf, "pub mod %s {\n", modName)

	// A peripheral left with a DerivedFrom and no registers of its own
	// is a pure alias: it shares the parent's RegisterBlock
	// layout wholesale rather than regenerating an identical one, and
	// only needs its own handle type, since its base address differs.
	if p.DerivedFrom != "" && len(p.Registers) == 0 && len(p.Clusters) == 0 {
		fmt.Fprintf(&buf, "    pub use super::%s::RegisterBlock;\n\n", ident.Snake(p.DerivedFrom))
		buf.WriteString(indent(renderPeripheralHandle(handle, p.BaseAddress), "    "))
		buf.WriteString("}\n\n")
		buf.WriteString(gate)
		fmt.Fprintf(&buf, "pub use %s::%s;\n\n", modName, handle)

		return buf.String(), nil
	}

	registers := flattenClusterRegisters(p.Clusters, "", 0)
	registers = append(registers, p.Registers...)
	sort.SliceStable(registers, func(i, j int) bool { return registers[i].AddressOffset < registers[j].AddressOffset })

	groups := groupRegisters(registers)

	if err := checkRegisterNameCollisions(p.Name, groups); err != nil {
		return "", err
	}

	block, err := renderRegisterBlock(groups)
	if err != nil {
		return "", svd.Errorf(svd.Path{p.Name}, "%v", err)
	}
	buf.WriteString(indent(block, "    "))
	buf.WriteString("\n")

	for _, g := range groups {
		regSrc, err := generateRegisterNamed(g.regs[0], g.name)
		if err != nil {
			return "", svd.Errorf(svd.Path{p.Name}, "%v", err)
		}
		buf.WriteString(indent(regSrc, "    "))

		// Every instance of a gapped array shares the base type's
		// marker through an alias; a contiguous array needs no
		// aliases, its one type backs every element of the block's
		// array field.
		if !g.array && len(g.regs) > 1 {
			for _, inst := range g.regs {
				alias := fmt.Sprintf("/// Alias of `%s`.\npub type %s = crate::generic::Reg<%s, %s_SPEC>;\n\n",
					g.name, ident.Scream(inst.Name), bitutil.Width(*inst.Width).RustType(), ident.Scream(g.name))
				buf.WriteString(indent(alias, "    "))
			}
		}
	}

	buf.WriteString(indent(renderPeripheralHandle(handle, p.BaseAddress), "    "))
	buf.WriteString("}\n\n")

	buf.WriteString(gate)
	fmt.Fprintf(&buf, "pub use %s::%s;\n\n", modName, handle)

	return buf.String(), nil
}

// registerGroup is a maximal run of expanded instances of one dimmed
// register (or a single plain register). A contiguous, complete run
// is emitted as a single indexable array field backed by one shared
// register type; a complete but gapped run keeps per-instance fields,
// every instance aliasing one shared marker named from the pattern;
// an incomplete run is split into single-register groups, each with
// its own marker.
type registerGroup struct {
	regs  []svd.Register
	name  string
	array bool
}

// groupRegisters partitions an offset-sorted register list into
// groups. Instances of one expansion only group when they sit
// adjacent in the sorted order with their indices in sequence;
// an interleaved unrelated register breaks the run and its members
// fall back to per-instance emission.
func groupRegisters(registers []svd.Register) []registerGroup {
	var groups []registerGroup
	for i := 0; i < len(registers); {
		reg := registers[i]
		if reg.Dim == nil || reg.DimIndex != 0 {
			groups = append(groups, registerGroup{regs: registers[i : i+1], name: reg.Name})
			i++
			continue
		}

		run := 1
		for i+run < len(registers) &&
			registers[i+run].Dim == reg.Dim &&
			registers[i+run].DimPattern == reg.DimPattern &&
			registers[i+run].DimIndex == run {
			run++
		}

		if uint64(run) != reg.Dim.Count {
			groups = append(groups, registerGroup{regs: registers[i : i+1], name: reg.Name})
			i++
			continue
		}

		g := registerGroup{
			regs: registers[i : i+run],
			name: strings.Replace(reg.DimPattern, "%s", "", 1),
		}
		if reg.Width != nil && reg.Dim.Increment == uint64(*reg.Width)/8 {
			g.array = true
		}
		groups = append(groups, g)
		i += run
	}

	return groups
}

// checkRegisterNameCollisions rejects two registers of one peripheral
// whose sanitized names coincide, naming both originals.
func checkRegisterNameCollisions(peripheral string, groups []registerGroup) error {
	seen := make(map[string]string)
	for _, g := range groups {
		names := []string{g.name}
		if !g.array {
			for _, inst := range g.regs[1:] {
				names = append(names, inst.Name)
			}
		}
		for _, name := range names {
			snake := ident.Snake(name)
			if prev, ok := seen[snake]; ok && prev != name {
				return svd.Errorf(svd.Path{peripheral, name}, "register name sanitizes to %q, colliding with register %q", snake, prev)
			}
			seen[snake] = name
		}
	}

	return nil
}

// flattenClusterRegisters recursively lowers a peripheral's clusters
// into a flat register list, composing each register's name from its
// enclosing cluster chain and offsetting it by the clusters' combined
// address offset.
func flattenClusterRegisters(clusters []svd.Cluster, prefix string, baseOffset uint64) []svd.Register {
	var out []svd.Register
	for _, c := range clusters {
		clusterPrefix := prefix + ident.Scream(c.Name) + "_"
		clusterOffset := baseOffset + c.AddressOffset

		for _, reg := range c.Registers {
			renamed := reg
			renamed.Name = clusterPrefix + reg.Name
			renamed.AddressOffset = clusterOffset + reg.AddressOffset
			if renamed.DimPattern != "" {
				renamed.DimPattern = clusterPrefix + renamed.DimPattern
			}
			out = append(out, renamed)
		}

		out = append(out, flattenClusterRegisters(c.Clusters, clusterPrefix, clusterOffset)...)
	}

	return out
}

// renderRegisterBlock emits the #[repr(C)] struct describing a
// peripheral's memory layout, filling any gap between consecutive
// registers with an explicit reserved byte array sized so the next
// field's offset lands correctly. Alternate registers share storage
// with whatever register owns their offset, so they become accessor
// methods on the block rather than fields of it.
func renderRegisterBlock(groups []registerGroup) (string, error) {
	var buf strings.Builder
	var alternates strings.Builder
	buf.WriteString("#[repr(C)]\n")
	buf.WriteString("pub struct RegisterBlock {\n")

	var cursor uint64
	reserved := 0
	for _, g := range groups {
		for i, reg := range g.regs {
			if reg.Width == nil {
				return "", svd.Errorf(nil, "register %s has no resolved width", reg.Name)
			}

			name := reg.Name
			if g.array {
				// Array members after the first are covered by the
				// array field; only the first emits it.
				if i > 0 {
					continue
				}
				name = g.name
			}

			if reg.Alternate {
				fmt.Fprintf(&alternates, "    #[doc = \"0x%02x - %s (shares its address with the register above it)\"]\n", reg.AddressOffset, registerDoc(reg))
				fmt.Fprintf(&alternates, "    #[inline(always)]\n    pub fn %s(&self) -> &%s {\n", ident.Snake(name), ident.Scream(name))
				fmt.Fprintf(&alternates, "        unsafe { &*((self as *const Self as *const u8).add(%d) as *const %s) }\n    }\n",
					reg.AddressOffset, ident.Scream(name))
				continue
			}

			if reg.AddressOffset < cursor {
				return "", svd.Errorf(nil, "register %s overlaps the previous register (offset 0x%x, cursor 0x%x)", reg.Name, reg.AddressOffset, cursor)
			}
			if gap := reg.AddressOffset - cursor; gap > 0 {
				reserved++
				fmt.Fprintf(&buf, "    _reserved%d: [u8; %d],\n", reserved, gap)
			}

			if g.array {
				fmt.Fprintf(&buf, "    #[doc = \"0x%02x - %s\"]\n", reg.AddressOffset, registerDoc(reg))
				fmt.Fprintf(&buf, "    pub %s: [%s; %d],\n", ident.Snake(name), ident.Scream(name), len(g.regs))
				cursor = reg.AddressOffset + uint64(len(g.regs))*reg.Dim.Increment
				continue
			}

			fmt.Fprintf(&buf, "    #[doc = \"0x%02x - %s\"]\n", reg.AddressOffset, registerDoc(reg))
			fmt.Fprintf(&buf, "    pub %s: %s,\n", ident.Snake(name), ident.Scream(name))

			cursor = reg.AddressOffset + uint64(*reg.Width)/8
		}
	}

	buf.WriteString("}\n")

	if alternates.Len() > 0 {
		fmt.Fprintf(&buf, "\nimpl RegisterBlock {\n%s}\n", alternates.String())
	}

	return buf.String(), nil
}

func registerDoc(reg svd.Register) string {
	if reg.Description != "" {
		return reg.Description
	}

	return reg.Name + " register"
}

// renderPeripheralHandle emits the zero-sized handle type for a
// peripheral and its Deref to the RegisterBlock at the peripheral's
// base address.
func renderPeripheralHandle(name string, baseAddress uint64) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "/// %s peripheral handle.\n", name)
	buf.WriteString("#[derive(Debug)]\n")
	fmt.Fprintf(&buf, "pub struct %s {\n    _marker: core::marker::PhantomData<*const ()>,\n}\n\n", name)
	fmt.Fprintf(&buf, "unsafe impl Send for %s {}\n\n", name)
	fmt.Fprintf(&buf, "impl %s {\n", name)
	fmt.Fprintf(&buf, "    /// Pointer to the register block.\n    pub const PTR: *const RegisterBlock = %s as *const _;\n\n", bitutil.Hex(baseAddress, bitutil.Width32))
	buf.WriteString("    /// Returns a pointer to the register block.\n    #[inline(always)]\n    pub const fn ptr() -> *const RegisterBlock {\n        Self::PTR\n    }\n}\n\n")
	fmt.Fprintf(&buf, "impl core::ops::Deref for %s {\n    type Target = RegisterBlock;\n\n    #[inline(always)]\n    fn deref(&self) -> &Self::Target {\n        unsafe { &*Self::ptr() }\n    }\n}\n\n", name)

	// A free function rather than an inherent associated one: the
	// handle's _marker field is private to this module, so
	// Peripherals::steal (in the device-level module) cannot build a
	// literal itself and goes through this instead.
	fmt.Fprintf(&buf, "pub(crate) unsafe fn steal() -> %s {\n    %s { _marker: core::marker::PhantomData }\n}\n", name, name)

	return buf.String()
}

// renderPeripheralsStruct emits the device-wide Peripherals singleton
// one field per peripheral, each behind a feature flag when
// opts.Conditional is set, a `take` gated on the target having a
// known critical-section primitive (on targets without one, take is
// not emitted), and a `steal` that is always emitted.
func renderPeripheralsStruct(peripherals []svd.Peripheral, opts Options) string {
	var buf strings.Builder
	buf.WriteString("/// All peripherals available on this device.\n")
	buf.WriteString("pub struct Peripherals {\n")
	for _, p := range peripherals {
		if opts.Conditional {
			fmt.Fprintf(&buf, "    #[cfg(feature = \"%s\")]\n", ident.Snake(p.Name))
		}
		fmt.Fprintf(&buf, "    pub %s: %s,\n", ident.Snake(p.Name), ident.Scream(p.Name))
	}
	buf.WriteString("}\n\n")

	// no_mangle prevents linking different minor versions of the
	// device crate from each minting their own flag, letting you
	// `take` the peripherals more than once (one per minor version).
	buf.WriteString("#[no_mangle]\nstatic mut DEVICE_PERIPHERALS: bool = false;\n\n")

	buf.WriteString("impl Peripherals {\n")
	if crate := opts.Target.criticalSectionCrate(); crate != "" {
		buf.WriteString("    /// Returns the device peripherals, or None if they have already\n    /// been taken.\n")
		buf.WriteString("    #[inline]\n    pub fn take() -> Option<Self> {\n")
		fmt.Fprintf(&buf, "        %s::interrupt::free(|_| unsafe {\n", crate)
		buf.WriteString("            if DEVICE_PERIPHERALS {\n                None\n            } else {\n                Some(Peripherals::steal())\n            }\n        })\n    }\n\n")
	}
	buf.WriteString("    /// Unchecked version of `take`: always returns the peripherals,\n    /// even if they have already been handed out elsewhere.\n")
	buf.WriteString("    #[inline]\n    pub unsafe fn steal() -> Self {\n        DEVICE_PERIPHERALS = true;\n\n        Peripherals {\n")
	for _, p := range peripherals {
		if opts.Conditional {
			fmt.Fprintf(&buf, "            #[cfg(feature = \"%s\")]\n", ident.Snake(p.Name))
		}
		fmt.Fprintf(&buf, "            %s: %s::steal(),\n", ident.Snake(p.Name), ident.Snake(p.Name))
	}
	buf.WriteString("        }\n    }\n}\n")

	return buf.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = prefix + line
	}

	return strings.Join(lines, "\n")
}
