// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package resolve implements the derivation and expansion resolver:
// it turns a raw Device tree, in which registers, fields, and
// clusters may be partially specified and may reference siblings via
// DerivedFrom, into a tree in which every entity is fully specified
// and every dim-expansion has been applied.
//
// Derivation is implemented as name-keyed lookups against a sibling
// table, never as an in-memory pointer graph, so that resolving one
// entity can never entangle the lifetime of another.
package resolve

import (
	"fmt"

	"github.com/ProjectSerenity/svdgen/bitutil"
	"github.com/ProjectSerenity/svdgen/svd"
)

// Result is the output of Resolve: the fully-specified Device tree,
// plus any non-fatal diagnostics collected along the way, such as the
// "partial enumeratedValues on a total-coverage field" warning).
type Result struct {
	Device   *svd.Device
	Warnings []string
}

// Resolve flattens derivedFrom inheritance, expands dim arrays, and
// applies register defaults across dev, returning a new, fully
// resolved Device. dev itself is not mutated.
func Resolve(dev *svd.Device) (*Result, error) {
	r := &resolver{}

	out := &svd.Device{
		Name:     dev.Name,
		CPU:      dev.CPU,
		Defaults: dev.Defaults,
	}

	peripherals, err := r.resolvePeripherals(dev.Peripherals, out.Defaults)
	if err != nil {
		return nil, err
	}

	out.Peripherals = peripherals

	return &Result{Device: out, Warnings: r.warnings}, nil
}

type resolver struct {
	warnings []string
}

func (r *resolver) warnf(path svd.Path, format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf("%s: %s", path, fmt.Sprintf(format, args...)))
}

// resolvePeripherals resolves derivation and expansion for a device's
// peripheral list, in document order.
func (r *resolver) resolvePeripherals(in []svd.Peripheral, devDefaults svd.RegisterDefaults) ([]svd.Peripheral, error) {
	byName := make(map[string]*svd.Peripheral, len(in))
	for i := range in {
		byName[in[i].Name] = &in[i]
	}

	var out []svd.Peripheral
	for i := range in {
		path := svd.Path{in[i].Name}
		resolved, err := r.resolvePeripheral(in[i], byName, devDefaults, path, nil)
		if err != nil {
			return nil, err
		}

		expanded, err := expandPeripheral(resolved, path)
		if err != nil {
			return nil, err
		}

		out = append(out, expanded...)
	}

	return out, nil
}

// resolvePeripheral applies derivation (chasing DerivedFrom chains,
// detecting cycles) and register defaults to a single peripheral.
// Expansion is handled separately, after derivation.
func (r *resolver) resolvePeripheral(p svd.Peripheral, byName map[string]*svd.Peripheral, devDefaults svd.RegisterDefaults, path svd.Path, visiting map[string]bool) (svd.Peripheral, error) {
	if p.DerivedFrom == "" {
		return r.finishPeripheral(p, devDefaults, path)
	}

	if visiting == nil {
		visiting = map[string]bool{}
	}
	if visiting[p.Name] {
		return svd.Peripheral{}, svd.Errorf(path, "derivation cycle detected at %q", p.Name)
	}
	visiting[p.Name] = true

	parent, ok := byName[p.DerivedFrom]
	if !ok {
		return svd.Peripheral{}, svd.Errorf(path, "derivedFrom %q: no such peripheral", p.DerivedFrom)
	}

	// A peripheral that derives from another and defines no register
	// block of its own is a pure alias: it contributes no
	// block, only a typed view of the parent's block. We do not flatten
	// the parent's registers into it; codegen/rust/peripheral.go
	// consults DerivedFrom directly for this case.
	if len(p.Registers) == 0 && len(p.Clusters) == 0 {
		// Follow the rest of the chain by name so that a cycle made
		// up of aliases is still reported.
		for q := parent; q.DerivedFrom != ""; {
			if visiting[q.Name] {
				return svd.Peripheral{}, svd.Errorf(path, "derivation cycle detected at %q", q.Name)
			}
			visiting[q.Name] = true
			next, ok := byName[q.DerivedFrom]
			if !ok {
				return svd.Peripheral{}, svd.Errorf(path, "derivedFrom %q: no such peripheral", q.DerivedFrom)
			}
			q = next
		}

		if p.Defaults == (svd.RegisterDefaults{}) {
			p.Defaults = parent.Defaults
		}
		if p.Description == "" {
			p.Description = parent.Description
		}
		if len(p.Interrupts) == 0 {
			p.Interrupts = parent.Interrupts
		}

		return p, nil
	}

	// The peripheral defines its own block: resolve the parent first
	// (the chain may be several links long) purely to inherit
	// description/defaults/interrupts, and otherwise resolve the
	// child's own registers independently.
	resolvedParent, err := r.resolvePeripheral(*parent, byName, devDefaults, path, visiting)
	if err != nil {
		return svd.Peripheral{}, err
	}

	if p.Description == "" {
		p.Description = resolvedParent.Description
	}
	if p.Defaults == (svd.RegisterDefaults{}) {
		p.Defaults = resolvedParent.Defaults
	}
	if len(p.Interrupts) == 0 {
		p.Interrupts = resolvedParent.Interrupts
	}

	p.DerivedFrom = ""

	return r.finishPeripheral(p, devDefaults, path)
}

func (r *resolver) finishPeripheral(p svd.Peripheral, devDefaults svd.RegisterDefaults, path svd.Path) (svd.Peripheral, error) {
	blockDefaults := mergeDefaults(p.Defaults, devDefaults)

	regs, err := r.resolveRegisters(p.Registers, blockDefaults, path)
	if err != nil {
		return svd.Peripheral{}, err
	}
	p.Registers = regs

	clusters, err := r.resolveClusters(p.Clusters, blockDefaults, path)
	if err != nil {
		return svd.Peripheral{}, err
	}
	p.Clusters = clusters

	return p, nil
}

func (r *resolver) resolveClusters(in []svd.Cluster, parentDefaults svd.RegisterDefaults, path svd.Path) ([]svd.Cluster, error) {
	if len(in) == 0 {
		return nil, nil
	}

	byName := make(map[string]*svd.Cluster, len(in))
	for i := range in {
		byName[in[i].Name] = &in[i]
	}

	var out []svd.Cluster
	for i := range in {
		cPath := path.Push(in[i].Name)
		resolved, err := r.resolveCluster(in[i], byName, parentDefaults, cPath, nil)
		if err != nil {
			return nil, err
		}

		expanded, err := expandCluster(resolved, cPath)
		if err != nil {
			return nil, err
		}

		out = append(out, expanded...)
	}

	return out, nil
}

func (r *resolver) resolveCluster(c svd.Cluster, byName map[string]*svd.Cluster, parentDefaults svd.RegisterDefaults, path svd.Path, visiting map[string]bool) (svd.Cluster, error) {
	defaults := mergeDefaults(c.Defaults, parentDefaults)

	if c.DerivedFrom != "" {
		if visiting == nil {
			visiting = map[string]bool{}
		}
		if visiting[c.Name] {
			return svd.Cluster{}, svd.Errorf(path, "derivation cycle detected at %q", c.Name)
		}
		visiting[c.Name] = true

		parent, ok := byName[c.DerivedFrom]
		if !ok {
			return svd.Cluster{}, svd.Errorf(path, "derivedFrom %q: no such cluster", c.DerivedFrom)
		}

		resolvedParent, err := r.resolveCluster(*parent, byName, parentDefaults, path, visiting)
		if err != nil {
			return svd.Cluster{}, err
		}

		if c.Description == "" {
			c.Description = resolvedParent.Description
		}
		if len(c.Registers) == 0 {
			c.Registers = resolvedParent.Registers
		}
		if len(c.Clusters) == 0 {
			c.Clusters = resolvedParent.Clusters
		}

		c.DerivedFrom = ""
	}

	regs, err := r.resolveRegisters(c.Registers, defaults, path)
	if err != nil {
		return svd.Cluster{}, err
	}
	c.Registers = regs

	nested, err := r.resolveClusters(c.Clusters, defaults, path)
	if err != nil {
		return svd.Cluster{}, err
	}
	c.Clusters = nested

	return c, nil
}

// resolveRegisters resolves derivation and default inheritance for a
// sibling group of registers (a register block or a cluster's
// contents), then expands each register once its fully-derived shape
// is known, and returns the expanded list sorted by address offset.
func (r *resolver) resolveRegisters(in []svd.Register, defaults svd.RegisterDefaults, path svd.Path) ([]svd.Register, error) {
	byName := make(map[string]*svd.Register, len(in))
	for i := range in {
		byName[in[i].Name] = &in[i]
	}

	var out []svd.Register
	for i := range in {
		regPath := path.Push(in[i].Name)
		resolved, err := r.resolveRegister(in[i], byName, regPath, nil)
		if err != nil {
			return nil, err
		}

		applyRegisterDefaults(&resolved, defaults)

		fields, err := r.resolveFields(resolved.Fields, resolved, regPath)
		if err != nil {
			return nil, err
		}
		resolved.Fields = fields

		expanded, err := expandRegister(resolved, regPath)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}

	return sortRegisters(out), nil
}

func (r *resolver) resolveRegister(reg svd.Register, byName map[string]*svd.Register, path svd.Path, visiting map[string]bool) (svd.Register, error) {
	if reg.DerivedFrom == "" {
		return reg, nil
	}

	if visiting == nil {
		visiting = map[string]bool{}
	}
	if visiting[reg.Name] {
		return svd.Register{}, svd.Errorf(path, "derivation cycle detected at %q", reg.Name)
	}
	visiting[reg.Name] = true

	parent, ok := byName[reg.DerivedFrom]
	if !ok {
		return svd.Register{}, svd.Errorf(path, "derivedFrom %q: no such register", reg.DerivedFrom)
	}

	resolvedParent, err := r.resolveRegister(*parent, byName, path, visiting)
	if err != nil {
		return svd.Register{}, err
	}

	ownShape := len(reg.Fields) > 0 || reg.Width != nil || reg.Access != nil ||
		reg.ResetValue != nil || reg.ResetMask != nil

	if reg.Description == "" {
		reg.Description = resolvedParent.Description
	}
	if reg.Width == nil {
		reg.Width = resolvedParent.Width
	}
	if reg.Access == nil {
		reg.Access = resolvedParent.Access
	}
	if reg.ResetValue == nil {
		reg.ResetValue = resolvedParent.ResetValue
	}
	if reg.ResetMask == nil {
		reg.ResetMask = resolvedParent.ResetMask
	}
	if len(reg.Fields) == 0 {
		reg.Fields = resolvedParent.Fields
	}
	if reg.Dim == nil {
		reg.Dim = resolvedParent.Dim
	}

	// A register that inherits its parent's shape wholesale keeps the
	// derivation edge so that codegen aliases the parent's marker type
	// instead of minting an identical one. The edge always names the
	// root of the chain: the resolved parent's own edge, if it kept
	// one, already does (no alias ever points at another alias). A
	// register that overrides any part of its parent's shape, or
	// expands on its own, is a distinct type and drops the edge.
	if ownShape || reg.Dim != nil {
		reg.DerivedFrom = ""
	} else if resolvedParent.DerivedFrom != "" {
		reg.DerivedFrom = resolvedParent.DerivedFrom
	}

	return reg, nil
}

func (r *resolver) resolveFields(in []svd.Field, reg svd.Register, path svd.Path) ([]svd.Field, error) {
	byName := make(map[string]*svd.Field, len(in))
	for i := range in {
		byName[in[i].Name] = &in[i]
	}

	var out []svd.Field
	for i := range in {
		fPath := path.Push(in[i].Name)
		resolved, err := r.resolveField(in[i], byName, fPath, nil)
		if err != nil {
			return nil, err
		}

		if resolved.BitOffset+resolved.BitWidth > regWidth(reg) {
			return nil, svd.Errorf(fPath, "field extends past register width (offset %d + width %d > %d)", resolved.BitOffset, resolved.BitWidth, regWidth(reg))
		}

		if resolved.Access != svd.InvalidAccess && reg.Access != nil {
			if fieldAccessBroader(resolved.Access, *reg.Access) {
				r.warnf(fPath, "field access %s is broader than enclosing register access %s", resolved.Access, *reg.Access)
			}
		}

		for _, set := range []*svd.EnumeratedValues{resolved.Read, resolved.Write} {
			if set == nil {
				continue
			}
			for _, v := range set.Values {
				if !bitutil.FitsValue(v.Value, resolved.BitWidth) {
					return nil, svd.Errorf(fPath, "enumerated value %q (%d) exceeds field width %d", v.Name, v.Value, resolved.BitWidth)
				}
			}

			if !set.TotalCoverage(resolved.BitWidth) {
				r.warnf(fPath, "enumeratedValues %q does not cover the full range of a %d-bit field; emitting a partial Variant", set.Name, resolved.BitWidth)
			}
		}

		out = append(out, resolved)
	}

	if err := checkFieldOverlap(out, path); err != nil {
		return nil, err
	}

	return out, nil
}

// checkFieldOverlap rejects any pair of fields whose bit ranges
// intersect, unless at least one of the pair is marked as an
// alternate (alternates deliberately share bits under distinct
// names).
func checkFieldOverlap(fields []svd.Field, path svd.Path) error {
	for i := range fields {
		for j := i + 1; j < len(fields); j++ {
			a, b := &fields[i], &fields[j]
			if a.BitOffset+a.BitWidth <= b.BitOffset || b.BitOffset+b.BitWidth <= a.BitOffset {
				continue
			}
			if a.Alternate || b.Alternate {
				continue
			}

			return svd.Errorf(path.Push(a.Name), "field overlaps %q (bits [%d,%d) and [%d,%d)) and neither is an alternate",
				b.Name, a.BitOffset, a.BitOffset+a.BitWidth, b.BitOffset, b.BitOffset+b.BitWidth)
		}
	}

	return nil
}

func (r *resolver) resolveField(f svd.Field, byName map[string]*svd.Field, path svd.Path, visiting map[string]bool) (svd.Field, error) {
	if f.DerivedFrom == "" {
		return f, nil
	}

	if visiting == nil {
		visiting = map[string]bool{}
	}
	if visiting[f.Name] {
		return svd.Field{}, svd.Errorf(path, "derivation cycle detected at %q", f.Name)
	}
	visiting[f.Name] = true

	parent, ok := byName[f.DerivedFrom]
	if !ok {
		return svd.Field{}, svd.Errorf(path, "derivedFrom %q: no such field", f.DerivedFrom)
	}

	resolvedParent, err := r.resolveField(*parent, byName, path, visiting)
	if err != nil {
		return svd.Field{}, err
	}

	if f.Description == "" {
		f.Description = resolvedParent.Description
	}
	if f.Access == svd.InvalidAccess {
		f.Access = resolvedParent.Access
	}
	if f.Read == nil {
		f.Read = resolvedParent.Read
	}
	if f.Write == nil {
		f.Write = resolvedParent.Write
	}

	f.DerivedFrom = ""

	return f, nil
}

// fieldAccessBroader reports whether field access grants an operation
// (read or write) that the enclosing register's access does not,
// which is left as an ambiguous, warning-only condition.
func fieldAccessBroader(field, reg svd.Access) bool {
	return (field.Readable() && !reg.Readable()) || (field.Writable() && !reg.Writable())
}

func regWidth(reg svd.Register) uint {
	if reg.Width == nil {
		return 32
	}

	return *reg.Width
}
