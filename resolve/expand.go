// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package resolve

import (
	"sort"

	"github.com/ProjectSerenity/svdgen/svd"
)

// expandPeripheral duplicates p Dim.Count times if it carries a dim
// descriptor, substituting the placeholder in its name and advancing
// BaseAddress by Dim.Increment per repetition. A peripheral with no
// Dim expands to itself alone.
func expandPeripheral(p svd.Peripheral, path svd.Path) ([]svd.Peripheral, error) {
	if p.Dim == nil {
		return []svd.Peripheral{p}, nil
	}

	if err := validateDim(p.Dim, path); err != nil {
		return nil, err
	}

	out := make([]svd.Peripheral, p.Dim.Count)
	for i := range out {
		inst := p
		inst.Name = p.Dim.Name(p.Name, i)
		inst.BaseAddress = p.BaseAddress + uint64(i)*p.Dim.Increment
		inst.DimIndex = i
		out[i] = inst
	}

	return out, nil
}

// expandCluster mirrors expandPeripheral for clusters: each
// repetition gets its own name and address offset, but shares the
// parent's (already-resolved) register list.
func expandCluster(c svd.Cluster, path svd.Path) ([]svd.Cluster, error) {
	if c.Dim == nil {
		return []svd.Cluster{c}, nil
	}

	if err := validateDim(c.Dim, path); err != nil {
		return nil, err
	}

	out := make([]svd.Cluster, c.Dim.Count)
	for i := range out {
		inst := c
		inst.Name = c.Dim.Name(c.Name, i)
		inst.AddressOffset = c.AddressOffset + uint64(i)*c.Dim.Increment
		out[i] = inst
	}

	return out, nil
}

// expandRegister mirrors expandPeripheral for registers.
func expandRegister(reg svd.Register, path svd.Path) ([]svd.Register, error) {
	if reg.Dim == nil {
		return []svd.Register{reg}, nil
	}

	if err := validateDim(reg.Dim, path); err != nil {
		return nil, err
	}

	out := make([]svd.Register, reg.Dim.Count)
	for i := range out {
		inst := reg
		inst.Name = reg.Dim.Name(reg.Name, i)
		inst.AddressOffset = reg.AddressOffset + uint64(i)*reg.Dim.Increment
		inst.DimIndex = i
		inst.DimPattern = reg.Name
		out[i] = inst
	}

	return out, nil
}

func validateDim(d *svd.Dim, path svd.Path) error {
	if d.Count == 0 {
		return svd.Errorf(path, "dim count must be greater than zero")
	}
	if len(d.Index) != 0 && uint64(len(d.Index)) != d.Count {
		return svd.Errorf(path, "dimIndex has %d entries, want %d", len(d.Index), d.Count)
	}

	return nil
}

// sortRegisters orders registers by address offset for emission,
// breaking ties by original document order: alternate registers share
// an offset but must stay in the order they were declared.
func sortRegisters(in []svd.Register) []svd.Register {
	out := make([]svd.Register, len(in))
	copy(out, in)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AddressOffset < out[j].AddressOffset
	})

	return out
}
