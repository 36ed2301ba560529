// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package svd defines the in-memory Device tree that the generator
// consumes: Device, Peripheral, Cluster, Register, Field, and
// EnumeratedValues, plus the breadcrumb Path used in diagnostics.
//
// The SVD parser (an external collaborator, not part of this module)
// is responsible for producing a Device value; svd itself performs no
// XML handling. Entities are mutated only by the resolve package and
// are otherwise immutable for the remainder of generation.
package svd

// Access describes who may perform which operations on a register or
// field.
type Access uint8

const (
	// InvalidAccess marks an Access that has not yet been resolved
	// against defaults; it must never appear in a fully-resolved tree.
	InvalidAccess Access = iota
	ReadOnly
	WriteOnly
	ReadWrite
	WriteOnce
	ReadWriteOnce
)

// Readable reports whether a accepts read operations.
func (a Access) Readable() bool {
	switch a {
	case ReadOnly, ReadWrite, ReadWriteOnce:
		return true
	default:
		return false
	}
}

// Writable reports whether a accepts write operations.
func (a Access) Writable() bool {
	switch a {
	case WriteOnly, ReadWrite, WriteOnce, ReadWriteOnce:
		return true
	default:
		return false
	}
}

// WriteOnceOnly reports whether a may be written at most once, after
// which further writes have undefined effect (the register value may
// no longer be readable once written, in the write-once case).
func (a Access) WriteOnceOnly() bool {
	return a == WriteOnce || a == ReadWriteOnce
}

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case ReadWrite:
		return "read-write"
	case WriteOnce:
		return "write-once"
	case ReadWriteOnce:
		return "read-write-once"
	default:
		return "unresolved"
	}
}

// Dim describes a repeated entity: an array or dim-list expansion of
// a Peripheral, Cluster, or Register.
type Dim struct {
	// Count is the number of repetitions.
	Count uint64

	// Increment is the address step between repetitions.
	Increment uint64

	// Index, if non-empty, supplies the substitution string for each
	// repetition (SVD's dimIndex). It must have exactly Count entries
	// when set; when empty, the decimal index 0..Count-1 is used.
	Index []string
}

// Name returns the expanded name for repetition i (0-based), replacing
// the first "%s" placeholder in pattern with the dim index string.
func (d *Dim) Name(pattern string, i int) string {
	sub := indexString(d, i)
	return substitutePlaceholder(pattern, sub)
}

func indexString(d *Dim, i int) string {
	if d != nil && len(d.Index) > i {
		return d.Index[i]
	}

	return decimal(i)
}

// EnumeratedValue is a single named bit-pattern within an
// EnumeratedValues set.
type EnumeratedValue struct {
	Name        string
	Value       uint64
	Description string
}

// Usage describes which register operations an EnumeratedValues set
// applies to.
type Usage uint8

const (
	UsageReadWrite Usage = iota
	UsageRead
	UsageWrite
)

// EnumeratedValues is a named, ordered set of legal bit-patterns for a
// field.
type EnumeratedValues struct {
	Name   string
	Usage  Usage
	Values []EnumeratedValue
}

// TotalCoverage reports whether the set enumerates all 2^width
// bit-patterns for a field of the given width.
func (e *EnumeratedValues) TotalCoverage(width uint) bool {
	if e == nil {
		return false
	}

	seen := make(map[uint64]bool, len(e.Values))
	for _, v := range e.Values {
		seen[v.Value] = true
	}

	total := uint64(1) << width
	return uint64(len(seen)) == total
}

// Field is a contiguous bit range within a Register.
type Field struct {
	Name        string
	Description string
	BitOffset   uint
	BitWidth    uint

	// Access, when InvalidAccess, inherits the enclosing register's
	// access; when set, it narrows the register's access for this
	// field alone. An access broader than the register's is ambiguous
	// and resolve only warns about it.
	Access Access

	// Read and Write are the enumeratedValues sets that apply to this
	// field's reader and writer respectively. SVD allows a single
	// <enumeratedValues> with usage="read-write" to serve both; in
	// that case Read and Write point to the same value.
	Read  *EnumeratedValues
	Write *EnumeratedValues

	// DerivedFrom, before resolution, names a sibling field (within
	// the same register) to copy unset attributes from.
	DerivedFrom string

	// Alternate marks a field that shares bits with another field in
	// the same register (SVD's alternateGroup). Overlap between two
	// fields is only legal when at least one of them is an alternate.
	Alternate bool
}

// Register is a fixed-width, fixed-offset word within a Peripheral or
// Cluster.
type Register struct {
	Name          string
	Description   string
	AddressOffset uint64

	// Width, Access, ResetValue, and ResetMask are pointers before
	// resolution so that resolve can distinguish "unset, inherit a
	// default" from "explicitly zero".
	Width      *uint
	Access     *Access
	ResetValue *uint64
	ResetMask  *uint64

	Fields []Field

	// Dim, when set, marks this Register (or the Cluster holding it)
	// as a repeated entity to be expanded by resolve. After
	// expansion, Dim still points at the (shared) descriptor so that
	// codegen can recognize sibling instances and emit one marker
	// type plus an indexable view, and DimIndex gives
	// this instance's position within that expansion.
	Dim      *Dim
	DimIndex int

	// DimPattern preserves the pre-expansion name pattern (with its
	// "%s" placeholder) on each expanded instance, so that codegen can
	// name the one register type an array's instances share.
	DimPattern string

	// DerivedFrom names another register in the same register block
	// to copy unset attributes from, before expansion. It survives
	// resolution when the register inherits its parent's shape
	// wholesale, so that codegen can alias the parent's marker type
	// instead of minting an identical one.
	DerivedFrom string

	// Alternate marks a register that shares its address offset with
	// another (an SVD "alternate register"): fields may share bits,
	// and the two registers emit distinct names rather than colliding.
	Alternate bool
}

// Cluster is a named, offset-relative grouping that introduces a
// nested register namespace.
type Cluster struct {
	Name          string
	Description   string
	AddressOffset uint64

	Registers []Register
	Clusters  []Cluster

	Defaults RegisterDefaults

	Dim         *Dim
	DerivedFrom string
}

// Interrupt is a single interrupt line contributed by a Peripheral.
type Interrupt struct {
	Name        string
	Value       int
	Description string
}

// RegisterDefaults holds fallback register attributes inherited, in
// order, from an enclosing Cluster, Peripheral, or the Device itself.
type RegisterDefaults struct {
	Width      *uint
	Access     *Access
	ResetValue *uint64
	ResetMask  *uint64
}

// Peripheral is a named block of memory-mapped registers at a base
// address.
type Peripheral struct {
	Name        string
	Description string
	BaseAddress uint64

	// DerivedFrom, when set, names another peripheral this one is a
	// clone of (selectively overridden by the fields this Peripheral
	// does define).
	DerivedFrom string

	Registers  []Register
	Clusters   []Cluster
	Interrupts []Interrupt

	Defaults RegisterDefaults

	// Dim and DimIndex record, after expansion, which peripheral array
	// this instance belongs to and at what position. Codegen does not
	// consult them: each expanded instance is rendered as its own
	// module with its own RegisterBlock.
	Dim      *Dim
	DimIndex int
}

// CPU describes the device's processor core, when SVD provides one.
type CPU struct {
	Name         string
	Vendor       string
	NVICPrioBits uint8
	FPUPresent   bool
}

// Device is the root of the resolved hardware description.
type Device struct {
	Name string
	CPU  *CPU

	Peripherals []Peripheral

	Defaults RegisterDefaults
}
