// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package rust

import (
	"strings"
	"testing"

	"github.com/ProjectSerenity/svdgen/svd"
)

func ptr[T any](v T) *T { return &v }

// TestGenerateRegisterReadOnly checks that a read-only register gets
// no Writable impl, so its type has no writer.
func TestGenerateRegisterReadOnly(t *testing.T) {
	reg := svd.Register{
		Name:       "SR",
		Width:      ptr(uint(32)),
		Access:     ptr(svd.ReadOnly),
		ResetValue: ptr(uint64(0)),
		ResetMask:  ptr(uint64(0xffffffff)),
		Fields: []svd.Field{
			{Name: "READY", BitOffset: 3, BitWidth: 1},
		},
	}

	src, err := generateRegister(reg)
	if err != nil {
		t.Fatalf("generateRegister: %v", err)
	}

	if !strings.Contains(src, "impl crate::generic::Readable for SR_SPEC {}") {
		t.Errorf("missing Readable impl:\n%s", src)
	}
	if strings.Contains(src, "impl crate::generic::Writable for SR_SPEC {}") {
		t.Errorf("read-only register must not get a Writable impl:\n%s", src)
	}
	if strings.Contains(src, "impl crate::generic::W<SR>") {
		t.Errorf("read-only register must not get a Writer impl block:\n%s", src)
	}
	if !strings.Contains(src, "pub fn ready(&self) -> crate::generic::R<bool>") {
		t.Errorf("missing ready() boolean proxy accessor:\n%s", src)
	}
}

// TestGenerateRegisterWriteOnly checks that a write-only register
// with a partially-covering enumerated field gets no reader, and the
// Standby variant encodes to 2.
func TestGenerateRegisterWriteOnly(t *testing.T) {
	reg := svd.Register{
		Name:       "CR",
		Width:      ptr(uint(32)),
		Access:     ptr(svd.WriteOnly),
		ResetValue: ptr(uint64(0)),
		ResetMask:  ptr(uint64(0xffffffff)),
		Fields: []svd.Field{
			{
				Name: "MODE", BitOffset: 0, BitWidth: 2,
				Write: &svd.EnumeratedValues{
					Name: "Mode",
					Values: []svd.EnumeratedValue{
						{Name: "Off", Value: 0},
						{Name: "On", Value: 1},
						{Name: "Standby", Value: 2},
					},
				},
			},
		},
	}

	src, err := generateRegister(reg)
	if err != nil {
		t.Fatalf("generateRegister: %v", err)
	}

	if strings.Contains(src, "impl crate::generic::R<CR>") {
		t.Errorf("write-only register must not get a Reader impl block:\n%s", src)
	}
	if !strings.Contains(src, "pub fn standby(self)") {
		t.Errorf("missing standby() writer method:\n%s", src)
	}
	if !strings.Contains(src, "STANDBY = 2") {
		t.Errorf("Standby variant must encode to 2:\n%s", src)
	}
}

// TestGenerateRegisterReadWrite checks that a read-write register
// exposes both a reader and a writer for its field, and a reset-value
// constant.
func TestGenerateRegisterReadWrite(t *testing.T) {
	reg := svd.Register{
		Name:       "PSC",
		Width:      ptr(uint(32)),
		Access:     ptr(svd.ReadWrite),
		ResetValue: ptr(uint64(0)),
		ResetMask:  ptr(uint64(0xffffffff)),
		Fields: []svd.Field{
			{Name: "DIV", BitOffset: 8, BitWidth: 4},
		},
	}

	src, err := generateRegister(reg)
	if err != nil {
		t.Fatalf("generateRegister: %v", err)
	}

	if !strings.Contains(src, "impl crate::generic::R<PSC>") {
		t.Errorf("missing Reader impl block:\n%s", src)
	}
	if !strings.Contains(src, "impl crate::generic::W<PSC>") {
		t.Errorf("missing Writer impl block:\n%s", src)
	}
	if !strings.Contains(src, "impl crate::generic::ResetValue for PSC_SPEC") {
		t.Errorf("writable register must carry a ResetValue impl:\n%s", src)
	}
	if !strings.Contains(src, "pub type PSC_R = crate::generic::R<PSC>;") {
		t.Errorf("missing Reader alias:\n%s", src)
	}
	if !strings.Contains(src, "pub type PSC_W = crate::generic::W<PSC>;") {
		t.Errorf("missing Writer alias:\n%s", src)
	}
}

// TestGenerateRegisterResetValueMasked checks that the emitted reset
// constant is the reset value masked by the reset mask.
func TestGenerateRegisterResetValueMasked(t *testing.T) {
	reg := svd.Register{
		Name:       "CR",
		Width:      ptr(uint(32)),
		Access:     ptr(svd.ReadWrite),
		ResetValue: ptr(uint64(0xffff00ff)),
		ResetMask:  ptr(uint64(0x0000ffff)),
	}

	src, err := generateRegister(reg)
	if err != nil {
		t.Fatalf("generateRegister: %v", err)
	}

	if !strings.Contains(src, "const RESET_VALUE: u32 = 0x000000ff;") {
		t.Errorf("reset constant must be value & mask:\n%s", src)
	}
}

// TestGenerateRegisterDerivedAlias checks that a register that kept
// its derivation edge aliases the parent's marker type instead of
// minting an identical one.
func TestGenerateRegisterDerivedAlias(t *testing.T) {
	reg := svd.Register{
		Name:        "CR2",
		Width:       ptr(uint(16)),
		Access:      ptr(svd.ReadWrite),
		ResetValue:  ptr(uint64(0)),
		ResetMask:   ptr(uint64(0xffff)),
		DerivedFrom: "CR1",
	}

	src, err := generateRegister(reg)
	if err != nil {
		t.Fatalf("generateRegister: %v", err)
	}

	if !strings.Contains(src, "pub type CR2 = crate::generic::Reg<u16, CR1_SPEC>;") {
		t.Errorf("derived register must alias the parent's marker:\n%s", src)
	}
	if strings.Contains(src, "pub struct CR2_SPEC;") {
		t.Errorf("derived register must not mint its own marker:\n%s", src)
	}
}

// TestGenerateRegisterUnsupportedWidth checks that widths outside
// {8,16,32,64} are fatal.
func TestGenerateRegisterUnsupportedWidth(t *testing.T) {
	reg := svd.Register{
		Name:       "X",
		Width:      ptr(uint(24)),
		Access:     ptr(svd.ReadWrite),
		ResetValue: ptr(uint64(0)),
		ResetMask:  ptr(uint64(0xffffff)),
	}

	_, err := generateRegister(reg)
	if err == nil {
		t.Fatal("expected an error for a 24-bit register, got nil")
	}
}

// TestGenerateRegisterFieldNameCollision checks that two fields whose
// sanitized names coincide are rejected, naming both.
func TestGenerateRegisterFieldNameCollision(t *testing.T) {
	reg := svd.Register{
		Name:       "CR",
		Width:      ptr(uint(32)),
		Access:     ptr(svd.ReadWrite),
		ResetValue: ptr(uint64(0)),
		ResetMask:  ptr(uint64(0xffffffff)),
		Fields: []svd.Field{
			{Name: "TX-EN", BitOffset: 0, BitWidth: 1},
			{Name: "TX_EN", BitOffset: 1, BitWidth: 1},
		},
	}

	_, err := generateRegister(reg)
	if err == nil {
		t.Fatal("expected a collision error, got nil")
	}
	if !strings.Contains(err.Error(), "TX-EN") || !strings.Contains(err.Error(), "TX_EN") {
		t.Errorf("collision error must name both sources: %v", err)
	}
}
