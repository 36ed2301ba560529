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

func peripheralsWithInterrupts() []svd.Peripheral {
	return []svd.Peripheral{
		{
			Name: "UART0",
			Interrupts: []svd.Interrupt{
				{Name: "UART0", Value: 5, Description: "UART0 global interrupt"},
			},
		},
		{
			Name: "TIM1",
			Interrupts: []svd.Interrupt{
				{Name: "TIM1", Value: 2},
			},
		},
	}
}

// TestGenerateInterruptsOrderingAndGaps checks that interrupts are
// numbered in ascending order and that the vector table fills gaps
// with reserved entries.
func TestGenerateInterruptsOrderingAndGaps(t *testing.T) {
	code, fragment, err := generateInterrupts(peripheralsWithInterrupts(), CortexM)
	if err != nil {
		t.Fatalf("generateInterrupts: %v", err)
	}

	tim1Idx := strings.Index(code, "TIM1 = 2")
	uart0Idx := strings.Index(code, "UART0 = 5")
	if tim1Idx == -1 || uart0Idx == -1 {
		t.Fatalf("missing expected discriminants in enum:\n%s", code)
	}
	if tim1Idx > uart0Idx {
		t.Errorf("interrupts must be emitted in ascending number order (TIM1=2 before UART0=5)")
	}

	if !strings.Contains(code, "Vector { reserved: 0 }, // 0: reserved") {
		t.Errorf("missing reserved vector table entry for gap:\n%s", code)
	}
	if !strings.Contains(code, "Vector { handler: UART0 }, // 5: UART0") {
		t.Errorf("missing vector table entry for UART0:\n%s", code)
	}

	if !strings.Contains(fragment, "PROVIDE(UART0 = DefaultHandler);") {
		t.Errorf("linker fragment missing PROVIDE for UART0:\n%s", fragment)
	}
	if !strings.Contains(fragment, "PROVIDE(TIM1 = DefaultHandler);") {
		t.Errorf("linker fragment missing PROVIDE for TIM1:\n%s", fragment)
	}
}

// TestGenerateInterruptsCortexMNumberTrait checks that the
// InterruptNumber impl is only emitted for the CortexM target.
func TestGenerateInterruptsCortexMNumberTrait(t *testing.T) {
	cortexCode, _, err := generateInterrupts(peripheralsWithInterrupts(), CortexM)
	if err != nil {
		t.Fatalf("generateInterrupts: %v", err)
	}
	if !strings.Contains(cortexCode, "impl cortex_m::interrupt::InterruptNumber for Interrupt") {
		t.Errorf("CortexM target should emit InterruptNumber:\n%s", cortexCode)
	}

	noneCode, _, err := generateInterrupts(peripheralsWithInterrupts(), None)
	if err != nil {
		t.Fatalf("generateInterrupts: %v", err)
	}
	if strings.Contains(noneCode, "InterruptNumber") {
		t.Errorf("target None should not reference cortex_m's InterruptNumber:\n%s", noneCode)
	}
}

// TestCollectInterruptsDuplicateSameNameDeduplicates checks the
// "same number and name → deduplicate" rule.
func TestCollectInterruptsDuplicateSameNameDeduplicates(t *testing.T) {
	peripherals := []svd.Peripheral{
		{Name: "A", Interrupts: []svd.Interrupt{{Name: "SHARED", Value: 1}}},
		{Name: "B", Interrupts: []svd.Interrupt{{Name: "SHARED", Value: 1}}},
	}

	entries, err := collectInterrupts(peripherals)
	if err != nil {
		t.Fatalf("collectInterrupts: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1 (deduplicated)", len(entries))
	}
}

// TestCollectInterruptsDuplicateConflictingNameFatal checks the
// "same number, different name → fatal" rule.
func TestCollectInterruptsDuplicateConflictingNameFatal(t *testing.T) {
	peripherals := []svd.Peripheral{
		{Name: "A", Interrupts: []svd.Interrupt{{Name: "FOO", Value: 1}}},
		{Name: "B", Interrupts: []svd.Interrupt{{Name: "BAR", Value: 1}}},
	}

	if _, err := collectInterrupts(peripherals); err == nil {
		t.Error("expected a conflicting-interrupt-number error, got nil")
	}
}

// TestGenerateInterruptsEmpty checks the no-interrupts case renders
// nothing rather than an empty enum.
func TestGenerateInterruptsEmpty(t *testing.T) {
	code, fragment, err := generateInterrupts(nil, CortexM)
	if err != nil {
		t.Fatalf("generateInterrupts: %v", err)
	}
	if code != "" || fragment != "" {
		t.Errorf("expected empty code and fragment for no interrupts, got code=%q fragment=%q", code, fragment)
	}
}
