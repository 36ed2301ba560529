// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package svd

import "testing"

func TestAccess(t *testing.T) {
	tests := []struct {
		a             Access
		readable      bool
		writable      bool
		writeOnceOnly bool
	}{
		{ReadOnly, true, false, false},
		{WriteOnly, false, true, false},
		{ReadWrite, true, true, false},
		{WriteOnce, false, true, true},
		{ReadWriteOnce, true, true, true},
	}

	for _, test := range tests {
		if got := test.a.Readable(); got != test.readable {
			t.Errorf("%v.Readable() = %v, want %v", test.a, got, test.readable)
		}
		if got := test.a.Writable(); got != test.writable {
			t.Errorf("%v.Writable() = %v, want %v", test.a, got, test.writable)
		}
		if got := test.a.WriteOnceOnly(); got != test.writeOnceOnly {
			t.Errorf("%v.WriteOnceOnly() = %v, want %v", test.a, got, test.writeOnceOnly)
		}
	}
}

func TestEnumeratedValuesTotalCoverage(t *testing.T) {
	full := &EnumeratedValues{Values: []EnumeratedValue{{Value: 0}, {Value: 1}}}
	if !full.TotalCoverage(1) {
		t.Error("expected total coverage for 2-value, 1-bit field")
	}

	partial := &EnumeratedValues{Values: []EnumeratedValue{{Value: 0}}}
	if partial.TotalCoverage(1) {
		t.Error("expected partial coverage for 1-value, 1-bit field")
	}

	var nilValues *EnumeratedValues
	if nilValues.TotalCoverage(1) {
		t.Error("expected nil EnumeratedValues to report no coverage")
	}
}

func TestDimName(t *testing.T) {
	d := &Dim{Count: 4, Increment: 0x1000, Index: []string{"A", "B", "C", "D"}}
	for i, want := range []string{"UARTA", "UARTB", "UARTC", "UARTD"} {
		if got := d.Name("UART%s", i); got != want {
			t.Errorf("Name(UART%%s, %d) = %q, want %q", i, got, want)
		}
	}

	var noIndex Dim
	noIndex.Count = 2
	if got, want := noIndex.Name("CH%s", 1), "CH1"; got != want {
		t.Errorf("Name(CH%%s, 1) = %q, want %q", got, want)
	}
	if got, want := noIndex.Name("CH", 1), "CH1"; got != want {
		t.Errorf("Name(CH, 1) = %q, want %q", got, want)
	}
}

func TestPath(t *testing.T) {
	p := Path{"Device"}.Push("UART0").Push("CR1")
	if got, want := p.String(), "Device > UART0 > CR1"; got != want {
		t.Errorf("Path.String() = %q, want %q", got, want)
	}

	base := Path{"Device"}
	_ = base.Push("A")
	if got, want := base.String(), "Device"; got != want {
		t.Errorf("base Path mutated by Push: got %q, want %q", got, want)
	}
}
