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
	"github.com/ProjectSerenity/svdgen/svd"
)

// generateRegister renders one fully-resolved register (the output of
// resolve.Resolve): the register's type alias,
// marker struct, capability and reset-value impls, and the
// Reader/Writer impl blocks carrying one method per field.
//
// reg must already have passed through resolve.Resolve: Width,
// Access, and ResetValue are assumed non-nil, and any Dim has already
// been expanded into sibling Register values.
func generateRegister(reg svd.Register) (string, error) {
	return generateRegisterNamed(reg, reg.Name)
}

// generateRegisterNamed renders reg under the given type name. The
// peripheral assembler uses this to emit a register array's single
// shared type under the array's base name rather than the name of any
// one instance.
func generateRegisterNamed(reg svd.Register, name string) (string, error) {
	// The register's own width must be exactly one of {8,16,32,64};
	// bitutil.SmallestWidth rounds up to the next backing type and so
	// cannot be used here, since it would silently accept a malformed
	// width like 24 by widening it to 32.
	width := bitutil.Width(*reg.Width)
	if !width.Valid() {
		return "", svd.Errorf(nil, "register %s: %d is not a valid register width", name, *reg.Width)
	}

	rustType := width.RustType()
	alias := ident.Scream(name)
	marker := alias + "_SPEC"
	access := *reg.Access

	var buf strings.Builder

	// A register that derives another without overriding its shape
	// shares the parent's marker: the alias makes its Reader and
	// Writer the same types as the parent's, so the parent's field
	// accessors apply to both.
	if reg.DerivedFrom != "" {
		if reg.Description != "" {
			fmt.Fprintf(&buf, "/// %s\n", reg.Description)
		}
		fmt.Fprintf(&buf, "pub type %s = crate::generic::Reg<%s, %s_SPEC>;\n\n", alias, rustType, ident.Scream(reg.DerivedFrom))

		return buf.String(), nil
	}

	if reg.Description != "" {
		fmt.Fprintf(&buf, "/// %s\n", reg.Description)
	}
	fmt.Fprintf(&buf, "pub type %s = crate::generic::Reg<%s, %s>;\n\n", alias, rustType, marker)

	fmt.Fprintf(&buf, "/// Marker type for the `%s` register (access: %s, reset: %s).\n", name, access, bitutil.Hex(*reg.ResetValue&*reg.ResetMask, width))
	fmt.Fprintf(&buf, "pub struct %s;\n", marker)
	fmt.Fprintf(&buf, "impl crate::generic::SizeType for %s {\n    type Type = %s;\n}\n", marker, rustType)
	if access.Readable() {
		fmt.Fprintf(&buf, "impl crate::generic::Readable for %s {}\n", marker)
	}
	if access.Writable() {
		fmt.Fprintf(&buf, "impl crate::generic::Writable for %s {}\n", marker)
		fmt.Fprintf(&buf, "impl crate::generic::ResetValue for %s {\n    const RESET_VALUE: %s = %s;\n}\n",
			marker, rustType, bitutil.Hex(*reg.ResetValue&*reg.ResetMask, width))
	}
	buf.WriteString("\n")

	// Reader/Writer aliases live alongside every other register of
	// the peripheral in one module, so they carry the register's name.
	if access.Readable() {
		fmt.Fprintf(&buf, "/// Reader of the `%s` register.\npub type %s_R = crate::generic::R<%s>;\n", name, alias, alias)
	}
	if access.Writable() {
		fmt.Fprintf(&buf, "/// Writer of the `%s` register.\npub type %s_W = crate::generic::W<%s>;\n", name, alias, alias)
	}
	buf.WriteString("\n")

	if err := checkFieldNameCollisions(reg); err != nil {
		return "", err
	}

	var readerMethods, writerProxies, writerMethods strings.Builder
	for _, f := range reg.Fields {
		art, err := generateField(f, alias, rustType, width)
		if err != nil {
			return "", svd.Errorf(nil, "register %s field %s: %v", name, f.Name, err)
		}

		if art.VariantEnum != "" {
			buf.WriteString(art.VariantEnum)
			buf.WriteString("\n")
		}
		if fieldAccess(f, access).Readable() {
			readerMethods.WriteString(art.ReaderMethod)
		}
		if fieldAccess(f, access).Writable() && art.WriterMethod != "" {
			writerProxies.WriteString(art.WriterProxy)
			writerProxies.WriteString("\n")
			writerMethods.WriteString(art.WriterMethod)
		}
	}

	if access.Readable() && readerMethods.Len() > 0 {
		fmt.Fprintf(&buf, "impl crate::generic::R<%s> {\n%s}\n\n", alias, readerMethods.String())
	}
	if access.Writable() && writerMethods.Len() > 0 {
		buf.WriteString(writerProxies.String())
		fmt.Fprintf(&buf, "impl crate::generic::W<%s> {\n%s}\n\n", alias, writerMethods.String())
	}

	return buf.String(), nil
}

// checkFieldNameCollisions rejects two fields of one register whose
// sanitized accessor names coincide, naming both originals.
func checkFieldNameCollisions(reg svd.Register) error {
	seen := make(map[string]string, len(reg.Fields))
	for _, f := range reg.Fields {
		snake := ident.Snake(f.Name)
		if prev, ok := seen[snake]; ok && prev != f.Name {
			return svd.Errorf(svd.Path{reg.Name, f.Name}, "field name sanitizes to %q, colliding with field %q", snake, prev)
		}
		seen[snake] = f.Name
	}

	return nil
}

// fieldAccess returns a field's effective access: its own, if set, or
// the enclosing register's otherwise.
func fieldAccess(f svd.Field, registerAccess svd.Access) svd.Access {
	if f.Access == svd.InvalidAccess {
		return registerAccess
	}

	return f.Access
}
