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

// fieldArtifacts is the per-field output the register generator
// splices into a register's source: the optional variant
// enum and the reader and writer accessors appended to the register's
// Reader/Writer impl blocks.
type fieldArtifacts struct {
	// VariantEnum is the Rust enum backing a total- or
	// partially-covered enumeratedValues set, or "" if the field has
	// none.
	VariantEnum string

	// ReaderMethod is the accessor method appended to the register's
	// Reader impl block.
	ReaderMethod string

	// WriterProxy is the small borrowing struct returned by the
	// Writer's setter method, carrying one method per variant plus
	// the raw fallback.
	WriterProxy string

	// WriterMethod is the method appended to the register's Writer
	// impl block that returns WriterProxy.
	WriterMethod string
}

// generateField produces the accessor and writer-proxy text for a
// single, fully-resolved field. regAlias is the type
// alias naming the register itself (e.g. "CR1", for
// "pub type CR1 = crate::generic::Reg<u32, CR1_SPEC>"), the type the
// field's Reader/Writer impl blocks are keyed on; regRustType is the
// register's backing Rust integer type (e.g. "u32"); regWidth is the
// same width as a bitutil.Width.
func generateField(f svd.Field, regAlias, regRustType string, regWidth bitutil.Width) (fieldArtifacts, error) {
	fieldSnake := ident.Snake(f.Name)
	fieldScream := ident.Scream(f.Name)
	enumTypeName := fieldScream + "_A"
	writerProxyName := fieldScream + "_W"

	rawType, fieldWidth, err := fieldRawType(f.BitWidth)
	if err != nil {
		return fieldArtifacts{}, err
	}

	enum := f.Read
	if enum == nil {
		enum = f.Write
	}

	var art fieldArtifacts

	switch {
	case enum != nil && enum.TotalCoverage(f.BitWidth):
		art.VariantEnum = renderVariantEnum(enumTypeName, rawType, enum, true)
		art.ReaderMethod = renderTotalReader(fieldSnake, f, enum, enumTypeName, rawType, fieldWidth)
	case enum != nil:
		art.VariantEnum = renderVariantEnum(enumTypeName, rawType, enum, false)
		art.ReaderMethod = renderPartialReader(fieldSnake, f, enum, enumTypeName, rawType, fieldWidth)
	default:
		art.ReaderMethod = renderRawReader(fieldSnake, f, rawType, fieldWidth)
	}

	coversRegister := f.BitWidth == uint(regWidth)
	art.WriterProxy, art.WriterMethod = renderWriterProxy(fieldSnake, f, regAlias, regRustType, regWidth, writerProxyName, enumTypeName, rawType, f.Write, coversRegister)

	return art, nil
}

// fieldRawType returns the Rust type a field's raw bits are exposed
// as ("bool" for a 1-bit field, otherwise
// the smallest unsigned integer that holds the field's width) along
// with that width (Width8 for the bool case, since there is no
// narrower integer to mask against).
func fieldRawType(width uint) (rustType string, fieldWidth bitutil.Width, err error) {
	w, err := bitutil.SmallestWidth(width)
	if err != nil {
		return "", 0, fmt.Errorf("field width %d: %w", width, err)
	}

	if width == 1 {
		return "bool", w, nil
	}

	return w.RustType(), w, nil
}

// renderVariantEnum emits the Rust enum for an enumeratedValues set,
// with its SizeType and ToBits impls. A 1-bit field's enum is backed
// by bool, which cannot be a #[repr] or carry integer discriminants,
// so its variants map to false/true through ToBits instead.
func renderVariantEnum(name, rawType string, enum *svd.EnumeratedValues, total bool) string {
	var buf strings.Builder
	if total {
		fmt.Fprintf(&buf, "/// Possible values of the field `%s`\n", enum.Name)
	} else {
		fmt.Fprintf(&buf, "/// Possible values of the field `%s` (not all bit patterns are defined)\n", enum.Name)
	}
	buf.WriteString("#[derive(Clone, Copy, Debug, PartialEq, Eq)]\n")
	if rawType != "bool" {
		fmt.Fprintf(&buf, "#[repr(%s)]\n", rawType)
	}
	fmt.Fprintf(&buf, "pub enum %s {\n", name)
	for _, v := range enum.Values {
		if v.Description != "" {
			fmt.Fprintf(&buf, "    /// %s\n", v.Description)
		}
		if rawType == "bool" {
			fmt.Fprintf(&buf, "    %s,\n", ident.Scream(v.Name))
		} else {
			fmt.Fprintf(&buf, "    %s = %s,\n", ident.Scream(v.Name), bitutil.Unsuffixed(v.Value))
		}
	}
	buf.WriteString("}\n\n")

	fmt.Fprintf(&buf, "impl crate::generic::SizeType for %s {\n    type Type = %s;\n}\n\n", name, rawType)
	fmt.Fprintf(&buf, "impl crate::generic::ToBits for %s {\n    #[inline(always)]\n    fn to_bits(&self) -> %s {\n", name, rawType)
	if rawType == "bool" {
		buf.WriteString("        match self {\n")
		for _, v := range enum.Values {
			fmt.Fprintf(&buf, "            Self::%s => %s,\n", ident.Scream(v.Name), boolLiteral(v.Value))
		}
		buf.WriteString("        }\n")
	} else {
		fmt.Fprintf(&buf, "        *self as %s\n", rawType)
	}
	buf.WriteString("    }\n}\n")

	return buf.String()
}

func boolLiteral(v uint64) string {
	if v != 0 {
		return "true"
	}

	return "false"
}

func variantLiteral(v uint64, rawType string) string {
	if rawType == "bool" {
		return boolLiteral(v)
	}

	return bitutil.Unsuffixed(v)
}

// renderTotalReader emits an accessor that decodes the field's raw
// bits straight into its fully-covering enum.
func renderTotalReader(fieldSnake string, f svd.Field, enum *svd.EnumeratedValues, enumType, rawType string, fieldWidth bitutil.Width) string {
	var buf strings.Builder
	writeFieldDoc(&buf, f)
	fmt.Fprintf(&buf, "    #[inline(always)]\n    pub fn %s(&self) -> %s {\n", fieldSnake, enumType)
	fmt.Fprintf(&buf, "        match %s {\n", extractBits(f, rawType, fieldWidth))
	for _, v := range enum.Values {
		fmt.Fprintf(&buf, "            %s => %s::%s,\n", variantLiteral(v.Value, rawType), enumType, ident.Scream(v.Name))
	}
	if rawType != "bool" {
		buf.WriteString("            _ => unreachable!(),\n")
	}
	buf.WriteString("        }\n    }\n")

	return buf.String()
}

// renderPartialReader emits an accessor returning Variant<enumType>
// for a field whose enumeratedValues do not cover its full range.
func renderPartialReader(fieldSnake string, f svd.Field, enum *svd.EnumeratedValues, enumType, rawType string, fieldWidth bitutil.Width) string {
	var buf strings.Builder
	writeFieldDoc(&buf, f)
	fmt.Fprintf(&buf, "    #[inline(always)]\n    pub fn %s(&self) -> crate::generic::Variant<%s> {\n", fieldSnake, enumType)
	fmt.Fprintf(&buf, "        match %s {\n", extractBits(f, rawType, fieldWidth))
	for _, v := range enum.Values {
		fmt.Fprintf(&buf, "            %s => crate::generic::Variant::Val(%s::%s),\n", variantLiteral(v.Value, rawType), enumType, ident.Scream(v.Name))
	}
	buf.WriteString("            i => crate::generic::Variant::Res(i),\n")
	buf.WriteString("        }\n    }\n")

	return buf.String()
}

// renderRawReader emits the accessor for a field with no
// enumeratedValues: a proxy Reader over the field's bits, which
// carries bit()/bit_is_set()/bit_is_clear() for 1-bit fields and
// bits() otherwise.
func renderRawReader(fieldSnake string, f svd.Field, rawType string, fieldWidth bitutil.Width) string {
	var buf strings.Builder
	writeFieldDoc(&buf, f)
	fmt.Fprintf(&buf, "    #[inline(always)]\n    pub fn %s(&self) -> crate::generic::R<%s> {\n", fieldSnake, rawType)
	fmt.Fprintf(&buf, "        crate::generic::R { bits: %s }\n    }\n", extractBits(f, rawType, fieldWidth))

	return buf.String()
}

// extractBits renders the mask-and-shift that lifts a field's bits
// out of the raw register value `self.bits`, masking with
// ((1 << w) - 1) and shifting right by the bit offset. A 1-bit field
// compares against 1 to produce a bool directly.
func extractBits(f svd.Field, rawType string, fieldWidth bitutil.Width) string {
	if rawType == "bool" {
		if f.BitOffset == 0 {
			return "(self.bits & 1) != 0"
		}
		return fmt.Sprintf("((self.bits >> %d) & 1) != 0", f.BitOffset)
	}

	mask := bitutil.Mask(f.BitWidth)
	if f.BitOffset == 0 {
		return fmt.Sprintf("(self.bits & %s) as %s", bitutil.Hex(mask, fieldWidth), rawType)
	}

	return fmt.Sprintf("((self.bits >> %d) & %s) as %s", f.BitOffset, bitutil.Hex(mask, fieldWidth), rawType)
}

// renderWriterProxy emits the small struct returned by a register's
// Writer for this field (the "writer proxy"), and the
// Writer method that constructs it. Writing clears the field's bits
// and ORs in the new value, masked and shifted into place. The raw
// fallback is marked unsafe unless the field covers the register's
// full width; a 1-bit field instead gets the safe
// bit()/set_bit()/clear_bit() surface, since a bool cannot be out of
// range.
func renderWriterProxy(fieldSnake string, f svd.Field, regAlias, regRustType string, regWidth bitutil.Width, proxyName, enumType, rawType string, writeEnum *svd.EnumeratedValues, coversRegister bool) (proxy, method string) {
	var buf strings.Builder
	fmt.Fprintf(&buf, "/// Writer proxy for field `%s`.\n", f.Name)
	fmt.Fprintf(&buf, "pub struct %s<'a> {\n    w: &'a mut crate::generic::W<%s>,\n}\n\n", proxyName, regAlias)
	fmt.Fprintf(&buf, "impl<'a> %s<'a> {\n", proxyName)

	if writeEnum != nil {
		for _, v := range writeEnum.Values {
			fmt.Fprintf(&buf, "    /// %s\n", variantDoc(v))
			fmt.Fprintf(&buf, "    #[inline(always)]\n    pub fn %s(self) -> &'a mut crate::generic::W<%s> {\n        self.variant(%s::%s)\n    }\n", ident.Snake(v.Name), regAlias, enumType, ident.Scream(v.Name))
		}

		fmt.Fprintf(&buf, "    /// Writes the field to the given variant.\n    #[inline(always)]\n    pub fn variant(self, variant: %s) -> &'a mut crate::generic::W<%s> {\n", enumType, regAlias)
		switch {
		case rawType == "bool":
			buf.WriteString("        self.bit(crate::generic::ToBits::to_bits(&variant))\n    }\n")
		case coversRegister:
			fmt.Fprintf(&buf, "        self.bits(variant as %s)\n    }\n", rawType)
		default:
			fmt.Fprintf(&buf, "        unsafe { self.bits(variant as %s) }\n    }\n", rawType)
		}
	}

	switch {
	case rawType == "bool":
		clearMask := ^bitutil.FieldMask(f.BitOffset, 1) & bitutil.Mask(uint(regWidth))
		buf.WriteString("    /// Sets the field bit.\n    #[inline(always)]\n    pub fn set_bit(self) -> &'a mut crate::generic::W<")
		fmt.Fprintf(&buf, "%s> {\n        self.bit(true)\n    }\n", regAlias)
		buf.WriteString("    /// Clears the field bit.\n    #[inline(always)]\n    pub fn clear_bit(self) -> &'a mut crate::generic::W<")
		fmt.Fprintf(&buf, "%s> {\n        self.bit(false)\n    }\n", regAlias)
		fmt.Fprintf(&buf, "    /// Writes the field bit.\n    #[inline(always)]\n    pub fn bit(self, value: bool) -> &'a mut crate::generic::W<%s> {\n", regAlias)
		fmt.Fprintf(&buf, "        self.w.bits = (self.w.bits & %s) | (((value as %s) & 1) << %d);\n        self.w\n    }\n",
			bitutil.Hex(clearMask, regWidth), regRustType, f.BitOffset)
	case coversRegister:
		fmt.Fprintf(&buf, "    /// Writes raw bits to the field.\n    #[inline(always)]\n    pub fn bits(self, value: %s) -> &'a mut crate::generic::W<%s> {\n", rawType, regAlias)
		buf.WriteString("        self.w.bits = value;\n        self.w\n    }\n")
	default:
		clearMask := ^bitutil.FieldMask(f.BitOffset, f.BitWidth) & bitutil.Mask(uint(regWidth))
		fmt.Fprintf(&buf, "    /// Writes raw bits to the field. Unsafe: out-of-range values are not rejected.\n    #[inline(always)]\n    pub unsafe fn bits(self, value: %s) -> &'a mut crate::generic::W<%s> {\n", rawType, regAlias)
		fmt.Fprintf(&buf, "        self.w.bits = (self.w.bits & %s) | (((value as %s) & %s) << %d);\n        self.w\n    }\n",
			bitutil.Hex(clearMask, regWidth), regRustType, bitutil.Hex(bitutil.Mask(f.BitWidth), regWidth), f.BitOffset)
	}

	buf.WriteString("}\n")
	proxy = buf.String()

	method = fmt.Sprintf("    /// Field `%s`.\n    #[inline(always)]\n    pub fn %s(&mut self) -> %s {\n        %s { w: self }\n    }\n", f.Name, fieldSnake, proxyName+"<'_>", proxyName)

	return proxy, method
}

func variantDoc(v svd.EnumeratedValue) string {
	if v.Description != "" {
		return v.Description
	}

	return v.Name
}

func writeFieldDoc(buf *strings.Builder, f svd.Field) {
	if f.Description == "" {
		return
	}

	fmt.Fprintf(buf, "    /// %s\n", f.Description)
}
