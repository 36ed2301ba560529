// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package ident sanitizes SVD names into valid, non-reserved Rust
// identifiers in the two casings the generator needs: snake_case for
// accessors and SCREAMING_CASE for marker types and constants.
package ident

import (
	"strings"
	"unicode"
)

// reserved holds Rust's reserved and weak keywords. A sanitized name
// that collides with one of these is prefixed with an underscore,
// the same fallback used for
// names that are otherwise ambiguous.
var reserved = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true,
	"crate": true, "dyn": true, "else": true, "enum": true,
	"extern": true, "false": true, "fn": true, "for": true,
	"if": true, "impl": true, "in": true, "let": true,
	"loop": true, "match": true, "mod": true, "move": true,
	"mut": true, "pub": true, "ref": true, "return": true,
	"self": true, "Self": true, "static": true, "struct": true,
	"super": true, "trait": true, "true": true, "type": true,
	"unsafe": true, "use": true, "where": true, "while": true,
	"async": true, "await": true, "union": true,
	"abstract": true, "become": true, "box": true, "do": true,
	"final": true, "macro": true, "override": true, "priv": true,
	"typeof": true, "unsized": true, "virtual": true, "yield": true,
	"try": true,
}

// isWordSep reports whether r should terminate a run of identifier
// characters.
func isWordSep(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r))
}

// normalize replaces runs of non-alphanumeric characters with a
// single underscore, collapses repeated underscores, and strips
// leading/trailing underscores. The result is neither cased nor
// reserved-word checked; callers apply those afterwards.
func normalize(name string) string {
	var buf strings.Builder
	lastWasSep := false
	for _, r := range name {
		if isWordSep(r) {
			if !lastWasSep && buf.Len() > 0 {
				buf.WriteByte('_')
			}
			lastWasSep = true
			continue
		}

		buf.WriteRune(r)
		lastWasSep = false
	}

	s := buf.String()
	s = strings.Trim(s, "_")

	// Runs produced entirely from separators (e.g. "---") normalize
	// to the empty string; give callers a stable, visibly-synthetic
	// identifier rather than an empty one.
	if s == "" {
		return "_"
	}

	return s
}

// guard prefixes name with an underscore if it starts with a digit or
// collides with a reserved identifier.
func guard(name string) string {
	if name == "" {
		return "_"
	}

	if unicode.IsDigit(rune(name[0])) {
		return "_" + name
	}

	if reserved[name] {
		return "_" + name
	}

	return name
}

// Snake returns name sanitized and rendered in snake_case, suitable
// for register and field accessor methods.
//
// The transform is deterministic and idempotent: Snake(Snake(x)) ==
// Snake(x).
func Snake(name string) string {
	return guard(strings.ToLower(normalize(name)))
}

// Scream returns name sanitized and rendered in SCREAMING_CASE,
// suitable for marker types and constants.
//
// The transform is deterministic and idempotent: Scream(Scream(x)) ==
// Scream(x).
func Scream(name string) string {
	return guard(strings.ToUpper(normalize(name)))
}
