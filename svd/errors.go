// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package svd

import (
	"fmt"
	"strings"
)

// Path is a breadcrumb locating an entity within the Device tree:
// device, peripheral, register (or cluster chain), and field, in that
// order. Any suffix may be omitted.
type Path []string

func (p Path) String() string {
	return strings.Join(p, " > ")
}

// Push returns a new Path with name appended; Path is treated as
// immutable so that callers lower in the tree can't corrupt a
// breadcrumb still held by a caller above them.
func (p Path) Push(name string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = name
	return out
}

// Error is a fatal generation error carrying the breadcrumb Path of
// the entity that caused it: a short message plus a location, with
// Context available to add an outer frame as the error propagates.
type Error struct {
	Path Path
	Msg  string
}

func (e *Error) Error() string {
	if len(e.Path) == 0 {
		return e.Msg
	}

	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// Context wraps e with an additional outer message, preserving the
// original breadcrumb.
func (e *Error) Context(msg string) *Error {
	return &Error{
		Path: e.Path,
		Msg:  msg + ": " + e.Msg,
	}
}

// Errorf builds an Error located at path.
func Errorf(path Path, format string, args ...any) *Error {
	return &Error{
		Path: path,
		Msg:  fmt.Sprintf(format, args...),
	}
}
