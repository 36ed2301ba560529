// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package rust

import _ "embed"

// genericModuleSource is the fixed, verbatim generic façade: the
// Readable/Writable/ResetValue capability marks, Reg<U, REG>,
// R<T>/W<T>, and Variant<FI>. It carries no code specific to any
// device, so it is not driven through text/template; it is emitted
// byte-for-byte.
//
//go:embed templates/generic_rs.txt
var genericModuleSource string
