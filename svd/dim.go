// Copyright 2026 The SVDGen Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package svd

import (
	"strconv"
	"strings"
)

func decimal(i int) string {
	return strconv.Itoa(i)
}

// substitutePlaceholder replaces the first occurrence of "%s" in
// pattern with sub. If pattern has no placeholder, sub is appended,
// matching SVD's convention that a dim name without "%s" is suffixed
// with the index.
func substitutePlaceholder(pattern, sub string) string {
	if strings.Contains(pattern, "%s") {
		return strings.Replace(pattern, "%s", sub, 1)
	}

	return pattern + sub
}
