// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package collection

import (
	"sort"

	"github.com/libfy/fy/builder"
	"github.com/libfy/fy/fyerr"
	"github.com/libfy/fy/value"
)

func opSort(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	if in.Kind() != value.Sequence {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Sort", "not a sequence")
	}
	items := seqItems(in)
	cmp := args.Comparator
	if cmp == nil {
		cmp = value.Compare
	}
	// sort.SliceStable per spec.md §4.4's "stable sort" requirement.
	sort.SliceStable(items, func(i, j int) bool { return cmp(items[i], items[j]) < 0 })
	return value.NewSequence(b.Dest(), items)
}
