// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package collection

import (
	"github.com/libfy/fy/builder"
	"github.com/libfy/fy/fyerr"
	"github.com/libfy/fy/value"
)

// Path is the SPEC_FULL.md-added convenience wrapper spec.md's
// GetAtPath/SetAtPath opcodes imply but don't name as its own type:
// path traversal descends through mappings by key and sequences by
// integer index (spec.md §4.4).
type Path []value.Generic

// IntStep builds a sequence-index path element.
func IntStep(i int64) value.Generic {
	g, err := value.NewInt(value.Dest{}, i)
	if err == nil {
		return g
	}
	return value.InvalidWord
}

func descend(cur value.Generic, step value.Generic) (value.Generic, error) {
	switch cur.Kind() {
	case value.Mapping:
		return opGet(cur, step)
	case value.Sequence:
		if step.Kind() != value.Int {
			return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.GetAtPath", "sequence step must be Int")
		}
		idx := int(step.AsInt64())
		if idx < 0 || idx >= cur.Len() {
			return value.InvalidWord, fyerr.New(fyerr.PathNotFound, "collection.GetAtPath", "index out of range")
		}
		return cur.At(idx), nil
	default:
		return value.InvalidWord, fyerr.New(fyerr.PathNotFound, "collection.GetAtPath", "path descends into a scalar")
	}
}

// GetAtPath walks path through in, descending mappings by key and
// sequences by integer index, per spec.md §4.4. Returns Null (not
// Invalid) when a mapping key is absent partway through, matching
// Get's "not found" convention; returns Invalid on a type mismatch
// (e.g. indexing into a scalar).
func GetAtPath(in value.Generic, path []value.Generic) (value.Generic, error) {
	cur := in
	for _, step := range path {
		next, err := descend(cur, step)
		if err != nil {
			return value.InvalidWord, err
		}
		if next.Kind() == value.Null && cur.Kind() == value.Mapping {
			return value.NullValue, nil
		}
		cur = next
	}
	return cur, nil
}

// SetAtPath functionally updates in at path, producing a new root. With
// createPath, missing intermediate mappings are materialized as empty
// mappings; without it, a missing intermediate fails with
// PathNotFound.
func SetAtPath(b *builder.Builder, in value.Generic, path []value.Generic, newValue value.Generic, createPath bool) (value.Generic, error) {
	if len(path) == 0 {
		return newValue, nil
	}
	step := path[0]
	rest := path[1:]

	switch in.Kind() {
	case value.Mapping:
		cur, err := opGet(in, step)
		if err != nil {
			return value.InvalidWord, err
		}
		if cur.Kind() == value.Null {
			if !createPath {
				return value.InvalidWord, fyerr.New(fyerr.PathNotFound, "collection.SetAtPath", "missing intermediate")
			}
			cur = value.MapEmpty
		}
		updated, err := SetAtPath(b, cur, rest, newValue, createPath)
		if err != nil {
			return value.InvalidWord, err
		}
		return opAssoc(b, in, Args{Items: []value.Generic{step, updated}})
	case value.Sequence:
		if step.Kind() != value.Int {
			return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.SetAtPath", "sequence step must be Int")
		}
		idx := int(step.AsInt64())
		if idx < 0 || idx >= in.Len() {
			return value.InvalidWord, fyerr.New(fyerr.IndexOutOfRange, "collection.SetAtPath", "index out of range")
		}
		updated, err := SetAtPath(b, in.At(idx), rest, newValue, createPath)
		if err != nil {
			return value.InvalidWord, err
		}
		return opSetAt(b, in, Args{Index: idx, Items: []value.Generic{updated}})
	default:
		if !createPath {
			return value.InvalidWord, fyerr.New(fyerr.PathNotFound, "collection.SetAtPath", "path descends into a scalar")
		}
		updated, err := SetAtPath(b, value.MapEmpty, rest, newValue, createPath)
		if err != nil {
			return value.InvalidWord, err
		}
		return opAssoc(b, value.MapEmpty, Args{Items: []value.Generic{step, updated}})
	}
}
