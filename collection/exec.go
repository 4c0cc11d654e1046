// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package collection

import (
	"github.com/libfy/fy/builder"
	"github.com/libfy/fy/fyerr"
	"github.com/libfy/fy/value"
)

// Exec is the single dispatch entry point of spec.md §4.4: it executes
// op against in with args, allocating any new storage in b's scope.
// Every path returns either a valid Generic or value.InvalidWord; the
// caller distinguishes "not found" (Null/default) from "failed"
// (Invalid) as spec.md §7 requires.
func Exec(b *builder.Builder, op Opcode, in value.Generic, args Args) (value.Generic, error) {
	if in.IsInvalid() && op != CreateSeq && op != CreateMap {
		return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "collection.Exec", "Invalid input propagates")
	}
	for _, it := range args.Items {
		if it.IsInvalid() {
			return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "collection.Exec", "Invalid item in args")
		}
	}

	switch op {
	case CreateSeq:
		return value.NewSequence(b.Dest(), args.Items)
	case CreateMap:
		return value.NewMapping(b.Dest(), args.Items, args.duplicateKeysDisabled())
	case Insert:
		return opInsert(b, in, args)
	case Replace:
		return opReplace(b, in, args)
	case Append:
		return opAppend(b, in, args)
	case Assoc:
		return opAssoc(b, in, args)
	case Disassoc:
		return opDisassoc(b, in, args)
	case Keys:
		return opKeys(b, in)
	case Values:
		return opValues(b, in)
	case Items:
		return opItems(b, in)
	case Contains:
		return value.NewBool(opContains(in, args)), nil
	case Concat:
		return opConcat(b, in, args)
	case Reverse:
		return opReverse(b, in)
	case Merge:
		return opMerge(b, in, args)
	case Unique:
		return opUnique(b, in)
	case Sort:
		return opSort(b, in, args)
	case Filter:
		return opFilter(b, in, args)
	case Map:
		return opMap(b, in, args)
	case Reduce:
		return opReduce(in, args)
	case Slice:
		return opSlice(b, in, args.Lo, args.Hi, false)
	case SlicePy:
		return opSlice(b, in, args.Lo, args.Hi, true)
	case Take:
		return opSlice(b, in, 0, args.Index, false)
	case Drop:
		return opSlice(b, in, args.Index, in.Len(), false)
	case First:
		return opAt(in, 0)
	case Last:
		return opAt(in, in.Len()-1)
	case Rest:
		return opSlice(b, in, 1, in.Len(), false)
	case Get:
		return opGet(in, args.Key)
	case GetAt:
		return opAt(in, args.Index)
	case GetAtPath:
		return GetAtPath(in, args.Path)
	case Set:
		return opSet(b, in, args)
	case SetAt:
		return opSetAt(b, in, args)
	case SetAtPath:
		return SetAtPath(b, in, args.Path, args.Key, args.Flags&CreatePath != 0)
	case Convert:
		return opConvert(b, in, args.TargetKind)
	default:
		return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "collection.Exec", "unknown opcode")
	}
}

func opAt(in value.Generic, idx int) (value.Generic, error) {
	if idx < 0 || idx >= in.Len() {
		return value.InvalidWord, fyerr.New(fyerr.IndexOutOfRange, "collection.At", "index out of range")
	}
	return in.At(idx), nil
}

func seqItems(in value.Generic) []value.Generic {
	n := in.Len()
	out := make([]value.Generic, n)
	for i := 0; i < n; i++ {
		out[i] = in.At(i)
	}
	return out
}

func mapPairs(in value.Generic) []value.Generic {
	n := in.Len()
	out := make([]value.Generic, 0, n*2)
	for i := 0; i < n; i++ {
		k, v := in.Pair(i)
		out = append(out, k, v)
	}
	return out
}

func opInsert(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	if in.Kind() != value.Sequence {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Insert", "not a sequence")
	}
	items := seqItems(in)
	if args.Index < 0 || args.Index > len(items) {
		return value.InvalidWord, fyerr.New(fyerr.IndexOutOfRange, "collection.Insert", "index out of range")
	}
	out := make([]value.Generic, 0, len(items)+len(args.Items))
	out = append(out, items[:args.Index]...)
	out = append(out, args.Items...)
	out = append(out, items[args.Index:]...)
	return value.NewSequence(b.Dest(), out)
}

func opReplace(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	if in.Kind() != value.Sequence {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Replace", "not a sequence")
	}
	items := seqItems(in)
	end := args.Index + len(args.Items)
	if args.Index < 0 || end > len(items) {
		return value.InvalidWord, fyerr.New(fyerr.IndexOutOfRange, "collection.Replace", "range out of bounds")
	}
	out := make([]value.Generic, 0, len(items))
	out = append(out, items[:args.Index]...)
	out = append(out, args.Items...)
	out = append(out, items[end:]...)
	return value.NewSequence(b.Dest(), out)
}

func opAppend(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	switch in.Kind() {
	case value.Sequence:
		out := append(seqItems(in), args.Items...)
		return value.NewSequence(b.Dest(), out)
	case value.Mapping:
		out := append(mapPairs(in), args.Items...)
		return value.NewMapping(b.Dest(), out, args.duplicateKeysDisabled())
	default:
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Append", "not a collection")
	}
}

func opAssoc(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	if in.Kind() != value.Mapping {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Assoc", "not a mapping")
	}
	out := append(mapPairs(in), args.Items...)
	return value.NewMapping(b.Dest(), out, args.duplicateKeysDisabled())
}

func opDisassoc(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	if in.Kind() != value.Mapping {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Disassoc", "not a mapping")
	}
	n := in.Len()
	out := make([]value.Generic, 0, n*2)
	for i := 0; i < n; i++ {
		k, v := in.Pair(i)
		drop := false
		for _, rk := range args.Items {
			if value.Equal(k, rk) {
				drop = true
				break
			}
		}
		if drop {
			continue
		}
		out = append(out, k, v)
	}
	return value.NewMapping(b.Dest(), out, false)
}

func opKeys(b *builder.Builder, in value.Generic) (value.Generic, error) {
	if in.Kind() != value.Mapping {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Keys", "not a mapping")
	}
	n := in.Len()
	out := make([]value.Generic, n)
	for i := 0; i < n; i++ {
		k, _ := in.Pair(i)
		out[i] = k
	}
	return value.NewSequence(b.Dest(), out)
}

func opValues(b *builder.Builder, in value.Generic) (value.Generic, error) {
	if in.Kind() != value.Mapping {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Values", "not a mapping")
	}
	n := in.Len()
	out := make([]value.Generic, n)
	for i := 0; i < n; i++ {
		_, v := in.Pair(i)
		out[i] = v
	}
	return value.NewSequence(b.Dest(), out)
}

func opItems(b *builder.Builder, in value.Generic) (value.Generic, error) {
	if in.Kind() != value.Mapping {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Items", "not a mapping")
	}
	n := in.Len()
	out := make([]value.Generic, n)
	for i := 0; i < n; i++ {
		k, v := in.Pair(i)
		pair, err := value.NewSequence(b.Dest(), []value.Generic{k, v})
		if err != nil {
			return value.InvalidWord, err
		}
		out[i] = pair
	}
	return value.NewSequence(b.Dest(), out)
}

func opContains(in value.Generic, args Args) bool {
	switch in.Kind() {
	case value.Sequence:
		n := in.Len()
		for i := 0; i < n; i++ {
			for _, want := range args.Items {
				if value.Equal(in.At(i), want) {
					return true
				}
			}
		}
		return false
	case value.Mapping:
		n := in.Len()
		for i := 0; i < n; i++ {
			k, _ := in.Pair(i)
			for _, want := range args.Items {
				if value.Equal(k, want) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

func opConcat(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	switch in.Kind() {
	case value.Sequence:
		out := seqItems(in)
		for _, other := range args.Items {
			if other.Kind() != value.Sequence {
				return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Concat", "not a sequence")
			}
			out = append(out, seqItems(other)...)
		}
		return value.NewSequence(b.Dest(), out)
	case value.Mapping:
		acc := in
		var err error
		for _, other := range args.Items {
			if other.Kind() != value.Mapping {
				return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Concat", "not a mapping")
			}
			acc, err = opAppend(b, acc, Args{Items: mapPairs(other), Flags: args.Flags})
			if err != nil {
				return value.InvalidWord, err
			}
		}
		return acc, nil
	default:
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Concat", "not a collection")
	}
}

func opReverse(b *builder.Builder, in value.Generic) (value.Generic, error) {
	switch in.Kind() {
	case value.Sequence:
		items := seqItems(in)
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
		return value.NewSequence(b.Dest(), items)
	case value.Mapping:
		pairs := mapPairs(in)
		n := len(pairs) / 2
		out := make([]value.Generic, len(pairs))
		for i := 0; i < n; i++ {
			src := n - 1 - i
			out[2*i], out[2*i+1] = pairs[2*src], pairs[2*src+1]
		}
		return value.NewMapping(b.Dest(), out, false)
	default:
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Reverse", "not a collection")
	}
}

// deepMerge implements the §4.4 Merge contract: for each key, if both
// values are mappings, recurse; otherwise right wins.
func deepMerge(b *builder.Builder, left, right value.Generic) (value.Generic, error) {
	if left.Kind() != value.Mapping || right.Kind() != value.Mapping {
		return right, nil
	}
	out := mapPairs(left)
	n := right.Len()
	for i := 0; i < n; i++ {
		rk, rv := right.Pair(i)
		merged := false
		for j := 0; j+1 < len(out); j += 2 {
			if value.Equal(out[j], rk) {
				nv, err := deepMerge(b, out[j+1], rv)
				if err != nil {
					return value.InvalidWord, err
				}
				out[j+1] = nv
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, rk, rv)
		}
	}
	return value.NewMapping(b.Dest(), out, false)
}

func opMerge(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	acc := in
	for _, other := range args.Items {
		var err error
		acc, err = deepMerge(b, acc, other)
		if err != nil {
			return value.InvalidWord, err
		}
	}
	return acc, nil
}

func opUnique(b *builder.Builder, in value.Generic) (value.Generic, error) {
	if in.Kind() != value.Sequence {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Unique", "not a sequence")
	}
	items := seqItems(in)
	out := make([]value.Generic, 0, len(items))
	for _, it := range items {
		dup := false
		for _, seen := range out {
			if value.Equal(seen, it) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, it)
		}
	}
	return value.NewSequence(b.Dest(), out)
}

func opSlice(b *builder.Builder, in value.Generic, lo, hi int, py bool) (value.Generic, error) {
	if in.Kind() != value.Sequence {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Slice", "not a sequence")
	}
	n := in.Len()
	if py {
		if lo < 0 {
			lo += n
		}
		if hi < 0 {
			hi += n
		}
	}
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if lo > hi {
		return value.InvalidWord, fyerr.New(fyerr.IndexOutOfRange, "collection.Slice", "invalid bounds")
	}
	out := make([]value.Generic, hi-lo)
	for i := lo; i < hi; i++ {
		out[i-lo] = in.At(i)
	}
	return value.NewSequence(b.Dest(), out)
}

func opGet(in value.Generic, key value.Generic) (value.Generic, error) {
	if in.Kind() != value.Mapping {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Get", "not a mapping")
	}
	n := in.Len()
	for i := 0; i < n; i++ {
		k, v := in.Pair(i)
		if value.Equal(k, key) {
			return v, nil
		}
	}
	return value.NullValue, nil
}

func opSet(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	return opAssoc(b, in, Args{Items: []value.Generic{args.Key, at0(args)}, Flags: 0})
}

func at0(args Args) value.Generic {
	if len(args.Items) == 0 {
		return value.NullValue
	}
	return args.Items[0]
}

func opSetAt(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	if in.Kind() != value.Sequence {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.SetAt", "not a sequence")
	}
	items := seqItems(in)
	if args.Index < 0 || args.Index >= len(items) {
		return value.InvalidWord, fyerr.New(fyerr.IndexOutOfRange, "collection.SetAt", "index out of range")
	}
	items[args.Index] = at0(args)
	return value.NewSequence(b.Dest(), items)
}
