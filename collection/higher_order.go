// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package collection

import (
	"github.com/libfy/fy/builder"
	"github.com/libfy/fy/fyerr"
	"github.com/libfy/fy/value"
)

func opFilter(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	if in.Kind() != value.Sequence {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Filter", "not a sequence")
	}
	if args.Predicate == nil {
		return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "collection.Filter", "nil predicate")
	}
	items := seqItems(in)

	if !args.parallel() {
		out := make([]value.Generic, 0, len(items))
		for _, it := range items {
			if args.Predicate(it) {
				out = append(out, it)
			}
		}
		return value.NewSequence(b.Dest(), out)
	}

	// Parallel Filter preserves input order (spec.md §4.4): each chunk
	// is filtered independently and results are concatenated in chunk
	// order, not completion order.
	ranges := chunk(len(items), defaultParallelWorkers)
	kept := make([][]value.Generic, len(ranges))
	for idx, r := range ranges {
		idx, r := idx, r
		args.Pool.Go(func() {
			var local []value.Generic
			for i := r[0]; i < r[1]; i++ {
				if args.Predicate(items[i]) {
					local = append(local, items[i])
				}
			}
			kept[idx] = local
		})
	}
	args.Pool.Wait()
	out := make([]value.Generic, 0, len(items))
	for _, part := range kept {
		out = append(out, part...)
	}
	return value.NewSequence(b.Dest(), out)
}

func opMap(b *builder.Builder, in value.Generic, args Args) (value.Generic, error) {
	if in.Kind() != value.Sequence {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Map", "not a sequence")
	}
	if args.Transform == nil {
		return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "collection.Map", "nil transform")
	}
	items := seqItems(in)

	if !args.parallel() {
		out := make([]value.Generic, len(items))
		for i, it := range items {
			out[i] = args.Transform(it)
		}
		return value.NewSequence(b.Dest(), out)
	}

	// Parallel Map preserves input order by writing each result to its
	// own slot, independent of completion order.
	out := make([]value.Generic, len(items))
	ranges := chunk(len(items), defaultParallelWorkers)
	for _, r := range ranges {
		r := r
		args.Pool.Go(func() {
			for i := r[0]; i < r[1]; i++ {
				out[i] = args.Transform(items[i])
			}
		})
	}
	args.Pool.Wait()
	return value.NewSequence(b.Dest(), out)
}

func opReduce(in value.Generic, args Args) (value.Generic, error) {
	if in.Kind() != value.Sequence {
		return value.InvalidWord, fyerr.New(fyerr.KindMismatch, "collection.Reduce", "not a sequence")
	}
	if args.Reducer == nil {
		return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "collection.Reduce", "nil reducer")
	}
	items := seqItems(in)

	if !args.parallel() {
		acc := args.Accumulator
		for _, it := range items {
			acc = args.Reducer(acc, it)
		}
		return acc, nil
	}

	// Parallel Reduce does not guarantee fold order (spec.md §4.4);
	// valid only when the reducer is associative. Each chunk folds
	// independently from the same initial accumulator, and the partial
	// results are folded together in chunk order (itself unspecified
	// relative to single-threaded fold order, but deterministic given
	// a fixed chunking).
	ranges := chunk(len(items), defaultParallelWorkers)
	partials := make([]value.Generic, len(ranges))
	for idx, r := range ranges {
		idx, r := idx, r
		args.Pool.Go(func() {
			acc := args.Accumulator
			for i := r[0]; i < r[1]; i++ {
				acc = args.Reducer(acc, items[i])
			}
			partials[idx] = acc
		})
	}
	args.Pool.Wait()
	acc := args.Accumulator
	for _, p := range partials {
		acc = args.Reducer(acc, p)
	}
	return acc, nil
}
