// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package collection_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/builder"
	"github.com/libfy/fy/collection"
	"github.com/libfy/fy/value"
)

func newBuilder(t *testing.T) *builder.Builder {
	t.Helper()
	b, err := builder.New(
		builder.WithFlags(builder.CreateAllocator|builder.CreateTag|builder.ScopeLeader),
		builder.WithEstimatedMaxSize(16<<10),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func intG(t *testing.T, b *builder.Builder, v int64) value.Generic {
	t.Helper()
	g, err := value.NewInt(b.Dest(), v)
	require.NoError(t, err)
	return g
}

func strG(t *testing.T, b *builder.Builder, s string) value.Generic {
	t.Helper()
	g, err := value.NewString(b.Dest(), s)
	require.NoError(t, err)
	return g
}

func TestAppendSequence(t *testing.T) {
	b := newBuilder(t)
	seq, err := value.NewSequence(b.Dest(), []value.Generic{intG(t, b, 1), intG(t, b, 2)})
	require.NoError(t, err)

	out, err := collection.Exec(b, collection.Append, seq, collection.Args{Items: []value.Generic{intG(t, b, 3)}})
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())
	require.Equal(t, int64(3), out.At(2).AsInt64())
}

func TestAssocAndDisassocMapping(t *testing.T) {
	b := newBuilder(t)
	m, err := value.NewMapping(b.Dest(), []value.Generic{strG(t, b, "a"), intG(t, b, 1)}, false)
	require.NoError(t, err)

	added, err := collection.Exec(b, collection.Assoc, m, collection.Args{Items: []value.Generic{strG(t, b, "b"), intG(t, b, 2)}})
	require.NoError(t, err)
	require.Equal(t, 2, added.Len())

	removed, err := collection.Exec(b, collection.Disassoc, added, collection.Args{Items: []value.Generic{strG(t, b, "a")}})
	require.NoError(t, err)
	require.Equal(t, 1, removed.Len())
	k, _ := removed.Pair(0)
	require.Equal(t, "b", k.AsString())
}

func TestSortStable(t *testing.T) {
	b := newBuilder(t)
	seq, err := value.NewSequence(b.Dest(), []value.Generic{intG(t, b, 3), intG(t, b, 1), intG(t, b, 2), intG(t, b, 1)})
	require.NoError(t, err)

	sorted, err := collection.Exec(b, collection.Sort, seq, collection.Args{})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 1, 2, 3}, toInts(sorted))
}

func TestMergeDeep(t *testing.T) {
	b := newBuilder(t)
	inner1, err := value.NewMapping(b.Dest(), []value.Generic{strG(t, b, "x"), intG(t, b, 1)}, false)
	require.NoError(t, err)
	left, err := value.NewMapping(b.Dest(), []value.Generic{strG(t, b, "nested"), inner1, strG(t, b, "keep"), intG(t, b, 10)}, false)
	require.NoError(t, err)

	inner2, err := value.NewMapping(b.Dest(), []value.Generic{strG(t, b, "y"), intG(t, b, 2)}, false)
	require.NoError(t, err)
	right, err := value.NewMapping(b.Dest(), []value.Generic{strG(t, b, "nested"), inner2}, false)
	require.NoError(t, err)

	merged, err := collection.Exec(b, collection.Merge, left, collection.Args{Items: []value.Generic{right}})
	require.NoError(t, err)

	nested, err := collection.Exec(b, collection.Get, merged, collection.Args{Key: strG(t, b, "nested")})
	require.NoError(t, err)
	require.Equal(t, 2, nested.Len())
}

func TestGetAtPathAndSetAtPath(t *testing.T) {
	b := newBuilder(t)
	inner, err := value.NewMapping(b.Dest(), []value.Generic{strG(t, b, "b"), intG(t, b, 1)}, false)
	require.NoError(t, err)
	root, err := value.NewMapping(b.Dest(), []value.Generic{strG(t, b, "a"), inner}, false)
	require.NoError(t, err)

	path := []value.Generic{strG(t, b, "a"), strG(t, b, "b")}
	got, err := collection.GetAtPath(root, path)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.AsInt64())

	updated, err := collection.SetAtPath(b, root, []value.Generic{strG(t, b, "a"), strG(t, b, "c")}, intG(t, b, 99), true)
	require.NoError(t, err)
	got2, err := collection.GetAtPath(updated, []value.Generic{strG(t, b, "a"), strG(t, b, "c")})
	require.NoError(t, err)
	require.Equal(t, int64(99), got2.AsInt64())
}

func TestFilterMapReduce(t *testing.T) {
	b := newBuilder(t)
	seq, err := value.NewSequence(b.Dest(), []value.Generic{intG(t, b, 1), intG(t, b, 2), intG(t, b, 3), intG(t, b, 4)})
	require.NoError(t, err)

	evens, err := collection.Exec(b, collection.Filter, seq, collection.Args{
		Predicate: func(v value.Generic) bool { return v.AsInt64()%2 == 0 },
	})
	require.NoError(t, err)
	require.Equal(t, []int64{2, 4}, toInts(evens))

	doubled, err := collection.Exec(b, collection.Map, evens, collection.Args{
		Transform: func(v value.Generic) value.Generic { return intG(t, b, v.AsInt64()*2) },
	})
	require.NoError(t, err)
	require.Equal(t, []int64{4, 8}, toInts(doubled))

	sum, err := collection.Exec(b, collection.Reduce, doubled, collection.Args{
		Accumulator: intG(t, b, 0),
		Reducer:     func(acc, v value.Generic) value.Generic { return intG(t, b, acc.AsInt64()+v.AsInt64()) },
	})
	require.NoError(t, err)
	require.Equal(t, int64(12), sum.AsInt64())
}

func TestConvert(t *testing.T) {
	b := newBuilder(t)
	s := strG(t, b, "42")
	n, err := collection.Exec(b, collection.Convert, s, collection.Args{TargetKind: value.Int})
	require.NoError(t, err)
	require.Equal(t, int64(42), n.AsInt64())
}

func toInts(seq value.Generic) []int64 {
	out := make([]int64, seq.Len())
	for i := range out {
		out[i] = seq.At(i).AsInt64()
	}
	return out
}
