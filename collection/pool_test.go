// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package collection_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/collection"
	"github.com/libfy/fy/value"
)

func TestParallelMapMatchesSequential(t *testing.T) {
	b := newBuilder(t)
	items := make([]value.Generic, 0, 200)
	for i := 0; i < 200; i++ {
		items = append(items, intG(t, b, int64(i)))
	}
	seq, err := value.NewSequence(b.Dest(), items)
	require.NoError(t, err)

	sequential, err := collection.Exec(b, collection.Map, seq, collection.Args{
		Transform: func(v value.Generic) value.Generic { return intG(t, b, v.AsInt64()*2) },
	})
	require.NoError(t, err)

	parallel, err := collection.Exec(b, collection.Map, seq, collection.Args{
		Flags: collection.Parallel,
		Pool:  collection.NewGoPool(),
		Transform: func(v value.Generic) value.Generic {
			g, _ := value.NewInt(b.Dest(), v.AsInt64()*2)
			return g
		},
	})
	require.NoError(t, err)

	require.Equal(t, toInts(sequential), toInts(parallel))
}

func TestParallelReduceIsAssociative(t *testing.T) {
	b := newBuilder(t)
	items := make([]value.Generic, 0, 100)
	for i := 1; i <= 100; i++ {
		items = append(items, intG(t, b, int64(i)))
	}
	seq, err := value.NewSequence(b.Dest(), items)
	require.NoError(t, err)

	sum, err := collection.Exec(b, collection.Reduce, seq, collection.Args{
		Flags:       collection.Parallel,
		Pool:        collection.NewGoPool(),
		Accumulator: intG(t, b, 0),
		Reducer: func(acc, v value.Generic) value.Generic {
			g, _ := value.NewInt(b.Dest(), acc.AsInt64()+v.AsInt64())
			return g
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(5050), sum.AsInt64())
}
