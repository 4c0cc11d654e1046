// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/alloc"
	"github.com/libfy/fy/value"
)

func newDest(t *testing.T) value.Dest {
	t.Helper()
	return value.Dest{Alloc: alloc.NewLinear(64 << 10), Tag: alloc.NoTag}
}

func TestCompareCrossKindOrdering(t *testing.T) {
	d := newDest(t)
	vals := []value.Generic{
		value.NullValue,
		value.FalseValue,
		mustInt(t, d, 0),
		mustFloat(t, d, 0),
		mustString(t, d, ""),
		mustSeq(t, d),
		mustMap(t, d),
	}
	for i := 0; i < len(vals)-1; i++ {
		require.Negative(t, value.Compare(vals[i], vals[i+1]), "index %d", i)
		require.Positive(t, value.Compare(vals[i+1], vals[i]), "index %d", i)
	}
}

func TestCompareNaNIsTotalAndReflexive(t *testing.T) {
	d := newDest(t)
	nan1 := mustFloat(t, d, math.NaN())
	nan2 := mustFloat(t, d, math.NaN())
	require.Equal(t, 0, value.Compare(nan1, nan2))
	require.True(t, value.Equal(nan1, nan2))
}

func TestCompareIntOrdering(t *testing.T) {
	d := newDest(t)
	a := mustInt(t, d, -5)
	b := mustInt(t, d, 5)
	require.Negative(t, value.Compare(a, b))
	require.Positive(t, value.Compare(b, a))
	require.Zero(t, value.Compare(a, a))
}

func mustInt(t *testing.T, d value.Dest, v int64) value.Generic {
	t.Helper()
	g, err := value.NewInt(d, v)
	require.NoError(t, err)
	return g
}

func mustFloat(t *testing.T, d value.Dest, v float64) value.Generic {
	t.Helper()
	g, err := value.NewFloat(d, v)
	require.NoError(t, err)
	return g
}

func mustString(t *testing.T, d value.Dest, s string) value.Generic {
	t.Helper()
	g, err := value.NewString(d, s)
	require.NoError(t, err)
	return g
}

func mustSeq(t *testing.T, d value.Dest, items ...value.Generic) value.Generic {
	t.Helper()
	g, err := value.NewSequence(d, items)
	require.NoError(t, err)
	return g
}

func mustMap(t *testing.T, d value.Dest, pairs ...value.Generic) value.Generic {
	t.Helper()
	g, err := value.NewMapping(d, pairs, false)
	require.NoError(t, err)
	return g
}
