// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/value"
)

func TestHashConsistentWithEqual(t *testing.T) {
	d := newDest(t)
	a := mustMap(t, d, mustString(t, d, "k"), mustInt(t, d, 1))
	b := mustMap(t, d, mustString(t, d, "k"), mustInt(t, d, 1))
	require.True(t, value.Equal(a, b))
	require.Equal(t, value.Hash(a), value.Hash(b))
}

func TestHashNaNCanonicalized(t *testing.T) {
	d := newDest(t)
	nan1 := mustFloat(t, d, math.NaN())
	nan2 := mustFloat(t, d, math.NaN())
	require.Equal(t, value.Hash(nan1), value.Hash(nan2))
}

func TestHashMappingOrderIndependent(t *testing.T) {
	d := newDest(t)
	m1 := mustMap(t, d, mustString(t, d, "a"), mustInt(t, d, 1), mustString(t, d, "b"), mustInt(t, d, 2))
	m2 := mustMap(t, d, mustString(t, d, "b"), mustInt(t, d, 2), mustString(t, d, "a"), mustInt(t, d, 1))
	require.Equal(t, value.Hash(m1), value.Hash(m2))
}

func TestHashDistinguishesDifferentValues(t *testing.T) {
	d := newDest(t)
	a := mustSeq(t, d, mustInt(t, d, 1), mustInt(t, d, 2))
	b := mustSeq(t, d, mustInt(t, d, 1), mustInt(t, d, 3))
	require.NotEqual(t, value.Hash(a), value.Hash(b))
}
