// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/value"
)

func TestNewMappingWithNonStringKeys(t *testing.T) {
	d := newDest(t)
	m, err := value.NewMapping(d, []value.Generic{
		mustInt(t, d, 1), mustString(t, d, "one"),
		value.TrueValue, mustString(t, d, "yes"),
		mustSeq(t, d, mustInt(t, d, 1), mustInt(t, d, 2)), mustString(t, d, "pair"),
	}, false)
	require.NoError(t, err)
	require.Equal(t, 3, m.Len())
}

func TestNewMappingDedupesNonStringKeysByEquality(t *testing.T) {
	d := newDest(t)
	m, err := value.NewMapping(d, []value.Generic{
		mustInt(t, d, 7), mustString(t, d, "first"),
		mustInt(t, d, 7), mustString(t, d, "second"),
	}, false)
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
	k, v := m.Pair(0)
	require.True(t, value.Equal(k, mustInt(t, d, 7)))
	require.Equal(t, "second", v.AsString())
}

func TestNewMappingDuplicateKeysDisabledAcrossKinds(t *testing.T) {
	d := newDest(t)
	_, err := value.NewMapping(d, []value.Generic{
		value.FalseValue, mustString(t, d, "a"),
		value.FalseValue, mustString(t, d, "b"),
	}, true)
	require.Error(t, err)
}

func TestNewMappingDistinguishesKeysAcrossKind(t *testing.T) {
	d := newDest(t)
	// An Int 0 and a Bool false must never collapse into the same slot
	// even though naive textual rendering of both could coincide.
	m, err := value.NewMapping(d, []value.Generic{
		mustInt(t, d, 0), mustString(t, d, "int-zero"),
		value.FalseValue, mustString(t, d, "bool-false"),
	}, false)
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())
}
