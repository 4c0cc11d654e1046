// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/value"
)

func TestCopyPreservesStructureAcrossArenas(t *testing.T) {
	src := newDest(t)
	orig := mustMap(t, src,
		mustString(t, src, "nums"), mustSeq(t, src, mustInt(t, src, 1), mustInt(t, src, 2), mustInt(t, src, 3)),
		mustString(t, src, "name"), mustString(t, src, "example"),
	)

	dst := newDest(t)
	copied, err := value.Copy(dst, orig)
	require.NoError(t, err)
	require.True(t, value.Equal(orig, copied))
	require.Equal(t, value.Hash(orig), value.Hash(copied))
}

func TestCopyScalarsPassThroughInplace(t *testing.T) {
	d := newDest(t)
	n := mustInt(t, d, 42)
	copied, err := value.Copy(d, n)
	require.NoError(t, err)
	require.Equal(t, n, copied)
}

func TestInternalizeSkipsCopyWhenAlreadyOwned(t *testing.T) {
	d := newDest(t)
	v := mustSeq(t, d, mustInt(t, d, 1))
	internalized, err := value.Internalize(d, v)
	require.NoError(t, err)
	require.True(t, value.Equal(v, internalized))
}
