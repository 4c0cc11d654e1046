// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/value"
)

func TestMarkerRoundTrip(t *testing.T) {
	d := newDest(t)
	fields := value.MarkerFields{
		File:  "doc.yaml",
		Start: value.Position{Index: 10, Line: 2, Column: 3},
		End:   value.Position{Index: 20, Line: 2, Column: 13},
	}
	m, err := value.NewMarker(d, fields)
	require.NoError(t, err)
	require.True(t, value.IsMarker(m))

	got := value.DecodeMarker(m)
	require.Equal(t, fields.File, got.File)
	require.Equal(t, fields.Start, got.Start)
	require.Equal(t, fields.End, got.End)
}

func TestIsMarkerRejectsUnrelatedSequences(t *testing.T) {
	d := newDest(t)
	seq := mustSeq(t, d, mustInt(t, d, 1), mustInt(t, d, 2))
	require.False(t, value.IsMarker(seq))
}
