// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package alloc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/alloc"
)

func TestLinearAllocBumpsAndReleases(t *testing.T) {
	l := alloc.NewLinear(64)
	p1, err := l.Alloc(alloc.NoTag, 16, 8)
	require.NoError(t, err)
	require.NotNil(t, p1)

	require.NoError(t, l.ReleaseTag(alloc.NoTag))
	require.Zero(t, l.TagSize(alloc.NoTag))
}

func TestLinearOutOfMemory(t *testing.T) {
	l := alloc.NewLinear(8)
	_, err := l.Alloc(alloc.NoTag, 64, 8)
	require.Error(t, err)
}

func TestDedupAliasesEqualContent(t *testing.T) {
	d := alloc.NewDedup(alloc.NewLinear(4096), alloc.DefaultDedupConfig())
	require.NoError(t, d.AcquireTag(alloc.NoTag))
	p1, err := d.Store(alloc.NoTag, []byte("hello world"), 1)
	require.NoError(t, err)
	p2, err := d.Store(alloc.NoTag, []byte("hello world"), 1)
	require.NoError(t, err)
	require.Equal(t, p1, p2)
}

func TestAutoSelectsRequestedScenario(t *testing.T) {
	a, err := alloc.NewAuto(alloc.SingleLinearRange)
	require.NoError(t, err)
	require.Equal(t, "linear", a.Name())

	a2, err := alloc.NewAuto(alloc.PerObjFree)
	require.NoError(t, err)
	require.Equal(t, "malloc", a2.Name())
}
