// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package builder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/builder"
	"github.com/libfy/fy/value"
)

func TestNewRequiresAllocatorOrCreateAllocator(t *testing.T) {
	_, err := builder.New()
	require.Error(t, err)
}

func TestChildScopeInheritsLeaderTag(t *testing.T) {
	root, err := builder.New(builder.WithFlags(builder.CreateAllocator | builder.CreateTag | builder.ScopeLeader))
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	child, err := builder.New(builder.WithParent(root))
	require.NoError(t, err)

	require.Equal(t, root.Tag(), child.Tag())
	require.Equal(t, root.Allocator(), child.Allocator())
}

func TestExportInternalizesIntoLeaderScope(t *testing.T) {
	root, err := builder.New(builder.WithFlags(builder.CreateAllocator | builder.CreateTag | builder.ScopeLeader))
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	child, err := builder.New(builder.WithParent(root))
	require.NoError(t, err)

	v, err := value.NewString(child.Dest(), "transient value built in a child scope")
	require.NoError(t, err)

	exported, err := child.Export(v)
	require.NoError(t, err)
	require.True(t, value.Equal(v, exported))
}

func TestRunLocalRetriesOnUndersizedBuffer(t *testing.T) {
	result, err := builder.RunLocal(nil, func(b *builder.Builder) builder.LocalResult[value.Generic] {
		items := make([]value.Generic, 0, 64)
		for i := 0; i < 64; i++ {
			g, err := value.NewString(b.Dest(), "a moderately sized string value that forces growth")
			if err != nil {
				return builder.LocalResult[value.Generic]{OK: false}
			}
			items = append(items, g)
		}
		seq, err := value.NewSequence(b.Dest(), items)
		if err != nil {
			return builder.LocalResult[value.Generic]{OK: false}
		}
		return builder.LocalResult[value.Generic]{Value: seq, OK: true}
	})
	require.NoError(t, err)
	require.Equal(t, 64, result.Len())
}
