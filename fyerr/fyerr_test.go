// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package fyerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/fyerr"
)

func TestNewAndErrorMessage(t *testing.T) {
	err := fyerr.New(fyerr.OutOfMemory, "alloc.Linear.Alloc", "arena exhausted")
	require.Contains(t, err.Error(), "alloc.Linear.Alloc")
	require.Contains(t, err.Error(), "out of memory")
	require.Contains(t, err.Error(), "arena exhausted")
	require.Nil(t, err.Unwrap())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying syscall failure")
	err := fyerr.Wrap(fyerr.IoError, "codec.Decoder.Decode", "read failed", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "read failed")
	require.Contains(t, err.Error(), "underlying syscall failure")
}

func TestIsMatchesByKindNotByIdentity(t *testing.T) {
	a := fyerr.New(fyerr.InvalidInput, "value.NewString", "nil dest")
	b := fyerr.New(fyerr.InvalidInput, "collection.Exec", "bad opcode")
	c := fyerr.New(fyerr.KindMismatch, "value.AsInt64", "not an Int")

	require.True(t, errors.Is(a, b))
	require.False(t, errors.Is(a, c))
}

func TestKindOfUnwrapsAndDefaultsToNoError(t *testing.T) {
	err := fyerr.New(fyerr.DuplicateKey, "value.NewMapping", "key repeated")
	require.Equal(t, fyerr.DuplicateKey, fyerr.KindOf(err))

	wrapped := fyerr.Wrap(fyerr.PathNotFound, "collection.GetAtPath", "segment missing", err)
	require.Equal(t, fyerr.PathNotFound, fyerr.KindOf(wrapped))

	require.Equal(t, fyerr.NoError, fyerr.KindOf(nil))
	require.Equal(t, fyerr.NoError, fyerr.KindOf(errors.New("plain error")))
}

func TestKindStringOutOfRange(t *testing.T) {
	var k fyerr.Kind = 127
	require.Contains(t, k.String(), "Kind(127)")
}
