// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"fmt"

	"github.com/libfy/fy/alloc"
	"github.com/libfy/fy/fyerr"
)

func errLocalExhausted(size int) error {
	return fyerr.New(fyerr.OutOfMemory, "builder.RunLocal", fmt.Sprintf("exhausted retry at buffer size %d", size))
}

// Stack-buffer fast-retry, spec.md §4.3.3: the caller-facing algebra's
// "local" variant constructs a builder over a small buffer and retries
// with a doubled buffer whenever the first attempt both returned
// Invalid and recorded an allocation failure. Because values are
// immutable and each attempt starts from an empty builder, retries
// always produce identical results on success.
const (
	initialLocalBufferSize = 384
	maxLocalBufferSize     = 64 * 1024
)

// LocalResult is what a fn passed to RunLocal returns: the built
// value (or value.InvalidWord on failure) plus whether it succeeded.
// fn must treat ok==false as "retry with a bigger buffer", not as a
// hard error; only the final attempt's error is surfaced.
type LocalResult[T any] struct {
	Value T
	OK    bool
}

// RunLocal constructs a fresh Builder over a stack-sized buffer, calls
// fn, and — if fn reports !ok and the builder recorded at least one
// allocation failure — doubles the buffer and retries, up to
// maxLocalBufferSize. The final error (if the last attempt still
// failed after reaching the size cap) is returned alongside the zero
// value of T.
func RunLocal[T any](opts []Option, fn func(b *Builder) LocalResult[T]) (T, error) {
	size := initialLocalBufferSize
	for {
		buf := make([]byte, size)
		lin := alloc.NewLinearIn(buf)
		localOpts := append(append([]Option{}, opts...), WithAllocator(lin))
		b, err := New(localOpts...)
		if err != nil {
			var zero T
			return zero, err
		}

		res := fn(b)
		if res.OK {
			return res.Value, nil
		}
		if b.AllocationFailures() == 0 || size >= maxLocalBufferSize {
			var zero T
			return zero, errLocalExhausted(size)
		}
		size *= 2
		if size > maxLocalBufferSize {
			size = maxLocalBufferSize
		}
	}
}
