// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package alloc

import (
	"unsafe"
)

// Linear is the bump-arena strategy (spec.md §4.1 "linear"): O(1)
// allocation by advancing a pointer within a single buffer. Individual
// Free is a no-op; ReleaseTag/ResetTag rewind the pointer. There is a
// single buffer: CreateTag returns NoTag, AcquireTag accepts any tag,
// and every tag addresses the same buffer.
type Linear struct {
	buf  []byte
	used int
	// owned is false when the buffer was supplied by the caller (the
	// in-place variant, NewLinearIn), so Destroy must not attempt to
	// release anything the caller didn't hand us.
	owned bool
}

// NewLinear creates a Linear allocator backed by a freshly allocated
// buffer of the given size.
func NewLinear(size int) *Linear {
	return &Linear{buf: make([]byte, size), owned: true}
}

// NewLinearIn initializes a Linear allocator inside a caller-supplied
// buffer, per spec.md §4.1.1's in-place variants. No Destroy call is
// required; the buffer's lifetime is the caller's responsibility.
func NewLinearIn(buf []byte) *Linear {
	return &Linear{buf: buf}
}

func (l *Linear) Name() string { return "linear" }

func (l *Linear) Capabilities() Capability {
	return CanFreeTag | HasContains | HasEfficientContains
}

func (l *Linear) CreateTag() (Tag, error) { return NoTag, nil }

func (l *Linear) AcquireTag(t Tag) error { return nil }

func (l *Linear) ReleaseTag(t Tag) error {
	l.used = 0
	return nil
}

func (l *Linear) ResetTag(t Tag) error { return l.ReleaseTag(t) }

func (l *Linear) TrimTag(t Tag) error { return nil }

func (l *Linear) Alloc(t Tag, size, align int) (unsafe.Pointer, error) {
	start := alignUp(l.used, align)
	end := start + size
	if end > len(l.buf) {
		return nil, errOOM("Linear.Alloc")
	}
	l.used = end
	if len(l.buf) == 0 {
		return unsafe.Pointer(l), nil // degenerate empty buffer: any stable non-nil pointer
	}
	return unsafe.Add(unsafe.Pointer(&l.buf[0]), start), nil
}

func (l *Linear) Store(t Tag, data []byte, align int) (unsafe.Pointer, error) {
	p, err := l.Alloc(t, len(data), align)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		dst := unsafe.Slice((*byte)(p), len(data))
		copy(dst, data)
	}
	return p, nil
}

func (l *Linear) Storev(t Tag, iov [][]byte, align int) (unsafe.Pointer, error) {
	total := 0
	for _, v := range iov {
		total += len(v)
	}
	p, err := l.Alloc(t, total, align)
	if err != nil {
		return nil, err
	}
	dst := unsafe.Slice((*byte)(p), total)
	off := 0
	for _, v := range iov {
		off += copy(dst[off:], v)
	}
	return p, nil
}

func (l *Linear) Lookup(t Tag, data []byte, align int) (unsafe.Pointer, bool) {
	return nil, false
}

func (l *Linear) Lookupv(t Tag, iov [][]byte, align int) (unsafe.Pointer, bool) {
	return nil, false
}

func (l *Linear) Free(t Tag, ptr unsafe.Pointer) {}

func (l *Linear) Contains(t Tag, ptr unsafe.Pointer) bool {
	if len(l.buf) == 0 {
		return false
	}
	lo := uintptr(unsafe.Pointer(&l.buf[0]))
	hi := lo + uintptr(len(l.buf))
	p := uintptr(ptr)
	return p >= lo && p < hi
}

func (l *Linear) TagSize(t Tag) int64 { return int64(l.used) }

func (l *Linear) LinearPointer(t Tag) (unsafe.Pointer, bool) {
	if len(l.buf) == 0 {
		return nil, false
	}
	return unsafe.Pointer(&l.buf[0]), true
}

func (l *Linear) ArenaInfo(t Tag) (TagInfo, bool) {
	var data unsafe.Pointer
	if len(l.buf) > 0 {
		data = unsafe.Pointer(&l.buf[0])
	}
	return TagInfo{
		Tag: t,
		Arenas: []ArenaExtent{{
			Data: data,
			Size: len(l.buf),
			Used: l.used,
			Free: len(l.buf) - l.used,
		}},
	}, true
}

func (l *Linear) Destroy() error {
	l.buf = nil
	l.used = 0
	return nil
}
