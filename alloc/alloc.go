// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package alloc implements the capability-tagged allocator family spec.md
// §4.1 describes: a pluggable interface plus five concrete strategies
// (bump arena, system heap, growable arena, content-addressed dedup, and a
// policy-driven auto selector). Every out-of-place Generic payload the
// value package produces is written through this interface.
package alloc

import (
	"unsafe"

	"github.com/libfy/fy/fyerr"
)

// Tag is an integer partition identifier within an allocator. Releasing a
// tag deallocates everything stored under it in O(tags) or O(1) depending
// on the strategy (spec.md §3.5).
type Tag uint32

// NoTag is the zero value, used by strategies that support only a single
// implicit tag (e.g. Linear).
const NoTag Tag = 0

// Capability is a bitset an Allocator reports describing which operations
// it supports, per spec.md §4.1.
type Capability uint32

const (
	CanFreeIndividual Capability = 1 << iota // Free(ptr) actually reclaims the object
	CanFreeTag                               // ReleaseTag reclaims everything under a tag
	CanDedup                                  // Store may alias equal byte sequences
	HasContains                               // Contains is implemented (not always-false)
	HasEfficientContains                      // Contains is cheap enough for copy's internalize fast path
	HasTags                                   // supports more than one tag (CreateTag/AcquireTag meaningful)
	CanLookup                                 // Lookup/Lookupv are implemented
)

// Has reports whether all bits of want are set in c.
func (c Capability) Has(want Capability) bool { return c&want == want }

// ArenaExtent describes one contiguous region owned by a tag, per the
// (data, size, used, free) tuple spec.md §4.1 requires from the arena-walk
// info structure.
type ArenaExtent struct {
	Data unsafe.Pointer
	Size int
	Used int
	Free int
}

// TagInfo is the result of walking one tag's arena chain.
type TagInfo struct {
	Tag    Tag
	Arenas []ArenaExtent
}

// LinearSize sums Used across all arenas in the tag, the "tag linear size"
// spec.md §4.1 asks every allocator to be able to report.
func (ti TagInfo) LinearSize() int64 {
	var n int64
	for _, a := range ti.Arenas {
		n += int64(a.Used)
	}
	return n
}

// Allocator is the interface every strategy in this package implements.
// All methods are safe to call concurrently only to the extent documented
// per-strategy (spec.md §5): Linear is single-threaded, Growable and Dedup
// require callers to serialize mutators (the builder chain does this).
type Allocator interface {
	// Name identifies the strategy, e.g. "linear", "malloc", "mremap",
	// "dedup", "auto".
	Name() string

	// Capabilities reports which optional operations this allocator
	// supports.
	Capabilities() Capability

	// CreateTag acquires a fresh tag. Strategies without HasTags return
	// NoTag unconditionally.
	CreateTag() (Tag, error)

	// AcquireTag marks an existing tag as in-use, for allocators whose
	// tag space is externally numbered (e.g. a Dedup layer sharing its
	// parent's tags).
	AcquireTag(t Tag) error

	// ReleaseTag frees everything allocated under t. Requires
	// CanFreeTag; otherwise it is a documented no-op.
	ReleaseTag(t Tag) error

	// ResetTag rewinds t to empty without releasing backing storage,
	// so a subsequent allocation under t can reuse the arena.
	ResetTag(t Tag) error

	// TrimTag releases unused backing storage for t without changing
	// its logical contents.
	TrimTag(t Tag) error

	// Alloc returns size bytes aligned to align, uninitialized, owned
	// by t. Returns (nil, *fyerr.Error) with Kind OutOfMemory on
	// exhaustion.
	Alloc(t Tag, size, align int) (unsafe.Pointer, error)

	// Store copies data into t-owned storage aligned to align and
	// returns the interned pointer. Dedup-capable allocators may return
	// a pointer from a prior equal Store.
	Store(t Tag, data []byte, align int) (unsafe.Pointer, error)

	// Storev is the scatter-gather form of Store, concatenating iov.
	Storev(t Tag, iov [][]byte, align int) (unsafe.Pointer, error)

	// Lookup reports whether data is already interned under t without
	// storing it. Requires CanLookup.
	Lookup(t Tag, data []byte, align int) (unsafe.Pointer, bool)

	// Lookupv is the scatter-gather form of Lookup.
	Lookupv(t Tag, iov [][]byte, align int) (unsafe.Pointer, bool)

	// Free releases a single object. A no-op unless CanFreeIndividual.
	Free(t Tag, ptr unsafe.Pointer)

	// Contains reports whether ptr was returned by this allocator under
	// t. Always returns false unless HasContains.
	Contains(t Tag, ptr unsafe.Pointer) bool

	// TagSize reports LinearSize for t without walking the full chain
	// when the strategy tracks it incrementally.
	TagSize(t Tag) int64

	// LinearPointer returns a single contiguous pointer for t when the
	// tag happens to be laid out in one extent (true for Linear always,
	// and for Growable tags that never had to grow past their first
	// arena). The bool reports whether such a pointer exists.
	LinearPointer(t Tag) (unsafe.Pointer, bool)

	// ArenaInfo walks the arena chain for t.
	ArenaInfo(t Tag) (TagInfo, bool)

	// Destroy releases every tag and any backing resources. After
	// Destroy, the allocator must not be used again.
	Destroy() error
}

func errOOM(op string) error {
	return fyerr.New(fyerr.OutOfMemory, op, "allocator exhausted")
}

// alignUp rounds n up to the next multiple of align. align must be a power
// of two.
func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// ptrAligned reports whether p's address is a multiple of align. Debug
// builds use this to assert spec.md §3.4's pointer-alignment invariant.
func ptrAligned(p unsafe.Pointer, align int) bool {
	return uintptr(p)%uintptr(align) == 0
}
