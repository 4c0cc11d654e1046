// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package alloc

import (
	"golang.org/x/sys/unix"
)

// mapArena allocates a fresh arena extent. Mmap-backed extents are
// anonymous, private mappings; Malloc/Default extents are plain Go
// slices (the GC-managed heap stands in for the system allocator).
func mapArena(b Backing, size int) []byte {
	if size <= 0 {
		size = 1
	}
	if b == BackingMmap {
		data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			return nil
		}
		return data
	}
	return make([]byte, size)
}

// growArenaInPlace attempts to grow data to newSize without moving its
// base address, using mremap without MREMAP_MAYMOVE. This allocator never
// relocates existing Generic pointers, so a move-capable mremap is never
// requested; on failure the caller chains a new arena instead.
func growArenaInPlace(b Backing, data []byte, newSize int) ([]byte, bool) {
	if b != BackingMmap || len(data) == 0 {
		return nil, false
	}
	grown, err := unix.Mremap(data, newSize, 0) // flags=0: never move
	if err != nil {
		return nil, false
	}
	return grown, true
}

func unmapArena(b Backing, data []byte) {
	if b == BackingMmap && len(data) > 0 {
		_ = unix.Munmap(data)
	}
}
