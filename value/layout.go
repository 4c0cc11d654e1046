// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"math"
	"math/bits"
	"unsafe"
)

// SizeOverflow is returned by the storage-size helpers when a requested
// collection would overflow the address space, per spec.md §4.2.1.
const SizeOverflow = -1

const wordSize = int(unsafe.Sizeof(Generic(0)))

// --- Integer blob (8-byte alignment) ---

// IntFlagUnsignedExtend marks an out-of-place Int whose 64-bit payload
// should be read back as unsigned because it exceeds the signed-64 range
// (spec.md §6.4).
const IntFlagUnsignedExtend uintptr = 1

// IntBlob is the out-of-place integer payload: a 64-bit value plus a
// 64-bit flags word.
type IntBlob struct {
	Value int64
	Flags uintptr
}

const IntBlobSize = int(unsafe.Sizeof(IntBlob{}))

// --- Float blob (8-byte alignment) ---

// FloatBlob is the out-of-place float payload: one f64.
type FloatBlob struct {
	Value float64
}

const FloatBlobSize = int(unsafe.Sizeof(FloatBlob{}))

// --- String blob (8-byte alignment) ---

// StringBlob is an opaque marker type for the variable-length string
// payload: a base-128 length prefix, the raw bytes, and one NUL
// terminator not counted in the logical length. Its methods operate via
// unsafe.Pointer since its layout has no fixed Go shape.
type StringBlob struct{ _ [0]byte }

func (b *StringBlob) bytes() []byte {
	p := unsafe.Pointer(b)
	n, hdr := decodeVarint(p)
	base := unsafe.Add(p, hdr)
	return unsafe.Slice((*byte)(base), int(n))
}

// String decodes the blob's logical string value.
func (b *StringBlob) String() string { return string(b.bytes()) }

// stringBlobSize returns the total byte size needed to store s as a
// string blob: varint header + bytes + NUL terminator.
func stringBlobSize(n int) int {
	return varintSize(uint64(n)) + n + 1
}

func encodeStringBlob(dst []byte, s string) {
	hdr := encodeVarint(dst, uint64(len(s)))
	copy(dst[hdr:], s)
	dst[hdr+len(s)] = 0
}

// --- Sequence / Mapping blobs (16-byte alignment) ---

// SeqBlob is an opaque marker for the out-of-place sequence payload:
// count followed by count inline Generic words.
type SeqBlob struct{ Count int }

func (b *SeqBlob) items() []Generic {
	p := unsafe.Add(unsafe.Pointer(b), unsafe.Sizeof(b.Count))
	return unsafe.Slice((*Generic)(p), b.Count)
}

// At returns the i'th element.
func (b *SeqBlob) At(i int) Generic { return b.items()[i] }

// Items returns every element, in order.
func (b *SeqBlob) Items() []Generic { return b.items() }

// SeqStorageSize computes the byte size of a sequence blob holding count
// items, guarding against overflow per spec.md §4.2.1. Returns
// SizeOverflow on overflow.
func SeqStorageSize(count int) int {
	if count < 0 {
		return SizeOverflow
	}
	hdr := int(unsafe.Sizeof(int(0)))
	if count > (math.MaxInt-hdr)/wordSize {
		return SizeOverflow
	}
	return hdr + count*wordSize
}

// MapBlob is an opaque marker for the out-of-place mapping payload: count
// followed by count key/value pairs (two Generic words each).
type MapBlob struct{ Count int }

func (b *MapBlob) pairs() []Generic {
	p := unsafe.Add(unsafe.Pointer(b), unsafe.Sizeof(b.Count))
	return unsafe.Slice((*Generic)(p), b.Count*2)
}

// At returns the i'th key/value pair.
func (b *MapBlob) At(i int) (Generic, Generic) {
	p := b.pairs()
	return p[2*i], p[2*i+1]
}

// Pairs returns every key, value in order, flattened.
func (b *MapBlob) Pairs() []Generic { return b.pairs() }

// MapStorageSize computes the byte size of a mapping blob holding count
// pairs, guarding against overflow.
func MapStorageSize(count int) int {
	if count < 0 {
		return SizeOverflow
	}
	hdr := int(unsafe.Sizeof(int(0)))
	if count > (math.MaxInt-hdr)/(2*wordSize) {
		return SizeOverflow
	}
	return hdr + count*2*wordSize
}

// --- Indirect blob (16-byte alignment) ---

// Indirect flag bits, in the fixed slot order spec.md §3.3 requires.
const (
	FlagValue uintptr = 1 << iota
	FlagAnchor
	FlagTag
	FlagAlias
	FlagDiag
	FlagMarker
	FlagComment
	FlagStyle
	FlagFailsafeStr
)

// IndirectBlob is a flag bitmap followed by exactly the Generic slots
// whose flag is set, in ascending flag-bit order.
type IndirectBlob struct{ flags uintptr }

func (b *IndirectBlob) slotIndex(flag uintptr) int {
	return bits.OnesCount(uint(b.flags & (flag - 1)))
}

func (b *IndirectBlob) slot(flag uintptr) Generic {
	if b.flags&flag == 0 {
		return InvalidWord
	}
	p := unsafe.Add(unsafe.Pointer(b), unsafe.Sizeof(b.flags)+uintptr(b.slotIndex(flag))*uintptr(wordSize))
	return *(*Generic)(p)
}

func (b *IndirectBlob) setSlot(flag uintptr, v Generic) {
	p := unsafe.Add(unsafe.Pointer(b), unsafe.Sizeof(b.flags)+uintptr(b.slotIndex(flag))*uintptr(wordSize))
	*(*Generic)(p) = v
}

// Flags reports which optional slots are present.
func (b *IndirectBlob) Flags() uintptr { return b.flags }

// Value, Anchor, Tag, Alias, Diag, Marker, Comment, Style, FailsafeStr
// return the corresponding slot, or InvalidWord if absent.
func (b *IndirectBlob) Value() Generic       { return b.slot(FlagValue) }
func (b *IndirectBlob) Anchor() Generic      { return b.slot(FlagAnchor) }
func (b *IndirectBlob) Tag() Generic         { return b.slot(FlagTag) }
func (b *IndirectBlob) Alias() Generic       { return b.slot(FlagAlias) }
func (b *IndirectBlob) Diag() Generic        { return b.slot(FlagDiag) }
func (b *IndirectBlob) Marker() Generic      { return b.slot(FlagMarker) }
func (b *IndirectBlob) Comment() Generic     { return b.slot(FlagComment) }
func (b *IndirectBlob) Style() Generic       { return b.slot(FlagStyle) }
func (b *IndirectBlob) FailsafeStr() Generic { return b.slot(FlagFailsafeStr) }

// IndirectStorageSize computes the byte size of an Indirect blob given
// its flag bitmap.
func IndirectStorageSize(flags uintptr) int {
	n := bits.OnesCount(uint(flags))
	hdr := int(unsafe.Sizeof(uintptr(0)))
	return hdr + n*wordSize
}

func encodeIndirectBlob(dst []byte, flags uintptr, slots []Generic) {
	*(*uintptr)(unsafe.Pointer(&dst[0])) = flags
	out := unsafe.Slice((*Generic)(unsafe.Add(unsafe.Pointer(&dst[0]), unsafe.Sizeof(flags))), len(slots))
	copy(out, slots)
}
