// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"unsafe"

	"github.com/libfy/fy/alloc"
	"github.com/libfy/fy/fyerr"
)

// Dest names a (allocator, tag) destination for out-of-place storage.
// Scalar and collection constructors always attempt the inplace encoding
// first, per spec.md §4.2.1, and only fall back to Dest on failure.
type Dest struct {
	Alloc alloc.Allocator
	Tag   alloc.Tag
}

func (d Dest) store(data []byte, align int) (unsafe.Pointer, error) {
	if d.Alloc == nil {
		return nil, fyerr.New(fyerr.InvalidInput, "value.Dest.store", "nil allocator")
	}
	return d.Alloc.Store(d.Tag, data, align)
}

func (d Dest) storev(iov [][]byte, align int) (unsafe.Pointer, error) {
	if d.Alloc == nil {
		return nil, fyerr.New(fyerr.InvalidInput, "value.Dest.storev", "nil allocator")
	}
	return d.Alloc.Storev(d.Tag, iov, align)
}

// rawBytes reinterprets any fixed-size value as a byte slice for Store,
// matching the "copy items byte-wise" contract of spec.md §4.2.1.
func rawBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// NewInt constructs an Int Generic, choosing inplace encoding when v fits
// the signed 61-bit range and otherwise an out-of-place IntBlob (spec.md
// §4.2.1). The sign is taken from v; construct NewUint for values only
// representable unsigned.
func NewInt(d Dest, v int64) (Generic, error) {
	if fitsInplaceInt(v) {
		return newInplaceInt(v), nil
	}
	blob := IntBlob{Value: v}
	p, err := d.store(rawBytes(&blob), 8)
	if err != nil {
		return InvalidWord, err
	}
	return fromPointer(p, tagOutplaceInt, 0x7), nil
}

// NewUint constructs an Int Generic from an unsigned value. Values
// exceeding the signed-64 range are stored out-of-place with
// IntFlagUnsignedExtend set, per spec.md §6.4.
func NewUint(d Dest, v uint64) (Generic, error) {
	if v <= uint64(inplaceIntMax) {
		return newInplaceInt(int64(v)), nil
	}
	blob := IntBlob{Value: int64(v)}
	if v > uint64(1)<<63-1 {
		blob.Flags |= IntFlagUnsignedExtend
	}
	p, err := d.store(rawBytes(&blob), 8)
	if err != nil {
		return InvalidWord, err
	}
	return fromPointer(p, tagOutplaceInt, 0x7), nil
}

// NewFloat constructs a Float Generic. It emits out-of-place when v is
// subnormal, NaN or infinite, or when float32(v) != v; zero and every
// other normal value are stored inplace as a float32 (see
// canInplaceFloat).
func NewFloat(d Dest, v float64) (Generic, error) {
	if canInplaceFloat(v) {
		return newInplaceFloat32(float32(v)), nil
	}
	blob := FloatBlob{Value: v}
	p, err := d.store(rawBytes(&blob), 8)
	if err != nil {
		return InvalidWord, err
	}
	return fromPointer(p, tagOutplaceFloat, 0x7), nil
}

// NewString constructs a String Generic, inplace for up to 7 bytes and
// out-of-place (varint length prefix + bytes + NUL) otherwise.
func NewString(d Dest, s string) (Generic, error) {
	if len(s) <= inplaceStrMaxLen {
		return newInplaceString(s), nil
	}
	size := stringBlobSize(len(s))
	buf := make([]byte, size)
	encodeStringBlob(buf, s)
	p, err := d.store(buf, 8)
	if err != nil {
		return InvalidWord, err
	}
	return fromPointer(p, tagOutplaceStr, 0x7), nil
}

// NewSequence constructs a Sequence Generic from items. Empty sequences
// are never allocated: they are the inplace SeqEmpty singleton (spec.md
// §4.2.1). Invalid is rejected inside items, per spec.md §3.4.
func NewSequence(d Dest, items []Generic) (Generic, error) {
	for _, it := range items {
		if it.IsInvalid() {
			return InvalidWord, fyerr.New(fyerr.InvalidInput, "value.NewSequence", "Invalid child")
		}
	}
	if len(items) == 0 {
		return SeqEmpty, nil
	}
	size := SeqStorageSize(len(items))
	if size == SizeOverflow {
		return InvalidWord, fyerr.New(fyerr.Overflow, "value.NewSequence", "storage size overflow")
	}
	buf := make([]byte, size)
	*(*int)(unsafe.Pointer(&buf[0])) = len(items)
	dstItems := unsafe.Slice((*Generic)(unsafe.Add(unsafe.Pointer(&buf[0]), unsafe.Sizeof(int(0)))), len(items))
	copy(dstItems, items)
	p, err := d.store(buf, 16)
	if err != nil {
		return InvalidWord, err
	}
	return fromPointer(p, tagCollection, 0xF), nil
}

// duplicateKeysDisabled, when true, makes NewMapping fail with
// DuplicateKey instead of letting the later write win (spec.md §4.4's
// duplicate-key policy, surfaced here since mapping construction is the
// one place it's enforced at the value layer; collection.Assoc/Append
// call through this same policy).
func mergeDuplicateKey(pairs []Generic, duplicateKeysDisabled bool) ([]Generic, error) {
	type kv struct {
		k, v Generic
		idx  int
	}
	// Grouping bucket is Hash(k); Hash collisions (including across Kinds)
	// are re-checked with the real structural Equal below, so this never
	// misclassifies distinct keys as duplicates regardless of Kind.
	seen := make(map[uint64][]int, len(pairs)/2)
	out := make([]kv, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		k, v := pairs[i], pairs[i+1]
		hk := Hash(k)
		dup := -1
		for _, idx := range seen[hk] {
			if Equal(out[idx].k, k) {
				dup = idx
				break
			}
		}
		if dup >= 0 {
			if duplicateKeysDisabled {
				return nil, fyerr.New(fyerr.DuplicateKey, "value.NewMapping", "duplicate key")
			}
			out[dup].v = v
			continue
		}
		seen[hk] = append(seen[hk], len(out))
		out = append(out, kv{k: k, v: v, idx: len(out)})
	}
	flat := make([]Generic, 0, len(out)*2)
	for _, e := range out {
		flat = append(flat, e.k, e.v)
	}
	return flat, nil
}

// NewMapping constructs a Mapping Generic from alternating key/value
// pairs. Later writes win unless duplicateKeysDisabled, per spec.md §4.4.
func NewMapping(d Dest, pairs []Generic, duplicateKeysDisabled bool) (Generic, error) {
	if len(pairs)%2 != 0 {
		return InvalidWord, fyerr.New(fyerr.InvalidInput, "value.NewMapping", "odd item count")
	}
	for _, it := range pairs {
		if it.IsInvalid() {
			return InvalidWord, fyerr.New(fyerr.InvalidInput, "value.NewMapping", "Invalid child")
		}
	}
	merged, err := mergeDuplicateKey(pairs, duplicateKeysDisabled)
	if err != nil {
		return InvalidWord, err
	}
	if len(merged) == 0 {
		return MapEmpty, nil
	}
	count := len(merged) / 2
	size := MapStorageSize(count)
	if size == SizeOverflow {
		return InvalidWord, fyerr.New(fyerr.Overflow, "value.NewMapping", "storage size overflow")
	}
	buf := make([]byte, size)
	*(*int)(unsafe.Pointer(&buf[0])) = count
	dstItems := unsafe.Slice((*Generic)(unsafe.Add(unsafe.Pointer(&buf[0]), unsafe.Sizeof(int(0)))), count*2)
	copy(dstItems, merged)
	p, err := d.store(buf, 16)
	if err != nil {
		return InvalidWord, err
	}
	return fromPointer(p, tagCollection|bit3, 0xF), nil
}

// IndirectSlots is the set of optional fields an Indirect wraps around a
// value, per spec.md §3.3.
type IndirectSlots struct {
	Value       Generic
	Anchor      Generic
	Tag         Generic
	Alias       Generic
	Diag        Generic
	Marker      Generic
	Comment     Generic
	Style       Generic
	FailsafeStr Generic
}

// NewIndirect constructs an Indirect wrapping whichever of slots.* are
// non-Invalid. A slot with an Invalid Generic is simply absent; setting
// none but Alias produces an Alias node per spec.md §3.1.
func NewIndirect(d Dest, slots IndirectSlots) (Generic, error) {
	var flags uintptr
	var present []Generic
	add := func(flag uintptr, v Generic) {
		if !v.IsInvalid() {
			flags |= flag
			present = append(present, v)
		}
	}
	// Slots must be appended in ascending flag-bit order to match
	// IndirectBlob's fixed layout.
	add(FlagValue, slots.Value)
	add(FlagAnchor, slots.Anchor)
	add(FlagTag, slots.Tag)
	add(FlagAlias, slots.Alias)
	add(FlagDiag, slots.Diag)
	add(FlagMarker, slots.Marker)
	add(FlagComment, slots.Comment)
	add(FlagStyle, slots.Style)
	add(FlagFailsafeStr, slots.FailsafeStr)

	size := IndirectStorageSize(flags)
	buf := make([]byte, size)
	encodeIndirectBlob(buf, flags, present)
	p, err := d.store(buf, 16)
	if err != nil {
		return InvalidWord, err
	}
	return fromPointer(p, tagIndirect, 0xF), nil
}

// NewAlias constructs an Alias node carrying target as its alias slot.
func NewAlias(d Dest, target Generic) (Generic, error) {
	return NewIndirect(d, IndirectSlots{Alias: target})
}
