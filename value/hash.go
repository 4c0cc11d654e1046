// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Structural hashing, spec.md §4.2.3: two values that Compare equal must
// hash equal. Built on xxhash (already pulled in by alloc.Dedup) rather
// than hand-rolled FNV, so a single fingerprinting primitive is shared
// across the arena-dedup layer and value-level hashing.

const (
	hashTagNull uint64 = iota
	hashTagFalse
	hashTagTrue
	hashTagInt
	hashTagFloat
	hashTagString
	hashTagSeq
	hashTagMap
)

// Hash returns a structural fingerprint of g. Invalid hashes to 0
// without running the digest, since Invalid is never a legal collection member
// and should never need to participate in lookup.
func Hash(g Generic) uint64 {
	if g.IsInvalid() {
		return 0
	}
	d := xxhash.New()
	writeHash(d, g.Unwrap())
	return d.Sum64()
}

func writeUint64(d *xxhash.Digest, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	d.Write(buf[:])
}

func writeHash(d *xxhash.Digest, g Generic) {
	switch g.Kind() {
	case Null:
		writeUint64(d, hashTagNull)
	case Bool:
		if g.AsBool() {
			writeUint64(d, hashTagTrue)
		} else {
			writeUint64(d, hashTagFalse)
		}
	case Int:
		writeUint64(d, hashTagInt)
		writeUint64(d, g.AsUint64())
	case Float:
		writeUint64(d, hashTagFloat)
		v := g.AsFloat64()
		if v != v {
			// Canonicalize NaN so Compare's NaN==NaN carries
			// through to Hash.
			writeUint64(d, math.Float64bits(math.NaN()))
		} else {
			writeUint64(d, math.Float64bits(v))
		}
	case String:
		writeUint64(d, hashTagString)
		s := g.AsString()
		writeUint64(d, uint64(len(s)))
		d.Write([]byte(s))
	case Sequence:
		writeUint64(d, hashTagSeq)
		n := g.Len()
		writeUint64(d, uint64(n))
		for i := 0; i < n; i++ {
			writeHash(d, g.At(i).Unwrap())
		}
	case Mapping:
		writeUint64(d, hashTagMap)
		pairs := sortedPairs(g)
		writeUint64(d, uint64(len(pairs)))
		for _, kv := range pairs {
			writeHash(d, kv[0].Unwrap())
			writeHash(d, kv[1].Unwrap())
		}
	}
}
