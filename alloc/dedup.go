// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package alloc

import (
	"sync"
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/libfy/fy/fyerr"
)

// DedupConfig holds the tunables spec.md §4.1 names for the "dedup"
// strategy.
type DedupConfig struct {
	// BucketCountBits: the hash table starts with 2^BucketCountBits
	// buckets, partitioned per tag.
	BucketCountBits int
	// BloomFilterBits: size in bits of each tag's front-loading Bloom
	// filter.
	BloomFilterBits int
	// DedupThreshold: byte sequences shorter than this bypass dedup
	// entirely and are stored directly through the parent allocator.
	DedupThreshold int
	// ChainLengthGrowTrigger: a bucket chain longer than this, combined
	// with MinimumBucketOccupancy, doubles the bucket table.
	ChainLengthGrowTrigger int
	// MinimumBucketOccupancy: fraction (0..1) of buckets that must be
	// non-empty before a long chain triggers growth.
	MinimumBucketOccupancy float64
}

// DefaultDedupConfig returns sane defaults.
func DefaultDedupConfig() DedupConfig {
	return DedupConfig{
		BucketCountBits:        10,
		BloomFilterBits:        1 << 16,
		DedupThreshold:         8,
		ChainLengthGrowTrigger: 8,
		MinimumBucketOccupancy: 0.5,
	}
}

type dedupEntry struct {
	hash uint64
	ptr  unsafe.Pointer
	size int
}

type bloom struct {
	bits []uint64
}

func newBloom(nbits int) *bloom {
	if nbits <= 0 {
		nbits = 64
	}
	return &bloom{bits: make([]uint64, (nbits+63)/64)}
}

func (b *bloom) positions(h uint64) (uint64, uint64) {
	n := uint64(len(b.bits) * 64)
	h1 := h % n
	h2 := (h>>32 | h<<32) % n
	return h1, h2
}

func (b *bloom) add(h uint64) {
	p1, p2 := b.positions(h)
	b.bits[p1/64] |= 1 << (p1 % 64)
	b.bits[p2/64] |= 1 << (p2 % 64)
}

func (b *bloom) mayContain(h uint64) bool {
	p1, p2 := b.positions(h)
	return b.bits[p1/64]&(1<<(p1%64)) != 0 && b.bits[p2/64]&(1<<(p2%64)) != 0
}

type dedupTagState struct {
	buckets    [][]dedupEntry
	bloom      *bloom
	nonEmpty   int
	bucketMask uint64
}

func newDedupTagState(cfg DedupConfig) *dedupTagState {
	n := 1 << uint(cfg.BucketCountBits)
	return &dedupTagState{
		buckets:    make([][]dedupEntry, n),
		bloom:      newBloom(cfg.BloomFilterBits),
		bucketMask: uint64(n - 1),
	}
}

func (s *dedupTagState) bucketIndex(h uint64) uint64 { return h & s.bucketMask }

// Dedup is the content-addressed strategy layered over a parent
// allocator. Store returns the existing pointer on a byte-identical hit;
// on miss the parent stores the bytes and the fingerprint is inserted.
type Dedup struct {
	mu     sync.Mutex
	parent Allocator
	cfg    DedupConfig
	tags   map[Tag]*dedupTagState
}

// NewDedup layers a content-addressed store over parent.
func NewDedup(parent Allocator, cfg DedupConfig) *Dedup {
	return &Dedup{parent: parent, cfg: cfg, tags: make(map[Tag]*dedupTagState)}
}

func (d *Dedup) Name() string { return "dedup" }

func (d *Dedup) Capabilities() Capability {
	return d.parent.Capabilities() | CanDedup | CanLookup
}

func (d *Dedup) CreateTag() (Tag, error) {
	t, err := d.parent.CreateTag()
	if err != nil {
		return NoTag, err
	}
	d.mu.Lock()
	d.tags[t] = newDedupTagState(d.cfg)
	d.mu.Unlock()
	return t, nil
}

func (d *Dedup) AcquireTag(t Tag) error {
	if err := d.parent.AcquireTag(t); err != nil {
		return err
	}
	d.mu.Lock()
	if d.tags[t] == nil {
		d.tags[t] = newDedupTagState(d.cfg)
	}
	d.mu.Unlock()
	return nil
}

func (d *Dedup) ReleaseTag(t Tag) error {
	d.mu.Lock()
	delete(d.tags, t)
	d.mu.Unlock()
	return d.parent.ReleaseTag(t)
}

func (d *Dedup) ResetTag(t Tag) error {
	d.mu.Lock()
	d.tags[t] = newDedupTagState(d.cfg)
	d.mu.Unlock()
	return d.parent.ResetTag(t)
}

func (d *Dedup) TrimTag(t Tag) error { return d.parent.TrimTag(t) }

func (d *Dedup) Alloc(t Tag, size, align int) (unsafe.Pointer, error) {
	return d.parent.Alloc(t, size, align)
}

func (d *Dedup) maybeGrow(st *dedupTagState, idx uint64) {
	if len(st.buckets[idx]) <= d.cfg.ChainLengthGrowTrigger {
		return
	}
	occupancy := float64(st.nonEmpty) / float64(len(st.buckets))
	if occupancy < d.cfg.MinimumBucketOccupancy {
		return
	}
	old := st.buckets
	n := len(old) * 2
	st.buckets = make([][]dedupEntry, n)
	st.bucketMask = uint64(n - 1)
	st.nonEmpty = 0
	for _, chain := range old {
		for _, e := range chain {
			ni := e.hash & st.bucketMask
			if len(st.buckets[ni]) == 0 {
				st.nonEmpty++
			}
			st.buckets[ni] = append(st.buckets[ni], e)
		}
	}
}

func bytesEqual(ptr unsafe.Pointer, size int, data []byte) bool {
	if size != len(data) {
		return false
	}
	if size == 0 {
		return true
	}
	existing := unsafe.Slice((*byte)(ptr), size)
	for i := range data {
		if existing[i] != data[i] {
			return false
		}
	}
	return true
}

func (d *Dedup) find(st *dedupTagState, h uint64, data []byte) (unsafe.Pointer, bool) {
	if !st.bloom.mayContain(h) {
		return nil, false
	}
	idx := st.bucketIndex(h)
	for _, e := range st.buckets[idx] {
		if e.hash == h && bytesEqual(e.ptr, e.size, data) {
			return e.ptr, true
		}
	}
	return nil, false
}

func (d *Dedup) insert(st *dedupTagState, h uint64, ptr unsafe.Pointer, size int) {
	idx := st.bucketIndex(h)
	if len(st.buckets[idx]) == 0 {
		st.nonEmpty++
	}
	st.buckets[idx] = append(st.buckets[idx], dedupEntry{hash: h, ptr: ptr, size: size})
	st.bloom.add(h)
	d.maybeGrow(st, idx)
}

func (d *Dedup) store(t Tag, data []byte, store func() (unsafe.Pointer, error)) (unsafe.Pointer, error) {
	if len(data) < d.cfg.DedupThreshold {
		return store()
	}
	d.mu.Lock()
	st := d.tags[t]
	if st == nil {
		d.mu.Unlock()
		return nil, fyerr.New(fyerr.InvalidInput, "Dedup.Store", "unknown tag")
	}
	h := xxhash.Sum64(data)
	if p, ok := d.find(st, h, data); ok {
		d.mu.Unlock()
		return p, nil
	}
	d.mu.Unlock()

	p, err := store()
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	st = d.tags[t]
	if st != nil {
		// re-check: a concurrent writer may have raced us.
		if existing, ok := d.find(st, h, data); ok {
			return existing, nil
		}
		d.insert(st, h, p, len(data))
	}
	return p, nil
}

func (d *Dedup) Store(t Tag, data []byte, align int) (unsafe.Pointer, error) {
	return d.store(t, data, func() (unsafe.Pointer, error) { return d.parent.Store(t, data, align) })
}

func (d *Dedup) Storev(t Tag, iov [][]byte, align int) (unsafe.Pointer, error) {
	total := 0
	for _, v := range iov {
		total += len(v)
	}
	flat := make([]byte, 0, total)
	for _, v := range iov {
		flat = append(flat, v...)
	}
	return d.store(t, flat, func() (unsafe.Pointer, error) { return d.parent.Storev(t, iov, align) })
}

func (d *Dedup) Lookup(t Tag, data []byte, align int) (unsafe.Pointer, bool) {
	if len(data) < d.cfg.DedupThreshold {
		return d.parent.Lookup(t, data, align)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.tags[t]
	if st == nil {
		return nil, false
	}
	h := xxhash.Sum64(data)
	return d.find(st, h, data)
}

func (d *Dedup) Lookupv(t Tag, iov [][]byte, align int) (unsafe.Pointer, bool) {
	total := 0
	for _, v := range iov {
		total += len(v)
	}
	flat := make([]byte, 0, total)
	for _, v := range iov {
		flat = append(flat, v...)
	}
	return d.Lookup(t, flat, align)
}

func (d *Dedup) Free(t Tag, ptr unsafe.Pointer) { d.parent.Free(t, ptr) }

func (d *Dedup) Contains(t Tag, ptr unsafe.Pointer) bool { return d.parent.Contains(t, ptr) }

func (d *Dedup) TagSize(t Tag) int64 { return d.parent.TagSize(t) }

func (d *Dedup) LinearPointer(t Tag) (unsafe.Pointer, bool) { return d.parent.LinearPointer(t) }

func (d *Dedup) ArenaInfo(t Tag) (TagInfo, bool) { return d.parent.ArenaInfo(t) }

func (d *Dedup) Destroy() error {
	d.mu.Lock()
	d.tags = nil
	d.mu.Unlock()
	return d.parent.Destroy()
}
