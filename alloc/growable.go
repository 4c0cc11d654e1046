// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package alloc

import (
	"sync"
	"unsafe"

	"github.com/libfy/fy/fyerr"
)

// Backing selects how a Growable allocator maps its arena extents, per
// spec.md §4.1's "Arena backing is Mmap, Malloc, or platform default".
type Backing int

const (
	BackingDefault Backing = iota
	BackingMmap
	BackingMalloc
)

// GrowableConfig holds the tunables spec.md §4.1 names for the "mremap"
// strategy.
type GrowableConfig struct {
	// BigAllocThreshold: requests at or above this size get their own
	// direct arena instead of sharing the growing chain.
	BigAllocThreshold int
	// EmptyThreshold: an arena whose free space drops below this is
	// moved to the "full" list and no longer considered for allocation.
	EmptyThreshold int
	// MinimumArenaSize is the smallest size a freshly chained arena is
	// allocated at.
	MinimumArenaSize int
	// GrowRatio multiplies an arena's size when it grows in place; must
	// be > 1.
	GrowRatio float64
	// BalloonRatio multiplies MinimumArenaSize for the very first
	// mapping of a tag, to avoid early re-growth.
	BalloonRatio float64
	// Backing selects the extent-mapping primitive.
	Backing Backing
}

// DefaultGrowableConfig returns sane defaults.
func DefaultGrowableConfig() GrowableConfig {
	return GrowableConfig{
		BigAllocThreshold: 64 * 1024,
		EmptyThreshold:    256,
		MinimumArenaSize:  4096,
		GrowRatio:         1.5,
		BalloonRatio:      2.0,
		Backing:           BackingDefault,
	}
}

type growArena struct {
	data   []byte
	used   int
	full   bool
	direct bool // a big-alloc direct arena: never grows, never reused
}

func (a *growArena) free() int { return len(a.data) - a.used }

type growState struct {
	arenas  []*growArena
	current *growArena
}

// Growable is the "mremap" strategy: a chained list of arenas where the
// current arena grows in place via the platform primitive when possible,
// otherwise a new arena is chained.
type Growable struct {
	mu      sync.Mutex
	cfg     GrowableConfig
	tags    map[Tag]*growState
	nextTag Tag
}

// NewGrowable creates a Growable allocator with the given configuration.
func NewGrowable(cfg GrowableConfig) *Growable {
	return &Growable{cfg: cfg, tags: make(map[Tag]*growState)}
}

func (g *Growable) Name() string { return "mremap" }

func (g *Growable) Capabilities() Capability {
	return CanFreeTag | HasTags | HasContains | HasEfficientContains
}

func (g *Growable) CreateTag() (Tag, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextTag++
	t := g.nextTag
	g.tags[t] = &growState{}
	return t, nil
}

func (g *Growable) AcquireTag(t Tag) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tags[t] == nil {
		g.tags[t] = &growState{}
	}
	return nil
}

func (g *Growable) ReleaseTag(t Tag) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.tags[t]
	delete(g.tags, t)
	if st != nil {
		for _, a := range st.arenas {
			unmapArena(g.cfg.Backing, a.data)
		}
	}
	return nil
}

func (g *Growable) ResetTag(t Tag) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.tags[t]
	if st == nil {
		return nil
	}
	for _, a := range st.arenas {
		a.used = 0
		a.full = false
	}
	if len(st.arenas) > 0 {
		st.current = st.arenas[0]
	}
	return nil
}

func (g *Growable) TrimTag(t Tag) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.tags[t]
	if st == nil {
		return nil
	}
	kept := st.arenas[:0]
	for _, a := range st.arenas {
		if a.used == 0 && a != st.current {
			unmapArena(g.cfg.Backing, a.data)
			continue
		}
		kept = append(kept, a)
	}
	st.arenas = kept
	return nil
}

func (g *Growable) firstArenaSize() int {
	return int(float64(g.cfg.MinimumArenaSize) * g.cfg.BalloonRatio)
}

// ensure returns an arena in st with at least size bytes free and aligned
// room, growing the current arena in place or chaining a new one.
func (g *Growable) ensure(st *growState, size, align int) (*growArena, int, error) {
	if size >= g.cfg.BigAllocThreshold {
		a := &growArena{data: mapArena(g.cfg.Backing, size), direct: true}
		if a.data == nil {
			return nil, 0, errOOM("Growable.ensure")
		}
		a.used = size
		a.full = true
		st.arenas = append(st.arenas, a)
		return a, 0, nil
	}

	if st.current != nil && !st.current.full {
		start := alignUp(st.current.used, align)
		if start+size <= len(st.current.data) {
			return st.current, start, nil
		}
		// try to grow in place.
		newSize := int(float64(len(st.current.data)) * g.cfg.GrowRatio)
		if start+size > newSize {
			newSize = start + size
		}
		if grown, ok := growArenaInPlace(g.cfg.Backing, st.current.data, newSize); ok {
			st.current.data = grown
			return st.current, start, nil
		}
		if st.current.free() < g.cfg.EmptyThreshold {
			st.current.full = true
		}
	}

	size0 := g.cfg.MinimumArenaSize
	if len(st.arenas) == 0 {
		size0 = g.firstArenaSize()
	}
	if size0 < size {
		size0 = size
	}
	data := mapArena(g.cfg.Backing, size0)
	if data == nil {
		return nil, 0, errOOM("Growable.ensure")
	}
	a := &growArena{data: data}
	st.arenas = append(st.arenas, a)
	st.current = a
	return a, 0, nil
}

func (g *Growable) Alloc(t Tag, size, align int) (unsafe.Pointer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.tags[t]
	if st == nil {
		return nil, fyerr.New(fyerr.InvalidInput, "Growable.Alloc", "unknown tag")
	}
	a, start, err := g.ensure(st, size, align)
	if err != nil {
		return nil, err
	}
	if !a.direct {
		a.used = start + size
	}
	if len(a.data) == 0 {
		return unsafe.Pointer(a), nil
	}
	return unsafe.Add(unsafe.Pointer(&a.data[0]), start), nil
}

func (g *Growable) Store(t Tag, data []byte, align int) (unsafe.Pointer, error) {
	p, err := g.Alloc(t, len(data), align)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		copy(unsafe.Slice((*byte)(p), len(data)), data)
	}
	return p, nil
}

func (g *Growable) Storev(t Tag, iov [][]byte, align int) (unsafe.Pointer, error) {
	total := 0
	for _, v := range iov {
		total += len(v)
	}
	p, err := g.Alloc(t, total, align)
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

func (g *Growable) Lookup(t Tag, data []byte, align int) (unsafe.Pointer, bool) {
	return nil, false
}

func (g *Growable) Lookupv(t Tag, iov [][]byte, align int) (unsafe.Pointer, bool) {
	return nil, false
}

func (g *Growable) Free(t Tag, ptr unsafe.Pointer) {}

func (g *Growable) Contains(t Tag, ptr unsafe.Pointer) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.tags[t]
	if st == nil {
		return false
	}
	p := uintptr(ptr)
	for _, a := range st.arenas {
		if len(a.data) == 0 {
			continue
		}
		lo := uintptr(unsafe.Pointer(&a.data[0]))
		hi := lo + uintptr(len(a.data))
		if p >= lo && p < hi {
			return true
		}
	}
	return false
}

func (g *Growable) TagSize(t Tag) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.tags[t]
	if st == nil {
		return 0
	}
	var n int64
	for _, a := range st.arenas {
		n += int64(a.used)
	}
	return n
}

func (g *Growable) LinearPointer(t Tag) (unsafe.Pointer, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.tags[t]
	if st == nil || len(st.arenas) != 1 {
		return nil, false
	}
	a := st.arenas[0]
	if len(a.data) == 0 {
		return nil, false
	}
	return unsafe.Pointer(&a.data[0]), true
}

func (g *Growable) ArenaInfo(t Tag) (TagInfo, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.tags[t]
	if st == nil {
		return TagInfo{}, false
	}
	info := TagInfo{Tag: t}
	for _, a := range st.arenas {
		var data unsafe.Pointer
		if len(a.data) > 0 {
			data = unsafe.Pointer(&a.data[0])
		}
		info.Arenas = append(info.Arenas, ArenaExtent{
			Data: data,
			Size: len(a.data),
			Used: a.used,
			Free: len(a.data) - a.used,
		})
	}
	return info, true
}

func (g *Growable) Destroy() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for t := range g.tags {
		st := g.tags[t]
		for _, a := range st.arenas {
			unmapArena(g.cfg.Backing, a.data)
		}
	}
	g.tags = nil
	return nil
}
