// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package alloc

import (
	"sync"
	"unsafe"
)

// Malloc is the system-heap strategy (spec.md §4.1 "malloc"): one Go
// allocation per object, individually freeable. It exists for sanitizer
// compatibility (the host's race/leak/address sanitizer can see each
// object as a distinct allocation) and performs no dedup.
type Malloc struct {
	mu      sync.Mutex
	nextTag Tag
	objs    map[Tag]map[unsafe.Pointer][]byte
}

// NewMalloc creates a Malloc allocator.
func NewMalloc() *Malloc {
	return &Malloc{objs: make(map[Tag]map[unsafe.Pointer][]byte)}
}

func (m *Malloc) Name() string { return "malloc" }

func (m *Malloc) Capabilities() Capability {
	return CanFreeIndividual | CanFreeTag | HasTags | HasContains
}

func (m *Malloc) CreateTag() (Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTag++
	t := m.nextTag
	m.objs[t] = make(map[unsafe.Pointer][]byte)
	return t, nil
}

func (m *Malloc) AcquireTag(t Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objs[t] == nil {
		m.objs[t] = make(map[unsafe.Pointer][]byte)
	}
	return nil
}

func (m *Malloc) ReleaseTag(t Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objs, t)
	return nil
}

func (m *Malloc) ResetTag(t Tag) error { return m.ReleaseTag(t) }

func (m *Malloc) TrimTag(t Tag) error { return nil }

func (m *Malloc) alloc(t Tag, size, align int) ([]byte, unsafe.Pointer) {
	// align is satisfied by over-allocating and rounding the slice's
	// base pointer up, since Go gives no alignment guarantee for make().
	raw := make([]byte, size+align)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	aligned := int(alignUpPtr(base, align) - base)
	return raw, unsafe.Pointer(&raw[aligned])
}

func alignUpPtr(p uintptr, align int) uintptr {
	a := uintptr(align)
	if a <= 1 {
		return p
	}
	return (p + a - 1) &^ (a - 1)
}

func (m *Malloc) Alloc(t Tag, size, align int) (unsafe.Pointer, error) {
	raw, p := m.alloc(t, size, align)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objs[t] == nil {
		m.objs[t] = make(map[unsafe.Pointer][]byte)
	}
	m.objs[t][p] = raw
	return p, nil
}

func (m *Malloc) Store(t Tag, data []byte, align int) (unsafe.Pointer, error) {
	p, err := m.Alloc(t, len(data), align)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		copy(unsafe.Slice((*byte)(p), len(data)), data)
	}
	return p, nil
}

func (m *Malloc) Storev(t Tag, iov [][]byte, align int) (unsafe.Pointer, error) {
	total := 0
	for _, v := range iov {
		total += len(v)
	}
	p, err := m.Alloc(t, total, align)
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

func (m *Malloc) Lookup(t Tag, data []byte, align int) (unsafe.Pointer, bool) {
	return nil, false
}

func (m *Malloc) Lookupv(t Tag, iov [][]byte, align int) (unsafe.Pointer, bool) {
	return nil, false
}

func (m *Malloc) Free(t Tag, ptr unsafe.Pointer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if objs := m.objs[t]; objs != nil {
		delete(objs, ptr)
	}
}

func (m *Malloc) Contains(t Tag, ptr unsafe.Pointer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	objs, ok := m.objs[t]
	if !ok {
		return false
	}
	_, ok = objs[ptr]
	return ok
}

func (m *Malloc) TagSize(t Tag) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, raw := range m.objs[t] {
		n += int64(len(raw))
	}
	return n
}

func (m *Malloc) LinearPointer(t Tag) (unsafe.Pointer, bool) { return nil, false }

func (m *Malloc) ArenaInfo(t Tag) (TagInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	objs, ok := m.objs[t]
	if !ok {
		return TagInfo{}, false
	}
	info := TagInfo{Tag: t}
	for p, raw := range objs {
		info.Arenas = append(info.Arenas, ArenaExtent{
			Data: p,
			Size: len(raw),
			Used: len(raw),
			Free: 0,
		})
	}
	return info, true
}

func (m *Malloc) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objs = nil
	return nil
}
