// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package builder implements the scoped allocation façade of spec.md
// §4.3: scope leader/child chaining, a store API wrapping alloc.Allocator,
// an allocation-failure counter, stack-buffer fast-retry bootstrapping,
// and export across scopes.
package builder

import (
	"unsafe"

	"github.com/libfy/fy/alloc"
	"github.com/libfy/fy/diag"
	"github.com/libfy/fy/fyerr"
	"github.com/libfy/fy/value"
)

func unsafeBytes(p unsafe.Pointer, n int) []byte {
	if n == 0 || p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}

// Builder is a scope in a builder chain. A child scope shares its
// parent's allocator and allocates into its scope leader's tag, so the
// values it constructs live as long as the leader's; Export copies a
// value into the leader's tag when it is stored elsewhere (spec.md
// §4.3.4).
type Builder struct {
	cfg              Config
	allocFailures    int64
	ownsAllocator    bool
	ownsTag          bool
}

// New constructs a Builder from opts. When Config.Parent is set, the
// new Builder forms a child scope and inherits the parent's allocator;
// otherwise CreateAllocator/CreateTag control whether this Builder
// builds its own allocator and tag.
func New(opts ...Option) (*Builder, error) {
	cfg := NewConfig(opts...)
	b := &Builder{cfg: *cfg}

	if cfg.Parent != nil {
		b.cfg.Allocator = cfg.Parent.cfg.Allocator
		leader := b.findLeader()
		b.cfg.Tag = leader.cfg.Tag
		return b, nil
	}

	if b.cfg.Allocator == nil {
		if b.cfg.Flags&CreateAllocator == 0 {
			return nil, fyerr.New(fyerr.InvalidInput, "builder.New", "no allocator and CreateAllocator not set")
		}
		size := b.cfg.EstimatedMaxSize
		if size <= 0 {
			size = defaultEstimatedMaxSize
		}
		var a alloc.Allocator = alloc.NewLinear(size)
		if b.cfg.Flags&DedupEnabled != 0 {
			a = alloc.NewDedup(a, alloc.DefaultDedupConfig())
		}
		b.cfg.Allocator = a
		b.ownsAllocator = true
	}

	if b.cfg.Flags&CreateTag != 0 {
		t, err := b.cfg.Allocator.CreateTag()
		if err != nil {
			return nil, err
		}
		b.cfg.Tag = t
		b.ownsTag = true
	}

	return b, nil
}

// findLeader walks Parent links until one has ScopeLeader set, per
// spec.md §4.3.1. A chain with no ScopeLeader anywhere treats the root
// (the Builder with no Parent) as the leader.
func (b *Builder) findLeader() *Builder {
	cur := b
	for {
		if cur.cfg.Flags&ScopeLeader != 0 || cur.cfg.Parent == nil {
			return cur
		}
		cur = cur.cfg.Parent
	}
}

// Dest returns the (allocator, tag) destination value constructors
// should target, per this builder's scope.
func (b *Builder) Dest() value.Dest {
	return value.Dest{Alloc: b.cfg.Allocator, Tag: b.cfg.Tag}
}

// Allocator exposes the underlying allocator.
func (b *Builder) Allocator() alloc.Allocator { return b.cfg.Allocator }

// Tag exposes this builder's tag.
func (b *Builder) Tag() alloc.Tag { return b.cfg.Tag }

// DuplicateKeysDisabled reports this builder's mapping duplicate-key
// policy, per spec.md §4.4.
func (b *Builder) DuplicateKeysDisabled() bool {
	return b.cfg.Flags&DuplicateKeysDisabled != 0
}

func (b *Builder) trace(op, msg string) {
	if b.cfg.Diag == nil || b.cfg.Flags&Trace == 0 {
		return
	}
	b.cfg.Diag.Report(diag.Record{Severity: diag.SeverityDebug, Op: op, Msg: msg})
}

func (b *Builder) reportFailure(op string, err error) {
	b.allocFailures++
	if b.cfg.Diag != nil {
		b.cfg.Diag.ReportError(err)
	}
}

// AllocationFailures returns the number of operations on this builder
// that were forced to return Invalid due to arena exhaustion, per
// spec.md §4.3.2's `allocation_failures()`.
func (b *Builder) AllocationFailures() int64 { return b.allocFailures }

// Alloc returns size bytes aligned to align, owned by this builder's
// tag. Returns nil and bumps the failure counter on exhaustion.
func (b *Builder) Alloc(size, align int) ([]byte, error) {
	p, err := b.cfg.Allocator.Alloc(b.cfg.Tag, size, align)
	if err != nil {
		b.reportFailure("builder.Alloc", err)
		return nil, err
	}
	return unsafeBytes(p, size), nil
}

// Store copies data into this builder's tag, aligned to align, and
// returns the interned pointer as raw bytes (spec.md §4.3.2's
// `store(ptr, size, align)`). Dedup-capable allocators may alias a
// prior equal Store. value.NewInt/NewString/etc. build on this via
// Dest(); Store is the lower-level primitive collection/codec
// scalar encoders use directly.
func (b *Builder) Store(data []byte, align int) ([]byte, error) {
	p, err := b.cfg.Allocator.Store(b.cfg.Tag, data, align)
	if err != nil {
		b.reportFailure("builder.Store", err)
		return nil, err
	}
	return unsafeBytes(p, len(data)), nil
}

// Storev is the scatter-gather form of Store, concatenating iov before
// storing (spec.md §4.3.2), used by the string/indirect encoders.
func (b *Builder) Storev(iov [][]byte, align int) ([]byte, error) {
	p, err := b.cfg.Allocator.Storev(b.cfg.Tag, iov, align)
	if err != nil {
		b.reportFailure("builder.Storev", err)
		return nil, err
	}
	n := 0
	for _, v := range iov {
		n += len(v)
	}
	return unsafeBytes(p, n), nil
}

// Lookup reports whether data is already interned under this builder's
// tag, without storing it. Requires the allocator's CanLookup.
func (b *Builder) Lookup(data []byte, align int) bool {
	_, ok := b.cfg.Allocator.Lookup(b.cfg.Tag, data, align)
	return ok
}

// Lookupv is the scatter-gather form of Lookup.
func (b *Builder) Lookupv(iov [][]byte, align int) bool {
	_, ok := b.cfg.Allocator.Lookupv(b.cfg.Tag, iov, align)
	return ok
}

// Export publishes v into the scope leader's tag, per spec.md §4.3.4.
// Inplace values are returned unchanged; out-of-place values are
// interned (via value.Internalize, which is a no-op when v already
// lives in the leader's arenas).
func (b *Builder) Export(v value.Generic) (value.Generic, error) {
	if v.IsInvalid() || v.IsInPlace() {
		return v, nil
	}
	leader := b.findLeader()
	out, err := value.Internalize(leader.Dest(), v)
	if err != nil {
		b.reportFailure("builder.Export", err)
		return value.InvalidWord, err
	}
	return out, nil
}

// Close tears down resources this builder owns: the tag if it created
// one, the allocator if OwnsAllocator or it built its own via
// CreateAllocator.
func (b *Builder) Close() error {
	if b.ownsTag {
		if err := b.cfg.Allocator.ReleaseTag(b.cfg.Tag); err != nil {
			return err
		}
	}
	if b.ownsAllocator || b.cfg.Flags&OwnsAllocator != 0 {
		return b.cfg.Allocator.Destroy()
	}
	return nil
}
