// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"github.com/libfy/fy/alloc"
	"github.com/libfy/fy/diag"
)

// Flag is the bitset of builder behaviors spec.md §4.3.1 names.
type Flag uint32

const (
	// OwnsAllocator destroys the allocator on Close.
	OwnsAllocator Flag = 1 << iota
	// CreateAllocator builds the default allocator for this builder
	// when Config.Allocator is nil.
	CreateAllocator
	// DuplicateKeysDisabled makes mapping construction fail instead of
	// letting later writes win.
	DuplicateKeysDisabled
	// DedupEnabled wraps the allocator built under CreateAllocator in
	// alloc.Dedup. An allocator supplied with WithAllocator is used as
	// it is.
	DedupEnabled
	// ScopeLeader marks this builder as the tag owner a child-scope
	// chain exports into.
	ScopeLeader
	// CreateTag acquires a fresh tag from the allocator instead of
	// reusing Config.Tag.
	CreateTag
	// Trace is carried in Config.Flags; no builder operation reads it
	// or emits trace records.
	Trace
)

// Config is the builder construction record, spec.md §4.3.1's
// `{schema, allocator?, parent?, estimated_max_size, diag?, flags}`.
// Schema is carried here (rather than only in codec) because
// scalar-classification policy can affect how collection opcodes coerce
// arguments (spec.md §3.6).
type Config struct {
	Schema          int
	Allocator       alloc.Allocator
	Tag             alloc.Tag
	Parent          *Builder
	EstimatedMaxSize int
	Diag            *diag.Collector
	Flags           Flag
}

// Option mutates a Config during construction, following the teacher's
// option.Config pattern (function-valued options over a plain struct).
type Option func(*Config)

// WithSchema sets the scalar-classification schema.
func WithSchema(schema int) Option {
	return func(c *Config) { c.Schema = schema }
}

// WithAllocator supplies an existing allocator instead of CreateAllocator.
func WithAllocator(a alloc.Allocator) Option {
	return func(c *Config) { c.Allocator = a }
}

// WithTag pins the builder to an existing tag instead of CreateTag.
func WithTag(t alloc.Tag) Option {
	return func(c *Config) { c.Tag = t }
}

// WithParent forms a child scope under parent; the scope leader is
// found by walking Parent links (spec.md §4.3.1).
func WithParent(parent *Builder) Option {
	return func(c *Config) { c.Parent = parent }
}

// WithEstimatedMaxSize sizes the default allocator when CreateAllocator
// is set and no explicit allocator is supplied.
func WithEstimatedMaxSize(n int) Option {
	return func(c *Config) { c.EstimatedMaxSize = n }
}

// WithDiag attaches a diagnostics collector.
func WithDiag(d *diag.Collector) Option {
	return func(c *Config) { c.Diag = d }
}

// WithFlags ORs additional flags into the config.
func WithFlags(f Flag) Option {
	return func(c *Config) { c.Flags |= f }
}

// NewConfig builds a Config from opts, following the teacher's
// NewConfig(opts ...Option) convention.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{EstimatedMaxSize: defaultEstimatedMaxSize}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

const defaultEstimatedMaxSize = 4096
