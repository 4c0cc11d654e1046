// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package alloc

import "github.com/libfy/fy/fyerr"

// Scenario names the usage pattern Auto selects a concrete strategy for,
// per spec.md §4.1's "Auto" entry.
type Scenario int

const (
	// PerTagFree: many tags, each released as a unit, no need to free
	// individual objects or dedup content.
	PerTagFree Scenario = iota
	// PerTagFreeDedup: like PerTagFree, but equal content should alias.
	PerTagFreeDedup
	// PerObjFree: individual objects are freed independently (e.g.
	// under a sanitizer).
	PerObjFree
	// PerObjFreeDedup: PerObjFree plus content dedup.
	PerObjFreeDedup
	// SingleLinearRange: exactly one tag, laid out contiguously, never
	// released piecemeal.
	SingleLinearRange
	// SingleLinearRangeDedup: SingleLinearRange plus content dedup.
	SingleLinearRangeDedup
)

// NewAuto builds the concrete Allocator SPEC_FULL.md's expanded selection
// table names for scenario, per spec.md §4.1's five strategies.
func NewAuto(scenario Scenario) (Allocator, error) {
	switch scenario {
	case SingleLinearRange:
		return NewLinear(DefaultGrowableConfig().MinimumArenaSize), nil
	case SingleLinearRangeDedup:
		return NewDedup(NewLinear(DefaultGrowableConfig().MinimumArenaSize), DefaultDedupConfig()), nil
	case PerTagFree:
		return NewGrowable(DefaultGrowableConfig()), nil
	case PerTagFreeDedup:
		return NewDedup(NewGrowable(DefaultGrowableConfig()), DefaultDedupConfig()), nil
	case PerObjFree:
		return NewMalloc(), nil
	case PerObjFreeDedup:
		return NewDedup(NewMalloc(), DefaultDedupConfig()), nil
	default:
		return nil, fyerr.New(fyerr.InvalidInput, "NewAuto", "unknown scenario")
	}
}
