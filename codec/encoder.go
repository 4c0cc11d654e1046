// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/libfy/fy/codec/event"
	"github.com/libfy/fy/value"
)

// EncodeFlags is spec.md §6.2's emit flag set.
type EncodeFlags uint32

const (
	NoEndingNewline EncodeFlags = 1 << iota
	OutputComments
)

// Indent is spec.md §6.2's indent-width choice.
type Indent int

const (
	IndentDefault Indent = iota
	Indent1
	Indent2
	Indent3
	Indent4
	Indent6
	Indent8
)

func (i Indent) spaces() int {
	switch i {
	case Indent1:
		return 1
	case Indent3:
		return 3
	case Indent4:
		return 4
	case Indent6:
		return 6
	case Indent8:
		return 8
	default:
		return 2
	}
}

// Width is spec.md §6.2's line-width policy.
type Width int

const (
	WidthDefault Width = iota
	Width80
	Width132
	WidthInfinite
	WidthAdaptTerminal
)

// Style is spec.md §6.2's overall document style preference, applied to
// any node whose own recorded style is event.AnyStyle.
type Style int

const (
	StyleDefault Style = iota
	StyleBlock
	StyleFlow
	StylePretty
	StyleCompact
	StyleOneLine
)

// Color is spec.md §6.2's color policy; it has no bearing on the event
// stream itself (color is a rendering-time concern of the external
// emitter) but is carried through so that collaborator can see the
// caller's preference without a second configuration channel.
type Color int

const (
	ColorAuto Color = iota
	ColorNone
	ColorForce
)

// EncodeConfig bundles spec.md §6.2's emit configuration.
type EncodeConfig struct {
	Flags  EncodeFlags
	Indent Indent
	Width  Width
	Style  Style
	Color  Color
}

// Encoder wraps an Iterator, applying EncodeConfig's style preference to
// events whose own style is unset and exposing the rest of the
// configuration for the external byte-level emitter to consult.
// Encoder never touches bytes: spec.md §1 treats the YAML/JSON renderer
// as an external collaborator, so Encoder's output is Event values only.
type Encoder struct {
	it  *Iterator
	cfg EncodeConfig
}

// NewEncoder returns an Encoder that regenerates an event stream from
// root under cfg.
func NewEncoder(root value.Generic, cfg EncodeConfig) *Encoder {
	return &Encoder{it: NewIterator(root), cfg: cfg}
}

// Config returns the encoder's configuration, for an external emitter to
// read indent/width/color preferences from.
func (e *Encoder) Config() EncodeConfig { return e.cfg }

// Err mirrors Iterator.Err.
func (e *Encoder) Err() error { return e.it.Err() }

// Next produces the next event, with Style defaulted per cfg.Style when
// the underlying node carried no explicit style of its own.
func (e *Encoder) Next() (event.Event, bool) {
	ev, ok := e.it.Next()
	if !ok {
		return ev, ok
	}
	if ev.Style == event.AnyStyle {
		ev.Style = e.defaultStyle(ev.Type)
	}
	return ev, true
}

func (e *Encoder) defaultStyle(t event.Type) event.Style {
	switch e.cfg.Style {
	case StyleFlow, StyleCompact, StyleOneLine:
		if t == event.SequenceStart || t == event.MappingStart {
			return event.Flow
		}
		return event.Plain
	case StyleBlock, StylePretty:
		if t == event.SequenceStart || t == event.MappingStart {
			return event.Block
		}
		return event.Plain
	default:
		return event.AnyStyle
	}
}
