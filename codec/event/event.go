// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package event defines the wire vocabulary shared with the external
// parser and emitter collaborators (spec §6.1): the event stream the
// decoder consumes and the iterator produces, plus the Mark/Style/tag
// vocabulary events carry.
package event

import (
	"fmt"
	"strings"
)

// Mark holds a source position: byte index, 1-indexed line, 0-indexed
// column.
type Mark struct {
	Index  int
	Line   int
	Column int
}

// String renders the mark the way a diagnostic would report it.
func (m Mark) String() string {
	if m.Line == 0 {
		return "<unknown position>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "line %d", m.Line)
	if m.Column != 0 {
		fmt.Fprintf(&b, ", column %d", m.Column+1)
	}
	return b.String()
}

// Type is the event discriminator of spec §6.1's
// StreamStart/DocumentStart/.../StreamEnd protocol.
type Type int8

const (
	NoEvent Type = iota

	StreamStart
	StreamEnd
	DocumentStart
	DocumentEnd
	Alias
	Scalar
	SequenceStart
	SequenceEnd
	MappingStart
	MappingEnd
)

var typeNames = [...]string{
	NoEvent:       "none",
	StreamStart:   "stream start",
	StreamEnd:     "stream end",
	DocumentStart: "document start",
	DocumentEnd:   "document end",
	Alias:         "alias",
	Scalar:        "scalar",
	SequenceStart: "sequence start",
	SequenceEnd:   "sequence end",
	MappingStart:  "mapping start",
	MappingEnd:    "mapping end",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("unknown event %d", t)
	}
	return typeNames[t]
}

// Style is the single style enumeration named in spec §6.1, covering both
// scalar and collection styles (a collection only ever uses Flow or Block).
type Style int8

const (
	AnyStyle Style = iota
	Plain
	SingleQuoted
	DoubleQuoted
	Literal
	Folded
	Flow
	Block
)

func (s Style) String() string {
	switch s {
	case Plain:
		return "Plain"
	case SingleQuoted:
		return "SingleQuoted"
	case DoubleQuoted:
		return "DoubleQuoted"
	case Literal:
		return "Literal"
	case Folded:
		return "Folded"
	case Flow:
		return "Flow"
	case Block:
		return "Block"
	default:
		return "Any"
	}
}

// VersionDirective is the %YAML directive of a document start event.
type VersionDirective struct {
	Major, Minor int8
}

// TagDirective is one %TAG handle/prefix pair of a document start event.
type TagDirective struct {
	Handle string
	Prefix string
}

// Event holds one element of the parser/emitter event stream.
type Event struct {
	Type Type

	StartMark, EndMark Mark

	// DocumentStart only.
	VersionDirective *VersionDirective
	TagDirectives    []TagDirective

	// Comments, attached to whichever event they were collected against.
	HeadComment []byte
	LineComment []byte
	FootComment []byte

	// Scalar/SequenceStart/MappingStart/Alias.
	Anchor string
	Tag    string

	// Scalar only.
	Value []byte

	// Implicit reports whether the tag is the schema default for this
	// event's kind (Scalar/SequenceStart/MappingStart) or whether a
	// DocumentStart/End's marker was implicit in the source text.
	Implicit bool

	Style Style
}

// Well-known tag URIs, identical across schemas (spec §3.6 governs when
// the decoder assigns them, not their spelling).
const (
	NullTag      = "tag:yaml.org,2002:null"
	BoolTag      = "tag:yaml.org,2002:bool"
	StrTag       = "tag:yaml.org,2002:str"
	IntTag       = "tag:yaml.org,2002:int"
	FloatTag     = "tag:yaml.org,2002:float"
	TimestampTag = "tag:yaml.org,2002:timestamp"
	SeqTag       = "tag:yaml.org,2002:seq"
	MapTag       = "tag:yaml.org,2002:map"
	BinaryTag    = "tag:yaml.org,2002:binary"
	MergeTag     = "tag:yaml.org,2002:merge"

	DefaultScalarTag   = StrTag
	DefaultSequenceTag = SeqTag
	DefaultMappingTag  = MapTag
)
