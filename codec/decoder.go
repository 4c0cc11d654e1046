// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package codec implements the external parser/emitter boundary of
// spec.md §6: the event vocabulary (codec/event, adapted from the
// teacher's internal/libyaml yaml.go), a Decoder that consumes an event
// stream into a value tree via a builder.Builder, an Encoder/Iterator
// pair that regenerates an event stream from a value tree, the
// Directory document-state wrapper, and the Schema scalar-
// classification policy. The actual byte-level YAML/JSON scanning and
// rendering are external collaborators (spec.md §1); this package only
// ever sees/produces Event values.
package codec

import (
	"strconv"
	"strings"

	"github.com/libfy/fy/builder"
	"github.com/libfy/fy/codec/event"
	"github.com/libfy/fy/fyerr"
	"github.com/libfy/fy/value"
)

// DecodeFlags is spec.md §6.1's flag set governing one Decode call.
type DecodeFlags uint32

const (
	DisableDirectory DecodeFlags = 1 << iota
	MultiDocument
	Trace
	DontResolve
	CollectDiag
	KeepComments
	CreateMarkers
	KeepStyle
	KeepFailsafeStr
)

// Decoder consumes an event stream and builds a value tree in b's
// scope. A single Decoder may decode more than one document when
// MultiDocument is set.
type Decoder struct {
	b      *builder.Builder
	schema Schema
	flags  DecodeFlags

	events []event.Event
	pos    int

	anchors map[string]value.Generic
}

// NewDecoder returns a Decoder that allocates into b.
func NewDecoder(b *builder.Builder, schema Schema, flags DecodeFlags) *Decoder {
	return &Decoder{b: b, schema: schema, flags: flags, anchors: map[string]value.Generic{}}
}

func (d *Decoder) peek() (event.Event, bool) {
	if d.pos >= len(d.events) {
		return event.Event{}, false
	}
	return d.events[d.pos], true
}

func (d *Decoder) next() (event.Event, bool) {
	e, ok := d.peek()
	if ok {
		d.pos++
	}
	return e, ok
}

// Decode consumes events (a full StreamStart..StreamEnd run) and
// returns either a single document root, or — when MultiDocument and
// directory mode are both active — a sequence of {root, document-state}
// pairs per spec.md §6.3.
func (d *Decoder) Decode(events []event.Event) (value.Generic, error) {
	d.events = events
	d.pos = 0

	e, ok := d.next()
	if !ok || e.Type != event.StreamStart {
		return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "codec.Decode", "expected StreamStart")
	}

	var docs []value.Generic
	for {
		e, ok := d.peek()
		if !ok {
			return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "codec.Decode", "unexpected end of stream")
		}
		if e.Type == event.StreamEnd {
			d.pos++
			break
		}
		root, state, err := d.decodeDocument()
		if err != nil {
			return value.InvalidWord, err
		}
		if d.flags&DisableDirectory != 0 || d.flags&MultiDocument == 0 {
			docs = append(docs, root)
		} else {
			pair, err := value.NewMapping(d.b.Dest(), []value.Generic{
				mustString(d.b, "root"), root,
				mustString(d.b, "document-state"), state,
			}, false)
			if err != nil {
				return value.InvalidWord, err
			}
			docs = append(docs, pair)
		}
		if d.flags&MultiDocument == 0 {
			break
		}
	}

	if len(docs) == 1 && d.flags&MultiDocument == 0 {
		return docs[0], nil
	}
	return value.NewSequence(d.b.Dest(), docs)
}

func mustString(b *builder.Builder, s string) value.Generic {
	g, err := value.NewString(b.Dest(), s)
	if err != nil {
		return value.InvalidWord
	}
	return g
}

// decodeDocument consumes DocumentStart ... body ... DocumentEnd and
// returns (root, document-state).
func (d *Decoder) decodeDocument() (value.Generic, value.Generic, error) {
	e, ok := d.next()
	if !ok || e.Type != event.DocumentStart {
		return value.InvalidWord, value.InvalidWord, fyerr.New(fyerr.InvalidInput, "codec.decodeDocument", "expected DocumentStart")
	}
	state, err := d.documentState(e)
	if err != nil {
		return value.InvalidWord, value.InvalidWord, err
	}

	clear(d.anchors)
	root, err := d.decodeNode()
	if err != nil {
		return value.InvalidWord, value.InvalidWord, err
	}

	e, ok = d.next()
	if !ok || e.Type != event.DocumentEnd {
		return value.InvalidWord, value.InvalidWord, fyerr.New(fyerr.InvalidInput, "codec.decodeDocument", "expected DocumentEnd")
	}
	return root, state, nil
}

func (d *Decoder) documentState(start event.Event) (value.Generic, error) {
	var major, minor int64
	if start.VersionDirective != nil {
		major, minor = int64(start.VersionDirective.Major), int64(start.VersionDirective.Minor)
	}
	tagItems := make([]value.Generic, 0, len(start.TagDirectives))
	for _, td := range start.TagDirectives {
		handle, err := value.NewString(d.b.Dest(), td.Handle)
		if err != nil {
			return value.InvalidWord, err
		}
		prefix, err := value.NewString(d.b.Dest(), td.Prefix)
		if err != nil {
			return value.InvalidWord, err
		}
		pair, err := value.NewMapping(d.b.Dest(), []value.Generic{
			mustString(d.b, "handle"), handle,
			mustString(d.b, "prefix"), prefix,
		}, false)
		if err != nil {
			return value.InvalidWord, err
		}
		tagItems = append(tagItems, pair)
	}
	tags, err := value.NewSequence(d.b.Dest(), tagItems)
	if err != nil {
		return value.InvalidWord, err
	}
	majorG, err := value.NewInt(d.b.Dest(), major)
	if err != nil {
		return value.InvalidWord, err
	}
	minorG, err := value.NewInt(d.b.Dest(), minor)
	if err != nil {
		return value.InvalidWord, err
	}
	version, err := value.NewMapping(d.b.Dest(), []value.Generic{
		mustString(d.b, "major"), majorG,
		mustString(d.b, "minor"), minorG,
	}, false)
	if err != nil {
		return value.InvalidWord, err
	}
	schemaG, err := value.NewInt(d.b.Dest(), int64(d.schema))
	if err != nil {
		return value.InvalidWord, err
	}
	return value.NewMapping(d.b.Dest(), []value.Generic{
		mustString(d.b, "version"), version,
		mustString(d.b, "tags"), tags,
		mustString(d.b, "schema"), schemaG,
		mustString(d.b, "tags-explicit"), value.NewBool(len(start.TagDirectives) > 0),
		mustString(d.b, "version-explicit"), value.NewBool(start.VersionDirective != nil),
	}, false)
}

// decodeNode consumes a single body subtree (Scalar/Alias/SequenceStart.../MappingStart...).
func (d *Decoder) decodeNode() (value.Generic, error) {
	e, ok := d.next()
	if !ok {
		return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "codec.decodeNode", "unexpected end of stream")
	}
	switch e.Type {
	case event.Scalar:
		return d.decodeScalar(e)
	case event.Alias:
		return d.decodeAlias(e)
	case event.SequenceStart:
		return d.decodeSequence(e)
	case event.MappingStart:
		return d.decodeMapping(e)
	default:
		return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "codec.decodeNode", "unexpected event type "+e.Type.String())
	}
}

func (d *Decoder) decodeAlias(e event.Event) (value.Generic, error) {
	if d.flags&DontResolve != 0 {
		return value.NewAlias(d.b.Dest(), mustString(d.b, e.Anchor))
	}
	target, ok := d.anchors[e.Anchor]
	if !ok {
		return value.InvalidWord, fyerr.New(fyerr.UnresolvedAlias, "codec.decodeAlias", "undefined anchor "+e.Anchor)
	}
	return target, nil
}

func (d *Decoder) decodeScalar(e event.Event) (value.Generic, error) {
	v, err := d.classifyScalar(e)
	if err != nil {
		return value.InvalidWord, err
	}
	v, err = d.wrapIndirect(v, e.Anchor, e.Tag, e.Style)
	if err != nil {
		return value.InvalidWord, err
	}
	if e.Anchor != "" {
		d.anchors[e.Anchor] = v
	}
	return v, nil
}

func (d *Decoder) decodeSequence(start event.Event) (value.Generic, error) {
	var items []value.Generic
	for {
		e, ok := d.peek()
		if !ok {
			return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "codec.decodeSequence", "unterminated sequence")
		}
		if e.Type == event.SequenceEnd {
			d.pos++
			break
		}
		item, err := d.decodeNode()
		if err != nil {
			return value.InvalidWord, err
		}
		items = append(items, item)
	}
	seq, err := value.NewSequence(d.b.Dest(), items)
	if err != nil {
		return value.InvalidWord, err
	}
	seq, err = d.wrapIndirect(seq, start.Anchor, start.Tag, start.Style)
	if err != nil {
		return value.InvalidWord, err
	}
	if start.Anchor != "" {
		d.anchors[start.Anchor] = seq
	}
	return seq, nil
}

func (d *Decoder) decodeMapping(start event.Event) (value.Generic, error) {
	var pairs []value.Generic
	for {
		e, ok := d.peek()
		if !ok {
			return value.InvalidWord, fyerr.New(fyerr.InvalidInput, "codec.decodeMapping", "unterminated mapping")
		}
		if e.Type == event.MappingEnd {
			d.pos++
			break
		}
		k, err := d.decodeNode()
		if err != nil {
			return value.InvalidWord, err
		}
		v, err := d.decodeNode()
		if err != nil {
			return value.InvalidWord, err
		}
		pairs = append(pairs, k, v)
	}
	m, err := value.NewMapping(d.b.Dest(), pairs, d.b.DuplicateKeysDisabled())
	if err != nil {
		return value.InvalidWord, err
	}
	m, err = d.wrapIndirect(m, start.Anchor, start.Tag, start.Style)
	if err != nil {
		return value.InvalidWord, err
	}
	if start.Anchor != "" {
		d.anchors[start.Anchor] = m
	}
	return m, nil
}

// wrapIndirect wraps v in an Indirect carrying anchor/tag/style
// metadata iff KeepStyle is set or an anchor/tag is present; otherwise v
// is returned unchanged (spec.md §3.4's canonical-inplace invariant
// extends to "don't allocate metadata nobody asked to keep").
// CreateMarkers does not cause a wrapper here.
func (d *Decoder) wrapIndirect(v value.Generic, anchor, tag string, style event.Style) (value.Generic, error) {
	if anchor == "" && tag == "" && d.flags&KeepStyle == 0 {
		return v, nil
	}
	slots := value.IndirectSlots{Value: v}
	if anchor != "" {
		slots.Anchor = mustString(d.b, anchor)
	}
	if tag != "" {
		slots.Tag = mustString(d.b, tag)
	}
	if d.flags&KeepStyle != 0 {
		slots.Style = mustString(d.b, style.String())
	}
	return value.NewIndirect(d.b.Dest(), slots)
}

// classifyScalar implements spec.md §3.6's schema-driven untyped-
// scalar classification: plain scalars with no explicit tag are
// resolved to Null/Bool/Int/Float/String by textual shape, using the
// word table and numeric grammar of the active schema; quoted scalars
// are always String regardless of schema.
func (d *Decoder) classifyScalar(e event.Event) (value.Generic, error) {
	text := string(e.Value)
	if e.Tag != "" || e.Style == event.SingleQuoted || e.Style == event.DoubleQuoted || e.Style == event.Literal || e.Style == event.Folded {
		return value.NewString(d.b.Dest(), text)
	}
	switch d.schema {
	case SchemaJson, SchemaYaml1_2Json:
		return classifyJSON(d.b, text)
	case SchemaYaml1_1Failsafe, SchemaYaml1_2Failsafe:
		return value.NewString(d.b.Dest(), text)
	case SchemaYaml1_1:
		return classifyYaml11(d.b, text)
	case SchemaYaml1_1Pyyaml:
		return classifyYaml11Pyyaml(d.b, text)
	case SchemaPython:
		return classifyPython(d.b, text)
	default: // SchemaAuto, SchemaYaml1_2Core
		return classifyYaml12Core(d.b, text)
	}
}

func classifyJSON(b *builder.Builder, text string) (value.Generic, error) {
	switch text {
	case "null":
		return value.NullValue, nil
	case "true":
		return value.TrueValue, nil
	case "false":
		return value.FalseValue, nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return value.NewInt(b.Dest(), n)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return value.NewFloat(b.Dest(), f)
	}
	return value.NewString(b.Dest(), text)
}

// classifyNumeric applies the numeric grammar shared by the non-JSON,
// non-Failsafe schemas: base-prefixed (0x/0o/0, legacy-octal) integers,
// unsigned overflow of the signed range, and float fallback. Callers
// have already ruled out the schema's null/bool words.
func classifyNumeric(b *builder.Builder, text string) (value.Generic, bool, error) {
	if n, err := strconv.ParseInt(text, 0, 64); err == nil {
		g, err := value.NewInt(b.Dest(), n)
		return g, true, err
	}
	if u, err := strconv.ParseUint(strings.TrimPrefix(text, "+"), 0, 64); err == nil {
		g, err := value.NewUint(b.Dest(), u)
		return g, true, err
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		g, err := value.NewFloat(b.Dest(), f)
		return g, true, err
	}
	switch text {
	case ".inf", ".Inf", ".INF", "+.inf":
		g, err := value.NewFloat(b.Dest(), posInf())
		return g, true, err
	case "-.inf", "-.Inf", "-.INF":
		g, err := value.NewFloat(b.Dest(), negInf())
		return g, true, err
	case ".nan", ".NaN", ".NAN":
		g, err := value.NewFloat(b.Dest(), nan())
		return g, true, err
	}
	return value.InvalidWord, false, nil
}

var yaml12NullWords = map[string]bool{"": true, "~": true, "null": true, "Null": true, "NULL": true}
var yaml12TrueWords = map[string]bool{"true": true, "True": true, "TRUE": true}
var yaml12FalseWords = map[string]bool{"false": true, "False": true, "FALSE": true}

// classifyYaml12Core implements the YAML 1.2 Core schema: the narrow
// true/false/null word set, no yes/no/on/off. Auto falls back to this
// schema in the absence of a detected/declared one.
func classifyYaml12Core(b *builder.Builder, text string) (value.Generic, error) {
	switch {
	case yaml12NullWords[text]:
		return value.NullValue, nil
	case yaml12TrueWords[text]:
		return value.TrueValue, nil
	case yaml12FalseWords[text]:
		return value.FalseValue, nil
	}
	if g, ok, err := classifyNumeric(b, text); ok {
		return g, err
	}
	return value.NewString(b.Dest(), text)
}

var yaml11NullWords = map[string]bool{"": true, "~": true, "null": true, "Null": true, "NULL": true}
var yaml11TrueWords = map[string]bool{
	"true": true, "True": true, "TRUE": true,
	"yes": true, "Yes": true, "YES": true,
	"on": true, "On": true, "ON": true,
	"y": true, "Y": true,
}
var yaml11FalseWords = map[string]bool{
	"false": true, "False": true, "FALSE": true,
	"no": true, "No": true, "NO": true,
	"off": true, "Off": true, "OFF": true,
	"n": true, "N": true,
}

// classifyYaml11 implements the wider YAML 1.1 core word set: the
// yes/no/on/off/y/n boolean spellings alongside true/false, per the
// YAML 1.1 resolver's expanded implicit-typing table.
func classifyYaml11(b *builder.Builder, text string) (value.Generic, error) {
	switch {
	case yaml11NullWords[text]:
		return value.NullValue, nil
	case yaml11TrueWords[text]:
		return value.TrueValue, nil
	case yaml11FalseWords[text]:
		return value.FalseValue, nil
	}
	if g, ok, err := classifyNumeric(b, text); ok {
		return g, err
	}
	return value.NewString(b.Dest(), text)
}

// classifyYaml11Pyyaml implements PyYAML's particular YAML 1.1
// resolver: the same expanded bool/null word table as classifyYaml11
// (PyYAML's implicit resolver uses the identical spelling list), kept
// as its own schema identifier since PyYAML diverges from canonical
// YAML 1.1 elsewhere in the full loader (merge keys, Python tags) even
// though scalar classification itself lines up.
func classifyYaml11Pyyaml(b *builder.Builder, text string) (value.Generic, error) {
	return classifyYaml11(b, text)
}

var pythonNullWords = map[string]bool{"": true, "~": true, "null": true, "Null": true, "NULL": true, "None": true}

// classifyPython resolves Python's own literal keyword casing (True,
// False, None) ahead of YAML's word table, since this schema targets
// values meant to round-trip through Python's native types rather than
// YAML's case-insensitive-ish spelling list.
func classifyPython(b *builder.Builder, text string) (value.Generic, error) {
	switch text {
	case "True":
		return value.TrueValue, nil
	case "False":
		return value.FalseValue, nil
	}
	if pythonNullWords[text] {
		return value.NullValue, nil
	}
	if g, ok, err := classifyNumeric(b, text); ok {
		return g, err
	}
	return value.NewString(b.Dest(), text)
}
