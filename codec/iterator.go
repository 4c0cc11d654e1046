// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/libfy/fy/codec/event"
	"github.com/libfy/fy/value"
)

type iterState int

const (
	iterBeforeStream iterState = iota
	iterBeforeDocument
	iterInBody
	iterAfterDocument
	iterAfterStream
	iterDone
)

type frameKind int

const (
	frameSequence frameKind = iota
	frameMapping
)

type frame struct {
	kind      frameKind
	container value.Generic
	cursor    int
	// forMapping: cursor counts pairs; once a pair's key is emitted,
	// pendingValue holds that pair's value for the next Next().
	havePendingKey bool
	pendingValue   value.Generic
}

// Iterator produces the event stream that would regenerate a root
// value losslessly, per spec.md §4.5: an explicit stack of
// (container, cursor) frames, one event emitted per Next() call. An
// error flag latches on protocol violation (consuming past StreamEnd);
// reading the flag via Err clears it and resets the iterator, per
// spec.md's description of that behavior.
type Iterator struct {
	root        value.Generic
	rootStarted bool
	state       iterState
	stack       []frame
	err         error
}

// NewIterator starts an iteration run over root. Passing any subtree
// (not necessarily a full document) supports spec.md §4.5's
// "path-scoped emission".
func NewIterator(root value.Generic) *Iterator {
	return &Iterator{root: root, state: iterBeforeStream}
}

// Err returns the latched protocol-violation error, if any, and clears
// it (resetting the iterator to start over from iterBeforeStream), per
// spec.md §4.5.
func (it *Iterator) Err() error {
	e := it.err
	if e != nil {
		it.err = nil
		it.state = iterBeforeStream
		it.stack = nil
	}
	return e
}

func (it *Iterator) fail(msg string) (event.Event, bool) {
	it.err = protocolError(msg)
	return event.Event{}, false
}

// Next produces the next event, or (zero, false) when the run is
// exhausted or a protocol violation occurred (check Err).
func (it *Iterator) Next() (event.Event, bool) {
	switch it.state {
	case iterBeforeStream:
		it.state = iterBeforeDocument
		return event.Event{Type: event.StreamStart}, true
	case iterBeforeDocument:
		it.state = iterInBody
		it.stack = nil
		it.rootStarted = false
		return event.Event{Type: event.DocumentStart}, true
	case iterInBody:
		return it.nextBodyEvent()
	case iterAfterDocument:
		it.state = iterAfterStream
		return event.Event{Type: event.StreamEnd}, true
	case iterAfterStream:
		it.state = iterDone
		return event.Event{}, false
	case iterDone:
		return it.fail("iterator consumed past StreamEnd")
	default:
		return it.fail("unknown iterator state")
	}
}

func (it *Iterator) nextBodyEvent() (event.Event, bool) {
	if len(it.stack) == 0 {
		if it.rootStarted || it.root.IsInvalid() {
			it.state = iterAfterDocument
			return event.Event{Type: event.DocumentEnd}, true
		}
		it.rootStarted = true
		return it.descend(it.root)
	}

	top := &it.stack[len(it.stack)-1]
	switch top.kind {
	case frameSequence:
		if top.cursor >= top.container.Len() {
			it.stack = it.stack[:len(it.stack)-1]
			return event.Event{Type: event.SequenceEnd}, true
		}
		child := top.container.At(top.cursor)
		top.cursor++
		return it.descend(child)
	case frameMapping:
		if top.havePendingKey {
			top.havePendingKey = false
			v := top.pendingValue
			return it.descend(v)
		}
		if top.cursor >= top.container.Len() {
			it.stack = it.stack[:len(it.stack)-1]
			return event.Event{Type: event.MappingEnd}, true
		}
		k, v := top.container.Pair(top.cursor)
		top.cursor++
		top.havePendingKey = true
		top.pendingValue = v
		return it.descend(k)
	default:
		return it.fail("unknown frame kind")
	}
}

// descend emits the event for v (pushing a new frame for
// Sequence/Mapping) or pops back to the enclosing frame for DocumentEnd
// when v was the top-level root and there is no stack.
func (it *Iterator) descend(v value.Generic) (event.Event, bool) {
	if v.Kind() == value.AliasKind {
		name := value.IndirectAliasTarget(v).AsString()
		return it.maybeCloseRoot(event.Event{Type: event.Alias, Anchor: name})
	}

	anchor, tag, style, unwrapped := unwrapMetadata(v)

	switch unwrapped.Kind() {
	case value.Sequence:
		it.stack = append(it.stack, frame{kind: frameSequence, container: unwrapped})
		return event.Event{Type: event.SequenceStart, Anchor: anchor, Tag: tag, Style: style}, true
	case value.Mapping:
		it.stack = append(it.stack, frame{kind: frameMapping, container: unwrapped})
		return event.Event{Type: event.MappingStart, Anchor: anchor, Tag: tag, Style: style}, true
	default:
		return it.maybeCloseRoot(event.Event{
			Type:   event.Scalar,
			Anchor: anchor,
			Tag:    tag,
			Style:  style,
			Value:  []byte(scalarText(unwrapped)),
		})
	}
}

// maybeCloseRoot returns the scalar/alias event e. When e is the
// top-level root the stack is empty and rootStarted is set, so the next
// body step emits DocumentEnd.
func (it *Iterator) maybeCloseRoot(e event.Event) (event.Event, bool) {
	return e, true
}

// unwrapMetadata reads the anchor/tag/style a decode-time wrapIndirect
// attached to v and returns v's wrapped value, or v itself unchanged
// when it carries no Indirect wrapper. Callers must not pass an Alias
// node (handled separately in descend, since an Alias has no Value
// slot to unwrap).
func unwrapMetadata(v value.Generic) (anchor, tag string, style event.Style, unwrapped value.Generic) {
	style = event.AnyStyle
	if v.Kind() != value.IndirectKind {
		return "", "", style, v
	}
	if a := value.IndirectAnchor(v); !a.IsInvalid() {
		anchor = a.AsString()
	}
	if t := value.IndirectTag(v); !t.IsInvalid() {
		tag = t.AsString()
	}
	if s := value.IndirectStyle(v); !s.IsInvalid() {
		style = parseStyle(s.AsString())
	}
	return anchor, tag, style, v.Unwrap()
}

func parseStyle(s string) event.Style {
	switch s {
	case "Plain":
		return event.Plain
	case "SingleQuoted":
		return event.SingleQuoted
	case "DoubleQuoted":
		return event.DoubleQuoted
	case "Literal":
		return event.Literal
	case "Folded":
		return event.Folded
	case "Flow":
		return event.Flow
	case "Block":
		return event.Block
	default:
		return event.AnyStyle
	}
}

func protocolError(msg string) error {
	return &iteratorError{msg: msg}
}

type iteratorError struct{ msg string }

func (e *iteratorError) Error() string { return "codec: iterator protocol violation: " + e.msg }
