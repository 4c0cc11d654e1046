// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/builder"
	"github.com/libfy/fy/codec"
	"github.com/libfy/fy/codec/event"
	"github.com/libfy/fy/value"
)

func newBuilder(t *testing.T) *builder.Builder {
	t.Helper()
	b, err := builder.New(
		builder.WithFlags(builder.CreateAllocator|builder.CreateTag|builder.ScopeLeader),
		builder.WithEstimatedMaxSize(4096),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func simpleDocEvents() []event.Event {
	return []event.Event{
		{Type: event.StreamStart},
		{Type: event.DocumentStart},
		{Type: event.MappingStart},
		{Type: event.Scalar, Value: []byte("name")},
		{Type: event.Scalar, Value: []byte("fy")},
		{Type: event.Scalar, Value: []byte("count")},
		{Type: event.Scalar, Value: []byte("3")},
		{Type: event.Scalar, Value: []byte("active")},
		{Type: event.Scalar, Value: []byte("true")},
		{Type: event.MappingEnd},
		{Type: event.DocumentEnd},
		{Type: event.StreamEnd},
	}
}

func TestDecodeScalarClassification(t *testing.T) {
	b := newBuilder(t)
	d := codec.NewDecoder(b, codec.SchemaAuto, 0)
	root, err := d.Decode(simpleDocEvents())
	require.NoError(t, err)

	require.Equal(t, value.Mapping, root.Kind())
	got, _ := root.Pair(1)
	require.Equal(t, "count", got.AsString())
	_, countVal := root.Pair(1)
	require.Equal(t, value.Int, countVal.Kind())
	require.Equal(t, int64(3), countVal.AsInt64())
	_, activeVal := root.Pair(2)
	require.Equal(t, value.Bool, activeVal.Kind())
	require.True(t, activeVal.AsBool())
}

func TestDecodeAliasResolution(t *testing.T) {
	b := newBuilder(t)
	events := []event.Event{
		{Type: event.StreamStart},
		{Type: event.DocumentStart},
		{Type: event.SequenceStart},
		{Type: event.Scalar, Anchor: "x", Value: []byte("42")},
		{Type: event.Alias, Anchor: "x"},
		{Type: event.SequenceEnd},
		{Type: event.DocumentEnd},
		{Type: event.StreamEnd},
	}
	d := codec.NewDecoder(b, codec.SchemaAuto, 0)
	root, err := d.Decode(events)
	require.NoError(t, err)
	require.Equal(t, 2, root.Len())
	require.Equal(t, value.IndirectKind, root.At(0).Kind())
	require.Equal(t, int64(42), root.At(0).Unwrap().AsInt64())
	require.True(t, value.Equal(root.At(0), root.At(1)))
}

func TestDecodeUnresolvedAliasErrors(t *testing.T) {
	b := newBuilder(t)
	events := []event.Event{
		{Type: event.StreamStart},
		{Type: event.DocumentStart},
		{Type: event.Alias, Anchor: "missing"},
		{Type: event.DocumentEnd},
		{Type: event.StreamEnd},
	}
	d := codec.NewDecoder(b, codec.SchemaAuto, 0)
	_, err := d.Decode(events)
	require.Error(t, err)
}

func TestIteratorRegeneratesEventsForRoundTrip(t *testing.T) {
	b := newBuilder(t)
	d := codec.NewDecoder(b, codec.SchemaAuto, 0)
	root, err := d.Decode(simpleDocEvents())
	require.NoError(t, err)

	it := codec.NewIterator(root)
	var regenerated []event.Event
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		regenerated = append(regenerated, e)
	}
	require.NoError(t, it.Err())

	d2 := codec.NewDecoder(b, codec.SchemaAuto, 0)
	root2, err := d2.Decode(regenerated)
	require.NoError(t, err)
	require.Equal(t, value.Hash(root), value.Hash(root2))
}

func TestIteratorNestedContainerDoesNotLoop(t *testing.T) {
	b := newBuilder(t)
	d := codec.NewDecoder(b, codec.SchemaAuto, 0)
	events := []event.Event{
		{Type: event.StreamStart},
		{Type: event.DocumentStart},
		{Type: event.SequenceStart},
		{Type: event.SequenceStart},
		{Type: event.Scalar, Value: []byte("1")},
		{Type: event.SequenceEnd},
		{Type: event.SequenceEnd},
		{Type: event.DocumentEnd},
		{Type: event.StreamEnd},
	}
	root, err := d.Decode(events)
	require.NoError(t, err)

	it := codec.NewIterator(root)
	count := 0
	for {
		_, ok := it.Next()
		if !ok {
			break
		}
		count++
		require.Less(t, count, 20, "iterator looped instead of terminating")
	}
	require.NoError(t, it.Err())
	require.Equal(t, 9, count)
}

func scalarDocEvents(word string) []event.Event {
	return []event.Event{
		{Type: event.StreamStart},
		{Type: event.DocumentStart},
		{Type: event.Scalar, Value: []byte(word)},
		{Type: event.DocumentEnd},
		{Type: event.StreamEnd},
	}
}

func decodeScalar(t *testing.T, schema codec.Schema, word string) value.Generic {
	t.Helper()
	b := newBuilder(t)
	d := codec.NewDecoder(b, schema, 0)
	root, err := d.Decode(scalarDocEvents(word))
	require.NoError(t, err)
	return root
}

func TestClassifyScalarFailsafeNeverResolves(t *testing.T) {
	for _, schema := range []codec.Schema{codec.SchemaYaml1_1Failsafe, codec.SchemaYaml1_2Failsafe} {
		for _, word := range []string{"true", "null", "42", "3.5", "yes"} {
			got := decodeScalar(t, schema, word)
			require.Equal(t, value.String, got.Kind(), "schema %s word %q", schema, word)
			require.Equal(t, word, got.AsString())
		}
	}
}

func TestClassifyScalarYaml11AcceptsExpandedBoolWords(t *testing.T) {
	for _, word := range []string{"yes", "Yes", "on", "ON", "y"} {
		got := decodeScalar(t, codec.SchemaYaml1_1, word)
		require.Equal(t, value.Bool, got.Kind(), "word %q", word)
		require.True(t, got.AsBool())
	}
	for _, word := range []string{"no", "off", "n"} {
		got := decodeScalar(t, codec.SchemaYaml1_1, word)
		require.Equal(t, value.Bool, got.Kind(), "word %q", word)
		require.False(t, got.AsBool())
	}
}

func TestClassifyScalarYaml12CoreRejectsYesNoWords(t *testing.T) {
	got := decodeScalar(t, codec.SchemaYaml1_2Core, "yes")
	require.Equal(t, value.String, got.Kind())
	require.Equal(t, "yes", got.AsString())
}

func TestClassifyScalarPythonUsesKeywordCasing(t *testing.T) {
	got := decodeScalar(t, codec.SchemaPython, "True")
	require.Equal(t, value.Bool, got.Kind())
	require.True(t, got.AsBool())

	got = decodeScalar(t, codec.SchemaPython, "true")
	require.Equal(t, value.String, got.Kind(), "lowercase true is not a Python keyword")

	got = decodeScalar(t, codec.SchemaPython, "None")
	require.Equal(t, value.Null, got.Kind())
}

func TestClassifyScalarJSONSchemasAreStrict(t *testing.T) {
	for _, schema := range []codec.Schema{codec.SchemaJson, codec.SchemaYaml1_2Json} {
		got := decodeScalar(t, schema, "yes")
		require.Equal(t, value.String, got.Kind(), "schema %s", schema)

		got = decodeScalar(t, schema, "null")
		require.Equal(t, value.Null, got.Kind(), "schema %s", schema)
	}
}

func TestEncoderDefaultsStyleFromConfig(t *testing.T) {
	b := newBuilder(t)
	d := codec.NewDecoder(b, codec.SchemaAuto, 0)
	root, err := d.Decode(simpleDocEvents())
	require.NoError(t, err)

	enc := codec.NewEncoder(root, codec.EncodeConfig{Style: codec.StyleFlow})
	e, ok := enc.Next()
	require.True(t, ok)
	require.Equal(t, event.StreamStart, e.Type)
	for {
		e, ok = enc.Next()
		require.True(t, ok)
		if e.Type == event.MappingStart {
			require.Equal(t, event.Flow, e.Style)
			break
		}
	}
}
