// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

// This binary is a small debugging harness: it reads a JSON document
// from stdin, decodes it into an in-memory Generic tree through the
// same builder/codec machinery the library uses, dumps the tree's
// shape, then regenerates the event stream and reports whether the
// round trip reproduced the same structural hash.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/libfy/fy/builder"
	"github.com/libfy/fy/codec"
	"github.com/libfy/fy/codec/event"
	"github.com/libfy/fy/value"
)

func main() {
	schema := flag.String("schema", "auto", "scalar classification schema: auto, yaml11failsafe, yaml11, yaml11pyyaml, yaml12failsafe, yaml12, yaml12json, json, python")
	indent := flag.Int("indent", 2, "emit indent width")
	width := flag.Int("width", 80, "emit line width")
	style := flag.String("style", "default", "emit style: default, block, flow, pretty, compact, oneline")
	trace := flag.Bool("trace", false, "print the regenerated event stream")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, *schema, *indent, *width, *style, *trace); err != nil {
		log.Fatal(err)
	}
}

func run(in *os.File, out *os.File, schemaName string, indent, width int, styleName string, trace bool) error {
	var doc any
	dec := json.NewDecoder(bufio.NewReader(in))
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("reading JSON: %w", err)
	}

	b, err := builder.New(
		builder.WithSchema(int(parseSchema(schemaName))),
		builder.WithFlags(builder.CreateAllocator|builder.CreateTag|builder.ScopeLeader),
		builder.WithEstimatedMaxSize(4096),
	)
	if err != nil {
		return fmt.Errorf("builder.New: %w", err)
	}
	defer b.Close()

	events := jsonToEvents(doc)
	d := codec.NewDecoder(b, parseSchema(schemaName), codec.KeepStyle)
	root, err := d.Decode(events)
	if err != nil {
		return fmt.Errorf("codec.Decode: %w", err)
	}

	w := bufio.NewWriter(out)
	defer w.Flush()

	dumpTree(w, root, 0)

	h1 := value.Hash(root)
	enc := codec.NewEncoder(root, codec.EncodeConfig{
		Indent: parseIndent(indent),
		Width:  parseWidth(width),
		Style:  parseStyle(styleName),
	})
	var regenerated []event.Event
	for {
		e, ok := enc.Next()
		if !ok {
			break
		}
		regenerated = append(regenerated, e)
		if trace {
			fmt.Fprintf(w, "event: %s %q\n", e.Type, e.Value)
		}
	}
	if err := enc.Err(); err != nil {
		return fmt.Errorf("codec.Encoder: %w", err)
	}

	d2 := codec.NewDecoder(b, parseSchema(schemaName), codec.KeepStyle)
	root2, err := d2.Decode(regenerated)
	if err != nil {
		return fmt.Errorf("re-decoding regenerated events: %w", err)
	}
	h2 := value.Hash(root2)
	fmt.Fprintf(w, "round-trip hash match: %v\n", h1 == h2)
	return nil
}

func parseSchema(s string) codec.Schema {
	switch strings.ToLower(s) {
	case "yaml11failsafe":
		return codec.SchemaYaml1_1Failsafe
	case "yaml11":
		return codec.SchemaYaml1_1
	case "yaml11pyyaml":
		return codec.SchemaYaml1_1Pyyaml
	case "yaml12failsafe":
		return codec.SchemaYaml1_2Failsafe
	case "yaml12", "yaml12core":
		return codec.SchemaYaml1_2Core
	case "yaml12json":
		return codec.SchemaYaml1_2Json
	case "json":
		return codec.SchemaJson
	case "python":
		return codec.SchemaPython
	default:
		return codec.SchemaAuto
	}
}

func parseIndent(n int) codec.Indent {
	switch n {
	case 1:
		return codec.Indent1
	case 3:
		return codec.Indent3
	case 4:
		return codec.Indent4
	case 6:
		return codec.Indent6
	case 8:
		return codec.Indent8
	default:
		return codec.Indent2
	}
}

func parseWidth(n int) codec.Width {
	switch n {
	case 132:
		return codec.Width132
	case 0:
		return codec.WidthInfinite
	default:
		return codec.Width80
	}
}

func parseStyle(s string) codec.Style {
	switch strings.ToLower(s) {
	case "block":
		return codec.StyleBlock
	case "flow":
		return codec.StyleFlow
	case "pretty":
		return codec.StylePretty
	case "compact":
		return codec.StyleCompact
	case "oneline":
		return codec.StyleOneLine
	default:
		return codec.StyleDefault
	}
}

// jsonToEvents bridges encoding/json's decoded any-tree into the event
// stream codec.Decoder expects, standing in for the external byte-level
// scanner spec.md §1 leaves out of scope.
func jsonToEvents(v any) []event.Event {
	var events []event.Event
	events = append(events, event.Event{Type: event.StreamStart})
	events = append(events, event.Event{Type: event.DocumentStart})
	events = appendNode(events, v)
	events = append(events, event.Event{Type: event.DocumentEnd})
	events = append(events, event.Event{Type: event.StreamEnd})
	return events
}

func appendNode(events []event.Event, v any) []event.Event {
	switch x := v.(type) {
	case nil:
		return append(events, event.Event{Type: event.Scalar, Value: []byte("null")})
	case bool:
		if x {
			return append(events, event.Event{Type: event.Scalar, Value: []byte("true")})
		}
		return append(events, event.Event{Type: event.Scalar, Value: []byte("false")})
	case float64:
		return append(events, event.Event{Type: event.Scalar, Value: []byte(jsonNumberText(x))})
	case string:
		return append(events, event.Event{Type: event.Scalar, Style: event.DoubleQuoted, Value: []byte(x)})
	case []any:
		events = append(events, event.Event{Type: event.SequenceStart})
		for _, item := range x {
			events = appendNode(events, item)
		}
		return append(events, event.Event{Type: event.SequenceEnd})
	case map[string]any:
		events = append(events, event.Event{Type: event.MappingStart})
		for k, item := range x {
			events = append(events, event.Event{Type: event.Scalar, Style: event.DoubleQuoted, Value: []byte(k)})
			events = appendNode(events, item)
		}
		return append(events, event.Event{Type: event.MappingEnd})
	default:
		return append(events, event.Event{Type: event.Scalar, Value: []byte(fmt.Sprint(x))})
	}
}

func jsonNumberText(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func dumpTree(w *bufio.Writer, v value.Generic, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v.Kind() {
	case value.Sequence:
		fmt.Fprintf(w, "%sSequence(%d)\n", indent, v.Len())
		for i := 0; i < v.Len(); i++ {
			dumpTree(w, v.At(i), depth+1)
		}
	case value.Mapping:
		fmt.Fprintf(w, "%sMapping(%d)\n", indent, v.Len())
		for i := 0; i < v.Len(); i++ {
			k, val := v.Pair(i)
			fmt.Fprintf(w, "%s  key:\n", indent)
			dumpTree(w, k, depth+2)
			fmt.Fprintf(w, "%s  value:\n", indent)
			dumpTree(w, val, depth+2)
		}
	case value.IndirectKind:
		fmt.Fprintf(w, "%sIndirect ->\n", indent)
		dumpTree(w, v.Unwrap(), depth+1)
	case value.AliasKind:
		fmt.Fprintf(w, "%sAlias(%s)\n", indent, value.IndirectAliasTarget(v).AsString())
	case value.String:
		fmt.Fprintf(w, "%sString(%q)\n", indent, v.AsString())
	case value.Int:
		fmt.Fprintf(w, "%sInt(%d)\n", indent, v.AsInt64())
	case value.Float:
		fmt.Fprintf(w, "%sFloat(%g)\n", indent, v.AsFloat64())
	case value.Bool:
		fmt.Fprintf(w, "%sBool(%v)\n", indent, v.AsBool())
	case value.Null:
		fmt.Fprintf(w, "%sNull\n", indent)
	default:
		fmt.Fprintf(w, "%sInvalid\n", indent)
	}
}
