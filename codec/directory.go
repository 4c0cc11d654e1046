// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package codec

import "github.com/libfy/fy/value"

// DocumentEntry pairs one document's root value with its document-state
// mapping (version/tag directives, schema), spec.md §6.3.
type DocumentEntry struct {
	Root  value.Generic
	State value.Generic
}

// Directory is the parser-output sequence of DocumentEntry pairs a
// Decoder.Decode call produces when MultiDocument is set and
// DisableDirectory is unset, spec.md
// §6.3. It's a thin read-only view over the Sequence-of-Mapping shape
// Decode itself builds — Directory never constructs a Generic, it only
// interprets one.
type Directory struct {
	seq value.Generic
}

// AsDirectory interprets a Decode result as a Directory. It returns
// (Directory{}, false) when g is a bare single-document root (the
// MultiDocument-and-DisableDirectory-both-unset shape never applies, or
// DisableDirectory was set at decode time).
func AsDirectory(g value.Generic) (Directory, bool) {
	if g.Kind() != value.Sequence {
		return Directory{}, false
	}
	for i := 0; i < g.Len(); i++ {
		if !isDocumentPair(g.At(i)) {
			return Directory{}, false
		}
	}
	return Directory{seq: g}, true
}

func isDocumentPair(g value.Generic) bool {
	if g.Kind() != value.Mapping || g.Len() != 2 {
		return false
	}
	k0, _ := g.Pair(0)
	k1, _ := g.Pair(1)
	return k0.Kind() == value.String && k1.Kind() == value.String &&
		((k0.AsString() == "root" && k1.AsString() == "document-state") ||
			(k0.AsString() == "document-state" && k1.AsString() == "root"))
}

// Len returns the number of documents in the directory.
func (d Directory) Len() int { return d.seq.Len() }

// At returns the i'th document's {root, document-state} pair.
func (d Directory) At(i int) DocumentEntry {
	pair := d.seq.At(i)
	var entry DocumentEntry
	for j := 0; j < pair.Len(); j++ {
		k, v := pair.Pair(j)
		switch k.AsString() {
		case "root":
			entry.Root = v
		case "document-state":
			entry.State = v
		}
	}
	return entry
}
