// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package value

// Indirect metadata accessors. IndirectBlob's slots are package-private
// (they're reached through unsafe pointer arithmetic); these functions
// are the public surface codec and other consumers use to read
// anchor/tag/style/etc. off an Indirect or Alias Generic. Each returns
// InvalidWord when g isn't an Indirect/Alias, or when the requested
// slot is absent.

func (g Generic) indirectOrInvalid() *IndirectBlob {
	if g.tag() != tagIndirect || g.isEscape() {
		return nil
	}
	return g.indirect()
}

// IndirectAnchor returns the anchor name a node defines for itself, if
// any.
func IndirectAnchor(g Generic) Generic {
	ind := g.indirectOrInvalid()
	if ind == nil {
		return InvalidWord
	}
	return ind.Anchor()
}

// IndirectTag returns the explicit tag URI/handle attached to g, if
// any.
func IndirectTag(g Generic) Generic {
	ind := g.indirectOrInvalid()
	if ind == nil {
		return InvalidWord
	}
	return ind.Tag()
}

// IndirectStyle returns the source style attached to g, if any.
func IndirectStyle(g Generic) Generic {
	ind := g.indirectOrInvalid()
	if ind == nil {
		return InvalidWord
	}
	return ind.Style()
}

// IndirectAliasTarget returns the anchor name an Alias node references.
func IndirectAliasTarget(g Generic) Generic {
	ind := g.indirectOrInvalid()
	if ind == nil {
		return InvalidWord
	}
	return ind.Alias()
}

// IndirectComment returns the attached comment value, if any.
func IndirectComment(g Generic) Generic {
	ind := g.indirectOrInvalid()
	if ind == nil {
		return InvalidWord
	}
	return ind.Comment()
}

// IndirectMarker returns the attached source Marker value, if any.
func IndirectMarker(g Generic) Generic {
	ind := g.indirectOrInvalid()
	if ind == nil {
		return InvalidWord
	}
	return ind.Marker()
}

// IndirectDiag returns the attached diagnostic payload, if any.
func IndirectDiag(g Generic) Generic {
	ind := g.indirectOrInvalid()
	if ind == nil {
		return InvalidWord
	}
	return ind.Diag()
}

// IndirectFailsafeStr returns the preserved failsafe-schema string
// representation, if any.
func IndirectFailsafeStr(g Generic) Generic {
	ind := g.indirectOrInvalid()
	if ind == nil {
		return InvalidWord
	}
	return ind.FailsafeStr()
}
