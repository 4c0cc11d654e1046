// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package value

import "github.com/libfy/fy/alloc"

// Copy recursively materializes g into d's tag, per spec.md §4.2.4.
// Inplace values are returned unchanged; every out-of-place child is
// interned fresh. Invalid copies to Invalid.
func Copy(d Dest, g Generic) (Generic, error) {
	if g.IsInvalid() || g.IsInPlace() {
		return g, nil
	}
	switch g.Kind() {
	case Int:
		if g.IsUnsignedExtend() {
			return NewUint(d, g.AsUint64())
		}
		return NewInt(d, g.AsInt64())
	case Float:
		return NewFloat(d, g.AsFloat64())
	case String:
		return NewString(d, g.AsString())
	case Sequence:
		n := g.Len()
		items := make([]Generic, n)
		for i := 0; i < n; i++ {
			c, err := Copy(d, g.At(i))
			if err != nil {
				return InvalidWord, err
			}
			items[i] = c
		}
		return NewSequence(d, items)
	case Mapping:
		n := g.Len()
		pairs := make([]Generic, 0, n*2)
		for i := 0; i < n; i++ {
			k, v := g.Pair(i)
			ck, err := Copy(d, k)
			if err != nil {
				return InvalidWord, err
			}
			cv, err := Copy(d, v)
			if err != nil {
				return InvalidWord, err
			}
			pairs = append(pairs, ck, cv)
		}
		return NewMapping(d, pairs, false)
	case IndirectKind, AliasKind:
		return copyIndirect(d, g)
	default:
		return g, nil
	}
}

func copyIndirect(d Dest, g Generic) (Generic, error) {
	ind := g.indirect()
	slots := IndirectSlots{}
	copyIfPresent := func(flag uintptr, dst *Generic) error {
		if ind.flags&flag == 0 {
			return nil
		}
		c, err := Copy(d, ind.slot(flag))
		if err != nil {
			return err
		}
		*dst = c
		return nil
	}
	for _, f := range []struct {
		flag uintptr
		dst  *Generic
	}{
		{FlagValue, &slots.Value},
		{FlagAnchor, &slots.Anchor},
		{FlagTag, &slots.Tag},
		{FlagAlias, &slots.Alias},
		{FlagDiag, &slots.Diag},
		{FlagMarker, &slots.Marker},
		{FlagComment, &slots.Comment},
		{FlagStyle, &slots.Style},
		{FlagFailsafeStr, &slots.FailsafeStr},
	} {
		if err := copyIfPresent(f.flag, f.dst); err != nil {
			return InvalidWord, err
		}
	}
	return NewIndirect(d, slots)
}

// Internalize is a copy that first checks whether g's out-of-place
// storage already lies in d's arenas, skipping the copy entirely when
// it does (spec.md §4.2.4). Cheap when d.Alloc reports
// HasEfficientContains; otherwise it still falls back to Contains,
// which may scan.
func Internalize(d Dest, g Generic) (Generic, error) {
	if g.IsInvalid() || g.IsInPlace() {
		return g, nil
	}
	if d.Alloc != nil && d.Alloc.Capabilities().Has(alloc.HasContains) {
		if d.Alloc.Contains(d.Tag, g.pointer()) {
			return g, nil
		}
	}
	return Copy(d, g)
}
