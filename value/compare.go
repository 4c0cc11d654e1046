// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package value

// kindOrder is the cross-kind ordering of spec.md §4.2.2: Null < Bool <
// Int < Float < String < Sequence < Mapping. Invalid/Indirect/Alias are
// never compared directly (Invalid short-circuits; Indirect/Alias are
// unwrapped by Compare before dispatch).
func kindOrder(k Kind) int {
	switch k {
	case Null:
		return 0
	case Bool:
		return 1
	case Int:
		return 2
	case Float:
		return 3
	case String:
		return 4
	case Sequence:
		return 5
	case Mapping:
		return 6
	default:
		return -1
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return sign(len(a) - len(b))
}

func compareFloat(a, b float64) int {
	aNaN, bNaN := a != a, b != b
	switch {
	case aNaN && bNaN:
		// Open Question (spec.md §9): NaN compares equal to NaN to
		// keep the relation total.
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Compare implements spec.md §4.2.2: -2 if either is Invalid, 0 if the
// raw words are equal, otherwise dispatch on kind with the documented
// per-kind ordering. The result is always in {-2,-1,0,1}.
func Compare(a, b Generic) int {
	if a.IsInvalid() || b.IsInvalid() {
		return -2
	}
	a = a.Unwrap()
	b = b.Unwrap()
	if a == b {
		return 0
	}

	ka, kb := a.Kind(), b.Kind()
	if ka != kb {
		return sign(kindOrder(ka) - kindOrder(kb))
	}

	switch ka {
	case Null:
		return 0
	case Bool:
		av, bv := 0, 0
		if a.AsBool() {
			av = 1
		}
		if b.AsBool() {
			bv = 1
		}
		return sign(av - bv)
	case Int:
		return compareInt(a, b)
	case Float:
		return compareFloat(a.AsFloat64(), b.AsFloat64())
	case String:
		return compareBytes([]byte(a.AsString()), []byte(b.AsString()))
	case Sequence:
		return compareSequence(a, b)
	case Mapping:
		return compareMapping(a, b)
	default:
		return -2
	}
}

func compareInt(a, b Generic) int {
	// Respect the unsigned-extend flag: an out-of-place int flagged
	// unsigned must be ordered by its unsigned value, not its
	// reinterpreted-as-signed one.
	au, bu := a.IsUnsignedExtend(), b.IsUnsignedExtend()
	if au || bu {
		av, bv := a.AsUint64(), b.AsUint64()
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	}
	av, bv := a.AsInt64(), b.AsInt64()
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func compareSequence(a, b Generic) int {
	na, nb := a.Len(), b.Len()
	n := na
	if nb < n {
		n = nb
	}
	for i := 0; i < n; i++ {
		if c := Compare(a.At(i), b.At(i)); c != 0 {
			return c
		}
	}
	return sign(na - nb)
}

// sortedPairs returns a's key/value pairs ordered by key, for mapping
// comparison (spec.md §4.2.2: "comparing the sorted key/value list
// elementwise").
func sortedPairs(a Generic) [][2]Generic {
	n := a.Len()
	out := make([][2]Generic, n)
	for i := 0; i < n; i++ {
		k, v := a.Pair(i)
		out[i] = [2]Generic{k, v}
	}
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && Compare(out[j-1][0], out[j][0]) > 0 {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	return out
}

func compareMapping(a, b Generic) int {
	pa, pb := sortedPairs(a), sortedPairs(b)
	n := len(pa)
	if len(pb) < n {
		n = len(pb)
	}
	for i := 0; i < n; i++ {
		if c := Compare(pa[i][0], pb[i][0]); c != 0 {
			return c
		}
		if c := Compare(pa[i][1], pb[i][1]); c != 0 {
			return c
		}
	}
	return sign(len(pa) - len(pb))
}

// Equal reports structural equality: Compare(a,b) == 0 and neither is
// Invalid.
func Equal(a, b Generic) bool {
	if a.IsInvalid() || b.IsInvalid() {
		return false
	}
	return Compare(a, b) == 0
}
