// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"math"
	"strconv"

	"github.com/libfy/fy/value"
)

// scalarText renders a scalar Generic back to the plain text an
// Iterator emits as an event.Scalar's Value, the inverse of
// classifyScalar's per-schema classifiers. String scalars pass through verbatim;
// the emitter (not this package) is responsible for picking a quoting
// style when the text needs it.
func scalarText(v value.Generic) string {
	switch v.Kind() {
	case value.Null:
		return ""
	case value.Bool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case value.Int:
		if v.IsUnsignedExtend() {
			return strconv.FormatUint(v.AsUint64(), 10)
		}
		return strconv.FormatInt(v.AsInt64(), 10)
	case value.Float:
		f := v.AsFloat64()
		switch {
		case math.IsNaN(f):
			return ".nan"
		case math.IsInf(f, 1):
			return ".inf"
		case math.IsInf(f, -1):
			return "-.inf"
		default:
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	case value.String:
		return v.AsString()
	default:
		return ""
	}
}
