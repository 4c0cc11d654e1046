// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package collection

import (
	"strconv"

	"github.com/libfy/fy/builder"
	"github.com/libfy/fy/fyerr"
	"github.com/libfy/fy/value"
)

// opConvert implements spec.md §4.4's Convert(kind): numeric<->string
// coercion; structural kinds (Sequence/Mapping) are never coercible to
// scalars or vice versa.
func opConvert(b *builder.Builder, in value.Generic, target value.Kind) (value.Generic, error) {
	if in.Kind() == target {
		return in, nil
	}
	switch target {
	case value.String:
		return convertToString(b, in)
	case value.Int:
		return convertToInt(b, in)
	case value.Float:
		return convertToFloat(b, in)
	case value.Bool:
		return convertToBool(in)
	default:
		return value.InvalidWord, fyerr.New(fyerr.SchemaViolation, "collection.Convert", "structural kinds are not coercible")
	}
}

func convertToString(b *builder.Builder, in value.Generic) (value.Generic, error) {
	var s string
	switch in.Kind() {
	case value.Int:
		if in.IsUnsignedExtend() {
			s = strconv.FormatUint(in.AsUint64(), 10)
		} else {
			s = strconv.FormatInt(in.AsInt64(), 10)
		}
	case value.Float:
		s = strconv.FormatFloat(in.AsFloat64(), 'g', -1, 64)
	case value.Bool:
		s = strconv.FormatBool(in.AsBool())
	case value.Null:
		s = ""
	default:
		return value.InvalidWord, fyerr.New(fyerr.SchemaViolation, "collection.Convert", "not scalar-coercible to String")
	}
	return value.NewString(b.Dest(), s)
}

func convertToInt(b *builder.Builder, in value.Generic) (value.Generic, error) {
	switch in.Kind() {
	case value.String:
		n, err := strconv.ParseInt(in.AsString(), 10, 64)
		if err != nil {
			return value.InvalidWord, fyerr.New(fyerr.SchemaViolation, "collection.Convert", "string is not an integer")
		}
		return value.NewInt(b.Dest(), n)
	case value.Float:
		return value.NewInt(b.Dest(), int64(in.AsFloat64()))
	case value.Bool:
		if in.AsBool() {
			return value.NewInt(b.Dest(), 1)
		}
		return value.NewInt(b.Dest(), 0)
	default:
		return value.InvalidWord, fyerr.New(fyerr.SchemaViolation, "collection.Convert", "not scalar-coercible to Int")
	}
}

func convertToFloat(b *builder.Builder, in value.Generic) (value.Generic, error) {
	switch in.Kind() {
	case value.String:
		f, err := strconv.ParseFloat(in.AsString(), 64)
		if err != nil {
			return value.InvalidWord, fyerr.New(fyerr.SchemaViolation, "collection.Convert", "string is not a float")
		}
		return value.NewFloat(b.Dest(), f)
	case value.Int:
		if in.IsUnsignedExtend() {
			return value.NewFloat(b.Dest(), float64(in.AsUint64()))
		}
		return value.NewFloat(b.Dest(), float64(in.AsInt64()))
	default:
		return value.InvalidWord, fyerr.New(fyerr.SchemaViolation, "collection.Convert", "not scalar-coercible to Float")
	}
}

func convertToBool(in value.Generic) (value.Generic, error) {
	switch in.Kind() {
	case value.String:
		switch in.AsString() {
		case "true":
			return value.TrueValue, nil
		case "false":
			return value.FalseValue, nil
		default:
			return value.InvalidWord, fyerr.New(fyerr.SchemaViolation, "collection.Convert", "string is not a bool")
		}
	case value.Int:
		return value.NewBool(in.AsInt64() != 0), nil
	default:
		return value.InvalidWord, fyerr.New(fyerr.SchemaViolation, "collection.Convert", "not scalar-coercible to Bool")
	}
}
