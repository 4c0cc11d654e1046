// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package codec

import "math"

func posInf() float64 { return math.Inf(1) }
func negInf() float64 { return math.Inf(-1) }
func nan() float64    { return math.NaN() }
