// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"math"
	"strconv"
	"strings"
)

// Exponent form is used for magnitudes outside [expLow, expHigh).
const (
	expLow  = 1e-4
	expHigh = 1e16
)

// FormatFloat returns the shortest text that round-trips f.
//
//	1.5    -> "1.5"
//	2      -> "2.0"
//	1e20   -> "1e+20"
//	0.00001 -> "1e-05"
//	+Inf   -> "inf"
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if abs := math.Abs(f); abs != 0 && (abs < expLow || abs >= expHigh) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
