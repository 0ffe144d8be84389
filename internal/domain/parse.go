package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseFloat parses a locale-invariant decimal string. Anything that is not
// a finite number yields (0, false).
func ParseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FloatOrZero is ParseFloat with the failure case collapsed to 0.
func FloatOrZero(s string) float64 {
	v, _ := ParseFloat(s)
	return v
}

// ParseVolume parses a share volume. Decimal strings are truncated toward
// zero; unparsable or negative input yields 0.
func ParseVolume(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, ok := ParseFloat(s)
	if !ok || f < 0 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}
