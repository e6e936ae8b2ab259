// Package services implements the selection export pipeline: pricing,
// image transcoding, PDF layout, merge and side-file generation.
package services

import (
	"strconv"
	"strings"
)

// ParsePrice parses a catalogue price string into a positive amount.
// Thousands separators and a leading currency symbol are stripped before
// parsing. The second return is false when the string is empty, unparseable
// or non-positive; such prices render as empty cells, never as 0.00 or NaN.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// LineTotal computes unit price × quantity for a row.
func LineTotal(unitPrice float64, quantity int) float64 {
	return unitPrice * float64(quantity)
}
