// Package format holds the pure presentation helpers shared by every
// screen: currency, large-magnitude abbreviation and percentages. All of
// them render a placeholder on unusable input instead of failing.
package format

import (
	"math"
	"strconv"
	"strings"
)

// Placeholder is rendered for NaN or otherwise absent values.
const Placeholder = "—"

var symbols = map[string]string{
	"USD": "$",
	"INR": "₹",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// symbolFor returns the display symbol for a currency code, falling back
// to "CODE " for codes without a dedicated glyph.
func symbolFor(code string) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	return code + " "
}

// Currency renders value as an amount in the given currency. INR uses the
// lakh/crore grouping (last three digits, then pairs); everything else
// groups by three.
func Currency(value float64, code string) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Placeholder
	}
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	whole, frac := splitDecimal(value)
	grouped := groupWestern(whole)
	if code == "INR" {
		grouped = groupIndian(whole)
	}
	return sign + symbolFor(code) + grouped + "." + frac
}

// LargeNumber abbreviates a large magnitude with currency-appropriate
// suffixes. INR: T (1e12), B (1e9), Cr (1e7), L (1e5). Others: T, B, M, K
// at 1e12, 1e9, 1e6, 1e3. Values below the smallest threshold render as a
// plain currency amount.
func LargeNumber(value float64, code string) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Placeholder
	}
	sign := ""
	v := value
	if v < 0 {
		sign = "-"
		v = -v
	}

	type step struct {
		limit  float64
		suffix string
	}
	steps := []step{
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	}
	if code == "INR" {
		steps = []step{
			{1e12, "T"},
			{1e9, "B"},
			{1e7, "Cr"},
			{1e5, "L"},
		}
	}
	for _, s := range steps {
		if v >= s.limit {
			return sign + symbolFor(code) + trimTrailingZeros(v/s.limit) + s.suffix
		}
	}
	return Currency(value, code)
}

// Percentage renders a percent value (not a fraction) to two decimals.
func Percentage(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Placeholder
	}
	return strconv.FormatFloat(value, 'f', 2, 64) + "%"
}

// splitDecimal rounds to two decimals and splits into whole and fraction
// digit strings.
func splitDecimal(v float64) (whole, frac string) {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ = strings.Cut(s, ".")
	return whole, frac
}

// groupWestern inserts a separator every three digits: 1234567 -> 1,234,567.
func groupWestern(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// groupIndian groups the last three digits, then pairs:
// 1234567 -> 12,34,567.
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	head := digits[:n-3]
	tail := digits[n-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

// trimTrailingZeros formats with two decimals and strips a trailing ".00"
// or "0" so abbreviations read 2.5T, not 2.50T.
func trimTrailingZeros(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}
