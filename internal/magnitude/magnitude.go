// Package magnitude converts between abbreviated coin strings ("150K",
// "2.3M") and integer coin amounts.
package magnitude

import (
	"math"
	"strconv"
	"strings"
)

const (
	thousand = 1_000
	million  = 1_000_000
)

var suffixReplacer = strings.NewReplacer(",", "", "COINS", "", "COIN", "")

// Parse returns the coin amount encoded in s. Empty input, the "--"
// placeholder, unparsable text and zero all report false.
func Parse(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" || s == "0" {
		return 0, false
	}
	s = strings.TrimSpace(suffixReplacer.Replace(strings.ToUpper(s)))

	var n int64
	switch {
	case strings.HasSuffix(s, "K"):
		v, ok := coefficient(s, thousand)
		if !ok {
			return 0, false
		}
		n = v
	case strings.HasSuffix(s, "M"):
		v, ok := coefficient(s, million)
		if !ok {
			return 0, false
		}
		n = v
	default:
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
		if digits == "" {
			return 0, false
		}
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, false
		}
		n = v
	}

	if n == 0 {
		return 0, false
	}
	return n, true
}

// coefficient parses "1.2K"-style input, truncating the scaled value.
func coefficient(s string, unit float64) (int64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-1]), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f * unit), true
}

// Format renders n as rounded millions ("2M"), rounded thousands ("150K")
// or a plain decimal. Zero reports false. Rounding is half-to-even.
func Format(n int64) (string, bool) {
	switch {
	case n == 0:
		return "", false
	case n >= million:
		return strconv.FormatInt(int64(math.RoundToEven(float64(n)/million)), 10) + "M", true
	case n >= thousand:
		return strconv.FormatInt(int64(math.RoundToEven(float64(n)/thousand)), 10) + "K", true
	default:
		return strconv.FormatInt(n, 10), true
	}
}

// MustFormat is Format with "" for absent amounts.
func MustFormat(n int64) string {
	s, _ := Format(n)
	return s
}

// FormatOptional formats an optional amount; nil renders as "".
func FormatOptional(n *int64) string {
	if n == nil {
		return ""
	}
	return MustFormat(*n)
}
