package quantity

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Exponent bounds outside which FormatFloat switches to exponent notation.
const (
	minFixedExponent = -4
	maxFixedExponent = 16
)

// FormatRat renders r as the text of the nearest float64.
func FormatRat(r *big.Rat) string {
	f, _ := r.Float64()
	return FormatFloat(f)
}

// FormatFloat renders f using the shortest digits that round-trip.
// The result always reads as a float: whole values keep a trailing ".0"
// ("1.0"), and magnitudes below 1e-4 or from 1e16 up use exponent form
// ("5e-05", "1e+16").
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if f != 0 {
		exp := decimalExponent(f)
		if exp < minFixedExponent || exp >= maxFixedExponent {
			return strconv.FormatFloat(f, 'e', -1, 64)
		}
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// FormatVector renders v as "[a, b, c]" using FormatFloat for each element.
func FormatVector(v []float64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(FormatFloat(f))
	}
	sb.WriteByte(']')
	return sb.String()
}

// decimalExponent returns e such that the shortest representation of f is
// d.ddd × 10^e.
func decimalExponent(f float64) int {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	i := strings.LastIndexByte(s, 'e')
	exp, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return 0
	}
	return exp
}
