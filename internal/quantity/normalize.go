// Package quantity normalizes human-written ingredient quantities into
// decimal text.
//
// Normalize runs four ordered stages over its input:
//
//  1. every vulgar fraction glyph (¼ ½ ¾ ⅛ ⅜ ⅝ ⅞) anywhere in the string
//  2. a leading slash fraction ("1/2")
//  3. a leading whole number followed by whitespace or end of string ("3 ")
//  4. a leading mixed number ("2 3/4")
//
// Stages 2-4 only look at the start of the string and fire at most once.
// All fraction arithmetic is done on exact rationals before the result is
// rendered as text.
package quantity

import (
	"math/big"
	"regexp"
	"strings"
	"unicode"
)

// vulgarFractions maps each recognized glyph to its exact value.
var vulgarFractions = []struct {
	glyph string
	value *big.Rat
}{
	{"¼", big.NewRat(1, 4)},
	{"½", big.NewRat(1, 2)},
	{"¾", big.NewRat(3, 4)},
	{"⅛", big.NewRat(1, 8)},
	{"⅜", big.NewRat(3, 8)},
	{"⅝", big.NewRat(5, 8)},
	{"⅞", big.NewRat(7, 8)},
}

// glyphReplacer substitutes every glyph in a single pass.
var glyphReplacer = newGlyphReplacer()

// space matches any Unicode whitespace: \v, the ASCII separators 0x1c-0x1f,
// NEL and the Z categories (NBSP included), on top of RE2's \s. digit
// matches a decimal digit in any script.
const (
	space = `[\t\n\v\f\r\x{1c}-\x{1f}\x{85}\p{Z}]`
	digit = `\p{Nd}`
)

var (
	slashFractionPattern = regexp.MustCompile(`^` + space + `*(` + digit + `+)` + space + `*/` + space + `*(` + digit + `+)`)

	// RE2 has no lookahead, so the trailing whitespace is captured and
	// written back unchanged.
	wholeNumberPattern = regexp.MustCompile(`^` + space + `*(` + digit + `+)(` + space + `|$)`)

	mixedNumberPattern = regexp.MustCompile(`^` + space + `*(` + digit + `+)` + space + `+(` + digit + `+)` + space + `*/` + space + `*(` + digit + `+)`)
)

func newGlyphReplacer() *strings.Replacer {
	pairs := make([]string, 0, 2*len(vulgarFractions))
	for _, vf := range vulgarFractions {
		pairs = append(pairs, vf.glyph, FormatRat(vf.value))
	}
	return strings.NewReplacer(pairs...)
}

// Normalize rewrites the quantity expressions in s as decimal text.
// It never fails: a stage that finds nothing to rewrite leaves the string
// as it was.
func Normalize(s string) string {
	s = replaceGlyphs(s)
	s = replaceSlashFraction(s)
	s = replaceWholeNumber(s)
	s = replaceMixedNumber(s)
	return s
}

// replaceGlyphs substitutes every vulgar fraction glyph in s.
func replaceGlyphs(s string) string {
	return glyphReplacer.Replace(s)
}

// replaceSlashFraction rewrites a leading "N/D".
func replaceSlashFraction(s string) string {
	m := slashFractionPattern.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	num, ok := parseInt(s[m[2]:m[3]])
	if !ok {
		return s
	}
	den, ok := parseInt(s[m[4]:m[5]])
	if !ok || den.Sign() == 0 {
		return s
	}
	value := new(big.Rat).SetFrac(num, den)
	return FormatRat(value) + s[m[1]:]
}

// replaceWholeNumber rewrites a leading integer as plain integer text.
func replaceWholeNumber(s string) string {
	m := wholeNumberPattern.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	n, ok := parseInt(s[m[2]:m[3]])
	if !ok {
		return s
	}
	// m[3] is the end of the digits; whatever follows, including the
	// whitespace that terminated the match, is kept.
	return n.String() + s[m[3]:]
}

// replaceMixedNumber rewrites a leading "W N/D" as the decimal of (W*D+N)/D.
func replaceMixedNumber(s string) string {
	m := mixedNumberPattern.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	whole, ok := parseInt(s[m[2]:m[3]])
	if !ok {
		return s
	}
	num, ok := parseInt(s[m[4]:m[5]])
	if !ok {
		return s
	}
	den, ok := parseInt(s[m[6]:m[7]])
	if !ok || den.Sign() == 0 {
		return s
	}
	top := new(big.Int).Mul(whole, den)
	top.Add(top, num)
	value := new(big.Rat).SetFrac(top, den)
	return FormatRat(value) + s[m[1]:]
}

// parseInt reads a run of decimal digits from any script.
func parseInt(digits string) (*big.Int, bool) {
	n := new(big.Int)
	ten := big.NewInt(10)
	for _, r := range digits {
		d, ok := digitValue(r)
		if !ok {
			return nil, false
		}
		n.Mul(n, ten)
		n.Add(n, big.NewInt(int64(d)))
	}
	return n, digits != ""
}

// digitValue returns the value of a decimal digit rune. Decimal digits are
// encoded in contiguous runs of ten starting at zero, so the value is the
// distance back to the start of the run, modulo ten.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	if !unicode.IsDigit(r) {
		return 0, false
	}
	n := 0
	for unicode.IsDigit(r - 1) {
		r--
		n++
	}
	return n % 10, true
}
