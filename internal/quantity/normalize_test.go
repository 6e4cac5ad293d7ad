package quantity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "no quantity", input: "salt and pepper to taste", want: "salt and pepper to taste"},
		{name: "glyph at start", input: "¼ cup flour", want: "0.25 cup flour"},
		{name: "glyph in middle", input: "flour, ½ cup", want: "flour, 0.5 cup"},
		{name: "multiple glyphs", input: "¼ + ¾", want: "0.25 + 0.75"},
		{name: "every glyph", input: "⅛ ⅜ ⅝ ⅞", want: "0.125 0.375 0.625 0.875"},
		{name: "slash fraction", input: "1/2", want: "0.5"},
		{name: "slash fraction with spaces", input: " 1 / 2 cup milk", want: "0.5 cup milk"},
		{name: "repeating decimal", input: "1/3 cup", want: "0.3333333333333333 cup"},
		{name: "whole valued fraction", input: "4/2 cups", want: "2.0 cups"},
		{name: "slash fraction not at start", input: "add 1/2 cup", want: "add 1/2 cup"},
		{name: "whole number", input: "3", want: "3"},
		{name: "whole number with unit", input: "3 eggs", want: "3 eggs"},
		{name: "whole number leading space", input: "  3 eggs", want: "3 eggs"},
		{name: "whole number leading zeros", input: "007 eggs", want: "7 eggs"},
		{name: "whole number followed by letters", input: "3eggs", want: "3eggs"},
		{name: "large whole number", input: "123456789012345678901234567890 grains", want: "123456789012345678901234567890 grains"},
		{name: "mixed number", input: "2 3/4 cups", want: "2.75 cups"},
		{name: "mixed number with tab", input: "3\t1/2", want: "3.5"},
		{name: "mixed number leading zeros", input: " 01 1/2 tsp", want: "1.5 tsp"},
		{name: "slash zero denominator", input: "1/0 cup", want: "1/0 cup"},
		{name: "mixed zero denominator", input: "1 1/0 cup", want: "1 1/0 cup"},
		{name: "small fraction uses exponent", input: "1/100000", want: "1e-05"},
		{name: "large fraction uses exponent", input: "20000000000000000/1", want: "2e+16"},
		{name: "decimal untouched", input: "0.25 cup", want: "0.25 cup"},
		{name: "sequence of integers", input: "1 2 3", want: "1 2 3"},
		{name: "mixed number with no-break space", input: "1\u00a01/2 cups", want: "1.5 cups"},
		{name: "whole number after no-break space", input: "\u00a03 eggs", want: "3 eggs"},
		{name: "slash fraction with vertical tab", input: "1\v/2", want: "0.5"},
		{name: "mixed number after vertical tab", input: "\v1 1/2", want: "1.5"},
		{name: "mixed number with ideographic space", input: "2\u30003/4 cup", want: "2.75 cup"},
		{name: "whole number before next line", input: "3\u0085eggs", want: "3\u0085eggs"},
		{name: "arabic-indic slash fraction", input: "\u0661/\u0664 cup", want: "0.25 cup"},
		{name: "devanagari whole number", input: "\u0969 eggs", want: "3 eggs"},
		{name: "fullwidth mixed number", input: "\uff11 \uff11/\uff12", want: "1.5"},
		{name: "zero width space is not whitespace", input: "1\u200b1/2", want: "1\u200b1/2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

// The whole-number stage runs before the mixed-number stage. These cases
// pin what that ordering actually produces.
func TestNormalize_StageOrderingGolden(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// The whole-number stage rewrites "1" to "1", so the mixed stage
		// still sees "1 1/2".
		{input: "1 1/2", want: "1.5"},
		{input: "2 3/4 cups", want: "2.75 cups"},
		// Glyphs are expanded first, so a whole number next to a glyph is
		// never combined with it.
		{input: "2 ½ cups", want: "2 0.5 cups"},
		{input: "1½ cups", want: "10.5 cups"},
		// A leading slash fraction consumes the prefix, leaving a later
		// fraction alone.
		{input: "1/2 1/4", want: "0.5 1/4"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_IdentityWithoutDigitsOrGlyphs(t *testing.T) {
	inputs := []string{
		"a pinch of salt",
		"   leading spaces",
		"fresh basil / parsley",
		"ünïcödé herbs",
		"\n",
	}
	for _, in := range inputs {
		assert.Equal(t, in, Normalize(in), "input %q", in)
	}
}

func TestNormalize_IdempotentOnDecimalText(t *testing.T) {
	inputs := []string{
		"0.25 cup flour",
		"1.5 tbsp butter",
		"3 eggs",
		"2.75 cups",
		"1e-05 g saffron",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]string, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Normalize("2 3/4 cups ½ tsp")
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, "2.75 cups 0.5 tsp", got)
	}
}

func TestDigitValue(t *testing.T) {
	tests := []struct {
		r    rune
		want int
		ok   bool
	}{
		{'0', 0, true},
		{'7', 7, true},
		{'\u0660', 0, true},     // ARABIC-INDIC DIGIT ZERO
		{'\u0669', 9, true},     // ARABIC-INDIC DIGIT NINE
		{'\uff15', 5, true},     // FULLWIDTH DIGIT FIVE
		{'\U0001D7D9', 1, true}, // MATHEMATICAL DOUBLE-STRUCK DIGIT ONE, second run in its block
		{'a', 0, false},
		{'½', 0, false},
	}
	for _, tt := range tests {
		got, ok := digitValue(tt.r)
		assert.Equal(t, tt.ok, ok, "digitValue(%U) ok", tt.r)
		assert.Equal(t, tt.want, got, "digitValue(%U)", tt.r)
	}
}
