// Package recipe defines the recipe model and renders recipes as text
// documents for embedding.
package recipe

import (
	"encoding/json"
	"math/big"
	"strconv"
	"strings"

	"github.com/matsen/rcp/internal/quantity"
)

// Placeholders substituted for missing ingredient fields.
const (
	MissingQuantity = "0"
	MissingMeasure  = "0"
	MissingFood     = "N/A"

	// unitPlaceholder is what the search API returns when it has no unit.
	unitPlaceholder = "<unit>"
)

// Ingredient is one ingredient of a recipe with its placeholders applied.
type Ingredient struct {
	Text     string `json:"text,omitempty"` // Human-written line, normalized
	Quantity string `json:"quantity"`
	Measure  string `json:"measure"`
	Food     string `json:"food"`
}

// Recipe is a recipe returned by a search.
type Recipe struct {
	Query       string       `json:"query"`
	Name        string       `json:"name"`
	URL         string       `json:"url"`
	Ingredients []Ingredient `json:"ingredients"`
	Lines       []string     `json:"lines,omitempty"` // Ingredient lines, normalized
}

// NewIngredient builds an Ingredient from raw API fields, substituting
// placeholders for anything missing. Nil pointers mean the field was
// absent or null.
func NewIngredient(text string, qty json.Number, measure, food *string) Ingredient {
	return Ingredient{
		Text:     quantity.Normalize(text),
		Quantity: QuantityText(qty),
		Measure:  MeasureText(measure),
		Food:     FoodText(food),
	}
}

// Line renders the ingredient as "quantity,measure,food".
func (i Ingredient) Line() string {
	return i.Quantity + "," + i.Measure + "," + i.Food
}

// QuantityText renders a raw JSON number. Missing and zero quantities
// become MissingQuantity; integer literals are printed as integers and
// everything else as float text.
func QuantityText(raw json.Number) string {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return MissingQuantity
	}

	if !strings.ContainsAny(s, ".eE") {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return MissingQuantity
		}
		if n.Sign() == 0 {
			return MissingQuantity
		}
		return n.String()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f == 0 {
		return MissingQuantity
	}
	return quantity.FormatFloat(f)
}

// MeasureText returns the measure or MissingMeasure when it is absent or
// the API's unit placeholder.
func MeasureText(measure *string) string {
	if measure == nil || *measure == unitPlaceholder {
		return MissingMeasure
	}
	return *measure
}

// FoodText returns the food name or MissingFood when it is absent.
func FoodText(food *string) string {
	if food == nil {
		return MissingFood
	}
	return *food
}

// NormalizeLines returns a copy of lines with each line passed through
// quantity.Normalize. Blank lines are dropped.
func NormalizeLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, quantity.Normalize(line))
	}
	return out
}
