package recipe

import (
	"encoding/json"
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestQuantityText(t *testing.T) {
	tests := []struct {
		name string
		raw  json.Number
		want string
	}{
		{name: "missing", raw: "", want: "0"},
		{name: "zero int", raw: "0", want: "0"},
		{name: "zero float", raw: "0.0", want: "0"},
		{name: "integer", raw: "2", want: "2"},
		{name: "whole float keeps decimal", raw: "1.0", want: "1.0"},
		{name: "fraction", raw: "0.5", want: "0.5"},
		{name: "trailing zeros", raw: "1.50", want: "1.5"},
		{name: "exponent", raw: "1e2", want: "100.0"},
		{name: "long float", raw: "0.3333333333333333", want: "0.3333333333333333"},
		{name: "garbage", raw: "abc", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuantityText(tt.raw); got != tt.want {
				t.Errorf("QuantityText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMeasureText(t *testing.T) {
	tests := []struct {
		name    string
		measure *string
		want    string
	}{
		{name: "missing", measure: nil, want: "0"},
		{name: "unit placeholder", measure: strPtr("<unit>"), want: "0"},
		{name: "cup", measure: strPtr("cup"), want: "cup"},
		{name: "empty string kept", measure: strPtr(""), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeasureText(tt.measure); got != tt.want {
				t.Errorf("MeasureText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFoodText(t *testing.T) {
	if got := FoodText(nil); got != MissingFood {
		t.Errorf("FoodText(nil) = %q, want %q", got, MissingFood)
	}
	if got := FoodText(strPtr("chicken")); got != "chicken" {
		t.Errorf("FoodText() = %q, want chicken", got)
	}
}

func TestNewIngredient(t *testing.T) {
	ing := NewIngredient("1 ½ cups rice", "1.5", strPtr("cup"), strPtr("rice"))

	if ing.Text != "1 0.5 cups rice" {
		t.Errorf("Text = %q, want %q", ing.Text, "1 0.5 cups rice")
	}
	if got := ing.Line(); got != "1.5,cup,rice" {
		t.Errorf("Line() = %q, want %q", got, "1.5,cup,rice")
	}

	empty := NewIngredient("", "", nil, nil)
	if got := empty.Line(); got != "0,0,N/A" {
		t.Errorf("Line() = %q, want %q", got, "0,0,N/A")
	}
}

func TestNormalizeLines(t *testing.T) {
	got := NormalizeLines([]string{"2 3/4 cups flour", "  ", "¼ tsp salt", "pepper"})
	want := []string{"2.75 cups flour", "0.25 tsp salt", "pepper"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeLines() = %q, want %q", got, want)
	}

	if got := NormalizeLines(nil); got != nil {
		t.Errorf("NormalizeLines(nil) = %q, want nil", got)
	}
}
