package semantic

import (
	"errors"
	"math"
	"testing"

	"github.com/matsen/rcp/internal/storage"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"identical vectors", []float64{1, 0, 0}, []float64{1, 0, 0}, 1},
		{"orthogonal vectors", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite vectors", []float64{1, 0}, []float64{-1, 0}, -1},
		{"similar vectors", []float64{1, 1}, []float64{1, 0}, 0.7071067811865475},
		{"empty vectors", []float64{}, []float64{}, 0},
		{"different lengths", []float64{1, 0}, []float64{1, 0, 0}, 0},
		{"zero vector", []float64{0, 0, 0}, []float64{1, 0, 0}, 0},
		{"scaled vectors", []float64{0.6, 0.8}, []float64{3, 4}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CosineSimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
			if back := CosineSimilarity(tt.b, tt.a); math.Abs(back-got) > 1e-12 {
				t.Errorf("CosineSimilarity not commutative: %v vs %v", got, back)
			}
		})
	}
}

func testRecords() []storage.Record {
	return []storage.Record{
		{URL: "u/curry", Name: "Curry", Query: "chicken", Model: "m", Embedding: []float64{1, 0, 0}},
		{URL: "u/stew", Name: "Stew", Query: "beef", Model: "m", Embedding: []float64{0.9, 0.1, 0}},
		{URL: "u/salad", Name: "Salad", Query: "tofu", Model: "m", Embedding: []float64{0, 0, 1}},
		{URL: "u/raw", Name: "Unembedded", Query: "tofu"},
	}
}

func TestNewIndex(t *testing.T) {
	idx, err := NewIndex(testRecords())
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (unembedded record skipped)", idx.Len())
	}
	if idx.Model != "m" || idx.Dimensions != 3 {
		t.Errorf("Model/Dimensions = %s/%d", idx.Model, idx.Dimensions)
	}
	if !idx.Has("u/stew") || idx.Has("u/raw") {
		t.Error("Has() reports wrong membership")
	}
}

func TestNewIndex_DuplicateURLReplaces(t *testing.T) {
	recs := testRecords()[:1]
	recs = append(recs, storage.Record{URL: "u/curry", Name: "Curry v2", Model: "m", Embedding: []float64{0, 1, 0}})

	idx, err := NewIndex(recs)
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", idx.Len())
	}
	got := idx.Search([]float64{0, 1, 0}, 0, 0)
	if len(got) != 1 || got[0].Name != "Curry v2" {
		t.Errorf("Search() = %+v, want the replacement", got)
	}
}

func TestNewIndex_Errors(t *testing.T) {
	if _, err := NewIndex(nil); !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("NewIndex(nil) error = %v, want ErrEmptyIndex", err)
	}

	mixed := []storage.Record{
		{URL: "a", Model: "m1", Embedding: []float64{1}},
		{URL: "b", Model: "m2", Embedding: []float64{1}},
	}
	if _, err := NewIndex(mixed); !errors.Is(err, ErrMixedModels) {
		t.Errorf("NewIndex(mixed) error = %v, want ErrMixedModels", err)
	}

	dims := []storage.Record{
		{URL: "a", Model: "m", Embedding: []float64{1, 0}},
		{URL: "b", Model: "m", Embedding: []float64{1}},
	}
	if _, err := NewIndex(dims); err == nil {
		t.Error("NewIndex() expected dimension mismatch error")
	}
}

func TestSearch(t *testing.T) {
	idx, err := NewIndex(testRecords())
	if err != nil {
		t.Fatal(err)
	}

	got := idx.Search([]float64{1, 0, 0}, 0, 0)
	if len(got) != 3 {
		t.Fatalf("Search() returned %d results, want 3", len(got))
	}
	if got[0].URL != "u/curry" || got[1].URL != "u/stew" || got[2].URL != "u/salad" {
		t.Errorf("Search() order = %v, %v, %v", got[0].URL, got[1].URL, got[2].URL)
	}

	if got := idx.Search([]float64{1, 0, 0}, 1, 0); len(got) != 1 {
		t.Errorf("Search(limit=1) returned %d results", len(got))
	}
	if got := idx.Search([]float64{1, 0, 0}, 0, 0.5); len(got) != 2 {
		t.Errorf("Search(threshold=0.5) returned %d results, want 2", len(got))
	}
	if got := idx.Search([]float64{1, 0}, 0, 0); got != nil {
		t.Errorf("Search() with wrong dimensions = %v, want nil", got)
	}
}

func TestFindSimilar(t *testing.T) {
	idx, err := NewIndex(testRecords())
	if err != nil {
		t.Fatal(err)
	}

	got, err := idx.FindSimilar("u/curry", 0)
	if err != nil {
		t.Fatalf("FindSimilar() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindSimilar() returned %d results, want 2", len(got))
	}
	for _, r := range got {
		if r.URL == "u/curry" {
			t.Error("FindSimilar() included the source recipe")
		}
	}
	if got[0].URL != "u/stew" {
		t.Errorf("most similar = %s, want u/stew", got[0].URL)
	}

	if _, err := idx.FindSimilar("u/missing", 5); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("FindSimilar(missing) error = %v, want ErrRecipeNotFound", err)
	}
}
