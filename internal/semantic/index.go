// Package semantic ranks stored recipes by embedding similarity.
package semantic

import (
	"errors"
	"fmt"

	"github.com/matsen/rcp/internal/storage"
)

// Errors returned by index operations.
var (
	ErrEmptyIndex     = errors.New("no embedded recipes to search")
	ErrRecipeNotFound = errors.New("recipe not in index")
	ErrMixedModels    = errors.New("records were embedded with different models")
)

// Entry is one indexed recipe.
type Entry struct {
	URL    string
	Name   string
	Query  string
	Vector []float64
}

// Index holds the embeddings of stored recipes, keyed by URL. All vectors
// share one model and dimensionality.
type Index struct {
	Model      string
	Dimensions int
	entries    []Entry
	byURL      map[string]int
}

// NewIndex builds an index from stored records. Records without an
// embedding are skipped; a later record with the same URL replaces an
// earlier one.
func NewIndex(records []storage.Record) (*Index, error) {
	idx := &Index{byURL: make(map[string]int)}
	for _, rec := range records {
		if len(rec.Embedding) == 0 {
			continue
		}
		if idx.Dimensions == 0 {
			idx.Model = rec.Model
			idx.Dimensions = len(rec.Embedding)
		}
		if rec.Model != idx.Model {
			return nil, fmt.Errorf("%w: %s and %s", ErrMixedModels, idx.Model, rec.Model)
		}
		if len(rec.Embedding) != idx.Dimensions {
			return nil, fmt.Errorf("embedding dimension mismatch for %s: got %d, want %d", rec.URL, len(rec.Embedding), idx.Dimensions)
		}

		e := Entry{URL: rec.URL, Name: rec.Name, Query: rec.Query, Vector: rec.Embedding}
		if i, ok := idx.byURL[rec.URL]; ok {
			idx.entries[i] = e
			continue
		}
		idx.byURL[rec.URL] = len(idx.entries)
		idx.entries = append(idx.entries, e)
	}
	if len(idx.entries) == 0 {
		return nil, ErrEmptyIndex
	}
	return idx, nil
}

// Len returns the number of indexed recipes.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Has reports whether a recipe URL is indexed.
func (idx *Index) Has(url string) bool {
	_, ok := idx.byURL[url]
	return ok
}
