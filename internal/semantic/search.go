package semantic

import (
	"math"
	"sort"
)

// Result is a recipe found by a similarity search.
type Result struct {
	URL        string  `json:"url"`
	Name       string  `json:"name"`
	Query      string  `json:"query"`
	Similarity float64 `json:"similarity"`
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for empty, zero, or mismatched vectors.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}
	return dot / denominator
}

// Search ranks indexed recipes against a query vector, highest first.
// Results below threshold are dropped; limit <= 0 means no limit.
func (idx *Index) Search(query []float64, limit int, threshold float64) []Result {
	if len(query) != idx.Dimensions {
		return nil
	}
	return idx.rank(query, "", limit, threshold)
}

// FindSimilar ranks recipes against the indexed recipe at url, which is
// excluded from the results.
func (idx *Index) FindSimilar(url string, limit int) ([]Result, error) {
	i, ok := idx.byURL[url]
	if !ok {
		return nil, ErrRecipeNotFound
	}
	return idx.rank(idx.entries[i].Vector, url, limit, math.Inf(-1)), nil
}

func (idx *Index) rank(query []float64, exclude string, limit int, threshold float64) []Result {
	results := make([]Result, 0, len(idx.entries))
	for _, e := range idx.entries {
		if e.URL == exclude {
			continue
		}
		sim := CosineSimilarity(query, e.Vector)
		if sim < threshold {
			continue
		}
		results = append(results, Result{URL: e.URL, Name: e.Name, Query: e.Query, Similarity: sim})
	}

	// Ties keep index order so output is stable.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
