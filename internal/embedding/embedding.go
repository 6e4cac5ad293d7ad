// Package embedding provides vector embedding generation for text.
package embedding

// Embedding represents a vector embedding of text.
type Embedding struct {
	Vector []float64 // e.g., 1024 values for Titan Text Embeddings v2
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}
