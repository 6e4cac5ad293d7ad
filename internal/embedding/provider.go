package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Provider names accepted by New.
const (
	ProviderTitan  = "titan"
	ProviderOllama = "ollama"
)

// ErrDimensionMismatch is returned when a model returns a vector of the
// wrong length.
var ErrDimensionMismatch = errors.New("unexpected embedding dimensions")

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}

// Settings selects and configures a provider.
type Settings struct {
	Provider   string // ProviderTitan or ProviderOllama
	Model      string // Empty means the provider's default
	Dimensions int    // Zero means the provider's default
	Normalize  bool   // Titan only
	Region     string // Titan only; empty uses the AWS default chain
	OllamaURL  string // Ollama only
}

// New builds the provider named by s.Provider.
func New(ctx context.Context, s Settings) (Provider, error) {
	switch s.Provider {
	case ProviderTitan, "":
		opts := []TitanOption{WithTitanNormalize(s.Normalize)}
		if s.Model != "" {
			opts = append(opts, WithTitanModel(s.Model))
		}
		if s.Dimensions != 0 {
			opts = append(opts, WithTitanDimensions(s.Dimensions))
		}
		return NewTitanProviderFromConfig(ctx, s.Region, opts...)
	case ProviderOllama:
		var opts []OllamaOption
		if s.OllamaURL != "" {
			opts = append(opts, WithBaseURL(s.OllamaURL))
		}
		if s.Model != "" {
			opts = append(opts, WithModel(s.Model))
		}
		if s.Dimensions != 0 {
			opts = append(opts, WithDimensions(s.Dimensions))
		}
		return NewOllamaProvider(opts...), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (valid: %s, %s)", s.Provider, ProviderTitan, ProviderOllama)
	}
}

// checkDimensions verifies a returned vector has the expected length.
func checkDimensions(vector []float64, want int) error {
	if len(vector) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), want)
	}
	return nil
}
