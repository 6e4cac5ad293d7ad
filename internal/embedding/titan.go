package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	// DefaultTitanModel is the Amazon Titan Text Embeddings v2 model ID.
	DefaultTitanModel = "amazon.titan-embed-text-v2:0"

	// DefaultTitanDimensions is the largest output size Titan v2 supports.
	DefaultTitanDimensions = 1024

	// contentTypeJSON is used for both the request body and the accepted response.
	contentTypeJSON = "application/json"
)

// TitanDimensions lists the output sizes Titan v2 accepts.
var TitanDimensions = []int{256, 512, 1024}

// InvokeModelAPI is the subset of the Bedrock runtime client used here.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// TitanProvider generates embeddings with Amazon Titan on Bedrock.
type TitanProvider struct {
	client     InvokeModelAPI
	model      string
	dimensions int
	normalize  bool
}

// TitanOption configures a TitanProvider.
type TitanOption func(*TitanProvider)

// WithTitanModel sets the Bedrock model ID.
func WithTitanModel(model string) TitanOption {
	return func(p *TitanProvider) {
		p.model = model
	}
}

// WithTitanDimensions sets the requested vector size.
func WithTitanDimensions(dims int) TitanOption {
	return func(p *TitanProvider) {
		p.dimensions = dims
	}
}

// WithTitanNormalize controls whether Titan returns unit-length vectors.
func WithTitanNormalize(normalize bool) TitanOption {
	return func(p *TitanProvider) {
		p.normalize = normalize
	}
}

// NewTitanProvider creates a Titan provider backed by the given client.
func NewTitanProvider(client InvokeModelAPI, opts ...TitanOption) *TitanProvider {
	p := &TitanProvider{
		client:     client,
		model:      DefaultTitanModel,
		dimensions: DefaultTitanDimensions,
		normalize:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewTitanProviderFromConfig loads AWS credentials from the default chain
// and creates a Titan provider. An empty region defers to the environment
// and shared config.
func NewTitanProviderFromConfig(ctx context.Context, region string, opts ...TitanOption) (*TitanProvider, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	p := NewTitanProvider(bedrockruntime.NewFromConfig(cfg), opts...)
	if err := ValidateTitanDimensions(p.dimensions); err != nil {
		return nil, err
	}
	return p, nil
}

// ValidateTitanDimensions checks dims is a size Titan v2 accepts.
func ValidateTitanDimensions(dims int) error {
	if !slices.Contains(TitanDimensions, dims) {
		return fmt.Errorf("invalid titan dimensions %d (valid: %v)", dims, TitanDimensions)
	}
	return nil
}

// Embed generates an embedding for the given text.
func (p *TitanProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	if err := ValidateTitanDimensions(p.dimensions); err != nil {
		return Embedding{}, err
	}

	body, err := json.Marshal(titanEmbedRequest{
		InputText:  text,
		Dimensions: p.dimensions,
		Normalize:  p.normalize,
	})
	if err != nil {
		return Embedding{}, fmt.Errorf("marshaling request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		Body:        body,
		ModelId:     aws.String(p.model),
		Accept:      aws.String(contentTypeJSON),
		ContentType: aws.String(contentTypeJSON),
	})
	if err != nil {
		return Embedding{}, fmt.Errorf("invoking %s: %w", p.model, err)
	}

	var result titanEmbedResponse
	if err := json.Unmarshal(out.Body, &result); err != nil {
		return Embedding{}, fmt.Errorf("decoding response: %w", err)
	}

	if err := checkDimensions(result.Embedding, p.dimensions); err != nil {
		return Embedding{}, err
	}

	return Embedding{Vector: result.Embedding}, nil
}

// ModelName returns the Bedrock model ID.
func (p *TitanProvider) ModelName() string {
	return p.model
}

// Dimensions returns the requested vector dimensions.
func (p *TitanProvider) Dimensions() int {
	return p.dimensions
}

// titanEmbedRequest is the InvokeModel body for Titan text embeddings.
type titanEmbedRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions"`
	Normalize  bool   `json:"normalize"`
}

// titanEmbedResponse is the InvokeModel response body.
type titanEmbedResponse struct {
	Embedding           []float64 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}
