// Package embed wraps the external embedding provider behind a small
// synchronous contract: text in, fixed-dimension vector out. Provider
// failures surface as ErrUnavailable; callers decide whether that is
// fatal (similarity queries) or absorbed (item creation).
package embed

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// ErrUnavailable marks an embedding provider failure.
var ErrUnavailable = errors.New("embedding provider unavailable")

// Service converts free text into a fixed-length vector.
type Service interface {
	// Embed generates a vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector dimension.
	Dimensions() int
}

// Config holds the provider connection settings. Any OpenAI-compatible
// endpoint works (openai, siliconflow, ollama, ...).
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("embedding model is required")
	}
	if c.Dimensions <= 0 {
		return errors.New("embedding dimensions must be positive")
	}
	return nil
}

type service struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewService creates a Service backed by an OpenAI-compatible provider.
func NewService(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding config: %w", err)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &service{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

func (s *service) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("no text provided for embedding")
	}

	req := openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(s.model),
		Dimensions: s.dimensions,
	}

	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", ErrUnavailable)
	}

	vector := resp.Data[0].Embedding
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: provider returned %d dimensions, expected %d",
			ErrUnavailable, len(vector), s.dimensions)
	}
	return vector, nil
}

func (s *service) Dimensions() int {
	return s.dimensions
}
