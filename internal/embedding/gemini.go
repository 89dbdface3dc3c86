package embedding

import (
	"context"
	"errors"
)

// EmbedClient is the provider call GeminiEmbedder needs; *llm.Client implements it.
type EmbedClient interface {
	Embed(ctx context.Context, text string, dimensions int) ([]float32, error)
}

// GeminiEmbedder embeds text with the Gemini embedding API.
type GeminiEmbedder struct {
	client     EmbedClient
	dimensions int
}

// NewGeminiEmbedder returns an embedder asking the provider for vectors of the given dimension.
func NewGeminiEmbedder(client EmbedClient, dimensions int) (*GeminiEmbedder, error) {
	if client == nil {
		return nil, errors.New("gemini embedder needs a client")
	}
	if dimensions <= 0 {
		return nil, errors.New("gemini embedder needs a positive dimension")
	}
	return &GeminiEmbedder{client: client, dimensions: dimensions}, nil
}

// Embed calls the provider once.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := e.client.Embed(ctx, text, e.dimensions)
	if err != nil {
		return nil, err
	}
	if err := checkDimension(v, e.dimensions); err != nil {
		return nil, err
	}
	return v, nil
}

// Dimensions returns the configured dimension.
func (e *GeminiEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the client is owned by the caller.
func (e *GeminiEmbedder) Close() error {
	return nil
}
