// Package llm wraps the Gemini API for the two calls the matcher needs: structured JSON
// generation and text embedding.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultGenerationModel = "gemini-2.5-flash"
	DefaultEmbeddingModel  = "text-embedding-004"
)

// ErrEmptyResponse is returned when the provider answered without any usable content.
var ErrEmptyResponse = errors.New("gemini returned an empty response")

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	APIKey          string
	GenerationModel string
	EmbeddingModel  string
	Temperature     float32
}

// Client talks to the Gemini API backend.
type Client struct {
	client          *genai.Client
	generationModel string
	embeddingModel  string
	temperature     float32
}

// NewClient creates a Gemini client. The API key is required.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	c := &Client{
		client:          client,
		generationModel: strings.TrimSpace(opts.GenerationModel),
		embeddingModel:  strings.TrimSpace(opts.EmbeddingModel),
		temperature:     opts.Temperature,
	}
	if c.generationModel == "" {
		c.generationModel = DefaultGenerationModel
	}
	if c.embeddingModel == "" {
		c.embeddingModel = DefaultEmbeddingModel
	}
	return c, nil
}

// GenerateJSON sends prompt and asks for an application/json response. The returned text is
// exactly what the model produced; callers validate it.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(c.temperature),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.generationModel, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			b.WriteString(part.Text)
		}
		// Only the first candidate with content is used.
		if b.Len() > 0 {
			break
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// Embed returns the embedding of text with the requested dimension. dimensions <= 0 leaves
// the model's native size.
func (c *Client) Embed(ctx context.Context, text string, dimensions int) ([]float32, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	var cfg *genai.EmbedContentConfig
	if dimensions > 0 {
		cfg = &genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(int32(dimensions))}
	}
	resp, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp.Embeddings[0].Values, nil
}

// GenerationModel returns the model used by GenerateJSON.
func (c *Client) GenerationModel() string {
	if c == nil {
		return ""
	}
	return c.generationModel
}

// EmbeddingModel returns the model used by Embed.
func (c *Client) EmbeddingModel() string {
	if c == nil {
		return ""
	}
	return c.embeddingModel
}
