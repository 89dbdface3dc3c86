package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Options{APIKey: "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(context.Background(), Options{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultGenerationModel, c.GenerationModel())
	assert.Equal(t, DefaultEmbeddingModel, c.EmbeddingModel())

	c, err = NewClient(context.Background(), Options{APIKey: "k", GenerationModel: "g", EmbeddingModel: "e"})
	require.NoError(t, err)
	assert.Equal(t, "g", c.GenerationModel())
	assert.Equal(t, "e", c.EmbeddingModel())
}

func TestNilClient(t *testing.T) {
	var c *Client
	_, err := c.GenerateJSON(context.Background(), "hi")
	assert.Error(t, err)
	_, err = c.Embed(context.Background(), "hi", 8)
	assert.Error(t, err)
	assert.Empty(t, c.GenerationModel())
}

func TestGenerateJSON_EmptyPrompt(t *testing.T) {
	c, err := NewClient(context.Background(), Options{APIKey: "k"})
	require.NoError(t, err)
	_, err = c.GenerateJSON(context.Background(), "  ")
	assert.Error(t, err)
}
