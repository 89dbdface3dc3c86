package embedding

import (
	"fmt"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderONNX   = "onnx"
	ProviderMock   = "mock"
)

// Options selects and sizes an embedding backend.
type Options struct {
	Provider   string
	Dimensions int
	ModelPath  string
	MaxTokens  int
	CacheSize  int
	// TextBudget is the maximum number of runes embedded per text.
	TextBudget int
	// CallTimeout bounds one backend call shared by concurrent callers.
	CallTimeout time.Duration
}

// New builds the configured backend wrapped in a Cached embedder. client is only used by the
// gemini provider.
func New(opts Options, client EmbedClient) (*Cached, error) {
	var (
		inner Embedder
		err   error
	)
	switch opts.Provider {
	case ProviderGemini, "":
		inner, err = NewGeminiEmbedder(client, opts.Dimensions)
	case ProviderONNX:
		inner, err = NewONNXEmbedder(opts.ModelPath, opts.Dimensions, opts.MaxTokens)
	case ProviderMock:
		inner = NewMockEmbedder(opts.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s embedder: %w", opts.Provider, err)
	}
	return NewCached(inner, opts.CacheSize, opts.TextBudget, WithCallTimeout(opts.CallTimeout)), nil
}
