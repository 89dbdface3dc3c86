// Package embedding turns text into fixed-dimension vectors. Backends are Gemini, a local
// ONNX model and a deterministic mock; Cached wraps any of them.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}

// ErrDimension is returned when a backend produced a vector of the wrong size.
var ErrDimension = errors.New("embedding dimension mismatch")

func checkDimension(v []float32, want int) error {
	if want > 0 && len(v) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimension, len(v), want)
	}
	return nil
}
