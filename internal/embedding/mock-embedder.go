package embedding

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests and offline runs. The same text always
// gets the same unit-length vector.
type MockEmbedder struct {
	dimensions int
	calls      atomic.Int64
}

// NewMockEmbedder returns a mock producing vectors of the given dimension (384 when <= 0).
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a vector derived from the hash of text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.calls.Add(1)
	h := HashString(text)
	emb := make([]float32, e.dimensions)
	for i := range emb {
		emb[i] = float32(math.Sin(float64(h%100003)*float64(i+1))*0.1 + 0.01)
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *MockEmbedder) Close() error {
	return nil
}

// Calls returns how many times Embed has been called.
func (e *MockEmbedder) Calls() int64 {
	return e.calls.Load()
}
