package matching

import (
	"context"

	"github.com/rawanfarouq/EduRA-sub001/internal/dispatch"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

// TextExtractor converts a stored document to plain text, or "" when it cannot.
type TextExtractor interface {
	Extract(doc models.Document) string
}

// ExpertiseExtractor returns the structured expertise in text. It never fails; a degraded
// extraction is the empty expertise.
type ExpertiseExtractor interface {
	Extract(ctx context.Context, text string) models.Expertise
}

// Embedder returns a fixed-dimension embedding for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Repository supplies tutors and courses and caches their derived values.
type Repository interface {
	ListCandidates(ctx context.Context) ([]models.CandidateProfile, error)
	ListTargets(ctx context.Context) ([]models.TargetItem, error)
	SaveCandidateDerived(ctx context.Context, id string, exp models.Expertise, embedding []float32) error
	SaveTargetEmbedding(ctx context.Context, id string, embedding []float32) error
}

// Dispatcher fans qualified push matches out as notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, target models.TargetItem, matches []dispatch.Match) (*dispatch.Report, error)
}
