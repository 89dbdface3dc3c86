package matching

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrExtraction means no text could be obtained for an item.
	ErrExtraction = errors.New("text extraction failed")
	// ErrEmbedding means the embedding call for an item failed or timed out.
	ErrEmbedding = errors.New("embedding failed")
	// ErrCandidateUnreadable is returned by the pull flow when the submitted CV yields no text.
	ErrCandidateUnreadable = errors.New("candidate document is unreadable")
	// ErrTargetEmbedding aborts a push run: without the course embedding nothing can be scored.
	ErrTargetEmbedding = errors.New("target embedding failed")
	// ErrRepository means tutors or courses could not be loaded.
	ErrRepository = errors.New("repository unavailable")
)

// Stage names the step at which an item was excluded.
type Stage string

const (
	StageExtract Stage = "extract"
	StageEmbed   Stage = "embed"
)

// ItemError records why one candidate or target was left out of a run.
type ItemError struct {
	Stage  Stage
	ItemID string
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.ItemID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the error for API responses.
func (e *ItemError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ItemID string `json:"id"`
		Stage  Stage  `json:"stage"`
		Error  string `json:"error"`
	}{e.ItemID, e.Stage, e.Err.Error()})
}

func extractionError(id string, cause error) *ItemError {
	return &ItemError{Stage: StageExtract, ItemID: id, Err: fmt.Errorf("%w: %v", ErrExtraction, cause)}
}

func embeddingError(id string, cause error) *ItemError {
	return &ItemError{Stage: StageEmbed, ItemID: id, Err: fmt.Errorf("%w: %v", ErrEmbedding, cause)}
}
