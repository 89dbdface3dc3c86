package matching

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rawanfarouq/EduRA-sub001/internal/dispatch"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

type fakeRepo struct {
	mu          sync.Mutex
	candidates  []models.CandidateProfile
	targets     []models.TargetItem
	derived     map[string][]float32
	targetSaves map[string]int
	listErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{derived: map[string][]float32{}, targetSaves: map[string]int{}}
}

func (r *fakeRepo) ListCandidates(context.Context) ([]models.CandidateProfile, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.CandidateProfile, len(r.candidates))
	copy(out, r.candidates)
	return out, nil
}

func (r *fakeRepo) ListTargets(context.Context) ([]models.TargetItem, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.TargetItem, len(r.targets))
	copy(out, r.targets)
	return out, nil
}

func (r *fakeRepo) SaveCandidateDerived(_ context.Context, id string, _ models.Expertise, emb []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.derived[id] = emb
	return nil
}

func (r *fakeRepo) SaveTargetEmbedding(_ context.Context, id string, _ []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targetSaves[id]++
	return nil
}

// plainText treats document content as the text, except for the "unreadable" marker.
type plainText struct{}

func (plainText) Extract(doc models.Document) string {
	if string(doc.Content) == "unreadable" {
		return ""
	}
	return string(doc.Content)
}

type fixedExpertise map[string]models.Expertise

func (f fixedExpertise) Extract(_ context.Context, text string) models.Expertise {
	if e, ok := f[text]; ok {
		return e
	}
	return models.EmptyExpertise()
}

type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	delays  map[string]time.Duration
	calls   map[string]int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		vectors: map[string][]float32{},
		delays:  map[string]time.Duration{},
		calls:   map[string]int{},
	}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls[text]++
	v, ok := f.vectors[text]
	d := f.delays[text]
	f.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, errors.New("embedding backend unavailable")
	}
	return v, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

func (f *fakeEmbedder) callsFor(text string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[text]
}

type recordingDispatcher struct {
	mu      sync.Mutex
	matches []dispatch.Match
	err     error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, _ models.TargetItem, matches []dispatch.Match) (*dispatch.Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	d.matches = append(d.matches, matches...)
	sent := 0
	for _, m := range matches {
		if m.Candidate.Deliverable() {
			sent++
		}
	}
	return &dispatch.Report{Created: len(matches), EmailsSent: sent}, nil
}

func (d *recordingDispatcher) candidateIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.matches))
	for _, m := range d.matches {
		ids = append(ids, m.Candidate.ID)
	}
	return ids
}
