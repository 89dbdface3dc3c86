package matching

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
	"github.com/rawanfarouq/EduRA-sub001/internal/ranking"
	"github.com/rawanfarouq/EduRA-sub001/internal/vector"
)

// RankedTarget is one ranked course with the fields a caller needs to display it.
type RankedTarget struct {
	models.MatchScore
	Title        string                 `json:"title"`
	CategoryName string                 `json:"category_name,omitempty"`
	Breakdown    ranking.BoostBreakdown `json:"boost_breakdown"`
}

// PullResult is the outcome of ranking courses for one CV.
type PullResult struct {
	Items        []RankedTarget   `json:"items"`
	Expertise    models.Expertise `json:"expertise"`
	FallbackUsed bool             `json:"fallback_used"`
	Partial      bool             `json:"partial"`
	Excluded     []*ItemError     `json:"excluded,omitempty"`
}

// RankTargetsForCandidateDocument extracts the text of doc and ranks courses for it.
func (e *Engine) RankTargetsForCandidateDocument(ctx context.Context, doc models.Document, opts ...RunOption) (*PullResult, error) {
	if doc.Empty() {
		return nil, fmt.Errorf("%w: empty document", ErrCandidateUnreadable)
	}
	text := e.text.Extract(doc)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %w: no text in %q", ErrCandidateUnreadable, ErrExtraction, doc.Filename)
	}
	return e.RankTargetsForCandidateText(ctx, text, opts...)
}

// RankTargetsForCandidateText ranks every known course against a CV text. A failed course is
// excluded and reported; a failed CV embedding fails the whole request.
func (e *Engine) RankTargetsForCandidateText(ctx context.Context, text string, opts ...RunOption) (*PullResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCandidateUnreadable
	}
	s := e.settings(opts)
	runCtx, cancel := withBudget(ctx, s.budget)
	defer cancel()

	var (
		exp     models.Expertise
		cvEmbed []float32
	)
	var g errgroup.Group
	g.Go(func() error {
		exp = e.extractExpertise(runCtx, text)
		return nil
	})
	g.Go(func() error {
		v, err := e.embed(runCtx, text)
		if err != nil {
			return fmt.Errorf("%w: candidate: %v", ErrEmbedding, err)
		}
		cvEmbed = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	targets, err := e.repo.ListTargets(runCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}

	type scored struct {
		score     *models.MatchScore
		breakdown ranking.BoostBreakdown
		err       *ItemError
	}
	results := make([]scored, len(targets))
	skipped := forEach(runCtx, len(targets), e.cfg.Workers, func(ctx context.Context, i int) {
		t := targets[i]
		emb, ierr := e.targetEmbedding(ctx, t)
		if ierr != nil {
			results[i].err = ierr
			return
		}
		in := ranking.BoostInput{
			CategoryName: t.CategoryName,
			Expertise:    exp,
			TargetTitle:  t.Title,
			CombinedText: t.ComposedText(),
		}
		b := ranking.Explain(e.cfg.Boosts, in)
		ms := models.NewMatchScore("", t.ID, vector.Cosine(cvEmbed, emb), b.Total)
		results[i] = scored{score: &ms, breakdown: b}
	})

	res := &PullResult{Expertise: exp}
	scores := make([]models.MatchScore, 0, len(targets))
	byID := make(map[string]int, len(targets))
	breakdowns := make(map[string]ranking.BoostBreakdown, len(targets))
	for i, r := range results {
		switch {
		case r.err != nil:
			res.Excluded = append(res.Excluded, r.err)
		case r.score != nil:
			scores = append(scores, *r.score)
			byID[targets[i].ID] = i
			breakdowns[targets[i].ID] = r.breakdown
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	ranked := ranking.Select(scores, e.cfg.Pull)
	res.FallbackUsed = ranked.FallbackUsed
	res.Partial = skipped || budgetExpired(ctx, runCtx)
	res.Items = make([]RankedTarget, 0, len(ranked.Items))
	for _, ms := range ranked.Items {
		t := targets[byID[ms.TargetID]]
		res.Items = append(res.Items, RankedTarget{
			MatchScore:   ms,
			Title:        t.Title,
			CategoryName: t.CategoryName,
			Breakdown:    breakdowns[ms.TargetID],
		})
	}

	e.logger.Info("ranked courses for candidate",
		zap.Int("courses", len(targets)),
		zap.Int("ranked", len(res.Items)),
		zap.Int("excluded", len(res.Excluded)),
		zap.Bool("fallback", res.FallbackUsed),
		zap.Bool("partial", res.Partial),
	)
	return res, nil
}

// targetEmbedding returns the cached embedding of t or computes and caches a fresh one.
func (e *Engine) targetEmbedding(ctx context.Context, t models.TargetItem) ([]float32, *ItemError) {
	if e.usable(t.Embedding) {
		return t.Embedding, nil
	}
	text := t.ComposedText()
	if text == "" {
		return nil, extractionError(t.ID, fmt.Errorf("course has no text"))
	}
	emb, err := e.embed(ctx, text)
	if err != nil {
		e.logger.Warn("excluding course", zap.String("course_id", t.ID), zap.Error(err))
		return nil, embeddingError(t.ID, err)
	}
	if err := e.repo.SaveTargetEmbedding(ctx, t.ID, emb); err != nil {
		e.logger.Warn("failed to cache course embedding", zap.String("course_id", t.ID), zap.Error(err))
	}
	return emb, nil
}
