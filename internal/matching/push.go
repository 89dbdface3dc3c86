package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/internal/dispatch"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
	"github.com/rawanfarouq/EduRA-sub001/internal/ranking"
	"github.com/rawanfarouq/EduRA-sub001/internal/vector"
)

// PushResult is the outcome of notifying tutors about one course.
type PushResult struct {
	TargetID string `json:"target_id"`
	// NotifiedCount is the number of notification records this run created.
	NotifiedCount int                 `json:"notified_count"`
	Qualified     int                 `json:"qualified"`
	Duplicates    int                 `json:"duplicates"`
	EmailsSent    int                 `json:"emails_sent"`
	EmailFailures int                 `json:"email_failures"`
	Matches       []models.MatchScore `json:"matches"`
	Excluded      []*ItemError        `json:"excluded,omitempty"`
	Partial       bool                `json:"partial"`
	DryRun        bool                `json:"dry_run,omitempty"`
}

// NotifyCandidatesForNewTarget scores every tutor against target and notifies those whose
// final score reaches the push threshold. A tutor whose CV cannot be read or embedded is
// excluded from scoring, records and email. The run fails only when the course itself cannot
// be embedded, the tutors cannot be listed, or the notification records cannot be written.
func (e *Engine) NotifyCandidatesForNewTarget(ctx context.Context, target models.TargetItem, opts ...RunOption) (*PushResult, error) {
	s := e.settings(opts)
	runCtx, cancel := withBudget(ctx, s.budget)
	defer cancel()

	log := e.logger.With(zap.String("course_id", target.ID))

	targetEmb, err := e.pushTargetEmbedding(runCtx, target)
	if err != nil {
		return nil, err
	}

	candidates, err := e.repo.ListCandidates(runCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}

	type scored struct {
		score *models.MatchScore
		err   *ItemError
	}
	results := make([]scored, len(candidates))
	skipped := forEach(runCtx, len(candidates), e.cfg.Workers, func(ctx context.Context, i int) {
		c := &candidates[i]
		if ierr := e.deriveCandidate(ctx, c); ierr != nil {
			results[i].err = ierr
			return
		}
		boost := ranking.Boost(e.cfg.Boosts, ranking.BoostInput{
			CategoryName: target.CategoryName,
			Expertise:    c.Expertise,
			TargetTitle:  target.Title,
			CombinedText: target.ComposedText(),
		})
		ms := models.NewMatchScore(c.ID, target.ID, vector.Cosine(c.Embedding, targetEmb), boost)
		results[i].score = &ms
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res := &PushResult{TargetID: target.ID, DryRun: s.dryRun || e.dispatcher == nil}
	res.Partial = skipped || budgetExpired(ctx, runCtx)

	scores := make([]models.MatchScore, 0, len(candidates))
	byID := make(map[string]int, len(candidates))
	for i, r := range results {
		switch {
		case r.err != nil:
			res.Excluded = append(res.Excluded, r.err)
		case r.score != nil:
			scores = append(scores, *r.score)
			byID[candidates[i].ID] = i
		}
	}

	ranked := ranking.Select(scores, e.cfg.Push)
	res.Qualified = len(ranked.Items)
	res.Matches = ranked.Items

	if res.DryRun || len(ranked.Items) == 0 {
		log.Info("push run finished without dispatch",
			zap.Int("qualified", res.Qualified),
			zap.Int("excluded", len(res.Excluded)),
			zap.Bool("dry_run", res.DryRun))
		return res, nil
	}

	matches := make([]dispatch.Match, 0, len(ranked.Items))
	for _, ms := range ranked.Items {
		matches = append(matches, dispatch.Match{Candidate: candidates[byID[ms.CandidateID]], Score: ms})
	}
	// Dispatch runs on the caller's context: an expired budget stops scoring, not delivery.
	report, err := e.dispatcher.Dispatch(ctx, target, matches)
	if err != nil {
		return nil, err
	}
	res.NotifiedCount = report.Created
	res.Duplicates = report.Duplicates
	res.EmailsSent = report.EmailsSent
	res.EmailFailures = report.EmailFailures

	log.Info("push run finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("qualified", res.Qualified),
		zap.Int("notified", res.NotifiedCount),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("emails_sent", res.EmailsSent),
		zap.Int("email_failures", res.EmailFailures),
		zap.Int("excluded", len(res.Excluded)),
		zap.Bool("partial", res.Partial),
	)
	return res, nil
}

// pushTargetEmbedding embeds the course exactly once per run, reusing a cached embedding.
func (e *Engine) pushTargetEmbedding(ctx context.Context, target models.TargetItem) ([]float32, error) {
	if e.usable(target.Embedding) {
		return target.Embedding, nil
	}
	text := target.ComposedText()
	if text == "" {
		return nil, fmt.Errorf("%w: course %s has no text", ErrTargetEmbedding, target.ID)
	}
	emb, err := e.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: course %s: %v", ErrTargetEmbedding, target.ID, err)
	}
	if err := e.repo.SaveTargetEmbedding(ctx, target.ID, emb); err != nil {
		e.logger.Warn("failed to cache course embedding", zap.String("course_id", target.ID), zap.Error(err))
	}
	return emb, nil
}

// deriveCandidate fills c.Expertise and c.Embedding from the cache or from the CV.
func (e *Engine) deriveCandidate(ctx context.Context, c *models.CandidateProfile) *ItemError {
	if c.HasDerived() && e.usable(c.Embedding) {
		return nil
	}
	text := strings.TrimSpace(c.Text)
	if text == "" && !c.Document.Empty() {
		text = strings.TrimSpace(e.text.Extract(*c.Document))
	}
	if text == "" {
		e.logger.Warn("excluding tutor with unreadable CV", zap.String("tutor_id", c.ID))
		return extractionError(c.ID, errors.New("no CV text"))
	}

	exp := e.extractExpertise(ctx, text)
	emb, err := e.embed(ctx, text)
	if err != nil {
		e.logger.Warn("excluding tutor", zap.String("tutor_id", c.ID), zap.Error(err))
		return embeddingError(c.ID, err)
	}
	c.Expertise = exp
	c.Embedding = emb
	if err := e.repo.SaveCandidateDerived(ctx, c.ID, exp, emb); err != nil {
		e.logger.Warn("failed to cache tutor derived data", zap.String("tutor_id", c.ID), zap.Error(err))
	}
	return nil
}
