// Package matching ranks courses for a CV (pull) and tutors for a new course (push).
package matching

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
	"github.com/rawanfarouq/EduRA-sub001/internal/ranking"
	"github.com/rawanfarouq/EduRA-sub001/internal/vector"
	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// Engine wires the extraction, embedding, ranking and dispatch steps together. An Engine is
// safe for concurrent use; runs share nothing but the collaborators they were built with.
type Engine struct {
	repo       Repository
	text       TextExtractor
	expertise  ExpertiseExtractor
	embedder   Embedder
	dispatcher Dispatcher
	cfg        Config
	logger     *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDispatcher sets the push fan-out. Without one every push run behaves as a dry run.
func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) { e.dispatcher = d }
}

// New returns an Engine. Zero-valued policy and worker settings in cfg take their defaults.
func New(repo Repository, text TextExtractor, exp ExpertiseExtractor, embedder Embedder, cfg Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Pull == (ranking.Policy{}) {
		cfg.Pull = def.Pull
	}
	if cfg.Push == (ranking.Policy{}) {
		cfg.Push = def.Push
	}
	cfg.Boosts.ApplyDefaults()

	e := &Engine{
		repo:      repo,
		text:      text,
		expertise: exp,
		embedder:  embedder,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = utils.OrNop(e.logger)
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) settings(opts []RunOption) runSettings {
	s := runSettings{budget: e.cfg.RunBudget}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func withBudget(ctx context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	if budget <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, budget)
}

func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.CallTimeout)
}

// embed runs one embedding call under the per-call timeout.
func (e *Engine) embed(ctx context.Context, text string) ([]float32, error) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	return e.embedder.Embed(callCtx, text)
}

func (e *Engine) extractExpertise(ctx context.Context, text string) models.Expertise {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	return e.expertise.Extract(callCtx, text)
}

// usable reports whether a cached embedding can be compared with fresh ones.
func (e *Engine) usable(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	dim := e.embedder.Dimensions()
	return dim <= 0 || vector.SameDimension(dim, v)
}

// forEach calls fn for every index in [0, n) with at most workers calls in flight. It stops
// scheduling once ctx is done and reports whether any index was skipped.
func forEach(ctx context.Context, n, workers int, fn func(ctx context.Context, i int)) (skipped bool) {
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			skipped = true
			break
		}
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
	return skipped
}

// budgetExpired reports whether runCtx ended on its own while the caller's ctx is still live.
func budgetExpired(parent, runCtx context.Context) bool {
	return parent.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded)
}
