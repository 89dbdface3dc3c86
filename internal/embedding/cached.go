package embedding

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// DefaultCallTimeout bounds a shared backend call when no call timeout is configured.
const DefaultCallTimeout = 2 * time.Minute

// Cached clips text to the budget and makes at most one backend call per distinct clipped
// text: concurrent requests share one in-flight call and successes are kept in an LRU.
// Failures are not cached.
//
// A shared call is detached from its callers' cancellation and bounded by its own timeout.
// Each caller stops waiting when its own context is done.
type Cached struct {
	inner   Embedder
	cache   *LRU
	group   singleflight.Group
	budget  int
	timeout time.Duration
	calls   atomic.Int64
}

// CachedOption configures a Cached embedder.
type CachedOption func(*Cached)

// WithCallTimeout bounds each shared backend call. Zero or less keeps DefaultCallTimeout.
func WithCallTimeout(d time.Duration) CachedOption {
	return func(c *Cached) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewCached wraps inner. budget is the maximum number of runes sent to the backend.
func NewCached(inner Embedder, cacheSize, budget int, opts ...CachedOption) *Cached {
	c := &Cached{
		inner:   inner,
		cache:   NewLRU(cacheSize),
		budget:  budget,
		timeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embed returns the embedding of text clipped to the budget.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	text = utils.Clip(text, c.budget)
	key := Key(text)
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		c.calls.Add(1)
		v, err := c.inner.Embed(callCtx, text)
		if err != nil {
			return nil, err
		}
		if err := checkDimension(v, c.inner.Dimensions()); err != nil {
			return nil, err
		}
		c.cache.Set(key, v)
		return v, nil
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]float32), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Dimensions returns the backend dimension.
func (c *Cached) Dimensions() int {
	return c.inner.Dimensions()
}

// Close closes the backend.
func (c *Cached) Close() error {
	return c.inner.Close()
}

// BackendCalls returns how many times the backend has been called.
func (c *Cached) BackendCalls() int64 {
	return c.calls.Load()
}
