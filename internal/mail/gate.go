package mail

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Gate serialises sends and spaces their starts at least interval apart. It is safe for
// concurrent use; callers block until their turn.
type Gate struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewGate returns a gate with the given minimum interval. interval <= 0 only serialises.
func NewGate(interval time.Duration) *Gate {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Gate{limiter: rate.NewLimiter(limit, 1)}
}

// Do waits for the gate and runs send while holding it. If ctx ends first, send is not run
// and the context error is returned.
func (g *Gate) Do(ctx context.Context, send func(context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return send(ctx)
}
