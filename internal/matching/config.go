package matching

import (
	"time"

	"github.com/rawanfarouq/EduRA-sub001/internal/ranking"
)

// Config holds the tunables of a matching engine.
type Config struct {
	Push   ranking.Policy
	Pull   ranking.Policy
	Boosts ranking.BoostConfig
	// Workers bounds the number of items processed concurrently.
	Workers int
	// CallTimeout bounds each extraction or embedding call. Zero means no per-call limit.
	CallTimeout time.Duration
	// RunBudget is the default run budget. Zero means none.
	RunBudget time.Duration
}

// DefaultConfig returns the default policies, boosts and limits.
func DefaultConfig() Config {
	return Config{
		Push:        ranking.PushPolicy(),
		Pull:        ranking.PullPolicy(),
		Boosts:      ranking.DefaultBoosts(),
		Workers:     8,
		CallTimeout: 30 * time.Second,
	}
}

// RunOption adjusts a single run.
type RunOption func(*runSettings)

type runSettings struct {
	budget time.Duration
	dryRun bool
}

// WithBudget bounds the whole run. When it expires the run returns what was scored so far
// and marks the result partial. d <= 0 removes the default budget.
func WithBudget(d time.Duration) RunOption {
	return func(s *runSettings) { s.budget = d }
}

// DryRun scores and selects recipients without dispatching notifications.
func DryRun() RunOption {
	return func(s *runSettings) { s.dryRun = true }
}
