// Package jobs runs background work in-process and lets callers poll or await its outcome.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Done reports whether the job has finished.
func (s Status) Done() bool {
	return s == StatusSucceeded || s == StatusFailed
}

var (
	ErrNotFound = errors.New("job not found")
	ErrClosed   = errors.New("job tracker is shut down")
)

const defaultRetain = 1000

// Job is a snapshot of one submitted unit of work.
type Job struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Status     Status     `json:"status"`
	Result     any        `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Func is the work a job runs. ctx is cancelled when the tracker shuts down.
type Func func(ctx context.Context) (any, error)

type entry struct {
	job  Job
	done chan struct{}
}

// Tracker owns the goroutines of submitted jobs. Jobs run on the tracker's context rather
// than the submitter's, so they outlive the request that started them.
type Tracker struct {
	mu       sync.Mutex
	jobs     map[string]*entry
	finished []string
	retain   int
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithRetention bounds how many finished jobs stay queryable. Oldest finished jobs go first.
func WithRetention(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.retain = n
		}
	}
}

// NewTracker returns a running tracker.
func NewTracker(opts ...Option) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		jobs:   make(map[string]*entry),
		retain: defaultRetain,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = utils.OrNop(t.logger)
	return t
}

// Submit starts fn in the background and returns the job id.
func (t *Tracker) Submit(kind string, fn Func) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return "", ErrClosed
	}
	e := &entry{
		job:  Job{ID: uuid.NewString(), Kind: kind, Status: StatusPending, CreatedAt: time.Now().UTC()},
		done: make(chan struct{}),
	}
	t.jobs[e.job.ID] = e
	t.wg.Add(1)
	go t.run(e, fn)
	return e.job.ID, nil
}

func (t *Tracker) run(e *entry, fn Func) {
	defer t.wg.Done()

	t.mu.Lock()
	started := time.Now().UTC()
	e.job.Status = StatusRunning
	e.job.StartedAt = &started
	id, kind := e.job.ID, e.job.Kind
	t.mu.Unlock()

	log := t.logger.With(zap.String("job_id", id), zap.String("kind", kind))
	log.Debug("job started")

	result, err := call(t.ctx, fn)

	t.mu.Lock()
	finished := time.Now().UTC()
	e.job.FinishedAt = &finished
	if err != nil {
		e.job.Status = StatusFailed
		e.job.Error = err.Error()
	} else {
		e.job.Status = StatusSucceeded
		e.job.Result = result
	}
	t.finished = append(t.finished, id)
	t.evictLocked()
	t.mu.Unlock()
	close(e.done)

	if err != nil {
		log.Warn("job failed", zap.Error(err), zap.Duration("took", finished.Sub(started)))
		return
	}
	log.Info("job finished", zap.Duration("took", finished.Sub(started)))
}

func call(ctx context.Context, fn Func) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func (t *Tracker) evictLocked() {
	for len(t.finished) > t.retain {
		delete(t.jobs, t.finished[0])
		t.finished = t.finished[1:]
	}
}

// Get returns a snapshot of the job.
func (t *Tracker) Get(id string) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return e.job, nil
}

// Wait blocks until the job finishes or ctx is done and returns the latest snapshot.
func (t *Tracker) Wait(ctx context.Context, id string) (Job, error) {
	t.mu.Lock()
	e, ok := t.jobs[id]
	t.mu.Unlock()
	if !ok {
		return Job{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	select {
	case <-e.done:
	case <-ctx.Done():
		job, _ := t.Get(id)
		return job, ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return e.job, nil
}

// Counts returns the number of known jobs per status.
func (t *Tracker) Counts() map[Status]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[Status]int, 4)
	for _, e := range t.jobs {
		out[e.job.Status]++
	}
	return out
}

// Shutdown rejects new jobs and waits for running ones. When ctx ends first, running jobs
// are cancelled and ctx's error is returned.
func (t *Tracker) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		t.cancel()
		return nil
	case <-ctx.Done():
		t.cancel()
		<-done
		return ctx.Err()
	}
}
