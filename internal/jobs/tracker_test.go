package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_SubmitAndWait(t *testing.T) {
	tr := NewTracker()
	defer tr.Shutdown(context.Background())

	id, err := tr.Submit("push", func(context.Context) (any, error) { return 42, nil })
	require.NoError(t, err)

	job, err := tr.Wait(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, job.Status)
	assert.Equal(t, 42, job.Result)
	assert.Equal(t, "push", job.Kind)
	require.NotNil(t, job.FinishedAt)
	assert.True(t, job.Status.Done())
}

func TestTracker_FailureAndPanic(t *testing.T) {
	tr := NewTracker()
	defer tr.Shutdown(context.Background())

	failID, _ := tr.Submit("push", func(context.Context) (any, error) { return nil, errors.New("boom") })
	panicID, _ := tr.Submit("push", func(context.Context) (any, error) { panic("bad state") })

	job, err := tr.Wait(context.Background(), failID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Equal(t, "boom", job.Error)

	job, err = tr.Wait(context.Background(), panicID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Contains(t, job.Error, "bad state")
}

func TestTracker_WaitTimesOut(t *testing.T) {
	tr := NewTracker()
	release := make(chan struct{})
	id, _ := tr.Submit("slow", func(context.Context) (any, error) {
		<-release
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	job, err := tr.Wait(ctx, id)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, job.Status.Done())

	close(release)
	require.NoError(t, tr.Shutdown(context.Background()))
}

func TestTracker_UnknownJob(t *testing.T) {
	tr := NewTracker()
	_, err := tr.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tr.Wait(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTracker_ShutdownCancelsAndRejects(t *testing.T) {
	tr := NewTracker()
	id, _ := tr.Submit("blocked", func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tr.Shutdown(ctx), context.DeadlineExceeded)

	job, err := tr.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, job.Status)

	_, err = tr.Submit("late", func(context.Context) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTracker_Retention(t *testing.T) {
	tr := NewTracker(WithRetention(2))
	defer tr.Shutdown(context.Background())

	var ids []string
	for i := 0; i < 3; i++ {
		id, _ := tr.Submit("push", func(context.Context) (any, error) { return nil, nil })
		_, err := tr.Wait(context.Background(), id)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := tr.Get(ids[0])
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tr.Get(ids[2])
	assert.NoError(t, err)
	assert.Equal(t, 2, tr.Counts()[StatusSucceeded])
}
