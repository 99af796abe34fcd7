package waiter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

// scriptedProvider returns a fixed sequence of task states, then repeats the
// final one. It counts how often it was polled.
type scriptedProvider struct {
	polls  atomic.Int64
	states []pollResult
}

type pollResult struct {
	task *schemas.Task
	err  error
}

func (p *scriptedProvider) TaskStatus(ctx context.Context, taskID string) (*schemas.Task, error) {
	n := int(p.polls.Add(1)) - 1
	if n >= len(p.states) {
		n = len(p.states) - 1
	}
	return p.states[n].task, p.states[n].err
}

func running(id string) *schemas.Task {
	return &schemas.Task{ID: id, Status: schemas.TaskRunning}
}

func TestAwaitReturnsResultOnCompletion(t *testing.T) {
	t.Parallel()

	want := &schemas.DetectionResult{TotalIssues: 3}
	provider := &scriptedProvider{states: []pollResult{
		{task: running("t1")},
		{task: &schemas.Task{ID: "t1", Status: schemas.TaskCompleted, Result: want}},
	}}

	w := New(provider, zap.NewNop())
	got, err := w.Await(context.Background(), "t1", time.Second, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.EqualValues(t, 2, provider.polls.Load())
}

// A provider that never completes produces exactly floor(maxWait/interval)
// polls before the timeout, and no polls after it.
func TestAwaitTimesOutAfterBoundedPolls(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{states: []pollResult{{task: running("t1")}}}

	w := New(provider, zap.NewNop())
	// Polls land at 100ms and 200ms; the deadline fires at 250ms.
	_, err := w.Await(context.Background(), "t1", 250*time.Millisecond, 100*time.Millisecond)
	require.ErrorIs(t, err, schemas.ErrTimeout)
	assert.EqualValues(t, 2, provider.polls.Load())
}

// When the deadline lands exactly on a poll point, the poll at the deadline
// still happens: floor(maxWait/interval) polls, the last one at t=maxWait.
func TestAwaitPollsAtDeadlineWhenWaitIsMultipleOfInterval(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{states: []pollResult{{task: running("t1")}}}

	w := New(provider, zap.NewNop())
	// Polls land at 150ms and 300ms; the deadline also fires at 300ms.
	_, err := w.Await(context.Background(), "t1", 300*time.Millisecond, 150*time.Millisecond)
	require.ErrorIs(t, err, schemas.ErrTimeout)
	assert.EqualValues(t, 2, provider.polls.Load())
}

// A task that completes exactly at the deadline poll still yields its result
// rather than a timeout.
func TestAwaitDeadlinePollReturnsCompletedResult(t *testing.T) {
	t.Parallel()

	want := &schemas.DetectionResult{TotalIssues: 4}
	provider := &scriptedProvider{states: []pollResult{
		{task: running("t1")},
		{task: &schemas.Task{ID: "t1", Status: schemas.TaskCompleted, Result: want}},
	}}

	w := New(provider, zap.NewNop())
	got, err := w.Await(context.Background(), "t1", 300*time.Millisecond, 150*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.EqualValues(t, 2, provider.polls.Load())
}

// A "failed" status does not short-circuit the wait; it behaves exactly like
// "not yet complete" and is bounded by the deadline.
func TestAwaitTreatsFailedAsNotYetComplete(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{states: []pollResult{
		{task: &schemas.Task{ID: "t1", Status: schemas.TaskFailed}},
	}}

	w := New(provider, zap.NewNop())
	_, err := w.Await(context.Background(), "t1", 120*time.Millisecond, 25*time.Millisecond)
	require.ErrorIs(t, err, schemas.ErrTimeout)
	assert.Greater(t, provider.polls.Load(), int64(1))
}

func TestAwaitToleratesMissingRecordAndProviderErrors(t *testing.T) {
	t.Parallel()

	want := &schemas.DetectionResult{TotalIssues: 1}
	provider := &scriptedProvider{states: []pollResult{
		{err: schemas.ErrNotFound},
		{err: errors.New("detector unreachable")},
		{task: &schemas.Task{ID: "t1", Status: schemas.TaskCompleted, Result: want}},
	}}

	w := New(provider, zap.NewNop())
	got, err := w.Await(context.Background(), "t1", time.Second, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAwaitCompletedWithoutResultYieldsEmptyAggregate(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{states: []pollResult{
		{task: &schemas.Task{ID: "t1", Status: schemas.TaskCompleted}},
	}}

	w := New(provider, zap.NewNop())
	got, err := w.Await(context.Background(), "t1", time.Second, 10*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Zero(t, got.TotalIssues)
}

func TestAwaitAbortsOnContextCancel(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{states: []pollResult{{task: running("t1")}}}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	w := New(provider, zap.NewNop())
	go func() {
		_, err := w.Await(ctx, "t1", time.Minute, 20*time.Millisecond)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Await did not return after context cancellation")
	}
}
