// File: internal/waiter/waiter.go
// Description: Waits for an external analysis task to reach its terminal
// state. The waiter is a pure observer of the detector's task registry; it
// never writes task state.
package waiter

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

// Waiter polls a status provider until a task completes or a deadline
// expires.
type Waiter struct {
	provider schemas.StatusProvider
	logger   *zap.Logger
}

// New creates a Waiter bound to the given status provider.
func New(provider schemas.StatusProvider, logger *zap.Logger) *Waiter {
	return &Waiter{
		provider: provider,
		logger:   logger.Named("waiter"),
	}
}

// Await polls the task's status every interval until it reports completed,
// returning its detection result. Once maxWait has elapsed it returns
// schemas.ErrTimeout and the caller must not resume polling; partial results
// are discarded.
//
// A "failed" status, a missing record and a transient provider error are all
// treated as "not yet complete" — they keep the loop alive and are only ever
// observable as an eventual timeout. Cancelling the context aborts the loop
// immediately with the context's error.
func (w *Waiter) Await(ctx context.Context, taskID string, maxWait, interval time.Duration) (*schemas.DetectionResult, error) {
	logger := w.logger.With(zap.String("task_id", taskID))

	start := time.Now()
	timer := time.NewTimer(maxWait)
	defer timer.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// The wait window contains floor(maxWait/interval) poll points. When the
	// deadline lands exactly on a tick the runtime delivers the timer first,
	// so the timer branch tops up the final in-window poll before reporting
	// the timeout.
	maxPolls := int(maxWait / interval)
	polls := 0

	for {
		select {
		case <-ctx.Done():
			logger.Info("Completion wait cancelled", zap.Error(ctx.Err()))
			return nil, ctx.Err()

		case <-timer.C:
			if polls < maxPolls {
				if result, done := w.poll(ctx, logger, taskID, start); done {
					return result, nil
				}
			}
			logger.Warn("Completion wait timed out", zap.Duration("max_wait", maxWait))
			return nil, schemas.ErrTimeout

		case <-ticker.C:
			if polls >= maxPolls {
				// In-window polls are spent; only the deadline ends the wait.
				continue
			}
			polls++
			if result, done := w.poll(ctx, logger, taskID, start); done {
				return result, nil
			}
		}
	}
}

// poll queries the provider once. It reports done only on a completed task;
// missing records, provider errors and non-terminal statuses keep the loop
// alive.
func (w *Waiter) poll(ctx context.Context, logger *zap.Logger, taskID string, start time.Time) (*schemas.DetectionResult, bool) {
	task, err := w.provider.TaskStatus(ctx, taskID)
	switch {
	case errors.Is(err, schemas.ErrNotFound):
		// No record yet; the detector may not have registered the task.
		logger.Debug("Task record not found; continuing to poll")
	case err != nil:
		// Transient provider failures never surface from the wait loop; the
		// deadline bounds them.
		logger.Warn("Status poll failed; continuing to poll", zap.Error(err))
	case task.Status == schemas.TaskCompleted:
		logger.Info("Task completed", zap.Duration("waited", time.Since(start)))
		if task.Result == nil {
			return &schemas.DetectionResult{}, true
		}
		return task.Result, true
	default:
		logger.Debug("Task not yet complete", zap.String("status", string(task.Status)))
	}
	return nil, false
}
