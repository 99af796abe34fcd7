// File: internal/detector/fake.go
package detector

import (
	"context"
	"fmt"
	"sync"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

// Fake is an in-memory schemas.Detector for tests and offline use. Task
// lifecycle transitions are driven explicitly through Complete and Fail.
type Fake struct {
	mu    sync.Mutex
	tasks map[string]*schemas.Task
	rules map[string]string
}

// NewFake returns an empty fake detector.
func NewFake() *Fake {
	return &Fake{
		tasks: make(map[string]*schemas.Task),
		rules: make(map[string]string),
	}
}

// Submit implements schemas.Detector. The task starts in the pending state.
func (f *Fake) Submit(_ context.Context, sub schemas.Submission) (string, error) {
	if sub.TaskID == "" {
		return "", fmt.Errorf("task id must not be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[sub.TaskID] = &schemas.Task{ID: sub.TaskID, Status: schemas.TaskPending}
	return sub.TaskID, nil
}

// TaskStatus implements schemas.StatusProvider.
func (f *Fake) TaskStatus(_ context.Context, taskID string) (*schemas.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, schemas.ErrNotFound)
	}
	copied := *task
	return &copied, nil
}

// DetectionRules implements schemas.Detector.
func (f *Fake) DetectionRules(_ context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rules := make(map[string]string, len(f.rules))
	for id, desc := range f.rules {
		rules[id] = desc
	}
	return rules, nil
}

// SetRules replaces the advertised rule set.
func (f *Fake) SetRules(rules map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = rules
}

// Complete marks a task completed with the given result. Unknown ids are
// created so tests can script a provider without a prior Submit.
func (f *Fake) Complete(taskID string, result *schemas.DetectionResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[taskID] = &schemas.Task{ID: taskID, Status: schemas.TaskCompleted, Result: result}
}

// Fail marks a task failed.
func (f *Fake) Fail(taskID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[taskID] = &schemas.Task{ID: taskID, Status: schemas.TaskFailed}
}

// Ping always succeeds.
func (f *Fake) Ping(context.Context) error { return nil }
