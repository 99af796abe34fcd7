// File: internal/orchestrator/orchestrator.go
// Description: Manages the lifecycle of one analysis run. It is injected with
// fully configured collaborators via interfaces, making it decoupled and testable.

package orchestrator

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/codetriage/api/schemas"
	"github.com/xkilldash9x/codetriage/internal/config"
	"github.com/xkilldash9x/codetriage/internal/reporting"
	"github.com/xkilldash9x/codetriage/internal/waiter"
)

// JobKind names the artifact a background job produces.
type JobKind string

const (
	JobNarrative JobKind = "narrative"
	JobPayload   JobKind = "payload"
)

// Job is the handle for one background report job. Each job owns a derived
// context; cancelling one job never affects its sibling.
type Job struct {
	TaskID string
	Kind   JobKind

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Done is closed when the job has finished, successfully or not.
func (j *Job) Done() <-chan struct{} { return j.done }

// Err reports the job's outcome. Valid only after Done is closed.
func (j *Job) Err() error { return j.err }

// Cancel aborts the job. Safe to call more than once.
func (j *Job) Cancel() { j.cancel() }

// TaskHandle bundles the task id with the two report job handles.
type TaskHandle struct {
	TaskID    string
	Narrative *Job
	Payload   *Job
}

// Orchestrator accepts analysis submissions and schedules the report jobs
// that follow each one.
type Orchestrator struct {
	cfg      *config.Config
	log      *zap.Logger
	detector schemas.Detector
	store    schemas.ArtifactStore
	waiter   *waiter.Waiter

	// now is overridable so tests can pin report timestamps.
	now func() time.Time

	wg sync.WaitGroup

	// jobs holds only in-flight jobs; each job removes itself on completion
	// so a long-running process does not accumulate finished handles.
	mu   sync.Mutex
	jobs map[*Job]struct{}
}

// New creates an Orchestrator with its dependencies provided as interfaces.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	det schemas.Detector,
	store schemas.ArtifactStore,
) (*Orchestrator, error) {
	if cfg == nil || logger == nil || det == nil || store == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	return &Orchestrator{
		cfg:      cfg,
		log:      logger.Named("orchestrator"),
		detector: det,
		store:    store,
		waiter:   waiter.New(det, logger),
		now:      time.Now,
		jobs:     make(map[*Job]struct{}),
	}, nil
}

// NewTaskID assigns a fresh task id.
func NewTaskID() string {
	u := uuid.New()
	return "task_" + hex.EncodeToString(u[:])[:12]
}

// Submit assigns a task id, forwards the request to the detector and
// schedules the two report jobs. The returned handle carries both jobs; each
// runs on its own context and a failure in one leaves the other untouched.
func (o *Orchestrator) Submit(ctx context.Context, filePath string, analysisType schemas.AnalysisType, opts schemas.DetectOptions) (*TaskHandle, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path must not be empty")
	}
	if analysisType != schemas.AnalysisFile && analysisType != schemas.AnalysisProject {
		return nil, fmt.Errorf("invalid analysis type %q", analysisType)
	}

	sub := schemas.Submission{
		TaskID:       NewTaskID(),
		FilePath:     filePath,
		AnalysisType: analysisType,
		Options:      opts,
	}

	taskID, err := o.detector.Submit(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to submit analysis task: %w", err)
	}
	if taskID != "" {
		sub.TaskID = taskID
	}

	o.log.Info("Analysis task submitted",
		zap.String("task_id", sub.TaskID),
		zap.String("file_path", filePath),
		zap.String("analysis_type", string(analysisType)))

	handle := &TaskHandle{
		TaskID:    sub.TaskID,
		Narrative: o.schedule(sub, JobNarrative),
		Payload:   o.schedule(sub, JobPayload),
	}
	return handle, nil
}

// schedule starts one report job on its own cancellable context.
func (o *Orchestrator) schedule(sub schemas.Submission, kind JobKind) *Job {
	jobCtx, cancel := context.WithCancel(context.Background())
	job := &Job{
		TaskID: sub.TaskID,
		Kind:   kind,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	o.mu.Lock()
	o.jobs[job] = struct{}{}
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer cancel()
		job.err = o.run(jobCtx, sub, kind)
		if job.err != nil {
			o.log.Warn("Report job failed",
				zap.String("task_id", sub.TaskID),
				zap.String("kind", string(kind)),
				zap.Error(job.err))
		}
		close(job.done)

		o.mu.Lock()
		delete(o.jobs, job)
		o.mu.Unlock()
	}()
	return job
}

// run waits for the analysis to complete, renders the artifact and persists
// it. Each step's failure terminates only this job.
func (o *Orchestrator) run(ctx context.Context, sub schemas.Submission, kind JobKind) error {
	result, err := o.waiter.Await(ctx, sub.TaskID, o.cfg.Pipeline.MaxWait, o.cfg.Pipeline.PollInterval)
	if err != nil {
		return fmt.Errorf("wait for task %s: %w", sub.TaskID, err)
	}

	in := reporting.ReportInput{
		TaskID:       sub.TaskID,
		FilePath:     sub.FilePath,
		AnalysisType: sub.AnalysisType,
		Result:       result,
		GeneratedAt:  o.now().UTC(),
	}

	switch kind {
	case JobNarrative:
		doc := reporting.SelectGenerator(reporting.NewNarrativeGenerator()).Generate(in)
		if err := o.store.SaveNarrative(ctx, sub.TaskID, doc); err != nil {
			return fmt.Errorf("persist narrative for task %s: %w", sub.TaskID, err)
		}
	case JobPayload:
		payload := reporting.BuildPayload(in)
		doc, err := payload.ToJSON()
		if err != nil {
			return fmt.Errorf("serialize payload for task %s: %w", sub.TaskID, err)
		}
		if err := o.store.SavePayload(ctx, sub.TaskID, doc); err != nil {
			return fmt.Errorf("persist payload for task %s: %w", sub.TaskID, err)
		}
	default:
		return fmt.Errorf("unknown job kind %q", kind)
	}

	o.log.Info("Artifact generated",
		zap.String("task_id", sub.TaskID),
		zap.String("kind", string(kind)))
	return nil
}

// Shutdown cancels every outstanding job and waits for them to drain, or
// until the context expires.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	for job := range o.jobs {
		job.cancel()
	}
	o.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown wait: %w", ctx.Err())
	}
}
