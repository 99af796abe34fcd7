package schemas

import "context"

// -- Core Service Interfaces --

// StatusProvider is the narrow, read-only view of the external detector's
// task registry. Implementations must be idempotent; an unknown task id is
// reported with ErrNotFound, which callers treat as "not yet complete".
type StatusProvider interface {
	// TaskStatus returns the current lifecycle record for a task.
	TaskStatus(ctx context.Context, taskID string) (*Task, error)
}

// Detector is the full collaborator interface for the external analysis
// runner: task submission plus the read-only status view.
type Detector interface {
	StatusProvider
	// Submit hands an analysis request to the detector. The returned task id
	// equals the one in the submission.
	Submit(ctx context.Context, sub Submission) (string, error)
	// DetectionRules returns the detector's advertised rule set, keyed by
	// rule id.
	DetectionRules(ctx context.Context) (map[string]string, error)
}

// ArtifactStore durably persists generated artifacts keyed by task id.
// Writes are idempotent; regeneration overwrites the prior version with no
// history retained. A missing artifact is reported with ErrNotFound.
type ArtifactStore interface {
	// SaveNarrative stores the human-readable report for a task.
	SaveNarrative(ctx context.Context, taskID string, doc []byte) error
	// Narrative retrieves the human-readable report for a task.
	Narrative(ctx context.Context, taskID string) ([]byte, error)
	// SavePayload stores the machine-consumable payload for a task.
	SavePayload(ctx context.Context, taskID string, doc []byte) error
	// Payload retrieves the machine-consumable payload for a task.
	Payload(ctx context.Context, taskID string) ([]byte, error)
}
