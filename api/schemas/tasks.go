package schemas

// -- Task Schemas --

// TaskStatus tracks the lifecycle of one analysis run. Transitions are owned
// exclusively by the external detector; this system only reads them.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// AnalysisType selects between single-file and whole-project analysis.
type AnalysisType string

const (
	AnalysisFile    AnalysisType = "file"
	AnalysisProject AnalysisType = "project"
)

// Task is the unit of work tracking one analysis run.
type Task struct {
	ID     string     `json:"id"`
	Status TaskStatus `json:"status"`
	// Result is present only when Status is TaskCompleted.
	Result *DetectionResult `json:"result,omitempty"`
}

// Submission describes an analysis request handed to the detector.
type Submission struct {
	TaskID       string        `json:"task_id"`
	FilePath     string        `json:"file_path"`
	AnalysisType AnalysisType  `json:"analysis_type"`
	Options      DetectOptions `json:"options"`
}

// DetectOptions toggles the detector's individual analysis passes. The
// flags are opaque to this system and forwarded verbatim.
type DetectOptions struct {
	EnableStatic     bool `json:"enable_static"`
	EnableLint       bool `json:"enable_lint"`
	EnableSecurity   bool `json:"enable_security"`
	EnableTypeCheck  bool `json:"enable_type_check"`
	EnableAIAnalysis bool `json:"enable_ai_analysis"`
}

// DefaultDetectOptions enables every analysis pass.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		EnableStatic:     true,
		EnableLint:       true,
		EnableSecurity:   true,
		EnableTypeCheck:  true,
		EnableAIAnalysis: true,
	}
}
