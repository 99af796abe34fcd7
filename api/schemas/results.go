package schemas

// -- Detection Result Schemas --

// SeveritySummary holds precomputed counts by severity as reported by the
// detector. The detector may deduplicate or miscount, so these numbers can
// disagree with a recount over Issues; consumers that need exact figures
// should call DetectionResult.Recount.
type SeveritySummary struct {
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	InfoCount    int `json:"info_count"`
}

// DetectionResult is the full output of one completed analysis run. Issue
// order is the detector's emission order and is preserved through every
// downstream transform unless a transform explicitly re-groups.
type DetectionResult struct {
	TotalIssues       int             `json:"total_issues"`
	Issues            []Finding       `json:"issues"`
	Summary           SeveritySummary `json:"summary"`
	LanguagesDetected []string        `json:"languages_detected,omitempty"`
	TotalFiles        int             `json:"total_files,omitempty"`
	DetectionTools    []string        `json:"detection_tools,omitempty"`
	AnalysisTime      float64         `json:"analysis_time,omitempty"`
	ProjectPath       string          `json:"project_path,omitempty"`
}

// Recount recomputes severity counts directly from the issue list, ignoring
// the detector-supplied summary.
func (r *DetectionResult) Recount() SeveritySummary {
	var s SeveritySummary
	for _, f := range r.Issues {
		switch f.EffectiveSeverity() {
		case SeverityError:
			s.ErrorCount++
		case SeverityWarning:
			s.WarningCount++
		default:
			s.InfoCount++
		}
	}
	return s
}

// EffectiveTotalFiles returns the file count covered by the run, defaulting
// to 1 when the detector omitted it.
func (r *DetectionResult) EffectiveTotalFiles() int {
	if r.TotalFiles <= 0 {
		return 1
	}
	return r.TotalFiles
}

// EffectiveProjectPath returns the analyzed path, falling back to the
// submitted input path when the detector omitted it.
func (r *DetectionResult) EffectiveProjectPath(inputPath string) string {
	if r.ProjectPath == "" {
		return inputPath
	}
	return r.ProjectPath
}
