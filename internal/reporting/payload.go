// File: internal/reporting/payload.go
package reporting

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/codetriage/api/schemas"
	"github.com/xkilldash9x/codetriage/internal/results"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PayloadSummary restates the run's headline numbers for the remediation
// consumer. Counts come from the detector-supplied summary, defaults applied.
type PayloadSummary struct {
	TotalIssues       int      `json:"total_issues"`
	ErrorCount        int      `json:"error_count"`
	WarningCount      int      `json:"warning_count"`
	InfoCount         int      `json:"info_count"`
	LanguagesDetected []string `json:"languages_detected"`
	TotalFiles        int      `json:"total_files"`
}

// DetectionMetadata carries run provenance through to the consumer.
type DetectionMetadata struct {
	DetectionTools []string `json:"detection_tools"`
	AnalysisTime   float64  `json:"analysis_time"`
	ProjectPath    string   `json:"project_path"`
}

// StructuredPayload is the machine-consumable document handed to the
// downstream remediation system, persisted keyed by task id.
type StructuredPayload struct {
	TaskID             string                   `json:"task_id"`
	FilePath           string                   `json:"file_path"`
	AnalysisType       schemas.AnalysisType     `json:"analysis_type"`
	Timestamp          string                   `json:"timestamp"`
	Summary            PayloadSummary           `json:"summary"`
	IssuesByPriority   results.PriorityBuckets  `json:"issues_by_priority"`
	FixRecommendations results.Recommendations  `json:"fix_recommendations"`
	ProjectStructure   results.ProjectStructure `json:"project_structure"`
	DetectionMetadata  DetectionMetadata        `json:"detection_metadata"`
}

// BuildPayload composes the classifier, synthesizer and structure analyzer
// outputs into one document. It is a pure function of its input: missing
// optional fields fall back to their documented defaults and never cause an
// error.
func BuildPayload(in ReportInput) StructuredPayload {
	result := in.Result
	if result == nil {
		result = &schemas.DetectionResult{}
	}

	languages := result.LanguagesDetected
	if languages == nil {
		languages = []string{}
	}
	tools := result.DetectionTools
	if tools == nil {
		tools = []string{}
	}

	return StructuredPayload{
		TaskID:       in.TaskID,
		FilePath:     in.FilePath,
		AnalysisType: in.AnalysisType,
		Timestamp:    in.GeneratedAt.UTC().Format(time.RFC3339),
		Summary: PayloadSummary{
			TotalIssues:       result.TotalIssues,
			ErrorCount:        result.Summary.ErrorCount,
			WarningCount:      result.Summary.WarningCount,
			InfoCount:         result.Summary.InfoCount,
			LanguagesDetected: languages,
			TotalFiles:        result.EffectiveTotalFiles(),
		},
		IssuesByPriority:   results.Classify(result.Issues),
		FixRecommendations: results.Recommend(result.Issues),
		ProjectStructure:   results.AnalyzeStructure(result, in.AnalysisType),
		DetectionMetadata: DetectionMetadata{
			DetectionTools: tools,
			AnalysisTime:   result.AnalysisTime,
			ProjectPath:    result.EffectiveProjectPath(in.FilePath),
		},
	}
}

// ToJSON serializes the payload with stable field order and indentation, so
// identical inputs produce byte-identical documents.
func (p StructuredPayload) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
