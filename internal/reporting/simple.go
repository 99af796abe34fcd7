// File: internal/reporting/simple.go
package reporting

import (
	"fmt"
	"time"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

// SimpleGenerator is the fallback report generator: a flat JSON document with
// the raw issue list and per-severity / per-type statistics. It is selected
// at construction time when the narrative generator is unavailable or
// disabled.
type SimpleGenerator struct{}

// NewSimpleGenerator returns the fallback JSON report generator.
func NewSimpleGenerator() *SimpleGenerator {
	return &SimpleGenerator{}
}

// Format implements ReportGenerator.
func (g *SimpleGenerator) Format() string { return "json" }

type simpleReport struct {
	ReportInfo simpleReportInfo  `json:"report_info"`
	Issues     []schemas.Finding `json:"issues"`
	Statistics simpleStatistics  `json:"statistics"`
}

type simpleReportInfo struct {
	GeneratedAt    string                  `json:"generated_at"`
	FilePath       string                  `json:"file_path"`
	TaskID         string                  `json:"task_id"`
	TotalIssues    int                     `json:"total_issues"`
	Summary        schemas.SeveritySummary `json:"summary"`
	DetectionTools []string                `json:"detection_tools"`
}

type simpleStatistics struct {
	BySeverity map[string]int `json:"by_severity"`
	ByType     map[string]int `json:"by_type"`
}

// Generate renders the simple JSON report. Like every generator it never
// fails; a marshaling error yields a degenerate document embedding the error.
func (g *SimpleGenerator) Generate(in ReportInput) []byte {
	result := in.Result
	if result == nil {
		result = &schemas.DetectionResult{}
	}

	issues := result.Issues
	if issues == nil {
		issues = []schemas.Finding{}
	}

	bySeverity := make(map[string]int)
	byType := make(map[string]int)
	for _, f := range issues {
		bySeverity[string(f.EffectiveSeverity())]++
		byType[f.EffectiveType()]++
	}

	tools := result.DetectionTools
	if tools == nil {
		tools = []string{}
	}

	report := simpleReport{
		ReportInfo: simpleReportInfo{
			GeneratedAt:    in.GeneratedAt.UTC().Format(time.RFC3339),
			FilePath:       in.FilePath,
			TaskID:         in.TaskID,
			TotalIssues:    result.TotalIssues,
			Summary:        result.Summary,
			DetectionTools: tools,
		},
		Issues:     issues,
		Statistics: simpleStatistics{BySeverity: bySeverity, ByType: byType},
	}

	doc, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return []byte(fmt.Sprintf(`{"error": %q}`, err.Error()))
	}
	return doc
}
