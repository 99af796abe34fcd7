// File: internal/results/structure.go
package results

import (
	"github.com/xkilldash9x/codetriage/api/schemas"
)

// highIssueFileThreshold is the per-file finding count above which a file is
// considered a complexity hotspot.
const highIssueFileThreshold = 5

// ComplexityIndicators summarizes how the findings distribute across files.
type ComplexityIndicators struct {
	HighIssueFiles       int     `json:"high_issue_files"`
	AverageIssuesPerFile float64 `json:"average_issues_per_file"`
}

// ProjectStructure describes the analyzed project's shape as far as the
// finding set reveals it.
type ProjectStructure struct {
	AnalysisType         schemas.AnalysisType `json:"analysis_type"`
	FileCount            int                  `json:"file_count"`
	Languages            []string             `json:"languages"`
	ComplexityIndicators ComplexityIndicators `json:"complexity_indicators"`
}

// AnalyzeStructure computes per-file and aggregate complexity indicators from
// a detection result. Both indicators are zero when the run produced no
// findings.
func AnalyzeStructure(result *schemas.DetectionResult, analysisType schemas.AnalysisType) ProjectStructure {
	languages := result.LanguagesDetected
	if languages == nil {
		languages = []string{}
	}

	structure := ProjectStructure{
		AnalysisType: analysisType,
		FileCount:    result.EffectiveTotalFiles(),
		Languages:    languages,
	}

	if len(result.Issues) == 0 {
		return structure
	}

	perFile := make(map[string]int)
	for _, issue := range result.Issues {
		perFile[issue.EffectiveFile()]++
	}

	for _, count := range perFile {
		if count > highIssueFileThreshold {
			structure.ComplexityIndicators.HighIssueFiles++
		}
	}

	distinctFiles := len(perFile)
	if distinctFiles == 0 {
		distinctFiles = 1
	}
	structure.ComplexityIndicators.AverageIssuesPerFile =
		float64(len(result.Issues)) / float64(distinctFiles)

	return structure
}
