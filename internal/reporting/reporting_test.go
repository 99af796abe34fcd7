package reporting

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func input(result *schemas.DetectionResult) ReportInput {
	return ReportInput{
		TaskID:       "task-1",
		FilePath:     "/uploads/app.py",
		AnalysisType: schemas.AnalysisFile,
		Result:       result,
		GeneratedAt:  fixedTime,
	}
}

// -- Narrative generator --

func TestNarrativeZeroIssues(t *testing.T) {
	t.Parallel()

	doc := string(NewNarrativeGenerator().Generate(input(&schemas.DetectionResult{})))
	assert.Contains(t, doc, "No defects were found")
	assert.NotContains(t, doc, "## Critical Issues")
	assert.NotContains(t, doc, "## Warnings")
}

func TestNarrativeSectionsAndCounts(t *testing.T) {
	t.Parallel()

	result := &schemas.DetectionResult{
		TotalIssues: 4,
		ProjectPath: "/work/proj",
		Issues: []schemas.Finding{
			{Severity: schemas.SeverityError, Type: "unhandled_exception", File: "a.py", Line: 10, Message: "bare call may raise"},
			{Severity: schemas.SeverityError, Type: "hardcoded_secrets", File: "b.py", Line: 4, Message: "api key in source"},
			{Severity: schemas.SeverityWarning, Type: "unused_import", File: "a.py", Line: 1, Message: "os imported but unused"},
			{Severity: schemas.SeverityInfo, Type: "missing_docstring", File: "a.py", Line: 3, Message: "function lacks docstring"},
		},
	}

	doc := string(NewNarrativeGenerator().Generate(input(result)))

	assert.Contains(t, doc, "- **Path**: /work/proj")
	assert.Contains(t, doc, "- **Errors**: 2")
	assert.Contains(t, doc, "- **Warnings**: 1")
	assert.Contains(t, doc, "- **Info**: 1")

	assert.Contains(t, doc, "## Critical Issues")
	assert.Contains(t, doc, "### unhandled_exception")
	assert.Contains(t, doc, "line 10 in a.py")
	assert.Contains(t, doc, "## Warnings")
	assert.Contains(t, doc, "### unused_import")

	// One advisory per distinct known type, in table order.
	assert.Contains(t, doc, "Exception handling")
	assert.Contains(t, doc, "Dead code")
	assert.Contains(t, doc, "Documentation")
	assert.Contains(t, doc, "Secrets hygiene")
	assert.NotContains(t, doc, "Division guards")
}

// The quality-suggestions header is part of the fixed document shape even
// when no finding type has an advisory in the lookup table.
func TestNarrativeQualitySuggestionsHeaderAlwaysPresent(t *testing.T) {
	t.Parallel()

	result := &schemas.DetectionResult{
		TotalIssues: 1,
		Issues: []schemas.Finding{
			{Severity: schemas.SeverityWarning, Type: "long_function", File: "a.py", Line: 2, Message: "function is 300 lines"},
		},
	}

	doc := string(NewNarrativeGenerator().Generate(input(result)))
	assert.Contains(t, doc, "## Quality Suggestions")
	// The header is immediately followed by the summary: no advisory lines.
	assert.Contains(t, doc, "## Quality Suggestions\n\n\n## Summary")
}

// Sections truncate at five findings; summary statistics count all of them.
func TestNarrativeTruncationKeepsFullCounts(t *testing.T) {
	t.Parallel()

	result := &schemas.DetectionResult{TotalIssues: 7}
	for i := 0; i < 7; i++ {
		result.Issues = append(result.Issues, schemas.Finding{
			Severity: schemas.SeverityError,
			Type:     fmt.Sprintf("error_%d", i),
			File:     "a.py",
			Line:     i + 1,
		})
	}

	doc := string(NewNarrativeGenerator().Generate(input(result)))

	assert.Equal(t, 5, strings.Count(doc, "### error_"), "critical section lists exactly five findings")
	assert.Contains(t, doc, "- **Errors**: 7")
	assert.Contains(t, doc, "7 critical issues need an immediate fix.")
}

func TestNarrativeDeterministic(t *testing.T) {
	t.Parallel()

	result := &schemas.DetectionResult{
		TotalIssues: 2,
		Issues: []schemas.Finding{
			{Severity: schemas.SeverityError, Type: "unhandled_exception", File: "a.py"},
			{Severity: schemas.SeverityWarning, Type: "unused_import", File: "b.py"},
		},
	}

	g := NewNarrativeGenerator()
	first := g.Generate(input(result))
	second := g.Generate(input(result))
	assert.Equal(t, first, second, "identical input must produce byte-identical output")
}

func TestNarrativeNilResult(t *testing.T) {
	t.Parallel()

	in := input(nil)
	doc := string(NewNarrativeGenerator().Generate(in))
	assert.Contains(t, doc, "No defects were found")
}

// -- Structured payload builder --

func TestBuildPayloadComposition(t *testing.T) {
	t.Parallel()

	result := &schemas.DetectionResult{
		TotalIssues: 3,
		Summary:     schemas.SeveritySummary{ErrorCount: 2, WarningCount: 1},
		Issues: []schemas.Finding{
			{Severity: schemas.SeverityError, Type: "sql_injection", File: "a.py"},
			{Severity: schemas.SeverityError, Type: "unhandled_exception", File: "a.py"},
			{Severity: schemas.SeverityWarning, Type: "unused_import", File: "b.py"},
		},
		LanguagesDetected: []string{"python"},
		TotalFiles:        2,
		DetectionTools:    []string{"static", "lint"},
		AnalysisTime:      1.25,
	}

	p := BuildPayload(input(result))

	assert.Equal(t, "task-1", p.TaskID)
	assert.Equal(t, "/uploads/app.py", p.FilePath)
	assert.Equal(t, "2025-06-01T12:00:00Z", p.Timestamp)
	assert.Equal(t, 3, p.Summary.TotalIssues)
	assert.Equal(t, 2, p.Summary.ErrorCount)
	assert.Len(t, p.IssuesByPriority.Critical, 1)
	assert.Len(t, p.IssuesByPriority.High, 1)
	assert.Len(t, p.IssuesByPriority.Medium, 1)
	assert.Contains(t, p.FixRecommendations.ImmediateActions[0], "2 error-level")
	assert.Equal(t, 2, p.ProjectStructure.FileCount)
	assert.Equal(t, []string{"static", "lint"}, p.DetectionMetadata.DetectionTools)
	// project_path falls back to the submitted input path.
	assert.Equal(t, "/uploads/app.py", p.DetectionMetadata.ProjectPath)
}

func TestBuildPayloadDefaultsOnEmptyResult(t *testing.T) {
	t.Parallel()

	p := BuildPayload(input(&schemas.DetectionResult{}))
	assert.Equal(t, 0, p.Summary.TotalIssues)
	assert.Equal(t, []string{}, p.Summary.LanguagesDetected)
	assert.Equal(t, 1, p.Summary.TotalFiles)
	assert.Equal(t, []string{}, p.DetectionMetadata.DetectionTools)
	assert.NotNil(t, p.IssuesByPriority.Critical)
}

func TestBuildPayloadDeterministic(t *testing.T) {
	t.Parallel()

	result := &schemas.DetectionResult{
		TotalIssues: 1,
		Issues:      []schemas.Finding{{Severity: schemas.SeverityError, Type: "xss"}},
	}

	first := BuildPayload(input(result))
	second := BuildPayload(input(result))
	assert.Empty(t, cmp.Diff(first, second), "payloads must be field-for-field identical")

	firstJSON, err := first.ToJSON()
	require.NoError(t, err)
	secondJSON, err := second.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

// -- Simple fallback generator --

func TestSimpleGeneratorStatistics(t *testing.T) {
	t.Parallel()

	result := &schemas.DetectionResult{
		TotalIssues: 3,
		Issues: []schemas.Finding{
			{Severity: schemas.SeverityError, Type: "hardcoded_secrets"},
			{Severity: schemas.SeverityError, Type: "unhandled_exception"},
			{Severity: schemas.SeverityWarning},
		},
	}

	doc := string(NewSimpleGenerator().Generate(input(result)))
	assert.Contains(t, doc, `"task_id": "task-1"`)
	assert.Contains(t, doc, `"error": 2`)
	assert.Contains(t, doc, `"warning": 1`)
	assert.Contains(t, doc, `"unknown": 1`, "missing type buckets under unknown")
}

func TestSelectGeneratorFallsBackToSimple(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "json", SelectGenerator(nil).Format())
	assert.Equal(t, "markdown", SelectGenerator(NewNarrativeGenerator()).Format())
}
