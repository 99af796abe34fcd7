// File: internal/reporting/narrative.go
package reporting

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

// sectionDisplayLimit caps how many findings a single section lists. It is a
// fixed display limit; all findings still count toward summary statistics.
const sectionDisplayLimit = 5

// qualityAdvisories maps a finding type to its fixed advisory line. Types
// outside this table produce no advisory. The slice keeps the emission order
// stable across runs.
var qualityAdvisories = []struct {
	issueType string
	advice    string
}{
	{"unhandled_exception", "**Exception handling**: wrap failure-prone calls in explicit error handling"},
	{"potential_division_by_zero", "**Division guards**: check divisors before dividing"},
	{"unused_import", "**Dead code**: remove unused import statements"},
	{"missing_docstring", "**Documentation**: add doc comments to functions and classes"},
	{"hardcoded_secrets", "**Secrets hygiene**: move hardcoded credentials into environment variables or a secret store"},
}

// NarrativeGenerator renders the sectioned markdown analysis report.
type NarrativeGenerator struct{}

// NewNarrativeGenerator returns the markdown report generator.
func NewNarrativeGenerator() *NarrativeGenerator {
	return &NarrativeGenerator{}
}

// Format implements ReportGenerator.
func (g *NarrativeGenerator) Format() string { return "markdown" }

// Generate renders the narrative report. It never aborts report issuance: a
// panic during rendering is downgraded to a degenerate document that embeds
// the error description.
func (g *NarrativeGenerator) Generate(in ReportInput) (doc []byte) {
	defer func() {
		if r := recover(); r != nil {
			doc = []byte(fmt.Sprintf("# Analysis Report\n\n## Error\n\nAn error occurred while generating this report: %v\n", r))
		}
	}()
	return []byte(g.render(in))
}

func (g *NarrativeGenerator) render(in ReportInput) string {
	result := in.Result
	if result == nil {
		result = &schemas.DetectionResult{}
	}

	if result.TotalIssues == 0 {
		return "# Analysis Report\n\n" +
			"## Result\n\n" +
			"No defects were found.\n\n" +
			"## Recommendations\n\n" +
			"- Code quality looks good; keep it up\n" +
			"- Consider adding more unit tests\n" +
			"- Review code regularly\n"
	}

	counts := result.Recount()
	errors := filterBySeverity(result.Issues, schemas.SeverityError)
	warnings := filterBySeverity(result.Issues, schemas.SeverityWarning)

	var b strings.Builder
	b.WriteString("# Analysis Report\n\n")
	b.WriteString("## File Information\n\n")
	fmt.Fprintf(&b, "- **Path**: %s\n", result.EffectiveProjectPath(in.FilePath))
	fmt.Fprintf(&b, "- **Total issues**: %d\n", result.TotalIssues)
	fmt.Fprintf(&b, "- **Errors**: %d\n", counts.ErrorCount)
	fmt.Fprintf(&b, "- **Warnings**: %d\n", counts.WarningCount)
	fmt.Fprintf(&b, "- **Info**: %d\n\n", counts.InfoCount)

	if len(errors) > 0 {
		b.WriteString("## Critical Issues\n\n")
		writeFindingSection(&b, errors, "Needs an immediate fix")
	}

	if len(warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		writeFindingSection(&b, warnings, "Fix to improve code quality")
	}

	// The section header is fixed; only the advisory lines depend on which
	// finding types are present.
	b.WriteString("## Quality Suggestions\n\n")
	for _, a := range collectAdvisories(result.Issues) {
		fmt.Fprintf(&b, "- %s\n", a)
	}
	b.WriteString("\n")

	b.WriteString("## Summary\n\n")
	if counts.ErrorCount > 0 {
		fmt.Fprintf(&b, "%d critical issues need an immediate fix.\n", counts.ErrorCount)
	}
	if counts.WarningCount > 0 {
		fmt.Fprintf(&b, "%d warnings should be fixed.\n", counts.WarningCount)
	}
	if counts.InfoCount > 0 {
		fmt.Fprintf(&b, "%d informational notes can be improved on.\n", counts.InfoCount)
	}
	b.WriteString("\nWork through the issues in priority order to improve code quality and maintainability.\n")

	return b.String()
}

// writeFindingSection lists up to sectionDisplayLimit findings with a fixed
// per-finding advisory.
func writeFindingSection(b *strings.Builder, findings []schemas.Finding, advisory string) {
	limit := len(findings)
	if limit > sectionDisplayLimit {
		limit = sectionDisplayLimit
	}
	for _, f := range findings[:limit] {
		fmt.Fprintf(b, "### %s\n", f.EffectiveType())
		fmt.Fprintf(b, "- **Location**: line %d in %s\n", f.EffectiveLine(), f.EffectiveFile())
		fmt.Fprintf(b, "- **Description**: %s\n", f.Message)
		fmt.Fprintf(b, "- **Advice**: %s\n\n", advisory)
	}
}

func filterBySeverity(issues []schemas.Finding, severity schemas.Severity) []schemas.Finding {
	var out []schemas.Finding
	for _, f := range issues {
		if f.EffectiveSeverity() == severity {
			out = append(out, f)
		}
	}
	return out
}

// collectAdvisories returns one advisory line per distinct finding type that
// appears in the fixed lookup table, in table order.
func collectAdvisories(issues []schemas.Finding) []string {
	present := make(map[string]bool, len(issues))
	for _, f := range issues {
		present[f.EffectiveType()] = true
	}

	var out []string
	for _, entry := range qualityAdvisories {
		if present[entry.issueType] {
			out = append(out, entry.advice)
		}
	}
	return out
}
