// File: internal/reporting/reporter.go
// Description: Report generation contracts. Generators are selected at
// construction time; there is no runtime capability sniffing. Every
// implementation must return a valid document for every input — rendering
// failures are embedded in the output, never propagated.
package reporting

import (
	"time"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

// ReportInput carries everything a generator needs to render one artifact.
type ReportInput struct {
	TaskID       string
	FilePath     string
	AnalysisType schemas.AnalysisType
	Result       *schemas.DetectionResult
	// GeneratedAt is supplied by the caller so that identical inputs produce
	// byte-identical documents.
	GeneratedAt time.Time
}

// ReportGenerator renders the human-readable artifact for a completed run.
// Generate must never fail: implementations downgrade internal rendering
// errors to a degenerate document that embeds the error description.
type ReportGenerator interface {
	// Generate renders the report document.
	Generate(in ReportInput) []byte
	// Format names the document format, e.g. "markdown" or "json".
	Format() string
}

// SelectGenerator returns the preferred generator, falling back to the
// simple JSON report when none is supplied.
func SelectGenerator(preferred ReportGenerator) ReportGenerator {
	if preferred == nil {
		return NewSimpleGenerator()
	}
	return preferred
}
