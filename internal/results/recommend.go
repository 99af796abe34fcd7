// File: internal/results/recommend.go
package results

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

// Fixed long-term guidance, appended regardless of finding content.
const (
	adviceContinuousIntegration = "Establish a continuous integration pipeline with regular code quality checks"
	adviceCodingStandards       = "Adopt a written coding standard and best-practices guide"
)

// warningBacklogThreshold is the warning count above which a dedicated review
// pass is recommended.
const warningBacklogThreshold = 10

// Recommendations groups remediation guidance by urgency.
type Recommendations struct {
	ImmediateActions      []string `json:"immediate_actions"`
	ShortTermImprovements []string `json:"short_term_improvements"`
	LongTermOptimizations []string `json:"long_term_optimizations"`
}

// Recommend derives remediation guidance from the full finding set. Output is
// a deterministic function of the input's severity counts and type tags.
func Recommend(issues []schemas.Finding) Recommendations {
	rec := Recommendations{
		ImmediateActions:      []string{},
		ShortTermImprovements: []string{},
		LongTermOptimizations: []string{},
	}

	var errorCount, warningCount, securityCount int
	for _, issue := range issues {
		switch issue.EffectiveSeverity() {
		case schemas.SeverityError:
			errorCount++
		case schemas.SeverityWarning:
			warningCount++
		}
		if strings.Contains(strings.ToLower(issue.EffectiveType()), "security") {
			securityCount++
		}
	}

	if errorCount > 0 {
		rec.ImmediateActions = append(rec.ImmediateActions,
			fmt.Sprintf("Fix %d error-level issues", errorCount))
	}
	if securityCount > 0 {
		rec.ImmediateActions = append(rec.ImmediateActions,
			fmt.Sprintf("Prioritize %d security-related issues", securityCount))
	}

	if warningCount > warningBacklogThreshold {
		rec.ShortTermImprovements = append(rec.ShortTermImprovements,
			"Schedule a code review to work through the warning backlog")
	}

	rec.LongTermOptimizations = append(rec.LongTermOptimizations,
		adviceContinuousIntegration,
		adviceCodingStandards,
	)

	return rec
}
