// File: internal/results/classify.go
package results

import (
	"strings"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

// securityKeywords mark an error-severity finding as critical when any of
// them appears in its type tag (case-insensitive substring match).
var securityKeywords = []string{
	"security",
	"vulnerability",
	"injection",
	"xss",
	"csrf",
	"secret",
	"password",
}

// PriorityBuckets partitions findings into the four priority tiers, in
// descending precedence. Within a tier the detector's emission order is
// preserved.
type PriorityBuckets struct {
	Critical []schemas.Finding `json:"critical"`
	High     []schemas.Finding `json:"high"`
	Medium   []schemas.Finding `json:"medium"`
	Low      []schemas.Finding `json:"low"`
}

// Classify assigns every finding to exactly one priority tier. The first
// matching rule wins:
//
//  1. critical: error severity with a security-related type tag
//  2. high:     any other error severity
//  3. medium:   warning severity
//  4. low:      everything else, including unrecognized severities
func Classify(issues []schemas.Finding) PriorityBuckets {
	buckets := PriorityBuckets{
		Critical: []schemas.Finding{},
		High:     []schemas.Finding{},
		Medium:   []schemas.Finding{},
		Low:      []schemas.Finding{},
	}

	for _, issue := range issues {
		severity := issue.EffectiveSeverity()
		switch {
		case severity == schemas.SeverityError && isSecurityType(issue.EffectiveType()):
			buckets.Critical = append(buckets.Critical, issue)
		case severity == schemas.SeverityError:
			buckets.High = append(buckets.High, issue)
		case severity == schemas.SeverityWarning:
			buckets.Medium = append(buckets.Medium, issue)
		default:
			buckets.Low = append(buckets.Low, issue)
		}
	}

	return buckets
}

// Total returns the number of findings across all tiers.
func (b PriorityBuckets) Total() int {
	return len(b.Critical) + len(b.High) + len(b.Medium) + len(b.Low)
}

func isSecurityType(issueType string) bool {
	lowered := strings.ToLower(issueType)
	for _, keyword := range securityKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
