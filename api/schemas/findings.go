package schemas

import "strings"

// -- Finding Schemas --

// Severity represents the severity level of a detected issue. The values are
// lowercase to align with the detector's wire format.
type Severity string

// Constants defining the standard severity levels for findings.
const (
	SeverityError   Severity = "error"   // Represents a defect that must be fixed.
	SeverityWarning Severity = "warning" // Represents a likely problem worth fixing.
	SeverityInfo    Severity = "info"    // Represents an informational observation.
)

// NormalizeSeverity maps a raw severity string onto one of the standard
// levels. Unrecognized or empty values collapse to SeverityInfo so that a
// malformed finding never fails classification.
func NormalizeSeverity(raw string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(raw))) {
	case SeverityError:
		return SeverityError
	case SeverityWarning:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Finding encapsulates a single normalized issue reported by the detector.
// Raw detector output may omit any field; the accessor methods substitute
// documented defaults so downstream transforms never observe a null bucket.
type Finding struct {
	Severity Severity `json:"severity"`          // Severity level of the issue.
	Type     string   `json:"type"`              // Free-form category tag, e.g. "unused_import".
	File     string   `json:"file"`              // Source path the issue belongs to.
	Line     int      `json:"line"`              // 1-based line number, 0 if unknown.
	Message  string   `json:"message,omitempty"` // Free-text description.
}

// EffectiveSeverity returns the finding's severity normalized to a standard
// level.
func (f Finding) EffectiveSeverity() Severity {
	return NormalizeSeverity(string(f.Severity))
}

// EffectiveType returns the finding's category tag, substituting "unknown"
// when the detector omitted it.
func (f Finding) EffectiveType() string {
	if f.Type == "" {
		return "unknown"
	}
	return f.Type
}

// EffectiveFile returns the finding's file path, substituting "unknown" when
// the detector omitted it.
func (f Finding) EffectiveFile() string {
	if f.File == "" {
		return "unknown"
	}
	return f.File
}

// EffectiveLine returns the finding's line number clamped to be non-negative.
func (f Finding) EffectiveLine() int {
	if f.Line < 0 {
		return 0
	}
	return f.Line
}
