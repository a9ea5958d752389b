package analysis

import "strings"

// Severity enum (normalized lowercase)
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// NormalizeSeverity lowercases whatever the model returned so counting is stable.
func NormalizeSeverity(s string) Severity {
	return Severity(strings.ToLower(strings.TrimSpace(s)))
}

// Finding is one reported vulnerability for one file. The pipeline treats
// Type as opaque; only Severity is interpreted (for the summary counts).
type Finding struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Line        any    `json:"line,omitempty"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// SourceFile is one scanned file handed to the batcher. Content is the full
// text; Path is relative to the scan root. Never mutated after creation.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FileResult pairs a file path with its findings.
type FileResult struct {
	Path            string    `json:"path"`
	Vulnerabilities []Finding `json:"vulnerabilities"`
}

// SeverityCounts value object
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// Report is the aggregate result attached to a completed job.
type Report struct {
	Files   []FileResult   `json:"files"`
	Summary SeverityCounts `json:"summary"`
}
