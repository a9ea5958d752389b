package analysis

import (
	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
)

// Aggregate merges per-file findings into a single report. Pure and
// order-preserving: output file order matches input order. Severities are
// normalized to lowercase before counting; critical/high/medium each get
// their own bucket, anything else (including "info" and unknown strings)
// counts as low.
func Aggregate(files []domain.SourceFile, perFile [][]domain.Finding) domain.Report {
	report := domain.Report{Files: make([]domain.FileResult, 0, len(files))}

	for i, f := range files {
		findings := perFile[i]
		result := domain.FileResult{Path: f.Path, Vulnerabilities: make([]domain.Finding, 0, len(findings))}

		for _, v := range findings {
			sev := domain.NormalizeSeverity(v.Severity)
			result.Vulnerabilities = append(result.Vulnerabilities, domain.Finding{
				Type:        v.Type,
				Severity:    string(sev),
				Line:        v.Line,
				Description: v.Description,
				Suggestion:  v.Suggestion,
			})

			switch sev {
			case domain.SeverityCritical:
				report.Summary.Critical++
			case domain.SeverityHigh:
				report.Summary.High++
			case domain.SeverityMedium:
				report.Summary.Medium++
			default:
				report.Summary.Low++
			}
			report.Summary.Total++
		}
		report.Files = append(report.Files, result)
	}
	return report
}
