package mock

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
)

// Client is the deterministic inference double, selected by config for dev
// and CI runs where no API key is available. Findings come from a couple of
// cheap content heuristics so demo submissions still light up the dashboard.
type Client struct{}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) Analyze(ctx context.Context, sourceText string) (string, error) {
	var findings []analysis.Finding
	lower := strings.ToLower(sourceText)

	if strings.Contains(lower, "eval(") {
		findings = append(findings, analysis.Finding{
			Type:        "Code Injection",
			Severity:    "critical",
			Line:        "n/a",
			Description: "Use of eval on potentially untrusted input allows arbitrary code execution.",
			Suggestion:  "Remove eval; parse input with a safe, purpose-built parser.",
		})
	}
	if strings.Contains(lower, "select ") && strings.Contains(lower, "+") {
		findings = append(findings, analysis.Finding{
			Type:        "SQL Injection",
			Severity:    "high",
			Line:        "n/a",
			Description: "SQL query appears to be built by string concatenation.",
			Suggestion:  "Use parameterized queries or a query builder.",
		})
	}
	if strings.Contains(lower, "password") || strings.Contains(lower, "secret") {
		findings = append(findings, analysis.Finding{
			Type:        "Secret Leakage",
			Severity:    "medium",
			Line:        "n/a",
			Description: "A credential-looking literal is present in the source.",
			Suggestion:  "Load secrets from the environment or a secret manager.",
		})
	}
	if findings == nil {
		findings = []analysis.Finding{}
	}

	out, err := json.Marshal(map[string]any{"vulnerabilities": findings})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
