package ai

import "context"

// Analyzer is the inference collaborator: it inspects one file's source text
// and returns the raw model output, expected to be a JSON object of shape
// {"vulnerabilities": [...]}. Parsing is the caller's concern.
type Analyzer interface {
	Analyze(ctx context.Context, sourceText string) (string, error)
}
