package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	domai "github.com/bryanwahyu/sentinel-ai/internal/domain/ai"
	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
)

// batchSize bounds concurrent outbound requests to the inference provider.
const batchSize = 3

// Service implements use-case analisa batch file
type Service struct {
	Analyzer domai.Analyzer
}

func NewService(analyzer domai.Analyzer) *Service {
	return &Service{Analyzer: analyzer}
}

// modelResponse is the only shape the pipeline accepts from the model.
type modelResponse struct {
	Vulnerabilities []domain.Finding `json:"vulnerabilities"`
}

// Run partitions files into fixed-size batches, fans out one inference call
// per file inside a batch, and waits for the whole batch to settle before
// starting the next. A transport error from any call aborts the run; a
// response that fails to parse only costs that one file (it gets a single
// synthetic finding instead).
func (s *Service) Run(ctx context.Context, files []domain.SourceFile) (*domain.Report, error) {
	perFile := make([][]domain.Finding, len(files))

	for start := 0; start < len(files); start += batchSize {
		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}

		var wg sync.WaitGroup
		errs := make([]error, end-start)

		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				findings, err := s.analyzeFile(ctx, files[i])
				if err != nil {
					errs[i-start] = err
					return
				}
				perFile[i] = findings
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	report := Aggregate(files, perFile)
	return &report, nil
}

func (s *Service) analyzeFile(ctx context.Context, f domain.SourceFile) ([]domain.Finding, error) {
	raw, err := s.Analyzer.Analyze(ctx, f.Content)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", f.Path, err)
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil || resp.Vulnerabilities == nil {
		// malformed model output: degrade to one synthetic finding rather
		// than failing the batch
		return []domain.Finding{syntheticParseFailure()}, nil
	}
	return resp.Vulnerabilities, nil
}

func syntheticParseFailure() domain.Finding {
	return domain.Finding{
		Type:        "Analysis Error",
		Severity:    string(domain.SeverityInfo),
		Line:        "n/a",
		Description: "The analysis response could not be parsed as structured findings.",
		Suggestion:  "Re-run the analysis for this file.",
	}
}
