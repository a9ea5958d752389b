package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
)

type stubAnalyzer struct {
	fn func(sourceText string) (string, error)
}

func (s stubAnalyzer) Analyze(ctx context.Context, sourceText string) (string, error) {
	return s.fn(sourceText)
}

func findingsJSON(findings ...domain.Finding) string {
	b, _ := json.Marshal(map[string]any{"vulnerabilities": findings})
	return string(b)
}

func makeFiles(n int) []domain.SourceFile {
	files := make([]domain.SourceFile, n)
	for i := range files {
		files[i] = domain.SourceFile{Path: fmt.Sprintf("f%d.js", i), Content: fmt.Sprintf("content-%d", i)}
	}
	return files
}

func TestRunPreservesFileOrder(t *testing.T) {
	svc := NewService(stubAnalyzer{fn: func(text string) (string, error) {
		return findingsJSON(domain.Finding{Type: "XSS", Severity: "high", Description: text}), nil
	}})

	files := makeFiles(7)
	report, err := svc.Run(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, report.Files, 7)
	for i, fr := range report.Files {
		assert.Equal(t, files[i].Path, fr.Path)
	}
	assert.Equal(t, 7, report.Summary.High)
}

func TestRunBoundsConcurrencyToBatchSize(t *testing.T) {
	var active, peak int64
	var mu sync.Mutex
	barrier := make(chan struct{})
	var calls int64

	svc := NewService(stubAnalyzer{fn: func(text string) (string, error) {
		cur := atomic.AddInt64(&active, 1)
		mu.Lock()
		if cur > peak {
			peak = cur
		}
		mu.Unlock()
		if atomic.AddInt64(&calls, 1) <= batchSize {
			// hold the whole first batch open at once to prove fan-out
			<-barrier
		}
		atomic.AddInt64(&active, -1)
		return findingsJSON(), nil
	}})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Run(context.Background(), makeFiles(8))
		assert.NoError(t, err)
	}()

	close(barrier)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, int64(batchSize), "more than one batch in flight")
	assert.Equal(t, int64(8), calls)
}

func TestRunMalformedResponseYieldsSyntheticFinding(t *testing.T) {
	svc := NewService(stubAnalyzer{fn: func(text string) (string, error) {
		if text == "content-1" {
			return "definitely not json {{", nil
		}
		return findingsJSON(domain.Finding{Type: "SQLi", Severity: "high"}), nil
	}})

	report, err := svc.Run(context.Background(), makeFiles(3))
	require.NoError(t, err)
	require.Len(t, report.Files, 3)

	// siblings in the same batch are unaffected
	assert.Len(t, report.Files[0].Vulnerabilities, 1)
	assert.Equal(t, "SQLi", report.Files[0].Vulnerabilities[0].Type)
	assert.Len(t, report.Files[2].Vulnerabilities, 1)

	// the malformed file degrades to exactly one synthetic finding
	require.Len(t, report.Files[1].Vulnerabilities, 1)
	synthetic := report.Files[1].Vulnerabilities[0]
	assert.Equal(t, "Analysis Error", synthetic.Type)
	assert.Equal(t, string(domain.SeverityInfo), synthetic.Severity)
}

func TestRunTransportFailureAbortsWholeRun(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(stubAnalyzer{fn: func(text string) (string, error) {
		if text == "content-4" {
			return "", boom
		}
		return findingsJSON(), nil
	}})

	report, err := svc.Run(context.Background(), makeFiles(6))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, report, "no partial report on transport failure")
}

func TestRunEmptyVulnerabilityListIsValid(t *testing.T) {
	svc := NewService(stubAnalyzer{fn: func(string) (string, error) {
		return `{"vulnerabilities": []}`, nil
	}})

	report, err := svc.Run(context.Background(), makeFiles(1))
	require.NoError(t, err)
	assert.Empty(t, report.Files[0].Vulnerabilities)
	assert.Equal(t, 0, report.Summary.Total)
}
