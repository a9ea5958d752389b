package jobs

import (
	"time"

	"github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
)

// ID tipe untuk Job
type JobID string

// Status enum
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// OriginKind enum
type OriginKind string

const (
	OriginArchive OriginKind = "archive"
	OriginRepoURL OriginKind = "repo_url"
)

// Origin records where the analyzed code came from. Immutable once set.
type Origin struct {
	Kind    OriginKind `json:"kind"`
	RepoURL string     `json:"repo_url,omitempty"`
	// FileCount is how many eligible source files the scan produced.
	FileCount int `json:"file_count"`
}

// Aggregate Root: AnalysisJob
//
// Invariant: Result and Error are mutually exclusive; exactly one of
// {pending, completed-with-result, failed-with-error} holds at any time.
// A job in a terminal state never transitions again.
type AnalysisJob struct {
	ID        JobID            `json:"id"`
	OwnerID   string           `json:"owner_id"`
	Origin    Origin           `json:"origin"`
	Status    Status           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Result    *analysis.Report `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Patch is a targeted update for one job record, keyed by its ID.
// Store adapters must apply it atomically per document.
type Patch struct {
	Status    Status
	Result    *analysis.Report
	Error     string
	UpdatedAt time.Time
}
