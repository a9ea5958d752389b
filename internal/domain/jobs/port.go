package jobs

import "context"

// Repository port (interface untuk persistence)
//
// Lookup by id must be safe under concurrent writers; UpdateByJobID is a
// per-document atomic patch so a completion write for job A never
// interleaves with one for job B.
type Repository interface {
	Insert(ctx context.Context, j *AnalysisJob) error
	UpdateByJobID(ctx context.Context, id JobID, p Patch) error
	FindByID(ctx context.Context, id JobID) (*AnalysisJob, error)
	// FindByOwner returns the owner's jobs, newest first.
	FindByOwner(ctx context.Context, ownerID string) ([]*AnalysisJob, error)
}

// ArtifactStore port (interface untuk penyimpanan artefak)
type ArtifactStore interface {
	PutArchive(ctx context.Context, key, localPath string) (string, error)
	PutReport(ctx context.Context, key string, body []byte) (string, error)
}
