package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/jobs"
)

// JobRepository keeps jobs in a process-local map. Used as the `memory`
// driver in dev mode and as the store fake in tests. Terminality is
// enforced here: once a job is completed or failed it never transitions
// again.
type JobRepository struct {
	mu   sync.RWMutex
	jobs map[domain.JobID]*domain.AnalysisJob
}

func NewJobRepository() *JobRepository {
	return &JobRepository{jobs: make(map[domain.JobID]*domain.AnalysisJob)}
}

func (r *JobRepository) Insert(ctx context.Context, j *domain.AnalysisJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r *JobRepository) UpdateByJobID(ctx context.Context, id domain.JobID, p domain.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status.Terminal() {
		return domain.ErrTerminal
	}

	j.Status = p.Status
	j.Result = p.Result
	j.Error = p.Error
	j.UpdatedAt = p.UpdatedAt
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id domain.JobID) (*domain.AnalysisJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *JobRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.AnalysisJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.AnalysisJob
	for _, j := range r.jobs {
		if j.OwnerID == ownerID {
			cp := *j
			out = append(out, &cp)
		}
	}
	// map iteration order is random, so same-instant jobs need a tie-break
	// to keep the listing deterministic
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.After(out[k].CreatedAt)
		}
		return out[i].ID < out[k].ID
	})
	return out, nil
}
