package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/jobs"
)

func pendingJob(id domain.JobID, owner string, createdAt time.Time) *domain.AnalysisJob {
	return &domain.AnalysisJob{
		ID:        id,
		OwnerID:   owner,
		Status:    domain.StatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestInsertAndFindByID(t *testing.T) {
	repo := NewJobRepository()
	ctx := context.Background()
	now := time.Now()

	if err := repo.Insert(ctx, pendingJob("j1", "alice", now)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	j, err := repo.FindByID(ctx, "j1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if j.OwnerID != "alice" || j.Status != domain.StatusPending {
		t.Errorf("unexpected job: %+v", j)
	}

	if _, err := repo.FindByID(ctx, "missing"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByIDReturnsCopy(t *testing.T) {
	repo := NewJobRepository()
	ctx := context.Background()
	_ = repo.Insert(ctx, pendingJob("j1", "alice", time.Now()))

	j, _ := repo.FindByID(ctx, "j1")
	j.Status = domain.StatusFailed

	again, _ := repo.FindByID(ctx, "j1")
	if again.Status != domain.StatusPending {
		t.Error("caller mutation leaked into the store")
	}
}

func TestUpdateEnforcesTerminality(t *testing.T) {
	repo := NewJobRepository()
	ctx := context.Background()
	_ = repo.Insert(ctx, pendingJob("j1", "alice", time.Now()))

	report := &analysis.Report{Summary: analysis.SeverityCounts{Total: 1, High: 1}}
	err := repo.UpdateByJobID(ctx, "j1", domain.Patch{
		Status: domain.StatusCompleted, Result: report, UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("first terminal write: %v", err)
	}

	err = repo.UpdateByJobID(ctx, "j1", domain.Patch{
		Status: domain.StatusFailed, Error: "too late", UpdatedAt: time.Now(),
	})
	if err != domain.ErrTerminal {
		t.Fatalf("expected ErrTerminal, got %v", err)
	}

	j, _ := repo.FindByID(ctx, "j1")
	if j.Status != domain.StatusCompleted || j.Result == nil || j.Error != "" {
		t.Errorf("terminal state was disturbed: %+v", j)
	}
}

func TestUpdateMissingJob(t *testing.T) {
	repo := NewJobRepository()
	err := repo.UpdateByJobID(context.Background(), "ghost", domain.Patch{Status: domain.StatusFailed})
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByOwnerNewestFirst(t *testing.T) {
	repo := NewJobRepository()
	ctx := context.Background()
	base := time.Now()

	_ = repo.Insert(ctx, pendingJob("a", "alice", base))
	_ = repo.Insert(ctx, pendingJob("b", "alice", base.Add(time.Hour)))
	_ = repo.Insert(ctx, pendingJob("c", "bob", base))

	list, err := repo.FindByOwner(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(list))
	}
	if list[0].ID != "b" || list[1].ID != "a" {
		t.Errorf("wrong order: %s, %s", list[0].ID, list[1].ID)
	}
}

func TestFindByOwnerStableOnEqualTimestamps(t *testing.T) {
	repo := NewJobRepository()
	ctx := context.Background()
	now := time.Now()

	for _, id := range []domain.JobID{"c", "a", "b"} {
		_ = repo.Insert(ctx, pendingJob(id, "alice", now))
	}

	// same creation instant must not mean random order
	for i := 0; i < 10; i++ {
		list, err := repo.FindByOwner(ctx, "alice")
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 jobs, got %d", len(list))
		}
		if list[0].ID != "a" || list[1].ID != "b" || list[2].ID != "c" {
			t.Fatalf("non-deterministic order: %s, %s, %s", list[0].ID, list[1].ID, list[2].ID)
		}
	}
}

func TestConcurrentWritersOnDistinctJobs(t *testing.T) {
	repo := NewJobRepository()
	ctx := context.Background()
	const n = 50

	for i := 0; i < n; i++ {
		_ = repo.Insert(ctx, pendingJob(domain.JobID(fmt.Sprintf("job-%d", i)), "alice", time.Now()))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		id := domain.JobID(fmt.Sprintf("job-%d", i))
		wg.Add(1)
		go func(id domain.JobID) {
			defer wg.Done()
			_ = repo.UpdateByJobID(ctx, id, domain.Patch{Status: domain.StatusCompleted, UpdatedAt: time.Now()})
		}(id)
	}
	wg.Wait()

	list, _ := repo.FindByOwner(ctx, "alice")
	for _, j := range list {
		if j.Status != domain.StatusCompleted {
			t.Errorf("job %s not completed", j.ID)
		}
	}
}
