package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bryanwahyu/sentinel-ai/internal/application"
	appanalysis "github.com/bryanwahyu/sentinel-ai/internal/application/analysis"
	domanalysis "github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/jobs"
	"github.com/bryanwahyu/sentinel-ai/internal/infra/source"
)

// Role with elevated read access
const RoleAdmin = "admin"

// Principal identifies the authenticated caller.
type Principal struct {
	UserID string
	Role   string
}

// Service implements use-cases untuk AnalysisJob.
// Service is designed to be used concurrently and is thread-safe.
type Service struct {
	Repo      domain.Repository
	Analysis  *appanalysis.Service
	Fetcher   source.RepoFetcher
	Artifacts domain.ArtifactStore // optional; nil disables stashing
	Clock     application.Clock

	// OnJobFailed, when set, is called once for every job that reaches the
	// failed state. Background failures never pass through the HTTP layer,
	// so counting them has to happen here.
	OnJobFailed func()
}

//
// ==== USE CASES ====
//

// Command untuk submit analisa
type SubmitCommand struct {
	OwnerID     string
	ArchivePath string // local path of an uploaded archive
	RepoURL     string // alternative origin: repository URL
}

type SubmitResult struct {
	ID     domain.JobID  `json:"id"`
	Status domain.Status `json:"status"`
}

// Submit extracts and scans the submission synchronously, inserts a pending
// job, and kicks off analysis on a detached goroutine. It returns before any
// inference work begins; errors up to this point are synchronous failures
// and no job record is created for them.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	workDir, err := os.MkdirTemp("", "sentinel-job-*")
	if err != nil {
		return SubmitResult{}, err
	}
	// extraction dirs are private per request and must never outlive it
	defer os.RemoveAll(workDir)

	origin := domain.Origin{Kind: domain.OriginArchive}
	archivePath := cmd.ArchivePath
	if cmd.RepoURL != "" {
		origin = domain.Origin{Kind: domain.OriginRepoURL, RepoURL: cmd.RepoURL}
		archivePath, err = s.Fetcher.FetchArchive(ctx, cmd.RepoURL, workDir)
		if err != nil {
			return SubmitResult{}, err
		}
	}

	srcDir := filepath.Join(workDir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return SubmitResult{}, err
	}
	if err := source.ExtractZip(archivePath, srcDir); err != nil {
		return SubmitResult{}, err
	}

	files, err := source.ScanDir(srcDir)
	if err != nil {
		return SubmitResult{}, err
	}
	if len(files) == 0 {
		return SubmitResult{}, domain.ErrNoSourceFiles
	}

	now := s.Clock.Now()
	origin.FileCount = len(files)
	job := &domain.AnalysisJob{
		ID:        domain.JobID(uuid.New().String()),
		OwnerID:   cmd.OwnerID,
		Origin:    origin,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Insert(ctx, job); err != nil {
		return SubmitResult{}, err
	}

	if s.Artifacts != nil {
		key := fmt.Sprintf("%s/%s/archive.zip", cmd.OwnerID, job.ID)
		if _, aerr := s.Artifacts.PutArchive(ctx, key, archivePath); aerr != nil {
			log.Printf("job %s: archive stash failed: %v", job.ID, aerr)
		}
	}

	// 🚀 jalankan analisa di background, biar jalan sampai selesai
	go s.runAnalysis(job.ID, job.OwnerID, files)

	return SubmitResult{ID: job.ID, Status: domain.StatusPending}, nil
}

// runAnalysis is the detached task body. Its only allowed exits are the two
// terminal-state writes: complete-with-result or fail-with-error. Nothing it
// hits may escape unobserved.
func (s *Service) runAnalysis(id domain.JobID, ownerID string, files []domanalysis.SourceFile) {
	ctx := context.Background()
	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, id, fmt.Sprintf("analysis panic: %v", r))
		}
	}()

	report, err := s.Analysis.Run(ctx, files)
	if err != nil {
		s.fail(ctx, id, err.Error())
		return
	}

	patch := domain.Patch{
		Status:    domain.StatusCompleted,
		Result:    report,
		UpdatedAt: s.Clock.Now(),
	}
	if err := s.Repo.UpdateByJobID(ctx, id, patch); err != nil {
		log.Printf("job %s: completion write failed: %v", id, err)
		return
	}
	log.Printf("job %s: completed (files=%d findings=%d)", id, len(report.Files), report.Summary.Total)

	if s.Artifacts != nil {
		s.stashReport(ctx, id, ownerID, report)
	}
}

func (s *Service) fail(ctx context.Context, id domain.JobID, msg string) {
	patch := domain.Patch{
		Status:    domain.StatusFailed,
		Error:     msg,
		UpdatedAt: s.Clock.Now(),
	}
	if err := s.Repo.UpdateByJobID(ctx, id, patch); err != nil {
		log.Printf("job %s: failure write failed: %v", id, err)
		return
	}
	log.Printf("job %s: failed: %s", id, msg)
	if s.OnJobFailed != nil {
		s.OnJobFailed()
	}
}

func (s *Service) stashReport(ctx context.Context, id domain.JobID, ownerID string, report *domanalysis.Report) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Printf("job %s: report marshal failed: %v", id, err)
		return
	}
	key := fmt.Sprintf("%s/%s/report.json", ownerID, id)
	if _, err := s.Artifacts.PutReport(ctx, key, body); err != nil {
		log.Printf("job %s: report stash failed: %v", id, err)
	}
}

// Get ambil 1 job by id, with ownership check.
func (s *Service) Get(ctx context.Context, id domain.JobID, requester Principal) (*domain.AnalysisJob, error) {
	job, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != requester.UserID && requester.Role != RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return job, nil
}

// ListByOwner ambil semua job milik requester, newest first.
func (s *Service) ListByOwner(ctx context.Context, requester Principal) ([]*domain.AnalysisJob, error) {
	return s.Repo.FindByOwner(ctx, requester.UserID)
}
