package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/jobs"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Insert simpan job baru (selalu pending)
func (r *JobRepository) Insert(ctx context.Context, j *domain.AnalysisJob) error {
	const q = `
INSERT INTO analysis_jobs
(id, owner_id, origin_kind, repo_url, file_count, status, created_at, updated_at, result, error)
VALUES (?,?,?,?,?,?,?,?,NULL,NULL);
`
	_, err := r.db.ExecContext(ctx, q,
		j.ID, j.OwnerID, j.Origin.Kind, j.Origin.RepoURL, j.Origin.FileCount,
		j.Status, j.CreatedAt, j.UpdatedAt,
	)
	return err
}

// UpdateByJobID apply terminal patch. The WHERE clause pins the row to the
// pending state so a job that already reached a terminal state is never
// rewritten.
func (r *JobRepository) UpdateByJobID(ctx context.Context, id domain.JobID, p domain.Patch) error {
	var resultJSON any
	if p.Result != nil {
		b, err := json.Marshal(p.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		resultJSON = b
	}

	const q = `
UPDATE analysis_jobs
SET status=?, result=?, error=NULLIF(?, ''), updated_at=?
WHERE id=? AND status=?;
`
	res, err := r.db.ExecContext(ctx, q, p.Status, resultJSON, p.Error, p.UpdatedAt, id, domain.StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// row missing or already terminal; disambiguate for the caller
		if _, ferr := r.FindByID(ctx, id); ferr != nil {
			return ferr
		}
		return domain.ErrTerminal
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id domain.JobID) (*domain.AnalysisJob, error) {
	const q = `
SELECT id, owner_id, origin_kind, repo_url, file_count, status, created_at, updated_at, result, error
FROM analysis_jobs
WHERE id=? LIMIT 1;
`
	j, err := scanJob(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return j, err
}

func (r *JobRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.AnalysisJob, error) {
	const q = `
SELECT id, owner_id, origin_kind, repo_url, file_count, status, created_at, updated_at, result, error
FROM analysis_jobs
WHERE owner_id=? ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AnalysisJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.AnalysisJob, error) {
	var (
		j          domain.AnalysisJob
		repoURL    sql.NullString
		resultJSON []byte
		errMsg     sql.NullString
	)
	if err := row.Scan(
		&j.ID, &j.OwnerID, &j.Origin.Kind, &repoURL, &j.Origin.FileCount,
		&j.Status, &j.CreatedAt, &j.UpdatedAt, &resultJSON, &errMsg,
	); err != nil {
		return nil, err
	}
	j.Origin.RepoURL = repoURL.String
	j.Error = errMsg.String
	if len(resultJSON) > 0 {
		var report analysis.Report
		if err := json.Unmarshal(resultJSON, &report); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		j.Result = &report
	}
	return &j, nil
}
