package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/jobs"
)

// JobRepository is the Postgres variant; result is stored as JSONB.
type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Connect buka koneksi Postgres + ping
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (r *JobRepository) Insert(ctx context.Context, j *domain.AnalysisJob) error {
	const q = `
INSERT INTO analysis_jobs
(id, owner_id, origin_kind, repo_url, file_count, status, created_at, updated_at, result, error)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULL,NULL);
`
	_, err := r.db.ExecContext(ctx, q,
		j.ID, j.OwnerID, j.Origin.Kind, j.Origin.RepoURL, j.Origin.FileCount,
		j.Status, j.CreatedAt, j.UpdatedAt,
	)
	return err
}

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
SET status=$1, result=$2, error=NULLIF($3, ''), updated_at=$4
WHERE id=$5 AND status=$6;
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
WHERE id=$1 LIMIT 1;
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
WHERE owner_id=$1 ORDER BY created_at DESC;
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
