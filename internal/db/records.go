package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-match/internal/matching"
	"github.com/jonathan/talent-match/internal/types"
)

var _ matching.Repository = (*DB)(nil)

// -----------------------------------------------------------------------------
// Record Methods
// -----------------------------------------------------------------------------

// GetJob retrieves a job record by ID
func (db *DB) GetJob(ctx context.Context, id string) (*types.JobRecord, error) {
	var job types.JobRecord
	if err := db.getRecord(ctx, `SELECT record FROM jobs WHERE id = $1`, id, &job); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.NotFoundError{Kind: types.KindJob, ID: id}
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return &job, nil
}

// GetCandidate retrieves a candidate record by ID
func (db *DB) GetCandidate(ctx context.Context, id string) (*types.CandidateRecord, error) {
	var c types.CandidateRecord
	if err := db.getRecord(ctx, `SELECT record FROM candidates WHERE id = $1`, id, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.NotFoundError{Kind: types.KindCandidate, ID: id}
		}
		return nil, fmt.Errorf("failed to get candidate %s: %w", id, err)
	}
	return &c, nil
}

// ListJobs retrieves all job records ordered by ID
func (db *DB) ListJobs(ctx context.Context) ([]*types.JobRecord, error) {
	rows, err := db.pool.Query(ctx, `SELECT record FROM jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*types.JobRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		var job types.JobRecord
		if err := json.Unmarshal(raw, &job); err != nil {
			return nil, fmt.Errorf("failed to decode job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

// ListCandidates retrieves all candidate records ordered by ID
func (db *DB) ListCandidates(ctx context.Context) ([]*types.CandidateRecord, error) {
	rows, err := db.pool.Query(ctx, `SELECT record FROM candidates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*types.CandidateRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		var c types.CandidateRecord
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("failed to decode candidate: %w", err)
		}
		candidates = append(candidates, &c)
	}
	return candidates, rows.Err()
}

// PutJob inserts or replaces a job record
func (db *DB) PutJob(ctx context.Context, job *types.JobRecord) error {
	jsonBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO jobs (id, version, record)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET version = $2, record = $3, updated_at = NOW()`,
		job.ID, job.Version, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}

// PutCandidate inserts or replaces a candidate record
func (db *DB) PutCandidate(ctx context.Context, c *types.CandidateRecord) error {
	jsonBytes, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO candidates (id, version, record)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET version = $2, record = $3, updated_at = NOW()`,
		c.ID, c.Version, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save candidate %s: %w", c.ID, err)
	}
	return nil
}

// DeleteJob deletes a job record and its cached feature sets
func (db *DB) DeleteJob(ctx context.Context, id string) error {
	return db.deleteRecord(ctx, types.KindJob, `DELETE FROM jobs WHERE id = $1`, id)
}

// DeleteCandidate deletes a candidate record and its cached feature sets
func (db *DB) DeleteCandidate(ctx context.Context, id string) error {
	return db.deleteRecord(ctx, types.KindCandidate, `DELETE FROM candidates WHERE id = $1`, id)
}

func (db *DB) getRecord(ctx context.Context, query, id string, dest any) error {
	var raw []byte
	if err := db.pool.QueryRow(ctx, query, id).Scan(&raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

func (db *DB) deleteRecord(ctx context.Context, kind types.RecordKind, query, id string) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	if result.RowsAffected() == 0 {
		return &types.NotFoundError{Kind: kind, ID: id}
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM feature_sets WHERE record_kind = $1 AND record_id = $2`,
		string(kind), id,
	); err != nil {
		return fmt.Errorf("failed to delete feature sets of %s %s: %w", kind, id, err)
	}
	return tx.Commit(ctx)
}
