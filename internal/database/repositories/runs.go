// Package repositories contains SQL-backed persistence for workflow runs.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pedrorrivero/qlab/internal/database"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// runsSchema creates the runs table. Results are stored as msgpack blobs so
// that each workflow can persist its own result shape without schema churn.
const runsSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	workflow TEXT NOT NULL,
	status TEXT NOT NULL,
	backend TEXT NOT NULL,
	qubits INTEGER NOT NULL,
	stage TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	result BLOB,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_workflow ON runs(workflow);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run represents a stored workflow run
type Run struct {
	ID        string    `json:"id"`
	Workflow  string    `json:"workflow"`
	Status    string    `json:"status"`
	Backend   string    `json:"backend"`
	Qubits    int       `json:"qubits"`
	Stage     string    `json:"stage,omitempty"`
	Error     string    `json:"error,omitempty"`
	Result    []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DecodeResult unmarshals the stored result blob into out.
func (r *Run) DecodeResult(out interface{}) error {
	if len(r.Result) == 0 {
		return fmt.Errorf("run %s has no result", r.ID)
	}
	return msgpack.Unmarshal(r.Result, out)
}

// RunRepository handles CRUD operations for workflow runs
type RunRepository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRunRepository creates a new run repository and ensures its schema.
func NewRunRepository(db *database.DB, log zerolog.Logger) (*RunRepository, error) {
	if err := db.Migrate(runsSchema); err != nil {
		return nil, fmt.Errorf("failed to migrate runs schema: %w", err)
	}
	return &RunRepository{
		db:  db,
		log: log.With().Str("repository", "runs").Logger(),
	}, nil
}

// Create inserts a new run in the running state
func (r *RunRepository) Create(run *Run) error {
	now := time.Now().Unix()
	_, err := r.db.Exec(`
		INSERT INTO runs (id, workflow, status, backend, qubits, stage, error, result, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, '', NULL, ?, ?)
	`, run.ID, run.Workflow, StatusRunning, run.Backend, run.Qubits, run.Stage, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	run.Status = StatusRunning
	run.CreatedAt = time.Unix(now, 0)
	run.UpdatedAt = run.CreatedAt
	return nil
}

// MarkCompleted stores the msgpack-encoded result and flips the run to completed
func (r *RunRepository) MarkCompleted(id string, result interface{}) error {
	blob, err := msgpack.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode run result: %w", err)
	}

	res, err := r.db.Exec(`
		UPDATE runs SET status = ?, result = ?, updated_at = ? WHERE id = ?
	`, StatusCompleted, blob, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return r.requireRow(res, id)
}

// MarkFailed records the failing stage and error message
func (r *RunRepository) MarkFailed(id, stage, errMsg string) error {
	res, err := r.db.Exec(`
		UPDATE runs SET status = ?, stage = ?, error = ?, updated_at = ? WHERE id = ?
	`, StatusFailed, stage, errMsg, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return r.requireRow(res, id)
}

// Get retrieves a single run by ID
func (r *RunRepository) Get(id string) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT id, workflow, status, backend, qubits, stage, error, result, created_at, updated_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, optionally filtered by workflow.
// A workflow of "" matches everything.
func (r *RunRepository) List(workflow string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, workflow, status, backend, qubits, stage, error, result, created_at, updated_at
		FROM runs
	`
	args := []interface{}{}
	if workflow != "" {
		query += " WHERE workflow = ?"
		args = append(args, workflow)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteOlderThan removes runs created before the cutoff and returns the
// number of deleted rows. The context bounds the delete so a stuck
// maintenance job cannot hold the database.
func (r *RunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		r.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Deleted old runs")
	}
	return deleted, nil
}

func (r *RunRepository) requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var result sql.NullString
	var createdAt, updatedAt int64

	err := s.Scan(
		&run.ID, &run.Workflow, &run.Status, &run.Backend, &run.Qubits,
		&run.Stage, &run.Error, &result, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if result.Valid {
		run.Result = []byte(result.String)
	}
	run.CreatedAt = time.Unix(createdAt, 0)
	run.UpdatedAt = time.Unix(updatedAt, 0)
	return &run, nil
}
