package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kilter-intake/internal/models"
)

const submissionsSchema = `CREATE TABLE IF NOT EXISTS submissions (
	id BIGSERIAL PRIMARY KEY,
	submitted_at TIMESTAMPTZ NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	problem_grade TEXT NOT NULL,
	problem_name TEXT NOT NULL DEFAULT '',
	video_filename TEXT NOT NULL,
	file_size_mb NUMERIC(10,2) NOT NULL,
	has_notes BOOLEAN NOT NULL DEFAULT FALSE,
	status TEXT NOT NULL
)`

// SubmissionRepository is the Postgres-backed submission log. It keeps the same
// contract as the CSV log: append-only rows, full reads filtered in memory.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// EnsureSchema creates the submissions table when missing.
func (r *SubmissionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, submissionsSchema); err != nil {
		return fmt.Errorf("ensure submissions schema: %w", err)
	}
	return nil
}

// Append inserts one submission row.
func (r *SubmissionRepository) Append(ctx context.Context, submission *models.Submission) error {
	if submission == nil {
		return fmt.Errorf("append submission: nil record")
	}
	const query = `INSERT INTO submissions
	(submitted_at, name, email, problem_grade, problem_name, video_filename, file_size_mb, has_notes, status)
	VALUES (:submitted_at, :name, :email, :problem_grade, :problem_name, :video_filename, :file_size_mb, :has_notes, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("append submission: %w", err)
	}
	return nil
}

// Query loads every row in insertion order and returns those matching predicate.
func (r *SubmissionRepository) Query(ctx context.Context, predicate models.SubmissionPredicate) ([]models.Submission, error) {
	if predicate == nil {
		predicate = models.AllSubmissions
	}
	const query = `SELECT submitted_at, name, email, problem_grade, problem_name, video_filename, file_size_mb, has_notes, status
	FROM submissions ORDER BY submitted_at ASC, id ASC`
	var rows []models.Submission
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	result := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		if predicate(row) {
			result = append(result, row)
		}
	}
	return result, nil
}
