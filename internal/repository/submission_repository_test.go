package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kilter-intake/internal/models"
)

var submissionColumns = []string{"submitted_at", "name", "email", "problem_grade", "problem_name", "video_filename", "file_size_mb", "has_notes", "status"}

func newSubmissionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubmissionRepositoryEnsureSchema(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS submissions")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewSubmissionRepository(db).EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryAppend(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()

	ts := time.Date(2025, 1, 6, 10, 15, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO submissions")).
		WithArgs(ts, "Jane Doe", "jane@example.com", models.GradeV5V6, "", "20250106_101500_jane_doe.mp4", 5.0, false, "uploaded").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := NewSubmissionRepository(db).Append(context.Background(), &models.Submission{
		Timestamp:     ts,
		Name:          "Jane Doe",
		Email:         "jane@example.com",
		ProblemGrade:  models.GradeV5V6,
		VideoFilename: "20250106_101500_jane_doe.mp4",
		FileSizeMB:    5,
		Status:        models.SubmissionStatusUploaded,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryQueryFilters(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()

	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(submissionColumns).
		AddRow(monday.Add(-time.Minute), "Sunday", "s@example.com", "V0-V2", "", "a.mp4", 1.5, false, "uploaded").
		AddRow(monday.Add(time.Minute), "Monday", "m@example.com", "V9+", "Roof", "b.mp4", 2.25, true, "uploaded")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT submitted_at, name, email")).WillReturnRows(rows)

	result, err := NewSubmissionRepository(db).Query(context.Background(), models.SubmittedSince(monday))
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "Monday", result[0].Name)
	require.Equal(t, models.GradeV9Up, result[0].ProblemGrade)
	require.True(t, result[0].HasNotes)
	require.NoError(t, mock.ExpectationsWereMet())
}
