package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kilter-intake/internal/models"
	appErrors "github.com/noah-isme/kilter-intake/pkg/errors"
)

type submissionLogStub struct {
	mu        sync.Mutex
	rows      []models.Submission
	appendErr error
	queryErr  error
	queries   int
}

func (s *submissionLogStub) Append(ctx context.Context, submission *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.rows = append(s.rows, *submission)
	return nil
}

func (s *submissionLogStub) Query(ctx context.Context, predicate models.SubmissionPredicate) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	result := make([]models.Submission, 0)
	for _, row := range s.rows {
		if predicate(row) {
			result = append(result, row)
		}
	}
	return result, nil
}

func (s *submissionLogStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func rowAt(ts time.Time) models.Submission {
	return models.Submission{
		Timestamp:     ts,
		Name:          "Alex",
		Email:         "alex@example.com",
		ProblemGrade:  models.GradeV3V4,
		VideoFilename: ts.Format("20060102_150405") + "_alex.mp4",
		FileSizeMB:    1,
		Status:        models.SubmissionStatusUploaded,
	}
}

// Wednesday 2024-03-13 14:00 UTC.
var quotaNow = time.Date(2024, time.March, 13, 14, 0, 0, 0, time.UTC)

func TestQuotaServiceRemainingSlotsTracksWeeklyCount(t *testing.T) {
	for n := 0; n <= 12; n++ {
		log := &submissionLogStub{}
		for i := 0; i < n; i++ {
			log.rows = append(log.rows, rowAt(quotaNow.Add(-time.Duration(i)*time.Minute)))
		}
		svc := NewQuotaService(log, 10, nil)

		weekly, err := svc.WeeklyCount(context.Background(), quotaNow)
		require.NoError(t, err)
		require.Equal(t, n, weekly)

		remaining, err := svc.RemainingSlots(context.Background(), quotaNow)
		require.NoError(t, err)
		expected := 10 - n
		if expected < 0 {
			expected = 0
		}
		require.Equal(t, expected, remaining, "n=%d", n)
	}
}

func TestQuotaServiceExcludesPreviousWeek(t *testing.T) {
	mondayMorning := time.Date(2024, time.March, 11, 0, 1, 0, 0, time.UTC)
	sundayNight := time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)
	log := &submissionLogStub{rows: []models.Submission{rowAt(sundayNight)}}
	svc := NewQuotaService(log, 10, nil)

	weekly, err := svc.WeeklyCount(context.Background(), mondayMorning)
	require.NoError(t, err)
	require.Zero(t, weekly)

	total, err := svc.TotalCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestQuotaServiceIgnoresUnparseableTimestampsForWeek(t *testing.T) {
	log := &submissionLogStub{rows: []models.Submission{rowAt(quotaNow), {Name: "broken"}}}
	svc := NewQuotaService(log, 10, nil)

	stats, err := svc.Stats(context.Background(), quotaNow)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.ThisWeek)
	require.Equal(t, 9, stats.Remaining)
}

func TestQuotaServiceReadsAreIdempotent(t *testing.T) {
	log := &submissionLogStub{rows: []models.Submission{rowAt(quotaNow), rowAt(quotaNow.Add(-48 * time.Hour))}}
	svc := NewQuotaService(log, 10, nil)

	first, err := svc.Stats(context.Background(), quotaNow)
	require.NoError(t, err)
	second, err := svc.Stats(context.Background(), quotaNow)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 2, log.queries)
	require.Equal(t, 2, log.count())
}

func TestQuotaServiceStatsWindow(t *testing.T) {
	svc := NewQuotaService(&submissionLogStub{}, 0, nil)
	require.Equal(t, models.DefaultWeeklyLimit, svc.WeeklyLimit())

	stats, err := svc.Stats(context.Background(), quotaNow)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), stats.WeekStart)
	require.Equal(t, time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC), stats.NextReset)
	require.Equal(t, 10, stats.Remaining)
}

func TestQuotaServiceWrapsReadFailures(t *testing.T) {
	svc := NewQuotaService(&submissionLogStub{queryErr: errors.New("disk gone")}, 10, nil)

	_, err := svc.RemainingSlots(context.Background(), quotaNow)
	require.Error(t, err)
	require.ErrorIs(t, err, appErrors.ErrInternal)
}
