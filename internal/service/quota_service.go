package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/kilter-intake/internal/models"
	appErrors "github.com/noah-isme/kilter-intake/pkg/errors"
)

// SubmissionLog is the append-only store of submission rows.
type SubmissionLog interface {
	Append(ctx context.Context, submission *models.Submission) error
	Query(ctx context.Context, predicate models.SubmissionPredicate) ([]models.Submission, error)
}

// QuotaService derives weekly accounting from the submission log. Every call re-reads the log.
type QuotaService struct {
	log    SubmissionLog
	limit  int
	logger *zap.Logger
}

// NewQuotaService constructs a QuotaService. A non-positive limit falls back to the default.
func NewQuotaService(log SubmissionLog, limit int, logger *zap.Logger) *QuotaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = models.DefaultWeeklyLimit
	}
	return &QuotaService{log: log, limit: limit, logger: logger}
}

// WeeklyLimit returns the configured number of submissions per week.
func (s *QuotaService) WeeklyLimit() int {
	return s.limit
}

// WeeklyCount counts rows logged since the start of now's week.
func (s *QuotaService) WeeklyCount(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.query(ctx, models.SubmittedSince(models.WeekStart(now)))
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// RemainingSlots returns max(0, limit - weekly count).
func (s *QuotaService) RemainingSlots(ctx context.Context, now time.Time) (int, error) {
	weekly, err := s.WeeklyCount(ctx, now)
	if err != nil {
		return 0, err
	}
	return s.remaining(weekly), nil
}

// TotalCount counts every row in the log.
func (s *QuotaService) TotalCount(ctx context.Context) (int, error) {
	rows, err := s.query(ctx, models.AllSubmissions)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Stats computes total, weekly and remaining figures from a single read of the log.
func (s *QuotaService) Stats(ctx context.Context, now time.Time) (*models.QuotaStats, error) {
	rows, err := s.query(ctx, models.AllSubmissions)
	if err != nil {
		return nil, err
	}
	since := models.SubmittedSince(models.WeekStart(now))
	weekly := 0
	for _, row := range rows {
		if since(row) {
			weekly++
		}
	}
	return &models.QuotaStats{
		Total:       len(rows),
		ThisWeek:    weekly,
		Remaining:   s.remaining(weekly),
		WeeklyLimit: s.limit,
		WeekStart:   models.WeekStart(now),
		NextReset:   models.NextWeekStart(now),
	}, nil
}

func (s *QuotaService) remaining(weekly int) int {
	if weekly >= s.limit {
		return 0
	}
	return s.limit - weekly
}

func (s *QuotaService) query(ctx context.Context, predicate models.SubmissionPredicate) ([]models.Submission, error) {
	rows, err := s.log.Query(ctx, predicate)
	if err != nil {
		s.logger.Error("failed to read submission log", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read submission log")
	}
	return rows, nil
}
