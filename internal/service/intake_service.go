package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kilter-intake/internal/dto"
	"github.com/noah-isme/kilter-intake/internal/models"
	appErrors "github.com/noah-isme/kilter-intake/pkg/errors"
)

const (
	msgVideoMissing   = "Please upload a video"
	msgNameEmail      = "Name and email are required"
	msgConsent        = "You must agree to the consent terms"
	maxNotesLength    = 500
	videoFilenameDate = "20060102_150405"
	bytesPerMB        = 1024 * 1024
)

var (
	msgVideoFormat = "Video must be one of: " + strings.Join(models.VideoExtensions, ", ")
	msgGrade       = "Problem grade must be one of: " + joinGrades(models.Grades)
	msgNotesLength = fmt.Sprintf("Notes must be %d characters or fewer", maxNotesLength)

	consentStatements = []string{
		"Video being used for ML training (anonymized)",
		"Testimonial requests (optional participation)",
		"Follow-up for paid product offers",
	}
	nextSteps = []string{
		"Analysis: we'll review your technique within 24 hours",
		"Feedback: you'll receive personalized tips via email",
		"Follow-up: optionally join the beta group for early access to the full product",
	}
)

// VideoUpload is the uploaded file accompanying a submission.
type VideoUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type videoStore interface {
	SaveStream(name string, r io.Reader) (string, int64, error)
}

type quotaReader interface {
	WeeklyLimit() int
	RemainingSlots(ctx context.Context, now time.Time) (int, error)
}

// IntakeServiceConfig bounds accepted uploads.
type IntakeServiceConfig struct {
	MaxVideoSizeMB float64
}

// IntakeService validates submissions, stores the video and appends the log row.
type IntakeService struct {
	log       SubmissionLog
	quota     quotaReader
	store     videoStore
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	config    IntakeServiceConfig
	now       func() time.Time
	mu        sync.Mutex
}

// NewIntakeService constructs an IntakeService.
func NewIntakeService(log SubmissionLog, quota quotaReader, store videoStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg IntakeServiceConfig) *IntakeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	_ = validate.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		return models.Grade(fl.Field().String()).Valid()
	})
	if cfg.MaxVideoSizeMB <= 0 {
		cfg.MaxVideoSizeMB = 200
	}
	return &IntakeService{
		log:       log,
		quota:     quota,
		store:     store,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		config:    cfg,
		now:       time.Now,
	}
}

// FormStatus reports whether the form is open and what it accepts.
func (s *IntakeService) FormStatus(ctx context.Context) (*dto.IntakeFormStatus, error) {
	now := s.now()
	remaining, err := s.quota.RemainingSlots(ctx, now)
	if err != nil {
		return nil, err
	}
	s.metrics.SetRemainingSlots(remaining)
	return &dto.IntakeFormStatus{
		Open:              remaining > 0,
		RemainingSlots:    remaining,
		WeeklyLimit:       s.quota.WeeklyLimit(),
		NextReset:         models.NextWeekStart(now),
		Grades:            append([]models.Grade(nil), models.Grades...),
		AcceptedFormats:   append([]string(nil), models.VideoExtensions...),
		MaxVideoSizeMB:    s.config.MaxVideoSizeMB,
		MaxNotesLength:    maxNotesLength,
		ConsentStatements: append([]string(nil), consentStatements...),
	}, nil
}

// Submit accepts one submission. Nothing is written unless the quota has room and
// every field is valid.
func (s *IntakeService) Submit(ctx context.Context, req dto.SubmissionRequest, upload *VideoUpload) (*dto.SubmissionReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	remaining, err := s.quota.RemainingSlots(ctx, now)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		s.metrics.RecordRejection(RejectReasonQuota)
		s.logger.Info("submission rejected: weekly quota reached")
		return nil, appErrors.Clone(appErrors.ErrQuotaExceeded, "")
	}

	req = normalizeSubmission(req)
	if problems := s.validate(req, upload); len(problems) > 0 {
		s.metrics.RecordRejection(RejectReasonValidation)
		s.logger.Info("submission rejected: invalid input", zap.Strings("problems", problems))
		return nil, appErrors.WithDetails(appErrors.ErrValidation, problems)
	}

	filename := GenerateVideoFilename(now, req.Name, upload.Filename)
	storedName, written, err := s.store.SaveStream(filename, upload.Content)
	if err != nil {
		s.metrics.RecordRejection(RejectReasonStorage)
		s.logger.Error("failed to store video", zap.String("filename", filename), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}

	submission := &models.Submission{
		Timestamp:     now,
		Name:          req.Name,
		Email:         req.Email,
		ProblemGrade:  models.Grade(req.ProblemGrade),
		ProblemName:   req.ProblemName,
		VideoFilename: storedName,
		FileSizeMB:    math.Round(float64(written)/bytesPerMB*100) / 100,
		HasNotes:      req.Notes != "",
		Status:        models.SubmissionStatusUploaded,
	}
	if err := s.log.Append(ctx, submission); err != nil {
		s.metrics.RecordRejection(RejectReasonStorage)
		s.logger.Error("failed to append submission log; stored video is unlogged",
			zap.String("filename", storedName), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}

	s.metrics.RecordSubmission(req.ProblemGrade, written)
	s.metrics.SetRemainingSlots(remaining - 1)
	s.logger.Info("submission accepted",
		zap.String("filename", storedName),
		zap.String("grade", req.ProblemGrade),
		zap.Float64("file_size_mb", submission.FileSizeMB),
	)

	return &dto.SubmissionReceipt{
		ID:             storedName,
		Name:           req.Name,
		VideoFilename:  storedName,
		SubmittedAt:    now,
		RemainingSlots: remaining - 1,
		NextSteps:      append([]string(nil), nextSteps...),
	}, nil
}

// validate returns every problem with the submission in a stable order.
func (s *IntakeService) validate(req dto.SubmissionRequest, upload *VideoUpload) []string {
	var (
		missingNameEmail bool
		noConsent        bool
		badGrade         bool
		longNotes        bool
	)
	if err := s.validator.Struct(req); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []string{err.Error()}
		}
		for _, fe := range fieldErrs {
			switch fe.StructField() {
			case "Name", "Email":
				missingNameEmail = true
			case "Consent":
				noConsent = true
			case "ProblemGrade":
				badGrade = true
			case "Notes":
				longNotes = true
			}
		}
	}

	problems := make([]string, 0)
	hasVideo := upload != nil && upload.Content != nil && upload.Size > 0
	if !hasVideo {
		problems = append(problems, msgVideoMissing)
	} else if !models.AcceptedVideoExtension(models.VideoExtension(upload.Filename)) {
		problems = append(problems, msgVideoFormat)
	}
	if missingNameEmail {
		problems = append(problems, msgNameEmail)
	}
	if noConsent {
		problems = append(problems, msgConsent)
	}
	if badGrade {
		problems = append(problems, msgGrade)
	}
	if longNotes {
		problems = append(problems, msgNotesLength)
	}
	if hasVideo {
		sizeMB := float64(upload.Size) / bytesPerMB
		if sizeMB > s.config.MaxVideoSizeMB {
			problems = append(problems, fmt.Sprintf("File too large (%.1fMB). Maximum is %sMB.",
				sizeMB, strconv.FormatFloat(s.config.MaxVideoSizeMB, 'f', -1, 64)))
		}
	}
	return problems
}

// GenerateVideoFilename builds YYYYMMDD_HHMMSS_{name}.{ext} where name is lowercased
// with spaces and path separators replaced by underscores.
func GenerateVideoFilename(ts time.Time, submitterName, originalFilename string) string {
	safeName := strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(strings.ToLower(submitterName))
	return fmt.Sprintf("%s_%s.%s", ts.Format(videoFilenameDate), safeName, models.VideoExtension(originalFilename))
}

func normalizeSubmission(req dto.SubmissionRequest) dto.SubmissionRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.ProblemGrade = strings.TrimSpace(req.ProblemGrade)
	req.ProblemName = strings.TrimSpace(req.ProblemName)
	return req
}

func joinGrades(grades []models.Grade) string {
	parts := make([]string, len(grades))
	for i, g := range grades {
		parts[i] = string(g)
	}
	return strings.Join(parts, ", ")
}
