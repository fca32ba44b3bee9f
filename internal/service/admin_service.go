package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/kilter-intake/internal/dto"
	"github.com/noah-isme/kilter-intake/internal/models"
	appErrors "github.com/noah-isme/kilter-intake/pkg/errors"
	"github.com/noah-isme/kilter-intake/pkg/export"
	"github.com/noah-isme/kilter-intake/pkg/storage"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
	videoTokenSubject  = "video"
	weekResetMessage   = "Week counter will reset automatically on Monday"
)

type quotaStatsReader interface {
	Stats(ctx context.Context, now time.Time) (*models.QuotaStats, error)
}

// rawLogSource is implemented by log backends that keep an exportable file.
type rawLogSource interface {
	OpenRaw(ctx context.Context) (io.ReadCloser, int64, error)
}

type artifactStore interface {
	List() ([]storage.FileInfo, error)
	Open(name string) (*os.File, error)
}

type downloadSigner interface {
	Generate(subject, name string) (string, time.Time, error)
	Parse(token string) (string, string, time.Time, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, summary []string) ([]byte, error)
}

// AdminServiceConfig configures admin reporting.
type AdminServiceConfig struct {
	// DownloadPath is the route serving signed artifact downloads, e.g. /api/v1/videos/download.
	DownloadPath string
	// Location renders exported timestamps; time.Local when nil.
	Location *time.Location
}

// LogExport is a downloadable copy of the submission log.
type LogExport struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.ReadCloser
}

// ArtifactStream is an opened stored video.
type ArtifactStream struct {
	Name        string
	ContentType string
	Size        int64
	ModifiedAt  time.Time
	Content     io.ReadCloser
}

// AdminService serves the password-gated reporting view.
type AdminService struct {
	quota  quotaStatsReader
	log    SubmissionLog
	store  artifactStore
	signer downloadSigner
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	config AdminServiceConfig
	now    func() time.Time
}

// NewAdminService constructs an AdminService.
func NewAdminService(quota quotaStatsReader, log SubmissionLog, store artifactStore, signer downloadSigner, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger, cfg AdminServiceConfig) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &AdminService{
		quota:  quota,
		log:    log,
		store:  store,
		signer: signer,
		csv:    csv,
		pdf:    pdf,
		logger: logger,
		config: cfg,
		now:    time.Now,
	}
}

// Stats returns total, weekly and remaining counts.
func (s *AdminService) Stats(ctx context.Context) (*models.QuotaStats, error) {
	return s.quota.Stats(ctx, s.now())
}

// Recent returns the newest limit rows, newest first. limit defaults to 10 and is capped at 100.
func (s *AdminService) Recent(ctx context.Context, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	rows, err := s.log.Query(ctx, models.AllSubmissions)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read submission log")
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.After(rows[j].Timestamp)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// ExportLog returns the full submission log as CSV. The caller closes Content.
func (s *AdminService) ExportLog(ctx context.Context) (*LogExport, error) {
	filename := fmt.Sprintf("kilter_submissions_%s.csv", s.now().Format("20060102"))

	if raw, ok := s.log.(rawLogSource); ok {
		content, size, err := raw.OpenRaw(ctx)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "No submissions yet")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open submission log")
		}
		return &LogExport{Filename: filename, ContentType: "text/csv", Size: size, Content: content}, nil
	}

	rows, err := s.log.Query(ctx, models.AllSubmissions)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read submission log")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No submissions yet")
	}
	payload, err := s.csv.Render(s.dataset(rows))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render submission log")
	}
	return &LogExport{
		Filename:    filename,
		ContentType: "text/csv",
		Size:        int64(len(payload)),
		Content:     io.NopCloser(bytes.NewReader(payload)),
	}, nil
}

// ExportSummaryPDF renders the counts and the most recent rows as a PDF report.
func (s *AdminService) ExportSummaryPDF(ctx context.Context) ([]byte, string, error) {
	now := s.now()
	stats, err := s.quota.Stats(ctx, now)
	if err != nil {
		return nil, "", err
	}
	recent, err := s.Recent(ctx, defaultRecentLimit)
	if err != nil {
		return nil, "", err
	}
	summary := []string{
		fmt.Sprintf("Generated: %s", now.In(s.config.Location).Format("2006-01-02 15:04")),
		fmt.Sprintf("Total submissions: %d", stats.Total),
		fmt.Sprintf("This week: %d", stats.ThisWeek),
		fmt.Sprintf("Remaining slots: %d of %d", stats.Remaining, stats.WeeklyLimit),
		fmt.Sprintf("Next reset: %s", stats.NextReset.Format("Mon 2006-01-02")),
	}
	payload, err := s.pdf.Render(s.dataset(recent), "Kilter Intake Summary", summary)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render summary")
	}
	return payload, fmt.Sprintf("kilter_summary_%s.pdf", now.Format("20060102")), nil
}

// ListArtifacts lists stored videos with a signed download URL each.
func (s *AdminService) ListArtifacts(ctx context.Context) ([]models.Artifact, error) {
	files, err := s.store.List()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list videos")
	}
	artifacts := make([]models.Artifact, 0, len(files))
	for _, file := range files {
		artifact := models.Artifact{
			Name:        file.Name,
			SizeBytes:   file.SizeBytes,
			SizeMB:      float64(file.SizeBytes) / bytesPerMB,
			ModifiedAt:  file.ModTime,
			ContentType: models.VideoContentType(file.Name),
		}
		if s.signer != nil && s.config.DownloadPath != "" {
			token, expiresAt, err := s.signer.Generate(videoTokenSubject, file.Name)
			if err != nil {
				s.logger.Warn("failed to sign download url", zap.String("name", file.Name), zap.Error(err))
			} else {
				artifact.DownloadURL = s.config.DownloadPath + "?token=" + url.QueryEscape(token)
				artifact.URLExpires = &expiresAt
			}
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

// OpenArtifact opens a stored video by name. The caller closes Content.
func (s *AdminService) OpenArtifact(ctx context.Context, name string) (*ArtifactStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := s.store.Open(name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidName), errors.Is(err, os.ErrNotExist):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "video not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open video")
		}
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat video")
	}
	if !info.Mode().IsRegular() {
		file.Close() //nolint:errcheck
		return nil, appErrors.Clone(appErrors.ErrNotFound, "video not found")
	}
	return &ArtifactStream{
		Name:        name,
		ContentType: models.VideoContentType(name),
		Size:        info.Size(),
		ModifiedAt:  info.ModTime(),
		Content:     file,
	}, nil
}

// ResolveDownload opens the video referenced by a signed download token.
func (s *AdminService) ResolveDownload(ctx context.Context, token string) (*ArtifactStream, error) {
	if s.signer == nil || token == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download link")
	}
	subject, name, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download link")
	}
	if subject != videoTokenSubject {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download link")
	}
	return s.OpenArtifact(ctx, name)
}

// DeleteAllData is always refused; nothing is touched.
func (s *AdminService) DeleteAllData(ctx context.Context, meta models.RequestMeta) error {
	s.logger.Warn("refused request to delete all data", zap.String("ip", meta.IPAddress))
	return appErrors.Clone(appErrors.ErrRefused, "")
}

// ResetWeek changes nothing: the weekly counter rolls over on its own.
func (s *AdminService) ResetWeek(ctx context.Context) *dto.WeekResetResponse {
	return &dto.WeekResetResponse{
		Message:   weekResetMessage,
		NextReset: models.NextWeekStart(s.now()),
	}
}

func (s *AdminService) dataset(rows []models.Submission) export.Dataset {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.LogRecord(models.SubmissionLogColumns, s.config.Location))
	}
	return export.Dataset{Headers: models.SubmissionLogColumns, Rows: records}
}
