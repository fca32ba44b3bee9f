package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kilter-intake/internal/dto"
	"github.com/noah-isme/kilter-intake/internal/models"
	"github.com/noah-isme/kilter-intake/internal/repository"
	appErrors "github.com/noah-isme/kilter-intake/pkg/errors"
	"github.com/noah-isme/kilter-intake/pkg/storage"
)

type videoStoreStub struct {
	saved   map[string][]byte
	saveErr error
}

func newVideoStoreStub() *videoStoreStub {
	return &videoStoreStub{saved: make(map[string][]byte)}
}

func (s *videoStoreStub) SaveStream(name string, r io.Reader) (string, int64, error) {
	if s.saveErr != nil {
		return "", 0, s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	s.saved[name] = data
	return name, int64(len(data)), nil
}

func newTestIntake(log SubmissionLog, store videoStore, now time.Time) *IntakeService {
	svc := NewIntakeService(log, NewQuotaService(log, 10, nil), store, nil, NewMetricsService(), nil, IntakeServiceConfig{MaxVideoSizeMB: 200})
	svc.now = func() time.Time { return now }
	return svc
}

func validRequest() dto.SubmissionRequest {
	return dto.SubmissionRequest{
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		ProblemGrade: "V5-V6",
		ProblemName:  "Crimpy Goodness",
		Notes:        "Heel hook on move 3?",
		Consent:      true,
	}
}

func videoOf(filename string, content []byte) *VideoUpload {
	return &VideoUpload{Filename: filename, Size: int64(len(content)), Content: bytes.NewReader(content)}
}

func requireDetails(t *testing.T, err error, expected ...string) {
	t.Helper()
	require.ErrorIs(t, err, appErrors.ErrValidation)
	appErr := appErrors.FromError(err)
	require.Equal(t, expected, appErr.Details)
}

func TestIntakeSubmitRejectsMissingConsentWithoutSideEffects(t *testing.T) {
	log := &submissionLogStub{}
	store := newVideoStoreStub()
	svc := newTestIntake(log, store, quotaNow)

	req := validRequest()
	req.Consent = false
	receipt, err := svc.Submit(context.Background(), req, videoOf("clip.mp4", []byte("frames")))
	require.Nil(t, receipt)
	requireDetails(t, err, "You must agree to the consent terms")
	require.Zero(t, log.count())
	require.Empty(t, store.saved)
}

func TestIntakeSubmitRejectsOversizedVideo(t *testing.T) {
	log := &submissionLogStub{}
	store := newVideoStoreStub()
	svc := newTestIntake(log, store, quotaNow)

	upload := &VideoUpload{Filename: "clip.mp4", Size: 201 * 1024 * 1024, Content: strings.NewReader("x")}
	_, err := svc.Submit(context.Background(), validRequest(), upload)
	requireDetails(t, err, "File too large (201.0MB). Maximum is 200MB.")
	require.Zero(t, log.count())
	require.Empty(t, store.saved)
}

func TestIntakeSubmitAcceptsExactlyMaxSize(t *testing.T) {
	log := &submissionLogStub{}
	svc := newTestIntake(log, newVideoStoreStub(), quotaNow)
	svc.config.MaxVideoSizeMB = 1

	_, err := svc.Submit(context.Background(), validRequest(), videoOf("clip.mp4", make([]byte, 1024*1024)))
	require.NoError(t, err)
	require.Equal(t, 1, log.count())
	require.Equal(t, 1.0, log.rows[0].FileSizeMB)
}

func TestIntakeSubmitCollectsAllProblems(t *testing.T) {
	log := &submissionLogStub{}
	svc := newTestIntake(log, newVideoStoreStub(), quotaNow)

	req := dto.SubmissionRequest{
		Name:         "   ",
		ProblemGrade: "V12",
		Notes:        strings.Repeat("a", 501),
	}
	_, err := svc.Submit(context.Background(), req, nil)
	requireDetails(t, err,
		"Please upload a video",
		"Name and email are required",
		"You must agree to the consent terms",
		"Problem grade must be one of: V0-V2, V3-V4, V5-V6, V7-V8, V9+",
		"Notes must be 500 characters or fewer",
	)
	require.Zero(t, log.count())
}

func TestIntakeSubmitRejectsUnsupportedFormat(t *testing.T) {
	log := &submissionLogStub{}
	svc := newTestIntake(log, newVideoStoreStub(), quotaNow)

	_, err := svc.Submit(context.Background(), validRequest(), videoOf("clip.gif", []byte("gif")))
	requireDetails(t, err, "Video must be one of: mp4, mov, avi, mkv")
}

func TestIntakeSubmitCountsNotesInCharacters(t *testing.T) {
	log := &submissionLogStub{}
	svc := newTestIntake(log, newVideoStoreStub(), quotaNow)

	req := validRequest()
	req.Notes = strings.Repeat("é", 500)
	_, err := svc.Submit(context.Background(), req, videoOf("clip.mp4", []byte("frames")))
	require.NoError(t, err)
}

func TestIntakeSubmitRefusesWhenQuotaFull(t *testing.T) {
	log := &submissionLogStub{}
	for i := 0; i < 10; i++ {
		log.rows = append(log.rows, rowAt(quotaNow.Add(-time.Duration(i)*time.Hour)))
	}
	store := newVideoStoreStub()
	svc := newTestIntake(log, store, quotaNow)

	_, err := svc.Submit(context.Background(), validRequest(), videoOf("clip.mp4", []byte("frames")))
	require.ErrorIs(t, err, appErrors.ErrQuotaExceeded)
	require.Equal(t, 10, log.count())
	require.Empty(t, store.saved)

	status, err := svc.FormStatus(context.Background())
	require.NoError(t, err)
	require.False(t, status.Open)
	require.Zero(t, status.RemainingSlots)
}

func TestIntakeSubmitStorageFailures(t *testing.T) {
	t.Run("video write", func(t *testing.T) {
		log := &submissionLogStub{}
		store := newVideoStoreStub()
		store.saveErr = errors.New("disk full")
		svc := newTestIntake(log, store, quotaNow)

		_, err := svc.Submit(context.Background(), validRequest(), videoOf("clip.mp4", []byte("frames")))
		require.ErrorIs(t, err, appErrors.ErrStorage)
		require.Equal(t, "Upload failed. Please try again or contact support.", appErrors.FromError(err).Message)
		require.Zero(t, log.count())
	})

	t.Run("log append", func(t *testing.T) {
		log := &submissionLogStub{appendErr: errors.New("permission denied")}
		store := newVideoStoreStub()
		svc := newTestIntake(log, store, quotaNow)

		_, err := svc.Submit(context.Background(), validRequest(), videoOf("clip.mp4", []byte("frames")))
		require.ErrorIs(t, err, appErrors.ErrStorage)
		require.Len(t, store.saved, 1)
	})
}

func TestIntakeSubmitEndToEnd(t *testing.T) {
	dir := t.TempDir()
	log := repository.NewCSVSubmissionLog(filepath.Join(dir, "submissions_tracking.csv"), time.UTC)
	store, err := storage.NewLocalStorage(filepath.Join(dir, "videos"))
	require.NoError(t, err)
	now := time.Date(2024, time.March, 13, 9, 30, 5, 0, time.UTC)
	svc := newTestIntake(log, store, now)

	content := bytes.Repeat([]byte{0x1}, 5*1024*1024)
	receipt, err := svc.Submit(context.Background(), dto.SubmissionRequest{
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		ProblemGrade: "V5-V6",
		Consent:      true,
	}, videoOf("clip.mp4", content))
	require.NoError(t, err)
	require.Equal(t, "20240313_093005_jane_doe.mp4", receipt.VideoFilename)
	require.Equal(t, receipt.VideoFilename, receipt.ID)
	require.Equal(t, 9, receipt.RemainingSlots)
	require.NotEmpty(t, receipt.NextSteps)

	rows, err := log.Query(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Jane Doe", rows[0].Name)
	require.Regexp(t, `^\d{8}_\d{6}_jane_doe\.mp4$`, rows[0].VideoFilename)
	require.Equal(t, 5.0, rows[0].FileSizeMB)
	require.False(t, rows[0].HasNotes)
	require.Equal(t, "uploaded", rows[0].Status)

	stored, err := os.ReadFile(store.Path(receipt.VideoFilename))
	require.NoError(t, err)
	require.Len(t, stored, len(content))

	quota := NewQuotaService(log, 10, nil)
	weekly, err := quota.WeeklyCount(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, weekly)
	remaining, err := quota.RemainingSlots(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 9, remaining)
}

func TestIntakeFormStatus(t *testing.T) {
	log := &submissionLogStub{rows: []models.Submission{rowAt(quotaNow)}}
	svc := newTestIntake(log, newVideoStoreStub(), quotaNow)

	status, err := svc.FormStatus(context.Background())
	require.NoError(t, err)
	require.True(t, status.Open)
	require.Equal(t, 9, status.RemainingSlots)
	require.Equal(t, 10, status.WeeklyLimit)
	require.Equal(t, []string{"mp4", "mov", "avi", "mkv"}, status.AcceptedFormats)
	require.Len(t, status.Grades, 5)
	require.Equal(t, 500, status.MaxNotesLength)
	require.Equal(t, time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC), status.NextReset)
}

func TestGenerateVideoFilename(t *testing.T) {
	ts := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	cases := map[string][3]string{
		"spaces":     {"Jane Doe", "clip.mp4", "20240102_030405_jane_doe.mp4"},
		"uppercase":  {"ALEX", "SEND.MOV", "20240102_030405_alex.mov"},
		"separators": {"a/b\\c", "x.mkv", "20240102_030405_a_b_c.mkv"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc[2], GenerateVideoFilename(ts, tc[0], tc[1]))
		})
	}
}
