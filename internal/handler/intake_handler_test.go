package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kilter-intake/internal/dto"
	"github.com/noah-isme/kilter-intake/internal/service"
	appErrors "github.com/noah-isme/kilter-intake/pkg/errors"
)

type intakeServiceMock struct {
	status     *dto.IntakeFormStatus
	receipt    *dto.SubmissionReceipt
	err        error
	lastReq    dto.SubmissionRequest
	lastUpload *service.VideoUpload
	lastBody   []byte
	called     bool
}

func (m *intakeServiceMock) FormStatus(ctx context.Context) (*dto.IntakeFormStatus, error) {
	return m.status, m.err
}

func (m *intakeServiceMock) Submit(ctx context.Context, req dto.SubmissionRequest, upload *service.VideoUpload) (*dto.SubmissionReceipt, error) {
	m.called = true
	m.lastReq = req
	m.lastUpload = upload
	if upload != nil {
		m.lastBody, _ = io.ReadAll(upload.Content)
	}
	return m.receipt, m.err
}

func multipartRequest(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("video", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	req, err := http.NewRequest(http.MethodPost, "/submissions", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestIntakeHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &intakeServiceMock{receipt: &dto.SubmissionReceipt{ID: "20240313_093005_jane_doe.mp4", RemainingSlots: 9}}
	handler := NewIntakeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, map[string]string{
		"name":          "Jane Doe",
		"email":         "jane@example.com",
		"problem_grade": "V5-V6",
		"problem_name":  "Crimpy Goodness",
		"notes":         "heel hook?",
		"consent":       "on",
	}, "clip.mp4", []byte("frames"))

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Jane Doe", mockSvc.lastReq.Name)
	assert.Equal(t, "V5-V6", mockSvc.lastReq.ProblemGrade)
	assert.True(t, mockSvc.lastReq.Consent)
	require.NotNil(t, mockSvc.lastUpload)
	assert.Equal(t, "clip.mp4", mockSvc.lastUpload.Filename)
	assert.Equal(t, int64(6), mockSvc.lastUpload.Size)
	assert.Equal(t, "frames", string(mockSvc.lastBody))

	var payload struct {
		Data dto.SubmissionReceipt `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, 9, payload.Data.RemainingSlots)
}

func TestIntakeHandlerSubmitWithoutVideoDelegatesValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &intakeServiceMock{err: appErrors.WithDetails(appErrors.ErrValidation, []string{"Please upload a video"})}
	handler := NewIntakeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, map[string]string{"name": "Jane"}, "", nil)

	handler.Submit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, mockSvc.called)
	assert.Nil(t, mockSvc.lastUpload)
	assert.False(t, mockSvc.lastReq.Consent)
	assert.Contains(t, w.Body.String(), "Please upload a video")
}

func TestIntakeHandlerSubmitQuotaExceeded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewIntakeHandler(&intakeServiceMock{err: appErrors.Clone(appErrors.ErrQuotaExceeded, "")})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, map[string]string{"consent": "true"}, "clip.mp4", []byte("x"))

	handler.Submit(c)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "QUOTA_EXCEEDED")
}

func TestIntakeHandlerFormStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewIntakeHandler(&intakeServiceMock{status: &dto.IntakeFormStatus{Open: true, RemainingSlots: 4, WeeklyLimit: 10}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/intake", nil)

	handler.FormStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"remaining_slots":4`)
}

func TestParseConsent(t *testing.T) {
	for raw, expected := range map[string]bool{
		"true": true, "on": true, "1": true, "YES": true,
		"": false, "false": false, "off": false, "maybe": false,
	} {
		assert.Equal(t, expected, parseConsent(raw), "raw %q", raw)
	}
}
