package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kilter-intake/internal/dto"
	"github.com/noah-isme/kilter-intake/internal/service"
	appErrors "github.com/noah-isme/kilter-intake/pkg/errors"
	"github.com/noah-isme/kilter-intake/pkg/response"
)

type intakeService interface {
	FormStatus(ctx context.Context) (*dto.IntakeFormStatus, error)
	Submit(ctx context.Context, req dto.SubmissionRequest, upload *service.VideoUpload) (*dto.SubmissionReceipt, error)
}

// IntakeHandler serves the public upload form endpoints.
type IntakeHandler struct {
	service intakeService
}

// NewIntakeHandler constructs the handler.
func NewIntakeHandler(service intakeService) *IntakeHandler {
	return &IntakeHandler{service: service}
}

// FormStatus godoc
// @Summary Intake form status
// @Description Whether the form is open this week and what it accepts
// @Tags Intake
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /intake [get]
func (h *IntakeHandler) FormStatus(c *gin.Context) {
	status, err := h.service.FormStatus(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// Submit godoc
// @Summary Submit a climbing video
// @Tags Intake
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "Video (mp4, mov, avi, mkv)"
// @Param name formData string true "Name"
// @Param email formData string true "Email"
// @Param problem_grade formData string true "Grade bucket"
// @Param problem_name formData string false "Problem name"
// @Param notes formData string false "Notes (max 500 characters)"
// @Param consent formData bool true "Consent to the terms"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /submissions [post]
func (h *IntakeHandler) Submit(c *gin.Context) {
	req := dto.SubmissionRequest{
		Name:         c.PostForm("name"),
		Email:        c.PostForm("email"),
		ProblemGrade: c.PostForm("problem_grade"),
		ProblemName:  c.PostForm("problem_name"),
		Notes:        c.PostForm("notes"),
		Consent:      parseConsent(c.PostForm("consent")),
	}

	var upload *service.VideoUpload
	fileHeader, err := c.FormFile("video")
	switch {
	case err == nil:
		src, openErr := fileHeader.Open()
		if openErr != nil {
			response.Error(c, appErrors.Wrap(openErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
			return
		}
		defer src.Close()
		upload = &service.VideoUpload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Content:  src,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// reported as a missing video alongside any other field problems
	default:
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid multipart payload"))
		return
	}

	receipt, err := h.service.Submit(c.Request.Context(), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, receipt)
}

func parseConsent(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes":
		return true
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}
