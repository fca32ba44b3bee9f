package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kilter-intake/internal/dto"
	"github.com/noah-isme/kilter-intake/internal/middleware"
	"github.com/noah-isme/kilter-intake/internal/models"
	"github.com/noah-isme/kilter-intake/internal/service"
	appErrors "github.com/noah-isme/kilter-intake/pkg/errors"
	"github.com/noah-isme/kilter-intake/pkg/response"
)

type adminAuthService interface {
	Login(ctx context.Context, password string, meta models.RequestMeta) (*models.AdminLoginResult, error)
	Logout(ctx context.Context, claims *models.AdminClaims) error
}

type adminService interface {
	Stats(ctx context.Context) (*models.QuotaStats, error)
	Recent(ctx context.Context, limit int) ([]models.Submission, error)
	ExportLog(ctx context.Context) (*service.LogExport, error)
	ExportSummaryPDF(ctx context.Context) ([]byte, string, error)
	ListArtifacts(ctx context.Context) ([]models.Artifact, error)
	OpenArtifact(ctx context.Context, name string) (*service.ArtifactStream, error)
	ResolveDownload(ctx context.Context, token string) (*service.ArtifactStream, error)
	DeleteAllData(ctx context.Context, meta models.RequestMeta) error
	ResetWeek(ctx context.Context) *dto.WeekResetResponse
}

// AdminHandler exposes the password-gated reporting endpoints.
type AdminHandler struct {
	auth    adminAuthService
	service adminService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(auth adminAuthService, service adminService) *AdminHandler {
	return &AdminHandler{auth: auth, service: service}
}

// Login godoc
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.AdminLoginRequest true "Admin password"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid login payload"))
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req.Password, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Logout godoc
// @Summary Admin logout
// @Tags Admin
// @Security BearerAuth
// @Success 204
// @Router /admin/logout [post]
func (h *AdminHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.AdminClaimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Submission counts
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// Submissions godoc
// @Summary Most recent submissions
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Rows to return (default 10, max 100)"
// @Success 200 {object} response.Envelope
// @Router /admin/submissions [get]
func (h *AdminHandler) Submissions(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	rows, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, map[string]interface{}{"count": len(rows)})
}

// Export godoc
// @Summary Download the submission log as CSV
// @Tags Admin
// @Security BearerAuth
// @Produce text/csv
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /admin/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	export, err := h.service.ExportLog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	defer export.Content.Close() //nolint:errcheck
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, export.Size, export.ContentType, export.Content, map[string]string{
		"Content-Disposition": attachment(export.Filename),
	})
}

// ExportPDF godoc
// @Summary Download a PDF summary
// @Tags Admin
// @Security BearerAuth
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /admin/export/pdf [get]
func (h *AdminHandler) ExportPDF(c *gin.Context) {
	payload, filename, err := h.service.ExportSummaryPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", attachment(filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", payload)
}

// Videos godoc
// @Summary List stored videos
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/videos [get]
func (h *AdminHandler) Videos(c *gin.Context) {
	artifacts, err := h.service.ListArtifacts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, artifacts, map[string]interface{}{"count": len(artifacts)})
}

// Video godoc
// @Summary Download a stored video
// @Tags Admin
// @Security BearerAuth
// @Produce octet-stream
// @Param name path string true "Video file name"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /admin/videos/{name} [get]
func (h *AdminHandler) Video(c *gin.Context) {
	stream, err := h.service.OpenArtifact(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveArtifact(c, stream)
}

// Download godoc
// @Summary Download a stored video via signed token
// @Tags Admin
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /videos/download [get]
func (h *AdminHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	stream, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveArtifact(c, stream)
}

// ResetWeek godoc
// @Summary Explain the weekly counter reset
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/week/reset [post]
func (h *AdminHandler) ResetWeek(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ResetWeek(c.Request.Context()))
}

// DeleteAllData godoc
// @Summary Delete all data (always refused)
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Failure 403 {object} response.Envelope
// @Router /admin/data [delete]
func (h *AdminHandler) DeleteAllData(c *gin.Context) {
	if err := h.service.DeleteAllData(c.Request.Context(), requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func serveArtifact(c *gin.Context, stream *service.ArtifactStream) {
	defer stream.Content.Close() //nolint:errcheck
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, stream.Size, stream.ContentType, stream.Content, map[string]string{
		"Content-Disposition": attachment(stream.Name),
	})
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
