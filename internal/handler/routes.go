package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/kilter-intake/internal/middleware"
)

// RegisterRoutes mounts the intake and admin endpoints on api. adminAuth guards the admin group.
func RegisterRoutes(api *gin.RouterGroup, intake *IntakeHandler, admin *AdminHandler, adminAuth gin.HandlerFunc, logger *zap.Logger) {
	api.GET("/intake", intake.FormStatus)
	api.POST("/submissions", intake.Submit)
	api.GET("/videos/download", middleware.Audit(logger, "download_video_link"), admin.Download)

	api.POST("/admin/login", middleware.Audit(logger, "login"), admin.Login)

	protected := api.Group("/admin")
	protected.Use(adminAuth)
	protected.POST("/logout", middleware.Audit(logger, "logout"), admin.Logout)
	protected.GET("/stats", admin.Stats)
	protected.GET("/submissions", admin.Submissions)
	protected.GET("/export", middleware.Audit(logger, "export_log"), admin.Export)
	protected.GET("/export/pdf", middleware.Audit(logger, "export_summary_pdf"), admin.ExportPDF)
	protected.GET("/videos", admin.Videos)
	protected.GET("/videos/:name", middleware.Audit(logger, "download_video"), admin.Video)
	protected.POST("/week/reset", middleware.Audit(logger, "reset_week"), admin.ResetWeek)
	protected.DELETE("/data", middleware.Audit(logger, "delete_all_data"), admin.DeleteAllData)
}
