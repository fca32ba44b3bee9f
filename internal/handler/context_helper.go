package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kilter-intake/internal/models"
)

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
