package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nooele2/bell-webapp/internal/dto"
	"github.com/nooele2/bell-webapp/internal/service"
	"github.com/nooele2/bell-webapp/pkg/response"
)

// SystemHandler 健康检查与旧版文件查看
type SystemHandler struct {
	legacySvc service.LegacyService
}

// NewSystemHandler 创建 SystemHandler
func NewSystemHandler(legacySvc service.LegacyService) *SystemHandler {
	return &SystemHandler{legacySvc: legacySvc}
}

// Health 健康检查
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ringtimes, ringdates := h.legacySvc.FilesPresent()
	response.OK(c, dto.HealthResponse{
		Status:          "ok",
		Message:         "Bell schedule API is running",
		RingtimesExists: ringtimes,
		RingdatesExists: ringdates,
	})
}

// LegacyRingtimes 返回旧版 ringtimes 文件原文
// GET /api/v1/legacy/ringtimes
func (h *SystemHandler) LegacyRingtimes(c *gin.Context) {
	content, err := h.legacySvc.RingtimesSource(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrRingtimesNotFound) {
			response.NotFound(c, 17004, "ringtimes 文件不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"content": content})
}
