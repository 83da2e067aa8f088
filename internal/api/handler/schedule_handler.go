package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nooele2/bell-webapp/internal/dto"
	"github.com/nooele2/bell-webapp/internal/service"
	"github.com/nooele2/bell-webapp/pkg/response"
)

// ScheduleHandler 作息表模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// List 作息表列表（保持存储顺序）
// GET /api/v1/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	schedules, err := h.scheduleSvc.List(c.Request.Context())
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedules)
}

// Create 创建作息表
// POST /api/v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	schedule, err := h.scheduleSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, schedule)
}

// Update 更新作息表
// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	schedule, err := h.scheduleSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// Delete 删除作息表，引用它的排期一并删除
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.scheduleSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, dto.SuccessResponse{Success: true})
}

// SetDefault 设为默认作息表
// PUT /api/v1/schedules/:id/default
func (h *ScheduleHandler) SetDefault(c *gin.Context) {
	schedule, err := h.scheduleSvc.SetDefault(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// handleScheduleError 统一处理作息表模块业务错误
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleFieldMissing):
		response.BadRequest(c, 12001, "名称和类别不能为空")
	case errors.Is(err, service.ErrInvalidBellSound):
		response.BadRequest(c, 12002, "铃声 ID 无效")
	case errors.Is(err, service.ErrSystemScheduleDefault):
		response.BadRequest(c, 12003, "系统作息表不能设为默认")
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 12004, "作息表不存在")
	default:
		response.InternalError(c)
	}
}
