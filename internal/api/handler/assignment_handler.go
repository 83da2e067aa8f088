package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nooele2/bell-webapp/internal/dto"
	"github.com/nooele2/bell-webapp/internal/service"
	"github.com/nooele2/bell-webapp/pkg/response"
)

// AssignmentHandler 日期排期模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
	// fetchICS 按 URL 拉取日历，测试中可替换
	fetchICS func(rawURL string) (io.ReadCloser, error)
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentSvc: assignmentSvc,
		fetchICS:      service.FetchICSContent,
	}
}

// List 排期列表
// GET /api/v1/assignments
func (h *AssignmentHandler) List(c *gin.Context) {
	assignments, err := h.assignmentSvc.List(c.Request.Context())
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignments)
}

// Create 为多个日期批量创建排期
// POST /api/v1/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.CreateAssignmentsRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.assignmentSvc.CreateMany(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, dto.CreateAssignmentsResponse{Success: true, Assignments: created})
}

// Update 部分更新排期
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req dto.UpdateAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	assignment, err := h.assignmentSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// Delete 删除排期，ID 不存在同样返回成功
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.assignmentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, dto.SuccessResponse{Success: true})
}

// ImportCalendar 从 ICS 日历导入排期
// POST /api/v1/assignments/import-ics (multipart: file 或 url，可选 scheduleId)
func (h *AssignmentHandler) ImportCalendar(c *gin.Context) {
	var src io.ReadCloser

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			response.InternalError(c)
			return
		}
		src = f
	} else if isBodyTooLarge(err) {
		_ = c.Error(err)
		return
	} else if rawURL := strings.TrimSpace(c.PostForm("url")); rawURL != "" {
		rc, err := h.fetchICS(rawURL)
		if err != nil {
			response.ErrorWithDetails(c, http.StatusBadGateway, 13006, "获取日历失败", err.Error())
			return
		}
		src = rc
	} else {
		response.BadRequest(c, 13001, "请上传 ICS 文件或提供日历 URL")
		return
	}
	defer src.Close()

	created, err := h.assignmentSvc.ImportCalendar(c.Request.Context(), src, c.PostForm("scheduleId"))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, dto.CreateAssignmentsResponse{Success: true, Assignments: created})
}

// handleAssignmentError 统一处理排期模块业务错误
func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentFieldsMissing):
		response.BadRequest(c, 13001, "日期和作息表不能为空")
	case errors.Is(err, service.ErrInvalidSchedule):
		response.BadRequest(c, 13002, "作息表 ID 无效")
	case errors.Is(err, service.ErrInvalidBellSound):
		response.BadRequest(c, 13003, "铃声 ID 无效")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 13004, "日期排期不存在")
	case errors.Is(err, service.ErrInvalidCalendar):
		response.BadRequest(c, 13005, "日历文件无法解析")
	default:
		response.InternalError(c)
	}
}
