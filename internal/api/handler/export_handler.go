package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/nooele2/bell-webapp/internal/service"
	"github.com/nooele2/bell-webapp/pkg/response"
)

const (
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	calendarContentType = "text/calendar; charset=utf-8"
	calendarFilename    = "bell-schedule.ics"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// Ringtimes 旧版打铃脚本轮询的作息时间文本（无需认证）
// GET /ringtimes
func (h *ExportHandler) Ringtimes(c *gin.Context) {
	body, err := h.exportSvc.Ringtimes(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Text(c, body)
}

// Ringdates 旧版打铃脚本轮询的日期排期文本（无需认证）
// GET /ringdates
func (h *ExportHandler) Ringdates(c *gin.Context) {
	body, err := h.exportSvc.Ringdates(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Text(c, body)
}

// Workbook 导出 Excel 工作簿
// GET /api/v1/export/workbook
func (h *ExportHandler) Workbook(c *gin.Context) {
	buf, filename, err := h.exportSvc.Workbook(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, 16001, "生成 Excel 文件失败")
		return
	}

	setAttachment(c, filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Calendar 导出 iCalendar 日历
// GET /api/v1/export/calendar.ics
func (h *ExportHandler) Calendar(c *gin.Context) {
	body, err := h.exportSvc.Calendar(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	setAttachment(c, calendarFilename)
	c.Data(http.StatusOK, calendarContentType, []byte(body))
}

// setAttachment 设置下载响应头
func setAttachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}
