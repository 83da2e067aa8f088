package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nooele2/bell-webapp/internal/dto"
	"github.com/nooele2/bell-webapp/internal/service"
	"github.com/nooele2/bell-webapp/pkg/response"
)

// BellSoundHandler 铃声模块 HTTP 处理器
type BellSoundHandler struct {
	bellSoundSvc service.BellSoundService
}

// NewBellSoundHandler 创建 BellSoundHandler
func NewBellSoundHandler(bellSoundSvc service.BellSoundService) *BellSoundHandler {
	return &BellSoundHandler{bellSoundSvc: bellSoundSvc}
}

// List 铃声列表
// GET /api/v1/bell-sounds
func (h *BellSoundHandler) List(c *gin.Context) {
	sounds, err := h.bellSoundSvc.List(c.Request.Context())
	if err != nil {
		h.handleBellSoundError(c, err)
		return
	}

	response.OK(c, sounds)
}

// Upload 上传铃声
// POST /api/v1/bell-sounds (multipart: file)
func (h *BellSoundHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			_ = c.Error(err)
			return
		}
		h.handleBellSoundError(c, service.ErrBellSoundFileRequired)
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer f.Close()

	sound, err := h.bellSoundSvc.Upload(c.Request.Context(), fh.Filename, f)
	if err != nil {
		h.handleBellSoundError(c, err)
		return
	}

	response.Created(c, sound)
}

// Serve 返回铃声音频
// GET /api/v1/bell-sounds/:id
func (h *BellSoundHandler) Serve(c *gin.Context) {
	sound, content, err := h.bellSoundSvc.Fetch(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleBellSoundError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, service.SoundContentType(sound.FileName), content)
}

// Rename 修改铃声显示名称
// PUT /api/v1/bell-sounds/:id
func (h *BellSoundHandler) Rename(c *gin.Context) {
	var req dto.RenameBellSoundRequest
	if !bindJSON(c, &req) {
		return
	}

	sound, err := h.bellSoundSvc.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		h.handleBellSoundError(c, err)
		return
	}

	response.OK(c, sound)
}

// Delete 删除铃声，作息表与排期中的引用一并清除
// DELETE /api/v1/bell-sounds/:id
func (h *BellSoundHandler) Delete(c *gin.Context) {
	if err := h.bellSoundSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleBellSoundError(c, err)
		return
	}

	response.OK(c, dto.SuccessResponse{Success: true})
}

// handleBellSoundError 统一处理铃声模块业务错误
func (h *BellSoundHandler) handleBellSoundError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBellSoundFileRequired):
		response.BadRequest(c, 14001, "未选择文件")
	case errors.Is(err, service.ErrBellSoundNameRequired):
		response.BadRequest(c, 14001, "铃声名称不能为空")
	case errors.Is(err, service.ErrUnsupportedSoundType):
		response.BadRequest(c, 14002, "仅支持 MP3、WAV、OGG、M4A、AAC")
	case errors.Is(err, service.ErrBellSoundTooLarge):
		response.BadRequest(c, 14003, "铃声文件过大")
	case errors.Is(err, service.ErrBellSoundNotFound):
		response.NotFound(c, 14004, "铃声不存在")
	case errors.Is(err, service.ErrBellSoundFileMissing):
		response.NotFound(c, 14005, "铃声文件不存在")
	default:
		response.InternalError(c)
	}
}
