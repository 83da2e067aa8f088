package handler

import "github.com/nooele2/bell-webapp/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Schedule   *ScheduleHandler
	Assignment *AssignmentHandler
	BellSound  *BellSoundHandler
	Export     *ExportHandler
	System     *SystemHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Schedule:   NewScheduleHandler(svc.Schedule),
		Assignment: NewAssignmentHandler(svc.Assignment),
		BellSound:  NewBellSoundHandler(svc.BellSound),
		Export:     NewExportHandler(svc.Export),
		System:     NewSystemHandler(svc.Legacy),
	}
}
