package service

import (
	"go.uber.org/zap"

	"github.com/nooele2/bell-webapp/config"
	"github.com/nooele2/bell-webapp/internal/model"
	"github.com/nooele2/bell-webapp/internal/repository"
	"github.com/nooele2/bell-webapp/pkg/jwt"
	"github.com/nooele2/bell-webapp/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Schedule   ScheduleService
	Assignment AssignmentService
	BellSound  BellSoundService
	Export     ExportService
	Legacy     LegacyService
}

// NewService 创建 Service 聚合；rdb 为 nil 时不启用 Token 黑名单
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	palette *model.ColorPalette,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(&cfg.Auth, jwtMgr, rdb, logger),
		Schedule:   NewScheduleService(repo, palette, logger),
		Assignment: NewAssignmentService(repo, cfg.Calendar.Location(), logger),
		BellSound:  NewBellSoundService(repo, cfg.Upload.MaxSoundBytes, logger),
		Export:     NewExportService(repo, logger),
		Legacy:     NewLegacyService(repo, cfg.Storage.LegacyDir, palette, logger),
	}
}
