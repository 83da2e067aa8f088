package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nooele2/bell-webapp/internal/dto"
	"github.com/nooele2/bell-webapp/internal/model"
	"github.com/nooele2/bell-webapp/internal/repository"
	pkgerrors "github.com/nooele2/bell-webapp/pkg/errors"
)

// ── 作息表模块业务错误 ──

var (
	ErrScheduleNotFound      = fmt.Errorf("作息表不存在: %w", pkgerrors.ErrNotFound)
	ErrScheduleFieldMissing  = fmt.Errorf("名称和类别不能为空: %w", pkgerrors.ErrMissingField)
	ErrSystemScheduleDefault = fmt.Errorf("系统作息表不能设为默认: %w", pkgerrors.ErrInvalidReference)
)

// ScheduleService 作息表业务接口
type ScheduleService interface {
	List(ctx context.Context) ([]model.Schedule, error)
	Create(ctx context.Context, req *dto.ScheduleRequest) (*model.Schedule, error)
	Update(ctx context.Context, id string, req *dto.ScheduleRequest) (*model.Schedule, error)
	Delete(ctx context.Context, id string) error
	// SetDefault 将指定作息表设为默认，其余全部取消默认
	SetDefault(ctx context.Context, id string) (*model.Schedule, error)
}

type scheduleService struct {
	repo      *repository.Repository
	integrity *referentialIntegrity
	palette   *model.ColorPalette
	logger    *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, palette *model.ColorPalette, logger *zap.Logger) ScheduleService {
	return &scheduleService{
		repo:      repo,
		integrity: newReferentialIntegrity(repo, logger),
		palette:   palette,
		logger:    logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *scheduleService) List(ctx context.Context) ([]model.Schedule, error) {
	schedules, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) Create(ctx context.Context, req *dto.ScheduleRequest) (*model.Schedule, error) {
	if err := validateScheduleRequest(req); err != nil {
		return nil, err
	}
	bellSoundID, err := s.resolveBellSound(ctx, req.BellSoundID)
	if err != nil {
		return nil, err
	}

	schedules, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	schedule := model.Schedule{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Mode:        req.Mode,
		Color:       req.Color,
		BellSoundID: bellSoundID,
		Times:       req.Times,
	}
	if req.IsDefault != nil {
		schedule.IsDefault = *req.IsDefault
	}
	if req.IsSystem != nil {
		schedule.IsSystem = *req.IsSystem
	}
	if schedule.Color == nil {
		schedule.Color = s.palette.Ptr(schedule.Mode)
	}
	if schedule.Times == nil {
		schedule.Times = []model.BellTime{}
	}

	schedules = append(schedules, schedule)
	if schedule.IsDefault {
		clearOtherDefaults(schedules, schedule.ID)
	}

	if err := s.repo.Schedule.SaveAll(ctx, schedules); err != nil {
		s.logger.Error("保存作息表失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("作息表已创建", zap.String("id", schedule.ID), zap.String("name", schedule.Name))
	return &schedule, nil
}

// ────────────────────── Update ──────────────────────

// Update 合并更新：请求中给出的字段覆盖原值，ID 始终取路径参数。
// 未给出的 color / times / isDefault / isSystem 保留原值（只改类别时沿用原配色）；
// bellSoundId 未给出或为空时显式置为 null。
func (s *scheduleService) Update(ctx context.Context, id string, req *dto.ScheduleRequest) (*model.Schedule, error) {
	schedules, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOfSchedule(schedules, id)
	if idx < 0 {
		return nil, ErrScheduleNotFound
	}

	if err := validateScheduleRequest(req); err != nil {
		return nil, err
	}
	bellSoundID, err := s.resolveBellSound(ctx, req.BellSoundID)
	if err != nil {
		return nil, err
	}

	updated := schedules[idx]
	updated.ID = id
	updated.Name = req.Name
	updated.Mode = req.Mode
	updated.BellSoundID = bellSoundID
	if req.Color != nil {
		updated.Color = req.Color
	}
	if updated.Color == nil {
		updated.Color = s.palette.Ptr(updated.Mode)
	}
	if req.Times != nil {
		updated.Times = req.Times
	}
	if req.IsDefault != nil {
		updated.IsDefault = *req.IsDefault
	}
	if req.IsSystem != nil {
		updated.IsSystem = *req.IsSystem
	}

	schedules[idx] = updated
	if updated.IsDefault {
		clearOtherDefaults(schedules, id)
	}

	if err := s.repo.Schedule.SaveAll(ctx, schedules); err != nil {
		s.logger.Error("更新作息表失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &updated, nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除作息表并级联删除指向它的日期排期
func (s *scheduleService) Delete(ctx context.Context, id string) error {
	schedules, err := s.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOfSchedule(schedules, id)
	if idx < 0 {
		return ErrScheduleNotFound
	}

	schedules = append(schedules[:idx], schedules[idx+1:]...)
	if err := s.repo.Schedule.SaveAll(ctx, schedules); err != nil {
		s.logger.Error("删除作息表失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if _, err := s.integrity.cascadeScheduleDelete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("作息表已删除", zap.String("id", id))
	return nil
}

// ────────────────────── SetDefault ──────────────────────

func (s *scheduleService) SetDefault(ctx context.Context, id string) (*model.Schedule, error) {
	schedules, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOfSchedule(schedules, id)
	if idx < 0 {
		return nil, ErrScheduleNotFound
	}
	if schedules[idx].IsSystem {
		return nil, ErrSystemScheduleDefault
	}

	for i := range schedules {
		if schedules[i].IsSystem {
			continue
		}
		schedules[i].IsDefault = i == idx
	}

	if err := s.repo.Schedule.SaveAll(ctx, schedules); err != nil {
		s.logger.Error("设置默认作息表失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	result := schedules[idx]
	return &result, nil
}

// ── 内部辅助方法 ──

// load 读取集合并补齐旧数据缺失的字段
func (s *scheduleService) load(ctx context.Context) ([]model.Schedule, error) {
	schedules, err := s.repo.Schedule.List(ctx)
	if err != nil {
		s.logger.Error("读取作息表失败", zap.Error(err))
		return nil, err
	}
	normalizeSchedules(schedules, s.palette)
	return schedules, nil
}

// resolveBellSound 非空铃声 ID 必须存在；空值统一存为 null
func (s *scheduleService) resolveBellSound(ctx context.Context, id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	if err := s.integrity.requireBellSound(ctx, *id); err != nil {
		return nil, err
	}
	v := *id
	return &v, nil
}

func validateScheduleRequest(req *dto.ScheduleRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Mode) == "" {
		return ErrScheduleFieldMissing
	}
	return nil
}

func normalizeSchedules(schedules []model.Schedule, palette *model.ColorPalette) {
	for i := range schedules {
		if schedules[i].Color == nil {
			schedules[i].Color = palette.Ptr(schedules[i].Mode)
		}
		if schedules[i].Times == nil {
			schedules[i].Times = []model.BellTime{}
		}
	}
}

func clearOtherDefaults(schedules []model.Schedule, keepID string) {
	for i := range schedules {
		if schedules[i].ID != keepID {
			schedules[i].IsDefault = false
		}
	}
}

func indexOfSchedule(schedules []model.Schedule, id string) int {
	for i := range schedules {
		if schedules[i].ID == id {
			return i
		}
	}
	return -1
}
