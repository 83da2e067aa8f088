package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nooele2/bell-webapp/internal/dto"
	"github.com/nooele2/bell-webapp/internal/model"
	"github.com/nooele2/bell-webapp/internal/repository"
	pkgerrors "github.com/nooele2/bell-webapp/pkg/errors"
)

// ── 日期排期模块业务错误 ──

var (
	ErrAssignmentNotFound      = fmt.Errorf("日期排期不存在: %w", pkgerrors.ErrNotFound)
	ErrAssignmentFieldsMissing = fmt.Errorf("日期和作息表不能为空: %w", pkgerrors.ErrMissingField)
	ErrInvalidCalendar         = fmt.Errorf("日历文件无法解析: %w", pkgerrors.ErrInvalidFormat)
)

// AssignmentService 日期排期业务接口
//
// 同一日期可以存在多条排期，这里不做唯一性约束。
type AssignmentService interface {
	List(ctx context.Context) ([]model.Assignment, error)
	// CreateMany 为每个日期各建一条排期；先整体校验，任一校验失败则一条都不写
	CreateMany(ctx context.Context, req *dto.CreateAssignmentsRequest) ([]model.Assignment, error)
	Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest) (*model.Assignment, error)
	// Delete 删除不存在的 ID 也视为成功
	Delete(ctx context.Context, id string) error
	// ImportCalendar 把 ICS 日历中的每一天排成指定作息表（默认静铃），
	// 已有相同日期 + 作息表的排期跳过
	ImportCalendar(ctx context.Context, src io.Reader, scheduleID string) ([]model.Assignment, error)
}

type assignmentService struct {
	repo      *repository.Repository
	integrity *referentialIntegrity
	loc       *time.Location
	logger    *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例；loc 用于解析不带时区的日历时间
func NewAssignmentService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) AssignmentService {
	if loc == nil {
		loc = time.Local
	}
	return &assignmentService{
		repo:      repo,
		integrity: newReferentialIntegrity(repo, logger),
		loc:       loc,
		logger:    logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *assignmentService) List(ctx context.Context) ([]model.Assignment, error) {
	assignments, err := s.repo.Assignment.List(ctx)
	if err != nil {
		s.logger.Error("读取日期排期失败", zap.Error(err))
		return nil, err
	}
	return assignments, nil
}

// ────────────────────── CreateMany ──────────────────────

func (s *assignmentService) CreateMany(ctx context.Context, req *dto.CreateAssignmentsRequest) ([]model.Assignment, error) {
	// 1. 校验（不产生任何写入）
	if len(req.Dates) == 0 || req.ScheduleID == "" {
		return nil, ErrAssignmentFieldsMissing
	}
	for _, d := range req.Dates {
		if d == "" {
			return nil, ErrAssignmentFieldsMissing
		}
	}
	if err := s.integrity.requireSchedule(ctx, req.ScheduleID); err != nil {
		return nil, err
	}
	var bellSoundID *string
	if req.BellSoundID != nil && *req.BellSoundID != "" {
		if err := s.integrity.requireBellSound(ctx, *req.BellSoundID); err != nil {
			return nil, err
		}
		v := *req.BellSoundID
		bellSoundID = &v
	}

	// 2. 构造记录
	assignments, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	created := make([]model.Assignment, 0, len(req.Dates))
	for _, date := range req.Dates {
		a := model.Assignment{
			ID:          uuid.New().String(),
			Date:        date,
			ScheduleID:  req.ScheduleID,
			Description: req.Description,
		}
		// 每条记录持有独立副本，避免共享底层数组
		if len(req.CustomTimes) > 0 {
			times := append([]model.BellTime(nil), req.CustomTimes...)
			a.CustomTimes = &times
		}
		if bellSoundID != nil {
			v := *bellSoundID
			a.BellSoundID = &v
		}
		created = append(created, a)
	}

	// 3. 一次性写回
	assignments = append(assignments, created...)
	if err := s.repo.Assignment.SaveAll(ctx, assignments); err != nil {
		s.logger.Error("保存日期排期失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("日期排期已创建",
		zap.String("schedule_id", req.ScheduleID),
		zap.Int("count", len(created)),
	)
	return created, nil
}

// ────────────────────── Update ──────────────────────

func (s *assignmentService) Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest) (*model.Assignment, error) {
	assignments, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range assignments {
		if assignments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrAssignmentNotFound
	}

	// 1. 校验
	if req.Date != nil && *req.Date == "" {
		return nil, ErrAssignmentFieldsMissing
	}
	if req.ScheduleID != nil {
		if *req.ScheduleID == "" {
			return nil, ErrAssignmentFieldsMissing
		}
		if err := s.integrity.requireSchedule(ctx, *req.ScheduleID); err != nil {
			return nil, err
		}
	}
	newSoundID, hasNewSound := req.BellSoundID.Get()
	hasNewSound = hasNewSound && newSoundID != ""
	if hasNewSound {
		if err := s.integrity.requireBellSound(ctx, newSoundID); err != nil {
			return nil, err
		}
	}

	// 2. 应用补丁
	updated := assignments[idx]
	updated.ID = id
	if req.Date != nil {
		updated.Date = *req.Date
	}
	if req.ScheduleID != nil {
		updated.ScheduleID = *req.ScheduleID
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}

	if req.CustomTimes.IsSet() {
		if times, ok := req.CustomTimes.Get(); ok {
			cp := append([]model.BellTime{}, times...)
			updated.CustomTimes = &cp
		} else {
			updated.CustomTimes = nil
		}
	}

	// null 或空字符串都表示移除覆盖，回落到作息表自身的铃声
	if req.BellSoundID.IsSet() {
		if hasNewSound {
			updated.BellSoundID = &newSoundID
		} else {
			updated.BellSoundID = nil
		}
	}

	assignments[idx] = updated
	if err := s.repo.Assignment.SaveAll(ctx, assignments); err != nil {
		s.logger.Error("更新日期排期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &updated, nil
}

// ────────────────────── Delete ──────────────────────

func (s *assignmentService) Delete(ctx context.Context, id string) error {
	assignments, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := make([]model.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(assignments) {
		return nil
	}

	if err := s.repo.Assignment.SaveAll(ctx, kept); err != nil {
		s.logger.Error("删除日期排期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ImportCalendar ──────────────────────

func (s *assignmentService) ImportCalendar(ctx context.Context, src io.Reader, scheduleID string) ([]model.Assignment, error) {
	if scheduleID == "" {
		scheduleID = model.NoBellScheduleID
	}
	if err := s.integrity.requireSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}

	days, err := ParseCalendarDays(src, s.loc)
	if err != nil {
		s.logger.Warn("解析日历失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidCalendar, err)
	}

	assignments, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		if a.ScheduleID == scheduleID {
			taken[a.Date] = true
		}
	}

	created := make([]model.Assignment, 0, len(days))
	for _, d := range days {
		if taken[d.Date] {
			continue
		}
		taken[d.Date] = true
		created = append(created, model.Assignment{
			ID:          uuid.New().String(),
			Date:        d.Date,
			ScheduleID:  scheduleID,
			Description: d.Summary,
		})
	}
	if len(created) == 0 {
		return created, nil
	}

	assignments = append(assignments, created...)
	if err := s.repo.Assignment.SaveAll(ctx, assignments); err != nil {
		s.logger.Error("保存日历导入结果失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("日历已导入",
		zap.String("schedule_id", scheduleID),
		zap.Int("days", len(days)),
		zap.Int("created", len(created)),
	)
	return created, nil
}
