package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nooele2/bell-webapp/internal/model"
	"github.com/nooele2/bell-webapp/internal/repository"
	pkgerrors "github.com/nooele2/bell-webapp/pkg/errors"
)

// ── 跨集合引用错误 ──

var (
	ErrInvalidBellSound = fmt.Errorf("铃声 ID 无效: %w", pkgerrors.ErrInvalidReference)
	ErrInvalidSchedule  = fmt.Errorf("作息表 ID 无效: %w", pkgerrors.ErrInvalidReference)
)

// referentialIntegrity 维护作息表 / 日期排期 / 铃声三个集合之间的弱引用一致性
//
// 规则：
//   - 删除铃声 → 作息表的 bellSoundId 置为 null，排期的 bellSoundId 字段整体移除
//   - 删除作息表 → 删除所有指向它的排期
//   - 悬空引用只会被清除，从不改指到其他记录
//
// 各集合分别写回，中途崩溃可能留下部分清理结果。
type referentialIntegrity struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func newReferentialIntegrity(repo *repository.Repository, logger *zap.Logger) *referentialIntegrity {
	return &referentialIntegrity{repo: repo, logger: logger}
}

// ── 引用校验 ──

// requireBellSound 校验铃声存在
func (m *referentialIntegrity) requireBellSound(ctx context.Context, soundID string) error {
	sounds, err := m.repo.BellSound.List(ctx)
	if err != nil {
		m.logger.Error("读取铃声列表失败", zap.Error(err))
		return err
	}
	for i := range sounds {
		if sounds[i].ID == soundID {
			return nil
		}
	}
	return ErrInvalidBellSound
}

// requireSchedule 校验作息表存在；静铃保留 ID 直接通过
func (m *referentialIntegrity) requireSchedule(ctx context.Context, scheduleID string) error {
	if scheduleID == model.NoBellScheduleID {
		return nil
	}
	schedules, err := m.repo.Schedule.List(ctx)
	if err != nil {
		m.logger.Error("读取作息表失败", zap.Error(err))
		return err
	}
	for i := range schedules {
		if schedules[i].ID == scheduleID {
			return nil
		}
	}
	return ErrInvalidSchedule
}

// ── 级联清理 ──

// scrubBellSound 清除所有对该铃声的引用，只在确有改动时写回对应集合
func (m *referentialIntegrity) scrubBellSound(ctx context.Context, soundID string) (schedulesChanged, assignmentsChanged int, err error) {
	schedules, err := m.repo.Schedule.List(ctx)
	if err != nil {
		m.logger.Error("读取作息表失败", zap.Error(err))
		return 0, 0, err
	}
	for i := range schedules {
		if schedules[i].HasBellSound(soundID) {
			schedules[i].BellSoundID = nil
			schedulesChanged++
		}
	}
	if schedulesChanged > 0 {
		if err := m.repo.Schedule.SaveAll(ctx, schedules); err != nil {
			m.logger.Error("写回作息表失败", zap.String("bell_sound_id", soundID), zap.Error(err))
			return 0, 0, err
		}
		m.logger.Info("已清除作息表中的铃声引用",
			zap.String("bell_sound_id", soundID),
			zap.Int("count", schedulesChanged),
		)
	}

	assignments, err := m.repo.Assignment.List(ctx)
	if err != nil {
		m.logger.Error("读取日期排期失败", zap.Error(err))
		return schedulesChanged, 0, err
	}
	for i := range assignments {
		if assignments[i].BellSoundID != nil && *assignments[i].BellSoundID == soundID {
			assignments[i].BellSoundID = nil
			assignmentsChanged++
		}
	}
	if assignmentsChanged > 0 {
		if err := m.repo.Assignment.SaveAll(ctx, assignments); err != nil {
			m.logger.Error("写回日期排期失败", zap.String("bell_sound_id", soundID), zap.Error(err))
			return schedulesChanged, 0, err
		}
		m.logger.Info("已清除日期排期中的铃声覆盖",
			zap.String("bell_sound_id", soundID),
			zap.Int("count", assignmentsChanged),
		)
	}

	return schedulesChanged, assignmentsChanged, nil
}

// cascadeScheduleDelete 删除所有指向该作息表的排期
func (m *referentialIntegrity) cascadeScheduleDelete(ctx context.Context, scheduleID string) (int, error) {
	assignments, err := m.repo.Assignment.List(ctx)
	if err != nil {
		m.logger.Error("读取日期排期失败", zap.Error(err))
		return 0, err
	}

	kept := assignments[:0]
	for _, a := range assignments {
		if a.ScheduleID != scheduleID {
			kept = append(kept, a)
		}
	}
	removed := len(assignments) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := m.repo.Assignment.SaveAll(ctx, kept); err != nil {
		m.logger.Error("级联删除日期排期失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return 0, err
	}
	m.logger.Info("已级联删除日期排期",
		zap.String("schedule_id", scheduleID),
		zap.Int("count", removed),
	)
	return removed, nil
}
