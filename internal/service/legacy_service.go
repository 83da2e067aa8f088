package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nooele2/bell-webapp/internal/model"
	"github.com/nooele2/bell-webapp/internal/repository"
	pkgerrors "github.com/nooele2/bell-webapp/pkg/errors"
)

// 旧版目录下的文件名
const (
	RingtimesFile = "ringtimes"
	RingdatesFile = "ringdates"
)

// ErrRingtimesNotFound 旧版 ringtimes 文件不存在
var ErrRingtimesNotFound = fmt.Errorf("ringtimes 文件不存在: %w", pkgerrors.ErrNotFound)

// LegacyService 旧版文件相关业务接口
type LegacyService interface {
	// InitDataFiles 首次启动时从旧版文件生成 JSON 集合；集合文件已存在则不动
	InitDataFiles(ctx context.Context) error
	// RingtimesSource 返回旧版 ringtimes 文件原文
	RingtimesSource(ctx context.Context) (string, error)
	// FilesPresent 旧版 ringtimes / ringdates 是否存在
	FilesPresent() (ringtimes, ringdates bool)
}

type legacyService struct {
	repo    *repository.Repository
	dir     string
	palette *model.ColorPalette
	logger  *zap.Logger
}

// NewLegacyService 创建 LegacyService 实例
func NewLegacyService(repo *repository.Repository, legacyDir string, palette *model.ColorPalette, logger *zap.Logger) LegacyService {
	return &legacyService{repo: repo, dir: legacyDir, palette: palette, logger: logger}
}

// DefaultScheduleTemplate 没有旧版数据时的内置默认作息表
func DefaultScheduleTemplate(palette *model.ColorPalette) model.Schedule {
	return model.Schedule{
		ID:        "1",
		Name:      "Normal Schedule",
		Mode:      model.ModeNormal,
		IsDefault: true,
		Color:     palette.Ptr(model.ModeNormal),
		Times: []model.BellTime{
			{Time: "09:00", Description: "1st period"},
			{Time: "10:00", Description: "2nd period"},
			{Time: "10:30", Description: "Morning break"},
			{Time: "11:00", Description: "3rd period"},
			{Time: "12:00", Description: "Lunch break"},
			{Time: "13:00", Description: "4th period"},
			{Time: "14:00", Description: "5th period"},
			{Time: "15:00", Description: "School end"},
		},
	}
}

// ────────────────────── InitDataFiles ──────────────────────

func (s *legacyService) InitDataFiles(ctx context.Context) error {
	if !s.repo.Schedule.Exists() {
		schedules := s.importRingtimes()
		if len(schedules) == 0 {
			schedules = []model.Schedule{DefaultScheduleTemplate(s.palette)}
			s.logger.Info("未找到旧版 ringtimes，使用内置默认作息表")
		} else {
			schedules[0].IsDefault = true
		}
		if err := s.repo.Schedule.SaveAll(ctx, schedules); err != nil {
			s.logger.Error("初始化作息表失败", zap.Error(err))
			return err
		}
		s.logger.Info("作息表已初始化", zap.Int("count", len(schedules)))
	}

	if !s.repo.Assignment.Exists() {
		schedules, err := s.repo.Schedule.List(ctx)
		if err != nil {
			s.logger.Error("读取作息表失败", zap.Error(err))
			return err
		}
		assignments := s.importRingdates(schedules)
		if assignments == nil {
			assignments = []model.Assignment{}
		}
		if err := s.repo.Assignment.SaveAll(ctx, assignments); err != nil {
			s.logger.Error("初始化日期排期失败", zap.Error(err))
			return err
		}
		s.logger.Info("日期排期已初始化", zap.Int("count", len(assignments)))
	}

	return nil
}

// importRingtimes 读取失败只记日志，返回已解析的部分
func (s *legacyService) importRingtimes() []model.Schedule {
	f, err := os.Open(filepath.Join(s.dir, RingtimesFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("打开 ringtimes 失败", zap.Error(err))
		}
		return nil
	}
	defer f.Close()

	schedules, err := ParseRingtimes(f, s.palette)
	if err != nil {
		s.logger.Warn("ringtimes 未能完整读取", zap.Error(err))
	}
	return schedules
}

func (s *legacyService) importRingdates(schedules []model.Schedule) []model.Assignment {
	f, err := os.Open(filepath.Join(s.dir, RingdatesFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("打开 ringdates 失败", zap.Error(err))
		}
		return nil
	}
	defer f.Close()

	dates, err := ParseRingdates(f)
	if err != nil {
		s.logger.Warn("ringdates 未能完整读取", zap.Error(err))
	}

	assignments, unresolved := ResolveLegacyDates(dates, schedules)
	for _, d := range unresolved {
		s.logger.Warn("ringdates 代码无对应作息表，已跳过",
			zap.String("date", d.Date),
			zap.String("code", d.Code),
		)
	}
	return assignments
}

// ────────────────────── RingtimesSource ──────────────────────

func (s *legacyService) RingtimesSource(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, RingtimesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrRingtimesNotFound
		}
		s.logger.Error("读取 ringtimes 失败", zap.Error(err))
		return "", fmt.Errorf("%w: 读取 ringtimes: %w", pkgerrors.ErrPersistence, err)
	}
	return string(data), nil
}

// ────────────────────── FilesPresent ──────────────────────

func (s *legacyService) FilesPresent() (ringtimes, ringdates bool) {
	return fileExists(filepath.Join(s.dir, RingtimesFile)), fileExists(filepath.Join(s.dir, RingdatesFile))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
