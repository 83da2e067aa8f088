package repository

import (
	"path/filepath"

	"github.com/nooele2/bell-webapp/config"
)

// 数据目录下的集合文件名
const (
	SchedulesFile   = "schedules.json"
	AssignmentsFile = "assignments.json"
	BellSoundsFile  = "bell_sounds_meta.json"
)

// Repository 所有 Repository 的聚合入口
//
// 三个集合与音频目录是彼此独立的资源，没有跨资源事务。
type Repository struct {
	Schedule   ScheduleRepository
	Assignment AssignmentRepository
	BellSound  BellSoundRepository
	SoundBlob  SoundBlobRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(cfg *config.StorageConfig) *Repository {
	return &Repository{
		Schedule:   NewScheduleRepo(filepath.Join(cfg.DataDir, SchedulesFile)),
		Assignment: NewAssignmentRepo(filepath.Join(cfg.DataDir, AssignmentsFile)),
		BellSound:  NewBellSoundRepo(filepath.Join(cfg.DataDir, BellSoundsFile)),
		SoundBlob:  NewSoundBlobRepo(cfg.SoundsDir),
	}
}
