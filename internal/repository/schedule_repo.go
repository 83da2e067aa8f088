package repository

import (
	"context"

	"github.com/nooele2/bell-webapp/internal/model"
)

// ScheduleRepository 作息表集合的整体读写
type ScheduleRepository interface {
	List(ctx context.Context) ([]model.Schedule, error)
	SaveAll(ctx context.Context, schedules []model.Schedule) error
	Exists() bool
}

type scheduleRepo struct {
	store *jsonCollection[model.Schedule]
}

// NewScheduleRepo 创建基于 JSON 文件的 ScheduleRepository
func NewScheduleRepo(path string) ScheduleRepository {
	return &scheduleRepo{store: newJSONCollection[model.Schedule](path)}
}

func (r *scheduleRepo) List(ctx context.Context) ([]model.Schedule, error) {
	return r.store.load(ctx)
}

func (r *scheduleRepo) SaveAll(ctx context.Context, schedules []model.Schedule) error {
	return r.store.save(ctx, schedules)
}

func (r *scheduleRepo) Exists() bool {
	return r.store.exists()
}
