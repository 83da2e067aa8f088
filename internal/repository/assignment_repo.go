package repository

import (
	"context"

	"github.com/nooele2/bell-webapp/internal/model"
)

// AssignmentRepository 日期排期集合的整体读写
type AssignmentRepository interface {
	List(ctx context.Context) ([]model.Assignment, error)
	SaveAll(ctx context.Context, assignments []model.Assignment) error
	Exists() bool
}

type assignmentRepo struct {
	store *jsonCollection[model.Assignment]
}

// NewAssignmentRepo 创建基于 JSON 文件的 AssignmentRepository
func NewAssignmentRepo(path string) AssignmentRepository {
	return &assignmentRepo{store: newJSONCollection[model.Assignment](path)}
}

func (r *assignmentRepo) List(ctx context.Context) ([]model.Assignment, error) {
	return r.store.load(ctx)
}

func (r *assignmentRepo) SaveAll(ctx context.Context, assignments []model.Assignment) error {
	return r.store.save(ctx, assignments)
}

func (r *assignmentRepo) Exists() bool {
	return r.store.exists()
}
