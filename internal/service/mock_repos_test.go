package service

import (
	"context"
	"fmt"
	"io"

	"github.com/nooele2/bell-webapp/internal/model"
	"github.com/nooele2/bell-webapp/internal/repository"
	pkgerrors "github.com/nooele2/bell-webapp/pkg/errors"
)

// ── Mock 集合（Schedule / Assignment / BellSound 共用） ──

// mockCollection 内存版整体读写集合；List 返回副本，与文件实现一致
type mockCollection[T any] struct {
	items   []T
	exists  bool
	saves   int
	saveErr error
}

func newMockCollection[T any](items ...T) *mockCollection[T] {
	return &mockCollection[T]{items: items, exists: len(items) > 0}
}

func (m *mockCollection[T]) List(_ context.Context) ([]T, error) {
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *mockCollection[T]) SaveAll(_ context.Context, items []T) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items = append([]T(nil), items...)
	m.exists = true
	m.saves++
	return nil
}

func (m *mockCollection[T]) Exists() bool {
	return m.exists
}

// ── Mock SoundBlobRepository ──

type mockBlobRepo struct {
	files map[string][]byte
}

func newMockBlobRepo() *mockBlobRepo {
	return &mockBlobRepo{files: make(map[string][]byte)}
}

func (m *mockBlobRepo) Put(_ context.Context, name string, r io.Reader) (int64, error) {
	if _, ok := m.files[name]; ok {
		return 0, fmt.Errorf("%w: %s 已存在", pkgerrors.ErrPersistence, name)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.files[name] = data
	return int64(len(data)), nil
}

func (m *mockBlobRepo) Get(_ context.Context, name string) ([]byte, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, repository.ErrBlobNotFound
	}
	return data, nil
}

func (m *mockBlobRepo) Remove(_ context.Context, name string) error {
	delete(m.files, name)
	return nil
}

// ── 组装 ──

type mockStores struct {
	schedules   *mockCollection[model.Schedule]
	assignments *mockCollection[model.Assignment]
	sounds      *mockCollection[model.BellSound]
	blobs       *mockBlobRepo
	repo        *repository.Repository
}

func newMockStores() *mockStores {
	m := &mockStores{
		schedules:   newMockCollection[model.Schedule](),
		assignments: newMockCollection[model.Assignment](),
		sounds:      newMockCollection[model.BellSound](),
		blobs:       newMockBlobRepo(),
	}
	m.repo = &repository.Repository{
		Schedule:   m.schedules,
		Assignment: m.assignments,
		BellSound:  m.sounds,
		SoundBlob:  m.blobs,
	}
	return m
}

var errDiskFull = fmt.Errorf("%w: disk full", pkgerrors.ErrPersistence)

func strPtr(s string) *string { return &s }
