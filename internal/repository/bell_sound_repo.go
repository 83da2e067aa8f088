package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nooele2/bell-webapp/internal/model"
	pkgerrors "github.com/nooele2/bell-webapp/pkg/errors"
)

// ErrBlobNotFound 元数据存在但磁盘上没有对应音频文件
var ErrBlobNotFound = errors.New("铃声文件不存在")

// BellSoundRepository 铃声元数据集合的整体读写
type BellSoundRepository interface {
	List(ctx context.Context) ([]model.BellSound, error)
	SaveAll(ctx context.Context, sounds []model.BellSound) error
}

type bellSoundRepo struct {
	store *jsonCollection[model.BellSound]
}

// NewBellSoundRepo 创建基于 JSON 文件的 BellSoundRepository
func NewBellSoundRepo(path string) BellSoundRepository {
	return &bellSoundRepo{store: newJSONCollection[model.BellSound](path)}
}

func (r *bellSoundRepo) List(ctx context.Context) ([]model.BellSound, error) {
	return r.store.load(ctx)
}

func (r *bellSoundRepo) SaveAll(ctx context.Context, sounds []model.BellSound) error {
	return r.store.save(ctx, sounds)
}

// ── 音频文件 ──

// SoundBlobRepository 以 savedFileName 为键的音频文件存储
type SoundBlobRepository interface {
	Put(ctx context.Context, name string, r io.Reader) (int64, error)
	Get(ctx context.Context, name string) ([]byte, error)
	Remove(ctx context.Context, name string) error
}

type soundBlobRepo struct {
	dir string
}

// NewSoundBlobRepo 创建基于目录的 SoundBlobRepository
func NewSoundBlobRepo(dir string) SoundBlobRepository {
	return &soundBlobRepo{dir: dir}
}

// pathFor 只取文件名部分，避免 ../ 逃逸出铃声目录
func (r *soundBlobRepo) pathFor(name string) string {
	return filepath.Join(r.dir, filepath.Base(name))
}

func (r *soundBlobRepo) Put(ctx context.Context, name string, src io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return 0, fmt.Errorf("%w: 创建铃声目录: %w", pkgerrors.ErrPersistence, err)
	}

	path := r.pathFor(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: 创建 %s: %w", pkgerrors.ErrPersistence, path, err)
	}

	n, err := io.Copy(f, src)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("%w: 写入 %s: %w", pkgerrors.ErrPersistence, path, err)
	}
	return n, nil
}

func (r *soundBlobRepo) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.pathFor(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("%w: 读取铃声文件: %w", pkgerrors.ErrPersistence, err)
	}
	return data, nil
}

// Remove 删除音频文件；文件本就不存在时视为成功
func (r *soundBlobRepo) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(r.pathFor(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: 删除铃声文件: %w", pkgerrors.ErrPersistence, err)
	}
	return nil
}
