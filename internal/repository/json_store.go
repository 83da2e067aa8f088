package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/nooele2/bell-webapp/pkg/errors"
)

// jsonCollection 以单个 JSON 数组文件保存的整集合存储
//
// 每次读取加载整个文件，每次写入替换整个文件：先写同目录临时文件，
// fsync 后 rename 覆盖，读者看到的要么是旧内容要么是新内容。
// 不做写锁，并发写入者以最后一次 rename 为准。
type jsonCollection[T any] struct {
	path string
}

func newJSONCollection[T any](path string) *jsonCollection[T] {
	return &jsonCollection[T]{path: path}
}

// exists 文件是否已经存在（用于首次启动判断）
func (c *jsonCollection[T]) exists() bool {
	_, err := os.Stat(c.path)
	return err == nil
}

// load 读取整个集合；文件不存在时返回空集合
func (c *jsonCollection[T]) load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("%w: 读取 %s: %w", pkgerrors.ErrPersistence, c.path, err)
	}

	items := []T{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: 解析 %s: %w", pkgerrors.ErrPersistence, c.path, err)
	}
	return items, nil
}

// save 原子地替换整个集合
func (c *jsonCollection[T]) save(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: 序列化 %s: %w", pkgerrors.ErrPersistence, c.path, err)
	}

	if err := writeFileAtomic(c.path, data); err != nil {
		return fmt.Errorf("%w: 写入 %s: %w", pkgerrors.ErrPersistence, c.path, err)
	}
	return nil
}

// writeFileAtomic 临时文件 + rename
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
