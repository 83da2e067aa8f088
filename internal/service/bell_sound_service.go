package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nooele2/bell-webapp/internal/model"
	"github.com/nooele2/bell-webapp/internal/repository"
	pkgerrors "github.com/nooele2/bell-webapp/pkg/errors"
)

// ── 铃声模块业务错误 ──

var (
	ErrBellSoundNotFound     = fmt.Errorf("铃声不存在: %w", pkgerrors.ErrNotFound)
	ErrBellSoundFileMissing  = fmt.Errorf("铃声文件不存在: %w", pkgerrors.ErrNotFound)
	ErrBellSoundFileRequired = fmt.Errorf("未选择文件: %w", pkgerrors.ErrMissingField)
	ErrBellSoundNameRequired = fmt.Errorf("铃声名称不能为空: %w", pkgerrors.ErrMissingField)
	ErrUnsupportedSoundType  = fmt.Errorf("仅支持 MP3、WAV、OGG、M4A、AAC: %w", pkgerrors.ErrInvalidFormat)
	ErrBellSoundTooLarge     = fmt.Errorf("铃声文件过大: %w", pkgerrors.ErrInvalidFormat)
)

// 允许上传的扩展名 → 播放时的 Content-Type
var soundContentTypes = map[string]string{
	"mp3": "audio/mpeg",
	"wav": "audio/wav",
	"ogg": "audio/ogg",
	"m4a": "audio/mp4",
	"aac": "audio/aac",
}

// BellSoundService 铃声业务接口
type BellSoundService interface {
	List(ctx context.Context) ([]model.BellSound, error)
	Upload(ctx context.Context, originalName string, content io.Reader) (*model.BellSound, error)
	Rename(ctx context.Context, id, name string) (*model.BellSound, error)
	// Fetch 返回元数据与音频内容
	Fetch(ctx context.Context, id string) (*model.BellSound, []byte, error)
	// Delete 先清除作息表 / 排期中的引用，再删除文件和元数据
	Delete(ctx context.Context, id string) error
}

type bellSoundService struct {
	repo      *repository.Repository
	integrity *referentialIntegrity
	maxBytes  int64
	now       func() time.Time
	logger    *zap.Logger
}

// NewBellSoundService 创建 BellSoundService 实例；maxBytes <= 0 表示不限制大小
func NewBellSoundService(repo *repository.Repository, maxBytes int64, logger *zap.Logger) BellSoundService {
	return &bellSoundService{
		repo:      repo,
		integrity: newReferentialIntegrity(repo, logger),
		maxBytes:  maxBytes,
		now:       time.Now,
		logger:    logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *bellSoundService) List(ctx context.Context) ([]model.BellSound, error) {
	sounds, err := s.repo.BellSound.List(ctx)
	if err != nil {
		s.logger.Error("读取铃声列表失败", zap.Error(err))
		return nil, err
	}
	return sounds, nil
}

// ────────────────────── Upload ──────────────────────

func (s *bellSoundService) Upload(ctx context.Context, originalName string, content io.Reader) (*model.BellSound, error) {
	fileName := filepath.Base(strings.TrimSpace(originalName))
	if fileName == "" || fileName == "." || fileName == string(filepath.Separator) {
		return nil, ErrBellSoundFileRequired
	}
	if _, ok := soundContentTypes[soundExtension(fileName)]; !ok {
		return nil, ErrUnsupportedSoundType
	}

	sounds, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	// 毫秒时间戳作为 ID；同一毫秒内重复上传时顺延
	now := s.now()
	ts := now.UnixMilli()
	for soundIDTaken(sounds, strconv.FormatInt(ts, 10)) {
		ts++
	}
	id := strconv.FormatInt(ts, 10)
	savedName := id + "_" + fileName

	reader := content
	if s.maxBytes > 0 {
		reader = io.LimitReader(content, s.maxBytes+1)
	}
	size, err := s.repo.SoundBlob.Put(ctx, savedName, reader)
	if err != nil {
		s.logger.Error("保存铃声文件失败", zap.String("file", savedName), zap.Error(err))
		return nil, err
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		s.removeBlob(ctx, savedName)
		return nil, ErrBellSoundTooLarge
	}

	sound := model.BellSound{
		ID:            id,
		Name:          strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		FileName:      fileName,
		SavedFileName: savedName,
		Size:          size,
		UploadedAt:    now.Format(time.RFC3339),
	}

	sounds = append(sounds, sound)
	if err := s.repo.BellSound.SaveAll(ctx, sounds); err != nil {
		s.logger.Error("保存铃声元数据失败", zap.String("id", id), zap.Error(err))
		s.removeBlob(ctx, savedName)
		return nil, err
	}

	s.logger.Info("铃声已上传",
		zap.String("id", id),
		zap.String("file", fileName),
		zap.Int64("size", size),
	)
	return &sound, nil
}

// ────────────────────── Rename ──────────────────────

func (s *bellSoundService) Rename(ctx context.Context, id, name string) (*model.BellSound, error) {
	sounds, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOfSound(sounds, id)
	if idx < 0 {
		return nil, ErrBellSoundNotFound
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrBellSoundNameRequired
	}

	sounds[idx].Name = name
	if err := s.repo.BellSound.SaveAll(ctx, sounds); err != nil {
		s.logger.Error("更新铃声名称失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	result := sounds[idx]
	return &result, nil
}

// ────────────────────── Fetch ──────────────────────

func (s *bellSoundService) Fetch(ctx context.Context, id string) (*model.BellSound, []byte, error) {
	sounds, err := s.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	idx := indexOfSound(sounds, id)
	if idx < 0 {
		return nil, nil, ErrBellSoundNotFound
	}
	sound := sounds[idx]

	data, err := s.repo.SoundBlob.Get(ctx, sound.SavedFileName)
	if err != nil {
		if errors.Is(err, repository.ErrBlobNotFound) {
			return nil, nil, ErrBellSoundFileMissing
		}
		s.logger.Error("读取铃声文件失败", zap.String("id", id), zap.Error(err))
		return nil, nil, err
	}

	return &sound, data, nil
}

// ────────────────────── Delete ──────────────────────

func (s *bellSoundService) Delete(ctx context.Context, id string) error {
	sounds, err := s.List(ctx)
	if err != nil {
		return err
	}

	idx := indexOfSound(sounds, id)
	if idx < 0 {
		return ErrBellSoundNotFound
	}
	sound := sounds[idx]

	// 1. 清除引用，保证不留下悬空 ID
	if _, _, err := s.integrity.scrubBellSound(ctx, id); err != nil {
		return err
	}

	// 2. 删除音频文件
	if err := s.repo.SoundBlob.Remove(ctx, sound.SavedFileName); err != nil {
		s.logger.Error("删除铃声文件失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 3. 删除元数据
	sounds = append(sounds[:idx], sounds[idx+1:]...)
	if err := s.repo.BellSound.SaveAll(ctx, sounds); err != nil {
		s.logger.Error("删除铃声元数据失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("铃声已删除", zap.String("id", id))
	return nil
}

// ── 内部辅助方法 ──

func (s *bellSoundService) removeBlob(ctx context.Context, name string) {
	if err := s.repo.SoundBlob.Remove(ctx, name); err != nil {
		s.logger.Warn("清理铃声文件失败", zap.String("file", name), zap.Error(err))
	}
}

// SoundContentType 按扩展名返回音频 MIME 类型
func SoundContentType(fileName string) string {
	if ct, ok := soundContentTypes[soundExtension(fileName)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// soundExtension 最后一个点之后的部分，小写；没有点时为空
func soundExtension(fileName string) string {
	i := strings.LastIndex(fileName, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(fileName[i+1:])
}

func soundIDTaken(sounds []model.BellSound, id string) bool {
	return indexOfSound(sounds, id) >= 0
}

func indexOfSound(sounds []model.BellSound, id string) int {
	for i := range sounds {
		if sounds[i].ID == id {
			return i
		}
	}
	return -1
}
