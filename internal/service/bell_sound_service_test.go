package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nooele2/bell-webapp/internal/model"
	pkgerrors "github.com/nooele2/bell-webapp/pkg/errors"
)

var fixedUploadTime = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func setupTestBellSoundService(maxBytes int64) (BellSoundService, *mockStores) {
	stores := newMockStores()
	svc := NewBellSoundService(stores.repo, maxBytes, zap.NewNop())
	svc.(*bellSoundService).now = func() time.Time { return fixedUploadTime }
	return svc, stores
}

// ═══════════════════════════════════════════════════════════
// Upload
// ═══════════════════════════════════════════════════════════

func TestUpload_Success(t *testing.T) {
	svc, stores := setupTestBellSoundService(1 << 20)

	sound, err := svc.Upload(context.Background(), "Morning Chime.MP3", strings.NewReader("ID3-audio"))
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}

	wantID := "1740816000000"
	if sound.ID != wantID {
		t.Errorf("期望ID=%s，实际=%s", wantID, sound.ID)
	}
	if sound.Name != "Morning Chime" {
		t.Errorf("名称应为去掉扩展名的文件名，实际=%q", sound.Name)
	}
	if sound.SavedFileName != wantID+"_Morning Chime.MP3" {
		t.Errorf("savedFileName 不符: %q", sound.SavedFileName)
	}
	if sound.Size != int64(len("ID3-audio")) {
		t.Errorf("size 不符: %d", sound.Size)
	}
	if sound.UploadedAt != "2025-03-01T08:00:00Z" {
		t.Errorf("uploadedAt 不符: %q", sound.UploadedAt)
	}
	if _, ok := stores.blobs.files[sound.SavedFileName]; !ok {
		t.Error("音频文件未写入")
	}
	if len(stores.sounds.items) != 1 {
		t.Errorf("元数据未写入: %+v", stores.sounds.items)
	}
}

func TestUpload_SameMillisecondGetsDistinctIDs(t *testing.T) {
	svc, _ := setupTestBellSoundService(0)
	ctx := context.Background()

	a, err := svc.Upload(ctx, "a.wav", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}
	b, err := svc.Upload(ctx, "a.wav", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("第二次 Upload 应成功: %v", err)
	}
	if a.ID == b.ID || a.SavedFileName == b.SavedFileName {
		t.Errorf("同一毫秒的两次上传应得到不同 ID: %s / %s", a.ID, b.ID)
	}
}

func TestUpload_RejectsUnsupportedExtension(t *testing.T) {
	svc, stores := setupTestBellSoundService(0)

	for _, name := range []string{"bell.exe", "bell", "bell.mp3.txt"} {
		_, err := svc.Upload(context.Background(), name, strings.NewReader("x"))
		if !errors.Is(err, pkgerrors.ErrInvalidFormat) {
			t.Errorf("%q 期望 InvalidFormat，实际: %v", name, err)
		}
	}
	if _, err := svc.Upload(context.Background(), "", strings.NewReader("x")); !errors.Is(err, ErrBellSoundFileRequired) {
		t.Errorf("空文件名期望 ErrBellSoundFileRequired，实际: %v", err)
	}
	if len(stores.blobs.files) != 0 || stores.sounds.saves != 0 {
		t.Error("被拒绝的上传不应留下任何数据")
	}
}

func TestUpload_TooLarge(t *testing.T) {
	svc, stores := setupTestBellSoundService(4)

	_, err := svc.Upload(context.Background(), "big.ogg", strings.NewReader("0123456789"))
	if !errors.Is(err, ErrBellSoundTooLarge) {
		t.Fatalf("期望 ErrBellSoundTooLarge，实际: %v", err)
	}
	if len(stores.blobs.files) != 0 {
		t.Error("超限文件应被清理")
	}
	if stores.sounds.saves != 0 {
		t.Error("超限时不应写入元数据")
	}
}

// ═══════════════════════════════════════════════════════════
// Rename / Fetch
// ═══════════════════════════════════════════════════════════

func TestRename(t *testing.T) {
	svc, stores := setupTestBellSoundService(0)
	stores.sounds.items = []model.BellSound{{ID: "1", Name: "old"}}
	ctx := context.Background()

	if _, err := svc.Rename(ctx, "1", "   "); !errors.Is(err, pkgerrors.ErrMissingField) {
		t.Errorf("空名称期望 MissingField，实际: %v", err)
	}
	if _, err := svc.Rename(ctx, "2", "x"); !errors.Is(err, ErrBellSoundNotFound) {
		t.Errorf("期望 ErrBellSoundNotFound，实际: %v", err)
	}

	sound, err := svc.Rename(ctx, "1", "School Bell")
	if err != nil {
		t.Fatalf("Rename 应成功: %v", err)
	}
	if sound.Name != "School Bell" || stores.sounds.items[0].Name != "School Bell" {
		t.Errorf("名称未更新: %+v", stores.sounds.items[0])
	}
}

func TestFetch(t *testing.T) {
	svc, stores := setupTestBellSoundService(0)
	stores.sounds.items = []model.BellSound{
		{ID: "1", FileName: "a.mp3", SavedFileName: "1_a.mp3"},
		{ID: "2", FileName: "b.mp3", SavedFileName: "2_b.mp3"},
	}
	stores.blobs.files["1_a.mp3"] = []byte("audio")
	ctx := context.Background()

	sound, data, err := svc.Fetch(ctx, "1")
	if err != nil {
		t.Fatalf("Fetch 应成功: %v", err)
	}
	if sound.ID != "1" || string(data) != "audio" {
		t.Errorf("内容不符: %+v %q", sound, data)
	}

	if _, _, err := svc.Fetch(ctx, "2"); !errors.Is(err, ErrBellSoundFileMissing) {
		t.Errorf("文件缺失期望 ErrBellSoundFileMissing，实际: %v", err)
	}
	if _, _, err := svc.Fetch(ctx, "3"); !errors.Is(err, ErrBellSoundNotFound) {
		t.Errorf("期望 ErrBellSoundNotFound，实际: %v", err)
	}
}

func TestSoundContentType(t *testing.T) {
	tests := map[string]string{
		"a.mp3":  "audio/mpeg",
		"a.WAV":  "audio/wav",
		"a.ogg":  "audio/ogg",
		"a.m4a":  "audio/mp4",
		"a.aac":  "audio/aac",
		"a.flac": "application/octet-stream",
	}
	for name, want := range tests {
		if got := SoundContentType(name); got != want {
			t.Errorf("SoundContentType(%q)=%q，期望=%q", name, got, want)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// Delete
// ═══════════════════════════════════════════════════════════

func TestDeleteBellSound_ScrubsReferences(t *testing.T) {
	svc, stores := setupTestBellSoundService(0)
	stores.sounds.items = []model.BellSound{
		{ID: "1", SavedFileName: "1_a.mp3"},
		{ID: "2", SavedFileName: "2_b.mp3"},
	}
	stores.blobs.files["1_a.mp3"] = []byte("a")
	stores.blobs.files["2_b.mp3"] = []byte("b")
	stores.schedules.items = []model.Schedule{
		{ID: "s1", BellSoundID: strPtr("1")},
		{ID: "s2", BellSoundID: strPtr("2")},
	}
	stores.assignments.items = []model.Assignment{
		{ID: "a1", ScheduleID: "s1", BellSoundID: strPtr("1")},
		{ID: "a2", ScheduleID: "s2"},
	}

	if err := svc.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}

	if stores.schedules.items[0].BellSoundID != nil {
		t.Error("作息表的铃声引用应置为 null")
	}
	if stores.schedules.items[1].BellSoundID == nil || *stores.schedules.items[1].BellSoundID != "2" {
		t.Error("其他作息表的铃声引用不应变化")
	}
	if stores.assignments.items[0].BellSoundID != nil {
		t.Error("排期的铃声覆盖应被移除")
	}
	if _, ok := stores.blobs.files["1_a.mp3"]; ok {
		t.Error("音频文件应被删除")
	}
	if len(stores.sounds.items) != 1 || stores.sounds.items[0].ID != "2" {
		t.Errorf("元数据不符: %+v", stores.sounds.items)
	}
}

func TestDeleteBellSound_NotFound(t *testing.T) {
	svc, stores := setupTestBellSoundService(0)

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("期望 NotFound，实际: %v", err)
	}
	if stores.schedules.saves != 0 || stores.assignments.saves != 0 || stores.sounds.saves != 0 {
		t.Error("不应有任何写入")
	}
}
