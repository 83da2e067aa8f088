package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/nooele2/bell-webapp/internal/dto"
	"github.com/nooele2/bell-webapp/internal/model"
	pkgerrors "github.com/nooele2/bell-webapp/pkg/errors"
)

// ── 测试辅助 ──

func setupTestScheduleService() (ScheduleService, *mockStores) {
	stores := newMockStores()
	svc := NewScheduleService(stores.repo, model.DefaultPalette(), zap.NewNop())
	return svc, stores
}

func boolPtr(b bool) *bool { return &b }

// ═══════════════════════════════════════════════════════════
// Create
// ═══════════════════════════════════════════════════════════

func TestCreateSchedule_Success(t *testing.T) {
	svc, stores := setupTestScheduleService()

	sc, err := svc.Create(context.Background(), &dto.ScheduleRequest{
		Name: "Late Start",
		Mode: model.ModeLateStart,
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if sc.ID == "" {
		t.Error("应分配 ID")
	}
	if sc.Color == nil || sc.Color.Name != "Blue" {
		t.Errorf("应按类别填充默认配色，实际=%+v", sc.Color)
	}
	if sc.Times == nil || len(sc.Times) != 0 {
		t.Errorf("未提供 times 时应为空列表，实际=%v", sc.Times)
	}
	if sc.BellSoundID != nil {
		t.Error("未提供铃声时应为 null")
	}
	if len(stores.schedules.items) != 1 {
		t.Errorf("期望集合中1条，实际=%d", len(stores.schedules.items))
	}
}

func TestCreateSchedule_MissingName(t *testing.T) {
	svc, stores := setupTestScheduleService()

	_, err := svc.Create(context.Background(), &dto.ScheduleRequest{Name: "  ", Mode: model.ModeNormal})
	if !errors.Is(err, ErrScheduleFieldMissing) {
		t.Fatalf("期望 ErrScheduleFieldMissing，实际: %v", err)
	}
	if !errors.Is(err, pkgerrors.ErrMissingField) {
		t.Error("应归类为 MissingField")
	}
	if stores.schedules.saves != 0 {
		t.Error("校验失败时不应写入")
	}
}

func TestCreateSchedule_UnknownBellSound(t *testing.T) {
	svc, stores := setupTestScheduleService()

	_, err := svc.Create(context.Background(), &dto.ScheduleRequest{
		Name:        "Normal",
		Mode:        model.ModeNormal,
		BellSoundID: strPtr("nope"),
	})
	if !errors.Is(err, pkgerrors.ErrInvalidReference) {
		t.Fatalf("期望 InvalidReference，实际: %v", err)
	}
	if stores.schedules.saves != 0 {
		t.Error("引用无效时不应写入")
	}
}

func TestCreateSchedule_EmptyBellSoundIsNull(t *testing.T) {
	svc, _ := setupTestScheduleService()

	sc, err := svc.Create(context.Background(), &dto.ScheduleRequest{
		Name:        "Normal",
		Mode:        model.ModeNormal,
		BellSoundID: strPtr(""),
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if sc.BellSoundID != nil {
		t.Errorf("空字符串应存为 null，实际=%q", *sc.BellSoundID)
	}
}

func TestCreateSchedule_DefaultClearsOthers(t *testing.T) {
	svc, stores := setupTestScheduleService()
	stores.schedules.items = []model.Schedule{
		{ID: "old", Name: "Old", Mode: model.ModeNormal, IsDefault: true},
	}

	sc, err := svc.Create(context.Background(), &dto.ScheduleRequest{
		Name:      "New",
		Mode:      model.ModeNormal,
		IsDefault: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	defaults := 0
	for _, s := range stores.schedules.items {
		if s.IsDefault {
			defaults++
			if s.ID != sc.ID {
				t.Errorf("默认作息表应为新建的 %s，实际=%s", sc.ID, s.ID)
			}
		}
	}
	if defaults != 1 {
		t.Errorf("期望恰好1个默认作息表，实际=%d", defaults)
	}
}

func TestCreateSchedule_PersistenceFailure(t *testing.T) {
	svc, stores := setupTestScheduleService()
	stores.schedules.saveErr = errDiskFull

	_, err := svc.Create(context.Background(), &dto.ScheduleRequest{Name: "N", Mode: model.ModeNormal})
	if !errors.Is(err, pkgerrors.ErrPersistence) {
		t.Fatalf("写入失败应返回 ErrPersistence，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Update
// ═══════════════════════════════════════════════════════════

func TestUpdateSchedule_NotFound(t *testing.T) {
	svc, _ := setupTestScheduleService()

	_, err := svc.Update(context.Background(), "missing", &dto.ScheduleRequest{Name: "N", Mode: model.ModeNormal})
	if !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("期望 ErrScheduleNotFound，实际: %v", err)
	}
}

func TestUpdateSchedule_KeepsOmittedFields(t *testing.T) {
	svc, stores := setupTestScheduleService()
	stores.sounds.items = []model.BellSound{{ID: "snd"}}
	stores.schedules.items = []model.Schedule{{
		ID:          "s1",
		Name:        "Normal",
		Mode:        model.ModeNormal,
		IsDefault:   true,
		Color:       &model.Color{Name: "Custom"},
		BellSoundID: strPtr("snd"),
		Times:       []model.BellTime{{Time: "09:00", Description: "1st"}},
	}}

	sc, err := svc.Update(context.Background(), "s1", &dto.ScheduleRequest{Name: "Renamed", Mode: model.ModeNormal})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if sc.ID != "s1" || sc.Name != "Renamed" {
		t.Errorf("ID/名称不符: %+v", sc)
	}
	if len(sc.Times) != 1 || sc.Color.Name != "Custom" || !sc.IsDefault {
		t.Errorf("未提供的 times/color/isDefault 应保留: %+v", sc)
	}
	if sc.BellSoundID != nil {
		t.Error("未提供 bellSoundId 时应置为 null")
	}
}

func TestUpdateSchedule_ModeChangeKeepsColor(t *testing.T) {
	svc, stores := setupTestScheduleService()
	stores.schedules.items = []model.Schedule{{
		ID:    "s1",
		Name:  "Friday",
		Mode:  model.ModeNormal,
		Color: model.DefaultPalette().Ptr(model.ModeNormal),
	}}

	sc, err := svc.Update(context.Background(), "s1", &dto.ScheduleRequest{Name: "Friday", Mode: model.ModeAssembly})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if sc.Mode != model.ModeAssembly || sc.Color == nil || sc.Color.Name != "Yellow" {
		t.Errorf("只改类别时应保留原配色: %+v", sc)
	}
}

func TestUpdateSchedule_ValidatesBellSound(t *testing.T) {
	svc, stores := setupTestScheduleService()
	stores.schedules.items = []model.Schedule{{ID: "s1", Name: "N", Mode: model.ModeNormal}}

	_, err := svc.Update(context.Background(), "s1", &dto.ScheduleRequest{
		Name:        "N",
		Mode:        model.ModeNormal,
		BellSoundID: strPtr("ghost"),
	})
	if !errors.Is(err, ErrInvalidBellSound) {
		t.Fatalf("期望 ErrInvalidBellSound，实际: %v", err)
	}
	if stores.schedules.saves != 0 {
		t.Error("校验失败时不应写入")
	}
}

// ═══════════════════════════════════════════════════════════
// Delete
// ═══════════════════════════════════════════════════════════

func TestDeleteSchedule_CascadesAssignments(t *testing.T) {
	svc, stores := setupTestScheduleService()
	stores.schedules.items = []model.Schedule{
		{ID: "s1", Name: "A", Mode: model.ModeNormal},
		{ID: "s2", Name: "B", Mode: model.ModeBuddy},
	}
	stores.assignments.items = []model.Assignment{
		{ID: "a1", Date: "2025-03-01", ScheduleID: "s1"},
		{ID: "a2", Date: "2025-03-02", ScheduleID: "s2"},
		{ID: "a3", Date: "2025-03-03", ScheduleID: "s1"},
		{ID: "a4", Date: "2025-03-04", ScheduleID: model.NoBellScheduleID},
	}

	if err := svc.Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}

	if len(stores.schedules.items) != 1 || stores.schedules.items[0].ID != "s2" {
		t.Errorf("作息表集合不符: %+v", stores.schedules.items)
	}
	if len(stores.assignments.items) != 2 {
		t.Fatalf("期望剩余2条排期，实际=%d", len(stores.assignments.items))
	}
	for _, a := range stores.assignments.items {
		if a.ScheduleID == "s1" {
			t.Errorf("指向已删除作息表的排期 %s 未被删除", a.ID)
		}
	}
}

func TestDeleteSchedule_NotFound(t *testing.T) {
	svc, stores := setupTestScheduleService()

	err := svc.Delete(context.Background(), "missing")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("期望 NotFound，实际: %v", err)
	}
	if stores.schedules.saves != 0 || stores.assignments.saves != 0 {
		t.Error("不应有任何写入")
	}
}

// ═══════════════════════════════════════════════════════════
// SetDefault / List
// ═══════════════════════════════════════════════════════════

func TestSetDefault_MovesFlag(t *testing.T) {
	svc, stores := setupTestScheduleService()
	stores.schedules.items = []model.Schedule{
		{ID: "s1", Name: "A", Mode: model.ModeNormal, IsDefault: true},
		{ID: "s2", Name: "B", Mode: model.ModeBuddy},
	}

	sc, err := svc.SetDefault(context.Background(), "s2")
	if err != nil {
		t.Fatalf("SetDefault 应成功: %v", err)
	}
	if !sc.IsDefault {
		t.Error("返回的作息表应为默认")
	}
	if stores.schedules.items[0].IsDefault || !stores.schedules.items[1].IsDefault {
		t.Errorf("默认标记未正确转移: %+v", stores.schedules.items)
	}
}

func TestSetDefault_SystemRejected(t *testing.T) {
	svc, stores := setupTestScheduleService()
	stores.schedules.items = []model.Schedule{
		{ID: "sys", Name: "No Bells", Mode: model.ModeNormal, IsSystem: true},
	}

	_, err := svc.SetDefault(context.Background(), "sys")
	if !errors.Is(err, ErrSystemScheduleDefault) {
		t.Fatalf("期望 ErrSystemScheduleDefault，实际: %v", err)
	}
}

func TestListSchedules_NormalizesLegacyRecords(t *testing.T) {
	svc, stores := setupTestScheduleService()
	stores.schedules.items = []model.Schedule{{ID: "1", Name: "Assembly", Mode: model.ModeAssembly}}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if list[0].Color == nil || list[0].Color.Name != "Purple" {
		t.Errorf("缺失的 color 应按类别补齐，实际=%+v", list[0].Color)
	}
	if list[0].Times == nil {
		t.Error("缺失的 times 应补为空列表")
	}
	if stores.schedules.saves != 0 {
		t.Error("List 不应写回")
	}
}
