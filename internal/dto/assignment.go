package dto

import "github.com/nooele2/bell-webapp/internal/model"

// ── 日期排期模块 DTO ──

// CreateAssignmentsRequest 批量为多个日期指定同一作息表
type CreateAssignmentsRequest struct {
	Dates       []string         `json:"dates"`
	ScheduleID  string           `json:"scheduleId"`
	Description string           `json:"description"`
	CustomTimes []model.BellTime `json:"customTimes"`
	BellSoundID *string          `json:"bellSoundId"`
}

// CreateAssignmentsResponse 批量创建结果
type CreateAssignmentsResponse struct {
	Success     bool               `json:"success"`
	Assignments []model.Assignment `json:"assignments"`
}

// UpdateAssignmentRequest 字段级部分更新
//
// CustomTimes / BellSoundID 为三态：键缺失保持原值，null 删除覆盖，有值则替换。
type UpdateAssignmentRequest struct {
	Date        *string                          `json:"date"`
	ScheduleID  *string                          `json:"scheduleId"`
	Description *string                          `json:"description"`
	CustomTimes model.Optional[[]model.BellTime] `json:"customTimes"`
	BellSoundID model.Optional[string]           `json:"bellSoundId"`
}
