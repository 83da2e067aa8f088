package dto

import "github.com/nooele2/bell-webapp/internal/model"

// ── 作息表模块 DTO ──

// ScheduleRequest 创建 / 更新作息表请求
//
// 名称与类别在 Service 层校验，以便返回统一的 MissingField 错误。
// 指针字段为 nil 表示请求中未提供。
type ScheduleRequest struct {
	Name        string           `json:"name"`
	Mode        string           `json:"mode"`
	IsDefault   *bool            `json:"isDefault"`
	IsSystem    *bool            `json:"isSystem"`
	Color       *model.Color     `json:"color"`
	BellSoundID *string          `json:"bellSoundId"`
	Times       []model.BellTime `json:"times"`
}
