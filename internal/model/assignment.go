package model

// NoBellScheduleID 保留的排期 ID：当天静铃，不经过作息表集合
const NoBellScheduleID = "system-no-bell"

// Assignment 日期排期 — 对应 assignments.json 中的一条记录
//
// CustomTimes / BellSoundID 为 nil 时字段整体不出现在 JSON 中，
// 表示"无覆盖"，与"覆盖为空"是两回事。
// 同一日期允许存在多条排期，集合本身不做唯一性约束。
type Assignment struct {
	ID          string      `json:"id"`
	Date        string      `json:"date"` // YYYY-MM-DD
	ScheduleID  string      `json:"scheduleId"`
	Description string      `json:"description"`
	CustomTimes *[]BellTime `json:"customTimes,omitempty"`
	BellSoundID *string     `json:"bellSoundId,omitempty"`
}

// IsNoBell 是否为静铃日
func (a *Assignment) IsNoBell() bool {
	return a.ScheduleID == NoBellScheduleID
}
