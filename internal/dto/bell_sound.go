package dto

// ── 铃声模块 DTO ──

// RenameBellSoundRequest 修改铃声显示名称
type RenameBellSoundRequest struct {
	Name string `json:"name"`
}
