package model

// 作息表类别（mode）。集合是开放的，未知类别按 Normal 取默认配色。
const (
	ModeNormal    = "Normal"
	ModeLateStart = "Late Start"
	ModeBuddy     = "Buddy"
	ModeAssembly  = "Assembly"
)

// BellTime 一次打铃：时间 + 说明。列表顺序即打铃顺序。
type BellTime struct {
	Time        string `json:"time"` // HH:MM
	Description string `json:"description"`
}

// Color 作息表显示配色
type Color struct {
	Name   string `json:"name"`
	Value  string `json:"value"` // 填充色
	Border string `json:"border"`
	Text   string `json:"text"`
}

// Schedule 作息表 — 对应 schedules.json 中的一条记录
//
// 集合中的先后顺序（切片下标）决定导出时分配的旧版字母代码，
// 因此仓储层必须原样保留顺序。
type Schedule struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Mode         string     `json:"mode"`
	IsDefault    bool       `json:"isDefault"`
	IsSystem     bool       `json:"isSystem,omitempty"`
	Color        *Color     `json:"color,omitempty"`
	BellSoundID  *string    `json:"bellSoundId"` // nil 表示"无铃声"，不是"继承"
	Times        []BellTime `json:"times"`
	OriginalCode string     `json:"original_code,omitempty"` // 旧版 ringtimes 导入时的代码
}

// HasBellSound 是否引用了指定铃声
func (s *Schedule) HasBellSound(soundID string) bool {
	return s.BellSoundID != nil && *s.BellSoundID == soundID
}
