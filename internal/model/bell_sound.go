package model

// BellSound 铃声元数据 — 对应 bell_sounds_meta.json
//
// ID 取上传时的毫秒时间戳；SavedFileName 以同一时间戳为前缀，保证磁盘文件名唯一。
type BellSound struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	FileName      string `json:"fileName"`
	SavedFileName string `json:"savedFileName"`
	Size          int64  `json:"size"`
	UploadedAt    string `json:"uploadedAt"`
}
