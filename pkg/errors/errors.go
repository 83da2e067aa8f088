package errors

import "errors"

// ── 错误分类 ──
//
// 各业务模块的哨兵错误都包装其中之一，Handler 层据此决定 HTTP 状态码。
// MissingField / InvalidReference / InvalidFormat 属于调用方输入错误，
// 在修改任何状态之前返回。

var (
	// ErrMissingField 必填字段缺失
	ErrMissingField = errors.New("缺少必填字段")
	// ErrInvalidReference 引用的 ID 不存在
	ErrInvalidReference = errors.New("引用的记录不存在")
	// ErrNotFound 目标集合中找不到该 ID
	ErrNotFound = errors.New("记录不存在")
	// ErrInvalidFormat 上传文件格式不受支持
	ErrInvalidFormat = errors.New("文件格式不受支持")
	// ErrPersistence 底层存储读写失败
	ErrPersistence = errors.New("数据持久化失败")
)

// IsClientError 判断是否为调用方输入错误
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrInvalidFormat)
}
