package dto

// ── 认证模块请求 ──

// LoginRequest 操作员登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}
