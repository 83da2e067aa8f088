package dto

// ── 认证模块响应 ──

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string           `json:"access_token"`
	ExpiresIn   int              `json:"expires_in"` // Access Token 有效期（秒）
	User        OperatorResponse `json:"user"`
}

// OperatorResponse 操作员信息
type OperatorResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ── 通用响应 ──

// SuccessResponse 仅表示操作成功
type SuccessResponse struct {
	Success bool `json:"success"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	RingtimesExists bool   `json:"ringtimes_exists"`
	RingdatesExists bool   `json:"ringdates_exists"`
}
