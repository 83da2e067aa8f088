package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nooele2/bell-webapp/internal/api/middleware"
	"github.com/nooele2/bell-webapp/pkg/response"
)

// MustGetOperatorEmail 从 Gin 上下文中安全提取操作员邮箱。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetOperatorEmail(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxOperatorEmail)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// tokenFromContext 取出当前 Token 的 jti 与过期时间，缺失时返回零值
func tokenFromContext(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.CtxTokenJTI)
	exp, _ := c.Get(middleware.CtxTokenExpires)
	expiresAt, _ := exp.(time.Time)
	return jti, expiresAt
}

// bindJSON 解析 JSON 请求体。
// 请求体超限时只登记错误，由 BodyLimit 中间件写 413；其余解析失败返回 10001。
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if isBodyTooLarge(err) {
			_ = c.Error(err)
			return false
		}
		response.BadRequest(c, 10001, "参数校验失败")
		return false
	}
	return true
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
