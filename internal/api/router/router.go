package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nooele2/bell-webapp/config"
	"github.com/nooele2/bell-webapp/internal/api/handler"
	"github.com/nooele2/bell-webapp/internal/api/middleware"
	"github.com/nooele2/bell-webapp/pkg/jwt"
	"github.com/nooele2/bell-webapp/pkg/redis"
)

// 登录限流：同一 IP 每分钟最多 10 次
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// multipart 表单头部等额外开销
const uploadOverheadBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.MaxMultipartMemory = cfg.Upload.MaxSoundBytes + uploadOverheadBytes

	jsonLimit := middleware.BodyLimit(cfg.Server.MaxBodyBytes)
	uploadLimit := middleware.BodyLimit(cfg.Upload.MaxSoundBytes + uploadOverheadBytes)

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	// 打铃脚本高频轮询，成功请求降为 Debug
	r.Use(middleware.Logger(logger, "/ringtimes", "/ringdates", "/health"))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 无需认证 ──
	r.GET("/health", h.System.Health)
	r.GET("/ringtimes", h.Export.Ringtimes)
	r.GET("/ringdates", h.Export.Ringdates)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login", middleware.RateLimit(rdb, loginRateLimit, loginRateWindow), jsonLimit, h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 作息表模块
			schedules := authorized.Group("/schedules")
			{
				schedules.GET("", h.Schedule.List)
				schedules.POST("", jsonLimit, h.Schedule.Create)
				schedules.PUT("/:id", jsonLimit, h.Schedule.Update)
				schedules.DELETE("/:id", h.Schedule.Delete)
				schedules.PUT("/:id/default", h.Schedule.SetDefault)
			}

			// 日期排期模块
			assignments := authorized.Group("/assignments")
			{
				assignments.GET("", h.Assignment.List)
				assignments.POST("", jsonLimit, h.Assignment.Create)
				assignments.POST("/import-ics", uploadLimit, h.Assignment.ImportCalendar)
				assignments.PUT("/:id", jsonLimit, h.Assignment.Update)
				assignments.DELETE("/:id", h.Assignment.Delete)
			}

			// 铃声模块
			bellSounds := authorized.Group("/bell-sounds")
			{
				bellSounds.GET("", h.BellSound.List)
				bellSounds.POST("", uploadLimit, h.BellSound.Upload)
				bellSounds.GET("/:id", h.BellSound.Serve)
				bellSounds.PUT("/:id", jsonLimit, h.BellSound.Rename)
				bellSounds.DELETE("/:id", h.BellSound.Delete)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/workbook", h.Export.Workbook)
				export.GET("/calendar.ics", h.Export.Calendar)
			}

			authorized.GET("/legacy/ringtimes", h.System.LegacyRingtimes)
		}
	}

	return r
}
