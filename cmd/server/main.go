package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nooele2/bell-webapp/config"
	"github.com/nooele2/bell-webapp/internal/api/handler"
	"github.com/nooele2/bell-webapp/internal/api/router"
	"github.com/nooele2/bell-webapp/internal/model"
	"github.com/nooele2/bell-webapp/internal/repository"
	"github.com/nooele2/bell-webapp/internal/service"
	"github.com/nooele2/bell-webapp/pkg/jwt"
	applogger "github.com/nooele2/bell-webapp/pkg/logger"
	"github.com/nooele2/bell-webapp/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml 或 ./config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.String("legacy_dir", cfg.Storage.LegacyDir),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，Token 黑名单与登录限流将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 4. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)
	if len(cfg.Auth.Operators) == 0 {
		logger.Warn("未配置任何操作员账号，管理接口将无法登录")
	}

	// 5. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(&cfg.Storage)
	svc := service.NewService(cfg, repo, model.DefaultPalette(), jwtMgr, rdb, logger)

	// 5.1 首次启动：从旧版 ringtimes / ringdates 生成 JSON 集合
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.Legacy.InitDataFiles(initCtx); err != nil {
		initCancel()
		logger.Fatal("初始化数据文件失败", zap.Error(err))
	}
	initCancel()

	h := handler.NewHandler(svc)

	// 6. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 7. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
