package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 5001},
		Storage: StorageConfig{DataDir: "./data"},
		Auth:    AuthConfig{JWTSecret: "0123456789abcdef-secret"},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("期望校验通过，实际: %v", err)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Error("短密钥应校验失败")
	}
}

func TestValidate_BadPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("非法端口应校验失败")
	}
}

func TestValidate_OperatorWithoutHash(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Operators = []OperatorConfig{{Email: "boo@crics.asia", Name: "Boo"}}
	if err := cfg.Validate(); err == nil {
		t.Error("缺少 password_hash 的操作员应校验失败")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 6001
storage:
  data_dir: /tmp/bells
auth:
  jwt_secret: test-secret-key-for-config-2026
  access_token_ttl: 45m
  operators:
    - email: boo@crics.asia
      name: Boo
      password_hash: "$2a$10$abcdefghijklmnopqrstuv"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 6001 {
		t.Errorf("期望 port=6001，实际=%d", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 45*time.Minute {
		t.Errorf("期望 ttl=45m，实际=%s", cfg.Auth.AccessTokenTTL)
	}
	if len(cfg.Auth.Operators) != 1 || cfg.Auth.Operators[0].Name != "Boo" {
		t.Errorf("操作员解析错误: %+v", cfg.Auth.Operators)
	}
	if cfg.Storage.LegacyDir != "./piring" {
		t.Errorf("期望默认 legacy_dir=./piring，实际=%s", cfg.Storage.LegacyDir)
	}
	if cfg.Upload.MaxSoundBytes != 10<<20 {
		t.Errorf("期望默认上传上限 10MiB，实际=%d", cfg.Upload.MaxSoundBytes)
	}
}
