package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nooele2/bell-webapp/config"
	"github.com/nooele2/bell-webapp/internal/dto"
	"github.com/nooele2/bell-webapp/pkg/jwt"
)

const testPassword = "correct-horse"

func setupTestAuthService(t *testing.T) (AuthService, *jwt.Manager) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}

	cfg := &config.AuthConfig{
		JWTSecret:      "test-secret-key-1234567890",
		AccessTokenTTL: 30 * time.Minute,
		Operators: []config.OperatorConfig{
			{Email: "Office@School.Example", Name: "Front Office", PasswordHash: string(hash)},
		},
	}
	jwtMgr := jwt.NewManager(cfg)
	return NewAuthService(cfg, jwtMgr, nil, zap.NewNop()), jwtMgr
}

func TestLogin_Success(t *testing.T) {
	svc, jwtMgr := setupTestAuthService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "  office@school.example ",
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.User.Email != "office@school.example" || resp.User.Name != "Front Office" {
		t.Errorf("操作员信息不符: %+v", resp.User)
	}
	if resp.ExpiresIn != 1800 {
		t.Errorf("期望 expires_in=1800，实际=%d", resp.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("签发的 Token 应可解析: %v", err)
	}
	if claims.Email != "office@school.example" || claims.ID == "" {
		t.Errorf("Claims 不符: %+v", claims)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := setupTestAuthService(t)
	ctx := context.Background()

	tests := []dto.LoginRequest{
		{Email: "office@school.example", Password: "wrong"},
		{Email: "nobody@school.example", Password: testPassword},
	}
	for _, req := range tests {
		req := req
		if _, err := svc.Login(ctx, &req); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s 期望 ErrInvalidCredentials，实际: %v", req.Email, err)
		}
	}
}

func TestMe(t *testing.T) {
	svc, _ := setupTestAuthService(t)
	ctx := context.Background()

	op, err := svc.Me(ctx, "office@school.example")
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if op.Name != "Front Office" {
		t.Errorf("名称不符: %s", op.Name)
	}
	if _, err := svc.Me(ctx, "gone@school.example"); !errors.Is(err, ErrOperatorNotFound) {
		t.Errorf("期望 ErrOperatorNotFound，实际: %v", err)
	}
}

func TestLogout_WithoutRedisIsNoop(t *testing.T) {
	svc, _ := setupTestAuthService(t)

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Errorf("未启用 Redis 时 Logout 应直接成功: %v", err)
	}
}
