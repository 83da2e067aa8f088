package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nooele2/bell-webapp/config"
	"github.com/nooele2/bell-webapp/internal/dto"
	"github.com/nooele2/bell-webapp/pkg/jwt"
	"github.com/nooele2/bell-webapp/pkg/redis"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrOperatorNotFound   = errors.New("操作员不存在")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 把 token 的 jti 拉黑至其过期；未启用 Redis 时只记日志
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, email string) (*dto.OperatorResponse, error)
}

type operator struct {
	email        string
	name         string
	passwordHash []byte
}

type authService struct {
	operators map[string]operator
	jwtMgr    *jwt.Manager
	rdb       *redis.Client // 可为 nil
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例；操作员表在此固定，运行期不可变
func NewAuthService(
	cfg *config.AuthConfig,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	ops := make(map[string]operator, len(cfg.Operators))
	for _, op := range cfg.Operators {
		email := normalizeEmail(op.Email)
		ops[email] = operator{
			email:        email,
			name:         op.Name,
			passwordHash: []byte(op.PasswordHash),
		}
	}
	return &authService{
		operators: ops,
		jwtMgr:    jwtMgr,
		rdb:       rdb,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查找操作员
	op, ok := s.operators[normalizeEmail(req.Email)]
	if !ok {
		return nil, ErrInvalidCredentials
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword(op.passwordHash, []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token
	accessToken, err := s.jwtMgr.GenerateAccessToken(op.email, op.name)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("操作员登录", zap.String("email", op.email))

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User: dto.OperatorResponse{
			Email: op.email,
			Name:  op.name,
		},
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("拉黑 Token 失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, email string) (*dto.OperatorResponse, error) {
	op, ok := s.operators[normalizeEmail(email)]
	if !ok {
		return nil, ErrOperatorNotFound
	}
	return &dto.OperatorResponse{Email: op.email, Name: op.name}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
