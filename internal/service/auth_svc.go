package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/middleware"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
)

// ==================== AuthService 管理员认证 ====================

// AuthService 管理员认证服务
type AuthService struct {
	adminRepo repository.AdminUserRepository
}

// NewAuthService 创建认证服务
func NewAuthService(adminRepo repository.AdminUserRepository) *AuthService {
	return &AuthService{adminRepo: adminRepo}
}

// Login 管理员登录
func (s *AuthService) Login(ctx context.Context, req *dto.LoginReq) (*dto.LoginResp, error) {
	// 查找管理员
	user, err := s.adminRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 检查状态
	if !user.Active {
		return nil, ErrUserDisabled
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	// 更新最后登录时间
	_ = s.adminRepo.UpdateLastLogin(ctx, user.ID)

	return resp, nil
}

// Refresh 用 Refresh Token 换新的 Token 对
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshTokenReq) (*dto.LoginResp, error) {
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil || !claims.IsRefresh() {
		return nil, ErrInvalidToken
	}

	// 确保管理员仍然有效
	user, err := s.adminRepo.GetByID(ctx, claims.AdminID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, ErrUserDisabled
	}

	return s.issue(user)
}

// Me 当前管理员信息
func (s *AuthService) Me(ctx context.Context, adminID int64) (*dto.AdminInfo, error) {
	user, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	info := toAdminInfo(user)
	return &info, nil
}

// CreateAdmin 创建管理员（命令行使用）
func (s *AuthService) CreateAdmin(ctx context.Context, email, password, name string) (*model.AdminUser, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < 8 {
		return nil, NewValidationError("Email obligatorio y contraseña de al menos 8 caracteres")
	}

	// 加密密码
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.AdminUser{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hashed),
		Active:       true,
	}
	if err := s.adminRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Message: "Ya existe un administrador con ese email", Err: err}
		}
		return nil, err
	}
	return user, nil
}

// ==================== 辅助方法 ====================

func (s *AuthService) issue(user *model.AdminUser) (*dto.LoginResp, error) {
	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	cfg := middleware.GetJWTConfig()
	return &dto.LoginResp{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
		User:         toAdminInfo(user),
	}, nil
}

func toAdminInfo(user *model.AdminUser) dto.AdminInfo {
	return dto.AdminInfo{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
