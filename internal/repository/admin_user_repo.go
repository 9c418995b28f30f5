package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"teamwear_shop/internal/model"
)

// ==================== AdminUserRepository 管理员仓库 ====================

// AdminUserRepository 管理员仓库接口
type AdminUserRepository interface {
	Create(ctx context.Context, user *model.AdminUser) error
	GetByID(ctx context.Context, id int64) (*model.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	UpdateLastLogin(ctx context.Context, id int64) error
}

type adminUserRepository struct {
	db *gorm.DB
}

// NewAdminUserRepository 创建管理员仓库
func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

// Create 创建管理员
func (r *adminUserRepository) Create(ctx context.Context, user *model.AdminUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID 根据 ID 获取，不存在返回 nil
func (r *adminUserRepository) GetByID(ctx context.Context, id int64) (*model.AdminUser, error) {
	var user model.AdminUser
	err := r.db.WithContext(ctx).First(&user, id).Error
	return notFoundAsNil(&user, err)
}

// GetByEmail 根据邮箱获取，不存在返回 nil
func (r *adminUserRepository) GetByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	var user model.AdminUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return notFoundAsNil(&user, err)
}

// UpdatePassword 更新密码
func (r *adminUserRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	return r.db.WithContext(ctx).
		Model(&model.AdminUser{}).
		Where("id = ?", id).
		Update("password_hash", hashedPassword).Error
}

// UpdateLastLogin 更新最后登录时间
func (r *adminUserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.AdminUser{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}
