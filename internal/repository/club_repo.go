package repository

import (
	"context"

	"gorm.io/gorm"

	"teamwear_shop/internal/model"
)

// ClubRepository 俱乐部仓储接口
type ClubRepository interface {
	Create(ctx context.Context, club *model.Club) error
	GetByID(ctx context.Context, id int64, scope Scope) (*model.Club, error)
	GetBySlug(ctx context.Context, slug string, scope Scope) (*model.Club, error)
	Update(ctx context.Context, club *model.Club) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, scope Scope) ([]model.Club, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Club, error)
	NextOrderIndex(ctx context.Context) (int, error)
	Move(ctx context.Context, id int64, dir MoveDirection) error
}

type clubRepo struct {
	db *gorm.DB
}

// NewClubRepository 创建俱乐部仓储
func NewClubRepository(db *gorm.DB) ClubRepository {
	return &clubRepo{db: db}
}

// Create slug 重复时返回 gorm.ErrDuplicatedKey
func (r *clubRepo) Create(ctx context.Context, club *model.Club) error {
	return r.db.WithContext(ctx).Create(club).Error
}

func (r *clubRepo) GetByID(ctx context.Context, id int64, scope Scope) (*model.Club, error) {
	var club model.Club
	err := scope.apply(r.db.WithContext(ctx), "active").First(&club, id).Error
	return notFoundAsNil(&club, err)
}

func (r *clubRepo) GetBySlug(ctx context.Context, slug string, scope Scope) (*model.Club, error) {
	var club model.Club
	err := scope.apply(r.db.WithContext(ctx), "active").
		Where("slug = ?", slug).
		First(&club).Error
	return notFoundAsNil(&club, err)
}

func (r *clubRepo) Update(ctx context.Context, club *model.Club) error {
	return r.db.WithContext(ctx).Save(club).Error
}

// Delete 物理删除，连同商品关联
func (r *clubRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("club_id = ?", id).Delete(&model.ClubProduct{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Club{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *clubRepo) List(ctx context.Context, scope Scope) ([]model.Club, error) {
	var clubs []model.Club
	err := scope.apply(r.db.WithContext(ctx), "active").
		Order("order_index ASC, id ASC").
		Find(&clubs).Error
	return clubs, err
}

// ListByIDs 按 ID 批量查询，不区分 active
func (r *clubRepo) ListByIDs(ctx context.Context, ids []int64) ([]model.Club, error) {
	var clubs []model.Club
	if len(ids) == 0 {
		return clubs, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&clubs).Error
	return clubs, err
}

func (r *clubRepo) NextOrderIndex(ctx context.Context) (int, error) {
	return nextOrderIndex(ctx, r.db, model.Club{}.TableName())
}

func (r *clubRepo) Move(ctx context.Context, id int64, dir MoveDirection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return swapAdjacent(ctx, tx, model.Club{}.TableName(), id, dir)
	})
}
