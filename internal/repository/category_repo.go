package repository

import (
	"context"

	"gorm.io/gorm"

	"teamwear_shop/internal/model"
)

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id int64, scope Scope) (*model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, scope Scope) ([]model.Category, error)
	NextOrderIndex(ctx context.Context) (int, error)
	Move(ctx context.Context, id int64, dir MoveDirection) error
}

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64, scope Scope) (*model.Category, error) {
	var category model.Category
	err := scope.apply(r.db.WithContext(ctx), "active").First(&category, id).Error
	return notFoundAsNil(&category, err)
}

func (r *categoryRepo) Update(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepo) List(ctx context.Context, scope Scope) ([]model.Category, error) {
	var categories []model.Category
	err := scope.apply(r.db.WithContext(ctx), "active").
		Order("order_index ASC, id ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) NextOrderIndex(ctx context.Context) (int, error) {
	return nextOrderIndex(ctx, r.db, model.Category{}.TableName())
}

// Move 与相邻分类交换位置
func (r *categoryRepo) Move(ctx context.Context, id int64, dir MoveDirection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return swapAdjacent(ctx, tx, model.Category{}.TableName(), id, dir)
	})
}
