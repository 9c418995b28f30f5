package repository

import (
	"context"

	"gorm.io/gorm"

	"teamwear_shop/internal/model"
)

// CarouselRepository 轮播图仓储接口
type CarouselRepository interface {
	Create(ctx context.Context, image *model.CarouselImage) error
	GetByID(ctx context.Context, id int64, scope Scope) (*model.CarouselImage, error)
	Update(ctx context.Context, image *model.CarouselImage) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, scope Scope) ([]model.CarouselImage, error)
	NextOrderIndex(ctx context.Context) (int, error)
	Move(ctx context.Context, id int64, dir MoveDirection) error
}

type carouselRepo struct {
	db *gorm.DB
}

// NewCarouselRepository 创建轮播图仓储
func NewCarouselRepository(db *gorm.DB) CarouselRepository {
	return &carouselRepo{db: db}
}

func (r *carouselRepo) Create(ctx context.Context, image *model.CarouselImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *carouselRepo) GetByID(ctx context.Context, id int64, scope Scope) (*model.CarouselImage, error) {
	var image model.CarouselImage
	err := scope.apply(r.db.WithContext(ctx), "active").First(&image, id).Error
	return notFoundAsNil(&image, err)
}

func (r *carouselRepo) Update(ctx context.Context, image *model.CarouselImage) error {
	return r.db.WithContext(ctx).Save(image).Error
}

func (r *carouselRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CarouselImage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *carouselRepo) List(ctx context.Context, scope Scope) ([]model.CarouselImage, error) {
	var images []model.CarouselImage
	err := scope.apply(r.db.WithContext(ctx), "active").
		Order("order_index ASC, id ASC").
		Find(&images).Error
	return images, err
}

func (r *carouselRepo) NextOrderIndex(ctx context.Context) (int, error) {
	return nextOrderIndex(ctx, r.db, model.CarouselImage{}.TableName())
}

// Move 与相邻轮播图交换位置
func (r *carouselRepo) Move(ctx context.Context, id int64, dir MoveDirection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return swapAdjacent(ctx, tx, model.CarouselImage{}.TableName(), id, dir)
	})
}
