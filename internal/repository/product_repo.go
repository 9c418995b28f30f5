package repository

import (
	"context"

	"gorm.io/gorm"

	"teamwear_shop/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64, scope Scope) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// 排序
	NextOrderIndex(ctx context.Context) (int, error)
	Reorder(ctx context.Context, entries []OrderEntry) error
}

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	Scope    Scope
	Category string
	ClubID   int64
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64, scope Scope) (*model.Product, error) {
	var product model.Product
	err := scope.apply(r.db.WithContext(ctx), "active").
		First(&product, id).Error
	return notFoundAsNil(&product, err)
}

// Update 整行保存，零值字段（active=false、清空价格）也会写入
func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete 物理删除，连同俱乐部关联
func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.ClubProduct{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product

	query := filter.Scope.apply(r.db.WithContext(ctx).Model(&model.Product{}), "products.active")

	if filter.Category != "" {
		query = query.Where("products.category = ?", filter.Category)
	}
	if filter.ClubID > 0 {
		query = query.
			Joins("JOIN club_products ON club_products.product_id = products.id").
			Where("club_products.club_id = ?", filter.ClubID)
	}

	err := query.
		Order("products.order_index ASC, products.id ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepo) NextOrderIndex(ctx context.Context) (int, error) {
	return nextOrderIndex(ctx, r.db, model.Product{}.TableName())
}

// Reorder 全量改写 order_index，在同一事务内完成
func (r *productRepo) Reorder(ctx context.Context, entries []OrderEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return rewriteOrder(ctx, tx, model.Product{}.TableName(), entries)
	})
}
