package repository

import (
	"context"

	"gorm.io/gorm"

	"teamwear_shop/internal/model"
)

// ==================== ClubProductRepository 俱乐部-商品关联 ====================

// ClubProductRepository 关联仓储接口
type ClubProductRepository interface {
	// 俱乐部维度
	ListProducts(ctx context.Context, clubID int64, scope Scope) ([]model.Product, error)
	ReplaceForClub(ctx context.Context, clubID int64, productIDs []int64) error
	Add(ctx context.Context, clubID, productID int64) error
	Remove(ctx context.Context, clubID, productID int64) error

	// 商品维度
	ListClubIDs(ctx context.Context, productID int64) ([]int64, error)
	ReplaceForProduct(ctx context.Context, productID int64, clubIDs []int64) error

	// ClubIDsForProducts 出现过任一商品的俱乐部（去重）
	ClubIDsForProducts(ctx context.Context, productIDs []int64) ([]int64, error)
}

type clubProductRepo struct {
	db *gorm.DB
}

// NewClubProductRepository 创建关联仓储
func NewClubProductRepository(db *gorm.DB) ClubProductRepository {
	return &clubProductRepo{db: db}
}

// ListProducts 俱乐部商品，按关联顺序
func (r *clubProductRepo) ListProducts(ctx context.Context, clubID int64, scope Scope) ([]model.Product, error) {
	var products []model.Product
	query := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Joins("JOIN club_products ON club_products.product_id = products.id").
		Where("club_products.club_id = ?", clubID)
	err := scope.apply(query, "products.active").
		Order("club_products.order_index ASC, products.order_index ASC, products.id ASC").
		Find(&products).Error
	return products, err
}

// ReplaceForClub 整体替换俱乐部的商品集合，order_index 按传入顺序
func (r *clubProductRepo) ReplaceForClub(ctx context.Context, clubID int64, productIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("club_id = ?", clubID).Delete(&model.ClubProduct{}).Error; err != nil {
			return err
		}
		links := make([]model.ClubProduct, 0, len(productIDs))
		seen := make(map[int64]struct{}, len(productIDs))
		for _, pid := range productIDs {
			if _, ok := seen[pid]; ok {
				continue
			}
			seen[pid] = struct{}{}
			links = append(links, model.ClubProduct{ClubID: clubID, ProductID: pid, OrderIndex: len(links)})
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
}

// Add 追加到末尾，重复关联返回 gorm.ErrDuplicatedKey
func (r *clubProductRepo) Add(ctx context.Context, clubID, productID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextClubOrderIndex(ctx, tx, clubID)
		if err != nil {
			return err
		}
		return tx.Create(&model.ClubProduct{ClubID: clubID, ProductID: productID, OrderIndex: next}).Error
	})
}

func (r *clubProductRepo) Remove(ctx context.Context, clubID, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("club_id = ? AND product_id = ?", clubID, productID).
		Delete(&model.ClubProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *clubProductRepo) ListClubIDs(ctx context.Context, productID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.ClubProduct{}).
		Where("product_id = ?", productID).
		Order("club_id ASC").
		Pluck("club_id", &ids).Error
	return ids, err
}

// ReplaceForProduct 整体替换商品所属的俱乐部
// 保留已有关联的排序，新增关联追加到各俱乐部末尾
func (r *clubProductRepo) ReplaceForProduct(ctx context.Context, productID int64, clubIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []int64
		err := tx.Model(&model.ClubProduct{}).
			Where("product_id = ?", productID).
			Pluck("club_id", &existing).Error
		if err != nil {
			return err
		}

		want := make(map[int64]struct{}, len(clubIDs))
		for _, id := range clubIDs {
			want[id] = struct{}{}
		}
		have := make(map[int64]struct{}, len(existing))
		for _, id := range existing {
			have[id] = struct{}{}
		}

		var remove []int64
		for _, id := range existing {
			if _, ok := want[id]; !ok {
				remove = append(remove, id)
			}
		}
		if len(remove) > 0 {
			err := tx.Where("product_id = ? AND club_id IN ?", productID, remove).
				Delete(&model.ClubProduct{}).Error
			if err != nil {
				return err
			}
		}

		for _, clubID := range clubIDs {
			if _, ok := have[clubID]; ok {
				continue
			}
			have[clubID] = struct{}{}
			next, err := nextClubOrderIndex(ctx, tx, clubID)
			if err != nil {
				return err
			}
			if err := tx.Create(&model.ClubProduct{ClubID: clubID, ProductID: productID, OrderIndex: next}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *clubProductRepo) ClubIDsForProducts(ctx context.Context, productIDs []int64) ([]int64, error) {
	var ids []int64
	if len(productIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.ClubProduct{}).
		Distinct("club_id").
		Where("product_id IN ?", productIDs).
		Order("club_id ASC").
		Pluck("club_id", &ids).Error
	return ids, err
}

func nextClubOrderIndex(ctx context.Context, tx *gorm.DB, clubID int64) (int, error) {
	var max int64
	err := tx.WithContext(ctx).
		Model(&model.ClubProduct{}).
		Select("COALESCE(MAX(order_index), -1)").
		Where("club_id = ?", clubID).
		Row().
		Scan(&max)
	if err != nil {
		return 0, err
	}
	return int(max) + 1, nil
}
