package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"teamwear_shop/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	Status   string
	Keyword  string // 订单号 / 顾客姓名 / 邮箱
	Page     int
	PageSize int
}

// ==================== OrderRepository 订单仓库 ====================

// ErrStaleOrder 条件更新未命中：订单状态已变化
var ErrStaleOrder = errors.New("订单状态已变化")

// OrderRepository 订单仓库接口
type OrderRepository interface {
	// Create order_number 重复时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)

	// UpdateFieldsFromStatus 仅当订单当前状态仍为 fromStatus 时更新
	// 状态已被其他请求改写（或订单不存在）时返回 ErrStaleOrder
	UpdateFieldsFromStatus(ctx context.Context, id int64, fromStatus string, fields map[string]interface{}) error

	// ListPendingBetween 创建时间在 (newerThan, olderThan) 之间的待支付订单
	ListPendingBetween(ctx context.Context, newerThan, olderThan time.Time, limit int) ([]model.Order, error)
}

// ==================== 实现 ====================

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	return notFoundAsNil(&order, err)
}

func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&order).Error
	return notFoundAsNil(&order, err)
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		like := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where(
			"LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?",
			like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order("created_at DESC, id DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) UpdateFieldsFromStatus(ctx context.Context, id int64, fromStatus string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleOrder
	}
	return nil
}

func (r *orderRepository) ListPendingBetween(ctx context.Context, newerThan, olderThan time.Time, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at > ? AND created_at < ?", model.OrderStatusPending, newerThan, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
