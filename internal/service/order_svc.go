package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/event"
	"teamwear_shop/internal/middleware"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
)

// ==================== OrderService 订单后台 ====================

// OrderService 后台订单查询和状态管理
type OrderService struct {
	orderRepo repository.OrderRepository
	hooks     *statusHooks
	log       *zap.Logger
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	notifier *NotifyService,
	publisher event.Publisher,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		hooks:     newStatusHooks(notifier, publisher),
		log:       log,
	}
}

// ==================== 订单列表 ====================

// List 获取订单列表
func (s *OrderService) List(ctx context.Context, req *dto.ListOrdersReq) (*dto.PageResp[model.Order], error) {
	if req.Status != "" && !model.IsValidOrderStatus(req.Status) {
		return nil, NewValidationError("Estado de pedido inválido")
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	orders, total, err := s.orderRepo.List(ctx, repository.OrderFilter{
		Status:   req.Status,
		Keyword:  strings.TrimSpace(req.Keyword),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}

	return &dto.PageResp[model.Order]{
		Items:    orders,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// Get 订单详情
func (s *OrderService) Get(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

// ==================== 状态管理 ====================

// UpdateStatus 后台手动修改订单状态
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, req *dto.UpdateOrderStatusReq) (*model.Order, error) {
	if !model.IsValidOrderStatus(req.Status) {
		return nil, NewValidationError("Estado de pedido inválido")
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	fields := map[string]interface{}{"status": req.Status}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		fields["notes"] = notes
		order.Notes = notes
	}
	if req.Status == model.OrderStatusPaid && order.PaidAt == nil {
		now := time.Now()
		fields["paid_at"] = now
		order.PaidAt = &now
	}

	// 只在状态仍为读到的值时写入，避免与 webhook 同时改状态时重复通知
	if err := s.orderRepo.UpdateFieldsFromStatus(ctx, id, previous, fields); err != nil {
		if errors.Is(err, repository.ErrStaleOrder) {
			return nil, &ConflictError{Message: "El pedido cambió mientras se editaba, recargue e intente de nuevo", Err: err}
		}
		return nil, storeError(err, "")
	}
	order.Status = req.Status

	if previous != order.Status {
		s.log.Info("后台修改订单状态",
			zap.String("order", order.OrderNumber),
			zap.String("from", previous),
			zap.String("to", order.Status),
			zap.String("actor", middleware.AuditActor(ctx)),
		)
	}
	s.hooks.afterTransition(ctx, order, previous, event.SourceAdmin)
	return order, nil
}

// ==================== 公开查询 ====================

// Track 顾客按订单号 + 邮箱查询状态，邮箱不匹配按不存在处理
func (s *OrderService) Track(ctx context.Context, orderNumber, email string) (*dto.OrderTrackResp, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	email = normalizeEmail(email)
	if orderNumber == "" || email == "" {
		return nil, NewValidationError("Número de pedido y email son obligatorios")
	}

	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil || normalizeEmail(order.CustomerEmail) != email {
		return nil, ErrNotFound
	}

	return &dto.OrderTrackResp{
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		StatusLabel: model.StatusLabel(order.Status),
		UpdatedAt:   order.UpdatedAt.Format(time.RFC3339),
	}, nil
}
