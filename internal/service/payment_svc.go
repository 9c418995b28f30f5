package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/event"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
	"teamwear_shop/pkg/mercadopago"
)

// 对账扫描窗口
const (
	reconcileMinAge = 15 * time.Minute
	reconcileMaxAge = 72 * time.Hour
	reconcileBatch  = 100

	// 条件更新冲突时的最大尝试次数
	maxStaleRetries = 3
)

// MapPaymentStatus 支付平台状态 -> 订单状态，未知状态按 pending 处理
func MapPaymentStatus(paymentStatus string) string {
	switch paymentStatus {
	case "approved":
		return model.OrderStatusPaid
	case "pending", "in_process", "authorized":
		return model.OrderStatusPending
	case "rejected":
		return model.OrderStatusRejected
	case "cancelled":
		return model.OrderStatusCancelled
	case "refunded", "charged_back":
		return model.OrderStatusRefunded
	default:
		return model.OrderStatusPending
	}
}

// WebhookInput 一次 webhook 调用
type WebhookInput struct {
	Signature    string // x-signature
	RequestID    string // x-request-id
	QueryDataID  string // ?data.id=
	QueryType    string // ?type= / ?topic=
	Notification dto.WebhookNotification
}

// ==================== PaymentService 支付对账 ====================

// PaymentService webhook 与定时对账共用的订单对账逻辑
// 以 order_number (external_reference) 为幂等键
type PaymentService struct {
	gateway       mercadopago.Gateway // nil 表示未配置
	orderRepo     repository.OrderRepository
	hooks         *statusHooks
	webhookSecret string
	log           *zap.Logger
	now           func() time.Time
}

// NewPaymentService 创建支付对账服务
func NewPaymentService(
	gateway mercadopago.Gateway,
	orderRepo repository.OrderRepository,
	notifier *NotifyService,
	publisher event.Publisher,
	webhookSecret string,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		gateway:       gateway,
		orderRepo:     orderRepo,
		hooks:         newStatusHooks(notifier, publisher),
		webhookSecret: webhookSecret,
		log:           log,
		now:           time.Now,
	}
}

// HandleWebhook 处理支付通知
// 签名错误返回 ErrInvalidSignature；数据库或支付平台错误原样返回，由平台重投
func (s *PaymentService) HandleWebhook(ctx context.Context, in WebhookInput) error {
	dataID := in.QueryDataID
	if dataID == "" {
		dataID = string(in.Notification.Data.ID)
	}
	// 字母数字 id 按小写参与签名
	dataID = strings.ToLower(strings.TrimSpace(dataID))

	if s.webhookSecret != "" {
		if err := mercadopago.VerifySignature(s.webhookSecret, in.Signature, in.RequestID, dataID); err != nil {
			s.log.Warn("webhook 签名校验失败",
				zap.String("request_id", in.RequestID),
				zap.String("data_id", dataID),
				zap.Error(err),
			)
			return ErrInvalidSignature
		}
	} else {
		s.log.Warn("未配置 MERCADOPAGO_WEBHOOK_SECRET，跳过签名校验")
	}

	notifType := in.Notification.Type
	if notifType == "" {
		notifType = in.Notification.Topic
	}
	if notifType == "" {
		notifType = in.QueryType
	}
	if notifType != "payment" {
		s.log.Debug("忽略非支付通知", zap.String("type", notifType))
		return nil
	}

	if s.gateway == nil {
		return ErrPaymentNotConfigured
	}
	if dataID == "" {
		return NewValidationError("Falta data.id en la notificación")
	}

	payment, err := s.gateway.GetPayment(ctx, dataID)
	if err != nil {
		return fmt.Errorf("获取支付详情失败: %w", err)
	}

	_, err = s.Reconcile(ctx, payment, event.SourceWebhook)
	return err
}

// Reconcile 用支付详情更新或补建订单
// 订单不存在时从 metadata/付款人信息补建；补建撞上唯一约束说明另一路已写入，转为更新
func (s *PaymentService) Reconcile(ctx context.Context, payment *mercadopago.Payment, source string) (*model.Order, error) {
	ref := strings.TrimSpace(payment.ExternalReference)
	if ref == "" {
		s.log.Warn("支付缺少 external_reference，跳过", zap.Int64("payment_id", payment.ID))
		return nil, nil
	}

	status := MapPaymentStatus(payment.Status)

	existing, err := s.orderRepo.GetByOrderNumber(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}

	if existing == nil {
		order := s.orderFromPayment(payment, status)
		err := s.orderRepo.Create(ctx, order)
		switch {
		case err == nil:
			s.log.Info("webhook 补建订单",
				zap.String("order", ref),
				zap.String("status", status),
				zap.String("source", source),
			)
			s.hooks.afterTransition(ctx, order, "", source)
			return order, nil
		case errors.Is(err, gorm.ErrDuplicatedKey):
			existing, err = s.orderRepo.GetByOrderNumber(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("查询订单失败: %w", err)
			}
			if existing == nil {
				return nil, fmt.Errorf("订单 %s 唯一约束冲突但未找到记录", ref)
			}
		default:
			return nil, fmt.Errorf("补建订单失败: %w", err)
		}
	}

	return s.applyPayment(ctx, existing, payment, status, source)
}

// applyPayment 更新已有订单的支付字段
// 以读到的状态做条件更新；并发的另一路先改了状态时重读后重试，副作用只由真正完成迁移的一路触发
func (s *PaymentService) applyPayment(ctx context.Context, order *model.Order, payment *mercadopago.Payment, status, source string) (*model.Order, error) {
	for attempt := 1; ; attempt++ {
		previous := order.Status
		target, err := s.writePayment(ctx, order, payment, status)
		if err == nil {
			if previous != target {
				s.log.Info("订单状态变化",
					zap.String("order", order.OrderNumber),
					zap.String("from", previous),
					zap.String("to", target),
					zap.String("source", source),
				)
			}
			s.hooks.afterTransition(ctx, order, previous, source)
			return order, nil
		}
		if !errors.Is(err, repository.ErrStaleOrder) || attempt >= maxStaleRetries {
			return nil, fmt.Errorf("更新订单失败: %w", err)
		}

		s.log.Debug("订单状态已被并发修改，重读后重试",
			zap.String("order", order.OrderNumber),
			zap.String("seen", previous),
			zap.Int("attempt", attempt),
		)
		fresh, err := s.orderRepo.GetByID(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("查询订单失败: %w", err)
		}
		if fresh == nil {
			return nil, fmt.Errorf("订单 %s 已不存在", order.OrderNumber)
		}
		order = fresh
	}
}

// writePayment 从 order 当前状态条件更新支付字段，成功后同步到 order，返回写入的状态
func (s *PaymentService) writePayment(ctx context.Context, order *model.Order, payment *mercadopago.Payment, status string) (string, error) {
	previous := order.Status

	// 已发货/已签收的订单不被重复的 approved 通知回退
	if status == model.OrderStatusPaid &&
		(previous == model.OrderStatusShipped || previous == model.OrderStatusDelivered) {
		status = previous
	}

	paymentID := fmt.Sprintf("%d", payment.ID)
	fields := map[string]interface{}{
		"status":                  status,
		"payment_status":          payment.Status,
		"payment_status_detail":   payment.StatusDetail,
		"transaction_amount":      model.RoundMoney(payment.TransactionAmount),
		"mercado_pago_payment_id": paymentID,
		"payment_method":          payment.PaymentMethodID,
	}
	var paidAt *time.Time
	if status == model.OrderStatusPaid && order.PaidAt == nil {
		at := s.paidAt(payment)
		fields["paid_at"] = at
		paidAt = &at
	}

	if err := s.orderRepo.UpdateFieldsFromStatus(ctx, order.ID, previous, fields); err != nil {
		return "", err
	}

	order.Status = status
	order.PaymentStatus = payment.Status
	order.PaymentStatusDetail = payment.StatusDetail
	order.TransactionAmount = fields["transaction_amount"].(float64)
	order.MercadoPagoPaymentID = paymentID
	order.PaymentMethod = payment.PaymentMethodID
	if paidAt != nil {
		order.PaidAt = paidAt
	}
	return status, nil
}

// ReconcilePending 扫描长时间未支付的订单，向支付平台查询补偿丢失的 webhook
func (s *PaymentService) ReconcilePending(ctx context.Context) (*dto.ReconcileResp, error) {
	if s.gateway == nil {
		return nil, ErrPaymentNotConfigured
	}

	now := s.now()
	orders, err := s.orderRepo.ListPendingBetween(ctx, now.Add(-reconcileMaxAge), now.Add(-reconcileMinAge), reconcileBatch)
	if err != nil {
		return nil, fmt.Errorf("查询待对账订单失败: %w", err)
	}

	result := &dto.ReconcileResp{}
	for _, order := range orders {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Checked++

		payments, err := s.gateway.SearchPaymentsByReference(ctx, order.OrderNumber)
		if err != nil {
			s.log.Warn("查询支付失败", zap.String("order", order.OrderNumber), zap.Error(err))
			continue
		}
		latest := latestPayment(payments)
		if latest == nil {
			continue
		}

		updated, err := s.Reconcile(ctx, latest, event.SourceReconcile)
		if err != nil {
			s.log.Error("对账订单失败", zap.String("order", order.OrderNumber), zap.Error(err))
			continue
		}
		if updated != nil && updated.Status != model.OrderStatusPending {
			result.Updated++
		}
	}

	s.log.Info("待支付订单对账完成", zap.Int("checked", result.Checked), zap.Int("updated", result.Updated))
	return result, nil
}

// ==================== 辅助函数 ====================

func (s *PaymentService) paidAt(payment *mercadopago.Payment) time.Time {
	if payment.DateApproved != nil {
		return *payment.DateApproved
	}
	return s.now()
}

// orderFromPayment 从支付 metadata 和付款人信息重建订单
func (s *PaymentService) orderFromPayment(payment *mercadopago.Payment, status string) *model.Order {
	order := &model.Order{
		OrderNumber:          payment.ExternalReference,
		CustomerName:         firstNonEmpty(payment.MetadataString(metaCustomerName), payment.Payer.FullName()),
		CustomerEmail:        firstNonEmpty(payment.MetadataString(metaCustomerEmail), payment.Payer.Email),
		CustomerPhone:        firstNonEmpty(payment.MetadataString(metaCustomerPhone), payment.Payer.Phone.AreaCode+payment.Payer.Phone.Number),
		CustomerDNI:          firstNonEmpty(payment.MetadataString(metaCustomerDNI), payment.Payer.Identification.Number),
		Address:              payment.MetadataString(metaAddress),
		Province:             payment.MetadataString(metaProvince),
		Locality:             payment.MetadataString(metaLocality),
		PostalCode:           payment.MetadataString(metaPostalCode),
		DeliveryMethod:       firstNonEmpty(payment.MetadataString(metaDeliveryMethod), model.DeliveryMethodShipping),
		Notes:                payment.MetadataString(metaNotes),
		Status:               status,
		PaymentStatus:        payment.Status,
		PaymentStatusDetail:  payment.StatusDetail,
		PaymentMethod:        payment.PaymentMethodID,
		TransactionAmount:    model.RoundMoney(payment.TransactionAmount),
		MercadoPagoPaymentID: fmt.Sprintf("%d", payment.ID),
		Items:                metadataItems(payment.Metadata[metaItems]),
	}
	if clubID := payment.MetadataInt64(metaClubID); clubID > 0 {
		order.ClubID = &clubID
	}

	order.TotalAmount = order.ComputeTotal()
	if order.TotalAmount == 0 {
		order.TotalAmount = order.TransactionAmount
	}
	if status == model.OrderStatusPaid {
		paidAt := s.paidAt(payment)
		order.PaidAt = &paidAt
	}
	return order
}

// metadataItems 解析 metadata 中的商品快照，格式不对时返回空
func metadataItems(raw interface{}) []model.OrderItem {
	if raw == nil {
		return []model.OrderItem{}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return []model.OrderItem{}
	}
	var items []model.OrderItem
	if err := json.Unmarshal(b, &items); err != nil {
		return []model.OrderItem{}
	}
	return items
}

// latestPayment 取创建时间最新的一笔
func latestPayment(payments []mercadopago.Payment) *mercadopago.Payment {
	if len(payments) == 0 {
		return nil
	}
	sort.SliceStable(payments, func(i, j int) bool {
		a, b := payments[i].DateCreated, payments[j].DateCreated
		if a == nil || b == nil {
			return payments[i].ID > payments[j].ID
		}
		return a.After(*b)
	})
	return &payments[0]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
