package event

import (
	"context"
	"time"
)

// 订单状态变化来源
const (
	SourceWebhook   = "webhook"
	SourceReconcile = "reconcile"
	SourceAdmin     = "admin"
	SourceCheckout  = "checkout"
)

// OrderStatusChanged 订单状态变化事件
type OrderStatusChanged struct {
	OrderNumber    string    `json:"order_number"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status"`
	PaymentStatus  string    `json:"payment_status,omitempty"`
	Source         string    `json:"source"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher 事件发布接口，发布失败不影响业务
type Publisher interface {
	PublishOrderStatus(ctx context.Context, evt OrderStatusChanged)
}

// NoopPublisher 未配置 broker 时使用
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderStatus(context.Context, OrderStatusChanged) {}
