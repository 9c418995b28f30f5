package model

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// ==================== 订单状态常量 ====================

// OrderStatus 订单业务状态
const (
	OrderStatusPending   = "pending"   // 待支付
	OrderStatusPaid      = "paid"      // 已支付
	OrderStatusShipped   = "shipped"   // 已发货
	OrderStatusDelivered = "delivered" // 已签收
	OrderStatusRejected  = "rejected"  // 支付被拒
	OrderStatusCancelled = "cancelled" // 已取消
	OrderStatusRefunded  = "refunded"  // 已退款
)

// DeliveryMethod 配送方式
const (
	DeliveryMethodShipping   = "shipping"    // 邮寄
	DeliveryMethodClubPickup = "club_pickup" // 俱乐部自提
)

// OrderStatusLabels 状态展示文案（邮件、后台）
var OrderStatusLabels = map[string]string{
	OrderStatusPending:   "Pendiente de pago",
	OrderStatusPaid:      "Pago confirmado",
	OrderStatusShipped:   "Enviado",
	OrderStatusDelivered: "Entregado",
	OrderStatusRejected:  "Pago rechazado",
	OrderStatusCancelled: "Cancelado",
	OrderStatusRefunded:  "Reembolsado",
}

// StatusLabel 状态文案，未知状态原样返回
func StatusLabel(status string) string {
	if label, ok := OrderStatusLabels[status]; ok {
		return label
	}
	return status
}

// IsValidOrderStatus 是否为合法的业务状态
func IsValidOrderStatus(status string) bool {
	_, ok := OrderStatusLabels[status]
	return ok
}

// ==================== Order 订单 ====================

// OrderItem 下单时的商品快照
type OrderItem struct {
	ProductID       int64   `json:"product_id"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	Size            string  `json:"size,omitempty"`
	Color           string  `json:"color,omitempty"`
	Fabric          string  `json:"fabric,omitempty"`
	Personalization string  `json:"personalization,omitempty"`
}

// Subtotal 小计
func (i OrderItem) Subtotal() float64 {
	return float64(toCents(i.Price)*int64(i.Quantity)) / 100
}

// Order 订单
// OrderNumber 同时是支付侧的 external_reference，是 webhook 对账的幂等键
type Order struct {
	BaseModel
	OrderNumber string `gorm:"size:64;uniqueIndex;not null" json:"order_number"`

	// 顾客信息
	CustomerName  string `gorm:"size:255" json:"customer_name"`
	CustomerEmail string `gorm:"size:255;index" json:"customer_email"`
	CustomerPhone string `gorm:"size:64" json:"customer_phone"`
	CustomerDNI   string `gorm:"column:customer_dni;size:32" json:"customer_dni"`

	// 收货地址
	Address    string `gorm:"size:512" json:"address"`
	Province   string `gorm:"size:128" json:"province"`
	Locality   string `gorm:"size:128" json:"locality"`
	PostalCode string `gorm:"size:16" json:"postal_code"`

	DeliveryMethod string `gorm:"size:32" json:"delivery_method"`
	ClubID         *int64 `gorm:"index" json:"club_id"`

	Items       datatypes.JSONSlice[OrderItem] `json:"items"`
	TotalAmount float64                        `json:"total_amount"`

	// 状态
	Status              string  `gorm:"size:32;index;not null" json:"status"`
	PaymentStatus       string  `gorm:"size:32" json:"payment_status"`
	PaymentStatusDetail string  `gorm:"size:128" json:"payment_status_detail"`
	PaymentMethod       string  `gorm:"size:64" json:"payment_method"`
	TransactionAmount   float64 `json:"transaction_amount"`

	// 支付渠道
	MercadoPagoPreferenceID string `gorm:"column:mercado_pago_preference_id;size:128" json:"mercado_pago_preference_id"`
	MercadoPagoPaymentID    string `gorm:"column:mercado_pago_payment_id;size:64;index" json:"mercado_pago_payment_id"`

	Notes  string     `gorm:"type:text" json:"notes"`
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// ItemProductIDs 订单中出现的商品 ID（去重）
func (o *Order) ItemProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Items))
	ids := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		if item.ProductID == 0 {
			continue
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ComputeTotal 按快照计算总额，按分累加避免浮点误差
func (o *Order) ComputeTotal() float64 {
	var cents int64
	for _, item := range o.Items {
		cents += toCents(item.Subtotal())
	}
	return float64(cents) / 100
}

// RoundMoney 金额保留两位小数
func RoundMoney(amount float64) float64 {
	return float64(toCents(amount)) / 100
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// IsClubPickup 是否俱乐部自提
func (o *Order) IsClubPickup() bool {
	return o.DeliveryMethod == DeliveryMethodClubPickup && o.ClubID != nil && *o.ClubID > 0
}
