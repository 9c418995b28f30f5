package dto

import (
	"encoding/json"
	"strings"
)

// ==================== 结账 ====================

// CartItem 购物车行
type CartItem struct {
	ProductID       int64   `json:"id" binding:"required"`
	Name            string  `json:"name"`
	Size            string  `json:"size"`
	Color           string  `json:"color"`
	Fabric          string  `json:"fabric"`
	Quantity        int     `json:"quantity" binding:"required,gte=1"`
	Price           float64 `json:"price"` // 仅供参考，服务端按目录重新定价
	Personalization string  `json:"personalization"`
}

// CustomerData 顾客表单
type CustomerData struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	DNI            string `json:"dni"`
	Address        string `json:"address"`
	Province       string `json:"province"`
	Locality       string `json:"locality"`
	PostalCode     string `json:"postal_code"`
	DeliveryMethod string `json:"delivery_method" binding:"required,oneof=shipping club_pickup"`
	ClubID         *int64 `json:"club_id"`
	Notes          string `json:"notes"`
}

// CreatePreferenceReq 创建支付偏好
type CreatePreferenceReq struct {
	Items        []CartItem   `json:"items" binding:"required,min=1,dive"`
	CustomerData CustomerData `json:"customerData" binding:"required"`
}

// CreatePreferenceResp 支付偏好响应
type CreatePreferenceResp struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirectUrl"`
	SandboxURL  string `json:"sandboxUrl"`
	OrderNumber string `json:"orderNumber"`
}

// ==================== 后台订单 ====================

// ListOrdersReq 订单列表请求
type ListOrdersReq struct {
	Status   string `form:"status"`
	Keyword  string `form:"q"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// UpdateOrderStatusReq 修改订单状态
type UpdateOrderStatusReq struct {
	Status string `json:"status" binding:"required,oneof=pending paid shipped delivered rejected cancelled refunded"`
	Notes  string `json:"notes"`
}

// OrderTrackResp 公开查询订单状态
type OrderTrackResp struct {
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	UpdatedAt   string `json:"updated_at"`
}

// ==================== Webhook ====================

// FlexID 兼容数字和字符串两种 id 格式
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// WebhookNotification 支付通知 body
type WebhookNotification struct {
	ID     FlexID `json:"id"`
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Data   struct {
		ID FlexID `json:"id"`
	} `json:"data"`
}

// ==================== 分页 ====================

// PageResp 分页响应
type PageResp[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// ReconcileResp 对账结果
type ReconcileResp struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
}
