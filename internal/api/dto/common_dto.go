package dto

// ErrorResp 统一错误响应
type ErrorResp struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageResp 简单成功响应
type MessageResp struct {
	Message string `json:"message"`
}

// ReorderEntry 全量排序项
type ReorderEntry struct {
	ID         int64 `json:"id" binding:"required"`
	OrderIndex int   `json:"order_index" binding:"gte=0"`
}

// MoveDirection 相邻交换方向
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// SwapReq 相邻交换请求
type SwapReq struct {
	ID        int64  `json:"id" binding:"required"`
	Direction string `json:"direction" binding:"required,oneof=up down"`
}
