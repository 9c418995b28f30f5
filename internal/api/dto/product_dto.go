package dto

import "teamwear_shop/internal/model"

// ProductQuery 商品列表查询
type ProductQuery struct {
	Category string `form:"category"`
	Club     string `form:"club"` // slug 或 id
}

// CreateProductReq 创建商品
type CreateProductReq struct {
	Name              string                `json:"name"`
	Category          string                `json:"category"`
	Description       string                `json:"description"`
	Price             *float64              `json:"price" binding:"omitempty,gte=0"`
	PriceOnRequest    bool                  `json:"price_on_request"`
	Images            []string              `json:"images"`
	ImagePositions    []model.ImagePosition `json:"image_positions"`
	Sizes             []string              `json:"sizes"`
	Fabrics           map[string]float64    `json:"fabrics"`
	LeadTime          string                `json:"lead_time"`
	Active            *bool                 `json:"active"`
	AllowCustomName   bool                  `json:"allow_custom_name"`
	AllowCustomNumber bool                  `json:"allow_custom_number"`
	OrderIndex        *int                  `json:"order_index"`
}

// UpdateProductReq 部分更新，nil 字段不修改
type UpdateProductReq struct {
	Name              *string                `json:"name"`
	Category          *string                `json:"category"`
	Description       *string                `json:"description"`
	Price             *float64               `json:"price" binding:"omitempty,gte=0"`
	ClearPrice        bool                   `json:"clear_price"`
	PriceOnRequest    *bool                  `json:"price_on_request"`
	Images            *[]string              `json:"images"`
	ImagePositions    *[]model.ImagePosition `json:"image_positions"`
	Sizes             *[]string              `json:"sizes"`
	Fabrics           *map[string]float64    `json:"fabrics"`
	LeadTime          *string                `json:"lead_time"`
	Active            *bool                  `json:"active"`
	AllowCustomName   *bool                  `json:"allow_custom_name"`
	AllowCustomNumber *bool                  `json:"allow_custom_number"`
	OrderIndex        *int                   `json:"order_index"`
}
