package dto

// CreateClubReq 创建俱乐部
type CreateClubReq struct {
	Name               string  `json:"name"`
	Slug               string  `json:"slug"`
	Description        string  `json:"description"`
	LogoURL            string  `json:"logo_url"`
	ClientType         string  `json:"client_type" binding:"omitempty,oneof=club organization"`
	BackgroundType     string  `json:"background_type" binding:"omitempty,oneof=color image"`
	BackgroundColor    string  `json:"background_color"`
	BackgroundImageURL string  `json:"background_image_url"`
	BackgroundOverlay  float64 `json:"background_overlay" binding:"gte=0,lte=1"`
	NotificationEmail  string  `json:"notification_email" binding:"omitempty,email"`
	Active             *bool   `json:"active"`
	OrderIndex         *int    `json:"order_index"`
}

// UpdateClubReq 更新俱乐部
type UpdateClubReq struct {
	Name               *string  `json:"name"`
	Slug               *string  `json:"slug"`
	Description        *string  `json:"description"`
	LogoURL            *string  `json:"logo_url"`
	ClientType         *string  `json:"client_type" binding:"omitempty,oneof=club organization"`
	BackgroundType     *string  `json:"background_type" binding:"omitempty,oneof=color image"`
	BackgroundColor    *string  `json:"background_color"`
	BackgroundImageURL *string  `json:"background_image_url"`
	BackgroundOverlay  *float64 `json:"background_overlay" binding:"omitempty,gte=0,lte=1"`
	NotificationEmail  *string  `json:"notification_email" binding:"omitempty,email"`
	Active             *bool    `json:"active"`
	OrderIndex         *int     `json:"order_index"`
}

// SetClubProductsReq 替换俱乐部商品集合
type SetClubProductsReq struct {
	ProductIDs []int64 `json:"product_ids"`
}

// AddClubProductReq 添加单个关联
type AddClubProductReq struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

// SetProductClubsReq 替换商品所属俱乐部
type SetProductClubsReq struct {
	ClubIDs []int64 `json:"club_ids"`
}
