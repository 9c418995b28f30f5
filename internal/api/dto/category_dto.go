package dto

// CreateCategoryReq 创建分类
type CreateCategoryReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Active      *bool  `json:"active"`
	OrderIndex  *int   `json:"order_index"`
}

// UpdateCategoryReq 更新分类
type UpdateCategoryReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Active      *bool   `json:"active"`
	OrderIndex  *int    `json:"order_index"`
}

// CreateCarouselReq 创建轮播图
type CreateCarouselReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	CTAText     string `json:"cta_text"`
	CTALink     string `json:"cta_link"`
	Active      *bool  `json:"active"`
	OrderIndex  *int   `json:"order_index"`
}

// UpdateCarouselReq 更新轮播图
type UpdateCarouselReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	CTAText     *string `json:"cta_text"`
	CTALink     *string `json:"cta_link"`
	Active      *bool   `json:"active"`
	OrderIndex  *int    `json:"order_index"`
}
