package model

// CarouselImage 首页轮播图
type CarouselImage struct {
	BaseModel
	Sortable

	Title       string `gorm:"size:255" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:512;not null" json:"image_url"`
	CTAText     string `gorm:"column:cta_text;size:100" json:"cta_text"`
	CTALink     string `gorm:"column:cta_link;size:512" json:"cta_link"`
}

func (CarouselImage) TableName() string {
	return "carousel_images"
}
