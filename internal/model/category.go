package model

// Category 商品分类
type Category struct {
	BaseModel
	Sortable

	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:512" json:"image_url"`
}

func (Category) TableName() string {
	return "categories"
}
