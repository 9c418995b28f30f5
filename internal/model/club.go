package model

// ClientType 客户类型
const (
	ClientTypeClub         = "club"
	ClientTypeOrganization = "organization"
)

// BackgroundType 店铺背景样式
const (
	BackgroundColor = "color"
	BackgroundImage = "image"
)

// Club 俱乐部/机构，拥有自己的品牌店铺页和商品子集
type Club struct {
	BaseModel
	Sortable

	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	LogoURL     string `gorm:"size:512" json:"logo_url"`
	ClientType  string `gorm:"size:20;default:club" json:"client_type"`

	BackgroundType     string  `gorm:"size:20;default:color" json:"background_type"`
	BackgroundColor    string  `gorm:"size:20" json:"background_color"`
	BackgroundImageURL string  `gorm:"size:512" json:"background_image_url"`
	BackgroundOverlay  float64 `gorm:"default:0" json:"background_overlay"` // 0..1 遮罩透明度

	NotificationEmail string `gorm:"size:255" json:"notification_email"`
}

func (Club) TableName() string {
	return "clubs"
}

// ClubProduct 俱乐部-商品关联
type ClubProduct struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ClubID     int64 `gorm:"uniqueIndex:idx_club_product;not null" json:"club_id"`
	ProductID  int64 `gorm:"uniqueIndex:idx_club_product;index;not null" json:"product_id"`
	OrderIndex int   `gorm:"default:0" json:"order_index"`

	Club    *Club    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Product *Product `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (ClubProduct) TableName() string {
	return "club_products"
}
