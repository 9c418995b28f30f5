package model

import (
	"gorm.io/datatypes"
)

// ImagePosition 图片裁剪/缩放位置，与 Images 按下标对齐
type ImagePosition struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultImagePosition 居中、不缩放
func DefaultImagePosition() ImagePosition {
	return ImagePosition{X: 50, Y: 50, Zoom: 1}
}

// Product 商品
type Product struct {
	BaseModel
	Sortable

	Name        string `gorm:"size:255;not null" json:"name"`
	Category    string `gorm:"size:255;index" json:"category"` // 分类名称，非外键
	Description string `gorm:"type:text" json:"description"`

	// Price 为空表示询价商品
	Price          *float64 `json:"price"`
	PriceOnRequest bool     `gorm:"default:false" json:"price_on_request"`

	// Images 第一张为主图，同时写入旧字段 Image
	Images         datatypes.JSONSlice[string]        `json:"images"`
	Image          string                             `gorm:"size:512" json:"image"`
	ImagePositions datatypes.JSONSlice[ImagePosition] `json:"image_positions"`

	Sizes    datatypes.JSONSlice[string]            `json:"sizes"`
	Fabrics  datatypes.JSONType[map[string]float64] `json:"fabrics"` // 面料名 -> 价格
	LeadTime string                                 `gorm:"size:100" json:"lead_time"`

	AllowCustomName   bool `gorm:"default:false" json:"allow_custom_name"`
	AllowCustomNumber bool `gorm:"default:false" json:"allow_custom_number"`
}

func (Product) TableName() string {
	return "products"
}

// NewFabrics 面料价格表，nil 视为空表
func NewFabrics(m map[string]float64) datatypes.JSONType[map[string]float64] {
	if m == nil {
		m = map[string]float64{}
	}
	return datatypes.NewJSONType(m)
}

// SyncPrimaryImage 将 Images[0] 镜像到 Image，并保持 ImagePositions 长度一致
func (p *Product) SyncPrimaryImage() {
	if len(p.Images) > 0 {
		p.Image = p.Images[0]
	} else {
		p.Image = ""
	}
	positions := make(datatypes.JSONSlice[ImagePosition], len(p.Images))
	for i := range positions {
		if i < len(p.ImagePositions) {
			positions[i] = p.ImagePositions[i]
		} else {
			positions[i] = DefaultImagePosition()
		}
	}
	p.ImagePositions = positions
}

// UnitPrice 按面料计算单价
// 所选面料有定价时使用面料价格，否则使用商品价格
func (p *Product) UnitPrice(fabric string) (float64, bool) {
	if fabric != "" {
		if price, ok := p.Fabrics.Data()[fabric]; ok {
			return price, true
		}
	}
	if p.PriceOnRequest || p.Price == nil {
		return 0, false
	}
	return *p.Price, true
}
