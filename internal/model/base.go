package model

import (
	"time"
)

// BaseModel 公共字段
// 目录数据删除是物理删除，所以这里不带 DeletedAt
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sortable 手动排序字段
// Active 不设数据库默认值：gorm 会跳过带默认值的零值字段，false 将写不进去
type Sortable struct {
	OrderIndex int  `gorm:"not null;default:0;index" json:"order_index"`
	Active     bool `gorm:"not null;index" json:"active"`
}

// AllModels 需要自动迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&AdminUser{},
		&Category{},
		&Product{},
		&Club{},
		&ClubProduct{},
		&CarouselImage{},
		&Order{},
	}
}
