package model

import (
	baseModel "glow_store/pkg/model"
)

// Product 商品
// Inventory 为 nil 表示不追踪库存
type Product struct {
	baseModel.BaseModel
	Title       string  `gorm:"not null" json:"title"`
	Description string  `json:"description"`
	PriceAmount float64 `gorm:"not null" json:"priceAmount"` // TND
	Inventory   *int    `json:"inventory,omitempty"`
	IsActive    bool    `gorm:"default:true;index" json:"isActive"`
}
