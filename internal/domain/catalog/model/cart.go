package model

import (
	"time"

	baseModel "glow_store/pkg/model"
)

// 购物车状态
const (
	CartStatusActive    = "active"
	CartStatusPurchased = "purchased"
)

// Cart 购物车
type Cart struct {
	baseModel.BaseModel
	UserID      *string    `gorm:"type:uuid;index" json:"userId,omitempty"` // 游客车为空
	Status      string     `gorm:"default:'active'" json:"status"`
	PurchasedAt *time.Time `json:"purchasedAt,omitempty"`
	Items       []CartItem `gorm:"foreignKey:CartID" json:"items"`
}

// CartItem 购物车条目
type CartItem struct {
	baseModel.BaseModel
	CartID    string  `gorm:"type:uuid;index;not null" json:"cartId"`
	ProductID string  `gorm:"type:uuid;not null" json:"productId"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`
}
