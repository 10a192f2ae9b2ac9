package model

import (
	"time"

	baseModel "glow_store/pkg/model"
)

// 兑换奖励类型
const (
	RewardTypeDiscountAmount  = "discount_amount"
	RewardTypeDiscountPercent = "discount_percent"
	RewardTypeFreeProduct     = "free_product"
	RewardTypeFreeShipping    = "free_shipping"
	RewardTypeFreeSample      = "free_sample"
)

// CatalogItem 兑换目录条目
type CatalogItem struct {
	baseModel.BaseModel
	Name           string     `gorm:"not null" json:"name"`
	Description    string     `json:"description"`
	PointsCost     int        `gorm:"not null" json:"pointsCost"`
	Type           string     `gorm:"not null" json:"type"`
	DiscountValue  float64    `json:"discountValue,omitempty"`
	MinimumTierID  *string    `gorm:"type:uuid" json:"minimumTierId,omitempty"`
	LimitPerUser   int        `gorm:"default:0" json:"limitPerUser"`   // 0 = 不限
	TotalAvailable int        `gorm:"default:0" json:"totalAvailable"` // 0 = 不限
	TotalRedeemed  int        `gorm:"default:0" json:"totalRedeemed"`
	IsActive       bool       `gorm:"default:true;index" json:"isActive"`
	IsFeatured     bool       `gorm:"default:false" json:"isFeatured"`
	Order          int        `gorm:"column:display_order" json:"order"`
	ValidFrom      *time.Time `json:"validFrom,omitempty"`
	ValidUntil     *time.Time `json:"validUntil,omitempty"`
}

func (CatalogItem) TableName() string {
	return "reward_catalog_items"
}

// IssuesCode 该类型奖励是否需要生成兑换码
func (i *CatalogItem) IssuesCode() bool {
	switch i.Type {
	case RewardTypeDiscountAmount, RewardTypeDiscountPercent, RewardTypeFreeShipping:
		return true
	}
	return false
}
