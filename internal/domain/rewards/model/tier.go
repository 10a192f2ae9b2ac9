package model

import (
	"encoding/json"

	baseModel "glow_store/pkg/model"
)

// Tier 会员等级，按 MinPoints 阈值划分
// 等级判定取 MinPoints <= 累计积分 的最高一档
type Tier struct {
	baseModel.BaseModel
	Name             string          `gorm:"not null" json:"name"`
	Slug             string          `gorm:"uniqueIndex;not null" json:"slug"`
	MinPoints        int             `gorm:"not null;index" json:"minPoints"`
	PointsMultiplier float64         `gorm:"default:1" json:"pointsMultiplier"` // 仅作用于 purchase 积分
	Icon             string          `json:"icon"`
	Color            string          `json:"color"`
	Benefits         json.RawMessage `gorm:"type:jsonb" json:"benefits"`
	Order            int             `gorm:"column:display_order" json:"order"`
}

func (Tier) TableName() string {
	return "reward_tiers"
}
