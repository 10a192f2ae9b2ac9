package model

import (
	"encoding/json"

	baseModel "glow_store/pkg/model"
)

// 流水类型
const (
	TxTypeEarned   = "earned"
	TxTypeRedeemed = "redeemed"
	TxTypeExpired  = "expired"
	TxTypeAdjusted = "adjusted"
)

// ValidTxTypes 历史查询允许的类型过滤值
var ValidTxTypes = map[string]bool{
	TxTypeEarned:   true,
	TxTypeRedeemed: true,
	TxTypeExpired:  true,
	TxTypeAdjusted: true,
}

// Transaction 积分流水，只追加，不修改不删除
// 某用户所有流水 Points 之和即其当前可用余额（尽力保证，见 LedgerRepository.Credit/Debit）
type Transaction struct {
	baseModel.BaseModel
	UserID          string          `gorm:"type:uuid;index;not null" json:"userId"`
	Type            string          `gorm:"not null" json:"type"`   // earned, redeemed, expired, adjusted
	Points          int             `gorm:"not null" json:"points"` // 有符号，redeemed 为负
	Action          string          `gorm:"index" json:"action"`
	Description     string          `json:"description"`
	RelatedOrderID  *string         `gorm:"type:uuid" json:"relatedOrderId,omitempty"`
	RelatedRewardID *string         `gorm:"type:uuid;index" json:"relatedRewardId,omitempty"`
	Metadata        json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
}

func (Transaction) TableName() string {
	return "reward_transactions"
}
