package model

import (
	"time"

	baseModel "glow_store/pkg/model"
)

// 用户角色
const (
	RoleUser  = 1
	RoleAdmin = 2
)

// User 用户模型，含积分会员档案
type User struct {
	baseModel.BaseModel
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `json:"-"` // 密码不返回给前端
	Role     int    `gorm:"default:1" json:"role"`

	// 积分会员档案
	RewardsEnabled  bool       `gorm:"default:false" json:"rewardsEnabled"`
	RewardPoints    int        `gorm:"default:0" json:"rewardPoints"`   // 可消费余额
	LifetimePoints  int        `gorm:"default:0" json:"lifetimePoints"` // 累计积分，只增不减，仅用于等级判定
	RewardTierID    *string    `gorm:"type:uuid" json:"rewardTierId,omitempty"`
	ReferralCode    *string    `gorm:"uniqueIndex" json:"referralCode,omitempty"`
	ReferredByID    *string    `gorm:"type:uuid" json:"referredById,omitempty"`
	ReferralCount   int        `gorm:"default:0" json:"referralCount"`
	LastCheckIn     *time.Time `json:"lastCheckIn,omitempty"`
	CheckInStreak   int        `gorm:"default:0" json:"checkInStreak"`
	RewardsJoinedAt *time.Time `json:"rewardsJoinedAt,omitempty"`
	BirthDate       *time.Time `json:"birthDate,omitempty"`
}
