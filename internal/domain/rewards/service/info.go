package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"glow_store/internal/domain/rewards/model"

	"gorm.io/gorm"
)

// TierInfo 等级展示信息
type TierInfo struct {
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Icon             string          `json:"icon"`
	Color            string          `json:"color"`
	PointsMultiplier float64         `json:"pointsMultiplier"`
	Benefits         json.RawMessage `json:"benefits,omitempty"`
}

// NextTierInfo 下一等级及差距
type NextTierInfo struct {
	Name          string `json:"name"`
	MinPoints     int    `json:"minPoints"`
	PointsToReach int    `json:"pointsToReach"`
}

// BalanceResult 余额面板
type BalanceResult struct {
	IsRewardsMember    bool                `json:"isRewardsMember"`
	Points             int                 `json:"points"`
	LifetimePoints     int                 `json:"lifetimePoints"`
	Tier               *TierInfo           `json:"tier,omitempty"`
	NextTier           *NextTierInfo       `json:"nextTier,omitempty"`
	ReferralCode       string              `json:"referralCode,omitempty"`
	ReferralCount      int                 `json:"referralCount"`
	CheckInStreak      int                 `json:"checkInStreak"`
	LastCheckIn        *time.Time          `json:"lastCheckIn,omitempty"`
	RecentTransactions []model.Transaction `json:"recentTransactions"`
}

// GetBalance 查询余额、等级与最近流水
// 未入会不是错误，返回 isRewardsMember=false
func (s *rewardsService) GetBalance(userID string) (*BalanceResult, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.RewardsEnabled {
		return &BalanceResult{IsRewardsMember: false}, nil
	}

	result := &BalanceResult{
		IsRewardsMember: true,
		Points:          user.RewardPoints,
		LifetimePoints:  user.LifetimePoints,
		ReferralCount:   user.ReferralCount,
		CheckInStreak:   user.CheckInStreak,
		LastCheckIn:     user.LastCheckIn,
	}
	if user.ReferralCode != nil {
		result.ReferralCode = *user.ReferralCode
	}

	if user.RewardTierID != nil {
		tier, err := s.tiers.GetByID(*user.RewardTierID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if tier != nil {
			result.Tier = &TierInfo{
				Name:             tier.Name,
				Slug:             tier.Slug,
				Icon:             tier.Icon,
				Color:            tier.Color,
				PointsMultiplier: tier.PointsMultiplier,
				Benefits:         tier.Benefits,
			}

			next, err := s.tiers.FindNextAbove(tier.MinPoints)
			if err != nil {
				return nil, err
			}
			if next != nil {
				toReach := next.MinPoints - user.LifetimePoints
				if toReach < 0 {
					toReach = 0
				}
				result.NextTier = &NextTierInfo{
					Name:          next.Name,
					MinPoints:     next.MinPoints,
					PointsToReach: toReach,
				}
			}
		}
	}

	recent, err := s.ledger.RecentByUser(userID, 5)
	if err != nil {
		return nil, err
	}
	result.RecentTransactions = recent

	return result, nil
}

// GetHistory 分页查询流水，可按类型过滤
func (s *rewardsService) GetHistory(userID string, offset, limit int, txType string) ([]model.Transaction, int64, error) {
	if txType != "" && !model.ValidTxTypes[txType] {
		txType = "" // 非法类型按不过滤处理
	}
	return s.ledger.ListByUser(userID, offset, limit, txType)
}

// CatalogResult 兑换目录
type CatalogResult struct {
	Rewards []model.CatalogItem `json:"rewards"`
	Tiers   []model.Tier        `json:"tiers"`
}

const catalogCacheKey = "rewards:catalog"

// GetCatalog 上架且在有效期内的奖励 + 等级说明，带 Redis 缓存
func (s *rewardsService) GetCatalog() (*CatalogResult, error) {
	ctx := context.Background()

	if s.cache != nil {
		var cached CatalogResult
		if err := s.cache.Get(ctx, catalogCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	rewards, err := s.catalog.ListActive(s.now())
	if err != nil {
		return nil, err
	}
	tiers, err := s.tiers.ListAll()
	if err != nil {
		return nil, err
	}

	result := &CatalogResult{Rewards: rewards, Tiers: tiers}

	if s.cache != nil {
		_ = s.cache.Set(ctx, catalogCacheKey, result, s.policy.CatalogCacheTTL)
	}

	return result, nil
}
