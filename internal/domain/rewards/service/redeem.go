package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"glow_store/internal/domain/rewards/model"
	"glow_store/pkg/logger"
	"glow_store/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RedeemResult 兑换结果
type RedeemResult struct {
	RewardName      string  `json:"rewardName"`
	RewardType      string  `json:"rewardType"`
	DiscountValue   float64 `json:"discountValue,omitempty"`
	RedemptionCode  string  `json:"redemptionCode,omitempty"`
	RemainingPoints int     `json:"remainingPoints"`
	TransactionID   string  `json:"transactionId"`
}

// Lua 脚本：库存键存在时原子预扣减。
// 返回 1 表示扣走了一个名额，0 表示键不存在（未预热，直接放行），-1 表示售罄
var stockScript = redis.NewScript(`
	local stock = redis.call("GET", KEYS[1])
	if not stock then
		return 0
	end
	if tonumber(stock) <= 0 then
		return -1
	end
	redis.call("DECR", KEYS[1])
	return 1
`)

// Redeem 用积分兑换目录奖励
// 校验顺序固定且短路：会员资格 → 上架 → 有效期窗口 → 余额 → 最低等级
// → 个人兑换次数 → 全局库存。多个条件同时不满足时报最先失败的那个。
func (s *rewardsService) Redeem(userID, rewardID string) (*RedeemResult, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotRewardsMember
		}
		return nil, err
	}
	if !user.RewardsEnabled {
		return nil, ErrNotRewardsMember
	}

	reward, err := s.catalog.GetByID(rewardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}

	if !reward.IsActive {
		return nil, ErrRewardInactive
	}

	now := s.now()
	if reward.ValidFrom != nil && reward.ValidFrom.After(now) {
		return nil, ErrRewardNotYetValid
	}
	if reward.ValidUntil != nil && reward.ValidUntil.Before(now) {
		return nil, ErrRewardExpired
	}

	if user.RewardPoints < reward.PointsCost {
		return nil, ErrInsufficientPoints
	}

	// 最低等级按等级的 display_order 比较，不看 min_points
	if reward.MinimumTierID != nil {
		if user.RewardTierID == nil {
			return nil, ErrTierTooLow
		}
		requiredTier, err := s.tiers.GetByID(*reward.MinimumTierID)
		if err != nil {
			return nil, err
		}
		userTier, err := s.tiers.GetByID(*user.RewardTierID)
		if err != nil {
			return nil, err
		}
		if userTier.Order < requiredTier.Order {
			return nil, ErrTierTooLow
		}
	}

	if reward.LimitPerUser > 0 {
		count, err := s.ledger.CountRedemptions(userID, rewardID)
		if err != nil {
			return nil, err
		}
		if count >= int64(reward.LimitPerUser) {
			return nil, ErrRedemptionLimitReached
		}
	}

	if reward.TotalAvailable > 0 && reward.TotalRedeemed >= reward.TotalAvailable {
		return nil, ErrSoldOut
	}

	// 校验通过，开始扣减。限量奖励先走本地售罄缓存和 Redis 预扣减，
	// 数据库条件自增是最终裁决。Redis 计数只是挡板，被它拦下不落本地缓存
	stockReserved := false
	if reward.TotalAvailable > 0 {
		if _, soldOut := s.soldOutMap.Load(rewardID); soldOut {
			return nil, ErrSoldOut
		}
		if s.rdb != nil {
			stockKey := "rewards:stock:" + rewardID
			result, err := stockScript.Run(context.Background(), s.rdb, []string{stockKey}).Int()
			if err == nil {
				if result == -1 {
					return nil, ErrSoldOut
				}
				stockReserved = result == 1
			}
		}
	}

	ok, err := s.catalog.IncrementRedeemed(rewardID)
	if err != nil {
		if stockReserved {
			s.restoreStockUnit(rewardID)
		}
		return nil, err
	}
	if !ok {
		s.soldOutMap.Store(rewardID, true)
		return nil, ErrSoldOut
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"rewardType":    reward.Type,
		"discountValue": reward.DiscountValue,
	})
	entry := &model.Transaction{
		UserID:          userID,
		Type:            model.TxTypeRedeemed,
		Points:          -reward.PointsCost,
		Action:          string(model.ActionRedemption),
		Description:     "Redeemed: " + reward.Name,
		RelatedRewardID: &rewardID,
		Metadata:        metadata,
	}

	debited, err := s.ledger.Debit(userID, reward.PointsCost, entry)
	if err != nil || !debited {
		// 扣分没成（并发把余额花掉了，或存储故障），数据库计数和
		// Redis 预扣减的名额都要还回去，不然 Redis 计数会越漂越低
		if rbErr := s.catalog.DecrementRedeemed(rewardID); rbErr != nil && logger.Log != nil {
			logger.Log.Error("failed to roll back redeemed count",
				zap.String("reward_id", rewardID), zap.Error(rbErr))
		}
		if stockReserved {
			s.restoreStockUnit(rewardID)
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrInsufficientPoints
	}

	// 折扣类奖励生成兑换码：前缀 + 用户ID片段 + base36 时间戳
	// 唯一性是概率意义上的，不与历史码查重
	redemptionCode := ""
	if reward.IssuesCode() {
		idFragment := strings.ToUpper(strings.ReplaceAll(userID, "-", ""))
		if len(idFragment) > 8 {
			idFragment = idFragment[:8]
		}
		redemptionCode = fmt.Sprintf("%s%s%s", s.policy.CodePrefix, idFragment,
			strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	}

	metrics.GetGlobalCollector().RecordRedemption(reward.Type, reward.PointsCost)

	return &RedeemResult{
		RewardName:      reward.Name,
		RewardType:      reward.Type,
		DiscountValue:   reward.DiscountValue,
		RedemptionCode:  redemptionCode,
		RemainingPoints: user.RewardPoints - reward.PointsCost,
		TransactionID:   entry.ID,
	}, nil
}

// restoreStockUnit 回滚时把 Lua 预扣减占掉的库存名额还回 Redis
func (s *rewardsService) restoreStockUnit(rewardID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(context.Background(), "rewards:stock:"+rewardID).Err(); err != nil && logger.Log != nil {
		logger.Log.Error("failed to restore reserved stock unit",
			zap.String("reward_id", rewardID), zap.Error(err))
	}
}
