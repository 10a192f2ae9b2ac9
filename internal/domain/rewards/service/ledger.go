package service

import (
	"encoding/json"
	"errors"
	"math"

	"glow_store/internal/domain/rewards/model"
	"glow_store/pkg/logger"
	"glow_store/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AwardOptions 加分可选参数
type AwardOptions struct {
	Points      *int                   // 覆盖策略表的基础分
	Description string                 // 覆盖默认流水描述
	OrderID     *string                // 关联订单
	Metadata    map[string]interface{} // 附加信息，写入流水 jsonb
}

// AwardResult 加分结果
type AwardResult struct {
	Success       bool `json:"success"`
	PointsAwarded int  `json:"pointsAwarded"`
	NewBalance    int  `json:"newBalance"`
}

// AwardPoints 给用户加分
// 用户不存在或未入会时软失败（Success=false，不报错）；存储故障返回 error。
// 注意：没有幂等键，同一订单重复调用会重复加分，调用方负责每单只调一次。
func (s *rewardsService) AwardPoints(userID string, action model.RewardAction, opts AwardOptions) (*AwardResult, error) {
	policy, known := model.ActionPolicies[action]
	if !known {
		return nil, ErrUnknownAction
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AwardResult{Success: false}, nil
		}
		return nil, err
	}
	if !user.RewardsEnabled {
		return &AwardResult{Success: false}, nil
	}

	// 基础分：显式传入优先，否则查策略表
	basePoints := policy.BasePoints
	if opts.Points != nil {
		basePoints = *opts.Points
	}

	// 等级倍率只作用于策略表声明吃倍率的动作（目前仅 purchase）
	pointsToAward := basePoints
	if policy.MultiplierApplies && user.RewardTierID != nil {
		tier, err := s.tiers.GetByID(*user.RewardTierID)
		if err == nil && tier.PointsMultiplier > 0 {
			pointsToAward = int(math.Floor(float64(basePoints) * tier.PointsMultiplier))
		}
	}

	description := opts.Description
	if description == "" {
		description = model.DefaultDescription(action, pointsToAward)
	}

	var metadata json.RawMessage
	if opts.Metadata != nil {
		metadata, _ = json.Marshal(opts.Metadata)
	}

	entry := &model.Transaction{
		UserID:         userID,
		Type:           model.TxTypeEarned,
		Points:         pointsToAward,
		Action:         string(action),
		Description:    description,
		RelatedOrderID: opts.OrderID,
		Metadata:       metadata,
	}

	// 余额变更和流水追加在同一事务内
	if err := s.ledger.Credit(userID, pointsToAward, entry); err != nil {
		return nil, err
	}

	newLifetime := user.LifetimePoints + pointsToAward
	if err := s.UpdateUserTier(userID, newLifetime); err != nil {
		// 等级没刷新不影响本次加分，下次加分会追上
		if logger.Log != nil {
			logger.Log.Warn("tier refresh failed after award",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	metrics.GetGlobalCollector().RecordPointsAwarded(string(action), pointsToAward)

	return &AwardResult{
		Success:       true,
		PointsAwarded: pointsToAward,
		NewBalance:    user.RewardPoints + pointsToAward,
	}, nil
}

// UpdateUserTier 按累计积分重新判定等级并落库
// 取 min_points <= lifetimePoints 的最高一档；没有任何等级符合时保持原样
func (s *rewardsService) UpdateUserTier(userID string, lifetimePoints int) error {
	tier, err := s.tiers.FindForPoints(lifetimePoints)
	if err != nil {
		return err
	}
	if tier == nil {
		return nil
	}
	return s.users.UpdateFields(userID, map[string]interface{}{
		"reward_tier_id": tier.ID,
	})
}
