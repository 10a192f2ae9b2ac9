package service

import (
	"errors"

	"glow_store/internal/domain/rewards/model"
	"glow_store/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProcessReferralReward 被推荐人完成首单后给推荐人发放一次性奖励
// 去重在这里完成（查流水里有没有同一个 referredUser 的 referral 记录），
// 调用方不需要也不应该自己先查；重复调用是安全的空操作。
// 被推荐人本人不再额外得分（入会奖励已单独发过）。
func (s *rewardsService) ProcessReferralReward(referrerID, referredUserID string) error {
	already, err := s.ledger.HasReferralReward(referrerID, referredUserID)
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	referrer, err := s.users.GetByID(referrerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !referrer.RewardsEnabled {
		return nil
	}

	// 固定奖励，不吃等级倍率（action != purchase）
	points := s.policy.ReferralPoints
	result, err := s.AwardPoints(referrerID, model.ActionReferral, AwardOptions{
		Points:      &points,
		Description: "Friend made their first purchase",
		Metadata:    map[string]interface{}{"referredUser": referredUserID},
	})
	if err != nil {
		return err
	}
	if !result.Success {
		return nil
	}

	if err := s.users.IncrementReferralCount(referrerID); err != nil {
		if logger.Log != nil {
			logger.Log.Warn("failed to increment referral count",
				zap.String("referrer_id", referrerID), zap.Error(err))
		}
	}

	return nil
}
