package service

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"glow_store/internal/domain/rewards/model"

	"gorm.io/gorm"
)

// 推荐码字符集：排除易混淆的 0/O/1/I/L
const referralCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const referralCodeLength = 6
const referralCodeMaxAttempts = 10

// JoinResult 入会结果
type JoinResult struct {
	Points       int    `json:"points"`
	ReferralCode string `json:"referralCode"`
	Tier         string `json:"tier"`
	Message      string `json:"message"`
}

// generateReferralCode 生成一个推荐码（前缀 + 6位受限字符集随机字符）
func (s *rewardsService) generateReferralCode() (string, error) {
	var b strings.Builder
	b.WriteString(s.policy.CodePrefix)
	max := big.NewInt(int64(len(referralCharset)))
	for i := 0; i < referralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(referralCharset[n.Int64()])
	}
	return b.String(), nil
}

// Join 加入积分计划
// 分配唯一推荐码（重试10次，全部冲突则失败——唯一性是硬约束，
// 推荐码列带唯一索引兜底）；可选填他人推荐码，自荐无效；
// 发放入会奖励并落到起始等级
func (s *rewardsService) Join(userID string, referralCode string) (*JoinResult, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.RewardsEnabled {
		return nil, ErrAlreadyMember
	}

	// 起始等级，种子未执行时可以为空
	starterTier, err := s.tiers.GetBySlug("starter")
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 解析推荐人（不区分大小写），拒绝自荐
	var referrerID *string
	if referralCode != "" {
		referrer, err := s.users.GetByReferralCode(referralCode)
		if err == nil && referrer.ID != user.ID {
			referrerID = &referrer.ID
		}
	}

	// 生成唯一推荐码
	newCode := ""
	for attempt := 0; attempt < referralCodeMaxAttempts; attempt++ {
		candidate, err := s.generateReferralCode()
		if err != nil {
			return nil, err
		}
		_, err = s.users.GetByReferralCode(candidate)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			newCode = candidate
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if newCode == "" {
		return nil, ErrReferralCodeExhausted
	}

	now := s.now()
	fields := map[string]interface{}{
		"rewards_enabled":   true,
		"referral_code":     newCode,
		"rewards_joined_at": now,
	}
	if referrerID != nil {
		fields["referred_by_id"] = *referrerID
	}
	if starterTier != nil {
		fields["reward_tier_id"] = starterTier.ID
	}
	if err := s.users.UpdateFields(userID, fields); err != nil {
		return nil, err
	}

	// 入会奖励走统一加分通道（流水 + 等级刷新）
	welcome := s.policy.WelcomePoints
	if _, err := s.AwardPoints(userID, model.ActionWelcome, AwardOptions{Points: &welcome}); err != nil {
		return nil, err
	}

	tierName := "Starter"
	if starterTier != nil {
		tierName = starterTier.Name
	}

	return &JoinResult{
		Points:       welcome,
		ReferralCode: newCode,
		Tier:         tierName,
		Message:      "Welcome to Glow Rewards!",
	}, nil
}
