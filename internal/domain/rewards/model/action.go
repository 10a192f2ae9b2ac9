package model

import "fmt"

// RewardAction 积分动作
type RewardAction string

const (
	ActionWelcome         RewardAction = "welcome"
	ActionProfileComplete RewardAction = "profile_complete"
	ActionPurchase        RewardAction = "purchase"
	ActionReview          RewardAction = "review"
	ActionReviewPhoto     RewardAction = "review_photo"
	ActionReferral        RewardAction = "referral"
	ActionBirthday        RewardAction = "birthday"
	ActionSocialFollow    RewardAction = "social_follow"
	ActionCheckIn         RewardAction = "checkin"
	ActionChallenge       RewardAction = "challenge"
	ActionRedemption      RewardAction = "redemption"
)

// ActionPolicy 动作积分策略
// MultiplierApplies 显式声明该动作是否吃等级倍率：
// 固定奖励（签到、推荐等）不随等级放大，只有消费积分按倍率结算
type ActionPolicy struct {
	BasePoints        int
	MultiplierApplies bool
}

// ActionPolicies 动作 → 策略表
var ActionPolicies = map[RewardAction]ActionPolicy{
	ActionWelcome:         {BasePoints: 100, MultiplierApplies: false},
	ActionProfileComplete: {BasePoints: 50, MultiplierApplies: false},
	ActionPurchase:        {BasePoints: 1, MultiplierApplies: true}, // 每货币单位1分
	ActionReview:          {BasePoints: 50, MultiplierApplies: false},
	ActionReviewPhoto:     {BasePoints: 25, MultiplierApplies: false},
	ActionReferral:        {BasePoints: 200, MultiplierApplies: false},
	ActionBirthday:        {BasePoints: 100, MultiplierApplies: false},
	ActionSocialFollow:    {BasePoints: 25, MultiplierApplies: false},
	ActionCheckIn:         {BasePoints: 5, MultiplierApplies: false},
	ActionChallenge:       {BasePoints: 100, MultiplierApplies: false},
}

// DefaultDescription 各动作的默认流水描述
func DefaultDescription(action RewardAction, points int) string {
	switch action {
	case ActionWelcome:
		return "Welcome bonus for joining Glow Rewards"
	case ActionProfileComplete:
		return "Profile completion bonus"
	case ActionPurchase:
		return fmt.Sprintf("Earned %d points from purchase", points)
	case ActionReview:
		return "Review submitted"
	case ActionReviewPhoto:
		return "Photo added to review"
	case ActionReferral:
		return "Friend referral bonus"
	case ActionBirthday:
		return "Birthday bonus"
	case ActionSocialFollow:
		return "Social media follow bonus"
	case ActionCheckIn:
		return "Daily check-in"
	case ActionChallenge:
		return "Challenge completed"
	}
	return fmt.Sprintf("Earned %d points", points)
}
