package service

import "errors"

// 业务规则错误，handler 层据此映射 HTTP 状态码和业务码
var (
	ErrNotRewardsMember       = errors.New("not a rewards member")
	ErrAlreadyMember          = errors.New("already a rewards member")
	ErrAlreadyCheckedIn       = errors.New("already checked in today")
	ErrRewardNotFound         = errors.New("reward not found")
	ErrRewardInactive         = errors.New("this reward is no longer available")
	ErrRewardNotYetValid      = errors.New("this reward is not yet available")
	ErrRewardExpired          = errors.New("this reward has expired")
	ErrInsufficientPoints     = errors.New("not enough points")
	ErrTierTooLow             = errors.New("higher tier required for this reward")
	ErrRedemptionLimitReached = errors.New("you have reached the maximum redemptions for this reward")
	ErrSoldOut                = errors.New("this reward is sold out")
	ErrReferralCodeExhausted  = errors.New("failed to generate a unique referral code")
	ErrUnknownAction          = errors.New("unknown reward action")
)
