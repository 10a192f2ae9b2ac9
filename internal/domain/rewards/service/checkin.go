package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glow_store/internal/domain/rewards/model"
	"glow_store/pkg/logger"
	"glow_store/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CheckInResult 签到结果
type CheckInResult struct {
	PointsEarned int       `json:"pointsEarned"`
	Streak       int       `json:"streak"`
	StreakBonus  bool      `json:"streakBonus"`
	TotalPoints  int       `json:"totalPoints"`
	NextCheckIn  time.Time `json:"nextCheckIn"`
	Message      string    `json:"message"`
}

// CheckIn 每日签到
// 连续签到规则：上次签到是昨天则 streak+1，否则重置为 1；
// streak 达到奖励周期（默认7天）的整数倍时额外加固定奖励分
func (s *rewardsService) CheckIn(userID string) (*CheckInResult, error) {
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

	today := midnight(s.now())

	// Redis 日锁：同一天的并发签到只放一个进来。
	// 拿到锁之后任何一步失败都必须删锁，否则用户当天就再也签不上了
	lockKey := ""
	if s.rdb != nil {
		lockKey = fmt.Sprintf("rewards:checkin:%s:%s", userID, today.Format("2006-01-02"))
		ok, err := s.rdb.SetNX(context.Background(), lockKey, 1, 24*time.Hour).Result()
		if err == nil && !ok {
			return nil, ErrAlreadyCheckedIn
		}
	}

	if user.LastCheckIn != nil && midnight(*user.LastCheckIn).Equal(today) {
		return nil, ErrAlreadyCheckedIn
	}

	// 连续性判定
	newStreak := 1
	if user.LastCheckIn != nil {
		yesterday := today.AddDate(0, 0, -1)
		if midnight(*user.LastCheckIn).Equal(yesterday) {
			newStreak = user.CheckInStreak + 1
		}
		// 间隔 >= 2 天则重置为 1
	}

	pointsEarned := s.policy.CheckInPoints
	streakBonus := false
	if newStreak > 0 && newStreak%s.policy.StreakBonusDays == 0 {
		pointsEarned += s.policy.StreakBonusPoints
		streakBonus = true
	}

	description := fmt.Sprintf("Daily check-in (Day %d)", newStreak)
	if streakBonus {
		description = fmt.Sprintf("Daily check-in (%d day streak bonus!)", newStreak)
	}

	entry := &model.Transaction{
		UserID:      userID,
		Type:        model.TxTypeEarned,
		Points:      pointsEarned,
		Action:      string(model.ActionCheckIn),
		Description: description,
	}
	if err := s.ledger.Credit(userID, pointsEarned, entry); err != nil {
		s.releaseCheckInLock(lockKey)
		return nil, err
	}

	if err := s.users.UpdateFields(userID, map[string]interface{}{
		"last_check_in":   today,
		"check_in_streak": newStreak,
	}); err != nil {
		s.releaseCheckInLock(lockKey)
		return nil, err
	}

	newLifetime := user.LifetimePoints + pointsEarned
	if err := s.UpdateUserTier(userID, newLifetime); err != nil {
		s.releaseCheckInLock(lockKey)
		return nil, err
	}

	metrics.GetGlobalCollector().RecordCheckIn()
	metrics.GetGlobalCollector().RecordPointsAwarded(string(model.ActionCheckIn), pointsEarned)

	message := fmt.Sprintf("+%d points! %d days until streak bonus",
		s.policy.CheckInPoints, s.policy.StreakBonusDays-(newStreak%s.policy.StreakBonusDays))
	if streakBonus {
		message = fmt.Sprintf("+%d points + %d streak bonus!",
			s.policy.CheckInPoints, s.policy.StreakBonusPoints)
	}

	return &CheckInResult{
		PointsEarned: pointsEarned,
		Streak:       newStreak,
		StreakBonus:  streakBonus,
		TotalPoints:  user.RewardPoints + pointsEarned,
		NextCheckIn:  today.AddDate(0, 0, 1),
		Message:      message,
	}, nil
}

// releaseCheckInLock 签到没写成时释放当天的日锁，让用户还能重试
func (s *rewardsService) releaseCheckInLock(lockKey string) {
	if s.rdb == nil || lockKey == "" {
		return
	}
	if err := s.rdb.Del(context.Background(), lockKey).Err(); err != nil && logger.Log != nil {
		logger.Log.Warn("failed to release check-in lock",
			zap.String("key", lockKey), zap.Error(err))
	}
}
