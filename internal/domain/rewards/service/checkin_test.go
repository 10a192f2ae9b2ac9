package service

import (
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCheckIn(t *testing.T) {
	today := midnight(testNow)

	t.Run("First check-in starts streak at one", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockTiers := new(MockTierRepository)
		mockLedger := new(MockLedgerRepository)
		service := newTestService(mockUsers, mockTiers, mockLedger, new(MockCatalogRepository))

		user := createMemberUser("user-1", 100)
		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockLedger.On("Credit", "user-1", 5, mock.AnythingOfType("*model.Transaction")).Return(nil)
		mockUsers.On("UpdateFields", "user-1", mock.MatchedBy(func(f map[string]interface{}) bool {
			return f["check_in_streak"] == 1 && f["last_check_in"] == today
		})).Return(nil)
		mockTiers.On("FindForPoints", 105).Return(nil, nil)

		result, err := service.CheckIn("user-1")

		assert.NoError(t, err)
		assert.Equal(t, 5, result.PointsEarned)
		assert.Equal(t, 1, result.Streak)
		assert.False(t, result.StreakBonus)
		assert.Equal(t, 105, result.TotalPoints)
		assert.Equal(t, today.AddDate(0, 0, 1), result.NextCheckIn)
		mockUsers.AssertExpectations(t)
		mockLedger.AssertExpectations(t)
	})

	t.Run("Consecutive day increments streak", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockTiers := new(MockTierRepository)
		mockLedger := new(MockLedgerRepository)
		service := newTestService(mockUsers, mockTiers, mockLedger, new(MockCatalogRepository))

		yesterday := today.AddDate(0, 0, -1).Add(9 * time.Hour) // 昨天的签到时刻
		user := createMemberUser("user-1", 100)
		user.LastCheckIn = &yesterday
		user.CheckInStreak = 3

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockLedger.On("Credit", "user-1", 5, mock.AnythingOfType("*model.Transaction")).Return(nil)
		mockUsers.On("UpdateFields", "user-1", mock.MatchedBy(func(f map[string]interface{}) bool {
			return f["check_in_streak"] == 4
		})).Return(nil)
		mockTiers.On("FindForPoints", 105).Return(nil, nil)

		result, err := service.CheckIn("user-1")

		assert.NoError(t, err)
		assert.Equal(t, 4, result.Streak)
		assert.False(t, result.StreakBonus)
	})

	t.Run("Gap of two or more days resets streak", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockTiers := new(MockTierRepository)
		mockLedger := new(MockLedgerRepository)
		service := newTestService(mockUsers, mockTiers, mockLedger, new(MockCatalogRepository))

		threeDaysAgo := today.AddDate(0, 0, -3)
		user := createMemberUser("user-1", 100)
		user.LastCheckIn = &threeDaysAgo
		user.CheckInStreak = 6

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockLedger.On("Credit", "user-1", 5, mock.AnythingOfType("*model.Transaction")).Return(nil)
		mockUsers.On("UpdateFields", "user-1", mock.MatchedBy(func(f map[string]interface{}) bool {
			return f["check_in_streak"] == 1
		})).Return(nil)
		mockTiers.On("FindForPoints", 105).Return(nil, nil)

		result, err := service.CheckIn("user-1")

		assert.NoError(t, err)
		assert.Equal(t, 1, result.Streak)
	})

	t.Run("Seventh consecutive day earns streak bonus", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockTiers := new(MockTierRepository)
		mockLedger := new(MockLedgerRepository)
		service := newTestService(mockUsers, mockTiers, mockLedger, new(MockCatalogRepository))

		yesterday := today.AddDate(0, 0, -1)
		user := createMemberUser("user-1", 100)
		user.LastCheckIn = &yesterday
		user.CheckInStreak = 6

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockLedger.On("Credit", "user-1", 55, mock.AnythingOfType("*model.Transaction")).Return(nil)
		mockUsers.On("UpdateFields", "user-1", mock.MatchedBy(func(f map[string]interface{}) bool {
			return f["check_in_streak"] == 7
		})).Return(nil)
		mockTiers.On("FindForPoints", 155).Return(nil, nil)

		result, err := service.CheckIn("user-1")

		assert.NoError(t, err)
		assert.Equal(t, 55, result.PointsEarned) // 5 基础 + 50 连续奖励
		assert.Equal(t, 7, result.Streak)
		assert.True(t, result.StreakBonus)
		mockLedger.AssertExpectations(t)
	})

	t.Run("Second check-in same day rejected", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		service := newTestService(mockUsers, new(MockTierRepository), mockLedger, new(MockCatalogRepository))

		earlier := today.Add(2 * time.Hour)
		user := createMemberUser("user-1", 105)
		user.LastCheckIn = &earlier
		user.CheckInStreak = 1

		mockUsers.On("GetByID", "user-1").Return(user, nil)

		_, err := service.CheckIn("user-1")

		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
		mockLedger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Non-member cannot check in", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		service := newTestService(mockUsers, new(MockTierRepository), new(MockLedgerRepository), new(MockCatalogRepository))

		user := createMemberUser("user-1", 0)
		user.RewardsEnabled = false
		mockUsers.On("GetByID", "user-1").Return(user, nil)

		_, err := service.CheckIn("user-1")

		assert.ErrorIs(t, err, ErrNotRewardsMember)
	})
}

func TestCheckInDayLock(t *testing.T) {
	lockKey := fmt.Sprintf("rewards:checkin:%s:%s", "user-1", midnight(testNow).Format("2006-01-02"))

	newRedisService := func(t *testing.T, users *MockUserRepository, tiers *MockTierRepository, ledger *MockLedgerRepository) (*rewardsService, *miniredis.Miniredis) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		service := newTestService(users, tiers, ledger, new(MockCatalogRepository))
		service.rdb = rdb
		return service, mr
	}

	t.Run("Failed credit releases the lock so a retry still earns the day", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockTiers := new(MockTierRepository)
		mockLedger := new(MockLedgerRepository)
		service, mr := newRedisService(t, mockUsers, mockTiers, mockLedger)

		user := createMemberUser("user-1", 100)
		mockUsers.On("GetByID", "user-1").Return(user, nil)

		// 第一次账本写入失败，拿到的日锁必须跟着释放
		mockLedger.On("Credit", "user-1", 5, mock.AnythingOfType("*model.Transaction")).Return(assert.AnError).Once()

		_, err := service.CheckIn("user-1")

		assert.Error(t, err)
		assert.False(t, mr.Exists(lockKey))

		// 同一天重试：存储恢复后正常记上 5 分，而不是 already checked in
		mockLedger.On("Credit", "user-1", 5, mock.AnythingOfType("*model.Transaction")).Return(nil).Once()
		mockUsers.On("UpdateFields", "user-1", mock.Anything).Return(nil)
		mockTiers.On("FindForPoints", 105).Return(nil, nil)

		result, err := service.CheckIn("user-1")

		assert.NoError(t, err)
		assert.Equal(t, 5, result.PointsEarned)
		assert.Equal(t, 1, result.Streak)
		mockLedger.AssertExpectations(t)
	})

	t.Run("Successful check-in keeps the lock for the rest of the day", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockTiers := new(MockTierRepository)
		mockLedger := new(MockLedgerRepository)
		service, mr := newRedisService(t, mockUsers, mockTiers, mockLedger)

		user := createMemberUser("user-1", 100)
		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockLedger.On("Credit", "user-1", 5, mock.AnythingOfType("*model.Transaction")).Return(nil).Once()
		mockUsers.On("UpdateFields", "user-1", mock.Anything).Return(nil)
		mockTiers.On("FindForPoints", 105).Return(nil, nil)

		_, err := service.CheckIn("user-1")
		assert.NoError(t, err)
		assert.True(t, mr.Exists(lockKey))

		// 第二次被日锁直接挡下，不会再记分
		_, err = service.CheckIn("user-1")
		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
		mockLedger.AssertNumberOfCalls(t, "Credit", 1)
	})
}
