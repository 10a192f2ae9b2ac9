package service

import (
	"strings"
	"testing"
	"time"

	"glow_store/internal/domain/rewards/model"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func createTestReward(id string, cost int) *model.CatalogItem {
	return &model.CatalogItem{
		BaseModel:     baseModelWithID(id),
		Name:          "10 TND Off",
		Description:   "10 TND off your next order",
		PointsCost:    cost,
		Type:          model.RewardTypeDiscountAmount,
		DiscountValue: 10,
		IsActive:      true,
	}
}

func TestRedeem(t *testing.T) {
	t.Run("Successful redemption debits points and issues a code", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, new(MockTierRepository), mockLedger, mockCatalog)

		user := createMemberUser("aaaabbbb-cccc-dddd-eeee-ffff00001111", 500)
		reward := createTestReward("reward-1", 250)

		mockUsers.On("GetByID", user.ID).Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)
		mockCatalog.On("IncrementRedeemed", "reward-1").Return(true, nil)
		mockLedger.On("Debit", user.ID, 250, mock.MatchedBy(func(tx *model.Transaction) bool {
			return tx.Type == model.TxTypeRedeemed && tx.Points == -250
		})).Return(true, nil)

		result, err := service.Redeem(user.ID, "reward-1")

		assert.NoError(t, err)
		assert.Equal(t, "10 TND Off", result.RewardName)
		assert.Equal(t, model.RewardTypeDiscountAmount, result.RewardType)
		assert.Equal(t, 250, result.RemainingPoints)
		assert.True(t, strings.HasPrefix(result.RedemptionCode, "GLOWAAAABBBB"))
		mockLedger.AssertExpectations(t)
		mockCatalog.AssertExpectations(t)
	})

	t.Run("Free sample issues no redemption code", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, new(MockTierRepository), mockLedger, mockCatalog)

		user := createMemberUser("user-1", 500)
		reward := createTestReward("reward-2", 100)
		reward.Type = model.RewardTypeFreeSample

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-2").Return(reward, nil)
		mockCatalog.On("IncrementRedeemed", "reward-2").Return(true, nil)
		mockLedger.On("Debit", "user-1", 100, mock.AnythingOfType("*model.Transaction")).Return(true, nil)

		result, err := service.Redeem("user-1", "reward-2")

		assert.NoError(t, err)
		assert.Empty(t, result.RedemptionCode)
	})

	t.Run("Insufficient balance rejected before any reservation", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, new(MockTierRepository), mockLedger, mockCatalog)

		user := createMemberUser("user-1", 100)
		reward := createTestReward("reward-1", 250)

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)

		_, err := service.Redeem("user-1", "reward-1")

		assert.ErrorIs(t, err, ErrInsufficientPoints)
		mockCatalog.AssertNotCalled(t, "IncrementRedeemed", mock.Anything)
		mockLedger.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Inactive reward reported before balance", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, new(MockTierRepository), new(MockLedgerRepository), mockCatalog)

		// 余额也不够，但校验顺序固定，先报下架
		user := createMemberUser("user-1", 10)
		reward := createTestReward("reward-1", 250)
		reward.IsActive = false

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)

		_, err := service.Redeem("user-1", "reward-1")

		assert.ErrorIs(t, err, ErrRewardInactive)
	})

	t.Run("Expired reward reported before balance", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, new(MockTierRepository), new(MockLedgerRepository), mockCatalog)

		// 余额也不够，但有效期窗口排在余额之前，先报过期
		user := createMemberUser("user-1", 100)
		reward := createTestReward("reward-1", 250)
		expired := testNow.Add(-time.Hour)
		reward.ValidUntil = &expired

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)

		_, err := service.Redeem("user-1", "reward-1")

		assert.ErrorIs(t, err, ErrRewardExpired)
	})

	t.Run("Tier requirement compared by display order", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockTiers := new(MockTierRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, mockTiers, new(MockLedgerRepository), mockCatalog)

		userTierID := "tier-starter"
		requiredTierID := "tier-radiant"
		user := createMemberUser("user-1", 500)
		user.RewardTierID = &userTierID
		reward := createTestReward("reward-1", 250)
		reward.MinimumTierID = &requiredTierID

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)
		mockTiers.On("GetByID", requiredTierID).Return(&model.Tier{BaseModel: baseModelWithID(requiredTierID), Order: 3}, nil)
		mockTiers.On("GetByID", userTierID).Return(&model.Tier{BaseModel: baseModelWithID(userTierID), Order: 1}, nil)

		_, err := service.Redeem("user-1", "reward-1")

		assert.ErrorIs(t, err, ErrTierTooLow)
	})

	t.Run("Per-user redemption limit enforced", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, new(MockTierRepository), mockLedger, mockCatalog)

		user := createMemberUser("user-1", 500)
		reward := createTestReward("reward-1", 250)
		reward.LimitPerUser = 1

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)
		mockLedger.On("CountRedemptions", "user-1", "reward-1").Return(int64(1), nil)

		_, err := service.Redeem("user-1", "reward-1")

		assert.ErrorIs(t, err, ErrRedemptionLimitReached)
	})

	t.Run("Sold out reward rejected", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, new(MockTierRepository), new(MockLedgerRepository), mockCatalog)

		user := createMemberUser("user-1", 500)
		reward := createTestReward("reward-1", 250)
		reward.TotalAvailable = 100
		reward.TotalRedeemed = 100

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)

		_, err := service.Redeem("user-1", "reward-1")

		assert.ErrorIs(t, err, ErrSoldOut)
	})

	t.Run("Lost stock race returns sold out", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, new(MockTierRepository), new(MockLedgerRepository), mockCatalog)

		user := createMemberUser("user-1", 500)
		reward := createTestReward("reward-1", 250)
		reward.TotalAvailable = 100
		reward.TotalRedeemed = 99

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)
		// 读的时候还有货，条件自增时被并发请求抢完
		mockCatalog.On("IncrementRedeemed", "reward-1").Return(false, nil)

		_, err := service.Redeem("user-1", "reward-1")

		assert.ErrorIs(t, err, ErrSoldOut)
	})

	t.Run("Failed debit rolls back the stock reservation", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, new(MockTierRepository), mockLedger, mockCatalog)

		user := createMemberUser("user-1", 500)
		reward := createTestReward("reward-1", 250)

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)
		mockCatalog.On("IncrementRedeemed", "reward-1").Return(true, nil)
		// 校验后、扣分前余额被并发兑换花掉了
		mockLedger.On("Debit", "user-1", 250, mock.AnythingOfType("*model.Transaction")).Return(false, nil)
		mockCatalog.On("DecrementRedeemed", "reward-1").Return(nil)

		_, err := service.Redeem("user-1", "reward-1")

		assert.ErrorIs(t, err, ErrInsufficientPoints)
		mockCatalog.AssertExpectations(t)
	})

	t.Run("Unknown reward rejected", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, new(MockTierRepository), new(MockLedgerRepository), mockCatalog)

		user := createMemberUser("user-1", 500)
		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-404").Return(nil, gorm.ErrRecordNotFound)

		_, err := service.Redeem("user-1", "reward-404")

		assert.ErrorIs(t, err, ErrRewardNotFound)
	})
}

func TestRedeemStockGuard(t *testing.T) {
	const stockKey = "rewards:stock:reward-1"

	newRedisService := func(t *testing.T, users *MockUserRepository, ledger *MockLedgerRepository, catalog *MockCatalogRepository) (*rewardsService, *miniredis.Miniredis) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		service := newTestService(users, new(MockTierRepository), ledger, catalog)
		service.rdb = rdb
		return service, mr
	}

	t.Run("Failed debit returns the reserved unit to redis", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		mockCatalog := new(MockCatalogRepository)
		service, mr := newRedisService(t, mockUsers, mockLedger, mockCatalog)

		assert.NoError(t, mr.Set(stockKey, "1"))

		user := createMemberUser("user-1", 500)
		reward := createTestReward("reward-1", 250)
		reward.TotalAvailable = 5
		reward.TotalRedeemed = 4

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)
		mockCatalog.On("IncrementRedeemed", "reward-1").Return(true, nil)
		mockCatalog.On("DecrementRedeemed", "reward-1").Return(nil)
		// 第一次扣分输给并发被回滚，第二次成功
		mockLedger.On("Debit", "user-1", 250, mock.AnythingOfType("*model.Transaction")).Return(false, nil).Once()
		mockLedger.On("Debit", "user-1", 250, mock.AnythingOfType("*model.Transaction")).Return(true, nil).Once()

		_, err := service.Redeem("user-1", "reward-1")
		assert.ErrorIs(t, err, ErrInsufficientPoints)

		// 预扣减占掉的名额已经还回来，计数没有漂移
		stock, getErr := mr.Get(stockKey)
		assert.NoError(t, getErr)
		assert.Equal(t, "1", stock)

		// 同一份库存还能被下一次兑换正常用掉
		result, err := service.Redeem("user-1", "reward-1")
		assert.NoError(t, err)
		assert.Equal(t, 250, result.RemainingPoints)
		mockLedger.AssertExpectations(t)
	})

	t.Run("Redis sold-out guard does not latch the reward locally", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		mockCatalog := new(MockCatalogRepository)
		service, mr := newRedisService(t, mockUsers, mockLedger, mockCatalog)

		assert.NoError(t, mr.Set(stockKey, "0"))

		user := createMemberUser("user-1", 500)
		reward := createTestReward("reward-1", 250)
		reward.TotalAvailable = 5
		reward.TotalRedeemed = 4

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)

		_, err := service.Redeem("user-1", "reward-1")
		assert.ErrorIs(t, err, ErrSoldOut)
		mockCatalog.AssertNotCalled(t, "IncrementRedeemed", mock.Anything)

		// 补货重置计数后无需重启服务就能继续兑换
		assert.NoError(t, mr.Set(stockKey, "1"))
		mockCatalog.On("IncrementRedeemed", "reward-1").Return(true, nil)
		mockLedger.On("Debit", "user-1", 250, mock.AnythingOfType("*model.Transaction")).Return(true, nil)

		_, err = service.Redeem("user-1", "reward-1")
		assert.NoError(t, err)
	})

	t.Run("Database verdict still latches the sold-out cache", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(mockUsers, new(MockTierRepository), mockLedger, mockCatalog)

		user := createMemberUser("user-1", 500)
		reward := createTestReward("reward-1", 250)
		reward.TotalAvailable = 100
		reward.TotalRedeemed = 99

		mockUsers.On("GetByID", "user-1").Return(user, nil)
		mockCatalog.On("GetByID", "reward-1").Return(reward, nil)
		mockCatalog.On("IncrementRedeemed", "reward-1").Return(false, nil)

		_, err := service.Redeem("user-1", "reward-1")
		assert.ErrorIs(t, err, ErrSoldOut)

		// 第二次直接被本地缓存挡下，不再查库存
		_, err = service.Redeem("user-1", "reward-1")
		assert.ErrorIs(t, err, ErrSoldOut)
		mockCatalog.AssertNumberOfCalls(t, "IncrementRedeemed", 1)
	})
}
