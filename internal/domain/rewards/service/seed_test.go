package service

import (
	"testing"

	"glow_store/internal/domain/rewards/model"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSeed(t *testing.T) {
	t.Run("Seeds all default tiers and rewards", func(t *testing.T) {
		mockTiers := new(MockTierRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(new(MockUserRepository), mockTiers, new(MockLedgerRepository), mockCatalog)

		mockTiers.On("Upsert", mock.AnythingOfType("*model.Tier")).Return(nil)
		mockCatalog.On("UpsertByName", mock.AnythingOfType("*model.CatalogItem")).Return(nil)

		result, err := service.Seed()

		assert.NoError(t, err)
		assert.Equal(t, 4, result.TiersSeeded)
		assert.Equal(t, 9, result.RewardsSeeded)
		mockTiers.AssertNumberOfCalls(t, "Upsert", 4)
		mockCatalog.AssertNumberOfCalls(t, "UpsertByName", 9)
	})

	t.Run("Restocked limited reward clears the sold-out cache and rewarms redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		mockTiers := new(MockTierRepository)
		mockCatalog := new(MockCatalogRepository)
		service := newTestService(new(MockUserRepository), mockTiers, new(MockLedgerRepository), mockCatalog)
		service.rdb = rdb

		// 此前这个奖励被数据库判过售罄，落了本地缓存
		service.soldOutMap.Store("reward-limited", true)

		mockTiers.On("Upsert", mock.AnythingOfType("*model.Tier")).Return(nil)
		mockCatalog.On("UpsertByName", mock.AnythingOfType("*model.CatalogItem")).Return(nil).
			Run(func(args mock.Arguments) {
				item := args.Get(0).(*model.CatalogItem)
				item.ID = "reward-" + item.Name
				// 运营给 Free Shipping 补过货，仓库回填已有行的限量字段
				if item.Name == "Free Shipping" {
					item.ID = "reward-limited"
					item.TotalAvailable = 5
					item.TotalRedeemed = 2
				}
			})

		_, err := service.Seed()
		assert.NoError(t, err)

		_, latched := service.soldOutMap.Load("reward-limited")
		assert.False(t, latched)

		stock, getErr := mr.Get("rewards:stock:reward-limited")
		assert.NoError(t, getErr)
		assert.Equal(t, "3", stock)
	})
}
