package service

import (
	"encoding/json"
	"testing"

	"glow_store/internal/domain/rewards/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestProcessReferralReward(t *testing.T) {
	t.Run("First purchase rewards the referrer once", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockTiers := new(MockTierRepository)
		mockLedger := new(MockLedgerRepository)
		service := newTestService(mockUsers, mockTiers, mockLedger, new(MockCatalogRepository))

		referrer := createMemberUser("referrer-1", 300)

		mockLedger.On("HasReferralReward", "referrer-1", "friend-1").Return(false, nil)
		mockUsers.On("GetByID", "referrer-1").Return(referrer, nil)
		mockLedger.On("Credit", "referrer-1", 200, mock.MatchedBy(func(tx *model.Transaction) bool {
			var meta map[string]string
			if err := json.Unmarshal(tx.Metadata, &meta); err != nil {
				return false
			}
			return tx.Action == string(model.ActionReferral) && meta["referredUser"] == "friend-1"
		})).Return(nil)
		mockTiers.On("FindForPoints", 500).Return(nil, nil)
		mockUsers.On("IncrementReferralCount", "referrer-1").Return(nil)

		err := service.ProcessReferralReward("referrer-1", "friend-1")

		assert.NoError(t, err)
		mockLedger.AssertExpectations(t)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Duplicate reward is a safe no-op", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		service := newTestService(mockUsers, new(MockTierRepository), mockLedger, new(MockCatalogRepository))

		mockLedger.On("HasReferralReward", "referrer-1", "friend-1").Return(true, nil)

		err := service.ProcessReferralReward("referrer-1", "friend-1")

		assert.NoError(t, err)
		mockLedger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
		mockUsers.AssertNotCalled(t, "IncrementReferralCount", mock.Anything)
	})

	t.Run("Referrer who left the program gets nothing", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		service := newTestService(mockUsers, new(MockTierRepository), mockLedger, new(MockCatalogRepository))

		former := createMemberUser("referrer-1", 0)
		former.RewardsEnabled = false

		mockLedger.On("HasReferralReward", "referrer-1", "friend-1").Return(false, nil)
		mockUsers.On("GetByID", "referrer-1").Return(former, nil)

		err := service.ProcessReferralReward("referrer-1", "friend-1")

		assert.NoError(t, err)
		mockLedger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Deleted referrer is a safe no-op", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockLedger := new(MockLedgerRepository)
		service := newTestService(mockUsers, new(MockTierRepository), mockLedger, new(MockCatalogRepository))

		mockLedger.On("HasReferralReward", "ghost", "friend-1").Return(false, nil)
		mockUsers.On("GetByID", "ghost").Return(nil, gorm.ErrRecordNotFound)

		err := service.ProcessReferralReward("ghost", "friend-1")

		assert.NoError(t, err)
	})
}
