package repository

import (
	userModel "glow_store/internal/domain/user/model"
	"glow_store/internal/domain/rewards/model"

	"gorm.io/gorm"
)

// LedgerRepository 积分流水仓库
// Credit/Debit 把用户余额变更和流水追加放进同一个数据库事务，
// 余额字段只用原子 SQL 表达式修改，避免读取-回写竞态
type LedgerRepository interface {
	// Credit 给用户加分（可用余额和累计积分同步增加）并追加流水
	Credit(userID string, points int, entry *model.Transaction) error
	// Debit 条件扣减可用余额（reward_points >= points 才生效）并追加流水
	// 余额不足时返回 (false, nil)，不产生任何写入
	Debit(userID string, points int, entry *model.Transaction) (bool, error)
	ListByUser(userID string, offset, limit int, txType string) ([]model.Transaction, int64, error)
	RecentByUser(userID string, n int) ([]model.Transaction, error)
	CountRedemptions(userID, rewardID string) (int64, error)
	HasReferralReward(referrerID, referredUserID string) (bool, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Credit(userID string, points int, entry *model.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userModel.User{}).Where("id = ?", userID).
			UpdateColumns(map[string]interface{}{
				"reward_points":   gorm.Expr("reward_points + ?", points),
				"lifetime_points": gorm.Expr("lifetime_points + ?", points),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(entry).Error
	})
}

func (r *ledgerRepository) Debit(userID string, points int, entry *model.Transaction) (bool, error) {
	ok := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// lifetime_points 不变：兑换只消耗可用余额
		res := tx.Model(&userModel.User{}).
			Where("id = ? AND reward_points >= ?", userID, points).
			UpdateColumn("reward_points", gorm.Expr("reward_points - ?", points))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // 余额不足，整个事务无副作用
		}
		ok = true
		return tx.Create(entry).Error
	})
	return ok, err
}

func (r *ledgerRepository) ListByUser(userID string, offset, limit int, txType string) ([]model.Transaction, int64, error) {
	var txs []model.Transaction
	var total int64

	q := r.db.Model(&model.Transaction{}).Where("user_id = ?", userID)
	if txType != "" {
		q = q.Where("type = ?", txType)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&txs).Error; err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (r *ledgerRepository) RecentByUser(userID string, n int) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at desc").Limit(n).Find(&txs).Error
	return txs, err
}

func (r *ledgerRepository) CountRedemptions(userID, rewardID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Transaction{}).
		Where("user_id = ? AND action = ? AND related_reward_id = ?",
			userID, string(model.ActionRedemption), rewardID).
		Count(&count).Error
	return count, err
}

func (r *ledgerRepository) HasReferralReward(referrerID, referredUserID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Transaction{}).
		Where("user_id = ? AND action = ? AND metadata->>'referredUser' = ?",
			referrerID, string(model.ActionReferral), referredUserID).
		Count(&count).Error
	return count > 0, err
}
