package repository

import (
	"time"

	"glow_store/internal/domain/rewards/model"

	"gorm.io/gorm"
)

// CatalogRepository 兑换目录仓库
type CatalogRepository interface {
	GetByID(id string) (*model.CatalogItem, error)
	// ListActive 返回启用且处于有效期窗口内的条目，按展示顺序排列
	ListActive(now time.Time) ([]model.CatalogItem, error)
	// IncrementRedeemed 条件自增已兑换数：total_available = 0（不限量）
	// 或 total_redeemed < total_available 时才生效，返回是否成功
	IncrementRedeemed(id string) (bool, error)
	// DecrementRedeemed 回滚一次占用（扣分失败时补偿）
	DecrementRedeemed(id string) error
	UpsertByName(item *model.CatalogItem) error
	Count() (int64, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetByID(id string) (*model.CatalogItem, error) {
	var item model.CatalogItem
	if err := r.db.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogRepository) ListActive(now time.Time) ([]model.CatalogItem, error) {
	var items []model.CatalogItem
	err := r.db.
		Where("is_active = ?", true).
		Where("valid_from IS NULL OR valid_from <= ?", now).
		Where("valid_until IS NULL OR valid_until >= ?", now).
		Order("display_order asc").
		Limit(100).
		Find(&items).Error
	return items, err
}

func (r *catalogRepository) IncrementRedeemed(id string) (bool, error) {
	res := r.db.Model(&model.CatalogItem{}).
		Where("id = ? AND (total_available = 0 OR total_redeemed < total_available)", id).
		UpdateColumn("total_redeemed", gorm.Expr("total_redeemed + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *catalogRepository) DecrementRedeemed(id string) error {
	return r.db.Model(&model.CatalogItem{}).
		Where("id = ? AND total_redeemed > 0", id).
		UpdateColumn("total_redeemed", gorm.Expr("total_redeemed - 1")).Error
}

// UpsertByName 种子数据按名称幂等写入：已存在则更新，不重复插入
func (r *catalogRepository) UpsertByName(item *model.CatalogItem) error {
	var existing model.CatalogItem
	err := r.db.Where("name = ?", item.Name).First(&existing).Error
	if err == nil {
		item.ID = existing.ID
		// 运行数据不被种子覆盖：已兑换数和运营调过的限量都保留
		item.TotalRedeemed = existing.TotalRedeemed
		if existing.TotalAvailable > 0 {
			item.TotalAvailable = existing.TotalAvailable
		}
		return r.db.Save(item).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.Create(item).Error
}

func (r *catalogRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.CatalogItem{}).Count(&count).Error
	return count, err
}
