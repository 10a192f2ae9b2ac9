package repository

import (
	"errors"

	"glow_store/internal/domain/rewards/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TierRepository 等级仓库
type TierRepository interface {
	GetByID(id string) (*model.Tier, error)
	GetBySlug(slug string) (*model.Tier, error)
	ListAll() ([]model.Tier, error)
	// FindForPoints 取 min_points <= lifetimePoints 的最高一档
	// 相同 min_points 时按 display_order 降序决出，结果确定
	FindForPoints(lifetimePoints int) (*model.Tier, error)
	// FindNextAbove 取 min_points 高于给定值的最近一档
	FindNextAbove(minPoints int) (*model.Tier, error)
	Upsert(tier *model.Tier) error
}

type tierRepository struct {
	db *gorm.DB
}

func NewTierRepository(db *gorm.DB) TierRepository {
	return &tierRepository{db: db}
}

func (r *tierRepository) GetByID(id string) (*model.Tier, error) {
	var tier model.Tier
	if err := r.db.Where("id = ?", id).First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *tierRepository) GetBySlug(slug string) (*model.Tier, error) {
	var tier model.Tier
	if err := r.db.Where("slug = ?", slug).First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *tierRepository) ListAll() ([]model.Tier, error) {
	var tiers []model.Tier
	if err := r.db.Order("display_order asc").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *tierRepository) FindForPoints(lifetimePoints int) (*model.Tier, error) {
	var tier model.Tier
	err := r.db.Where("min_points <= ?", lifetimePoints).
		Order("min_points desc, display_order desc").
		First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // 没有可用等级不算错误
		}
		return nil, err
	}
	return &tier, nil
}

func (r *tierRepository) FindNextAbove(minPoints int) (*model.Tier, error) {
	var tier model.Tier
	err := r.db.Where("min_points > ?", minPoints).
		Order("min_points asc").
		First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tier, nil
}

// Upsert 按 slug 幂等写入，种子数据可重复执行
func (r *tierRepository) Upsert(tier *model.Tier) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "min_points", "points_multiplier", "icon", "color", "benefits", "display_order",
		}),
	}).Create(tier).Error
}
