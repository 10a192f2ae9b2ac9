package repository

import (
	"time"

	"glow_store/internal/domain/catalog/model"

	"gorm.io/gorm"
)

// CartRepository 购物车仓库
type CartRepository interface {
	Create(cart *model.Cart) error
	// GetWithItems 预加载条目及商品
	GetWithItems(id string) (*model.Cart, error)
	AddItem(item *model.CartItem) error
	MarkPurchased(id string, at time.Time) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(cart *model.Cart) error {
	return r.db.Create(cart).Error
}

func (r *cartRepository) GetWithItems(id string) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.Preload("Items.Product").Where("id = ?", id).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) AddItem(item *model.CartItem) error {
	return r.db.Create(item).Error
}

func (r *cartRepository) MarkPurchased(id string, at time.Time) error {
	return r.db.Model(&model.Cart{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       model.CartStatusPurchased,
		"purchased_at": at,
	}).Error
}
