package repository

import (
	"glow_store/internal/domain/catalog/model"

	"gorm.io/gorm"
)

// ProductRepository 商品仓库
type ProductRepository interface {
	GetByID(id string) (*model.Product, error)
	ListActive(offset, limit int) ([]model.Product, int64, error)
	Create(product *model.Product) error
	// DecrementInventory 条件扣库存：inventory IS NULL（不追踪）直接放行，
	// 否则 inventory >= qty 才生效，返回是否成功
	DecrementInventory(id string, qty int) (bool, error)
	// IncrementInventory 回补库存（扣减后续步骤失败时的补偿）
	IncrementInventory(id string, qty int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(id string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListActive(offset, limit int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.Model(&model.Product{}).Where("is_active = ?", true)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) DecrementInventory(id string, qty int) (bool, error) {
	res := r.db.Model(&model.Product{}).
		Where("id = ? AND (inventory IS NULL OR inventory >= ?)", id, qty).
		UpdateColumn("inventory", gorm.Expr("CASE WHEN inventory IS NULL THEN NULL ELSE inventory - ? END", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *productRepository) IncrementInventory(id string, qty int) error {
	return r.db.Model(&model.Product{}).
		Where("id = ? AND inventory IS NOT NULL", id).
		UpdateColumn("inventory", gorm.Expr("inventory + ?", qty)).Error
}
