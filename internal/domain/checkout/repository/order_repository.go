package repository

import (
	"glow_store/internal/domain/checkout/model"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *model.Order) error
	GetByID(id string) (*model.Order, error)
	GetByOrderNo(orderNo string) (*model.Order, error)
	CountByCustomer(customerID string) (int64, error)
	ListByCustomer(customerID string, page, limit int) ([]model.Order, int64, error)
	UpdateStatus(id string, status string) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id string) (*model.Order, error) {
	var order model.Order
	err := r.db.Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByOrderNo(orderNo string) (*model.Order, error) {
	var order model.Order
	err := r.db.Where("order_no = ?", orderNo).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) CountByCustomer(customerID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}

func (r *orderRepository) ListByCustomer(customerID string, page, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.Model(&model.Order{}).Where("customer_id = ?", customerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) UpdateStatus(id string, status string) error {
	return r.db.Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}
