package model

import (
	"encoding/json"

	"glow_store/pkg/model"
)

// 订单状态
const (
	OrderStatusPending   = "pending"   // 待发货（货到付款）
	OrderStatusShipped   = "shipped"   // 已发货
	OrderStatusDelivered = "delivered" // 已送达
	OrderStatusCancelled = "cancelled" // 已取消
)

// 支付方式
const (
	PaymentMethodCOD = "cod" // 货到付款
)

// Order 订单模型
type Order struct {
	model.BaseModel
	OrderNo       string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_no"`
	CustomerID    *string         `gorm:"type:varchar(36);index" json:"customer_id"` // 游客下单时为空
	CustomerName  string          `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerEmail string          `gorm:"type:varchar(100)" json:"customer_email"`
	CustomerPhone string          `gorm:"type:varchar(30);not null" json:"customer_phone"`
	Address       json.RawMessage `gorm:"type:jsonb" json:"address"`
	Items         json.RawMessage `gorm:"type:jsonb;not null" json:"items"` // 下单时的商品快照
	Amount        float64         `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(8);default:'TND'" json:"currency"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        string          `gorm:"type:varchar(20);default:'pending';index" json:"status"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单内商品快照的结构
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}
