package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem is a product snapshot frozen into an order.
type OrderLineItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName  string    `gorm:"column:product_name;not null"`
	ProductImage string    `gorm:"column:product_image;not null;default:''"`
	Quantity     int       `gorm:"column:quantity;not null"`
	UnitPrice    int       `gorm:"column:unit_price;not null"`
	LineTotal    int       `gorm:"column:line_total;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
