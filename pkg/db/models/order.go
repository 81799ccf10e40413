package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gildedlane/storefront-backend/pkg/enums"
	"github.com/gildedlane/storefront-backend/pkg/types"
)

// Order is a placed purchase. Line items snapshot product details at the
// moment of placement so later catalog edits do not rewrite history.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Subtotal        int                 `gorm:"column:subtotal;not null"`
	ShippingFee     int                 `gorm:"column:shipping_fee;not null;default:0"`
	Total           int                 `gorm:"column:total;not null"`
	ShippingAddress types.ShippingInfo  `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress  types.Address       `gorm:"column:billing_address;type:jsonb;serializer:json"`
	DeliveryDate    *time.Time          `gorm:"column:delivery_date"`
	Items           []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
