package types

import "time"

// ShippingInfo is the delivery detail block a shopper submits during
// checkout. It is stored as a JSON snapshot on the order.
type ShippingInfo struct {
	FullName     string     `json:"full_name" validate:"required,min=2,max=120"`
	Email        string     `json:"email" validate:"required,email"`
	Phone        string     `json:"phone" validate:"required,len=10,numeric"`
	Address      string     `json:"address" validate:"required,min=5,max=300"`
	City         string     `json:"city" validate:"required,max=80"`
	State        string     `json:"state" validate:"required,max=80"`
	Pincode      string     `json:"pincode" validate:"required,len=6,numeric"`
	Country      string     `json:"country" validate:"required,max=80"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
}
