package checkout

import (
	"time"

	"github.com/gildedlane/storefront-backend/pkg/types"
)

// ShippingStateDTO reflects where the shopper stands in the checkout flow
// after submitting delivery details.
type ShippingStateDTO struct {
	Shipping        types.ShippingInfo `json:"shipping"`
	DeliveryDate    time.Time          `json:"delivery_date"`
	EmailVerified   bool               `json:"email_verified"`
	PhoneVerified   bool               `json:"phone_verified"`
	ReadyForPayment bool               `json:"ready_for_payment"`
}

// VerificationStatusDTO reports the verification state for one channel.
type VerificationStatusDTO struct {
	Channel  string `json:"channel"`
	Verified bool   `json:"verified"`
	// DevCode carries the issued code in dev environments only.
	DevCode string `json:"dev_code,omitempty"`
}
