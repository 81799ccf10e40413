package wishlist

import (
	"time"

	"github.com/google/uuid"
)

// ItemDTO is one wishlist entry shaped for API responses.
type ItemDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	UnitPrice int       `json:"unit_price"`
	IsActive  bool      `json:"is_active"`
	AddedAt   time.Time `json:"added_at"`
}

// WishlistDTO is the full wishlist view.
type WishlistDTO struct {
	Items []ItemDTO `json:"items"`
	Count int       `json:"count"`
}

// ToggleResultDTO reports the outcome of a toggle.
type ToggleResultDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Action    string    `json:"action"`
}

const (
	// ToggleActionAdded means the toggle inserted the product.
	ToggleActionAdded = "added"
	// ToggleActionRemoved means the toggle deleted the product.
	ToggleActionRemoved = "removed"
)
