package cart

import (
	"time"

	"github.com/google/uuid"
)

// ItemDTO is one cart row shaped for API responses. UnitPrice reflects the
// requesting shopper's role.
type ItemDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	UnitPrice int       `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	LineTotal int       `json:"line_total"`
	AddedAt   time.Time `json:"added_at"`
}

// CartDTO is the full cart view.
type CartDTO struct {
	Items     []ItemDTO `json:"items"`
	ItemCount int       `json:"item_count"`
	Subtotal  int       `json:"subtotal"`
}
