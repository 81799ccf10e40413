package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/gildedlane/storefront-backend/pkg/db/models"
	"github.com/gildedlane/storefront-backend/pkg/enums"
	"github.com/gildedlane/storefront-backend/pkg/types"
)

// SnapshotItem is one (product, quantity) pair the shopper submits at
// placement. The set is cross-checked against the stored cart inside the
// placement transaction and is the authoritative input to totals.
type SnapshotItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput carries everything the shopper submits at placement.
type PlaceOrderInput struct {
	Items         []SnapshotItem
	PaymentMethod enums.PaymentMethod
	Shipping      types.ShippingInfo
	Billing       types.Address
}

// ItemDTO is one frozen line of a placed order.
type ItemDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice int       `json:"unit_price"`
	LineTotal int       `json:"line_total"`
}

// OrderDTO is the full order view.
type OrderDTO struct {
	ID            uuid.UUID          `json:"id"`
	OrderNumber   string             `json:"order_number"`
	Status        string             `json:"status"`
	StatusLabel   string             `json:"status_label"`
	PaymentMethod string             `json:"payment_method"`
	Subtotal      int                `json:"subtotal"`
	ShippingFee   int                `json:"shipping_fee"`
	Total         int                `json:"total"`
	Shipping      types.ShippingInfo `json:"shipping"`
	Billing       types.Address      `json:"billing"`
	DeliveryDate  *time.Time         `json:"delivery_date,omitempty"`
	Items         []ItemDTO          `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
}

// SummaryDTO is the list view of an order.
type SummaryDTO struct {
	ID           uuid.UUID  `json:"id"`
	OrderNumber  string     `json:"order_number"`
	Status       string     `json:"status"`
	StatusLabel  string     `json:"status_label"`
	Total        int        `json:"total"`
	ItemCount    int        `json:"item_count"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toOrderDTO(record *models.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, ItemDTO{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Image:     item.ProductImage,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return OrderDTO{
		ID:            record.ID,
		OrderNumber:   record.OrderNumber,
		Status:        record.Status.String(),
		StatusLabel:   record.Status.Label(),
		PaymentMethod: record.PaymentMethod.String(),
		Subtotal:      record.Subtotal,
		ShippingFee:   record.ShippingFee,
		Total:         record.Total,
		Shipping:      record.ShippingAddress,
		Billing:       record.BillingAddress,
		DeliveryDate:  record.DeliveryDate,
		Items:         items,
		CreatedAt:     record.CreatedAt,
	}
}

func toSummaryDTO(record *models.Order) SummaryDTO {
	count := 0
	for _, item := range record.Items {
		count += item.Quantity
	}
	return SummaryDTO{
		ID:           record.ID,
		OrderNumber:  record.OrderNumber,
		Status:       record.Status.String(),
		StatusLabel:  record.Status.Label(),
		Total:        record.Total,
		ItemCount:    count,
		DeliveryDate: record.DeliveryDate,
		CreatedAt:    record.CreatedAt,
	}
}
