package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gildedlane/storefront-backend/internal/cart"
	"github.com/gildedlane/storefront-backend/internal/products"
	"github.com/gildedlane/storefront-backend/pkg/db"
	"github.com/gildedlane/storefront-backend/pkg/db/models"
	"github.com/gildedlane/storefront-backend/pkg/enums"
	pkgerrors "github.com/gildedlane/storefront-backend/pkg/errors"
)

const (
	orderNumberPrefix   = "GL"
	placeAttempts       = 3
	defaultDeliveryDays = 7
)

// transactor runs a function inside a database transaction.
type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// contactVerifier gates placement on verified contact details.
type contactVerifier interface {
	IsVerified(ctx context.Context, userID string, channel enums.VerificationChannel, contact string) (bool, error)
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	DB          transactor
	OrderRepo   *Repository
	CartRepo    *cart.Repository
	ProductRepo *products.Repository
	Verifier    contactVerifier
	ShippingFee int
	Now         func() time.Time
}

// Service exposes business rules for order placement and history.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, role enums.Role, input PlaceOrderInput) (OrderDTO, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]SummaryDTO, error)
}

type service struct {
	db          transactor
	orderRepo   *Repository
	cartRepo    *cart.Repository
	productRepo *products.Repository
	verifier    contactVerifier
	shippingFee int
	now         func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transactor is required")
	}
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Verifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verifier is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		db:          params.DB,
		orderRepo:   params.OrderRepo,
		cartRepo:    params.CartRepo,
		productRepo: params.ProductRepo,
		verifier:    params.Verifier,
		shippingFee: params.ShippingFee,
		now:         params.Now,
	}, nil
}

// PlaceOrder turns the submitted cart snapshot into an order. Pricing
// always comes from the catalog, never the request; the snapshot is
// cross-checked against the stored cart and the consumed rows are deleted
// in the same transaction that inserts the order.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, role enums.Role, input PlaceOrderInput) (OrderDTO, error) {
	if userID == uuid.Nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	if !input.PaymentMethod.IsValid() {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if err := validateSnapshot(input.Items); err != nil {
		return OrderDTO{}, err
	}

	if err := s.ensureVerified(ctx, userID, input); err != nil {
		return OrderDTO{}, err
	}

	now := s.now()
	deliveryDate, err := resolveDeliveryDate(now, input.Shipping.DeliveryDate)
	if err != nil {
		return OrderDTO{}, err
	}
	input.Shipping.DeliveryDate = &deliveryDate

	reseller := role == enums.RoleReseller

	var placed *models.Order
	for attempt := 0; attempt < placeAttempts; attempt++ {
		record, txErr := s.placeOnce(ctx, userID, reseller, input, now, deliveryDate)
		if txErr == nil {
			placed = record
			break
		}
		if db.IsUniqueViolation(txErr, "orders_order_number") && attempt < placeAttempts-1 {
			continue
		}
		return OrderDTO{}, txErr
	}
	if placed == nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate order number")
	}

	return toOrderDTO(placed), nil
}

func (s *service) placeOnce(ctx context.Context, userID uuid.UUID, reseller bool, input PlaceOrderInput, now time.Time, deliveryDate time.Time) (*models.Order, error) {
	var record *models.Order
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		entries, err := s.cartRepo.WithTx(tx).ListEntries(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(entries) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}
		inCart := make(map[uuid.UUID]int, len(entries))
		for _, entry := range entries {
			inCart[entry.ProductID] = entry.Quantity
		}

		ids := make([]uuid.UUID, 0, len(input.Items))
		for _, item := range input.Items {
			// The snapshot must agree with the stored cart; a stale client
			// re-submits instead of silently ordering different quantities.
			if quantity, ok := inCart[item.ProductID]; !ok || quantity != item.Quantity {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "submitted items do not match the cart").
					WithDetails(map[string]any{"product_id": item.ProductID.String()})
			}
			ids = append(ids, item.ProductID)
		}

		catalog, err := s.productRepo.WithTx(tx).FindActiveByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}
		byID := make(map[uuid.UUID]models.Product, len(catalog))
		for _, product := range catalog {
			byID[product.ID] = product
		}

		subtotal := 0
		items := make([]models.OrderLineItem, 0, len(input.Items))
		for _, snap := range input.Items {
			product, ok := byID[snap.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "a cart item is no longer available").
					WithDetails(map[string]any{"product_id": snap.ProductID.String()})
			}
			unit := product.PriceFor(reseller)
			line := unit * snap.Quantity
			subtotal += line
			items = append(items, models.OrderLineItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				ProductImage: product.PrimaryImage(),
				Quantity:     snap.Quantity,
				UnitPrice:    unit,
				LineTotal:    line,
			})
		}

		number, err := generateOrderNumber(now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}

		order := &models.Order{
			ID:              uuid.New(),
			OrderNumber:     number,
			UserID:          userID,
			Status:          enums.OrderStatusPending,
			PaymentMethod:   input.PaymentMethod,
			Subtotal:        subtotal,
			ShippingFee:     s.shippingFee,
			Total:           subtotal + s.shippingFee,
			ShippingAddress: input.Shipping,
			BillingAddress:  input.Billing,
			DeliveryDate:    &deliveryDate,
			Items:           items,
		}

		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		if err := s.cartRepo.WithTx(tx).DeleteItems(ctx, userID, ids); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume cart rows")
		}

		record = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetOrder returns one of the shopper's orders.
func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error) {
	if userID == uuid.Nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	record, err := s.orderRepo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return toOrderDTO(record), nil
}

// ListOrders returns the shopper's order history, newest first.
func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]SummaryDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	rows, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
	out := make([]SummaryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toSummaryDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) ensureVerified(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) error {
	emailOK, err := s.verifier.IsVerified(ctx, userID.String(), enums.VerificationChannelEmail, input.Shipping.Email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email verification")
	}
	if !emailOK {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "email must be verified before placing an order")
	}

	phoneOK, err := s.verifier.IsVerified(ctx, userID.String(), enums.VerificationChannelPhone, input.Shipping.Phone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check phone verification")
	}
	if !phoneOK {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "phone must be verified before placing an order")
	}
	return nil
}

func validateSnapshot(items []SnapshotItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product id is required")
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1").
				WithDetails(map[string]any{"product_id": item.ProductID.String()})
		}
		if _, dup := seen[item.ProductID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate item in submission").
				WithDetails(map[string]any{"product_id": item.ProductID.String()})
		}
		seen[item.ProductID] = struct{}{}
	}
	return nil
}

func resolveDeliveryDate(now time.Time, requested *time.Time) (time.Time, error) {
	if requested == nil {
		return now.AddDate(0, 0, defaultDeliveryDays), nil
	}
	year, month, day := now.Date()
	startOfDay := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	if requested.Before(startOfDay) {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery date cannot be in the past")
	}
	return *requested, nil
}

func generateOrderNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%06d", orderNumberPrefix, now.Format("20060102"), n.Int64()), nil
}
