package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gildedlane/storefront-backend/pkg/db/models"
	pkgerrors "github.com/gildedlane/storefront-backend/pkg/errors"
)

// cartRepository is the persistence surface the service needs.
type cartRepository interface {
	AddQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	ListItems(ctx context.Context, userID uuid.UUID) ([]cartItemRecord, error)
}

// productFinder resolves catalog products for validation.
type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	CartRepo    cartRepository
	ProductRepo productFinder
}

// Service exposes business rules for cart management.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID, reseller bool) (CartDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int, reseller bool) (CartDTO, error)
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int, reseller bool) (CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID, reseller bool) (CartDTO, error)
}

type service struct {
	cartRepo    cartRepository
	productRepo productFinder
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{
		cartRepo:    params.CartRepo,
		productRepo: params.ProductRepo,
	}, nil
}

// GetCart returns the shopper's cart with role-priced line totals.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID, reseller bool) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	rows, err := s.cartRepo.ListItems(ctx, userID)
	if err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return buildCartDTO(rows, reseller), nil
}

// AddItem merges the requested quantity into the shopper's cart row for the
// product and returns the updated cart.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int, reseller bool) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	if productID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "product is no longer available")
	}

	if err := s.cartRepo.AddQuantity(ctx, userID, productID, quantity); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return s.GetCart(ctx, userID, reseller)
}

// SetQuantity overwrites the quantity of an existing cart row.
func (s *service) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int, reseller bool) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	if productID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	if err := s.cartRepo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart item not found")
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set cart quantity")
	}
	return s.GetCart(ctx, userID, reseller)
}

// RemoveItem deletes the cart row for the product.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID, reseller bool) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	if productID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	if err := s.cartRepo.RemoveItem(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart item not found")
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.GetCart(ctx, userID, reseller)
}

func buildCartDTO(rows []cartItemRecord, reseller bool) CartDTO {
	items := make([]ItemDTO, 0, len(rows))
	subtotal := 0
	count := 0
	for _, row := range rows {
		unit := row.PriceB2C
		if reseller && row.PriceB2B != nil {
			unit = *row.PriceB2B
		}
		line := unit * row.Quantity
		items = append(items, ItemDTO{
			ProductID: row.ProductID,
			Name:      row.Name,
			Image:     row.primaryImage(),
			UnitPrice: unit,
			Quantity:  row.Quantity,
			LineTotal: line,
			AddedAt:   row.AddedAt,
		})
		subtotal += line
		count += row.Quantity
	}
	return CartDTO{
		Items:     items,
		ItemCount: count,
		Subtotal:  subtotal,
	}
}
