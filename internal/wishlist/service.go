package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gildedlane/storefront-backend/pkg/db/models"
	pkgerrors "github.com/gildedlane/storefront-backend/pkg/errors"
)

type wishlistRepository interface {
	Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListItems(ctx context.Context, userID uuid.UUID) ([]wishlistItemRecord, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo wishlistRepository
	ProductRepo  productFinder
}

// Service exposes business rules for wishlist management.
type Service interface {
	GetWishlist(ctx context.Context, userID uuid.UUID, reseller bool) (WishlistDTO, error)
	Toggle(ctx context.Context, userID, productID uuid.UUID) (ToggleResultDTO, error)
}

type service struct {
	wishlistRepo wishlistRepository
	productRepo  productFinder
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{
		wishlistRepo: params.WishlistRepo,
		productRepo:  params.ProductRepo,
	}, nil
}

// GetWishlist returns every saved product for the shopper.
func (s *service) GetWishlist(ctx context.Context, userID uuid.UUID, reseller bool) (WishlistDTO, error) {
	if userID == uuid.Nil {
		return WishlistDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	rows, err := s.wishlistRepo.ListItems(ctx, userID)
	if err != nil {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}

	items := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		unit := row.PriceB2C
		if reseller && row.PriceB2B != nil {
			unit = *row.PriceB2B
		}
		items = append(items, ItemDTO{
			ProductID: row.ProductID,
			Name:      row.Name,
			Image:     row.primaryImage(),
			UnitPrice: unit,
			IsActive:  row.IsActive,
			AddedAt:   row.AddedAt,
		})
	}
	return WishlistDTO{Items: items, Count: len(items)}, nil
}

// Toggle adds the product when absent and removes it when present.
func (s *service) Toggle(ctx context.Context, userID, productID uuid.UUID) (ToggleResultDTO, error) {
	if userID == uuid.Nil {
		return ToggleResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	if productID == uuid.Nil {
		return ToggleResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	added, err := s.wishlistRepo.Toggle(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, ErrToggleContention) {
			return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "wishlist is changing too quickly, retry")
		}
		return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle wishlist")
	}

	action := ToggleActionRemoved
	if added {
		action = ToggleActionAdded
	}
	return ToggleResultDTO{ProductID: productID, Action: action}, nil
}
