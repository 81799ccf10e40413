package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gildedlane/storefront-backend/api/responses"
	"github.com/gildedlane/storefront-backend/api/validators"
	"github.com/gildedlane/storefront-backend/internal/wishlist"
	pkgerrors "github.com/gildedlane/storefront-backend/pkg/errors"
	"github.com/gildedlane/storefront-backend/pkg/logger"
)

type wishlistTogglePayload struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// WishlistList returns the shopper's wishlist, newest first.
func WishlistList(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		userID, err := requireUser(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.GetWishlist(ctx, userID, isReseller(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// WishlistToggle flips wishlist membership for one product and reports
// whether it was added or removed.
func WishlistToggle(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		userID, err := requireUser(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload wishlistTogglePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.Toggle(ctx, userID, payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}
