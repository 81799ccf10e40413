package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/gildedlane/storefront-backend/api/middleware"
	"github.com/gildedlane/storefront-backend/pkg/enums"
	pkgerrors "github.com/gildedlane/storefront-backend/pkg/errors"
)

// requireUser extracts the authenticated shopper from the request context.
func requireUser(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}

func currentRole(ctx context.Context) enums.Role {
	role, err := enums.ParseRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return enums.RoleCustomer
	}
	return role
}

func isReseller(ctx context.Context) bool {
	return currentRole(ctx) == enums.RoleReseller
}
