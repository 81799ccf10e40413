package controllers

import (
	"net/http"

	"github.com/gildedlane/storefront-backend/api/responses"
	"github.com/gildedlane/storefront-backend/api/validators"
	"github.com/gildedlane/storefront-backend/internal/checkout"
	"github.com/gildedlane/storefront-backend/pkg/enums"
	pkgerrors "github.com/gildedlane/storefront-backend/pkg/errors"
	"github.com/gildedlane/storefront-backend/pkg/logger"
	"github.com/gildedlane/storefront-backend/pkg/types"
)

type shippingStepPayload struct {
	Shipping types.ShippingInfo `json:"shipping" validate:"required"`
}

type verificationRequestPayload struct {
	Channel string `json:"channel" validate:"required,oneof=email phone"`
	Value   string `json:"value" validate:"required,max=254"`
}

type verificationConfirmPayload struct {
	Channel string `json:"channel" validate:"required,oneof=email phone"`
	Value   string `json:"value" validate:"required,max=254"`
	Code    string `json:"code" validate:"required,len=6,numeric"`
}

// CheckoutShipping validates the shipping step and reports whether the
// shopper may advance to payment.
func CheckoutShipping(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requireUser(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload shippingStepPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.SubmitShipping(ctx, userID.String(), payload.Shipping)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// CheckoutVerify issues a verification code for one contact channel.
func CheckoutVerify(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requireUser(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload verificationRequestPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		channel, err := enums.ParseVerificationChannel(payload.Channel)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel"))
			return
		}

		record, err := svc.RequestVerification(ctx, userID.String(), channel, payload.Value)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// CheckoutVerifyConfirm checks a submitted code and marks the channel verified.
func CheckoutVerifyConfirm(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requireUser(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload verificationConfirmPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		channel, err := enums.ParseVerificationChannel(payload.Channel)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel"))
			return
		}

		record, err := svc.ConfirmVerification(ctx, userID.String(), channel, payload.Value, payload.Code)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}
