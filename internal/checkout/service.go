package checkout

import (
	"context"
	"time"

	"github.com/gildedlane/storefront-backend/pkg/enums"
	pkgerrors "github.com/gildedlane/storefront-backend/pkg/errors"
	"github.com/gildedlane/storefront-backend/pkg/types"
)

// Delivery dates default one week out when the shopper leaves them blank.
const defaultDeliveryDays = 7

// contactVerifier is the verification surface the checkout flow needs.
type contactVerifier interface {
	RequestCode(ctx context.Context, userID string, channel enums.VerificationChannel, contact string) (string, error)
	ConfirmCode(ctx context.Context, userID string, channel enums.VerificationChannel, contact, code string) error
	IsVerified(ctx context.Context, userID string, channel enums.VerificationChannel, contact string) (bool, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Verifier contactVerifier
	Now      func() time.Time
}

// Service walks a shopper through delivery details and contact verification.
type Service interface {
	SubmitShipping(ctx context.Context, userID string, info types.ShippingInfo) (ShippingStateDTO, error)
	RequestVerification(ctx context.Context, userID string, channel enums.VerificationChannel, contact string) (VerificationStatusDTO, error)
	ConfirmVerification(ctx context.Context, userID string, channel enums.VerificationChannel, contact, code string) (VerificationStatusDTO, error)
}

type service struct {
	verifier contactVerifier
	now      func() time.Time
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Verifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verifier is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		verifier: params.Verifier,
		now:      params.Now,
	}, nil
}

// SubmitShipping validates the delivery details and reports the current
// verification state for both contact channels. The shopper is ready for
// payment only when both channels are verified against the submitted values.
func (s *service) SubmitShipping(ctx context.Context, userID string, info types.ShippingInfo) (ShippingStateDTO, error) {
	if userID == "" {
		return ShippingStateDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}

	now := s.now()
	deliveryDate := now.AddDate(0, 0, defaultDeliveryDays)
	if info.DeliveryDate != nil {
		requested := *info.DeliveryDate
		if requested.Before(startOfDay(now)) {
			return ShippingStateDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery date cannot be in the past").
				WithDetails(map[string]any{"delivery_date": requested.Format(time.RFC3339)})
		}
		deliveryDate = requested
	} else {
		info.DeliveryDate = &deliveryDate
	}

	emailVerified, err := s.verifier.IsVerified(ctx, userID, enums.VerificationChannelEmail, info.Email)
	if err != nil {
		return ShippingStateDTO{}, err
	}
	phoneVerified, err := s.verifier.IsVerified(ctx, userID, enums.VerificationChannelPhone, info.Phone)
	if err != nil {
		return ShippingStateDTO{}, err
	}

	return ShippingStateDTO{
		Shipping:        info,
		DeliveryDate:    deliveryDate,
		EmailVerified:   emailVerified,
		PhoneVerified:   phoneVerified,
		ReadyForPayment: emailVerified && phoneVerified,
	}, nil
}

// RequestVerification issues a code for the channel's contact value.
func (s *service) RequestVerification(ctx context.Context, userID string, channel enums.VerificationChannel, contact string) (VerificationStatusDTO, error) {
	if userID == "" {
		return VerificationStatusDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	if !channel.IsValid() {
		return VerificationStatusDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown verification channel")
	}
	if contact == "" {
		return VerificationStatusDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "contact value is required")
	}

	devCode, err := s.verifier.RequestCode(ctx, userID, channel, contact)
	if err != nil {
		return VerificationStatusDTO{}, err
	}
	return VerificationStatusDTO{
		Channel: channel.String(),
		DevCode: devCode,
	}, nil
}

// ConfirmVerification validates the submitted code and flags the contact.
func (s *service) ConfirmVerification(ctx context.Context, userID string, channel enums.VerificationChannel, contact, code string) (VerificationStatusDTO, error) {
	if userID == "" {
		return VerificationStatusDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	if !channel.IsValid() {
		return VerificationStatusDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown verification channel")
	}
	if code == "" {
		return VerificationStatusDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "verification code is required")
	}

	if err := s.verifier.ConfirmCode(ctx, userID, channel, contact, code); err != nil {
		return VerificationStatusDTO{}, err
	}
	return VerificationStatusDTO{
		Channel:  channel.String(),
		Verified: true,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
