package checkout

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gildedlane/storefront-backend/pkg/enums"
	pkgerrors "github.com/gildedlane/storefront-backend/pkg/errors"
	"github.com/gildedlane/storefront-backend/pkg/logger"
)

// verificationStore is the redis surface the verifier needs.
type verificationStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	VerificationKey(userID, channel string) string
	VerificationCodeKey(userID, channel string) string
}

// CodeSender delivers a verification code to the shopper's contact point.
type CodeSender interface {
	SendCode(ctx context.Context, channel enums.VerificationChannel, contact, code string) error
}

// LogSender writes codes to the application log instead of dispatching
// them. Real delivery runs through an external provider; this keeps dev and
// test environments self-contained.
type LogSender struct {
	Logger *logger.Logger
}

func (s LogSender) SendCode(ctx context.Context, channel enums.VerificationChannel, contact, code string) error {
	if s.Logger != nil {
		ctx = s.Logger.WithFields(ctx, map[string]any{
			"channel": channel.String(),
			"contact": maskContact(contact),
		})
		s.Logger.Info(ctx, "verification code issued")
	}
	return nil
}

// Verifier manages verification codes and confirmed-contact flags. A flag
// stores the hash of the contact it verified, so editing the contact value
// silently invalidates the flag without any client cooperation.
type Verifier struct {
	store       verificationStore
	sender      CodeSender
	codeTTL     time.Duration
	verifiedTTL time.Duration
	exposeCodes bool
}

// VerifierParams groups dependencies for the verifier.
type VerifierParams struct {
	Store       verificationStore
	Sender      CodeSender
	CodeTTL     time.Duration
	VerifiedTTL time.Duration
	// ExposeCodes returns the generated code to the caller. Dev only.
	ExposeCodes bool
}

// NewVerifier builds a contact verifier.
func NewVerifier(params VerifierParams) (*Verifier, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification store is required")
	}
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code sender is required")
	}
	if params.CodeTTL <= 0 {
		params.CodeTTL = 10 * time.Minute
	}
	if params.VerifiedTTL <= 0 {
		params.VerifiedTTL = 24 * time.Hour
	}
	return &Verifier{
		store:       params.Store,
		sender:      params.Sender,
		codeTTL:     params.CodeTTL,
		verifiedTTL: params.VerifiedTTL,
		exposeCodes: params.ExposeCodes,
	}, nil
}

type pendingCode struct {
	Code        string `json:"code"`
	ContactHash string `json:"contact_hash"`
}

// RequestCode issues a fresh code for the contact and sends it through the
// configured sender. The returned code is empty unless ExposeCodes is on.
func (v *Verifier) RequestCode(ctx context.Context, userID string, channel enums.VerificationChannel, contact string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
	}

	payload, err := json.Marshal(pendingCode{
		Code:        code,
		ContactHash: hashContact(contact),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode verification code")
	}

	key := v.store.VerificationCodeKey(userID, channel.String())
	if err := v.store.Set(ctx, key, string(payload), v.codeTTL); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store verification code")
	}

	if err := v.sender.SendCode(ctx, channel, contact, code); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send verification code")
	}

	if v.exposeCodes {
		return code, nil
	}
	return "", nil
}

// ConfirmCode checks the submitted code against the pending one and, on
// success, flags the contact as verified.
func (v *Verifier) ConfirmCode(ctx context.Context, userID string, channel enums.VerificationChannel, contact, code string) error {
	codeKey := v.store.VerificationCodeKey(userID, channel.String())
	stored, err := v.store.Get(ctx, codeKey)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no verification pending, request a new code")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification code")
	}

	var pending pendingCode
	if err := json.Unmarshal([]byte(stored), &pending); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode verification code")
	}

	if pending.Code != strings.TrimSpace(code) {
		return pkgerrors.New(pkgerrors.CodeValidation, "verification code does not match")
	}
	if pending.ContactHash != hashContact(contact) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "contact changed since the code was requested")
	}

	flagKey := v.store.VerificationKey(userID, channel.String())
	if err := v.store.Set(ctx, flagKey, pending.ContactHash, v.verifiedTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store verification flag")
	}
	_ = v.store.Del(ctx, codeKey)
	return nil
}

// IsVerified reports whether the contact value currently carries a valid
// verification flag.
func (v *Verifier) IsVerified(ctx context.Context, userID string, channel enums.VerificationChannel, contact string) (bool, error) {
	key := v.store.VerificationKey(userID, channel.String())
	stored, err := v.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification flag")
	}
	return stored == hashContact(contact), nil
}

func hashContact(contact string) string {
	normalized := strings.ToLower(strings.TrimSpace(contact))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func maskContact(contact string) string {
	trimmed := strings.TrimSpace(contact)
	if len(trimmed) <= 4 {
		return "****"
	}
	return trimmed[:2] + "****" + trimmed[len(trimmed)-2:]
}
