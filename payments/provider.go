// Package payments talks to the payment provider: payouts to club accounts,
// account onboarding state and payment webhooks.
package payments

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnhandledEvent   = errors.New("webhook event is not handled")
	ErrMissingReference = errors.New("webhook event carries no payment reference")
)

type TransferRequest struct {
	AccountID      string
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

type Transfer struct {
	ID     string
	Amount decimal.Decimal
}

type Account struct {
	ID               string
	DetailsSubmitted bool
	PayoutsEnabled   bool
}

// OnboardingComplete reports whether the account may receive transfers.
func (a Account) OnboardingComplete() bool {
	return a.DetailsSubmitted && a.PayoutsEnabled
}

type Provider interface {
	CreateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
}

// ToMinorUnits converts an amount to cents.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ErrProviderDisabled is returned when no provider credentials are configured.
var ErrProviderDisabled = errors.New("payment provider is not configured")

type disabledProvider struct{}

// NewDisabledProvider returns a Provider that fails every call with ErrProviderDisabled.
func NewDisabledProvider() Provider { return disabledProvider{} }

func (disabledProvider) CreateTransfer(context.Context, TransferRequest) (*Transfer, error) {
	return nil, ErrProviderDisabled
}

func (disabledProvider) GetAccount(context.Context, string) (*Account, error) {
	return nil, ErrProviderDisabled
}
