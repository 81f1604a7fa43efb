package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ClubStatus string

const (
	ClubActive    ClubStatus = "ACTIVE"
	ClubSuspended ClubStatus = "SUSPENDED"
)

type Club struct {
	ID                 int             `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Status             ClubStatus      `json:"status" db:"status"`
	StripeAccountID    *string         `json:"stripe_account_id,omitempty" db:"stripe_account_id"`
	OnboardingComplete bool            `json:"onboarding_complete" db:"onboarding_complete"`
	CommissionRate     decimal.Decimal `json:"commission_rate" db:"commission_rate"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// CanReceiveTransfers reports whether payouts may be sent to the club's provider account.
func (c Club) CanReceiveTransfers() bool {
	return c.StripeAccountID != nil && *c.StripeAccountID != "" && c.OnboardingComplete
}

// EarnedShare is the part of amount that belongs to the club after the platform commission.
func (c Club) EarnedShare(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(1).Sub(c.CommissionRate)).Round(2)
}
