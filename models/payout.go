package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClubPayout is the club's earned share that the platform still has to transfer.
type ClubPayout struct {
	ID                int             `json:"id" db:"id"`
	ClubID            int             `json:"club_id" db:"club_id"`
	BookingID         *int            `json:"booking_id,omitempty" db:"booking_id"`
	AmountOwed        decimal.Decimal `json:"amount_owed" db:"amount_owed"`
	AmountTransferred decimal.Decimal `json:"amount_transferred" db:"amount_transferred"`
	TransferReference *string         `json:"transfer_reference,omitempty" db:"transfer_reference"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

func (p ClubPayout) Outstanding() decimal.Decimal {
	return p.AmountOwed.Sub(p.AmountTransferred)
}

func (p ClubPayout) Pending() bool {
	return p.AmountOwed.GreaterThan(p.AmountTransferred)
}
