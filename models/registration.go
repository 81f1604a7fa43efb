package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RegistrationPaymentStatus string

const (
	RegistrationPending RegistrationPaymentStatus = "PENDING"
	RegistrationPartial RegistrationPaymentStatus = "PARTIAL"
	RegistrationPaid    RegistrationPaymentStatus = "PAID"
)

// Registration is one pair signed up for a tournament division.
type Registration struct {
	ID             int                       `json:"id" db:"id"`
	TournamentID   int                       `json:"tournament_id" db:"tournament_id"`
	Player1Name    string                    `json:"player1_name" db:"player1_name"`
	Player1Contact string                    `json:"player1_contact" db:"player1_contact"`
	Player2Name    string                    `json:"player2_name" db:"player2_name"`
	Player2Contact string                    `json:"player2_contact" db:"player2_contact"`
	Modality       string                    `json:"modality" db:"modality"`
	Category       string                    `json:"category" db:"category"`
	PaymentStatus  RegistrationPaymentStatus `json:"payment_status" db:"payment_status"`
	PaidAmount     decimal.Decimal           `json:"paid_amount" db:"paid_amount"`
	Confirmed      bool                      `json:"confirmed" db:"confirmed"`
	CheckedIn      bool                      `json:"checked_in" db:"checked_in"`
	CreatedAt      time.Time                 `json:"created_at" db:"created_at"`
}

func (r Registration) Division() Division {
	return Division{Modality: r.Modality, Category: r.Category}
}

func (r Registration) TeamName() string {
	if r.Player2Name == "" {
		return r.Player1Name
	}
	return r.Player1Name + " / " + r.Player2Name
}
