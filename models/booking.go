package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingPaymentStatus string

const (
	BookingPaymentPending   BookingPaymentStatus = "PENDING"
	BookingPaymentPartial   BookingPaymentStatus = "PARTIAL"
	BookingPaymentCompleted BookingPaymentStatus = "COMPLETED"
)

// PaymentStatus is shared by single payments and split payments.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
)

func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

// ValidOutcome reports whether s may be reported by a provider callback.
func (s PaymentStatus) ValidOutcome() bool {
	return s.Terminal()
}

type Booking struct {
	ID                  int                  `json:"id" db:"id"`
	ClubID              int                  `json:"club_id" db:"club_id"`
	CourtID             int                  `json:"court_id" db:"court_id"`
	BookingDate         time.Time            `json:"booking_date" db:"booking_date"`
	StartTime           string               `json:"start_time" db:"start_time"`
	EndTime             string               `json:"end_time" db:"end_time"`
	TotalPrice          decimal.Decimal      `json:"total_price" db:"total_price"`
	PaymentStatus       BookingPaymentStatus `json:"payment_status" db:"payment_status"`
	SplitPaymentEnabled bool                 `json:"split_payment_enabled" db:"split_payment_enabled"`
	SplitCount          int                  `json:"split_count" db:"split_count"`
	CreatedAt           time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at" db:"updated_at"`
}

// Payment is the single payment of a booking without splitting.
type Payment struct {
	ID                int             `json:"id" db:"id"`
	BookingID         int             `json:"booking_id" db:"booking_id"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Status            PaymentStatus   `json:"status" db:"status"`
	ProviderReference *string         `json:"provider_reference,omitempty" db:"provider_reference"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

type SplitPayment struct {
	ID                int             `json:"id" db:"id"`
	BookingID         int             `json:"booking_id" db:"booking_id"`
	ParticipantName   string          `json:"participant_name" db:"participant_name"`
	ParticipantEmail  *string         `json:"participant_email,omitempty" db:"participant_email"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Status            PaymentStatus   `json:"status" db:"status"`
	ProviderReference *string         `json:"provider_reference,omitempty" db:"provider_reference"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}
