package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TournamentStatus представляет статусы турнира, соответствующие CHECK в БД.
type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "DRAFT"
	TournamentActive    TournamentStatus = "ACTIVE"
	TournamentCompleted TournamentStatus = "COMPLETED"
)

// Tournament представляет турнир клуба.
type Tournament struct {
	ID                   int              `json:"id" db:"id"`
	ClubID               int              `json:"club_id" db:"club_id"`
	Name                 string           `json:"name" db:"name"`
	Format               TournamentFormat `json:"format" db:"format"`
	Status               TournamentStatus `json:"status" db:"status"`
	RegistrationFee      decimal.Decimal  `json:"registration_fee" db:"registration_fee"`
	AllowByes            bool             `json:"allow_byes" db:"allow_byes"`
	WinnerRegistrationID *int             `json:"winner_registration_id,omitempty" db:"winner_registration_id"`
	StartDate            time.Time        `json:"start_date" db:"start_date"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Rounds        []Round        `json:"rounds,omitempty" db:"-"`
	Registrations []Registration `json:"registrations,omitempty" db:"-"`
}

// CanTransitionTo reports whether the status may move forward to next.
// Statuses never move backwards.
func (s TournamentStatus) CanTransitionTo(next TournamentStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case TournamentDraft:
		return next == TournamentActive
	case TournamentActive:
		return next == TournamentCompleted
	default:
		return false
	}
}

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentDraft, TournamentActive, TournamentCompleted:
		return true
	}
	return false
}
