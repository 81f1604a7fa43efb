package models

import "time"

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "SCHEDULED"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchCompleted  MatchStatus = "COMPLETED"
	MatchCancelled  MatchStatus = "CANCELLED"
)

// Match sides are numbered 1 and 2. A bye match has only side 1 and is
// resolved when it is created.
type Match struct {
	ID                  int         `json:"id" db:"id"`
	TournamentID        int         `json:"tournament_id" db:"tournament_id"`
	RoundID             int         `json:"round_id" db:"round_id"`
	Position            int         `json:"position" db:"position"`
	Team1RegistrationID *int        `json:"team1_registration_id,omitempty" db:"team1_registration_id"`
	Team2RegistrationID *int        `json:"team2_registration_id,omitempty" db:"team2_registration_id"`
	IsBye               bool        `json:"is_bye" db:"is_bye"`
	ScheduledAt         *time.Time  `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CourtID             *int        `json:"court_id,omitempty" db:"court_id"`
	Status              MatchStatus `json:"status" db:"status"`
	WinnerSide          *int        `json:"winner_side,omitempty" db:"winner_side"`
	Score               *string     `json:"score,omitempty" db:"score"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
}

// Resolved reports whether the match has a decided winner.
func (m Match) Resolved() bool {
	if m.IsBye {
		return true
	}
	return m.Status == MatchCompleted && m.WinnerSide != nil
}

// WinnerRegistrationID returns the registration on the winning side, if any.
func (m Match) WinnerRegistrationID() (int, bool) {
	if m.IsBye {
		if m.Team1RegistrationID != nil {
			return *m.Team1RegistrationID, true
		}
		if m.Team2RegistrationID != nil {
			return *m.Team2RegistrationID, true
		}
		return 0, false
	}
	if m.WinnerSide == nil {
		return 0, false
	}
	switch *m.WinnerSide {
	case 1:
		if m.Team1RegistrationID != nil {
			return *m.Team1RegistrationID, true
		}
	case 2:
		if m.Team2RegistrationID != nil {
			return *m.Team2RegistrationID, true
		}
	}
	return 0, false
}
