package models

import "time"

type Round struct {
	ID                   int       `json:"id" db:"id"`
	TournamentID         int       `json:"tournament_id" db:"tournament_id"`
	Name                 string    `json:"name" db:"name"`
	Stage                int       `json:"stage" db:"stage"`
	Modality             string    `json:"modality" db:"modality"`
	Category             string    `json:"category" db:"category"`
	WinnerRegistrationID *int      `json:"winner_registration_id,omitempty" db:"winner_registration_id"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`

	Matches []Match `json:"matches,omitempty" db:"-"`
}

func (r Round) Division() Division {
	return Division{Modality: r.Modality, Category: r.Category}
}
