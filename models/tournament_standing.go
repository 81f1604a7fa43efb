package models

// TournamentStanding is computed from completed round-robin matches; it is not stored.
type TournamentStanding struct {
	RegistrationID int `json:"registration_id"`
	Played         int `json:"played"`
	Wins           int `json:"wins"`
	Losses         int `json:"losses"`
	Rank           int `json:"rank"`
}
