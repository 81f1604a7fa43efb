package models

type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "SINGLE_ELIMINATION"
	FormatRoundRobin        TournamentFormat = "ROUND_ROBIN"
)

func (f TournamentFormat) Valid() bool {
	return f == FormatSingleElimination || f == FormatRoundRobin
}

// Division identifies one bracket inside a tournament. Padel tournaments
// usually run several of them side by side (e.g. "mixed" / "3rd category").
type Division struct {
	Modality string `json:"modality"`
	Category string `json:"category"`
}
