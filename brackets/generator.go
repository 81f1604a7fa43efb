package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-club/models"
)

// MinTeams is the smallest field a bracket can be generated for.
const MinTeams = 2

var (
	ErrNotEnoughTeams = errors.New("not enough teams to generate a bracket (minimum 2)")
	ErrByesNotAllowed = errors.New("team count requires byes but the tournament does not allow them")
	ErrOddPairing     = errors.New("odd number of winners and byes are not allowed")
	ErrNothingToPair  = errors.New("no winners to pair")
	ErrUnknownFormat  = errors.New("unsupported tournament format")
)

// Slot is one match of a round before it is persisted.
type Slot struct {
	Position            int
	Team1RegistrationID *int
	Team2RegistrationID *int
	IsBye               bool
}

type GenerateBracketParams struct {
	// Registrations in seed order; the first entry is the top seed.
	Registrations []models.Registration
	AllowByes     bool
}

// FirstRound is the opening round produced by a generator.
type FirstRound struct {
	Name  string
	Slots []Slot
}

type BracketGenerator interface {
	GenerateFirstRound(ctx context.Context, params GenerateBracketParams) (*FirstRound, error)

	GetName() string
}

func NewGenerator(format models.TournamentFormat) (BracketGenerator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// PairWinners pairs adjacent winners: positions 2k-1 and 2k meet in match k.
// With an odd count and byes allowed, the last winner gets a bye slot.
func PairWinners(winners []int, allowByes bool) ([]Slot, error) {
	if len(winners) == 0 {
		return nil, ErrNothingToPair
	}
	if len(winners)%2 == 1 && !allowByes {
		return nil, fmt.Errorf("%w: %d winners", ErrOddPairing, len(winners))
	}

	slots := make([]Slot, 0, (len(winners)+1)/2)
	for i := 0; i < len(winners); i += 2 {
		team1 := winners[i]
		slot := Slot{Position: len(slots) + 1, Team1RegistrationID: &team1}
		if i+1 < len(winners) {
			team2 := winners[i+1]
			slot.Team2RegistrationID = &team2
		} else {
			slot.IsBye = true
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
