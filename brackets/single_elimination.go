package brackets

import (
	"context"
	"fmt"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateFirstRound pads the field to the next power of two. Missing seats are
// byes and go to the top seeds, so two byes never meet.
func (g *SingleEliminationGenerator) GenerateFirstRound(ctx context.Context, params GenerateBracketParams) (*FirstRound, error) {
	n := len(params.Registrations)
	if n < MinTeams {
		return nil, ErrNotEnoughTeams
	}

	size := nextPowerOfTwo(n)
	numByes := size - n
	if numByes > 0 && !params.AllowByes {
		return nil, fmt.Errorf("%w: %d teams, bracket of %d", ErrByesNotAllowed, n, size)
	}

	order := seedOrder(size)
	slots := make([]Slot, 0, size/2)
	for i := 0; i < len(order); i += 2 {
		seedA, seedB := order[i], order[i+1]
		slot := Slot{Position: len(slots) + 1}

		switch {
		case seedB > n:
			id := params.Registrations[seedA-1].ID
			slot.Team1RegistrationID = &id
			slot.IsBye = true
		case seedA > n:
			id := params.Registrations[seedB-1].ID
			slot.Team1RegistrationID = &id
			slot.IsBye = true
		default:
			id1 := params.Registrations[seedA-1].ID
			id2 := params.Registrations[seedB-1].ID
			slot.Team1RegistrationID = &id1
			slot.Team2RegistrationID = &id2
		}
		slots = append(slots, slot)
	}

	return &FirstRound{Name: RoundName(len(slots)), Slots: slots}, nil
}

func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// seedOrder returns seeds 1..size in bracket order, e.g. [1 8 4 5 2 7 3 6] for 8,
// so that seed s opens against seed size+1-s.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		total := len(order)*2 + 1
		for _, s := range order {
			next = append(next, s, total-s)
		}
		order = next
	}
	return order
}
