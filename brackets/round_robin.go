package brackets

import (
	"context"
	"sort"

	"github.com/Dosada05/padel-club/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateFirstRound creates a single group stage where every team plays every other team once.
func (g *RoundRobinGenerator) GenerateFirstRound(ctx context.Context, params GenerateBracketParams) (*FirstRound, error) {
	regs := params.Registrations
	if len(regs) < MinTeams {
		return nil, ErrNotEnoughTeams
	}

	slots := make([]Slot, 0, len(regs)*(len(regs)-1)/2)
	for i := 0; i < len(regs); i++ {
		for j := i + 1; j < len(regs); j++ {
			id1, id2 := regs[i].ID, regs[j].ID
			slots = append(slots, Slot{
				Position:            len(slots) + 1,
				Team1RegistrationID: &id1,
				Team2RegistrationID: &id2,
			})
		}
	}
	return &FirstRound{Name: GroupStageRoundName, Slots: slots}, nil
}

// ComputeStandings ranks teams by wins; ties go to the lower registration id.
// Only resolved matches count.
func ComputeStandings(matches []models.Match) []models.TournamentStanding {
	table := make(map[int]*models.TournamentStanding)
	entry := func(id int) *models.TournamentStanding {
		s, ok := table[id]
		if !ok {
			s = &models.TournamentStanding{RegistrationID: id}
			table[id] = s
		}
		return s
	}

	for _, m := range matches {
		if m.Team1RegistrationID != nil {
			entry(*m.Team1RegistrationID)
		}
		if m.Team2RegistrationID != nil {
			entry(*m.Team2RegistrationID)
		}
		if m.IsBye || !m.Resolved() {
			continue
		}
		winner, ok := m.WinnerRegistrationID()
		if !ok {
			continue
		}
		for _, id := range []*int{m.Team1RegistrationID, m.Team2RegistrationID} {
			if id == nil {
				continue
			}
			s := entry(*id)
			s.Played++
			if *id == winner {
				s.Wins++
			} else {
				s.Losses++
			}
		}
	}

	standings := make([]models.TournamentStanding, 0, len(table))
	for _, s := range table {
		standings = append(standings, *s)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		return standings[i].RegistrationID < standings[j].RegistrationID
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}
