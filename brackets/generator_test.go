package brackets

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Dosada05/padel-club/models"
)

func registrations(n int) []models.Registration {
	regs := make([]models.Registration, n)
	for i := range regs {
		regs[i] = models.Registration{ID: 100 + i + 1}
	}
	return regs
}

func ids(slot Slot) (int, int) {
	var a, b int
	if slot.Team1RegistrationID != nil {
		a = *slot.Team1RegistrationID
	}
	if slot.Team2RegistrationID != nil {
		b = *slot.Team2RegistrationID
	}
	return a, b
}

func TestSeedOrder(t *testing.T) {
	tests := []struct {
		size int
		want []int
	}{
		{1, []int{1}},
		{2, []int{1, 2}},
		{4, []int{1, 4, 2, 3}},
		{8, []int{1, 8, 4, 5, 2, 7, 3, 6}},
	}
	for _, tt := range tests {
		if got := seedOrder(tt.size); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("seedOrder(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}

	order := seedOrder(16)
	for i := 0; i < len(order); i += 2 {
		if order[i]+order[i+1] != 17 {
			t.Errorf("pair %d = (%d, %d) does not sum to 17", i/2, order[i], order[i+1])
		}
	}
}

func TestRoundName(t *testing.T) {
	tests := map[int]string{
		1:  "Final",
		2:  "Semifinals",
		4:  "Quarterfinals",
		8:  "Round of 16",
		16: "Round of 32",
		3:  "Round of 6",
	}
	for matches, want := range tests {
		if got := RoundName(matches); got != want {
			t.Errorf("RoundName(%d) = %q, want %q", matches, got, want)
		}
	}
}

func TestSingleElimination_FirstRound(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	ctx := context.Background()

	t.Run("full bracket", func(t *testing.T) {
		round, err := gen.GenerateFirstRound(ctx, GenerateBracketParams{Registrations: registrations(8)})
		if err != nil {
			t.Fatal(err)
		}
		if round.Name != "Quarterfinals" || len(round.Slots) != 4 {
			t.Fatalf("round %q with %d slots", round.Name, len(round.Slots))
		}
		want := [][2]int{{101, 108}, {104, 105}, {102, 107}, {103, 106}}
		for i, slot := range round.Slots {
			a, b := ids(slot)
			if a != want[i][0] || b != want[i][1] || slot.IsBye || slot.Position != i+1 {
				t.Errorf("slot %d = %+v (%d vs %d), want %v", i, slot, a, b, want[i])
			}
		}
	})

	t.Run("byes go to top seeds", func(t *testing.T) {
		round, err := gen.GenerateFirstRound(ctx, GenerateBracketParams{Registrations: registrations(5), AllowByes: true})
		if err != nil {
			t.Fatal(err)
		}
		byes := map[int]bool{}
		for _, slot := range round.Slots {
			if slot.IsBye {
				a, b := ids(slot)
				if b != 0 {
					t.Errorf("bye slot has a second team: %+v", slot)
				}
				byes[a] = true
			}
		}
		if len(byes) != 3 || !byes[101] || !byes[102] || !byes[103] {
			t.Errorf("byes = %v, want seeds 1-3", byes)
		}
	})

	t.Run("byes not allowed", func(t *testing.T) {
		_, err := gen.GenerateFirstRound(ctx, GenerateBracketParams{Registrations: registrations(6)})
		if !errors.Is(err, ErrByesNotAllowed) {
			t.Errorf("err = %v, want %v", err, ErrByesNotAllowed)
		}
	})

	t.Run("not enough teams", func(t *testing.T) {
		_, err := gen.GenerateFirstRound(ctx, GenerateBracketParams{Registrations: registrations(1), AllowByes: true})
		if !errors.Is(err, ErrNotEnoughTeams) {
			t.Errorf("err = %v, want %v", err, ErrNotEnoughTeams)
		}
	})
}

func TestPairWinners(t *testing.T) {
	tests := []struct {
		name      string
		winners   []int
		allowByes bool
		want      [][2]int
		wantBye   bool
		wantErr   error
	}{
		{name: "two pairs", winners: []int{1, 4, 2, 3}, want: [][2]int{{1, 4}, {2, 3}}},
		{name: "final", winners: []int{7, 9}, want: [][2]int{{7, 9}}},
		{name: "odd with byes", winners: []int{1, 2, 3}, allowByes: true, want: [][2]int{{1, 2}, {3, 0}}, wantBye: true},
		{name: "odd without byes", winners: []int{1, 2, 3}, wantErr: ErrOddPairing},
		{name: "nothing to pair", winners: nil, allowByes: true, wantErr: ErrNothingToPair},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := PairWinners(tt.winners, tt.allowByes)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(slots) != len(tt.want) {
				t.Fatalf("slots = %d, want %d", len(slots), len(tt.want))
			}
			for i, slot := range slots {
				a, b := ids(slot)
				if a != tt.want[i][0] || b != tt.want[i][1] || slot.Position != i+1 {
					t.Errorf("slot %d = (%d, %d) at %d, want %v", i, a, b, slot.Position, tt.want[i])
				}
			}
			if last := slots[len(slots)-1]; last.IsBye != tt.wantBye {
				t.Errorf("last slot bye = %v, want %v", last.IsBye, tt.wantBye)
			}
		})
	}
}

func TestRoundRobin(t *testing.T) {
	round, err := NewRoundRobinGenerator().GenerateFirstRound(context.Background(), GenerateBracketParams{Registrations: registrations(4)})
	if err != nil {
		t.Fatal(err)
	}
	if round.Name != GroupStageRoundName || len(round.Slots) != 6 {
		t.Fatalf("round %q with %d slots", round.Name, len(round.Slots))
	}
	seen := map[[2]int]bool{}
	for _, slot := range round.Slots {
		a, b := ids(slot)
		if a >= b || seen[[2]int{a, b}] {
			t.Errorf("unexpected pairing %d vs %d", a, b)
		}
		seen[[2]int{a, b}] = true
	}
}

func TestComputeStandings(t *testing.T) {
	team := func(v int) *int { return &v }
	side := team
	matches := []models.Match{
		{Team1RegistrationID: team(1), Team2RegistrationID: team(2), Status: models.MatchCompleted, WinnerSide: side(2)},
		{Team1RegistrationID: team(1), Team2RegistrationID: team(3), Status: models.MatchCompleted, WinnerSide: side(1)},
		{Team1RegistrationID: team(2), Team2RegistrationID: team(3), Status: models.MatchCompleted, WinnerSide: side(1)},
		{Team1RegistrationID: team(3), Team2RegistrationID: team(4), Status: models.MatchScheduled},
	}

	got := ComputeStandings(matches)
	want := []models.TournamentStanding{
		{RegistrationID: 2, Played: 2, Wins: 2, Losses: 0, Rank: 1},
		{RegistrationID: 1, Played: 2, Wins: 1, Losses: 1, Rank: 2},
		{RegistrationID: 3, Played: 2, Wins: 0, Losses: 2, Rank: 3},
		{RegistrationID: 4, Played: 0, Wins: 0, Losses: 0, Rank: 4},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("standings = %+v\nwant %+v", got, want)
	}
}

func TestNewGenerator(t *testing.T) {
	if _, err := NewGenerator("KNOCKOUT_PLUS"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want %v", err, ErrUnknownFormat)
	}
	for _, format := range []models.TournamentFormat{models.FormatSingleElimination, models.FormatRoundRobin} {
		if _, err := NewGenerator(format); err != nil {
			t.Errorf("NewGenerator(%s): %v", format, err)
		}
	}
}
