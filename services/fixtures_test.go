package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/padel-club/brackets"
	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/repositories"
	"github.com/Dosada05/padel-club/repositories/memstore"
	"github.com/shopspring/decimal"
)

var (
	adminSession = models.Session{UserID: 1, Role: models.RoleAdmin}
	mixedThird   = models.Division{Modality: "mixed", Category: "3rd"}
	mensFirst    = models.Division{Modality: "men", Category: "1st"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentEvent struct {
	Room string
	Type string
}

// recordingNotifier collects realtime events instead of sending them.
type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) BroadcastToRoom(roomID string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ev := sentEvent{Room: roomID}
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		ev.Type = msg.Type
	}
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, ev := range n.events {
		if ev.Type == eventType {
			c++
		}
	}
	return c
}

func mustCreateClub(t *testing.T, store repositories.Store, name string) *models.Club {
	t.Helper()
	club := &models.Club{
		Name:           name,
		Status:         models.ClubActive,
		CommissionRate: decimal.RequireFromString("0.10"),
	}
	if err := store.Clubs().Create(context.Background(), club); err != nil {
		t.Fatalf("create club: %v", err)
	}
	return club
}

func clubSession(clubID int) models.Session {
	return models.Session{UserID: 100 + clubID, ClubID: &clubID, Role: models.RoleStaff}
}

type tournamentFixture struct {
	t        *testing.T
	store    *memstore.Store
	notifier *recordingNotifier
	service  TournamentService
	club     *models.Club
	seq      int
}

func newTournamentFixture(t *testing.T) *tournamentFixture {
	t.Helper()
	store := memstore.New()
	notifier := &recordingNotifier{}
	return &tournamentFixture{
		t:        t,
		store:    store,
		notifier: notifier,
		service:  NewTournamentService(store, notifier, discardLogger()),
		club:     mustCreateClub(t, store, "Padel Norte"),
	}
}

func (f *tournamentFixture) createTournament(format models.TournamentFormat, allowByes bool) *models.Tournament {
	f.t.Helper()
	f.seq++
	tour, err := f.service.CreateTournament(context.Background(), adminSession, CreateTournamentInput{
		ClubID:    f.club.ID,
		Name:      fmt.Sprintf("Open %d", f.seq),
		Format:    format,
		AllowByes: &allowByes,
		StartDate: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		f.t.Fatalf("create tournament: %v", err)
	}
	return tour
}

// registerTeams registers and confirms n pairs in the division, in seed order.
func (f *tournamentFixture) registerTeams(tournamentID int, division models.Division, n int) []models.Registration {
	f.t.Helper()
	ctx := context.Background()
	regs := make([]models.Registration, 0, n)
	for i := 1; i <= n; i++ {
		reg, err := f.service.RegisterTeam(ctx, tournamentID, RegisterTeamInput{
			Player1Name: fmt.Sprintf("%s A%d", division.Modality, i),
			Player2Name: fmt.Sprintf("%s B%d", division.Modality, i),
			Modality:    division.Modality,
			Category:    division.Category,
		})
		if err != nil {
			f.t.Fatalf("register team %d: %v", i, err)
		}
		if _, err := f.service.ConfirmRegistration(ctx, adminSession, tournamentID, reg.ID); err != nil {
			f.t.Fatalf("confirm registration %d: %v", reg.ID, err)
		}
		regs = append(regs, *reg)
	}
	return regs
}

// startBracket creates a tournament with n confirmed teams and generates its first round.
func (f *tournamentFixture) startBracket(format models.TournamentFormat, allowByes bool, n int) (*models.Tournament, []models.Registration, *BracketView) {
	f.t.Helper()
	tour := f.createTournament(format, allowByes)
	regs := f.registerTeams(tour.ID, mixedThird, n)
	view, err := f.service.GenerateBracket(context.Background(), adminSession, tour.ID, mixedThird)
	if err != nil {
		f.t.Fatalf("generate bracket: %v", err)
	}
	return tour, regs, view
}

func (f *tournamentFixture) roundMatches(tournamentID int, division models.Division, stage int) (models.Round, []models.Match) {
	f.t.Helper()
	ctx := context.Background()
	round, err := f.store.Rounds().GetByStage(ctx, tournamentID, division, stage)
	if err != nil {
		f.t.Fatalf("get round stage %d: %v", stage, err)
	}
	matches, err := f.store.Matches().ListByRound(ctx, round.ID)
	if err != nil {
		f.t.Fatalf("list matches: %v", err)
	}
	return *round, matches
}

// playAll records side as the winner of every unresolved match of the round.
func (f *tournamentFixture) playAll(matches []models.Match, side int) {
	f.t.Helper()
	for _, m := range matches {
		if m.Resolved() {
			continue
		}
		f.play(m.ID, side)
	}
}

func (f *tournamentFixture) play(matchID, side int) {
	f.t.Helper()
	score := "6-4 6-3"
	if _, err := f.service.RecordMatchResult(context.Background(), adminSession, matchID, MatchResultInput{WinnerSide: side, Score: &score}); err != nil {
		f.t.Fatalf("record result of match %d: %v", matchID, err)
	}
}

func (f *tournamentFixture) advance(tournamentID int, roundName string, division *models.Division) *AdvancementResult {
	f.t.Helper()
	res, err := f.advanceErr(tournamentID, roundName, division)
	if err != nil {
		f.t.Fatalf("advance %q: %v", roundName, err)
	}
	return res
}

func (f *tournamentFixture) advanceErr(tournamentID int, roundName string, division *models.Division) (*AdvancementResult, error) {
	input := AdvanceRoundInput{TournamentID: tournamentID, RoundName: roundName}
	if division != nil {
		input.Modality = division.Modality
		input.Category = division.Category
	}
	return f.service.AdvanceRound(context.Background(), adminSession, input)
}

func teamsOf(m models.Match) (int, int) {
	var a, b int
	if m.Team1RegistrationID != nil {
		a = *m.Team1RegistrationID
	}
	if m.Team2RegistrationID != nil {
		b = *m.Team2RegistrationID
	}
	return a, b
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected error of kind %v, got %v", kind, err)
	}
}
