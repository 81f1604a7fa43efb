package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Dosada05/padel-club/brackets"
	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/repositories"
	"golang.org/x/sync/errgroup"
)

// BracketView is the full bracket of a tournament: every round with its
// matches, plus the group table for round-robin tournaments.
type BracketView struct {
	Tournament    *models.Tournament          `json:"tournament"`
	Rounds        []models.Round              `json:"rounds"`
	Registrations []models.Registration       `json:"registrations"`
	Standings     []models.TournamentStanding `json:"standings,omitempty"`
}

type MatchResultInput struct {
	WinnerSide int     `json:"winner_side"`
	Score      *string `json:"score,omitempty"`
}

func (s *tournamentService) GenerateBracket(ctx context.Context, session models.Session, tournamentID int, division models.Division) (*BracketView, error) {
	division.Modality = strings.TrimSpace(division.Modality)
	division.Category = strings.TrimSpace(division.Category)

	var roundName string
	var created int
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		t, err := tx.Tournaments().GetByIDForUpdate(ctx, tournamentID)
		if err != nil {
			return err
		}
		if err := authorizeClub(session, t.ClubID); err != nil {
			return err
		}
		if t.Status == models.TournamentCompleted {
			return ErrTournamentCompleted
		}

		if _, err := tx.Rounds().GetByStage(ctx, t.ID, division, 1); err == nil {
			return ErrBracketAlreadyGenerated
		} else if !errors.Is(err, repositories.ErrRoundNotFound) {
			return err
		}

		regs, err := tx.Registrations().ListByTournament(ctx, t.ID, repositories.RegistrationFilter{
			Division:      &division,
			ConfirmedOnly: true,
		})
		if err != nil {
			return err
		}

		generator, err := brackets.NewGenerator(t.Format)
		if err != nil {
			return validationError("%v", err)
		}
		first, err := generator.GenerateFirstRound(ctx, brackets.GenerateBracketParams{
			Registrations: regs,
			AllowByes:     t.AllowByes,
		})
		switch {
		case errors.Is(err, brackets.ErrNotEnoughTeams):
			return ErrNotEnoughTeams
		case errors.Is(err, brackets.ErrByesNotAllowed):
			return ErrByesNotAllowed
		case err != nil:
			return err
		}

		round := &models.Round{
			TournamentID: t.ID,
			Name:         first.Name,
			Stage:        1,
			Modality:     division.Modality,
			Category:     division.Category,
		}
		if err := tx.Rounds().Create(ctx, round); err != nil {
			if isRoundConflict(err) {
				return ErrBracketAlreadyGenerated
			}
			return err
		}

		matches, _, err := createRoundMatches(ctx, tx, t.ID, round.ID, first.Slots)
		if err != nil {
			return err
		}

		if t.Status == models.TournamentDraft {
			if err := tx.Tournaments().UpdateStatus(ctx, t.ID, models.TournamentActive); err != nil {
				return err
			}
		}

		roundName = round.Name
		created = len(matches)
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError("generate bracket", err)
	}

	s.logger.InfoContext(ctx, "Bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("modality", division.Modality),
		slog.String("category", division.Category),
		slog.String("round", roundName),
		slog.Int("matches_created", created),
	)
	return s.GetBracket(ctx, tournamentID)
}

// createRoundMatches persists one match per slot. Bye slots are stored as
// completed matches won by side 1.
func createRoundMatches(ctx context.Context, tx repositories.Store, tournamentID, roundID int, slots []brackets.Slot) ([]models.Match, int, error) {
	matches := make([]models.Match, 0, len(slots))
	byes := 0
	for _, slot := range slots {
		m := models.Match{
			TournamentID:        tournamentID,
			RoundID:             roundID,
			Position:            slot.Position,
			Team1RegistrationID: slot.Team1RegistrationID,
			Team2RegistrationID: slot.Team2RegistrationID,
			IsBye:               slot.IsBye,
			Status:              models.MatchScheduled,
		}
		if slot.IsBye {
			m.Status = models.MatchCompleted
			m.WinnerSide = intPtr(1)
			byes++
		}
		if err := tx.Matches().Create(ctx, &m); err != nil {
			return nil, 0, err
		}
		matches = append(matches, m)
	}
	return matches, byes, nil
}

func (s *tournamentService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	view := &BracketView{}
	var matches []models.Match

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.store.Tournaments().GetByID(gCtx, tournamentID)
		if err != nil {
			return err
		}
		view.Tournament = t
		return nil
	})

	g.Go(func() error {
		rounds, err := s.store.Rounds().ListByTournament(gCtx, tournamentID)
		if err != nil {
			return err
		}
		view.Rounds = rounds
		return nil
	})

	g.Go(func() error {
		list, err := s.store.Matches().ListByTournament(gCtx, tournamentID)
		if err != nil {
			return err
		}
		matches = list
		return nil
	})

	g.Go(func() error {
		regs, err := s.store.Registrations().ListByTournament(gCtx, tournamentID, repositories.RegistrationFilter{})
		if err != nil {
			return err
		}
		view.Registrations = regs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, mapRepositoryError("get bracket", err)
	}

	byRound := make(map[int][]models.Match, len(view.Rounds))
	for _, m := range matches {
		byRound[m.RoundID] = append(byRound[m.RoundID], m)
	}
	for i := range view.Rounds {
		view.Rounds[i].Matches = byRound[view.Rounds[i].ID]
	}

	if view.Tournament.Format == models.FormatRoundRobin {
		view.Standings = brackets.ComputeStandings(matches)
	}
	return view, nil
}

func (s *tournamentService) RecordMatchResult(ctx context.Context, session models.Session, matchID int, input MatchResultInput) (*models.Match, error) {
	if input.WinnerSide != 1 && input.WinnerSide != 2 {
		return nil, validationError("winner_side must be 1 or 2")
	}
	if input.Score != nil {
		score := strings.TrimSpace(*input.Score)
		input.Score = &score
	}

	var updated *models.Match
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		m, err := tx.Matches().GetByID(ctx, matchID)
		if err != nil {
			return err
		}
		// Турнир блокируется раньше матча, как и в AdvanceRound.
		t, err := tx.Tournaments().GetByIDForUpdate(ctx, m.TournamentID)
		if err != nil {
			return err
		}
		if err := authorizeClub(session, t.ClubID); err != nil {
			return err
		}
		switch t.Status {
		case models.TournamentDraft:
			return ErrTournamentNotActive
		case models.TournamentCompleted:
			return ErrTournamentCompleted
		}

		m, err = tx.Matches().GetByIDForUpdate(ctx, matchID)
		if err != nil {
			return err
		}
		if m.IsBye || m.Status == models.MatchCancelled {
			return ErrMatchNotPlayable
		}
		if m.Status == models.MatchCompleted {
			return ErrMatchAlreadyCompleted
		}
		if m.Team1RegistrationID == nil || m.Team2RegistrationID == nil {
			return ErrMatchNotPlayable
		}

		if err := tx.Matches().UpdateResult(ctx, m.ID, input.WinnerSide, input.Score); err != nil {
			return err
		}
		m.Status = models.MatchCompleted
		m.WinnerSide = intPtr(input.WinnerSide)
		m.Score = input.Score
		updated = m
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError("record match result", err)
	}

	s.logger.InfoContext(ctx, "Match result recorded",
		slog.Int("match_id", updated.ID),
		slog.Int("tournament_id", updated.TournamentID),
		slog.Int("winner_side", input.WinnerSide),
	)
	notify(ctx, s.notifier, s.logger, brackets.TournamentRoom(updated.TournamentID), brackets.EventMatchUpdated, updated)
	return updated, nil
}
