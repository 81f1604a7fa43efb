package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Dosada05/padel-club/brackets"
	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/repositories"
)

type AdvancementOutcome string

const (
	OutcomeAdvanced            AdvancementOutcome = "advanced"
	OutcomeNotReady            AdvancementOutcome = "not_ready"
	OutcomeAlreadyAdvanced     AdvancementOutcome = "already_advanced"
	OutcomeTournamentCompleted AdvancementOutcome = "tournament_completed"
	// Финал одного дивизиона сыгран, другие дивизионы ещё продолжаются.
	OutcomeDivisionCompleted AdvancementOutcome = "division_completed"
)

// AdvanceRoundInput names the round to advance. Modality and Category are
// only needed when the same round name exists in several divisions.
type AdvanceRoundInput struct {
	TournamentID int    `json:"tournament_id"`
	RoundName    string `json:"round_name"`
	Modality     string `json:"modality,omitempty"`
	Category     string `json:"category,omitempty"`
}

type AdvancementResult struct {
	Outcome              AdvancementOutcome      `json:"outcome"`
	TournamentID         int                     `json:"tournament_id"`
	RoundID              int                     `json:"round_id"`
	RoundName            string                  `json:"round_name"`
	IncompleteMatches    int                     `json:"incomplete_matches,omitempty"`
	NextRoundID          *int                    `json:"next_round_id,omitempty"`
	NextRoundName        string                  `json:"next_round_name,omitempty"`
	MatchesCreated       int                     `json:"matches_created"`
	ByesAwarded          int                     `json:"byes_awarded,omitempty"`
	WinnerRegistrationID *int                    `json:"winner_registration_id,omitempty"`
	TournamentStatus     models.TournamentStatus `json:"tournament_status"`
}

// errNextRoundRaced aborts the transaction when a concurrent call created the
// next round first.
var errNextRoundRaced = errors.New("next round created concurrently")

// AdvanceRound moves the winners of a fully played round into the next one.
// The whole read-check-write sequence runs under the tournament row lock.
func (s *tournamentService) AdvanceRound(ctx context.Context, session models.Session, input AdvanceRoundInput) (*AdvancementResult, error) {
	input.RoundName = strings.TrimSpace(input.RoundName)
	if input.RoundName == "" {
		return nil, validationError("round name is required")
	}

	var result *AdvancementResult
	var current models.Round
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		t, err := tx.Tournaments().GetByIDForUpdate(ctx, input.TournamentID)
		if err != nil {
			return err
		}
		if err := authorizeClub(session, t.ClubID); err != nil {
			return err
		}
		if t.Status == models.TournamentDraft {
			return ErrTournamentNotActive
		}

		round, err := findRound(ctx, tx, input)
		if err != nil {
			return err
		}
		current = *round

		matches, err := tx.Matches().ListByRound(ctx, round.ID)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return ErrRoundHasNoMatches
		}

		result = &AdvancementResult{
			TournamentID:     t.ID,
			RoundID:          round.ID,
			RoundName:        round.Name,
			TournamentStatus: t.Status,
		}

		incomplete := 0
		for _, m := range matches {
			if !m.Resolved() {
				incomplete++
			}
		}
		if incomplete > 0 {
			result.Outcome = OutcomeNotReady
			result.IncompleteMatches = incomplete
			return nil
		}

		if t.Status == models.TournamentCompleted {
			result.Outcome = OutcomeAlreadyAdvanced
			result.WinnerRegistrationID = t.WinnerRegistrationID
			return nil
		}
		if round.WinnerRegistrationID != nil {
			result.Outcome = OutcomeAlreadyAdvanced
			result.WinnerRegistrationID = round.WinnerRegistrationID
			return nil
		}

		if t.Format == models.FormatRoundRobin {
			standings := brackets.ComputeStandings(matches)
			if len(standings) == 0 {
				return ErrRoundHasNoMatches
			}
			return s.finishDivision(ctx, tx, t, *round, standings[0].RegistrationID, result)
		}

		next, err := tx.Rounds().GetByStage(ctx, t.ID, round.Division(), round.Stage+1)
		switch {
		case err == nil:
			nextMatches, err := tx.Matches().ListByRound(ctx, next.ID)
			if err != nil {
				return err
			}
			if len(nextMatches) > 0 {
				result.Outcome = OutcomeAlreadyAdvanced
				result.NextRoundID = intPtr(next.ID)
				result.NextRoundName = next.Name
				return nil
			}
		case !errors.Is(err, repositories.ErrRoundNotFound):
			return err
		default:
			next = nil
		}

		winners := make([]int, 0, len(matches))
		for _, m := range matches {
			id, ok := m.WinnerRegistrationID()
			if !ok {
				return newError(ErrInvalidState, "completed match has no winner")
			}
			winners = append(winners, id)
		}

		if len(winners) == 1 {
			return s.finishDivision(ctx, tx, t, *round, winners[0], result)
		}

		slots, err := brackets.PairWinners(winners, t.AllowByes)
		if err != nil {
			if errors.Is(err, brackets.ErrOddPairing) {
				return ErrOddPairing
			}
			return err
		}

		if next == nil {
			next = &models.Round{
				TournamentID: t.ID,
				Name:         brackets.RoundName(len(slots)),
				Stage:        round.Stage + 1,
				Modality:     round.Modality,
				Category:     round.Category,
			}
			if err := tx.Rounds().Create(ctx, next); err != nil {
				if isRoundConflict(err) {
					return errNextRoundRaced
				}
				return err
			}
		}

		created, byes, err := createRoundMatches(ctx, tx, t.ID, next.ID, slots)
		if err != nil {
			return err
		}

		result.Outcome = OutcomeAdvanced
		result.NextRoundID = intPtr(next.ID)
		result.NextRoundName = next.Name
		result.MatchesCreated = len(created)
		result.ByesAwarded = byes
		return nil
	})
	if errors.Is(err, errNextRoundRaced) {
		return s.reportRacedAdvance(ctx, current, input.TournamentID)
	}
	if err != nil {
		return nil, mapRepositoryError("advance round", err)
	}

	s.announceAdvancement(ctx, result)
	return result, nil
}

// findRound resolves the round by name, narrowed to a division when given.
func findRound(ctx context.Context, tx repositories.Store, input AdvanceRoundInput) (*models.Round, error) {
	rounds, err := tx.Rounds().ListByName(ctx, input.TournamentID, input.RoundName)
	if err != nil {
		return nil, err
	}

	filterByDivision := input.Modality != "" || input.Category != ""
	candidates := rounds[:0:0]
	for _, r := range rounds {
		if filterByDivision && (r.Modality != input.Modality || r.Category != input.Category) {
			continue
		}
		candidates = append(candidates, r)
	}

	switch len(candidates) {
	case 0:
		return nil, ErrRoundNotFound
	case 1:
		return &candidates[0], nil
	default:
		return nil, ErrAmbiguousRound
	}
}

// finishDivision records the winner of a division. The tournament completes
// once every division has been decided.
func (s *tournamentService) finishDivision(ctx context.Context, tx repositories.Store, t *models.Tournament, round models.Round, winner int, result *AdvancementResult) error {
	if err := tx.Rounds().SetWinner(ctx, round.ID, winner); err != nil {
		if errors.Is(err, repositories.ErrRoundDecided) {
			result.Outcome = OutcomeAlreadyAdvanced
			return nil
		}
		return err
	}
	result.WinnerRegistrationID = intPtr(winner)

	finished, divisions, err := divisionsFinished(ctx, tx, t)
	if err != nil {
		return err
	}
	if !finished {
		result.Outcome = OutcomeDivisionCompleted
		s.logger.InfoContext(ctx, "Division completed",
			slog.Int("tournament_id", t.ID),
			slog.String("modality", round.Modality),
			slog.String("category", round.Category),
			slog.Int("winner_registration_id", winner),
		)
		return nil
	}

	var tournamentWinner *int
	if divisions == 1 {
		tournamentWinner = intPtr(winner)
	}
	if err := tx.Tournaments().Complete(ctx, t.ID, tournamentWinner); err != nil {
		return err
	}

	result.Outcome = OutcomeTournamentCompleted
	result.TournamentStatus = models.TournamentCompleted
	s.logger.InfoContext(ctx, "Tournament completed",
		slog.Int("tournament_id", t.ID),
		slog.String("final_round", round.Name),
		slog.Int("winner_registration_id", winner),
	)
	return nil
}

// divisionsFinished reports whether every division is decided. A division
// counts once it has a round or enough confirmed pairs for a bracket, so a
// division whose bracket was never generated keeps the tournament open.
func divisionsFinished(ctx context.Context, tx repositories.Store, t *models.Tournament) (bool, int, error) {
	rounds, err := tx.Rounds().ListByTournament(ctx, t.ID)
	if err != nil {
		return false, 0, err
	}
	regs, err := tx.Registrations().ListByTournament(ctx, t.ID, repositories.RegistrationFilter{ConfirmedOnly: true})
	if err != nil {
		return false, 0, err
	}

	decided := make(map[models.Division]bool)
	for _, r := range rounds {
		decided[r.Division()] = decided[r.Division()] || r.WinnerRegistrationID != nil
	}
	confirmed := make(map[models.Division]int)
	for _, reg := range regs {
		confirmed[reg.Division()]++
	}
	for division, n := range confirmed {
		if _, ok := decided[division]; !ok && n >= brackets.MinTeams {
			decided[division] = false
		}
	}

	for _, ok := range decided {
		if !ok {
			return false, len(decided), nil
		}
	}
	return true, len(decided), nil
}

// reportRacedAdvance describes the round created by a concurrent call.
func (s *tournamentService) reportRacedAdvance(ctx context.Context, round models.Round, tournamentID int) (*AdvancementResult, error) {
	result := &AdvancementResult{
		Outcome:      OutcomeAlreadyAdvanced,
		TournamentID: tournamentID,
		RoundID:      round.ID,
		RoundName:    round.Name,
	}
	t, err := s.store.Tournaments().GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepositoryError("advance round", err)
	}
	result.TournamentStatus = t.Status

	next, err := s.store.Rounds().GetByStage(ctx, tournamentID, round.Division(), round.Stage+1)
	if err != nil {
		return nil, mapRepositoryError("advance round", err)
	}
	result.NextRoundID = intPtr(next.ID)
	result.NextRoundName = next.Name

	s.logger.WarnContext(ctx, "Concurrent round advancement detected", slog.Int("tournament_id", tournamentID), slog.Int("round_id", round.ID))
	return result, nil
}

func (s *tournamentService) announceAdvancement(ctx context.Context, result *AdvancementResult) {
	room := brackets.TournamentRoom(result.TournamentID)
	switch result.Outcome {
	case OutcomeAdvanced:
		s.logger.InfoContext(ctx, "Round advanced",
			slog.Int("tournament_id", result.TournamentID),
			slog.String("round", result.RoundName),
			slog.String("next_round", result.NextRoundName),
			slog.Int("matches_created", result.MatchesCreated),
		)
		notify(ctx, s.notifier, s.logger, room, brackets.EventRoundAdvanced, result)
	case OutcomeTournamentCompleted, OutcomeDivisionCompleted:
		notify(ctx, s.notifier, s.logger, room, brackets.EventTournamentCompleted, result)
	}
}
