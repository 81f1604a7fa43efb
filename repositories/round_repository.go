package repositories

import (
	"context"
	"errors"

	"github.com/Dosada05/padel-club/models"
)

var (
	ErrRoundNotFound = errors.New("round not found")
	// ErrRoundConflict means a round with the same stage or name already exists in the division.
	ErrRoundConflict = errors.New("round already exists for this stage")
	// ErrRoundDecided is returned when the round already has a division winner.
	ErrRoundDecided = errors.New("round already decided")
)

type RoundRepository interface {
	Create(ctx context.Context, round *models.Round) error
	ListByName(ctx context.Context, tournamentID int, name string) ([]models.Round, error)
	GetByStage(ctx context.Context, tournamentID int, division models.Division, stage int) (*models.Round, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Round, error)
	// SetWinner marks the round as the one that decided its division.
	SetWinner(ctx context.Context, id, registrationID int) error
}

type postgresRoundRepository struct {
	db SQLExecutor
}

func (r *postgresRoundRepository) Create(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds (tournament_id, name, stage, modality, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		round.TournamentID, round.Name, round.Stage, round.Modality, round.Category,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "rounds_division_stage_key") || isUniqueViolation(err, "rounds_division_name_key") {
			return ErrRoundConflict
		}
		if isForeignKeyViolation(err) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

func (r *postgresRoundRepository) ListByName(ctx context.Context, tournamentID int, name string) ([]models.Round, error) {
	query := `
		SELECT id, tournament_id, name, stage, modality, category, winner_registration_id, created_at
		FROM rounds
		WHERE tournament_id = $1 AND name = $2
		ORDER BY modality, category`
	return r.list(ctx, query, tournamentID, name)
}

func (r *postgresRoundRepository) GetByStage(ctx context.Context, tournamentID int, division models.Division, stage int) (*models.Round, error) {
	query := `
		SELECT id, tournament_id, name, stage, modality, category, winner_registration_id, created_at
		FROM rounds
		WHERE tournament_id = $1 AND modality = $2 AND category = $3 AND stage = $4`
	rounds, err := r.list(ctx, query, tournamentID, division.Modality, division.Category, stage)
	if err != nil {
		return nil, err
	}
	if len(rounds) == 0 {
		return nil, ErrRoundNotFound
	}
	return &rounds[0], nil
}

func (r *postgresRoundRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Round, error) {
	query := `
		SELECT id, tournament_id, name, stage, modality, category, winner_registration_id, created_at
		FROM rounds
		WHERE tournament_id = $1
		ORDER BY modality, category, stage`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresRoundRepository) SetWinner(ctx context.Context, id, registrationID int) error {
	query := `
		UPDATE rounds
		SET winner_registration_id = $1
		WHERE id = $2 AND winner_registration_id IS NULL`
	result, err := r.db.ExecContext(ctx, query, registrationID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundDecided)
}

func (r *postgresRoundRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Round, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var rd models.Round
		if err := rows.Scan(&rd.ID, &rd.TournamentID, &rd.Name, &rd.Stage, &rd.Modality, &rd.Category, &rd.WinnerRegistrationID, &rd.CreatedAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, rd)
	}
	return rounds, rows.Err()
}
