package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/padel-club/models"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchPositionTaken   = errors.New("match position already taken in round")
	ErrMatchInvalidRegistry = errors.New("match references an unknown registration")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, id int) (*models.Match, error)
	ListByRound(ctx context.Context, roundID int) ([]models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error)
	UpdateResult(ctx context.Context, id int, winnerSide int, score *string) error
}

type postgresMatchRepository struct {
	db SQLExecutor
}

const matchColumns = `
	id, tournament_id, round_id, position, team1_registration_id, team2_registration_id,
	is_bye, scheduled_at, court_id, status, winner_side, score, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }, m *models.Match) error {
	return row.Scan(
		&m.ID, &m.TournamentID, &m.RoundID, &m.Position, &m.Team1RegistrationID, &m.Team2RegistrationID,
		&m.IsBye, &m.ScheduledAt, &m.CourtID, &m.Status, &m.WinnerSide, &m.Score, &m.CreatedAt,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (
			tournament_id, round_id, position, team1_registration_id, team2_registration_id,
			is_bye, status, winner_side
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		m.TournamentID, m.RoundID, m.Position, m.Team1RegistrationID, m.Team2RegistrationID,
		m.IsBye, m.Status, m.WinnerSide,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "matches_round_id_position_key") {
			return ErrMatchPositionTaken
		}
		if isForeignKeyViolation(err) {
			return ErrMatchInvalidRegistry
		}
		return err
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	return r.getOne(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, id int) (*models.Match, error) {
	return r.getOne(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresMatchRepository) getOne(ctx context.Context, query string, id int) (*models.Match, error) {
	m := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, roundID int) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE round_id = $1 ORDER BY position`
	return r.list(ctx, query, roundID)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY round_id, position`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, arg int) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := scanMatch(rows, &m); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, id int, winnerSide int, score *string) error {
	query := `UPDATE matches SET status = $1, winner_side = $2, score = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, models.MatchCompleted, winnerSide, score, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
