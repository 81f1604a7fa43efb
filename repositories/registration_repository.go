package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/padel-club/models"
	"github.com/shopspring/decimal"
)

var ErrRegistrationNotFound = errors.New("registration not found")

type RegistrationFilter struct {
	Division      *models.Division
	ConfirmedOnly bool
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	ListByTournament(ctx context.Context, tournamentID int, filter RegistrationFilter) ([]models.Registration, error)
	Confirm(ctx context.Context, id int) error
	// UpdatePayment stores the paid amount and status. confirmed only ever
	// turns the flag on.
	UpdatePayment(ctx context.Context, id int, paidAmount decimal.Decimal, status models.RegistrationPaymentStatus, confirmed bool) error
	CheckIn(ctx context.Context, id int) error
}

type postgresRegistrationRepository struct {
	db SQLExecutor
}

const registrationColumns = `
	id, tournament_id, player1_name, player1_contact, player2_name, player2_contact,
	modality, category, payment_status, paid_amount, confirmed, checked_in, created_at`

func scanRegistration(row interface{ Scan(...interface{}) error }, reg *models.Registration) error {
	return row.Scan(
		&reg.ID, &reg.TournamentID, &reg.Player1Name, &reg.Player1Contact, &reg.Player2Name, &reg.Player2Contact,
		&reg.Modality, &reg.Category, &reg.PaymentStatus, &reg.PaidAmount, &reg.Confirmed, &reg.CheckedIn, &reg.CreatedAt,
	)
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (
			tournament_id, player1_name, player1_contact, player2_name, player2_contact,
			modality, category, payment_status, paid_amount, confirmed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.TournamentID, reg.Player1Name, reg.Player1Contact, reg.Player2Name, reg.Player2Contact,
		reg.Modality, reg.Category, reg.PaymentStatus, reg.PaidAmount, reg.Confirmed,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	reg := &models.Registration{}
	if err := scanRegistration(r.db.QueryRowContext(ctx, query, id), reg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int, filter RegistrationFilter) ([]models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if filter.Division != nil {
		query += " AND modality = $2 AND category = $3"
		args = append(args, filter.Division.Modality, filter.Division.Category)
	}
	if filter.ConfirmedOnly {
		query += " AND confirmed = TRUE"
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *postgresRegistrationRepository) Confirm(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE registrations SET confirmed = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) UpdatePayment(ctx context.Context, id int, paidAmount decimal.Decimal, status models.RegistrationPaymentStatus, confirmed bool) error {
	query := `
		UPDATE registrations
		SET paid_amount = $1, payment_status = $2, confirmed = confirmed OR $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, paidAmount, status, confirmed, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) CheckIn(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE registrations SET checked_in = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
