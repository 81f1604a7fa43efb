package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/padel-club/models"
)

var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrPaymentBookingConflict = errors.New("booking already has a payment")
	ErrSplitPaymentNotFound   = errors.New("split payment not found")
)

// PaymentResult is the terminal outcome written to a payment or split payment row.
type PaymentResult struct {
	Status            models.PaymentStatus
	ProviderReference *string
	CompletedAt       *time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id int) (*models.Payment, error)
	GetByBookingID(ctx context.Context, bookingID int) (*models.Payment, error)
	UpdateStatus(ctx context.Context, id int, result PaymentResult) error
}

type SplitPaymentRepository interface {
	Create(ctx context.Context, split *models.SplitPayment) error
	GetByID(ctx context.Context, id int) (*models.SplitPayment, error)
	ListByBooking(ctx context.Context, bookingID int) ([]models.SplitPayment, error)
	UpdateStatus(ctx context.Context, id int, result PaymentResult) error
}

type postgresPaymentRepository struct {
	db SQLExecutor
}

const paymentColumns = `id, booking_id, amount, status, provider_reference, completed_at, created_at`

func (r *postgresPaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (booking_id, amount, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, p.BookingID, p.Amount, p.Status).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "payments_booking_id_key") {
			return ErrPaymentBookingConflict
		}
		if isForeignKeyViolation(err) {
			return ErrBookingNotFound
		}
		return err
	}
	return nil
}

func (r *postgresPaymentRepository) GetByID(ctx context.Context, id int) (*models.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *postgresPaymentRepository) GetByBookingID(ctx context.Context, bookingID int) (*models.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id = $1`, bookingID)
}

func (r *postgresPaymentRepository) getOne(ctx context.Context, query string, arg int) (*models.Payment, error) {
	p := &models.Payment{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.BookingID, &p.Amount, &p.Status, &p.ProviderReference, &p.CompletedAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPaymentRepository) UpdateStatus(ctx context.Context, id int, res PaymentResult) error {
	query := `UPDATE payments SET status = $1, provider_reference = COALESCE($2, provider_reference), completed_at = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, res.Status, res.ProviderReference, res.CompletedAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPaymentNotFound)
}

type postgresSplitPaymentRepository struct {
	db SQLExecutor
}

const splitPaymentColumns = `
	id, booking_id, participant_name, participant_email, amount, status,
	provider_reference, completed_at, created_at`

func scanSplitPayment(row interface{ Scan(...interface{}) error }, sp *models.SplitPayment) error {
	return row.Scan(
		&sp.ID, &sp.BookingID, &sp.ParticipantName, &sp.ParticipantEmail, &sp.Amount, &sp.Status,
		&sp.ProviderReference, &sp.CompletedAt, &sp.CreatedAt,
	)
}

func (r *postgresSplitPaymentRepository) Create(ctx context.Context, sp *models.SplitPayment) error {
	query := `
		INSERT INTO split_payments (booking_id, participant_name, participant_email, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		sp.BookingID, sp.ParticipantName, sp.ParticipantEmail, sp.Amount, sp.Status,
	).Scan(&sp.ID, &sp.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrBookingNotFound
		}
		return err
	}
	return nil
}

func (r *postgresSplitPaymentRepository) GetByID(ctx context.Context, id int) (*models.SplitPayment, error) {
	query := `SELECT ` + splitPaymentColumns + ` FROM split_payments WHERE id = $1`
	sp := &models.SplitPayment{}
	if err := scanSplitPayment(r.db.QueryRowContext(ctx, query, id), sp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSplitPaymentNotFound
		}
		return nil, err
	}
	return sp, nil
}

func (r *postgresSplitPaymentRepository) ListByBooking(ctx context.Context, bookingID int) ([]models.SplitPayment, error) {
	query := `SELECT ` + splitPaymentColumns + ` FROM split_payments WHERE booking_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	splits := make([]models.SplitPayment, 0)
	for rows.Next() {
		var sp models.SplitPayment
		if err := scanSplitPayment(rows, &sp); err != nil {
			return nil, err
		}
		splits = append(splits, sp)
	}
	return splits, rows.Err()
}

func (r *postgresSplitPaymentRepository) UpdateStatus(ctx context.Context, id int, res PaymentResult) error {
	query := `UPDATE split_payments SET status = $1, provider_reference = COALESCE($2, provider_reference), completed_at = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, res.Status, res.ProviderReference, res.CompletedAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSplitPaymentNotFound)
}
