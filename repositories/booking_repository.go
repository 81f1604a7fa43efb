package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/padel-club/models"
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrBookingInvalidClub = errors.New("invalid club reference")
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int) (*models.Booking, error)
	// GetByIDForUpdate locks the booking row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int) (*models.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id int, status models.BookingPaymentStatus) error
}

type postgresBookingRepository struct {
	db SQLExecutor
}

const bookingColumns = `
	id, club_id, court_id, booking_date, start_time, end_time, total_price,
	payment_status, split_payment_enabled, split_count, created_at, updated_at`

func (r *postgresBookingRepository) Create(ctx context.Context, b *models.Booking) error {
	query := `
		INSERT INTO bookings (
			club_id, court_id, booking_date, start_time, end_time, total_price,
			payment_status, split_payment_enabled, split_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		b.ClubID, b.CourtID, b.BookingDate, b.StartTime, b.EndTime, b.TotalPrice,
		b.PaymentStatus, b.SplitPaymentEnabled, b.SplitCount,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrBookingInvalidClub
		}
		return err
	}
	return nil
}

func (r *postgresBookingRepository) GetByID(ctx context.Context, id int) (*models.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *postgresBookingRepository) GetByIDForUpdate(ctx context.Context, id int) (*models.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresBookingRepository) getOne(ctx context.Context, query string, id int) (*models.Booking, error) {
	b := &models.Booking{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.ClubID, &b.CourtID, &b.BookingDate, &b.StartTime, &b.EndTime, &b.TotalPrice,
		&b.PaymentStatus, &b.SplitPaymentEnabled, &b.SplitCount, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *postgresBookingRepository) UpdatePaymentStatus(ctx context.Context, id int, status models.BookingPaymentStatus) error {
	query := `UPDATE bookings SET payment_status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBookingNotFound)
}
