package repositories

import (
	"context"
	"errors"

	"github.com/Dosada05/padel-club/models"
	"github.com/shopspring/decimal"
)

var (
	ErrPayoutNotFound        = errors.New("payout not found")
	ErrPayoutBookingConflict = errors.New("payout already accrued for booking")
	// ErrPayoutStale is returned when the owed or transferred amount changed since it was read.
	ErrPayoutStale = errors.New("payout was modified concurrently")
)

type PayoutRepository interface {
	Create(ctx context.Context, payout *models.ClubPayout) error
	ListPendingByClub(ctx context.Context, clubID int) ([]models.ClubPayout, error)
	// MarkTransferred sets amount_transferred to amount_owed only if both amounts
	// still equal the ones the caller read.
	MarkTransferred(ctx context.Context, id int, previousOwed, previousTransferred decimal.Decimal, reference string) error
}

type postgresPayoutRepository struct {
	db SQLExecutor
}

func (r *postgresPayoutRepository) Create(ctx context.Context, p *models.ClubPayout) error {
	query := `
		INSERT INTO club_payouts (club_id, booking_id, amount_owed, amount_transferred)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		p.ClubID, p.BookingID, p.AmountOwed, p.AmountTransferred,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "club_payouts_booking_id_key") {
			return ErrPayoutBookingConflict
		}
		if isForeignKeyViolation(err) {
			return ErrClubNotFound
		}
		return err
	}
	return nil
}

func (r *postgresPayoutRepository) ListPendingByClub(ctx context.Context, clubID int) ([]models.ClubPayout, error) {
	query := `
		SELECT id, club_id, booking_id, amount_owed, amount_transferred, transfer_reference, created_at, updated_at
		FROM club_payouts
		WHERE club_id = $1 AND amount_owed > amount_transferred
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := make([]models.ClubPayout, 0)
	for rows.Next() {
		var p models.ClubPayout
		if err := rows.Scan(
			&p.ID, &p.ClubID, &p.BookingID, &p.AmountOwed, &p.AmountTransferred,
			&p.TransferReference, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

func (r *postgresPayoutRepository) MarkTransferred(ctx context.Context, id int, previousOwed, previousTransferred decimal.Decimal, reference string) error {
	query := `
		UPDATE club_payouts
		SET amount_transferred = amount_owed, transfer_reference = $1, updated_at = NOW()
		WHERE id = $2 AND amount_owed = $3 AND amount_transferred = $4`
	result, err := r.db.ExecContext(ctx, query, reference, id, previousOwed, previousTransferred)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPayoutStale)
}
