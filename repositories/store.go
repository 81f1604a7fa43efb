package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Store groups the repositories of one unit of work. Repositories obtained from
// the store passed to WithinTx share a single transaction.
type Store interface {
	Clubs() ClubRepository
	Users() UserRepository
	Tournaments() TournamentRepository
	Rounds() RoundRepository
	Matches() MatchRepository
	Registrations() RegistrationRepository
	Bookings() BookingRepository
	Payments() PaymentRepository
	SplitPayments() SplitPaymentRepository
	Payouts() PayoutRepository

	// WithinTx runs fn in a transaction. The transaction commits when fn returns
	// nil and rolls back otherwise. Nested calls reuse the outer transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type postgresStore struct {
	db     *sql.DB
	exec   SQLExecutor
	inTx   bool
	logger *slog.Logger
}

func NewPostgresStore(db *sql.DB, logger *slog.Logger) Store {
	return &postgresStore{db: db, exec: db, logger: logger}
}

func (s *postgresStore) Clubs() ClubRepository { return &postgresClubRepository{db: s.exec} }
func (s *postgresStore) Users() UserRepository { return &postgresUserRepository{db: s.exec} }
func (s *postgresStore) Tournaments() TournamentRepository {
	return &postgresTournamentRepository{db: s.exec}
}
func (s *postgresStore) Rounds() RoundRepository  { return &postgresRoundRepository{db: s.exec} }
func (s *postgresStore) Matches() MatchRepository { return &postgresMatchRepository{db: s.exec} }
func (s *postgresStore) Registrations() RegistrationRepository {
	return &postgresRegistrationRepository{db: s.exec}
}
func (s *postgresStore) Bookings() BookingRepository { return &postgresBookingRepository{db: s.exec} }
func (s *postgresStore) Payments() PaymentRepository { return &postgresPaymentRepository{db: s.exec} }
func (s *postgresStore) SplitPayments() SplitPaymentRepository {
	return &postgresSplitPaymentRepository{db: s.exec}
}
func (s *postgresStore) Payouts() PayoutRepository { return &postgresPayoutRepository{db: s.exec} }

func (s *postgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) (txErr error) {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.ErrorContext(ctx, "Error during rollback", slog.Any("error", rbErr), slog.Any("original_error", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	txErr = fn(&postgresStore{db: s.db, exec: tx, inTx: true, logger: s.logger})
	return txErr
}
