package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/repositories"
	"github.com/shopspring/decimal"
)

type RegistrationPaymentInput struct {
	Amount decimal.Decimal `json:"amount"`
}

// RecordRegistrationPayment adds a payment towards the registration fee.
// A fully paid registration is confirmed in the same transaction.
func (s *tournamentService) RecordRegistrationPayment(ctx context.Context, session models.Session, tournamentID, registrationID int, input RegistrationPaymentInput) (*models.Registration, error) {
	if !input.Amount.IsPositive() {
		return nil, validationError("payment amount must be positive")
	}
	if !input.Amount.Equal(input.Amount.Round(2)) {
		return nil, validationError("payment amount must have at most two decimal places")
	}

	var updated *models.Registration
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		t, reg, err := loadRegistration(ctx, tx, session, tournamentID, registrationID)
		if err != nil {
			return err
		}
		if t.Status == models.TournamentCompleted {
			return ErrTournamentCompleted
		}
		if reg.PaymentStatus == models.RegistrationPaid {
			return ErrRegistrationAlreadyPaid
		}

		paid := reg.PaidAmount.Add(input.Amount)
		if paid.GreaterThan(t.RegistrationFee) {
			return ErrPaymentExceedsFee
		}
		status := models.RegistrationPartial
		if paid.Equal(t.RegistrationFee) {
			status = models.RegistrationPaid
		}
		confirm := status == models.RegistrationPaid
		if err := tx.Registrations().UpdatePayment(ctx, reg.ID, paid, status, confirm); err != nil {
			return err
		}

		reg.PaidAmount = paid
		reg.PaymentStatus = status
		reg.Confirmed = reg.Confirmed || confirm
		updated = reg
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError("record registration payment", err)
	}

	s.logger.InfoContext(ctx, "Registration payment recorded",
		slog.Int("tournament_id", tournamentID),
		slog.Int("registration_id", registrationID),
		slog.String("amount", input.Amount.StringFixed(2)),
		slog.String("payment_status", string(updated.PaymentStatus)),
	)
	return updated, nil
}

// CheckInRegistration marks a confirmed pair as present at the venue.
func (s *tournamentService) CheckInRegistration(ctx context.Context, session models.Session, tournamentID, registrationID int) (*models.Registration, error) {
	var updated *models.Registration
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		_, reg, err := loadRegistration(ctx, tx, session, tournamentID, registrationID)
		if err != nil {
			return err
		}
		if !reg.Confirmed {
			return ErrRegistrationNotConfirmed
		}
		if !reg.CheckedIn {
			if err := tx.Registrations().CheckIn(ctx, reg.ID); err != nil {
				return err
			}
			reg.CheckedIn = true
		}
		updated = reg
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError("check in registration", err)
	}
	return updated, nil
}

// loadRegistration reads a registration of the tournament on behalf of its club.
func loadRegistration(ctx context.Context, tx repositories.Store, session models.Session, tournamentID, registrationID int) (*models.Tournament, *models.Registration, error) {
	t, err := tx.Tournaments().GetByID(ctx, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorizeClub(session, t.ClubID); err != nil {
		return nil, nil, err
	}
	reg, err := tx.Registrations().GetByID(ctx, registrationID)
	if err != nil {
		return nil, nil, err
	}
	if reg.TournamentID != tournamentID {
		return nil, nil, ErrRegistrationNotFound
	}
	return t, reg, nil
}
