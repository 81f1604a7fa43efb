package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/padel-club/repositories"
)

// Виды ошибок. Конкретные ошибки ниже оборачивают один из них, чтобы
// обработчики могли выбрать HTTP-статус через errors.Is.
var (
	ErrNotFound             = errors.New("requested resource not found")
	ErrInvalidState         = errors.New("operation not allowed in the current state")
	ErrPreconditionFailed   = errors.New("precondition failed")
	ErrForbidden            = errors.New("operation not allowed for the current user")
	ErrValidation           = errors.New("validation failed")
	ErrConflict             = errors.New("resource already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnavailable          = errors.New("service temporarily unavailable")
)

var errorKinds = []error{
	ErrNotFound, ErrInvalidState, ErrPreconditionFailed, ErrForbidden,
	ErrValidation, ErrConflict, ErrAuthenticationFailed, ErrUnavailable,
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrClubNotFound         = newError(ErrNotFound, "club not found")
	ErrUserNotFound         = newError(ErrNotFound, "user not found")
	ErrTournamentNotFound   = newError(ErrNotFound, "tournament not found")
	ErrRoundNotFound        = newError(ErrNotFound, "round not found")
	ErrMatchNotFound        = newError(ErrNotFound, "match not found")
	ErrRegistrationNotFound = newError(ErrNotFound, "registration not found")
	ErrBookingNotFound      = newError(ErrNotFound, "booking not found")
	ErrPaymentNotFound      = newError(ErrNotFound, "payment not found")
	ErrSplitPaymentNotFound = newError(ErrNotFound, "split payment not found")

	ErrRoundHasNoMatches         = newError(ErrInvalidState, "round has no matches")
	ErrTournamentNotActive       = newError(ErrInvalidState, "tournament is not active")
	ErrTournamentCompleted       = newError(ErrInvalidState, "tournament is already completed")
	ErrInvalidStatusTransition   = newError(ErrInvalidState, "invalid tournament status transition")
	ErrOddPairing                = newError(ErrInvalidState, "odd number of winners and the tournament does not allow byes")
	ErrBracketAlreadyGenerated   = newError(ErrInvalidState, "bracket already generated for this division")
	ErrNotEnoughTeams            = newError(ErrInvalidState, "not enough confirmed teams to generate a bracket")
	ErrByesNotAllowed            = newError(ErrInvalidState, "team count requires byes but the tournament does not allow them")
	ErrMatchAlreadyCompleted     = newError(ErrInvalidState, "match result already recorded")
	ErrMatchNotPlayable          = newError(ErrInvalidState, "match is a bye or cancelled")
	ErrPaymentAlreadySettled     = newError(ErrInvalidState, "payment is already in a terminal state")
	ErrBookingNotSplit           = newError(ErrInvalidState, "booking does not use split payments")
	ErrPayoutAlreadyAccrued      = newError(ErrInvalidState, "payout already accrued for booking")
	ErrRegistrationAlreadyPaid   = newError(ErrInvalidState, "registration fee is already paid")
	ErrRegistrationNotConfirmed  = newError(ErrInvalidState, "registration is not confirmed")
	ErrRegistrationUnpaid        = newError(ErrPreconditionFailed, "registration fee has not been paid in full")
	ErrClubNotOnboarded          = newError(ErrPreconditionFailed, "club has not completed payment provider onboarding")
	ErrClubPaymentAccountMissing = newError(ErrPreconditionFailed, "club has no payment provider account")
	ErrSplitAmountsMismatch      = newError(ErrValidation, "split amounts must sum to the booking total")
	ErrPaymentExceedsFee         = newError(ErrValidation, "payment exceeds the outstanding registration fee")
	ErrInvalidOutcome            = newError(ErrValidation, "outcome must be COMPLETED or FAILED")
	ErrAmbiguousRound            = newError(ErrValidation, "round name exists in several divisions; specify modality and category")
	ErrInvalidCredentials        = newError(ErrAuthenticationFailed, "invalid email or password")
	ErrUserEmailConflict         = newError(ErrConflict, "email address is already in use")
	ErrTournamentNameConflict    = newError(ErrConflict, "tournament name already exists")
	ErrClubNameConflict          = newError(ErrConflict, "club name already exists")
)

// validationError reports a bad input field as an ErrValidation.
func validationError(format string, args ...interface{}) error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

// unavailable wraps an infrastructure failure.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// mapRepositoryError translates repository sentinels into service errors.
// Errors that already carry a kind pass through unchanged.
func mapRepositoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return err
		}
	}
	switch {
	case errors.Is(err, repositories.ErrClubNotFound):
		return ErrClubNotFound
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrRoundNotFound):
		return ErrRoundNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrBookingNotFound):
		return ErrBookingNotFound
	case errors.Is(err, repositories.ErrPaymentNotFound):
		return ErrPaymentNotFound
	case errors.Is(err, repositories.ErrSplitPaymentNotFound):
		return ErrSplitPaymentNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrUserEmailConflict
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrClubNameConflict):
		return ErrClubNameConflict
	case errors.Is(err, repositories.ErrTournamentInvalidClub),
		errors.Is(err, repositories.ErrBookingInvalidClub),
		errors.Is(err, repositories.ErrUserClubInvalid):
		return ErrClubNotFound
	case errors.Is(err, repositories.ErrPayoutBookingConflict):
		return ErrPayoutAlreadyAccrued
	default:
		return unavailable(op, err)
	}
}
