package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/padel-club/brackets"
	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/payments"
	"github.com/Dosada05/padel-club/repositories"
	"github.com/Dosada05/padel-club/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const bookingTimeLayout = "15:04"

type SettlementState string

const (
	SettlementPending             SettlementState = "pending"
	SettlementCompleted           SettlementState = "completed"
	SettlementNeedsReconciliation SettlementState = "needs_reconciliation"
)

type BookingService interface {
	CreateBooking(ctx context.Context, session models.Session, input CreateBookingInput) (*BookingDetails, error)
	MarkSplitPaymentProcessing(ctx context.Context, session models.Session, splitPaymentID int, providerReference *string) (*models.SplitPayment, error)
	RecordSplitPaymentResult(ctx context.Context, session models.Session, splitPaymentID int, input PaymentResultInput) (*SettlementResult, error)
	RecordPaymentResult(ctx context.Context, session models.Session, paymentID int, input PaymentResultInput) (*SettlementResult, error)
	GetSettlementStatus(ctx context.Context, session models.Session, bookingID int) (*SettlementStatus, error)
	HandlePaymentEvent(ctx context.Context, event payments.PaymentEvent) (*SettlementResult, error)
}

type SplitParticipantInput struct {
	Name   string           `json:"name"`
	Email  *string          `json:"email,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type CreateBookingInput struct {
	ClubID       int                     `json:"club_id"`
	CourtID      int                     `json:"court_id"`
	BookingDate  time.Time               `json:"booking_date"`
	StartTime    string                  `json:"start_time"`
	EndTime      string                  `json:"end_time"`
	TotalPrice   decimal.Decimal         `json:"total_price"`
	Participants []SplitParticipantInput `json:"participants,omitempty"`
}

type BookingDetails struct {
	Booking       *models.Booking       `json:"booking"`
	Payment       *models.Payment       `json:"payment,omitempty"`
	SplitPayments []models.SplitPayment `json:"split_payments,omitempty"`
}

type PaymentResultInput struct {
	Outcome           models.PaymentStatus `json:"outcome"`
	ProviderReference *string              `json:"provider_reference,omitempty"`
}

type SettlementResult struct {
	BookingID            int                         `json:"booking_id"`
	PaymentID            *int                        `json:"payment_id,omitempty"`
	SplitPaymentID       *int                        `json:"split_payment_id,omitempty"`
	PaymentStatus        models.PaymentStatus        `json:"payment_status"`
	BookingPaymentStatus models.BookingPaymentStatus `json:"booking_payment_status"`
	Completed            int                         `json:"completed"`
	Failed               int                         `json:"failed"`
	Pending              int                         `json:"pending"`
	Total                int                         `json:"total"`
	State                SettlementState             `json:"state"`
	NeedsReconciliation  bool                        `json:"needs_reconciliation"`
	PayoutAccrued        bool                        `json:"payout_accrued"`
}

type SettlementSummary struct {
	TotalPayments     int             `json:"total_payments"`
	SplitPayments     int             `json:"split_payments"`
	Completed         int             `json:"completed"`
	Failed            int             `json:"failed"`
	Pending           int             `json:"pending"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	AmountOutstanding decimal.Decimal `json:"amount_outstanding"`
	State             SettlementState `json:"state"`
}

type SettlementStatus struct {
	Booking       *models.Booking       `json:"booking"`
	Payment       *models.Payment       `json:"payment,omitempty"`
	SplitPayments []models.SplitPayment `json:"split_payments"`
	Summary       SettlementSummary     `json:"summary"`
}

type bookingService struct {
	store    repositories.Store
	notifier brackets.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewBookingService(store repositories.Store, notifier brackets.Notifier, logger *slog.Logger) BookingService {
	return &bookingService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, session models.Session, input CreateBookingInput) (*BookingDetails, error) {
	if err := authorizeClub(session, input.ClubID); err != nil {
		return nil, err
	}
	if err := validateBookingInput(input); err != nil {
		return nil, err
	}
	shares, err := splitShares(input.TotalPrice, input.Participants)
	if err != nil {
		return nil, err
	}

	details := &BookingDetails{}
	err = s.store.WithinTx(ctx, func(tx repositories.Store) error {
		booking := &models.Booking{
			ClubID:              input.ClubID,
			CourtID:             input.CourtID,
			BookingDate:         input.BookingDate.UTC(),
			StartTime:           input.StartTime,
			EndTime:             input.EndTime,
			TotalPrice:          input.TotalPrice,
			PaymentStatus:       models.BookingPaymentPending,
			SplitPaymentEnabled: len(shares) > 0,
			SplitCount:          len(shares),
		}
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return err
		}
		details.Booking = booking

		if len(shares) == 0 {
			payment := &models.Payment{
				BookingID: booking.ID,
				Amount:    booking.TotalPrice,
				Status:    models.PaymentPending,
			}
			if err := tx.Payments().Create(ctx, payment); err != nil {
				return err
			}
			details.Payment = payment
			return nil
		}

		details.SplitPayments = make([]models.SplitPayment, 0, len(shares))
		for i, p := range input.Participants {
			split := &models.SplitPayment{
				BookingID:        booking.ID,
				ParticipantName:  strings.TrimSpace(p.Name),
				ParticipantEmail: p.Email,
				Amount:           shares[i],
				Status:           models.PaymentPending,
			}
			if err := tx.SplitPayments().Create(ctx, split); err != nil {
				return err
			}
			details.SplitPayments = append(details.SplitPayments, *split)
		}
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError("create booking", err)
	}

	s.logger.InfoContext(ctx, "Booking created",
		slog.Int("booking_id", details.Booking.ID),
		slog.Int("club_id", details.Booking.ClubID),
		slog.Int("split_count", details.Booking.SplitCount),
	)
	return details, nil
}

func validateBookingInput(input CreateBookingInput) error {
	if input.CourtID <= 0 {
		return validationError("court_id is required")
	}
	if input.BookingDate.IsZero() {
		return validationError("booking_date is required")
	}
	start, err := time.Parse(bookingTimeLayout, input.StartTime)
	if err != nil {
		return validationError("start_time must be HH:MM")
	}
	end, err := time.Parse(bookingTimeLayout, input.EndTime)
	if err != nil {
		return validationError("end_time must be HH:MM")
	}
	if !end.After(start) {
		return validationError("end_time must be after start_time")
	}
	if !input.TotalPrice.IsPositive() {
		return validationError("total_price must be positive")
	}
	if !input.TotalPrice.Equal(input.TotalPrice.Round(2)) {
		return validationError("total_price must have at most two decimal places")
	}
	return nil
}

// splitShares returns one amount per participant. Amounts are either all given
// and must sum to the total, or all omitted and divided equally with the
// remainder cents on the first share.
func splitShares(total decimal.Decimal, participants []SplitParticipantInput) ([]decimal.Decimal, error) {
	if len(participants) == 0 {
		return nil, nil
	}
	if len(participants) < 2 {
		return nil, validationError("split payment needs at least two participants")
	}

	explicit := 0
	for _, p := range participants {
		if strings.TrimSpace(p.Name) == "" {
			return nil, validationError("participant name is required")
		}
		if p.Email != nil && !utils.IsValidEmail(utils.NormalizeEmail(*p.Email)) {
			return nil, validationError("participant email %q is invalid", *p.Email)
		}
		if p.Amount != nil {
			if !p.Amount.IsPositive() {
				return nil, validationError("participant amount must be positive")
			}
			explicit++
		}
	}

	shares := make([]decimal.Decimal, len(participants))
	switch explicit {
	case len(participants):
		sum := decimal.Zero
		for i, p := range participants {
			shares[i] = *p.Amount
			sum = sum.Add(*p.Amount)
		}
		if !sum.Equal(total) {
			return nil, ErrSplitAmountsMismatch
		}
	case 0:
		n := decimal.NewFromInt(int64(len(participants)))
		share := total.Div(n).Truncate(2)
		remainder := total.Sub(share.Mul(n))
		for i := range shares {
			shares[i] = share
		}
		shares[0] = shares[0].Add(remainder)
	default:
		return nil, validationError("either every participant has an amount or none has")
	}
	return shares, nil
}

func (s *bookingService) MarkSplitPaymentProcessing(ctx context.Context, session models.Session, splitPaymentID int, providerReference *string) (*models.SplitPayment, error) {
	var updated *models.SplitPayment
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		split, _, err := lockSplitPayment(ctx, tx, session, splitPaymentID)
		if err != nil {
			return err
		}
		if split.Status.Terminal() {
			return ErrPaymentAlreadySettled
		}
		if err := tx.SplitPayments().UpdateStatus(ctx, split.ID, repositories.PaymentResult{
			Status:            models.PaymentProcessing,
			ProviderReference: providerReference,
		}); err != nil {
			return err
		}
		split.Status = models.PaymentProcessing
		if providerReference != nil {
			split.ProviderReference = providerReference
		}
		updated = split
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError("mark split payment processing", err)
	}
	return updated, nil
}

// lockSplitPayment locks the parent booking and re-reads the split payment
// under that lock.
func lockSplitPayment(ctx context.Context, tx repositories.Store, session models.Session, splitPaymentID int) (*models.SplitPayment, *models.Booking, error) {
	split, err := tx.SplitPayments().GetByID(ctx, splitPaymentID)
	if err != nil {
		return nil, nil, err
	}
	booking, err := tx.Bookings().GetByIDForUpdate(ctx, split.BookingID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorizeClub(session, booking.ClubID); err != nil {
		return nil, nil, err
	}
	split, err = tx.SplitPayments().GetByID(ctx, splitPaymentID)
	if err != nil {
		return nil, nil, err
	}
	return split, booking, nil
}

// RecordSplitPaymentResult stores the terminal outcome of one share and
// recomputes the booking aggregate in the same transaction.
func (s *bookingService) RecordSplitPaymentResult(ctx context.Context, session models.Session, splitPaymentID int, input PaymentResultInput) (*SettlementResult, error) {
	if !input.Outcome.ValidOutcome() {
		return nil, ErrInvalidOutcome
	}

	var result *SettlementResult
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		split, booking, err := lockSplitPayment(ctx, tx, session, splitPaymentID)
		if err != nil {
			return err
		}
		if split.Status.Terminal() {
			return ErrPaymentAlreadySettled
		}

		if err := tx.SplitPayments().UpdateStatus(ctx, split.ID, s.paymentResult(input)); err != nil {
			return err
		}

		splits, err := tx.SplitPayments().ListByBooking(ctx, booking.ID)
		if err != nil {
			return err
		}
		statuses := make([]models.PaymentStatus, len(splits))
		for i, sp := range splits {
			statuses[i] = sp.Status
		}

		result = &SettlementResult{
			BookingID:      booking.ID,
			SplitPaymentID: intPtr(split.ID),
			PaymentStatus:  input.Outcome,
		}
		return s.applySettlement(ctx, tx, booking, statuses, result)
	})
	if err != nil {
		return nil, mapRepositoryError("record split payment result", err)
	}

	s.announceSettlement(ctx, result)
	return result, nil
}

func (s *bookingService) RecordPaymentResult(ctx context.Context, session models.Session, paymentID int, input PaymentResultInput) (*SettlementResult, error) {
	if !input.Outcome.ValidOutcome() {
		return nil, ErrInvalidOutcome
	}

	var result *SettlementResult
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		payment, err := tx.Payments().GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		booking, err := tx.Bookings().GetByIDForUpdate(ctx, payment.BookingID)
		if err != nil {
			return err
		}
		if err := authorizeClub(session, booking.ClubID); err != nil {
			return err
		}
		payment, err = tx.Payments().GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.Status.Terminal() {
			return ErrPaymentAlreadySettled
		}

		if err := tx.Payments().UpdateStatus(ctx, payment.ID, s.paymentResult(input)); err != nil {
			return err
		}

		result = &SettlementResult{
			BookingID:     booking.ID,
			PaymentID:     intPtr(payment.ID),
			PaymentStatus: input.Outcome,
		}
		return s.applySettlement(ctx, tx, booking, []models.PaymentStatus{input.Outcome}, result)
	})
	if err != nil {
		return nil, mapRepositoryError("record payment result", err)
	}

	s.announceSettlement(ctx, result)
	return result, nil
}

func (s *bookingService) paymentResult(input PaymentResultInput) repositories.PaymentResult {
	res := repositories.PaymentResult{Status: input.Outcome}
	if input.Outcome == models.PaymentCompleted {
		now := s.now()
		res.CompletedAt = &now
		res.ProviderReference = input.ProviderReference
	}
	return res
}

// applySettlement derives the booking status from the current payment
// statuses and accrues the club payout when the booking becomes fully paid.
func (s *bookingService) applySettlement(ctx context.Context, tx repositories.Store, booking *models.Booking, statuses []models.PaymentStatus, result *SettlementResult) error {
	counts := countStatuses(statuses)
	result.Completed = counts.completed
	result.Failed = counts.failed
	result.Pending = counts.pending
	result.Total = len(statuses)
	result.State = counts.state()
	result.NeedsReconciliation = result.State == SettlementNeedsReconciliation

	next := counts.bookingStatus()
	result.BookingPaymentStatus = next
	if next == booking.PaymentStatus {
		return nil
	}
	if err := tx.Bookings().UpdatePaymentStatus(ctx, booking.ID, next); err != nil {
		return err
	}
	if next != models.BookingPaymentCompleted {
		return nil
	}

	club, err := tx.Clubs().GetByID(ctx, booking.ClubID)
	if err != nil {
		return err
	}
	payout := &models.ClubPayout{
		ClubID:            club.ID,
		BookingID:         intPtr(booking.ID),
		AmountOwed:        club.EarnedShare(booking.TotalPrice),
		AmountTransferred: decimal.Zero,
	}
	if err := tx.Payouts().Create(ctx, payout); err != nil {
		if errors.Is(err, repositories.ErrPayoutBookingConflict) {
			s.logger.WarnContext(ctx, "Payout already accrued for booking", slog.Int("booking_id", booking.ID))
			return nil
		}
		return err
	}
	result.PayoutAccrued = true
	return nil
}

func (s *bookingService) announceSettlement(ctx context.Context, result *SettlementResult) {
	attrs := []any{
		slog.Int("booking_id", result.BookingID),
		slog.String("outcome", string(result.PaymentStatus)),
		slog.String("booking_payment_status", string(result.BookingPaymentStatus)),
		slog.Int("completed", result.Completed),
		slog.Int("total", result.Total),
	}
	if result.NeedsReconciliation {
		s.logger.WarnContext(ctx, "Booking requires manual reconciliation", attrs...)
	} else {
		s.logger.InfoContext(ctx, "Payment result recorded", attrs...)
	}
	notify(ctx, s.notifier, s.logger, brackets.BookingRoom(result.BookingID), brackets.EventSettlementUpdated, result)
}

type statusCounts struct {
	completed int
	failed    int
	pending   int
}

func countStatuses(statuses []models.PaymentStatus) statusCounts {
	var c statusCounts
	for _, st := range statuses {
		switch st {
		case models.PaymentCompleted:
			c.completed++
		case models.PaymentFailed:
			c.failed++
		default:
			c.pending++
		}
	}
	return c
}

func (c statusCounts) total() int { return c.completed + c.failed + c.pending }

func (c statusCounts) state() SettlementState {
	switch {
	case c.total() > 0 && c.completed == c.total():
		return SettlementCompleted
	case c.failed > 0 && c.pending == 0:
		return SettlementNeedsReconciliation
	default:
		return SettlementPending
	}
}

func (c statusCounts) bookingStatus() models.BookingPaymentStatus {
	switch {
	case c.total() > 0 && c.completed == c.total():
		return models.BookingPaymentCompleted
	case c.completed > 0:
		return models.BookingPaymentPartial
	default:
		return models.BookingPaymentPending
	}
}

// GetSettlementStatus is a pure read of the booking and its payments.
func (s *bookingService) GetSettlementStatus(ctx context.Context, session models.Session, bookingID int) (*SettlementStatus, error) {
	status := &SettlementStatus{}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		booking, err := s.store.Bookings().GetByID(gCtx, bookingID)
		if err != nil {
			return err
		}
		status.Booking = booking
		return nil
	})
	g.Go(func() error {
		splits, err := s.store.SplitPayments().ListByBooking(gCtx, bookingID)
		if err != nil {
			return err
		}
		status.SplitPayments = splits
		return nil
	})
	g.Go(func() error {
		payment, err := s.store.Payments().GetByBookingID(gCtx, bookingID)
		if err != nil {
			if errors.Is(err, repositories.ErrPaymentNotFound) {
				return nil
			}
			return err
		}
		status.Payment = payment
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, mapRepositoryError("get settlement status", err)
	}
	if err := authorizeClub(session, status.Booking.ClubID); err != nil {
		return nil, err
	}

	status.Summary = summarize(status)
	return status, nil
}

func summarize(status *SettlementStatus) SettlementSummary {
	var statuses []models.PaymentStatus
	paid := decimal.Zero
	if len(status.SplitPayments) > 0 {
		for _, sp := range status.SplitPayments {
			statuses = append(statuses, sp.Status)
			if sp.Status == models.PaymentCompleted {
				paid = paid.Add(sp.Amount)
			}
		}
	} else if status.Payment != nil {
		statuses = append(statuses, status.Payment.Status)
		if status.Payment.Status == models.PaymentCompleted {
			paid = paid.Add(status.Payment.Amount)
		}
	}

	counts := countStatuses(statuses)
	outstanding := status.Booking.TotalPrice.Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return SettlementSummary{
		TotalPayments:     len(statuses),
		SplitPayments:     len(status.SplitPayments),
		Completed:         counts.completed,
		Failed:            counts.failed,
		Pending:           counts.pending,
		AmountPaid:        paid,
		AmountOutstanding: outstanding,
		State:             counts.state(),
	}
}

// HandlePaymentEvent applies a verified provider callback. Callbacks are not
// bound to a user, so they run with a system session.
func (s *bookingService) HandlePaymentEvent(ctx context.Context, event payments.PaymentEvent) (*SettlementResult, error) {
	session := models.SystemSession()
	var ref *string
	if event.ProviderReference != "" {
		ref = &event.ProviderReference
	}

	switch {
	case event.SplitPaymentID != nil && event.Status == models.PaymentProcessing:
		if _, err := s.MarkSplitPaymentProcessing(ctx, session, *event.SplitPaymentID, ref); err != nil {
			return nil, err
		}
		return nil, nil
	case event.SplitPaymentID != nil:
		return s.RecordSplitPaymentResult(ctx, session, *event.SplitPaymentID, PaymentResultInput{Outcome: event.Status, ProviderReference: ref})
	case event.PaymentID != nil && event.Status == models.PaymentProcessing:
		return nil, nil
	case event.PaymentID != nil:
		return s.RecordPaymentResult(ctx, session, *event.PaymentID, PaymentResultInput{Outcome: event.Status, ProviderReference: ref})
	default:
		return nil, validationError("payment event %s has no payment reference", event.EventID)
	}
}
