package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/payments"
	"github.com/Dosada05/padel-club/repositories"
	"github.com/Dosada05/padel-club/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPayoutCurrency      = "eur"
	defaultTransferConcurrency = 4
)

type TransferService interface {
	ProcessPendingTransfers(ctx context.Context, session models.Session, clubID int) (*BatchResult, error)
	ListPendingPayouts(ctx context.Context, session models.Session, clubID int) ([]models.ClubPayout, error)
	SetPaymentAccount(ctx context.Context, session models.Session, clubID int, accountID string) (*models.Club, error)
	SyncOnboarding(ctx context.Context, session models.Session, clubID int) (*models.Club, error)
}

// TransferFailure describes one payout that could not be transferred.
type TransferFailure struct {
	RecordID int    `json:"record_id"`
	Reason   string `json:"reason"`
}

type BatchResult struct {
	BatchID           string            `json:"batch_id"`
	ClubID            int               `json:"club_id"`
	Processed         int               `json:"processed"`
	Successful        int               `json:"successful"`
	Failed            []TransferFailure `json:"failed"`
	TransferredAmount decimal.Decimal   `json:"transferred_amount"`
	ReportKey         string            `json:"report_key,omitempty"`
}

type TransferConfig struct {
	Currency    string
	Concurrency int
}

type transferService struct {
	store    repositories.Store
	provider payments.Provider
	archiver *storage.ReportArchiver
	cfg      TransferConfig
	logger   *slog.Logger
}

// NewTransferService creates the payout processor. archiver may be nil.
func NewTransferService(store repositories.Store, provider payments.Provider, archiver *storage.ReportArchiver, cfg TransferConfig, logger *slog.Logger) TransferService {
	if cfg.Currency == "" {
		cfg.Currency = defaultPayoutCurrency
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultTransferConcurrency
	}
	cfg.Currency = strings.ToLower(cfg.Currency)
	return &transferService{
		store:    store,
		provider: provider,
		archiver: archiver,
		cfg:      cfg,
		logger:   logger,
	}
}

type transferOutcome struct {
	payoutID int
	ok       bool
	reason   string
	amount   decimal.Decimal
}

// ProcessPendingTransfers sends every pending payout of the club to its
// provider account. A failed item is reported and never stops the batch.
func (s *transferService) ProcessPendingTransfers(ctx context.Context, session models.Session, clubID int) (*BatchResult, error) {
	club, err := s.store.Clubs().GetByID(ctx, clubID)
	if err != nil {
		return nil, mapRepositoryError("get club", err)
	}
	if err := authorizeClub(session, club.ID); err != nil {
		return nil, err
	}
	if !club.CanReceiveTransfers() {
		return nil, ErrClubNotOnboarded
	}

	pending, err := s.store.Payouts().ListPendingByClub(ctx, club.ID)
	if err != nil {
		return nil, mapRepositoryError("list pending payouts", err)
	}

	batchID := uuid.NewString()
	logger := s.logger.With(slog.Int("club_id", club.ID), slog.String("batch_id", batchID))
	logger.InfoContext(ctx, "Processing pending transfers", slog.Int("pending", len(pending)))

	outcomes := make([]transferOutcome, len(pending))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, payout := range pending {
		i, payout := i, payout
		g.Go(func() error {
			outcome, err := s.transferPayout(gCtx, *club.StripeAccountID, batchID, payout)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, mapRepositoryError("process pending transfers", err)
	}

	result := &BatchResult{
		BatchID:           batchID,
		ClubID:            club.ID,
		Processed:         len(pending),
		Failed:            []TransferFailure{},
		TransferredAmount: decimal.Zero,
	}
	for _, o := range outcomes {
		if o.ok {
			result.Successful++
			result.TransferredAmount = result.TransferredAmount.Add(o.amount)
			continue
		}
		result.Failed = append(result.Failed, TransferFailure{RecordID: o.payoutID, Reason: o.reason})
	}
	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].RecordID < result.Failed[j].RecordID })

	if s.archiver != nil && result.Processed > 0 {
		uploaded, err := s.archiver.ArchiveTransferReport(ctx, club.ID, batchID, result)
		if err != nil {
			logger.WarnContext(ctx, "Failed to archive transfer report", slog.Any("error", err))
		} else {
			result.ReportKey = uploaded.Key
		}
	}

	logger.InfoContext(ctx, "Transfer batch finished",
		slog.Int("processed", result.Processed),
		slog.Int("successful", result.Successful),
		slog.Int("failed", len(result.Failed)),
		slog.String("transferred_amount", result.TransferredAmount.StringFixed(2)),
	)
	return result, nil
}

// transferPayout moves the outstanding amount of one payout. Provider errors
// become a failed outcome; only persistence errors are returned.
func (s *transferService) transferPayout(ctx context.Context, accountID, batchID string, payout models.ClubPayout) (transferOutcome, error) {
	outcome := transferOutcome{payoutID: payout.ID}
	amount := payout.Outstanding()

	transfer, err := s.provider.CreateTransfer(ctx, payments.TransferRequest{
		AccountID:      accountID,
		Amount:         amount,
		Currency:       s.cfg.Currency,
		IdempotencyKey: transferIdempotencyKey(payout),
		Metadata: map[string]string{
			"payout_id": strconv.Itoa(payout.ID),
			"club_id":   strconv.Itoa(payout.ClubID),
			"batch_id":  batchID,
		},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome, unavailable("create transfer", ctxErr)
		}
		outcome.reason = err.Error()
		s.logger.WarnContext(ctx, "Transfer failed",
			slog.Int("payout_id", payout.ID),
			slog.String("batch_id", batchID),
			slog.Any("error", err),
		)
		return outcome, nil
	}

	err = s.store.Payouts().MarkTransferred(ctx, payout.ID, payout.AmountOwed, payout.AmountTransferred, transfer.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrPayoutStale) {
			outcome.reason = fmt.Sprintf("payout changed concurrently; transfer %s must be reconciled", transfer.ID)
			s.logger.ErrorContext(ctx, "Payout changed during transfer",
				slog.Int("payout_id", payout.ID),
				slog.String("transfer_id", transfer.ID),
			)
			return outcome, nil
		}
		return outcome, err
	}

	outcome.ok = true
	outcome.amount = amount
	return outcome, nil
}

// transferIdempotencyKey is stable for a payout until its owed amount changes,
// so a retried batch never pays the same debt twice.
func transferIdempotencyKey(payout models.ClubPayout) string {
	return fmt.Sprintf("payout-%d-%s", payout.ID, payout.AmountOwed.StringFixed(2))
}

func (s *transferService) ListPendingPayouts(ctx context.Context, session models.Session, clubID int) ([]models.ClubPayout, error) {
	if err := authorizeClub(session, clubID); err != nil {
		return nil, err
	}
	if _, err := s.store.Clubs().GetByID(ctx, clubID); err != nil {
		return nil, mapRepositoryError("get club", err)
	}
	payouts, err := s.store.Payouts().ListPendingByClub(ctx, clubID)
	if err != nil {
		return nil, mapRepositoryError("list pending payouts", err)
	}
	return payouts, nil
}

// SetPaymentAccount links the club to a provider account. Onboarding has to be
// synced again afterwards.
func (s *transferService) SetPaymentAccount(ctx context.Context, session models.Session, clubID int, accountID string) (*models.Club, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, validationError("account_id is required")
	}
	if err := authorizeClub(session, clubID); err != nil {
		return nil, err
	}

	var updated *models.Club
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		club, err := tx.Clubs().GetByID(ctx, clubID)
		if err != nil {
			return err
		}
		if err := tx.Clubs().UpdateOnboarding(ctx, club.ID, &accountID, false); err != nil {
			return err
		}
		club.StripeAccountID = &accountID
		club.OnboardingComplete = false
		updated = club
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError("set payment account", err)
	}
	s.logger.InfoContext(ctx, "Club payment account set", slog.Int("club_id", clubID))
	return updated, nil
}

// SyncOnboarding refreshes the stored onboarding flag from the provider.
func (s *transferService) SyncOnboarding(ctx context.Context, session models.Session, clubID int) (*models.Club, error) {
	club, err := s.store.Clubs().GetByID(ctx, clubID)
	if err != nil {
		return nil, mapRepositoryError("get club", err)
	}
	if err := authorizeClub(session, club.ID); err != nil {
		return nil, err
	}
	accountID := derefString(club.StripeAccountID)
	if accountID == "" {
		return nil, ErrClubPaymentAccountMissing
	}

	account, err := s.provider.GetAccount(ctx, accountID)
	if err != nil {
		return nil, unavailable("get provider account", err)
	}

	complete := account.OnboardingComplete()
	if complete != club.OnboardingComplete {
		if err := s.store.Clubs().UpdateOnboarding(ctx, club.ID, club.StripeAccountID, complete); err != nil {
			return nil, mapRepositoryError("update onboarding", err)
		}
		club.OnboardingComplete = complete
	}

	s.logger.InfoContext(ctx, "Club onboarding synced",
		slog.Int("club_id", club.ID),
		slog.Bool("onboarding_complete", complete),
	)
	return club, nil
}
