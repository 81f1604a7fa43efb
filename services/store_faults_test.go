package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Dosada05/padel-club/brackets"
	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/repositories"
	"github.com/shopspring/decimal"
)

var errConnectionLost = errors.New("connection reset by peer")

// faults makes named repository calls fail after a number of successful ones.
type faults struct {
	mu        sync.Mutex
	failAfter map[string]int
	calls     map[string]int
}

func newFaults() *faults {
	return &faults{failAfter: map[string]int{}, calls: map[string]int{}}
}

func (f *faults) set(op string, successes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAfter[op] = successes
}

func (f *faults) clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAfter = map[string]int{}
	f.calls = map[string]int{}
}

func (f *faults) hit(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if n, ok := f.failAfter[op]; ok && f.calls[op] > n {
		return fmt.Errorf("%s: %w", op, errConnectionLost)
	}
	return nil
}

// faultyStore wraps a store, transactions included, and injects faults.
type faultyStore struct {
	repositories.Store
	faults *faults
}

func (s faultyStore) WithinTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx repositories.Store) error {
		return fn(faultyStore{Store: tx, faults: s.faults})
	})
}

func (s faultyStore) Tournaments() repositories.TournamentRepository {
	return faultyTournaments{TournamentRepository: s.Store.Tournaments(), faults: s.faults}
}

func (s faultyStore) Matches() repositories.MatchRepository {
	return faultyMatches{MatchRepository: s.Store.Matches(), faults: s.faults}
}

func (s faultyStore) Payouts() repositories.PayoutRepository {
	return faultyPayouts{PayoutRepository: s.Store.Payouts(), faults: s.faults}
}

type faultyTournaments struct {
	repositories.TournamentRepository
	faults *faults
}

func (r faultyTournaments) Complete(ctx context.Context, id int, winnerRegistrationID *int) error {
	if err := r.faults.hit("tournaments.complete"); err != nil {
		return err
	}
	return r.TournamentRepository.Complete(ctx, id, winnerRegistrationID)
}

type faultyMatches struct {
	repositories.MatchRepository
	faults *faults
}

func (r faultyMatches) Create(ctx context.Context, m *models.Match) error {
	if err := r.faults.hit("matches.create"); err != nil {
		return err
	}
	return r.MatchRepository.Create(ctx, m)
}

type faultyPayouts struct {
	repositories.PayoutRepository
	faults *faults
}

func (r faultyPayouts) Create(ctx context.Context, p *models.ClubPayout) error {
	if err := r.faults.hit("payouts.create"); err != nil {
		return err
	}
	return r.PayoutRepository.Create(ctx, p)
}

func (r faultyPayouts) ListPendingByClub(ctx context.Context, clubID int) ([]models.ClubPayout, error) {
	if err := r.faults.hit("payouts.list_pending"); err != nil {
		return nil, err
	}
	return r.PayoutRepository.ListPendingByClub(ctx, clubID)
}

func (r faultyPayouts) MarkTransferred(ctx context.Context, id int, previousOwed, previousTransferred decimal.Decimal, reference string) error {
	if err := r.faults.hit("payouts.mark_transferred"); err != nil {
		return err
	}
	return r.PayoutRepository.MarkTransferred(ctx, id, previousOwed, previousTransferred, reference)
}

func TestProcessPendingTransfers_StoreUnavailable(t *testing.T) {
	f := newTransferFixture(t)
	f.onboard()
	f.addPayouts("10.00", "20.00")
	flt := newFaults()
	service := NewTransferService(faultyStore{Store: f.store, faults: flt}, f.provider, nil, TransferConfig{}, discardLogger())
	flt.set("payouts.list_pending", 0)

	res, err := service.ProcessPendingTransfers(context.Background(), adminSession, f.club.ID)
	if !errors.Is(err, ErrUnavailable) || res != nil {
		t.Fatalf("process: res = %+v, err = %v, want %v", res, err, ErrUnavailable)
	}
	if calls := f.provider.calls(); len(calls) != 0 {
		t.Errorf("provider called %d times without a pending list", len(calls))
	}

	_, err = service.ListPendingPayouts(context.Background(), adminSession, f.club.ID)
	assertKind(t, err, ErrUnavailable)
}

func TestProcessPendingTransfers_MarkFailureKeepsEarlierTransfers(t *testing.T) {
	f := newTransferFixture(t)
	f.onboard()
	payouts := f.addPayouts("10.00", "20.00", "30.00")
	flt := newFaults()
	// Один воркер: выплаты обрабатываются строго по порядку.
	service := NewTransferService(faultyStore{Store: f.store, faults: flt}, f.provider, nil, TransferConfig{Concurrency: 1}, discardLogger())
	flt.set("payouts.mark_transferred", 1)

	res, err := service.ProcessPendingTransfers(context.Background(), adminSession, f.club.ID)
	if !errors.Is(err, ErrUnavailable) || res != nil {
		t.Fatalf("process: res = %+v, err = %v, want %v", res, err, ErrUnavailable)
	}

	pending, err := f.store.Payouts().ListPendingByClub(context.Background(), f.club.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) == 0 || pending[0].ID != payouts[1].ID {
		t.Fatalf("pending after failure = %+v, want payout %d first", pending, payouts[1].ID)
	}
	for _, p := range pending {
		if p.ID == payouts[0].ID {
			t.Errorf("payout %d transferred before the failure was not recorded", p.ID)
		}
	}

	flt.clear()
	res, err = service.ProcessPendingTransfers(context.Background(), adminSession, f.club.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Successful != len(pending) || len(res.Failed) != 0 {
		t.Errorf("retry result = %+v, want %d successful", res, len(pending))
	}

	keys := map[string]int{}
	for _, req := range f.provider.calls() {
		keys[req.IdempotencyKey]++
	}
	if key := fmt.Sprintf("payout-%d-20.00", payouts[1].ID); keys[key] != 2 {
		t.Errorf("idempotency keys = %v, want %s reused on retry", keys, key)
	}
	if key := fmt.Sprintf("payout-%d-10.00", payouts[0].ID); keys[key] != 1 {
		t.Errorf("recorded payout %d was sent again: %v", payouts[0].ID, keys)
	}
}

func TestAdvanceRound_StoreUnavailableRollsBack(t *testing.T) {
	f := newTournamentFixture(t)
	tour, _, _ := f.startBracket(models.FormatSingleElimination, true, 4)
	_, semis := f.roundMatches(tour.ID, mixedThird, 1)
	f.playAll(semis, 1)

	flt := newFaults()
	service := NewTournamentService(faultyStore{Store: f.store, faults: flt}, f.notifier, discardLogger())
	flt.set("matches.create", 0)

	res, err := service.AdvanceRound(context.Background(), adminSession, AdvanceRoundInput{TournamentID: tour.ID, RoundName: "Semifinals"})
	if !errors.Is(err, ErrUnavailable) || res != nil {
		t.Fatalf("advance: res = %+v, err = %v, want %v", res, err, ErrUnavailable)
	}
	if _, err := f.store.Rounds().GetByStage(context.Background(), tour.ID, mixedThird, 2); !errors.Is(err, repositories.ErrRoundNotFound) {
		t.Errorf("final survived rollback: err = %v", err)
	}
	if got := f.notifier.count(brackets.EventRoundAdvanced); got != 0 {
		t.Errorf("round advanced events = %d, want 0", got)
	}

	flt.clear()
	if res := f.advance(tour.ID, "Semifinals", nil); res.Outcome != OutcomeAdvanced || res.MatchesCreated != 1 {
		t.Fatalf("retry = %+v", res)
	}

	_, final := f.roundMatches(tour.ID, mixedThird, 2)
	f.play(final[0].ID, 1)
	flt.set("tournaments.complete", 0)
	_, err = service.AdvanceRound(context.Background(), adminSession, AdvanceRoundInput{TournamentID: tour.ID, RoundName: "Final"})
	assertKind(t, err, ErrUnavailable)

	round, _ := f.roundMatches(tour.ID, mixedThird, 2)
	if round.WinnerRegistrationID != nil {
		t.Errorf("division winner survived rollback: %d", *round.WinnerRegistrationID)
	}
	stored, err := f.service.GetTournament(context.Background(), tour.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.TournamentActive {
		t.Errorf("status = %s, want ACTIVE after rollback", stored.Status)
	}

	flt.clear()
	if res := f.advance(tour.ID, "Final", nil); res.Outcome != OutcomeTournamentCompleted {
		t.Errorf("retry outcome = %s, want tournament_completed", res.Outcome)
	}
}

func TestRecordSplitPaymentResult_StoreUnavailableRollsBack(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.createSplitBooking("60.00", 2)
	first, second := booking.SplitPayments[0], booking.SplitPayments[1]
	if _, err := f.service.RecordSplitPaymentResult(ctx, adminSession, first.ID, PaymentResultInput{Outcome: models.PaymentCompleted}); err != nil {
		t.Fatalf("first share: %v", err)
	}

	flt := newFaults()
	service := NewBookingService(faultyStore{Store: f.store, faults: flt}, f.notifier, discardLogger())
	flt.set("payouts.create", 0)

	res, err := service.RecordSplitPaymentResult(ctx, adminSession, second.ID, PaymentResultInput{Outcome: models.PaymentCompleted})
	if !errors.Is(err, ErrUnavailable) || res != nil {
		t.Fatalf("second share: res = %+v, err = %v, want %v", res, err, ErrUnavailable)
	}

	split, err := f.store.SplitPayments().GetByID(ctx, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if split.Status != models.PaymentPending || split.CompletedAt != nil {
		t.Errorf("share survived rollback: %+v", split)
	}
	stored, err := f.store.Bookings().GetByID(ctx, booking.Booking.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.PaymentStatus != models.BookingPaymentPartial {
		t.Errorf("booking status = %s, want PARTIAL", stored.PaymentStatus)
	}
	if payouts := f.payouts(); len(payouts) != 0 {
		t.Errorf("payouts = %+v, want none", payouts)
	}

	flt.clear()
	res, err = service.RecordSplitPaymentResult(ctx, adminSession, second.ID, PaymentResultInput{Outcome: models.PaymentCompleted})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.BookingPaymentStatus != models.BookingPaymentCompleted || !res.PayoutAccrued {
		t.Errorf("retry result = %+v", res)
	}
}
