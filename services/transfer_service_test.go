package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/payments"
	"github.com/Dosada05/padel-club/repositories/memstore"
	"github.com/Dosada05/padel-club/storage"
	"github.com/shopspring/decimal"
)

// fakeProvider fails transfers for the payout ids in failFor.
type fakeProvider struct {
	mu       sync.Mutex
	failFor  map[int]bool
	requests []payments.TransferRequest
	account  payments.Account
	// beforeReturn runs after a transfer succeeded, before the service records it.
	beforeReturn func(payoutID int)
}

func (p *fakeProvider) CreateTransfer(_ context.Context, req payments.TransferRequest) (*payments.Transfer, error) {
	payoutID, _ := strconv.Atoi(req.Metadata["payout_id"])
	p.mu.Lock()
	p.requests = append(p.requests, req)
	fail := p.failFor[payoutID]
	p.mu.Unlock()

	if fail {
		return nil, fmt.Errorf("account %s cannot receive transfers", req.AccountID)
	}
	if p.beforeReturn != nil {
		p.beforeReturn(payoutID)
	}
	return &payments.Transfer{ID: fmt.Sprintf("tr_%d", payoutID), Amount: req.Amount}, nil
}

func (p *fakeProvider) GetAccount(_ context.Context, accountID string) (*payments.Account, error) {
	acct := p.account
	acct.ID = accountID
	return &acct, nil
}

func (p *fakeProvider) calls() []payments.TransferRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]payments.TransferRequest(nil), p.requests...)
}

type memoryUploader struct {
	mu   sync.Mutex
	keys []string
}

func (u *memoryUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*storage.UploadResult, error) {
	if _, err := io.ReadAll(reader); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.keys = append(u.keys, key)
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return "https://reports.example.test/" + key
}

type transferFixture struct {
	t        *testing.T
	store    *memstore.Store
	provider *fakeProvider
	uploader *memoryUploader
	service  TransferService
	club     *models.Club
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()
	store := memstore.New()
	provider := &fakeProvider{failFor: map[int]bool{}}
	uploader := &memoryUploader{}
	f := &transferFixture{
		t:        t,
		store:    store,
		provider: provider,
		uploader: uploader,
		club:     mustCreateClub(t, store, "Padel Este"),
	}
	f.service = NewTransferService(store, provider, storage.NewReportArchiver(uploader), TransferConfig{Concurrency: 2}, discardLogger())
	return f
}

func (f *transferFixture) onboard() {
	f.t.Helper()
	account := "acct_club"
	if err := f.store.Clubs().UpdateOnboarding(context.Background(), f.club.ID, &account, true); err != nil {
		f.t.Fatalf("onboard club: %v", err)
	}
}

func (f *transferFixture) addPayouts(owed ...string) []models.ClubPayout {
	f.t.Helper()
	out := make([]models.ClubPayout, 0, len(owed))
	for _, amount := range owed {
		p := &models.ClubPayout{
			ClubID:            f.club.ID,
			AmountOwed:        decimal.RequireFromString(amount),
			AmountTransferred: decimal.Zero,
		}
		if err := f.store.Payouts().Create(context.Background(), p); err != nil {
			f.t.Fatalf("create payout: %v", err)
		}
		out = append(out, *p)
	}
	return out
}

func TestProcessPendingTransfers_PartialFailure(t *testing.T) {
	f := newTransferFixture(t)
	f.onboard()
	payouts := f.addPayouts("10.00", "20.00", "30.00", "40.00", "50.00")
	f.provider.failFor[payouts[1].ID] = true
	f.provider.failFor[payouts[3].ID] = true

	res, err := f.service.ProcessPendingTransfers(context.Background(), clubSession(f.club.ID), f.club.ID)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Processed != 5 || res.Successful != 3 || len(res.Failed) != 2 {
		t.Fatalf("processed %d, successful %d, failed %d; want 5, 3, 2", res.Processed, res.Successful, len(res.Failed))
	}
	if res.Failed[0].RecordID != payouts[1].ID || res.Failed[1].RecordID != payouts[3].ID {
		t.Errorf("failed records = %+v", res.Failed)
	}
	for _, fail := range res.Failed {
		if !strings.Contains(fail.Reason, "cannot receive transfers") {
			t.Errorf("reason = %q", fail.Reason)
		}
	}
	if !res.TransferredAmount.Equal(decimal.RequireFromString("90.00")) {
		t.Errorf("transferred = %s, want 90.00", res.TransferredAmount)
	}
	if res.BatchID == "" || !strings.HasPrefix(res.ReportKey, fmt.Sprintf("transfers/club_%d/", f.club.ID)) || !strings.Contains(res.ReportKey, res.BatchID) {
		t.Errorf("batch %q report %q", res.BatchID, res.ReportKey)
	}

	pending, err := f.service.ListPendingPayouts(context.Background(), adminSession, f.club.ID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != payouts[1].ID || pending[1].ID != payouts[3].ID {
		t.Errorf("still pending = %+v", pending)
	}
	for _, req := range f.provider.calls() {
		if req.AccountID != "acct_club" || req.Currency != "eur" {
			t.Errorf("unexpected request: %+v", req)
		}
	}
}

func TestProcessPendingTransfers_RetryUsesSameIdempotencyKey(t *testing.T) {
	f := newTransferFixture(t)
	f.onboard()
	payouts := f.addPayouts("12.50", "7.25")
	f.provider.failFor[payouts[0].ID] = true

	if _, err := f.service.ProcessPendingTransfers(context.Background(), adminSession, f.club.ID); err != nil {
		t.Fatal(err)
	}
	delete(f.provider.failFor, payouts[0].ID)
	res, err := f.service.ProcessPendingTransfers(context.Background(), adminSession, f.club.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed != 1 || res.Successful != 1 {
		t.Fatalf("retry processed %d successful %d", res.Processed, res.Successful)
	}

	keys := map[string]int{}
	for _, req := range f.provider.calls() {
		keys[req.IdempotencyKey]++
	}
	wantKey := fmt.Sprintf("payout-%d-12.50", payouts[0].ID)
	if keys[wantKey] != 2 {
		t.Errorf("idempotency keys = %v, want %s used twice", keys, wantKey)
	}
}

func TestProcessPendingTransfers_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *transferFixture)
		session func(f *transferFixture) models.Session
		clubID  func(f *transferFixture) int
		wantErr error
	}{
		{
			name:    "no provider account",
			prepare: func(f *transferFixture) {},
			wantErr: ErrClubNotOnboarded,
		},
		{
			name: "onboarding incomplete",
			prepare: func(f *transferFixture) {
				account := "acct_half"
				_ = f.store.Clubs().UpdateOnboarding(context.Background(), f.club.ID, &account, false)
			},
			wantErr: ErrClubNotOnboarded,
		},
		{
			name:    "other club",
			prepare: func(f *transferFixture) { f.onboard() },
			session: func(f *transferFixture) models.Session { return clubSession(f.club.ID + 1) },
			wantErr: ErrForbidden,
		},
		{
			name:    "unknown club",
			prepare: func(f *transferFixture) {},
			clubID:  func(f *transferFixture) int { return 31337 },
			wantErr: ErrClubNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransferFixture(t)
			f.addPayouts("15.00", "25.00")
			tt.prepare(f)

			session := adminSession
			if tt.session != nil {
				session = tt.session(f)
			}
			clubID := f.club.ID
			if tt.clubID != nil {
				clubID = tt.clubID(f)
			}

			res, err := f.service.ProcessPendingTransfers(context.Background(), session, clubID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if res != nil {
				t.Errorf("result must be nil, got %+v", res)
			}
			if calls := f.provider.calls(); len(calls) != 0 {
				t.Errorf("provider called %d times", len(calls))
			}
			if len(f.uploader.keys) != 0 {
				t.Errorf("report archived for a rejected batch")
			}
		})
	}
}

func TestProcessPendingTransfers_EmptyBatch(t *testing.T) {
	f := newTransferFixture(t)
	f.onboard()

	res, err := f.service.ProcessPendingTransfers(context.Background(), adminSession, f.club.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed != 0 || res.Successful != 0 || res.Failed == nil || len(res.Failed) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if !res.TransferredAmount.IsZero() || res.ReportKey != "" {
		t.Errorf("empty batch transferred %s, report %q", res.TransferredAmount, res.ReportKey)
	}
}

func TestProcessPendingTransfers_ConcurrentPayoutChange(t *testing.T) {
	f := newTransferFixture(t)
	f.onboard()
	payouts := f.addPayouts("10.00", "20.00")
	contested := payouts[1]
	f.provider.beforeReturn = func(payoutID int) {
		if payoutID == contested.ID {
			_ = f.store.Payouts().MarkTransferred(context.Background(), payoutID, contested.AmountOwed, decimal.Zero, "tr_other_batch")
		}
	}

	res, err := f.service.ProcessPendingTransfers(context.Background(), adminSession, f.club.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Successful != 1 || len(res.Failed) != 1 || res.Failed[0].RecordID != contested.ID {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(res.Failed[0].Reason, "reconciled") {
		t.Errorf("reason = %q", res.Failed[0].Reason)
	}
}

func TestOnboarding(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	_, err := f.service.SyncOnboarding(ctx, adminSession, f.club.ID)
	if !errors.Is(err, ErrClubPaymentAccountMissing) {
		t.Fatalf("sync without account: err = %v", err)
	}

	_, err = f.service.SetPaymentAccount(ctx, adminSession, f.club.ID, "  ")
	assertKind(t, err, ErrValidation)

	club, err := f.service.SetPaymentAccount(ctx, clubSession(f.club.ID), f.club.ID, "acct_new")
	if err != nil {
		t.Fatalf("set account: %v", err)
	}
	if *club.StripeAccountID != "acct_new" || club.OnboardingComplete {
		t.Errorf("unexpected club: %+v", club)
	}

	f.provider.account = payments.Account{DetailsSubmitted: true, PayoutsEnabled: false}
	club, err = f.service.SyncOnboarding(ctx, adminSession, f.club.ID)
	if err != nil {
		t.Fatal(err)
	}
	if club.OnboardingComplete {
		t.Errorf("payouts disabled must keep onboarding incomplete")
	}

	f.provider.account = payments.Account{DetailsSubmitted: true, PayoutsEnabled: true}
	club, err = f.service.SyncOnboarding(ctx, adminSession, f.club.ID)
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := f.store.Clubs().GetByID(ctx, f.club.ID)
	if !club.OnboardingComplete || !stored.CanReceiveTransfers() {
		t.Errorf("club must be able to receive transfers: %+v", stored)
	}
}

func TestProcessPendingTransfers_DisabledProvider(t *testing.T) {
	f := newTransferFixture(t)
	f.onboard()
	f.addPayouts("5.00")
	svc := NewTransferService(f.store, payments.NewDisabledProvider(), nil, TransferConfig{}, discardLogger())

	res, err := svc.ProcessPendingTransfers(context.Background(), adminSession, f.club.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Successful != 0 || len(res.Failed) != 1 || res.Failed[0].Reason != payments.ErrProviderDisabled.Error() {
		t.Errorf("unexpected result: %+v", res)
	}
}
