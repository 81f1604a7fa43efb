package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/padel-club/models"
	"github.com/shopspring/decimal"
)

func (f *tournamentFixture) createPaidTournament(fee string) *models.Tournament {
	f.t.Helper()
	tour, err := f.service.CreateTournament(context.Background(), adminSession, CreateTournamentInput{
		ClubID:          f.club.ID,
		Name:            "Paid Open " + fee,
		Format:          models.FormatSingleElimination,
		RegistrationFee: decimal.RequireFromString(fee),
		StartDate:       time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		f.t.Fatalf("create tournament: %v", err)
	}
	return tour
}

func TestRecordRegistrationPayment(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	tour := f.createPaidTournament("30.00")
	reg, err := f.service.RegisterTeam(ctx, tour.ID, RegisterTeamInput{Player1Name: "Ana", Player2Name: "Eva", Modality: "women", Category: "2nd"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.PaymentStatus != models.RegistrationPending {
		t.Fatalf("status = %s, want PENDING", reg.PaymentStatus)
	}

	_, err = f.service.ConfirmRegistration(ctx, adminSession, tour.ID, reg.ID)
	assertKind(t, err, ErrPreconditionFailed)

	pay := func(amount string) (*models.Registration, error) {
		return f.service.RecordRegistrationPayment(ctx, adminSession, tour.ID, reg.ID, RegistrationPaymentInput{Amount: decimal.RequireFromString(amount)})
	}

	for _, amount := range []string{"0", "-5", "1.005"} {
		_, err := pay(amount)
		assertKind(t, err, ErrValidation)
	}

	partial, err := pay("10")
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if partial.PaymentStatus != models.RegistrationPartial || !partial.PaidAmount.Equal(decimal.NewFromInt(10)) || partial.Confirmed {
		t.Errorf("after partial payment: %+v", partial)
	}

	_, err = pay("25")
	assertKind(t, err, ErrValidation)

	paid, err := pay("20")
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if paid.PaymentStatus != models.RegistrationPaid || !paid.PaidAmount.Equal(decimal.NewFromInt(30)) || !paid.Confirmed {
		t.Errorf("after full payment: %+v", paid)
	}

	stored, err := f.store.Registrations().GetByID(ctx, reg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.PaymentStatus != models.RegistrationPaid || !stored.Confirmed || !stored.PaidAmount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("stored registration: %+v", stored)
	}

	_, err = pay("1")
	assertKind(t, err, ErrInvalidState)

	if _, err := f.service.ConfirmRegistration(ctx, adminSession, tour.ID, reg.ID); err != nil {
		t.Errorf("confirm paid registration: %v", err)
	}
}

func TestRecordRegistrationPayment_Access(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	tour := f.createPaidTournament("20.00")
	other := f.createPaidTournament("15.00")
	reg, err := f.service.RegisterTeam(ctx, tour.ID, RegisterTeamInput{Player1Name: "Ana", Player2Name: "Eva"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	amount := RegistrationPaymentInput{Amount: decimal.NewFromInt(5)}

	tests := []struct {
		name         string
		session      models.Session
		tournamentID int
		wantErr      error
	}{
		{"foreign club", clubSession(f.club.ID + 1), tour.ID, ErrForbidden},
		{"other tournament", adminSession, other.ID, ErrNotFound},
		{"unknown tournament", adminSession, 404, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.RecordRegistrationPayment(ctx, tt.session, tt.tournamentID, reg.ID, amount)
			assertKind(t, err, tt.wantErr)
		})
	}

	stored, err := f.store.Registrations().GetByID(ctx, reg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.PaidAmount.IsZero() || stored.PaymentStatus != models.RegistrationPending {
		t.Errorf("rejected payments changed the registration: %+v", stored)
	}
}

func TestCheckInRegistration(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	tour := f.createTournament(models.FormatRoundRobin, true)
	reg, err := f.service.RegisterTeam(ctx, tour.ID, RegisterTeamInput{Player1Name: "Ana", Player2Name: "Eva"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = f.service.CheckInRegistration(ctx, adminSession, tour.ID, reg.ID)
	assertKind(t, err, ErrInvalidState)

	if _, err := f.service.ConfirmRegistration(ctx, adminSession, tour.ID, reg.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	for i := 0; i < 2; i++ {
		checked, err := f.service.CheckInRegistration(ctx, adminSession, tour.ID, reg.ID)
		if err != nil {
			t.Fatalf("check in #%d: %v", i+1, err)
		}
		if !checked.CheckedIn {
			t.Errorf("check in #%d: registration not checked in", i+1)
		}
	}

	_, err = f.service.CheckInRegistration(ctx, clubSession(f.club.ID+1), tour.ID, reg.ID)
	assertKind(t, err, ErrForbidden)
}
