package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/repositories/memstore"
	"github.com/shopspring/decimal"
)

func TestAuthService_Login(t *testing.T) {
	store := memstore.New()
	auth := NewAuthService(store.Users(), discardLogger())
	ctx := context.Background()

	admin, err := auth.BootstrapAdmin(ctx, " Root@Padel.Club ", "s3cret-pass")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if admin.Email != "root@padel.club" || admin.Role != models.RoleAdmin {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	again, err := auth.BootstrapAdmin(ctx, "root@padel.club", "another-pass")
	if err != nil || again.ID != admin.ID {
		t.Fatalf("second bootstrap must return the existing admin, got %+v, %v", again, err)
	}

	tests := []struct {
		name    string
		input   LoginInput
		wantErr error
	}{
		{"valid", LoginInput{Email: "ROOT@padel.club", Password: "s3cret-pass"}, nil},
		{"wrong password", LoginInput{Email: "root@padel.club", Password: "nope-nope"}, ErrInvalidCredentials},
		{"unknown email", LoginInput{Email: "ghost@padel.club", Password: "s3cret-pass"}, ErrInvalidCredentials},
		{"empty", LoginInput{}, ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := auth.Login(ctx, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (user.ID != admin.ID || user.PasswordHash != "") {
				t.Errorf("unexpected user: %+v", user)
			}
		})
	}

	_, err = NewAuthService(memstore.New().Users(), discardLogger()).BootstrapAdmin(ctx, "x@padel.club", "short")
	assertKind(t, err, ErrValidation)
}

func TestAdminService_CreateUser(t *testing.T) {
	store := memstore.New()
	admins := NewAdminService(store, discardLogger())
	ctx := context.Background()

	club, err := admins.CreateClub(ctx, adminSession, CreateClubInput{Name: "Padel Oeste", CommissionRate: decimal.RequireFromString("0.15")})
	if err != nil {
		t.Fatalf("create club: %v", err)
	}
	other := mustCreateClub(t, store, "Padel Centro")
	clubAdmin := models.Session{UserID: 7, ClubID: &club.ID, Role: models.RoleClubAdmin}

	tests := []struct {
		name    string
		session models.Session
		input   CreateUserInput
		wantErr error
	}{
		{"admin creates club admin", adminSession, CreateUserInput{Email: "boss@oeste.es", Password: "password1", Role: models.RoleClubAdmin, ClubID: &club.ID}, nil},
		{"club admin creates staff", clubAdmin, CreateUserInput{Email: "desk@oeste.es", Password: "password1", Role: models.RoleStaff, ClubID: &club.ID}, nil},
		{"club admin in other club", clubAdmin, CreateUserInput{Email: "spy@centro.es", Password: "password1", Role: models.RoleStaff, ClubID: &other.ID}, ErrForbidden},
		{"club admin creates admin", clubAdmin, CreateUserInput{Email: "root2@oeste.es", Password: "password1", Role: models.RoleAdmin}, ErrForbidden},
		{"staff creates staff", clubSession(club.ID), CreateUserInput{Email: "x@oeste.es", Password: "password1", Role: models.RoleStaff, ClubID: &club.ID}, ErrForbidden},
		{"missing club", adminSession, CreateUserInput{Email: "y@oeste.es", Password: "password1", Role: models.RoleStaff}, ErrValidation},
		{"bad email", adminSession, CreateUserInput{Email: "oeste.es", Password: "password1", Role: models.RoleStaff, ClubID: &club.ID}, ErrValidation},
		{"short password", adminSession, CreateUserInput{Email: "z@oeste.es", Password: "pw", Role: models.RoleStaff, ClubID: &club.ID}, ErrValidation},
		{"unknown role", adminSession, CreateUserInput{Email: "w@oeste.es", Password: "password1", Role: "OWNER", ClubID: &club.ID}, ErrValidation},
		{"duplicate email", adminSession, CreateUserInput{Email: "BOSS@oeste.es", Password: "password1", Role: models.RoleStaff, ClubID: &club.ID}, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := admins.CreateUser(ctx, tt.session, tt.input)
			if tt.wantErr != nil {
				assertKind(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("create user: %v", err)
			}
			if user.ID == 0 || user.Role != tt.input.Role {
				t.Errorf("unexpected user: %+v", user)
			}
		})
	}
}

func TestAdminService_CreateClub(t *testing.T) {
	store := memstore.New()
	admins := NewAdminService(store, discardLogger())
	ctx := context.Background()

	tests := []struct {
		name    string
		session models.Session
		input   CreateClubInput
		wantErr error
	}{
		{"club admin", models.Session{Role: models.RoleClubAdmin, ClubID: intPtr(1)}, CreateClubInput{Name: "A"}, ErrForbidden},
		{"blank name", adminSession, CreateClubInput{Name: " "}, ErrValidation},
		{"commission of one", adminSession, CreateClubInput{Name: "B", CommissionRate: decimal.NewFromInt(1)}, ErrValidation},
		{"negative commission", adminSession, CreateClubInput{Name: "C", CommissionRate: decimal.RequireFromString("-0.1")}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := admins.CreateClub(ctx, tt.session, tt.input)
			assertKind(t, err, tt.wantErr)
		})
	}

	if _, err := admins.CreateClub(ctx, adminSession, CreateClubInput{Name: "Dup"}); err != nil {
		t.Fatal(err)
	}
	_, err := admins.CreateClub(ctx, adminSession, CreateClubInput{Name: "Dup"})
	if !errors.Is(err, ErrClubNameConflict) {
		t.Errorf("duplicate club: err = %v", err)
	}
}
