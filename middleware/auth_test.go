package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/padel-club/models"
	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestSessionClaimsRoundTrip(t *testing.T) {
	clubID := 5
	now := time.Now()
	tests := []struct {
		name string
		user models.User
	}{
		{"admin", models.User{ID: 1, Role: models.RoleAdmin}},
		{"staff", models.User{ID: 2, Role: models.RoleStaff, ClubID: &clubID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signed(t, NewSessionClaims(tt.user, time.Hour, now), jwt.SigningMethodHS256, []byte(testSecret))
			parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
			if err != nil {
				t.Fatal(err)
			}
			session, err := SessionFromClaims(parsed.Claims.(jwt.MapClaims))
			if err != nil {
				t.Fatalf("session: %v", err)
			}
			if session.UserID != tt.user.ID || session.Role != tt.user.Role {
				t.Errorf("session = %+v", session)
			}
			if (session.ClubID == nil) != (tt.user.ClubID == nil) {
				t.Errorf("club = %v, want %v", session.ClubID, tt.user.ClubID)
			}
		})
	}
}

func TestSessionFromClaims_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"no user", jwt.MapClaims{ClaimRole: "ADMIN"}},
		{"zero user", jwt.MapClaims{ClaimUserID: float64(0), ClaimRole: "ADMIN"}},
		{"fractional user", jwt.MapClaims{ClaimUserID: 1.5, ClaimRole: "ADMIN"}},
		{"unknown role", jwt.MapClaims{ClaimUserID: float64(1), ClaimRole: "OWNER"}},
		{"staff without club", jwt.MapClaims{ClaimUserID: float64(1), ClaimRole: "STAFF"}},
		{"club as bool", jwt.MapClaims{ClaimUserID: float64(1), ClaimRole: "STAFF", ClaimClubID: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if session, err := SessionFromClaims(tt.claims); err == nil {
				t.Errorf("expected error, got %+v", session)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clubID := 3
	staff := models.User{ID: 9, Role: models.RoleStaff, ClubID: &clubID}
	now := time.Now()

	var got models.Session
	handler := Authenticate(testSecret, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + signed(t, NewSessionClaims(staff, time.Hour, now), jwt.SigningMethodHS256, []byte(testSecret)), http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signed(t, NewSessionClaims(staff, time.Hour, now), jwt.SigningMethodHS256, []byte("other")), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, NewSessionClaims(staff, time.Hour, now.Add(-2*time.Hour)), jwt.SigningMethodHS256, []byte(testSecret)), http.StatusUnauthorized},
		{"none alg", "Bearer " + signed(t, NewSessionClaims(staff, time.Hour, now), jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = models.Session{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusNoContent && (got.UserID != staff.ID || got.ClubID == nil || *got.ClubID != clubID) {
				t.Errorf("session = %+v", got)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	handler := RequireRoles(models.RoleAdmin, models.RoleClubAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	clubID := 1

	tests := []struct {
		name    string
		session *models.Session
		status  int
	}{
		{"no session", nil, http.StatusUnauthorized},
		{"staff", &models.Session{UserID: 1, Role: models.RoleStaff, ClubID: &clubID}, http.StatusForbidden},
		{"club admin", &models.Session{UserID: 1, Role: models.RoleClubAdmin, ClubID: &clubID}, http.StatusOK},
		{"admin", &models.Session{UserID: 1, Role: models.RoleAdmin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.session != nil {
				req = req.WithContext(WithSession(req.Context(), *tt.session))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}
