package models

import "time"

type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleClubAdmin UserRole = "CLUB_ADMIN"
	RoleStaff     UserRole = "STAFF"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleClubAdmin, RoleStaff:
		return true
	}
	return false
}

type User struct {
	ID           int       `json:"id" db:"id"`
	ClubID       *int      `json:"club_id,omitempty" db:"club_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the already-validated identity of the caller.
type Session struct {
	UserID int
	ClubID *int
	Role   UserRole
}

// CanAccessClub reports whether the session may act on entities owned by clubID.
func (s Session) CanAccessClub(clubID int) bool {
	if s.Role == RoleAdmin {
		return true
	}
	return s.ClubID != nil && *s.ClubID == clubID
}
