package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Dosada05/padel-club/models"
	"github.com/golang-jwt/jwt/v4"
)

// Имена JWT claims
const (
	ClaimUserID = "user_id"
	ClaimClubID = "club_id"
	ClaimRole   = "role"
)

// NewSessionClaims собирает claims токена для пользователя.
func NewSessionClaims(user models.User, ttl time.Duration, now time.Time) jwt.MapClaims {
	claims := jwt.MapClaims{
		ClaimUserID: user.ID,
		ClaimRole:   string(user.Role),
		"exp":       now.Add(ttl).Unix(),
		"iat":       now.Unix(),
	}
	if user.ClubID != nil {
		claims[ClaimClubID] = *user.ClubID
	}
	return claims
}

// SessionFromClaims разбирает claims, выписанные NewSessionClaims.
func SessionFromClaims(claims jwt.MapClaims) (models.Session, error) {
	userID, err := intClaim(claims, ClaimUserID)
	if err != nil {
		return models.Session{}, err
	}
	if userID <= 0 {
		return models.Session{}, fmt.Errorf("invalid user ID value in '%s' claim: %d", ClaimUserID, userID)
	}

	roleStr, ok := claims[ClaimRole].(string)
	if !ok {
		return models.Session{}, fmt.Errorf("%w: '%s'", errMissingClaim, ClaimRole)
	}
	role := models.UserRole(roleStr)
	if !role.Valid() {
		return models.Session{}, fmt.Errorf("invalid role value in claim: %q", roleStr)
	}

	session := models.Session{UserID: userID, Role: role}
	if _, present := claims[ClaimClubID]; present {
		clubID, err := intClaim(claims, ClaimClubID)
		if err != nil {
			return models.Session{}, err
		}
		session.ClubID = &clubID
	}
	if role != models.RoleAdmin && session.ClubID == nil {
		return models.Session{}, fmt.Errorf("%w: '%s' is required for role %s", errMissingClaim, ClaimClubID, role)
	}
	return session, nil
}

// intClaim читает целое число; JSON-числа приходят как float64.
func intClaim(claims jwt.MapClaims, name string) (int, error) {
	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("%w: '%s'", errMissingClaim, name)
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", name, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid '%s' claim: %w", name, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: expected number or string, got %T", name, raw)
	}
}
