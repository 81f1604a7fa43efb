package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/repositories"
	"github.com/Dosada05/padel-club/utils"
	"github.com/shopspring/decimal"
)

type AdminService interface {
	CreateClub(ctx context.Context, session models.Session, input CreateClubInput) (*models.Club, error)
	CreateUser(ctx context.Context, session models.Session, input CreateUserInput) (*models.User, error)
}

type CreateClubInput struct {
	Name           string          `json:"name"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
}

type CreateUserInput struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	ClubID   *int            `json:"club_id,omitempty"`
}

type adminService struct {
	store  repositories.Store
	logger *slog.Logger
}

func NewAdminService(store repositories.Store, logger *slog.Logger) AdminService {
	return &adminService{store: store, logger: logger}
}

func (s *adminService) CreateClub(ctx context.Context, session models.Session, input CreateClubInput) (*models.Club, error) {
	if session.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("club name is required")
	}
	if input.CommissionRate.IsNegative() || input.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, validationError("commission_rate must be in [0, 1)")
	}

	club := &models.Club{
		Name:           name,
		Status:         models.ClubActive,
		CommissionRate: input.CommissionRate,
	}
	if err := s.store.Clubs().Create(ctx, club); err != nil {
		return nil, mapRepositoryError("create club", err)
	}
	s.logger.InfoContext(ctx, "Club created", slog.Int("club_id", club.ID))
	return club, nil
}

// CreateUser creates a staff account. Club admins may only add staff to their
// own club; platform admins may create any role.
func (s *adminService) CreateUser(ctx context.Context, session models.Session, input CreateUserInput) (*models.User, error) {
	if !input.Role.Valid() {
		return nil, validationError("invalid role %q", input.Role)
	}
	switch session.Role {
	case models.RoleAdmin:
	case models.RoleClubAdmin:
		if input.Role != models.RoleStaff || input.ClubID == nil || !session.CanAccessClub(*input.ClubID) {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}
	if input.Role != models.RoleAdmin && input.ClubID == nil {
		return nil, validationError("club_id is required for role %s", input.Role)
	}
	if input.Role == models.RoleAdmin {
		input.ClubID = nil
	}

	email := normalizeEmail(input.Email)
	if !utils.IsValidEmail(email) {
		return nil, validationError("valid email is required")
	}
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ClubID:       input.ClubID,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, mapRepositoryError("create user", err)
	}
	s.logger.InfoContext(ctx, "User created", slog.Int("user_id", user.ID), slog.String("role", string(user.Role)))
	return user, nil
}
