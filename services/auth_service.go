package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/repositories"
	"github.com/Dosada05/padel-club/utils"
)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	// BootstrapAdmin creates the platform administrator if the email is not taken yet.
	BootstrapAdmin(ctx context.Context, email, password string) (*models.User, error)
}

type LoginInput struct {
	Email    string
	Password string
}

type authService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, unavailable("find user by email", err)
	}

	ok, err := utils.CheckPasswordHash(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) BootstrapAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, unavailable("find user by email", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, mapRepositoryError("create admin", err)
	}

	s.logger.InfoContext(ctx, "Bootstrap admin created", slog.Int("user_id", user.ID))
	return user, nil
}

func normalizeEmail(email string) string {
	return utils.NormalizeEmail(email)
}

func hashPassword(password string) (string, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooShort) {
			return "", validationError("password must be at least %d characters", utils.MinPasswordLength)
		}
		return "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	return hashed, nil
}
