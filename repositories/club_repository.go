package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/padel-club/models"
)

var (
	ErrClubNotFound     = errors.New("club not found")
	ErrClubNameConflict = errors.New("club name conflict")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	UpdateOnboarding(ctx context.Context, id int, stripeAccountID *string, complete bool) error
}

type postgresClubRepository struct {
	db SQLExecutor
}

func (r *postgresClubRepository) Create(ctx context.Context, c *models.Club) error {
	query := `
		INSERT INTO clubs (name, status, stripe_account_id, onboarding_complete, commission_rate)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Status, c.StripeAccountID, c.OnboardingComplete, c.CommissionRate,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "clubs_name_key") {
			return ErrClubNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `
		SELECT id, name, status, stripe_account_id, onboarding_complete, commission_rate, created_at
		FROM clubs
		WHERE id = $1`

	c := &models.Club{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Status, &c.StripeAccountID, &c.OnboardingComplete, &c.CommissionRate, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresClubRepository) UpdateOnboarding(ctx context.Context, id int, stripeAccountID *string, complete bool) error {
	query := `UPDATE clubs SET stripe_account_id = $1, onboarding_complete = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, stripeAccountID, complete, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}
