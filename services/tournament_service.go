package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/padel-club/brackets"
	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/repositories"
	"github.com/shopspring/decimal"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, session models.Session, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateTournamentStatus(ctx context.Context, session models.Session, id int, status models.TournamentStatus) (*models.Tournament, error)

	RegisterTeam(ctx context.Context, tournamentID int, input RegisterTeamInput) (*models.Registration, error)
	ConfirmRegistration(ctx context.Context, session models.Session, tournamentID, registrationID int) (*models.Registration, error)
	RecordRegistrationPayment(ctx context.Context, session models.Session, tournamentID, registrationID int, input RegistrationPaymentInput) (*models.Registration, error)
	CheckInRegistration(ctx context.Context, session models.Session, tournamentID, registrationID int) (*models.Registration, error)

	GenerateBracket(ctx context.Context, session models.Session, tournamentID int, division models.Division) (*BracketView, error)
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
	RecordMatchResult(ctx context.Context, session models.Session, matchID int, input MatchResultInput) (*models.Match, error)

	AdvanceRound(ctx context.Context, session models.Session, input AdvanceRoundInput) (*AdvancementResult, error)
}

type CreateTournamentInput struct {
	ClubID          int                     `json:"club_id"`
	Name            string                  `json:"name"`
	Format          models.TournamentFormat `json:"format"`
	RegistrationFee decimal.Decimal         `json:"registration_fee"`
	AllowByes       *bool                   `json:"allow_byes,omitempty"`
	StartDate       time.Time               `json:"start_date"`
}

type ListTournamentsFilter struct {
	ClubID *int
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type RegisterTeamInput struct {
	Player1Name    string `json:"player1_name"`
	Player1Contact string `json:"player1_contact"`
	Player2Name    string `json:"player2_name"`
	Player2Contact string `json:"player2_contact"`
	Modality       string `json:"modality"`
	Category       string `json:"category"`
}

type tournamentService struct {
	store    repositories.Store
	notifier brackets.Notifier
	logger   *slog.Logger
}

func NewTournamentService(store repositories.Store, notifier brackets.Notifier, logger *slog.Logger) TournamentService {
	return &tournamentService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, session models.Session, input CreateTournamentInput) (*models.Tournament, error) {
	if err := authorizeClub(session, input.ClubID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("tournament name is required")
	}
	if !input.Format.Valid() {
		return nil, validationError("unsupported tournament format %q", input.Format)
	}
	if input.RegistrationFee.IsNegative() {
		return nil, validationError("registration fee must not be negative")
	}
	if input.StartDate.IsZero() {
		return nil, validationError("start date is required")
	}

	allowByes := true
	if input.AllowByes != nil {
		allowByes = *input.AllowByes
	}

	t := &models.Tournament{
		ClubID:          input.ClubID,
		Name:            name,
		Format:          input.Format,
		Status:          models.TournamentDraft,
		RegistrationFee: input.RegistrationFee,
		AllowByes:       allowByes,
		StartDate:       input.StartDate.UTC(),
	}
	if err := s.store.Tournaments().Create(ctx, t); err != nil {
		return nil, mapRepositoryError("create tournament", err)
	}

	s.logger.InfoContext(ctx, "Tournament created", slog.Int("tournament_id", t.ID), slog.Int("club_id", t.ClubID))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.store.Tournaments().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError("get tournament", err)
	}
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, validationError("invalid tournament status %q", *filter.Status)
	}
	tournaments, err := s.store.Tournaments().List(ctx, repositories.ListTournamentsFilter{
		ClubID: filter.ClubID,
		Status: filter.Status,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
	if err != nil {
		return nil, mapRepositoryError("list tournaments", err)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournamentStatus(ctx context.Context, session models.Session, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if !status.Valid() {
		return nil, validationError("invalid tournament status %q", status)
	}

	var updated *models.Tournament
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		t, err := tx.Tournaments().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := authorizeClub(session, t.ClubID); err != nil {
			return err
		}
		if !t.Status.CanTransitionTo(status) {
			return ErrInvalidStatusTransition
		}
		if t.Status != status {
			if err := tx.Tournaments().UpdateStatus(ctx, id, status); err != nil {
				return err
			}
			t.Status = status
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError("update tournament status", err)
	}

	s.logger.InfoContext(ctx, "Tournament status updated", slog.Int("tournament_id", id), slog.String("status", string(status)))
	return updated, nil
}

func (s *tournamentService) RegisterTeam(ctx context.Context, tournamentID int, input RegisterTeamInput) (*models.Registration, error) {
	if strings.TrimSpace(input.Player1Name) == "" || strings.TrimSpace(input.Player2Name) == "" {
		return nil, validationError("both player names are required")
	}

	t, err := s.store.Tournaments().GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepositoryError("get tournament", err)
	}
	if t.Status == models.TournamentCompleted {
		return nil, ErrTournamentCompleted
	}

	paymentStatus := models.RegistrationPending
	if t.RegistrationFee.IsZero() {
		paymentStatus = models.RegistrationPaid
	}

	reg := &models.Registration{
		TournamentID:   tournamentID,
		Player1Name:    strings.TrimSpace(input.Player1Name),
		Player1Contact: strings.TrimSpace(input.Player1Contact),
		Player2Name:    strings.TrimSpace(input.Player2Name),
		Player2Contact: strings.TrimSpace(input.Player2Contact),
		Modality:       strings.TrimSpace(input.Modality),
		Category:       strings.TrimSpace(input.Category),
		PaymentStatus:  paymentStatus,
		PaidAmount:     decimal.Zero,
	}
	if err := s.store.Registrations().Create(ctx, reg); err != nil {
		return nil, mapRepositoryError("create registration", err)
	}
	return reg, nil
}

func (s *tournamentService) ConfirmRegistration(ctx context.Context, session models.Session, tournamentID, registrationID int) (*models.Registration, error) {
	var confirmed *models.Registration
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		_, reg, err := loadRegistration(ctx, tx, session, tournamentID, registrationID)
		if err != nil {
			return err
		}
		if !reg.Confirmed {
			if reg.PaymentStatus != models.RegistrationPaid {
				return ErrRegistrationUnpaid
			}
			if err := tx.Registrations().Confirm(ctx, registrationID); err != nil {
				return err
			}
			reg.Confirmed = true
		}
		confirmed = reg
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError("confirm registration", err)
	}
	return confirmed, nil
}

func isRoundConflict(err error) bool {
	return errors.Is(err, repositories.ErrRoundConflict)
}
