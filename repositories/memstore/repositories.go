package memstore

import (
	"context"
	"sort"

	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/repositories"
	"github.com/shopspring/decimal"
)

type clubRepo struct{ s *Store }

func (r clubRepo) Create(_ context.Context, c *models.Club) error {
	return r.s.write(func(st *state) error {
		for _, existing := range st.clubs {
			if existing.Name == c.Name {
				return repositories.ErrClubNameConflict
			}
		}
		c.ID = st.nextID("clubs")
		c.CreatedAt = r.s.now()
		st.clubs[c.ID] = *c
		return nil
	})
}

func (r clubRepo) GetByID(_ context.Context, id int) (*models.Club, error) {
	var out models.Club
	err := r.s.read(func(st *state) error {
		c, ok := st.clubs[id]
		if !ok {
			return repositories.ErrClubNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r clubRepo) UpdateOnboarding(_ context.Context, id int, accountID *string, complete bool) error {
	return r.s.write(func(st *state) error {
		c, ok := st.clubs[id]
		if !ok {
			return repositories.ErrClubNotFound
		}
		c.StripeAccountID = accountID
		c.OnboardingComplete = complete
		st.clubs[id] = c
		return nil
	})
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *models.User) error {
	return r.s.write(func(st *state) error {
		for _, existing := range st.users {
			if existing.Email == u.Email {
				return repositories.ErrUserEmailConflict
			}
		}
		if u.ClubID != nil {
			if _, ok := st.clubs[*u.ClubID]; !ok {
				return repositories.ErrUserClubInvalid
			}
		}
		u.ID = st.nextID("users")
		u.CreatedAt = r.s.now()
		st.users[u.ID] = *u
		return nil
	})
}

func (r userRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r userRepo) find(match func(models.User) bool) (*models.User, error) {
	var out *models.User
	err := r.s.read(func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				u := u
				out = &u
				return nil
			}
		}
		return repositories.ErrUserNotFound
	})
	return out, err
}

type tournamentRepo struct{ s *Store }

func (r tournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.clubs[t.ClubID]; !ok {
			return repositories.ErrTournamentInvalidClub
		}
		for _, existing := range st.tournaments {
			if existing.ClubID == t.ClubID && existing.Name == t.Name {
				return repositories.ErrTournamentNameConflict
			}
		}
		t.ID = st.nextID("tournaments")
		t.CreatedAt = r.s.now()
		row := *t
		row.Rounds, row.Registrations = nil, nil
		st.tournaments[t.ID] = row
		return nil
	})
}

func (r tournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	var out models.Tournament
	err := r.s.read(func(st *state) error {
		t, ok := st.tournaments[id]
		if !ok {
			return repositories.ErrTournamentNotFound
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r tournamentRepo) GetByIDForUpdate(ctx context.Context, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, id)
}

func (r tournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0)
	err := r.s.read(func(st *state) error {
		for _, t := range st.tournaments {
			if filter.ClubID != nil && t.ClubID != *filter.ClubID {
				continue
			}
			if filter.Status != nil && t.Status != *filter.Status {
				continue
			}
			out = append(out, t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []models.Tournament{}, err
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, err
}

func (r tournamentRepo) UpdateStatus(_ context.Context, id int, status models.TournamentStatus) error {
	return r.s.write(func(st *state) error {
		t, ok := st.tournaments[id]
		if !ok {
			return repositories.ErrTournamentNotFound
		}
		t.Status = status
		st.tournaments[id] = t
		return nil
	})
}

func (r tournamentRepo) Complete(_ context.Context, id int, winnerRegistrationID *int) error {
	return r.s.write(func(st *state) error {
		t, ok := st.tournaments[id]
		if !ok {
			return repositories.ErrTournamentNotFound
		}
		t.Status = models.TournamentCompleted
		t.WinnerRegistrationID = winnerRegistrationID
		st.tournaments[id] = t
		return nil
	})
}

type roundRepo struct{ s *Store }

func (r roundRepo) Create(_ context.Context, rd *models.Round) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.tournaments[rd.TournamentID]; !ok {
			return repositories.ErrTournamentNotFound
		}
		for _, existing := range st.rounds {
			if existing.TournamentID != rd.TournamentID || existing.Division() != rd.Division() {
				continue
			}
			if existing.Stage == rd.Stage || existing.Name == rd.Name {
				return repositories.ErrRoundConflict
			}
		}
		rd.ID = st.nextID("rounds")
		rd.CreatedAt = r.s.now()
		row := *rd
		row.Matches = nil
		st.rounds[rd.ID] = row
		return nil
	})
}

func (r roundRepo) ListByName(_ context.Context, tournamentID int, name string) ([]models.Round, error) {
	out := r.filter(func(rd models.Round) bool { return rd.TournamentID == tournamentID && rd.Name == name })
	return out, nil
}

func (r roundRepo) GetByStage(_ context.Context, tournamentID int, division models.Division, stage int) (*models.Round, error) {
	out := r.filter(func(rd models.Round) bool {
		return rd.TournamentID == tournamentID && rd.Division() == division && rd.Stage == stage
	})
	if len(out) == 0 {
		return nil, repositories.ErrRoundNotFound
	}
	return &out[0], nil
}

func (r roundRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Round, error) {
	return r.filter(func(rd models.Round) bool { return rd.TournamentID == tournamentID }), nil
}

func (r roundRepo) SetWinner(_ context.Context, id, registrationID int) error {
	return r.s.write(func(st *state) error {
		rd, ok := st.rounds[id]
		if !ok || rd.WinnerRegistrationID != nil {
			return repositories.ErrRoundDecided
		}
		rd.WinnerRegistrationID = &registrationID
		st.rounds[id] = rd
		return nil
	})
}

func (r roundRepo) filter(keep func(models.Round) bool) []models.Round {
	out := make([]models.Round, 0)
	_ = r.s.read(func(st *state) error {
		for _, rd := range st.rounds {
			if keep(rd) {
				out = append(out, rd)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Modality != b.Modality {
			return a.Modality < b.Modality
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Stage < b.Stage
	})
	return out
}

type matchRepo struct{ s *Store }

func (r matchRepo) Create(_ context.Context, m *models.Match) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.rounds[m.RoundID]; !ok {
			return repositories.ErrRoundNotFound
		}
		for _, id := range []*int{m.Team1RegistrationID, m.Team2RegistrationID} {
			if id == nil {
				continue
			}
			if _, ok := st.registrations[*id]; !ok {
				return repositories.ErrMatchInvalidRegistry
			}
		}
		for _, existing := range st.matches {
			if existing.RoundID == m.RoundID && existing.Position == m.Position {
				return repositories.ErrMatchPositionTaken
			}
		}
		m.ID = st.nextID("matches")
		m.CreatedAt = r.s.now()
		st.matches[m.ID] = *m
		return nil
	})
}

func (r matchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	var out models.Match
	err := r.s.read(func(st *state) error {
		m, ok := st.matches[id]
		if !ok {
			return repositories.ErrMatchNotFound
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r matchRepo) GetByIDForUpdate(ctx context.Context, id int) (*models.Match, error) {
	return r.GetByID(ctx, id)
}

func (r matchRepo) ListByRound(_ context.Context, roundID int) ([]models.Match, error) {
	return r.filter(func(m models.Match) bool { return m.RoundID == roundID }), nil
}

func (r matchRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Match, error) {
	return r.filter(func(m models.Match) bool { return m.TournamentID == tournamentID }), nil
}

func (r matchRepo) filter(keep func(models.Match) bool) []models.Match {
	out := make([]models.Match, 0)
	_ = r.s.read(func(st *state) error {
		for _, m := range st.matches {
			if keep(m) {
				out = append(out, m)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundID != out[j].RoundID {
			return out[i].RoundID < out[j].RoundID
		}
		return out[i].Position < out[j].Position
	})
	return out
}

func (r matchRepo) UpdateResult(_ context.Context, id int, winnerSide int, score *string) error {
	return r.s.write(func(st *state) error {
		m, ok := st.matches[id]
		if !ok {
			return repositories.ErrMatchNotFound
		}
		m.Status = models.MatchCompleted
		m.WinnerSide = &winnerSide
		m.Score = score
		st.matches[id] = m
		return nil
	})
}

type registrationRepo struct{ s *Store }

func (r registrationRepo) Create(_ context.Context, reg *models.Registration) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.tournaments[reg.TournamentID]; !ok {
			return repositories.ErrTournamentNotFound
		}
		reg.ID = st.nextID("registrations")
		reg.CreatedAt = r.s.now()
		st.registrations[reg.ID] = *reg
		return nil
	})
}

func (r registrationRepo) GetByID(_ context.Context, id int) (*models.Registration, error) {
	var out models.Registration
	err := r.s.read(func(st *state) error {
		reg, ok := st.registrations[id]
		if !ok {
			return repositories.ErrRegistrationNotFound
		}
		out = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r registrationRepo) ListByTournament(_ context.Context, tournamentID int, filter repositories.RegistrationFilter) ([]models.Registration, error) {
	out := make([]models.Registration, 0)
	err := r.s.read(func(st *state) error {
		for _, reg := range st.registrations {
			if reg.TournamentID != tournamentID {
				continue
			}
			if filter.Division != nil && reg.Division() != *filter.Division {
				continue
			}
			if filter.ConfirmedOnly && !reg.Confirmed {
				continue
			}
			out = append(out, reg)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r registrationRepo) Confirm(_ context.Context, id int) error {
	return r.s.write(func(st *state) error {
		reg, ok := st.registrations[id]
		if !ok {
			return repositories.ErrRegistrationNotFound
		}
		reg.Confirmed = true
		st.registrations[id] = reg
		return nil
	})
}

func (r registrationRepo) UpdatePayment(_ context.Context, id int, paidAmount decimal.Decimal, status models.RegistrationPaymentStatus, confirmed bool) error {
	return r.s.write(func(st *state) error {
		reg, ok := st.registrations[id]
		if !ok {
			return repositories.ErrRegistrationNotFound
		}
		reg.PaidAmount = paidAmount
		reg.PaymentStatus = status
		reg.Confirmed = reg.Confirmed || confirmed
		st.registrations[id] = reg
		return nil
	})
}

func (r registrationRepo) CheckIn(_ context.Context, id int) error {
	return r.s.write(func(st *state) error {
		reg, ok := st.registrations[id]
		if !ok {
			return repositories.ErrRegistrationNotFound
		}
		reg.CheckedIn = true
		st.registrations[id] = reg
		return nil
	})
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) Create(_ context.Context, b *models.Booking) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.clubs[b.ClubID]; !ok {
			return repositories.ErrBookingInvalidClub
		}
		b.ID = st.nextID("bookings")
		b.CreatedAt = r.s.now()
		b.UpdatedAt = b.CreatedAt
		st.bookings[b.ID] = *b
		return nil
	})
}

func (r bookingRepo) GetByID(_ context.Context, id int) (*models.Booking, error) {
	var out models.Booking
	err := r.s.read(func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return repositories.ErrBookingNotFound
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r bookingRepo) GetByIDForUpdate(ctx context.Context, id int) (*models.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r bookingRepo) UpdatePaymentStatus(_ context.Context, id int, status models.BookingPaymentStatus) error {
	return r.s.write(func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return repositories.ErrBookingNotFound
		}
		b.PaymentStatus = status
		b.UpdatedAt = r.s.now()
		st.bookings[id] = b
		return nil
	})
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(_ context.Context, p *models.Payment) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.bookings[p.BookingID]; !ok {
			return repositories.ErrBookingNotFound
		}
		for _, existing := range st.payments {
			if existing.BookingID == p.BookingID {
				return repositories.ErrPaymentBookingConflict
			}
		}
		p.ID = st.nextID("payments")
		p.CreatedAt = r.s.now()
		st.payments[p.ID] = *p
		return nil
	})
}

func (r paymentRepo) GetByID(_ context.Context, id int) (*models.Payment, error) {
	return r.find(func(p models.Payment) bool { return p.ID == id })
}

func (r paymentRepo) GetByBookingID(_ context.Context, bookingID int) (*models.Payment, error) {
	return r.find(func(p models.Payment) bool { return p.BookingID == bookingID })
}

func (r paymentRepo) find(match func(models.Payment) bool) (*models.Payment, error) {
	var out *models.Payment
	err := r.s.read(func(st *state) error {
		for _, p := range st.payments {
			if match(p) {
				p := p
				out = &p
				return nil
			}
		}
		return repositories.ErrPaymentNotFound
	})
	return out, err
}

func (r paymentRepo) UpdateStatus(_ context.Context, id int, res repositories.PaymentResult) error {
	return r.s.write(func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return repositories.ErrPaymentNotFound
		}
		p.Status = res.Status
		if res.ProviderReference != nil {
			p.ProviderReference = res.ProviderReference
		}
		p.CompletedAt = res.CompletedAt
		st.payments[id] = p
		return nil
	})
}

type splitPaymentRepo struct{ s *Store }

func (r splitPaymentRepo) Create(_ context.Context, sp *models.SplitPayment) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.bookings[sp.BookingID]; !ok {
			return repositories.ErrBookingNotFound
		}
		sp.ID = st.nextID("split_payments")
		sp.CreatedAt = r.s.now()
		st.splits[sp.ID] = *sp
		return nil
	})
}

func (r splitPaymentRepo) GetByID(_ context.Context, id int) (*models.SplitPayment, error) {
	var out models.SplitPayment
	err := r.s.read(func(st *state) error {
		sp, ok := st.splits[id]
		if !ok {
			return repositories.ErrSplitPaymentNotFound
		}
		out = sp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r splitPaymentRepo) ListByBooking(_ context.Context, bookingID int) ([]models.SplitPayment, error) {
	out := make([]models.SplitPayment, 0)
	err := r.s.read(func(st *state) error {
		for _, sp := range st.splits {
			if sp.BookingID == bookingID {
				out = append(out, sp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r splitPaymentRepo) UpdateStatus(_ context.Context, id int, res repositories.PaymentResult) error {
	return r.s.write(func(st *state) error {
		sp, ok := st.splits[id]
		if !ok {
			return repositories.ErrSplitPaymentNotFound
		}
		sp.Status = res.Status
		if res.ProviderReference != nil {
			sp.ProviderReference = res.ProviderReference
		}
		sp.CompletedAt = res.CompletedAt
		st.splits[id] = sp
		return nil
	})
}

type payoutRepo struct{ s *Store }

func (r payoutRepo) Create(_ context.Context, p *models.ClubPayout) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.clubs[p.ClubID]; !ok {
			return repositories.ErrClubNotFound
		}
		if p.BookingID != nil {
			for _, existing := range st.payouts {
				if existing.BookingID != nil && *existing.BookingID == *p.BookingID {
					return repositories.ErrPayoutBookingConflict
				}
			}
		}
		p.ID = st.nextID("club_payouts")
		p.CreatedAt = r.s.now()
		p.UpdatedAt = p.CreatedAt
		st.payouts[p.ID] = *p
		return nil
	})
}

func (r payoutRepo) ListPendingByClub(_ context.Context, clubID int) ([]models.ClubPayout, error) {
	out := make([]models.ClubPayout, 0)
	err := r.s.read(func(st *state) error {
		for _, p := range st.payouts {
			if p.ClubID == clubID && p.Pending() {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r payoutRepo) MarkTransferred(_ context.Context, id int, previousOwed, previousTransferred decimal.Decimal, reference string) error {
	return r.s.write(func(st *state) error {
		p, ok := st.payouts[id]
		if !ok || !p.AmountOwed.Equal(previousOwed) || !p.AmountTransferred.Equal(previousTransferred) {
			return repositories.ErrPayoutStale
		}
		p.AmountTransferred = p.AmountOwed
		p.TransferReference = &reference
		p.UpdatedAt = r.s.now()
		st.payouts[id] = p
		return nil
	})
}
