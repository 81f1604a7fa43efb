// Package memstore is an in-memory repositories.Store used for local runs
// without a database and by service tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/Dosada05/padel-club/models"
	"github.com/Dosada05/padel-club/repositories"
)

type state struct {
	seq           map[string]int
	clubs         map[int]models.Club
	users         map[int]models.User
	tournaments   map[int]models.Tournament
	rounds        map[int]models.Round
	matches       map[int]models.Match
	registrations map[int]models.Registration
	bookings      map[int]models.Booking
	payments      map[int]models.Payment
	splits        map[int]models.SplitPayment
	payouts       map[int]models.ClubPayout
}

func newState() *state {
	return &state{
		seq:           make(map[string]int),
		clubs:         make(map[int]models.Club),
		users:         make(map[int]models.User),
		tournaments:   make(map[int]models.Tournament),
		rounds:        make(map[int]models.Round),
		matches:       make(map[int]models.Match),
		registrations: make(map[int]models.Registration),
		bookings:      make(map[int]models.Booking),
		payments:      make(map[int]models.Payment),
		splits:        make(map[int]models.SplitPayment),
		payouts:       make(map[int]models.ClubPayout),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies the tables. Rows are values; pointer fields are never mutated in place.
func (st *state) clone() *state {
	return &state{
		seq:           cloneMap(st.seq),
		clubs:         cloneMap(st.clubs),
		users:         cloneMap(st.users),
		tournaments:   cloneMap(st.tournaments),
		rounds:        cloneMap(st.rounds),
		matches:       cloneMap(st.matches),
		registrations: cloneMap(st.registrations),
		bookings:      cloneMap(st.bookings),
		payments:      cloneMap(st.payments),
		splits:        cloneMap(st.splits),
		payouts:       cloneMap(st.payouts),
	}
}

func (st *state) nextID(table string) int {
	st.seq[table]++
	return st.seq[table]
}

// Store keeps all rows in memory. Transactions are serialised: WithinTx holds
// the write lock, works on a copy of the tables and swaps it in on success.
type Store struct {
	mu   *sync.RWMutex
	data *state
	inTx bool
	now  func() time.Time
}

var _ repositories.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		mu:   &sync.RWMutex{},
		data: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) read(fn func(st *state) error) error {
	if s.inTx {
		return fn(s.data)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *Store) write(fn func(st *state) error) error {
	if s.inTx {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, data: s.data.clone(), inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) Clubs() repositories.ClubRepository                 { return clubRepo{s} }
func (s *Store) Users() repositories.UserRepository                 { return userRepo{s} }
func (s *Store) Tournaments() repositories.TournamentRepository     { return tournamentRepo{s} }
func (s *Store) Rounds() repositories.RoundRepository               { return roundRepo{s} }
func (s *Store) Matches() repositories.MatchRepository              { return matchRepo{s} }
func (s *Store) Registrations() repositories.RegistrationRepository { return registrationRepo{s} }
func (s *Store) Bookings() repositories.BookingRepository           { return bookingRepo{s} }
func (s *Store) Payments() repositories.PaymentRepository           { return paymentRepo{s} }
func (s *Store) SplitPayments() repositories.SplitPaymentRepository { return splitPaymentRepo{s} }
func (s *Store) Payouts() repositories.PayoutRepository             { return payoutRepo{s} }
