// Package memory is a transactional in-memory database.Store for tests and
// local development.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/models"
)

type state struct {
	users    map[string]models.User
	accounts map[string]models.Account
	payments map[string]models.Payment
}

func newState() *state {
	return &state{
		users:    make(map[string]models.User),
		accounts: make(map[string]models.Account),
		payments: make(map[string]models.Payment),
	}
}

func (s *state) clone() *state {
	return &state{
		users:    maps.Clone(s.users),
		accounts: maps.Clone(s.accounts),
		payments: maps.Clone(s.payments),
	}
}

// Store keeps all data in maps guarded by one mutex. A transaction holds the
// mutex for its whole duration and works on a copy that replaces the live
// data only on commit, so calling the Store's own repositories from inside
// RunInTx deadlocks; use the repositories passed to the TxFunc.
type Store struct {
	mu     sync.Mutex
	data   *state
	faults map[string]error

	commits   int
	rollbacks int
}

func New() *Store {
	return &Store{data: newState(), faults: make(map[string]error)}
}

// FailNext makes the next call of op return err. op names are
// "<collection>.<method>", e.g. "accounts.create" or "payments.markverified".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// Stats returns the number of committed and rolled back transactions.
func (s *Store) Stats() (commits, rollbacks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits, s.rollbacks
}

func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

func (s *Store) Users() database.UserRepository {
	return &userRepo{tx: s.autocommit()}
}

func (s *Store) Accounts() database.AccountRepository {
	return &accountRepo{tx: s.autocommit()}
}

func (s *Store) Payments() database.PaymentRepository {
	return &paymentRepo{tx: s.autocommit()}
}

func (s *Store) RunInTx(ctx context.Context, fn database.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	committed := false
	defer func() {
		if !committed {
			s.rollbacks++
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	b := &binding{store: s, locked: true, data: func() *state { return work }}
	if err := fn(ctx, &repos{b: b}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.data = work
	s.commits++
	committed = true
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}

// Snapshot returns copies of everything stored, for assertions.
func (s *Store) Snapshot() (users []models.User, accounts []models.Account, payments []models.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		users = append(users, u)
	}
	for _, a := range s.data.accounts {
		accounts = append(accounts, a)
	}
	for _, p := range s.data.payments {
		payments = append(payments, p)
	}
	return users, accounts, payments
}

func (s *Store) autocommit() *binding {
	return &binding{store: s, data: func() *state { return s.data }}
}

// binding ties repositories to either the live data (taking the lock per
// call) or a transaction's working copy (lock already held).
type binding struct {
	store  *Store
	locked bool
	data   func() *state
}

func (b *binding) do(op string, fn func(st *state) error) error {
	if !b.locked {
		b.store.mu.Lock()
		defer b.store.mu.Unlock()
	}
	if err := b.store.fault(op); err != nil {
		return err
	}
	return fn(b.data())
}

type repos struct {
	b *binding
}

func (r *repos) Users() database.UserRepository       { return &userRepo{tx: r.b} }
func (r *repos) Accounts() database.AccountRepository { return &accountRepo{tx: r.b} }
func (r *repos) Payments() database.PaymentRepository { return &paymentRepo{tx: r.b} }
