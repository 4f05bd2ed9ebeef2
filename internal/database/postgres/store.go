package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/devextech/devex-api/internal/database"
)

// Store is a database.Store on a bun.DB.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() database.UserRepository       { return &userRepo{db: s.db} }
func (s *Store) Accounts() database.AccountRepository { return &accountRepo{db: s.db} }
func (s *Store) Payments() database.PaymentRepository { return &paymentRepo{db: s.db} }

// RunInTx runs fn in a bun transaction; bun rolls back on error or panic.
func (s *Store) RunInTx(ctx context.Context, fn database.TxFunc) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, txRepos{tx: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

// DB exposes the underlying handle for migrations.
func (s *Store) DB() *bun.DB {
	return s.db
}

type txRepos struct {
	tx bun.Tx
}

func (r txRepos) Users() database.UserRepository       { return &userRepo{db: r.tx} }
func (r txRepos) Accounts() database.AccountRepository { return &accountRepo{db: r.tx} }
func (r txRepos) Payments() database.PaymentRepository { return &paymentRepo{db: r.tx} }

// parseID rejects ids that can never match a row.
func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, database.ErrNotFound
	}
	return u, nil
}
