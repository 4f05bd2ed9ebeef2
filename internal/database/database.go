// Package database defines the persistence contract shared by the MongoDB,
// PostgreSQL and in-memory stores.
package database

import (
	"context"
	"errors"
	"time"

	"github.com/devextech/devex-api/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateName sets first and last name. Callers skip the call when
	// nothing changed.
	UpdateName(ctx context.Context, id, firstName, lastName string) error
}

type AccountRepository interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	GetByProvider(ctx context.Context, provider, providerAccountID string) (*models.Account, error)
	GetByUserAndProvider(ctx context.Context, userID, provider, providerAccountID string) (*models.Account, error)
	// GetByProviderAccountID finds an account by provider account id alone.
	GetByProviderAccountID(ctx context.Context, providerAccountID string) (*models.Account, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	// MarkVerified records the gateway confirmation on an unverified payment.
	MarkVerified(ctx context.Context, orderID, paymentID, signature string, paidAt time.Time) (*models.Payment, error)
	LatestVerifiedByEmail(ctx context.Context, email string) (*models.Payment, error)
	// DeleteUnverifiedBefore removes unverified payments created before cutoff.
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Repositories groups the repositories bound to one connection or
// transaction.
type Repositories interface {
	Users() UserRepository
	Accounts() AccountRepository
	Payments() PaymentRepository
}

// TxFunc runs inside a transaction. It must use the ctx and repos it is
// given.
type TxFunc func(ctx context.Context, repos Repositories) error

// Store is a database handle.
type Store interface {
	Repositories
	// RunInTx commits when fn returns nil and rolls back when fn returns an
	// error or panics. The underlying session is released on every path.
	RunInTx(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
