package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/models"
)

var _ database.Store = (*Store)(nil)

func TestRunInTx_CommitsOnSuccess(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.RunInTx(ctx, func(ctx context.Context, r database.Repositories) error {
		u, err := r.Users().Create(ctx, &models.User{Email: "ada@example.com", FirstName: "Ada"})
		if err != nil {
			return err
		}
		_, err = r.Accounts().Create(ctx, &models.Account{UserID: u.ID, Provider: "credentials", ProviderAccountID: u.Email})
		return err
	})
	require.NoError(t, err)

	users, accounts, _ := s.Snapshot()
	assert.Len(t, users, 1)
	assert.Len(t, accounts, 1)

	commits, rollbacks := s.Stats()
	assert.Equal(t, 1, commits)
	assert.Equal(t, 0, rollbacks)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("account insert failed")
	s.FailNext("accounts.create", boom)

	err := s.RunInTx(ctx, func(ctx context.Context, r database.Repositories) error {
		u, err := r.Users().Create(ctx, &models.User{Email: "ada@example.com"})
		if err != nil {
			return err
		}
		_, err = r.Accounts().Create(ctx, &models.Account{UserID: u.ID, Provider: "credentials", ProviderAccountID: u.Email})
		return err
	})
	require.ErrorIs(t, err, boom)

	users, accounts, _ := s.Snapshot()
	assert.Empty(t, users)
	assert.Empty(t, accounts)

	_, rollbacks := s.Stats()
	assert.Equal(t, 1, rollbacks)
}

func TestRunInTx_RollsBackOnPanic(t *testing.T) {
	s := New()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.RunInTx(ctx, func(ctx context.Context, r database.Repositories) error {
			_, _ = r.Users().Create(ctx, &models.User{Email: "ada@example.com"})
			panic("unexpected")
		})
	})

	users, _, _ := s.Snapshot()
	assert.Empty(t, users)

	// lock released after the panic
	_, err := s.Users().GetByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRunInTx_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.RunInTx(ctx, func(ctx context.Context, r database.Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestUniqueConstraints(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.Users().Create(ctx, &models.User{Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = s.Users().Create(ctx, &models.User{Email: "ada@example.com"})
	assert.ErrorIs(t, err, database.ErrDuplicate)

	_, err = s.Accounts().Create(ctx, &models.Account{UserID: u.ID, Provider: "google", ProviderAccountID: "g-1"})
	require.NoError(t, err)
	_, err = s.Accounts().Create(ctx, &models.Account{UserID: u.ID, Provider: "google", ProviderAccountID: "g-1"})
	assert.ErrorIs(t, err, database.ErrDuplicate)

	_, err = s.Accounts().Create(ctx, &models.Account{UserID: "missing", Provider: "github", ProviderAccountID: "gh-1"})
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = s.Payments().Create(ctx, &models.Payment{OrderID: "order_1"})
	require.NoError(t, err)
	_, err = s.Payments().Create(ctx, &models.Payment{OrderID: "order_1"})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestPayments_VerifyAndPurge(t *testing.T) {
	s := New()
	ctx := context.Background()
	old := time.Now().Add(-96 * time.Hour)

	_, err := s.Payments().Create(ctx, &models.Payment{OrderID: "order_old", Email: "ada@example.com", CreatedAt: old})
	require.NoError(t, err)
	_, err = s.Payments().Create(ctx, &models.Payment{OrderID: "order_paid", Email: "ada@example.com", CreatedAt: old})
	require.NoError(t, err)
	_, err = s.Payments().Create(ctx, &models.Payment{OrderID: "order_new", Email: "ada@example.com"})
	require.NoError(t, err)

	paid, err := s.Payments().MarkVerified(ctx, "order_paid", "pay_1", "sig", time.Now())
	require.NoError(t, err)
	assert.True(t, paid.Verified)
	assert.Equal(t, models.PaymentStatusCompleted, paid.Status)

	_, err = s.Payments().MarkVerified(ctx, "order_paid", "pay_2", "sig", time.Now())
	assert.ErrorIs(t, err, database.ErrNotFound)

	latest, err := s.Payments().LatestVerifiedByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "order_paid", latest.OrderID)

	n, err := s.Payments().DeleteUnverifiedBefore(ctx, time.Now().Add(-72*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.Payments().GetByOrderID(ctx, "order_old")
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = s.Payments().GetByOrderID(ctx, "order_new")
	assert.NoError(t, err)
}
