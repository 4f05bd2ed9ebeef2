package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/models"
)

var _ database.Store = (*Store)(nil)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewStore(NewBunDB(sqlDB)), mock
}

func TestUsers_Create(t *testing.T) {
	s, mock := newStoreWithMock(t)
	id := uuid.New()

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name"}).
			AddRow(id.String(), "ada@example.com", "Ada"))

	got, err := s.Users().Create(context.Background(), &models.User{Email: "ada@example.com", FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, id.String(), got.ID)
	assert.Equal(t, "Ada", got.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_CreateDuplicate(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "users_email_key"`})

	_, err := s.Users().Create(context.Background(), &models.User{Email: "ada@example.com"})
	assert.ErrorIs(t, err, database.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_GetByEmailNotFound(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM "users" AS "u" WHERE .*email = 'ada@example.com'`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := s.Users().GetByEmail(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_GetByIDMalformed(t *testing.T) {
	s, mock := newStoreWithMock(t)

	_, err := s.Users().GetByID(context.Background(), "64b7f0c2a1")
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_UpdateNameNoRows(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectExec(`UPDATE "users"`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Users().UpdateName(context.Background(), uuid.NewString(), "Ada", "Lovelace")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRunInTx_Commit(t *testing.T) {
	s, mock := newStoreWithMock(t)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(userID.String(), "ada@example.com"))
	mock.ExpectQuery(`INSERT INTO "accounts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(uuid.NewString(), userID.String()))
	mock.ExpectCommit()

	err := s.RunInTx(context.Background(), func(ctx context.Context, r database.Repositories) error {
		u, err := r.Users().Create(ctx, &models.User{Email: "ada@example.com"})
		if err != nil {
			return err
		}
		_, err = r.Accounts().Create(ctx, &models.Account{
			UserID:            u.ID,
			Type:              models.AccountTypeCredentials,
			Provider:          models.ProviderCredentials,
			ProviderAccountID: u.Email,
			PasswordHash:      "$2a$12$hash",
		})
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	s, mock := newStoreWithMock(t)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
	mock.ExpectQuery(`INSERT INTO "accounts"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.RunInTx(context.Background(), func(ctx context.Context, r database.Repositories) error {
		u, err := r.Users().Create(ctx, &models.User{Email: "ada@example.com"})
		if err != nil {
			return err
		}
		_, err = r.Accounts().Create(ctx, &models.Account{UserID: u.ID, Provider: models.ProviderCredentials, ProviderAccountID: u.Email})
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = s.RunInTx(context.Background(), func(ctx context.Context, r database.Repositories) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccounts_CreateMissingUser(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`INSERT INTO "accounts"`).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := s.Accounts().Create(context.Background(), &models.Account{UserID: uuid.NewString(), Provider: "google", ProviderAccountID: "g-1"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestPayments_MarkVerified(t *testing.T) {
	t.Run("already verified or missing", func(t *testing.T) {
		s, mock := newStoreWithMock(t)
		mock.ExpectExec(`UPDATE "payments"`).WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := s.Payments().MarkVerified(context.Background(), "order_1", "pay_1", "sig", time.Now())
		assert.ErrorIs(t, err, database.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("updates then reads back", func(t *testing.T) {
		s, mock := newStoreWithMock(t)
		mock.ExpectExec(`UPDATE "payments" .*verified = TRUE`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT .* FROM "payments" AS "p" WHERE .*order_id = 'order_1'`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "status", "verified", "payment_id"}).
				AddRow(uuid.NewString(), "order_1", models.PaymentStatusCompleted, true, "pay_1"))

		p, err := s.Payments().MarkVerified(context.Background(), "order_1", "pay_1", "sig", time.Now())
		require.NoError(t, err)
		assert.True(t, p.Verified)
		assert.Equal(t, "pay_1", p.PaymentID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPayments_DeleteUnverifiedBefore(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectExec(`DELETE FROM "payments"`).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.Payments().DeleteUnverifiedBefore(context.Background(), time.Now().Add(-72*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "op"))
	assert.ErrorIs(t, translate(errors.New("pq: duplicate key value violates unique constraint \"x\""), "op"), database.ErrDuplicate)
	assert.EqualError(t, translate(errors.New("timeout"), "create payment"), "failed to create payment: timeout")
}
