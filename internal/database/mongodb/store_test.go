package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/models"
)

var _ database.Store = (*Store)(nil)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "op"))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments, "op"), database.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup, "create user"), database.ErrDuplicate)

	other := translate(errors.New("socket closed"), "create user")
	assert.EqualError(t, other, "failed to create user: socket closed")
}

func TestParseID(t *testing.T) {
	oid := bson.NewObjectID()
	got, err := parseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = parseID("not-an-object-id")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestMapPaymentDocToModel(t *testing.T) {
	paid := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := &paymentDoc{
		ID:        bson.NewObjectID(),
		OrderID:   "order_1",
		Amount:    199.99,
		Contact:   models.DefaultContact,
		Status:    models.PaymentStatusCompleted,
		Verified:  true,
		PaymentID: "pay_1",
		PaidAt:    &paid,
	}

	p := mapPaymentDocToModel(doc)
	assert.Equal(t, doc.ID.Hex(), p.ID)
	assert.Equal(t, 199.99, p.Amount)
	assert.Equal(t, &paid, p.PaidAt)
	assert.True(t, p.Verified)
}

// TestStore_Integration needs a replica set, e.g.
// MONGO_TEST_URI=mongodb://localhost:27017/?replicaSet=rs0
func TestStore_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	dbName := "devex_test_" + bson.NewObjectID().Hex()
	s, err := Connect(ctx, uri, dbName, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close(context.Background())
	})

	t.Run("rollback leaves no user", func(t *testing.T) {
		boom := errors.New("abort")
		err := s.RunInTx(ctx, func(ctx context.Context, r database.Repositories) error {
			if _, err := r.Users().Create(ctx, &models.User{Email: "rollback@example.com"}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Users().GetByEmail(ctx, "rollback@example.com")
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("commit creates user and account", func(t *testing.T) {
		err := s.RunInTx(ctx, func(ctx context.Context, r database.Repositories) error {
			u, err := r.Users().Create(ctx, &models.User{Email: "ada@example.com", FirstName: "Ada"})
			if err != nil {
				return err
			}
			_, err = r.Accounts().Create(ctx, &models.Account{UserID: u.ID, Provider: models.ProviderCredentials, ProviderAccountID: u.Email})
			return err
		})
		require.NoError(t, err)

		u, err := s.Users().GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		a, err := s.Accounts().GetByUserAndProvider(ctx, u.ID, models.ProviderCredentials, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, a.UserID)

		_, err = s.Users().Create(ctx, &models.User{Email: "ada@example.com"})
		assert.ErrorIs(t, err, database.ErrDuplicate)
	})

	t.Run("payment verification", func(t *testing.T) {
		_, err := s.Payments().Create(ctx, &models.Payment{OrderID: "order_it", Email: "ada@example.com", Status: models.PaymentStatusCreated})
		require.NoError(t, err)

		p, err := s.Payments().MarkVerified(ctx, "order_it", "pay_it", "sig", time.Now())
		require.NoError(t, err)
		assert.True(t, p.Verified)

		_, err = s.Payments().MarkVerified(ctx, "order_it", "pay_it", "sig", time.Now())
		assert.ErrorIs(t, err, database.ErrNotFound)

		latest, err := s.Payments().LatestVerifiedByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "order_it", latest.OrderID)
	})
}
