package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/models"
)

type accountDoc struct {
	ID                bson.ObjectID `bson:"_id,omitempty"`
	UserID            bson.ObjectID `bson:"userId"`
	Type              string        `bson:"type"`
	Provider          string        `bson:"provider"`
	ProviderAccountID string        `bson:"providerAccountId"`
	Name              string        `bson:"name,omitempty"`
	Password          string        `bson:"password,omitempty"`
	CreatedAt         time.Time     `bson:"createdAt"`
	UpdatedAt         time.Time     `bson:"updatedAt"`
}

type accountRepo struct {
	coll *mongo.Collection
}

var _ database.AccountRepository = (*accountRepo)(nil)

func (r *accountRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	userID, err := parseID(a.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &accountDoc{
		ID:                bson.NewObjectID(),
		UserID:            userID,
		Type:              a.Type,
		Provider:          a.Provider,
		ProviderAccountID: a.ProviderAccountID,
		Name:              a.Name,
		Password:          a.PasswordHash,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, "create account")
	}
	return mapAccountDocToModel(doc), nil
}

func (r *accountRepo) GetByProvider(ctx context.Context, provider, providerAccountID string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{
		"provider":          provider,
		"providerAccountId": providerAccountID,
	}, "get account by provider")
}

func (r *accountRepo) GetByUserAndProvider(ctx context.Context, userID, provider, providerAccountID string) (*models.Account, error) {
	oid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{
		"userId":            oid,
		"provider":          provider,
		"providerAccountId": providerAccountID,
	}, "get account by user and provider")
}

func (r *accountRepo) GetByProviderAccountID(ctx context.Context, providerAccountID string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"providerAccountId": providerAccountID}, "get account by provider account id")
}

func (r *accountRepo) findOne(ctx context.Context, filter bson.M, op string) (*models.Account, error) {
	var doc accountDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err, op)
	}
	return mapAccountDocToModel(&doc), nil
}

func mapAccountDocToModel(d *accountDoc) *models.Account {
	return &models.Account{
		ID:                d.ID.Hex(),
		UserID:            d.UserID.Hex(),
		Type:              d.Type,
		Provider:          d.Provider,
		ProviderAccountID: d.ProviderAccountID,
		Name:              d.Name,
		PasswordHash:      d.Password,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
