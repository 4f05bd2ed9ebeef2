package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/models"
)

type userDoc struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	FirstName    string        `bson:"firstName"`
	LastName     string        `bson:"lastName"`
	Email        string        `bson:"email"`
	Contact      string        `bson:"contact,omitempty"`
	Organization string        `bson:"organization,omitempty"`
	Address      string        `bson:"address,omitempty"`
	Image        string        `bson:"image,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
}

type userRepo struct {
	coll *mongo.Collection
}

var _ database.UserRepository = (*userRepo)(nil)

func (r *userRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	doc := &userDoc{
		ID:           bson.NewObjectID(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Contact:      u.Contact,
		Organization: u.Organization,
		Address:      u.Address,
		Image:        u.Image,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, "create user")
	}
	return mapUserDocToModel(doc), nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, "get user by id")
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "get user by email")
}

func (r *userRepo) UpdateName(ctx context.Context, id, firstName, lastName string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"firstName": firstName,
		"lastName":  lastName,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return translate(err, "update user name")
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M, op string) (*models.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err, op)
	}
	return mapUserDocToModel(&doc), nil
}

func mapUserDocToModel(d *userDoc) *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		Contact:      d.Contact,
		Organization: d.Organization,
		Address:      d.Address,
		Image:        d.Image,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
