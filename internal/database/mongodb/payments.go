package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/models"
)

type paymentDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	OrderID   string        `bson:"order_id"`
	Currency  string        `bson:"currency"`
	Amount    float64       `bson:"amount"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email,omitempty"`
	Contact   string        `bson:"contact"`
	Plan      string        `bson:"plan"`
	Status    string        `bson:"status"`
	Verified  bool          `bson:"verified"`
	PaymentID string        `bson:"payment_id,omitempty"`
	Signature string        `bson:"signature,omitempty"`
	CreatedAt time.Time     `bson:"created_at"`
	PaidAt    *time.Time    `bson:"paid_at,omitempty"`
}

type paymentRepo struct {
	coll *mongo.Collection
}

var _ database.PaymentRepository = (*paymentRepo)(nil)

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	doc := &paymentDoc{
		ID:        bson.NewObjectID(),
		OrderID:   p.OrderID,
		Currency:  p.Currency,
		Amount:    p.Amount,
		Name:      p.Name,
		Email:     p.Email,
		Contact:   p.Contact,
		Plan:      p.Plan,
		Status:    p.Status,
		Verified:  p.Verified,
		CreatedAt: createdAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, "create payment")
	}
	return mapPaymentDocToModel(doc), nil
}

func (r *paymentRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var doc paymentDoc
	if err := r.coll.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&doc); err != nil {
		return nil, translate(err, "get payment by order id")
	}
	return mapPaymentDocToModel(&doc), nil
}

func (r *paymentRepo) MarkVerified(ctx context.Context, orderID, paymentID, signature string, paidAt time.Time) (*models.Payment, error) {
	filter := bson.M{"order_id": orderID, "verified": false}
	update := bson.M{"$set": bson.M{
		"payment_id": paymentID,
		"signature":  signature,
		"status":     models.PaymentStatusCompleted,
		"paid_at":    paidAt.UTC(),
		"verified":   true,
	}}

	var doc paymentDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translate(err, "mark payment verified")
	}
	return mapPaymentDocToModel(&doc), nil
}

func (r *paymentRepo) LatestVerifiedByEmail(ctx context.Context, email string) (*models.Payment, error) {
	var doc paymentDoc
	err := r.coll.FindOne(ctx,
		bson.M{"email": email, "verified": true},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&doc)
	if err != nil {
		return nil, translate(err, "get latest verified payment")
	}
	return mapPaymentDocToModel(&doc), nil
}

func (r *paymentRepo) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{
		"verified":   false,
		"created_at": bson.M{"$lt": cutoff.UTC()},
	})
	if err != nil {
		return 0, translate(err, "delete unverified payments")
	}
	return res.DeletedCount, nil
}

func mapPaymentDocToModel(d *paymentDoc) *models.Payment {
	return &models.Payment{
		ID:        d.ID.Hex(),
		OrderID:   d.OrderID,
		Currency:  d.Currency,
		Amount:    d.Amount,
		Name:      d.Name,
		Email:     d.Email,
		Contact:   d.Contact,
		Plan:      d.Plan,
		Status:    d.Status,
		Verified:  d.Verified,
		PaymentID: d.PaymentID,
		Signature: d.Signature,
		CreatedAt: d.CreatedAt,
		PaidAt:    d.PaidAt,
	}
}
