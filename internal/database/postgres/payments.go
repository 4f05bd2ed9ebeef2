package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/models"
)

type paymentRow struct {
	bun.BaseModel `bun:"table:payments,alias:p"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid"`
	OrderID   string     `bun:"order_id"`
	Currency  string     `bun:"currency"`
	Amount    float64    `bun:"amount"`
	Name      string     `bun:"name"`
	Email     string     `bun:"email"`
	Contact   string     `bun:"contact"`
	Plan      string     `bun:"plan"`
	Status    string     `bun:"status"`
	Verified  bool       `bun:"verified"`
	PaymentID string     `bun:"payment_id"`
	Signature string     `bun:"signature"`
	CreatedAt time.Time  `bun:"created_at"`
	PaidAt    *time.Time `bun:"paid_at"`
}

type paymentRepo struct {
	db bun.IDB
}

var _ database.PaymentRepository = (*paymentRepo)(nil)

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := &paymentRow{
		ID:        uuid.New(),
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

	if _, err := r.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		return nil, translate(err, "create payment")
	}

	return mapPaymentRowToModel(row), nil
}

func (r *paymentRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	row := new(paymentRow)
	if err := r.db.NewSelect().Model(row).Where("order_id = ?", orderID).Scan(ctx); err != nil {
		return nil, translate(err, "get payment by order id")
	}
	return mapPaymentRowToModel(row), nil
}

// MarkVerified flips an unverified payment to verified, then reads it back
// on the same connection or transaction.
func (r *paymentRepo) MarkVerified(ctx context.Context, orderID, paymentID, signature string, paidAt time.Time) (*models.Payment, error) {
	result, err := r.db.NewUpdate().
		Model((*paymentRow)(nil)).
		Set("payment_id = ?", paymentID).
		Set("signature = ?", signature).
		Set("status = ?", models.PaymentStatusCompleted).
		Set("paid_at = ?", paidAt.UTC()).
		Set("verified = ?", true).
		Where("order_id = ?", orderID).
		Where("verified = ?", false).
		Exec(ctx)
	if err != nil {
		return nil, translate(err, "mark payment verified")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, database.ErrNotFound
	}

	return r.GetByOrderID(ctx, orderID)
}

func (r *paymentRepo) LatestVerifiedByEmail(ctx context.Context, email string) (*models.Payment, error) {
	row := new(paymentRow)
	err := r.db.NewSelect().
		Model(row).
		Where("email = ?", email).
		Where("verified = ?", true).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err, "get latest verified payment")
	}
	return mapPaymentRowToModel(row), nil
}

func (r *paymentRepo) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.NewDelete().
		Model((*paymentRow)(nil)).
		Where("verified = ?", false).
		Where("created_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, translate(err, "delete unverified payments")
	}
	return result.RowsAffected()
}

func mapPaymentRowToModel(row *paymentRow) *models.Payment {
	return &models.Payment{
		ID:        row.ID.String(),
		OrderID:   row.OrderID,
		Currency:  row.Currency,
		Amount:    row.Amount,
		Name:      row.Name,
		Email:     row.Email,
		Contact:   row.Contact,
		Plan:      row.Plan,
		Status:    row.Status,
		Verified:  row.Verified,
		PaymentID: row.PaymentID,
		Signature: row.Signature,
		CreatedAt: row.CreatedAt,
		PaidAt:    row.PaidAt,
	}
}
