package models

import "time"

const (
	PaymentStatusCreated   = "created"
	PaymentStatusCompleted = "completed"
)

// DefaultContact is stored when a customer gives no phone number.
const DefaultContact = "0000000000"

// Payment records one gateway order and, once confirmed, its payment.
// Amount is in major currency units.
type Payment struct {
	ID        string     `json:"id"`
	OrderID   string     `json:"order_id"`
	Currency  string     `json:"currency"`
	Amount    float64    `json:"amount"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Contact   string     `json:"contact"`
	Plan      string     `json:"plan"`
	Status    string     `json:"status"`
	Verified  bool       `json:"verified"`
	PaymentID string     `json:"payment_id,omitempty"`
	Signature string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}
