// Package payment creates gateway orders and verifies the payment
// confirmations clients send back.
package payment

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/devextech/devex-api/internal/apperr"
	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/httputil"
	"github.com/devextech/devex-api/internal/logging"
	"github.com/devextech/devex-api/internal/models"
	"github.com/devextech/devex-api/internal/validation"
)

const (
	msgMissingFields    = "Missing required fields"
	msgInvalidAmount    = "Invalid amount"
	msgCreateFailed     = "Failed to create order"
	msgVerifyFailed     = "Failed to verify payment"
	msgInvalidSignature = "Invalid signature"
	msgPaymentNotFound  = "Payment record not found"
	msgAlreadyVerified  = "Payment already verified with a different payment id"
	msgNoPurchase       = "No verified purchases found."
	receiptEmailTimeout = 30 * time.Second

	detailGatewayDown    = "Payment gateway unavailable"
	detailGatewayTimeout = "Payment gateway timed out"
	detailRecordFailed   = "Could not record order"
)

// ReceiptSender mails payment receipts. Implemented by email.Service.
type ReceiptSender interface {
	SendPaymentReceipt(ctx context.Context, p *models.Payment) error
}

type Service struct {
	store     database.Store
	gateway   Gateway
	keySecret string
	receipts  ReceiptSender
	logger    *logging.Logger
	now       func() time.Time
}

// NewService builds a Service. receipts may be nil.
func NewService(store database.Store, gateway Gateway, keySecret string, receipts ReceiptSender, logger *logging.Logger) *Service {
	return &Service{
		store:     store,
		gateway:   gateway,
		keySecret: keySecret,
		receipts:  receipts,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateOrderRequest is the checkout form. Amount is in major units and may
// be sent as a string or a number.
type CreateOrderRequest struct {
	Amount   httputil.FlexString `json:"amount" validate:"required" label:"Amount"`
	Currency string              `json:"currency" validate:"required" label:"Currency"`
	Name     string              `json:"name" validate:"required" label:"Name"`
	Email    string              `json:"email,omitempty"`
	Contact  httputil.FlexString `json:"contact,omitempty"`
	Plan     string              `json:"plan" validate:"required" label:"Plan"`
}

// VerifyPaymentRequest is what the gateway widget hands the client.
type VerifyPaymentRequest struct {
	PaymentID string `json:"razorpay_payment_id" validate:"required" label:"Payment ID"`
	OrderID   string `json:"razorpay_order_id" validate:"required" label:"Order ID"`
	Signature string `json:"razorpay_signature" validate:"required" label:"Signature"`
}

// validateRequired reports any missing field as "Missing required fields",
// keeping the per-field messages as details.
func validateRequired(req any) error {
	err := validation.Struct(req)
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return apperr.Validation(msgMissingFields, appErr.Fields).WithCode(httputil.CodeMissingFields)
	}
	return err
}

// ToMinorUnits converts a decimal major-unit amount to an integer number of
// minor units, rounding half away from zero.
func ToMinorUnits(amount string) (major float64, minor int64, ok bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, 0, false
	}
	m := math.Round(f * 100)
	if m <= 0 || m >= math.MaxInt64 {
		return 0, 0, false
	}
	return f, int64(m), true
}

// CreateOrder creates the gateway order, then records the unverified
// Payment. The gateway is called outside the transaction so a retried
// transaction never creates a second order.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	logger := logging.GetLoggerFromContext(ctx)

	req.Currency = strings.TrimSpace(req.Currency)
	req.Name = strings.TrimSpace(req.Name)
	req.Plan = strings.TrimSpace(req.Plan)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequired(&req); err != nil {
		return nil, err
	}

	major, minor, ok := ToMinorUnits(req.Amount.String())
	if !ok {
		return nil, apperr.Validation(msgInvalidAmount, map[string][]string{"amount": {msgInvalidAmount}}).
			WithCode(httputil.CodeInvalidAmount)
	}

	contact := strings.TrimSpace(req.Contact.String())
	if contact == "" {
		contact = models.DefaultContact
	}

	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		Amount:   minor,
		Currency: req.Currency,
		Receipt:  "receipt_" + strconv.FormatInt(s.now().UnixMilli(), 10),
		Notes: Notes{
			"plan":             req.Plan,
			"customer_name":    req.Name,
			"customer_email":   req.Email,
			"customer_contact": contact,
		},
	})
	if err != nil {
		details := detailGatewayDown
		var gwErr *GatewayError
		if errors.As(err, &gwErr) && gwErr.Description != "" {
			details = gwErr.Description
		} else if errors.Is(err, context.DeadlineExceeded) {
			details = detailGatewayTimeout
		}
		return nil, apperr.Internal(msgCreateFailed, err).
			WithCode(httputil.CodeGatewayUnavailable).
			WithDetails(details)
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		_, err := repos.Payments().Create(ctx, &models.Payment{
			OrderID:  order.ID,
			Currency: req.Currency,
			Amount:   major,
			Name:     req.Name,
			Email:    req.Email,
			Contact:  contact,
			Plan:     req.Plan,
			Status:   models.PaymentStatusCreated,
		})
		return err
	})
	if err != nil {
		// the gateway order is left unpaid and expires on its own
		logger.Error("failed to record payment for gateway order", "order_id", order.ID, "error", err.Error())
		return nil, apperr.Internal(msgCreateFailed, err).WithDetails(detailRecordFailed)
	}

	logger.Info("order created", "order_id", order.ID, "plan", req.Plan, "amount_minor", minor)
	return order, nil
}

// VerifyPayment checks the gateway signature and marks the Payment
// verified. A repeated call with the same payment id returns the stored
// record unchanged.
func (s *Service) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*models.Payment, error) {
	logger := logging.GetLoggerFromContext(ctx)

	req.PaymentID = strings.TrimSpace(req.PaymentID)
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.Signature = strings.TrimSpace(req.Signature)
	if err := validateRequired(&req); err != nil {
		return nil, err
	}

	if !VerifySignature(s.keySecret, req.OrderID, req.PaymentID, req.Signature) {
		logger.Warn("payment signature mismatch", "order_id", req.OrderID)
		return nil, apperr.Declined(msgInvalidSignature).WithCode(httputil.CodeInvalidSignature)
	}

	var (
		result *models.Payment
		fresh  bool
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		fresh = false
		p, err := repos.Payments().GetByOrderID(ctx, req.OrderID)
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound(msgPaymentNotFound).WithCode(httputil.CodePaymentNotFound)
		}
		if err != nil {
			return err
		}

		if p.Verified {
			if p.PaymentID != req.PaymentID {
				return apperr.Conflict(msgAlreadyVerified).WithCode(httputil.CodeAlreadyVerified)
			}
			result = p
			return nil
		}

		updated, err := repos.Payments().MarkVerified(ctx, req.OrderID, req.PaymentID, req.Signature, s.now().UTC())
		if err != nil {
			return err
		}
		result, fresh = updated, true
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperr.Internal(msgVerifyFailed, err)
	}

	if fresh {
		logger.Info("payment verified", "order_id", result.OrderID, "payment_id", result.PaymentID)
		s.sendReceipt(result)
	}
	return result, nil
}

func (s *Service) sendReceipt(p *models.Payment) {
	if s.receipts == nil || p.Email == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), receiptEmailTimeout)
		defer cancel()
		ctx = logging.ContextWithLogger(ctx, s.logger)
		if err := s.receipts.SendPaymentReceipt(ctx, p); err != nil {
			s.logger.Warn("payment receipt email failed", "order_id", p.OrderID, "error", err.Error())
		}
	}()
}

// LatestPurchase returns the most recent verified Payment for email.
func (s *Service) LatestPurchase(ctx context.Context, email string) (*models.Payment, error) {
	p, err := s.store.Payments().LatestVerifiedByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound(msgNoPurchase).WithCode(httputil.CodePaymentNotFound)
		}
		return nil, apperr.Internal("Failed to load purchase", err)
	}
	return p, nil
}

// PurgeAbandoned deletes unverified payments created more than olderThan ago.
func (s *Service) PurgeAbandoned(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("older-than must be positive")
	}
	cutoff := s.now().Add(-olderThan)

	var n int64
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		var err error
		n, err = repos.Payments().DeleteUnverifiedBefore(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, err
	}

	logging.GetLoggerFromContext(ctx).Info("purged abandoned payments", "deleted", n, "cutoff", cutoff)
	return n, nil
}
