package payment

import (
	"net/http"
	"time"

	"github.com/devextech/devex-api/internal/apperr"
	"github.com/devextech/devex-api/internal/auth"
	"github.com/devextech/devex-api/internal/httputil"
	"github.com/devextech/devex-api/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateOrderResponse wraps the gateway order.
type CreateOrderResponse struct {
	Success bool   `json:"success"`
	Order   *Order `json:"order"`
}

// PaymentView is the public part of a verified Payment.
type PaymentView struct {
	ID        string     `json:"id"`
	OrderID   string     `json:"order_id"`
	PaymentID string     `json:"payment_id"`
	Amount    float64    `json:"amount"`
	Currency  string     `json:"currency"`
	Status    string     `json:"status"`
	Plan      string     `json:"plan"`
	PaidAt    *time.Time `json:"paid_at"`
}

func viewOf(p *models.Payment) PaymentView {
	return PaymentView{
		ID:        p.ID,
		OrderID:   p.OrderID,
		PaymentID: p.PaymentID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    p.Status,
		Plan:      p.Plan,
		PaidAt:    p.PaidAt,
	}
}

// VerifyPaymentResponse confirms a verified payment.
type VerifyPaymentResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Payment PaymentView `json:"payment"`
}

// CreateOrder handles checkout
// @Summary      Create a payment order
// @Description  Create a gateway order for the plan and record an unverified payment.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body CreateOrderRequest true "Checkout details"
// @Success      200 {object} CreateOrderResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing required fields or invalid amount"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Failed to create order"
// @Router       /create-order [post]
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, r, err, httputil.Flat)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		httputil.RespondError(w, r, err, httputil.Flat)
		return
	}

	httputil.RespondJSON(w, CreateOrderResponse{Success: true, Order: order}, http.StatusOK)
}

// VerifyPayment handles the gateway success callback
// @Summary      Verify a payment
// @Description  Check the gateway signature over order_id|payment_id and mark the payment completed.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body VerifyPaymentRequest true "Gateway confirmation"
// @Success      200 {object} VerifyPaymentResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing required fields or invalid signature"
// @Failure      404 {object} httputil.ErrorResponse "Payment record not found"
// @Failure      409 {object} httputil.ErrorResponse "Payment already verified"
// @Failure      500 {object} httputil.ErrorResponse "Failed to verify payment"
// @Router       /verify-payment [post]
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, r, err, httputil.Flat)
		return
	}

	p, err := h.service.VerifyPayment(r.Context(), req)
	if err != nil {
		httputil.RespondError(w, r, err, httputil.Flat)
		return
	}

	httputil.RespondJSON(w, VerifyPaymentResponse{
		Success: true,
		Message: "Payment verified successfully",
		Payment: viewOf(p),
	}, http.StatusOK)
}

// MyPurchase returns the signed-in user's latest verified purchase
// @Summary      Latest purchase
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope{data=PaymentView}
// @Failure      401 {object} httputil.Envelope "Unauthorized"
// @Failure      404 {object} httputil.Envelope "No verified purchases found"
// @Router       /my-purchase [get]
func (h *Handler) MyPurchase(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.GetUserEmailFromContext(r.Context())
	if !ok || email == "" {
		httputil.RespondError(w, r, apperr.Unauthorized("Authentication required").WithCode(httputil.CodeMissingAuth), httputil.Nested)
		return
	}

	p, err := h.service.LatestPurchase(r.Context(), email)
	if err != nil {
		httputil.RespondError(w, r, err, httputil.Nested)
		return
	}

	httputil.RespondData(w, viewOf(p), http.StatusOK)
}
