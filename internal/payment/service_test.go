package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devextech/devex-api/internal/apperr"
	"github.com/devextech/devex-api/internal/database/memory"
	"github.com/devextech/devex-api/internal/logging"
	"github.com/devextech/devex-api/internal/models"
)

const testSecret = "rzp_test_secret"

type fakeGateway struct {
	mu    sync.Mutex
	calls []OrderRequest
	err   error
	seq   int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	g.seq++
	return &Order{
		ID:        "order_" + string(rune('A'+g.seq-1)),
		Entity:    "order",
		Amount:    req.Amount,
		AmountDue: req.Amount,
		Currency:  req.Currency,
		Receipt:   req.Receipt,
		Status:    "created",
		Notes:     req.Notes,
	}, nil
}

type fakeReceipts struct {
	sent chan *models.Payment
}

func (f *fakeReceipts) SendPaymentReceipt(ctx context.Context, p *models.Payment) error {
	f.sent <- p
	return nil
}

func newTestService(t *testing.T) (*Service, *memory.Store, *fakeGateway, *fakeReceipts) {
	t.Helper()
	store := memory.New()
	gw := &fakeGateway{}
	receipts := &fakeReceipts{sent: make(chan *models.Payment, 4)}
	svc := NewService(store, gw, testSecret, receipts, logging.NewLogger(false))
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, store, gw, receipts
}

func validOrder() CreateOrderRequest {
	return CreateOrderRequest{Amount: "499.99", Currency: "INR", Name: "Ada Lovelace", Email: "ada@example.com", Plan: "growth"}
}

func requireKind(t *testing.T, err error, kind apperr.Kind, message string) *apperr.Error {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, kind, appErr.Kind)
	assert.Equal(t, message, appErr.Message)
	return appErr
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		in    string
		minor int64
		ok    bool
	}{
		{"499.99", 49999, true},
		{"1", 100, true},
		{" 10.50 ", 1050, true},
		{"0.001", 0, false},
		{"0", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"", 0, false},
		{"1000000", 100000000, true},
		{"92233720368547758.08", 0, false},
	}
	for _, tt := range tests {
		_, minor, ok := ToMinorUnits(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.minor, minor, tt.in)
	}
}

func TestCreateOrder(t *testing.T) {
	svc, store, gw, _ := newTestService(t)

	order, err := svc.CreateOrder(context.Background(), validOrder())
	require.NoError(t, err)
	assert.Equal(t, "order_A", order.ID)
	assert.Equal(t, int64(49999), order.Amount)

	require.Len(t, gw.calls, 1)
	call := gw.calls[0]
	assert.Equal(t, "receipt_1777636800000", call.Receipt)
	assert.Equal(t, Notes{
		"plan":             "growth",
		"customer_name":    "Ada Lovelace",
		"customer_email":   "ada@example.com",
		"customer_contact": models.DefaultContact,
	}, call.Notes)

	_, _, payments := store.Snapshot()
	require.Len(t, payments, 1)
	p := payments[0]
	assert.Equal(t, "order_A", p.OrderID)
	assert.Equal(t, 499.99, p.Amount)
	assert.Equal(t, models.DefaultContact, p.Contact)
	assert.Equal(t, models.PaymentStatusCreated, p.Status)
	assert.False(t, p.Verified)
}

func TestCreateOrder_Rejections(t *testing.T) {
	tests := []struct {
		name string
		edit func(*CreateOrderRequest)
		msg  string
	}{
		{"missing amount", func(r *CreateOrderRequest) { r.Amount = "" }, "Missing required fields"},
		{"missing currency", func(r *CreateOrderRequest) { r.Currency = " " }, "Missing required fields"},
		{"missing name", func(r *CreateOrderRequest) { r.Name = "" }, "Missing required fields"},
		{"missing plan", func(r *CreateOrderRequest) { r.Plan = "" }, "Missing required fields"},
		{"non numeric amount", func(r *CreateOrderRequest) { r.Amount = "abc" }, "Invalid amount"},
		{"zero amount", func(r *CreateOrderRequest) { r.Amount = "0" }, "Invalid amount"},
		{"negative amount", func(r *CreateOrderRequest) { r.Amount = "-10" }, "Invalid amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, gw, _ := newTestService(t)
			req := validOrder()
			tt.edit(&req)

			_, err := svc.CreateOrder(context.Background(), req)
			requireKind(t, err, apperr.KindValidation, tt.msg)

			assert.Empty(t, gw.calls)
			_, _, payments := store.Snapshot()
			assert.Empty(t, payments)
		})
	}
}

func TestCreateOrder_GatewayFailure(t *testing.T) {
	svc, store, gw, _ := newTestService(t)
	gw.err = &GatewayError{StatusCode: 401, Code: "BAD_REQUEST_ERROR", Description: "Authentication failed"}

	_, err := svc.CreateOrder(context.Background(), validOrder())
	appErr := requireKind(t, err, apperr.KindInfrastructure, "Failed to create order")
	assert.Equal(t, "Authentication failed", appErr.Details)

	_, _, payments := store.Snapshot()
	assert.Empty(t, payments)
}

func TestCreateOrder_GatewayUnreachable(t *testing.T) {
	svc, _, gw, _ := newTestService(t)
	gw.err = errors.New("dial tcp 10.0.0.1:443: connect: connection refused")

	_, err := svc.CreateOrder(context.Background(), validOrder())
	appErr := requireKind(t, err, apperr.KindInfrastructure, "Failed to create order")
	assert.Equal(t, "Payment gateway unavailable", appErr.Details)
}

func TestCreateOrder_StoreFailureLeavesNoRow(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.FailNext("payments.create", errors.New("not primary"))

	_, err := svc.CreateOrder(context.Background(), validOrder())
	appErr := requireKind(t, err, apperr.KindInfrastructure, "Failed to create order")
	assert.Equal(t, "Could not record order", appErr.Details)

	_, _, payments := store.Snapshot()
	assert.Empty(t, payments)
}

func createdOrder(t *testing.T, svc *Service) *Order {
	t.Helper()
	order, err := svc.CreateOrder(context.Background(), validOrder())
	require.NoError(t, err)
	return order
}

func TestVerifyPayment(t *testing.T) {
	svc, store, _, receipts := newTestService(t)
	order := createdOrder(t, svc)

	p, err := svc.VerifyPayment(context.Background(), VerifyPaymentRequest{
		PaymentID: "pay_1",
		OrderID:   order.ID,
		Signature: Sign(testSecret, order.ID, "pay_1"),
	})
	require.NoError(t, err)
	assert.True(t, p.Verified)
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
	assert.Equal(t, "pay_1", p.PaymentID)
	require.NotNil(t, p.PaidAt)
	assert.Equal(t, svc.now().UTC(), *p.PaidAt)

	_, _, payments := store.Snapshot()
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Verified)

	select {
	case sent := <-receipts.sent:
		assert.Equal(t, order.ID, sent.OrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("receipt not sent")
	}
}

func TestVerifyPayment_InvalidSignatureTouchesNothing(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	order := createdOrder(t, svc)
	commits, _ := store.Stats()

	_, err := svc.VerifyPayment(context.Background(), VerifyPaymentRequest{
		PaymentID: "pay_1",
		OrderID:   order.ID,
		Signature: Sign("wrong-secret", order.ID, "pay_1"),
	})
	requireKind(t, err, apperr.KindDeclined, "Invalid signature")

	after, rollbacks := store.Stats()
	assert.Equal(t, commits, after)
	assert.Zero(t, rollbacks)
	_, _, payments := store.Snapshot()
	assert.False(t, payments[0].Verified)
}

func TestVerifyPayment_MissingFields(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.VerifyPayment(context.Background(), VerifyPaymentRequest{OrderID: "order_A"})
	appErr := requireKind(t, err, apperr.KindValidation, "Missing required fields")
	assert.Contains(t, appErr.Fields, "razorpay_payment_id")
	assert.Contains(t, appErr.Fields, "razorpay_signature")
}

func TestVerifyPayment_UnknownOrder(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.VerifyPayment(context.Background(), VerifyPaymentRequest{
		PaymentID: "pay_1",
		OrderID:   "order_forged",
		Signature: Sign(testSecret, "order_forged", "pay_1"),
	})
	requireKind(t, err, apperr.KindNotFound, "Payment record not found")
}

func TestVerifyPayment_Repeat(t *testing.T) {
	svc, _, _, receipts := newTestService(t)
	order := createdOrder(t, svc)
	req := VerifyPaymentRequest{PaymentID: "pay_1", OrderID: order.ID, Signature: Sign(testSecret, order.ID, "pay_1")}

	first, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)
	<-receipts.sent

	second, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other := VerifyPaymentRequest{PaymentID: "pay_2", OrderID: order.ID, Signature: Sign(testSecret, order.ID, "pay_2")}
	_, err = svc.VerifyPayment(context.Background(), other)
	requireKind(t, err, apperr.KindConflict, "Payment already verified with a different payment id")

	select {
	case <-receipts.sent:
		t.Fatal("receipt sent twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestVerifyPayment_StoreFailureRollsBack(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	order := createdOrder(t, svc)
	store.FailNext("payments.markverified", errors.New("write conflict"))

	_, err := svc.VerifyPayment(context.Background(), VerifyPaymentRequest{
		PaymentID: "pay_1", OrderID: order.ID, Signature: Sign(testSecret, order.ID, "pay_1"),
	})
	requireKind(t, err, apperr.KindInfrastructure, "Failed to verify payment")

	_, _, payments := store.Snapshot()
	assert.False(t, payments[0].Verified)
}

func TestLatestPurchase(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.LatestPurchase(context.Background(), "ada@example.com")
	requireKind(t, err, apperr.KindNotFound, "No verified purchases found.")

	order := createdOrder(t, svc)
	_, err = svc.VerifyPayment(context.Background(), VerifyPaymentRequest{
		PaymentID: "pay_1", OrderID: order.ID, Signature: Sign(testSecret, order.ID, "pay_1"),
	})
	require.NoError(t, err)

	p, err := svc.LatestPurchase(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, order.ID, p.OrderID)
}

func TestPurgeAbandoned(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	now := svc.now()

	_, err := store.Payments().Create(ctx, &models.Payment{OrderID: "order_old", CreatedAt: now.Add(-96 * time.Hour)})
	require.NoError(t, err)
	_, err = store.Payments().Create(ctx, &models.Payment{OrderID: "order_new", CreatedAt: now.Add(-time.Hour)})
	require.NoError(t, err)

	n, err := svc.PurgeAbandoned(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, _, payments := store.Snapshot()
	require.Len(t, payments, 1)
	assert.Equal(t, "order_new", payments[0].OrderID)

	_, err = svc.PurgeAbandoned(ctx, 0)
	assert.Error(t, err)
}
