package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRazorpayClient_CreateOrder(t *testing.T) {
	var got OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_Nx1","entity":"order","amount":49999,"amount_paid":0,"amount_due":49999,
			"currency":"INR","receipt":"receipt_1","status":"created","attempts":0,
			"notes":{"plan":"growth"},"created_at":1767225600}`))
	}))
	defer srv.Close()

	c := NewRazorpayClient("rzp_test_key", "secret", srv.URL+"/", 5*time.Second)
	order, err := c.CreateOrder(context.Background(), OrderRequest{
		Amount:   49999,
		Currency: "INR",
		Receipt:  "receipt_1",
		Notes:    Notes{"plan": "growth"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(49999), got.Amount)
	assert.Equal(t, "growth", got.Notes["plan"])

	assert.Equal(t, "order_Nx1", order.ID)
	assert.Equal(t, int64(49999), order.AmountDue)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, int64(1767225600), order.CreatedAt)
}

func TestRazorpayClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
	}))
	defer srv.Close()

	c := NewRazorpayClient("k", "s", srv.URL, time.Second)
	_, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
	assert.Equal(t, "BAD_REQUEST_ERROR", gwErr.Code)
	assert.Equal(t, "Authentication failed", gwErr.Description)
}

func TestRazorpayClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewRazorpayClient("k", "s", srv.URL, 50*time.Millisecond)
	_, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestNotes_EmptyArray(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":"order_1","notes":[]}`), &o))
	assert.NotNil(t, o.Notes)
	assert.Empty(t, o.Notes)
}

func TestSignature(t *testing.T) {
	// HMAC-SHA256("secret", "order_1|pay_1")
	sig := Sign("secret", "order_1", "pay_1")
	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature("secret", "order_1", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "order_1", "pay_2", sig))
	assert.False(t, VerifySignature("other", "order_1", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "order_1", "pay_1", ""))
}
