package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRazorpayCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test", user)
		assert.Equal(t, "secret", pass)

		var body createOrderReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(26250), body.Amount)
		assert.Equal(t, "INR", body.Currency)
		assert.Equal(t, "order_1", body.Receipt)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_P1","status":"created"}`))
	}))
	defer srv.Close()

	c := NewRazorpayClient(srv.URL+"/", "rzp_test", "secret", time.Second)
	id, err := c.CreateOrder(context.Background(), 26250, "INR", "order_1")
	require.NoError(t, err)
	assert.Equal(t, "order_P1", id)
}

func TestRazorpayCreateOrderProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer srv.Close()

	c := NewRazorpayClient(srv.URL, "rzp_test", "secret", time.Second)
	_, err := c.CreateOrder(context.Background(), 1, "INR", "order_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 100")
}

func TestSandboxGateway(t *testing.T) {
	id, err := NewSandboxGateway().CreateOrder(context.Background(), 100, "INR", "order_1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "order_"))
	assert.Len(t, id, len("order_")+14)
}
