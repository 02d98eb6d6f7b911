package products

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"order-service/internal/orders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConf(t *testing.T, baseURL string) *Conf {
	t.Helper()
	c, err := NewConf(nil, "", baseURL)
	require.NoError(t, err)
	return c
}

func TestNewConf_RequiresDiscoveryOrURL(t *testing.T) {
	_, err := NewConf(nil, "products", "")
	require.Error(t, err)
}

func TestFetchProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products/P1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": "P1", "name": "Widget", "price": 10.00, "stock": 5},
		})
	}))
	defer srv.Close()

	c := newTestConf(t, srv.URL)
	product, err := c.FetchProduct(context.Background(), "P1")
	require.NoError(t, err)

	assert.Equal(t, orders.Product{ID: "P1", Name: "Widget", Price: 10.00, Stock: 5}, product)
}

func TestFetchProduct_NotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Product not found"})
	}))
	defer srv.Close()

	c := newTestConf(t, srv.URL)
	_, err := c.FetchProduct(context.Background(), "ghost")
	require.ErrorIs(t, err, orders.ErrProductNotFound)
	assert.Equal(t, int32(1), calls.Load(), "not-found is not retryable")
}

func TestFetchProduct_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": "P1", "name": "Widget", "price": 10.00, "stock": 5},
		})
	}))
	defer srv.Close()

	c := newTestConf(t, srv.URL)
	product, err := c.FetchProduct(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, "P1", product.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestAdjustStock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/products/P1/stock", r.URL.Path)

		var body stockUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, -2, body.Quantity)

		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := newTestConf(t, srv.URL)
	require.NoError(t, c.AdjustStock(context.Background(), "P1", -2))
}

func TestAdjustStock_RetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestConf(t, srv.URL)
	err := c.AdjustStock(context.Background(), "P1", -1)
	require.Error(t, err)
	// Initial attempt plus two retries, then the failure stands.
	assert.Equal(t, int32(3), calls.Load())
}

func TestAdjustStock_RejectionNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestConf(t, srv.URL)
	err := c.AdjustStock(context.Background(), "P1", -1)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
