package routeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "test-key", Timeout: 5 * time.Second})
}

func TestSearchOrders_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search_orders", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.IncludeOrderData)
		require.NotNil(t, req.DateRange)
		assert.Equal(t, "2024-03-01", req.DateRange.From)

		json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"orders":     []map[string]any{{"orderNo": "A1"}, {"orderNo": "B2"}},
			"after_tag":  "next-page",
			"totalCount": 2,
		})
	})

	resp, err := client.SearchOrders(context.Background(), SearchRequest{
		DateRange:        &DateRange{From: "2024-03-01", To: "2024-03-02"},
		IncludeOrderData: true,
	})

	require.NoError(t, err)
	assert.Len(t, resp.Orders, 2)
	assert.Equal(t, "next-page", resp.AfterTag)
	assert.Equal(t, 2, resp.TotalCount)
}

func TestSearchOrders_RateLimited(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.SearchOrders(context.Background(), SearchRequest{})

	assert.ErrorIs(t, err, ErrRateLimited)
	// no retry on 429
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchOrders_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"code":    "ERR_INVALID_KEY",
			"message": "invalid API key",
		})
	})

	_, err := client.SearchOrders(context.Background(), SearchRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_INVALID_KEY")
}

func TestGetCompletionDetails_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		var req CompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []OrderRef{{OrderNo: "A1"}}, req.Orders)

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"orders":  []map[string]any{{"orderNo": "A1", "data": map[string]any{"status": "success"}}},
		})
	})

	resp, err := client.GetCompletionDetails(context.Background(), []string{"A1"})

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Len(t, resp.Orders, 1)
}

func TestGetCompletionDetails_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetCompletionDetails(context.Background(), []string{"A1"})

	require.Error(t, err)
	assert.Equal(t, int32(retryAttempts), calls.Load())
}

func TestSearchOrders_HTTPErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	})

	_, err := client.SearchOrders(context.Background(), SearchRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 400")
	assert.Equal(t, int32(1), calls.Load())
}
