// Package routeapi is the HTTP client for the external routing system the
// work orders are imported from. The API is JSON-over-HTTPS, keyed by an API
// key passed as a query parameter, and paginates search results with an
// opaque after_tag cursor.
package routeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"optimaflow/internal/service/normalize"
)

// ErrRateLimited is returned verbatim on HTTP 429. The client never backs
// off on it; the caller decides whether to slow down.
var ErrRateLimited = errors.New("routeapi: rate limited")

const (
	retryAttempts = 3
	retryBaseWait = 500 * time.Millisecond
	retryMaxWait  = 2 * time.Second
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type OrderRef struct {
	OrderNo string `json:"orderNo"`
}

type SearchRequest struct {
	DateRange        *DateRange `json:"dateRange,omitempty"`
	Orders           []OrderRef `json:"orders,omitempty"`
	IncludeOrderData bool       `json:"includeOrderData"`
	AfterTag         string     `json:"after_tag,omitempty"`
}

type SearchResponse struct {
	Success    bool                 `json:"success"`
	Code       string               `json:"code,omitempty"`
	Message    string               `json:"message,omitempty"`
	Orders     []normalize.RawOrder `json:"orders"`
	AfterTag   string               `json:"after_tag,omitempty"`
	Finished   *bool                `json:"finished,omitempty"`
	TotalCount int                  `json:"totalCount,omitempty"`
}

type CompletionRequest struct {
	Orders []OrderRef `json:"orders"`
}

type CompletionResponse struct {
	Success bool                 `json:"success"`
	Code    string               `json:"code,omitempty"`
	Message string               `json:"message,omitempty"`
	Orders  []normalize.RawOrder `json:"orders"`
}

// SearchOrders fetches one page of orders for a date range or an explicit
// list of order numbers.
func (c *Client) SearchOrders(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	const op = "routeapi.SearchOrders"

	var resp SearchResponse
	if err := c.post(ctx, "/search_orders", req, &resp); err != nil {
		return SearchResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	if !resp.Success {
		return SearchResponse{}, fmt.Errorf("%s: api error %s: %s", op, resp.Code, resp.Message)
	}

	return resp, nil
}

// GetCompletionDetails fetches completion data for a batch of order numbers.
func (c *Client) GetCompletionDetails(ctx context.Context, orderNos []string) (CompletionResponse, error) {
	const op = "routeapi.GetCompletionDetails"

	req := CompletionRequest{Orders: make([]OrderRef, 0, len(orderNos))}
	for _, no := range orderNos {
		req.Orders = append(req.Orders, OrderRef{OrderNo: no})
	}

	var resp CompletionResponse
	if err := c.post(ctx, "/get_completion_details", req, &resp); err != nil {
		return CompletionResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	if !resp.Success {
		return CompletionResponse{}, fmt.Errorf("%s: api error %s: %s", op, resp.Code, resp.Message)
	}

	return resp, nil
}

// post sends one JSON request with a small bounded retry on transient
// transport failures (network errors, 502/503/504). 429 and other HTTP
// errors surface immediately.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + path + "?key=" + c.apiKey

	wait := retryBaseWait
	var lastErr error

	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
			if wait > retryMaxWait {
				wait = retryMaxWait
			}
		}

		retry, err := c.do(ctx, url, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}

	return lastErr
}

func (c *Client) do(ctx context.Context, url string, payload []byte, out any) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return false, ErrRateLimited
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		return true, fmt.Errorf("http %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}

	return false, nil
}
