package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
)

const defaultRetryAfter = 5 * time.Second

var ErrNotFound = errors.New("order not found")

// RateLimitError содержит паузу, которую рекомендует сервер.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// StatusClient получает текущий статус заказа.
type StatusClient interface {
	GetOrderStatus(ctx context.Context, orderID string) (*models.OrderStatusResponse, error)
}

type HTTPStatusClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPStatusClient создаёт HTTP-клиент к GET /api/orders/:id/status.
func NewHTTPStatusClient(baseURL string, timeout time.Duration) *HTTPStatusClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPStatusClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetOrderStatus получает статус заказа.
func (c *HTTPStatusClient) GetOrderStatus(ctx context.Context, orderID string) (*models.OrderStatusResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	u = u.JoinPath("api", "orders", orderID, "status")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload models.OrderStatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode status response: %w", err)
		}
		return &payload, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

func parseRetryAfter(val string) time.Duration {
	if val == "" {
		return defaultRetryAfter
	}
	if secs, err := strconv.Atoi(val); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
		return 0
	}
	return defaultRetryAfter
}
