package tracking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
)

func TestHTTPStatusClient_GetOrderStatus(t *testing.T) {
	tests := []struct {
		name         string
		statusCode   int
		body         string
		retryAfter   string
		wantStatus   models.OrderStatus
		wantErr      error
		wantRetry    time.Duration
		wantAnyError bool
	}{
		{
			name:       "ok",
			statusCode: http.StatusOK,
			body:       `{"id":"o1","status":"PROCESSING","pollIntervalMs":15000,"items":[]}`,
			wantStatus: models.OrderStatusProcessing,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			wantErr:    ErrNotFound,
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			retryAfter: "7",
			wantRetry:  7 * time.Second,
		},
		{
			name:         "server error",
			statusCode:   http.StatusInternalServerError,
			wantAnyError: true,
		},
		{
			name:         "broken json",
			statusCode:   http.StatusOK,
			body:         `{"status":`,
			wantAnyError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/orders/o1/status" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewHTTPStatusClient(srv.URL, time.Second)
			got, err := client.GetOrderStatus(context.Background(), "o1")

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantRetry > 0:
				var rl RateLimitError
				if !errors.As(err, &rl) {
					t.Fatalf("error = %v, want RateLimitError", err)
				}
				if rl.RetryAfter != tt.wantRetry {
					t.Errorf("RetryAfter = %v, want %v", rl.RetryAfter, tt.wantRetry)
				}
			case tt.wantAnyError:
				if err == nil {
					t.Fatal("expected error")
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Status != tt.wantStatus {
					t.Errorf("status = %s, want %s", got.Status, tt.wantStatus)
				}
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != defaultRetryAfter {
		t.Errorf("empty = %v", got)
	}
	if got := parseRetryAfter("3"); got != 3*time.Second {
		t.Errorf("seconds = %v", got)
	}
	if got := parseRetryAfter("soon"); got != defaultRetryAfter {
		t.Errorf("garbage = %v", got)
	}
	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(past); got != 0 {
		t.Errorf("past date = %v", got)
	}
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got <= 0 || got > time.Minute {
		t.Errorf("future date = %v", got)
	}
}
