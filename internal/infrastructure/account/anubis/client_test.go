package anubis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/platform/resilience"
	"github.com/riskibarqy/draft-auction/internal/usecase"
)

func newTestClient(srv *httptest.Server, cb resilience.CircuitBreakerConfig, ttl time.Duration) *Client {
	return NewClient(srv.Client(), Config{
		BaseURL:        srv.URL,
		IntrospectPath: "/v1/auth/introspect",
		SessionsPath:   "/v1/sessions/history",
		AdminKey:       "admin-secret",
		CircuitBreaker: cb,
		PrincipalTTL:   ttl,
	}, logging.NewNop())
}

func TestVerifyAccessTokenParsesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v1/auth/introspect" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-admin-key"); got != "admin-secret" {
			t.Errorf("unexpected x-admin-key: %s", got)
		}

		var req map[string]string
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if req["token"] != "token-abc" {
			t.Errorf("unexpected token value: %s", req["token"])
		}

		w.Header().Set("Content-Type", "application/json")
		body, _ := sonic.Marshal(map[string]any{
			"active":  true,
			"user_id": "user-123",
			"email":   "user@example.com",
		})
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	client := newTestClient(srv, resilience.CircuitBreakerConfig{Enabled: false}, 0)

	principal, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if err != nil {
		t.Fatalf("verify token failed: %v", err)
	}
	if principal.UserID != "user-123" {
		t.Fatalf("unexpected user id: %s", principal.UserID)
	}
	if principal.Email != "user@example.com" {
		t.Fatalf("unexpected email: %s", principal.Email)
	}
}

func TestVerifyAccessTokenInactiveIsUnauthorized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, _ := sonic.Marshal(map[string]any{"active": false})
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	client := newTestClient(srv, resilience.CircuitBreakerConfig{Enabled: false}, 0)

	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyAccessTokenDeniedIsUnauthorized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv, resilience.CircuitBreakerConfig{Enabled: false}, 0)

	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyAccessTokenCachesByTokenHash(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		body, _ := sonic.Marshal(map[string]any{"active": true, "user_id": "user-123"})
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	client := newTestClient(srv, resilience.CircuitBreakerConfig{Enabled: false}, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := client.VerifyAccessToken(context.Background(), "token-abc"); err != nil {
			t.Fatalf("verify token failed: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 upstream call, got %d", got)
	}
}

func TestTransientFailuresOpenCircuit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	}, 0)

	for i := 0; i < 2; i++ {
		if _, err := client.HasEverBeenActive(context.Background(), "league-1", "user-1"); err == nil {
			t.Fatal("expected lookup error")
		}
	}

	_, err := client.HasEverBeenActive(context.Background(), "league-1", "user-1")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestHasEverBeenActive(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions/history" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		switch r.URL.Query().Get("user_id") {
		case "active-user":
			body, _ := sonic.Marshal(map[string]any{"ever_active": true})
			_, _ = w.Write(body)
		case "idle-user":
			body, _ := sonic.Marshal(map[string]any{"ever_active": false})
			_, _ = w.Write(body)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv, resilience.CircuitBreakerConfig{Enabled: false}, 0)

	active, err := client.HasEverBeenActive(context.Background(), "league-1", "active-user")
	if err != nil || !active {
		t.Fatalf("expected active user, got active=%v err=%v", active, err)
	}

	active, err = client.HasEverBeenActive(context.Background(), "league-1", "idle-user")
	if err != nil || active {
		t.Fatalf("expected idle user, got active=%v err=%v", active, err)
	}

	active, err = client.HasEverBeenActive(context.Background(), "league-1", "unknown-user")
	if err != nil || active {
		t.Fatalf("expected unknown user treated as never active, got active=%v err=%v", active, err)
	}
}
