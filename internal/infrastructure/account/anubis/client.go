package anubis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/draft-auction/internal/domain/user"
	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/platform/resilience"
	"github.com/riskibarqy/draft-auction/internal/usecase"
)

// errAnubisTransient marks failures that should trip the circuit breaker:
// network errors and 5xx responses, never auth denials.
var errAnubisTransient = errors.New("anubis transient failure")

// Client talks to the Anubis account service. It resolves bearer tokens to
// principals and answers session-history lookups for the compliance engine.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	sessionsURL   string
	adminKey      string
	logger        *logging.Logger

	breaker        *resilience.CircuitBreaker
	breakerEnabled bool

	principals *principalCache
	sf         resilience.SingleFlight
}

type Config struct {
	BaseURL        string
	IntrospectPath string
	SessionsPath   string
	AdminKey       string
	CircuitBreaker resilience.CircuitBreakerConfig
	PrincipalTTL   time.Duration
}

func NewClient(httpClient *http.Client, cfg Config, logger *logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}

	cbCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		introspectURL:  buildURL(cfg.BaseURL, cfg.IntrospectPath),
		sessionsURL:    buildURL(cfg.BaseURL, cfg.SessionsPath),
		adminKey:       strings.TrimSpace(cfg.AdminKey),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cbCfg.FailureThreshold, cbCfg.OpenTimeout, cbCfg.HalfOpenMaxReq),
		breakerEnabled: cbCfg.Enabled,
		principals:     newPrincipalCache(cfg.PrincipalTTL, 10_000),
	}
}

// VerifyAccessToken resolves a bearer token to a principal. Results are cached
// by token hash and concurrent lookups for the same token are deduplicated.
func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := hashToken(token)
	if principal, ok := c.principals.Get(key); ok {
		return principal, nil
	}

	val, err, _ := c.sf.Do(key, func() (any, error) {
		return c.introspect(ctx, token)
	})
	if err != nil {
		return user.Principal{}, err
	}

	principal := val.(user.Principal)
	c.principals.Set(key, principal)

	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	if c.breakerEnabled {
		if err := c.breaker.Allow(); err != nil {
			return user.Principal{}, fmt.Errorf("anubis introspection unavailable: %w", err)
		}
	}

	principal, err := c.doIntrospect(ctx, token)
	c.recordOutcome(err)

	return principal, err
}

func (c *Client) doIntrospect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: request introspection: %v", errAnubisTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: read introspect response: %v", errAnubisTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "anubis introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: introspection status %d", errAnubisTransient, resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
	}, nil
}

// HasEverBeenActive reports whether the user has ever held an active session
// in the league. Unknown users simply have no session history.
func (c *Client) HasEverBeenActive(ctx context.Context, leagueID, userID string) (bool, error) {
	if c.breakerEnabled {
		if err := c.breaker.Allow(); err != nil {
			return false, fmt.Errorf("anubis session lookup unavailable: %w", err)
		}
	}

	active, err := c.doSessionLookup(ctx, leagueID, userID)
	c.recordOutcome(err)

	return active, err
}

func (c *Client) doSessionLookup(ctx context.Context, leagueID, userID string) (bool, error) {
	query := url.Values{}
	query.Set("league_id", leagueID)
	query.Set("user_id", userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sessionsURL+"?"+query.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("create session lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: request session lookup: %v", errAnubisTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, fmt.Errorf("%w: read session lookup response: %v", errAnubisTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "anubis session lookup non-200",
			"status_code", resp.StatusCode,
			"league_id", leagueID,
		)
		return false, fmt.Errorf("%w: session lookup status %d", errAnubisTransient, resp.StatusCode)
	}

	var decoded sessionHistoryResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return false, fmt.Errorf("unmarshal session lookup response: %w", err)
	}

	return decoded.EverActive, nil
}

func (c *Client) recordOutcome(err error) {
	if !c.breakerEnabled {
		return
	}
	if isCircuitFailure(err) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type sessionHistoryResponse struct {
	EverActive bool `json:"ever_active"`
}
