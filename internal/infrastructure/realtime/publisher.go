package realtime

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/platform/resilience"
)

var errRealtimeTransient = crerr.New("realtime gateway transient failure")

type PublisherConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Publisher pushes auction events to the realtime gateway, which fans them out
// over websockets to the league and user rooms. Delivery is fire and forget;
// callers log failures and move on.
type Publisher struct {
	client         *fasthttp.Client
	baseURL        string
	token          string
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewPublisher(cfg PublisherConfig, logger *logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Publisher{
		client: &fasthttp.Client{
			MaxIdleConnDuration: time.Minute,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:          strings.TrimSpace(cfg.Token),
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type eventEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

func (p *Publisher) Publish(ctx context.Context, room, event string, payload any) error {
	if p.baseURL == "" {
		return fmt.Errorf("realtime gateway base url is not configured")
	}
	if room == "" || event == "" {
		return fmt.Errorf("room and event are required")
	}

	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			return fmt.Errorf("realtime gateway unavailable: %w", err)
		}
	}

	err := p.publish(ctx, room, event, payload)
	if p.circuitEnabled {
		if crerr.Is(err, errRealtimeTransient) {
			p.breaker.RecordFailure()
		} else {
			p.breaker.RecordSuccess()
		}
	}

	return err
}

func (p *Publisher) publish(ctx context.Context, room, event string, payload any) error {
	publishURL := p.baseURL + "/v1/rooms/" + url.PathEscape(room) + "/events"

	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	encoded, err := sonic.Marshal(eventEnvelope{Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, _ = body.Write(encoded)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("realtime.room", room),
			attribute.String("realtime.event", event),
		)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(publishURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	req.SetBody(body.B)

	deadline := time.Now().Add(p.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := p.client.DoDeadline(req, resp, deadline); err != nil {
		return crerr.Wrapf(errRealtimeTransient, "publish %s to %s: %v", event, room, err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 500:
		p.logger.WarnContext(ctx, "realtime gateway 5xx",
			"status_code", status,
			"room", room,
			"event", event,
		)
		return crerr.Wrapf(errRealtimeTransient, "realtime gateway status %d", status)
	default:
		return fmt.Errorf("realtime gateway rejected publish with status %d", status)
	}
}
