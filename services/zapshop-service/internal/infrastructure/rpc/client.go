package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/quangdang46/zapshop/shared/errors"
	"github.com/quangdang46/zapshop/shared/logging"
	"github.com/quangdang46/zapshop/shared/metrics"
	"github.com/quangdang46/zapshop/shared/resilience"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

// CursorHeader carries the next-page cursor of the /events endpoint.
const CursorHeader = "x-supra-cursor"

const (
	endpointView   = "view"
	endpointEvents = "events"
)

// Client talks to the chain RPC REST API. It is safe for concurrent use and
// never retries on its own.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	breakers   *resilience.CircuitBreakerGroup
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCircuitBreakers guards each endpoint with a breaker from group.
func WithCircuitBreakers(group *resilience.CircuitBreakerGroup) Option {
	return func(c *Client) { c.breakers = group }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the RPC root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type viewRequest struct {
	Function      string        `json:"function"`
	TypeArguments []string      `json:"type_arguments"`
	Arguments     []interface{} `json:"arguments"`
}

type viewResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// View calls POST {rpc}/view and returns the raw `result` member, which is
// nil when the response has none.
func (c *Client) View(ctx context.Context, function string, typeArgs []string, args []interface{}) (json.RawMessage, error) {
	if typeArgs == nil {
		typeArgs = []string{}
	}
	if args == nil {
		args = []interface{}{}
	}
	body, err := json.Marshal(viewRequest{Function: function, TypeArguments: typeArgs, Arguments: args})
	if err != nil {
		return nil, apperrors.InvalidInput("arguments", err.Error())
	}

	var out json.RawMessage
	err = c.guard(ctx, endpointView, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/view", bytes.NewReader(body))
		if err != nil {
			return apperrors.Internal("build view request").WithCause(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		respBody, _, err := c.do(req, endpointView)
		if err != nil {
			return err
		}

		var resp viewResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return apperrors.MalformedResponse(endpointView, err)
		}
		if resp.Error != nil {
			msg := resp.Error.Message
			if msg == "" {
				msg = "rpc returned an error"
			}
			return apperrors.ViewFailure(function, msg)
		}
		out = resp.Result
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.WithContext(ctx).WithField("function", function).Debug("view call completed")
	return out, nil
}

// EventsPage fetches one page of GET {rpc}/events/{eventType}.
func (c *Client) EventsPage(ctx context.Context, eventType string, limit int, cursor string) (*domain.EventPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	// QueryEscape matches encodeURIComponent for the characters an event type
	// can contain, so "::" travels as %3A%3A.
	target := c.baseURL + "/events/" + url.QueryEscape(eventType) + "?" + q.Encode()

	var page *domain.EventPage
	err := c.guard(ctx, endpointEvents, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return apperrors.Internal("build events request").WithCause(err)
		}
		req.Header.Set("Accept", "application/json")

		respBody, header, err := c.do(req, endpointEvents)
		if err != nil {
			return err
		}

		var payload struct {
			Data []domain.EventEnvelope `json:"data"`
		}
		if err := json.Unmarshal(respBody, &payload); err != nil {
			return apperrors.MalformedResponse(endpointEvents, err)
		}
		page = &domain.EventPage{
			Data:       payload.Data,
			NextCursor: header.Get(CursorHeader),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"event_type": eventType,
		"limit":      limit,
		"has_cursor": cursor != "",
		"rows":       len(page.Data),
		"has_next":   page.NextCursor != "",
	}).Debug("events page fetched")
	return page, nil
}

// guard applies the rate limiter and the endpoint's circuit breaker.
func (c *Client) guard(ctx context.Context, endpoint string, fn func(context.Context) error) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if c.breakers == nil {
		return fn(ctx)
	}
	cb := c.breakers.Get(endpoint)
	err := cb.Execute(ctx, fn)
	c.metrics.RecordBreakerState(endpoint, int(cb.GetState()))
	return err
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// The limiter refuses waits that would outlive the context deadline.
		return apperrors.New(apperrors.ErrorTypeTimeout, "RATE_LIMIT_WAIT",
			"rate limiter wait exceeds context deadline").WithCause(err)
	}
	c.metrics.RecordRateLimitWait(time.Since(start))
	return nil
}

// do performs the round trip. Transport errors are returned exactly as the
// http.Client produced them.
func (c *Client) do(req *http.Request, endpoint string) ([]byte, http.Header, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRPC(endpoint, "transport_error", time.Since(start))
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordRPC(endpoint, "transport_error", time.Since(start))
		return nil, nil, err
	}
	c.metrics.RecordRPC(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, apperrors.FetchFailure(resp.StatusCode, string(body))
	}
	return body, resp.Header, nil
}

// CountsAgainstBreaker decides which errors should trip the breaker:
// transport failures, 5xx/429 responses and unreadable bodies. Caller
// cancellations and client-side 4xx do not.
func CountsAgainstBreaker(err error) bool {
	if err == nil || apperrors.IsCancellation(err) {
		return false
	}
	if status, ok := apperrors.FetchFailureStatus(err); ok {
		return status >= 500 || status == http.StatusTooManyRequests
	}
	if apperrors.IsType(err, apperrors.ErrorTypeMalformedResponse) {
		return true
	}
	return apperrors.IsTransportFailure(err)
}
