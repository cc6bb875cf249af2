// Package transport is the request executor behind every SDK accessor: it
// sends JSON requests to the backend, retries transient failures and turns
// every failure into a single *apperror.AppError shape.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/logger"
)

const (
	HeaderAPIKey    = "X-API-Key"
	HeaderRequestID = "X-Request-ID"

	unknownErrorMessage = "Unknown error occurred"
)

// Client executes backend requests. It is safe for concurrent use; config
// setters take effect on the next attempt of every call, including calls
// already in flight.
type Client struct {
	mu      sync.RWMutex
	cfg     Config
	policy  Policy
	limiter *rate.Limiter

	httpClient *http.Client
	log        logger.Interface
	metrics    *Metrics
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. Per-attempt timeouts
// are applied through the request context, so its Timeout may stay zero.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l logger.Interface) Option {
	return func(c *Client) { c.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithPolicy overrides the retry policy. Nil funcs fall back to the defaults.
func WithPolicy(p Policy) Option {
	return func(c *Client) {
		if p.Backoff == nil {
			p.Backoff = ExponentialBackoff
		}
		if p.Retryable == nil {
			p.Retryable = DefaultRetryable
		}
		c.policy = p
	}
}

func New(cfg Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:        cfg,
		policy:     DefaultPolicy(cfg.Retries),
		httpClient: &http.Client{},
		log:        logger.NewNop(),
		sleep:      sleepContext,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Config returns a snapshot of the current configuration.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg := c.cfg
	cfg.Retries = c.policy.MaxRetries
	return cfg
}

func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.APIKey = key
}

func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.BaseURL = baseURL
}

func (c *Client) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Timeout = d
}

// SetRetries changes the retry budget; negative disables retries.
func (c *Client) SetRetries(n int) {
	if n < 0 {
		n = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy.MaxRetries = n
}

func (c *Client) SetDebug(debug bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Debug = debug
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one logical request, retrying according to the policy, and
// decodes a successful JSON response into out (which may be nil). Every
// returned error is an *apperror.AppError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return apperror.New(apperror.Validation, fmt.Sprintf("encode request body: %v", err))
		}
		payload = b
	}

	requestID := uuid.NewString()

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return apperror.NewTransport(err.Error(), 0, nil)
			}
		}

		res := c.attempt(ctx, method, path, query, payload, requestID, attempt)
		if res.err == nil && res.status < http.StatusBadRequest {
			return decode(res, out)
		}

		c.mu.RLock()
		policy := c.policy
		c.mu.RUnlock()

		if attempt >= policy.MaxRetries || !policy.Retryable(method, res.status, res.err) {
			return normalize(res)
		}

		c.metrics.retried(method)
		wait := policy.Backoff(attempt + 1)
		c.debugf("retrying request", "method", method, "path", path, "attempt", attempt+1, "wait", wait, "request_id", requestID)
		if err := c.sleep(ctx, wait); err != nil {
			// Keep the last response's status and body.
			last := normalize(res)
			return apperror.NewTransport(last.Message()+": "+err.Error(), res.status, last.Body())
		}
	}
}

type attemptResult struct {
	status int
	body   []byte
	err    error
}

func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, payload []byte, requestID string, attempt int) attemptResult {
	c.mu.RLock()
	cfg := c.cfg
	c.mu.RUnlock()

	endpoint := buildURL(cfg.BaseURL, path, query)

	actx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(actx, method, endpoint, reader)
	if err != nil {
		return attemptResult{err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderAPIKey, cfg.APIKey)
	req.Header.Set(HeaderRequestID, requestID)

	if cfg.Debug {
		c.log.Debug("http request",
			"method", method,
			"url", endpoint,
			"attempt", attempt,
			"body_bytes", len(payload),
			"request_id", requestID,
		)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // URL built from client config
	if err != nil {
		c.metrics.observe(method, 0, time.Since(start))
		if cfg.Debug {
			c.log.Debug("http request failed", "method", method, "url", endpoint, "error", err, "request_id", requestID)
		}
		return attemptResult{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	c.metrics.observe(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return attemptResult{err: fmt.Errorf("read response body: %w", err)}
	}

	if cfg.Debug {
		c.log.Debug("http response",
			"method", method,
			"url", endpoint,
			"status", resp.StatusCode,
			"duration", time.Since(start),
			"request_id", requestID,
		)
	}
	return attemptResult{status: resp.StatusCode, body: body}
}

func (c *Client) debugf(msg string, fields ...any) {
	c.mu.RLock()
	debug := c.cfg.Debug
	c.mu.RUnlock()
	if debug {
		c.log.Debug(msg, fields...)
	}
}

func buildURL(base, path string, query url.Values) string {
	u := strings.TrimSuffix(base, "/")
	if path != "" {
		u += "/" + strings.TrimPrefix(path, "/")
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func decode(res attemptResult, out any) error {
	if out == nil || res.status == http.StatusNoContent || len(bytes.TrimSpace(res.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return apperror.New(apperror.Internal, fmt.Sprintf("decode response: %v", err))
	}
	return nil
}

// normalize prefers the server's "error" field, then "message", then the
// transport error text, then a generic message.
func normalize(res attemptResult) *apperror.AppError {
	var body []byte
	if len(res.body) > 0 {
		body = res.body
	}

	msg := ""
	if gjson.ValidBytes(body) {
		if v := gjson.GetBytes(body, "error"); v.Type == gjson.String && v.Str != "" {
			msg = v.Str
		} else if v := gjson.GetBytes(body, "message"); v.Type == gjson.String && v.Str != "" {
			msg = v.Str
		}
	}
	if msg == "" && res.err != nil {
		msg = res.err.Error()
	}
	if msg == "" && res.status != 0 {
		msg = fmt.Sprintf("request failed with status code %d", res.status)
	}
	if msg == "" {
		msg = unknownErrorMessage
	}
	return apperror.NewTransport(msg, res.status, body)
}
