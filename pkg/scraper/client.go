// Package scraper is the SDK entry point. Client owns one request executor
// and the accessors built on it, and runs scraping work inside backend jobs.
package scraper

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/integration"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/job"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/logger"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/tender"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/transport"
)

type Client struct {
	transport    *transport.Client
	jobs         *job.Service
	integrations *integration.Service
	tenders      *tender.Service
	orchestrator *Orchestrator
	log          logger.Interface
}

type options struct {
	log        logger.Interface
	httpClient *http.Client
	registerer prometheus.Registerer
	policy     *transport.Policy
	now        func() time.Time
	tenderOpts []tender.Option
}

type Option func(*options)

func WithLogger(l logger.Interface) Option {
	return func(o *options) { o.log = l }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithMetrics registers request metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

func WithRetryPolicy(p transport.Policy) Option {
	return func(o *options) { o.policy = &p }
}

// WithClock replaces time.Now for job timestamps and run durations.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTenderOptions passes options to the tender accessor, e.g. a custom
// sleeper for the pause between chunks.
func WithTenderOptions(opts ...tender.Option) Option {
	return func(o *options) { o.tenderOpts = append(o.tenderOpts, opts...) }
}

func New(cfg transport.Config, opts ...Option) *Client {
	o := options{log: logger.NewNop(), now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}

	topts := []transport.Option{transport.WithLogger(o.log)}
	if o.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(o.httpClient))
	}
	if o.registerer != nil {
		topts = append(topts, transport.WithMetrics(transport.NewMetrics(o.registerer)))
	}
	if o.policy != nil {
		topts = append(topts, transport.WithPolicy(*o.policy))
	}
	tc := transport.New(cfg, topts...)

	c := &Client{
		transport:    tc,
		jobs:         job.NewService(tc, job.WithClock(o.now)),
		integrations: integration.NewService(tc),
		tenders:      tender.NewService(tc, append([]tender.Option{tender.WithLogger(o.log)}, o.tenderOpts...)...),
		log:          o.log,
	}
	c.orchestrator = NewOrchestrator(c, o.log, o.now)
	return c
}

func (c *Client) Jobs() JobAPI                 { return c.jobs }
func (c *Client) Integrations() IntegrationAPI { return c.integrations }
func (c *Client) Tenders() TenderAPI           { return c.tenders }

// Transport exposes the underlying executor for requests the accessors do
// not cover.
func (c *Client) Transport() *transport.Client { return c.transport }

func (c *Client) SetAPIKey(key string)      { c.transport.SetAPIKey(key) }
func (c *Client) SetBaseURL(baseURL string) { c.transport.SetBaseURL(baseURL) }

// Run executes work for origin inside a backend job. See Orchestrator.Run.
func (c *Client) Run(ctx context.Context, origin string, work Work) (*Result, error) {
	return c.orchestrator.Run(ctx, origin, work)
}

// HealthCheck reports whether the backend answers an authenticated request.
func (c *Client) HealthCheck(ctx context.Context) bool {
	if _, err := c.jobs.List(ctx, job.Filter{}); err != nil {
		c.log.Error("health check failed", "error", err)
		return false
	}
	return true
}
