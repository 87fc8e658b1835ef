// Package client orchestrates the query pipeline: build the query text,
// open a transport, execute, decode the results and release the connection.
package client

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/accountex-org/ash-sparql/config"
	"github.com/accountex-org/ash-sparql/errors"
	"github.com/accountex-org/ash-sparql/metric"
	"github.com/accountex-org/ash-sparql/protocol"
	"github.com/accountex-org/ash-sparql/query"
	"github.com/accountex-org/ash-sparql/results"
)

// TransportFactory builds a transport for one invocation. The client opens
// and closes the returned transport itself.
type TransportFactory func(settings *config.Settings) (protocol.Transport, error)

// Option customizes a Client beyond its settings record
type Option func(*Client)

// WithMetricsRegistry records per-invocation metrics into the registry's
// core collectors
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(c *Client) {
		if registry != nil {
			c.metrics = registry.CoreMetrics()
		}
	}
}

// WithTransportFactory replaces the HTTP transport, mainly for tests
func WithTransportFactory(factory TransportFactory) Option {
	return func(c *Client) {
		c.factory = factory
	}
}

// WithRateLimiter replaces the limiter derived from the settings record
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// Client runs SPARQL queries against a single configured endpoint. A Client
// is safe for concurrent use; every invocation runs on its own connection.
type Client struct {
	settings *config.Settings
	factory  TransportFactory
	metrics  *metric.Metrics
	limiter  *rate.Limiter
}

// New creates a client for the given endpoint settings
func New(settings *config.Settings, opts ...Option) (*Client, error) {
	if settings == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig,
			"Client", "New", "settings required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		settings: settings.Clone(),
		factory: func(s *config.Settings) (protocol.Transport, error) {
			return protocol.NewHTTPTransport(s)
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.limiter == nil && c.settings.RatePerSecond > 0 {
		burst := c.settings.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(c.settings.RatePerSecond), burst)
	}

	return c, nil
}

// Select runs a SELECT query and returns one record per binding row, keyed
// and coerced by the requested attribute names. Empty attrs fall back to the
// query's projection.
func (c *Client) Select(ctx context.Context, q query.Query, attrs []string) ([]results.Record, error) {
	result, err := c.selectResult(ctx, Request{Query: q, Attrs: attrs})
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// Ask runs an ASK query and returns the boolean verdict
func (c *Client) Ask(ctx context.Context, q query.Query) (bool, error) {
	text, err := query.BuildAsk(q, c.buildOptions())
	if err != nil {
		return false, err
	}

	result, err := c.run(ctx, text, "ask", nil)
	if err != nil {
		return false, err
	}
	if !result.IsAsk() || result.Boolean == nil {
		err := &errors.MalformedResponseError{
			Detail: "ASK query returned a non-boolean response",
		}
		c.observeError(err)
		return false, err
	}
	return *result.Boolean, nil
}

// SelectEach runs the given requests concurrently, one connection per
// request. Results arrive in request order; the first failure cancels the
// remaining requests.
func (c *Client) SelectEach(ctx context.Context, reqs []Request) ([]*results.Result, error) {
	out := make([]*results.Result, len(reqs))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		group.Go(func() error {
			result, err := c.selectResult(groupCtx, req)
			if err != nil {
				return err
			}
			out[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) selectResult(ctx context.Context, req Request) (*results.Result, error) {
	text, err := query.Build(req.Query, c.buildOptions())
	if err != nil {
		return nil, err
	}

	attrs := req.Attrs
	if len(attrs) == 0 {
		attrs = req.Query.Projection
	}
	if len(attrs) == 0 {
		attrs = []string{"s", "p", "o"}
	}

	return c.run(ctx, text, "select", attrs)
}

// run is the shared pipeline: throttle, open, execute, decode, close. The
// transport is closed exactly once on every path after a successful open.
func (c *Client) run(ctx context.Context, queryText, form string, attrs []string) (*results.Result, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	transport, err := c.factory(c.settings)
	if err != nil {
		return nil, err
	}

	if err := transport.Open(ctx); err != nil {
		c.observeError(err)
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.OpenConnections.Inc()
	}

	start := time.Now()
	resp, execErr := transport.Execute(ctx, queryText, protocol.ExecuteOptions{
		DefaultGraph: c.settings.Graph,
	})
	elapsed := time.Since(start)

	if err := transport.Close(); err != nil {
		log.Printf("client: closing connection after query: %v", err)
	}
	if c.metrics != nil {
		c.metrics.OpenConnections.Dec()
	}

	if execErr != nil {
		c.observeError(execErr)
		var httpErr *errors.HTTPError
		if c.metrics != nil && errors.As(execErr, &httpErr) {
			c.metrics.ObserveQuery(form, httpErr.Status, elapsed, len(httpErr.Body))
		}
		return nil, execErr
	}

	if c.metrics != nil {
		c.metrics.ObserveQuery(form, resp.Status, elapsed, resp.Len())
	}

	result, err := results.Decode(resp.Body(), attrs, results.DecodeOptions{
		Strict: c.settings.StrictDecode,
	})
	if err != nil {
		c.observeError(err)
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.RowsDecoded.Add(float64(len(result.Records)))
		c.metrics.RowsSkipped.Add(float64(len(result.RowErrors)))
	}
	for _, rowErr := range result.RowErrors {
		log.Printf("client: skipping row %d: %v", rowErr.Row, rowErr.Err)
	}

	return result, nil
}

func (c *Client) buildOptions() query.Options {
	return query.Options{PrefixMap: c.settings.PrefixMap}
}

// throttle waits for a rate-limiter slot when throttling is configured
func (c *Client) throttle(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}

	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.WrapTransient(err, "Client", "throttle", "rate limit wait")
	}
	if c.metrics != nil {
		c.metrics.ThrottleWaitTime.Add(time.Since(start).Seconds())
	}
	return nil
}

// observeError records the failure by kind when metrics are attached
func (c *Client) observeError(err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveError(errorKind(err))
}

func errorKind(err error) string {
	var (
		connection *errors.ConnectionError
		timeout    *errors.TimeoutError
		httpErr    *errors.HTTPError
		malformed  *errors.MalformedResponseError
		coercion   *errors.CoercionError
		transport  *errors.TransportError
		closeErr   *errors.CloseError
	)
	switch {
	case errors.As(err, &connection):
		return "connection"
	case errors.As(err, &timeout):
		return "timeout"
	case errors.As(err, &httpErr):
		return "http"
	case errors.As(err, &malformed):
		return "malformed"
	case errors.As(err, &coercion):
		return "coercion"
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &closeErr):
		return "close"
	default:
		return "other"
	}
}
