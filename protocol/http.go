package protocol

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/accountex-org/ash-sparql/config"
	"github.com/accountex-org/ash-sparql/errors"
	"github.com/accountex-org/ash-sparql/pkg/tlsutil"
)

// defaultDialTimeout bounds connection establishment, separately from the
// per-request receive budget
const defaultDialTimeout = 10 * time.Second

// readChunkSize is the fragment size the receive loop folds per iteration
const readChunkSize = 4096

// HTTPTransport implements Transport over the SPARQL 1.1 Protocol HTTP
// binding: form-encoded POST, sparql-results+json accept, streaming body
// receive under a monotonic budget.
type HTTPTransport struct {
	settings    *config.Settings
	endpoint    *url.URL
	dialTimeout time.Duration

	mu       sync.Mutex
	conn     net.Conn
	reader   *bufio.Reader
	inFlight bool
}

// NewHTTPTransport creates a transport for the configured endpoint. The
// settings record is validated but no connection is made.
func NewHTTPTransport(settings *config.Settings) (*HTTPTransport, error) {
	if settings == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig,
			"HTTPTransport", "NewHTTPTransport", "nil settings")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(settings.Endpoint)
	if err != nil {
		return nil, errors.WrapInvalid(err, "HTTPTransport", "NewHTTPTransport", "endpoint parse")
	}

	return &HTTPTransport{
		settings:    settings,
		endpoint:    endpoint,
		dialTimeout: defaultDialTimeout,
	}, nil
}

// hostPort derives the dial address, applying the scheme's default port
func (t *HTTPTransport) hostPort() string {
	host := t.endpoint.Host
	if t.endpoint.Port() != "" {
		return host
	}
	if t.endpoint.Scheme == "https" {
		return net.JoinHostPort(host, "443")
	}
	return net.JoinHostPort(host, "80")
}

// Open establishes the TCP (and for https, TLS) connection. No request is
// sent. An unresolvable endpoint or failed handshake yields ConnectionError.
func (t *HTTPTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return errors.WrapInvalid(errors.ErrAlreadyConnected,
			"HTTPTransport", "Open", "connection check")
	}

	dialer := &net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.hostPort())
	if err != nil {
		return &errors.ConnectionError{Endpoint: t.settings.Endpoint, Err: err}
	}

	if t.endpoint.Scheme == "https" {
		tlsConfig, err := tlsutil.LoadClientTLSConfig(t.settings.TLS)
		if err != nil {
			conn.Close()
			return &errors.ConnectionError{Endpoint: t.settings.Endpoint, Err: err}
		}
		tlsConfig.ServerName = t.endpoint.Hostname()

		tlsConn := tls.Client(conn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return &errors.ConnectionError{Endpoint: t.settings.Endpoint, Err: err}
		}
		conn = tlsConn
	}

	t.conn = conn
	t.reader = bufio.NewReader(conn)
	return nil
}

// Execute sends one POST and folds the streamed response into an
// accumulator until completion, transport error, or budget exhaustion.
func (t *HTTPTransport) Execute(ctx context.Context, queryText string, opts ExecuteOptions) (*Response, error) {
	conn, reader, err := t.acquire()
	if err != nil {
		return nil, err
	}
	defer t.release()

	budget := t.settings.RequestTimeout()
	if opts.Timeout > 0 {
		budget = opts.Timeout
	}
	if ctxDeadline, ok := ctx.Deadline(); ok {
		if until := time.Until(ctxDeadline); until < budget {
			budget = until
		}
	}

	// The deadline is fixed once: every later wait shrinks the remaining
	// budget, never resets it.
	deadline := time.Now().Add(budget)

	req, err := t.buildRequest(queryText, opts)
	if err != nil {
		return nil, err
	}

	if err := conn.SetDeadline(deadline); err != nil {
		return nil, &errors.TransportError{Err: err}
	}
	if err := req.Write(conn); err != nil {
		return nil, classifyIOError(err, budget)
	}

	resp := NewResponse()
	if err := t.receive(ctx, conn, reader, req, resp, deadline, budget); err != nil {
		return nil, err
	}

	if !resp.Succeeded() {
		return nil, &errors.HTTPError{Status: resp.Status, Body: resp.Body()}
	}
	return resp, nil
}

// acquire takes the connection for a single request, enforcing the
// one-in-flight invariant
func (t *HTTPTransport) acquire() (net.Conn, *bufio.Reader, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil, nil, errors.WrapInvalid(errors.ErrNotConnected,
			"HTTPTransport", "Execute", "connection check")
	}
	if t.inFlight {
		return nil, nil, errors.WrapInvalid(errors.ErrRequestInFlight,
			"HTTPTransport", "Execute", "in-flight check")
	}

	t.inFlight = true
	return t.conn, t.reader, nil
}

// release clears the in-flight marker
func (t *HTTPTransport) release() {
	t.mu.Lock()
	t.inFlight = false
	t.mu.Unlock()
}

// buildRequest assembles the form-encoded SPARQL protocol POST
func (t *HTTPTransport) buildRequest(queryText string, opts ExecuteOptions) (*http.Request, error) {
	form := url.Values{}
	form.Set("query", queryText)
	if opts.DefaultGraph != "" {
		form.Set("default-graph-uri", opts.DefaultGraph)
	}

	req, err := http.NewRequest(http.MethodPost, t.endpoint.String(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.WrapInvalid(err, "HTTPTransport", "Execute", "request construction")
	}

	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if t.settings.Authentication != nil {
		name, value, err := t.settings.Authentication.HeaderPair()
		if err != nil {
			return nil, err
		}
		req.Header.Set(name, value)
	}
	for _, h := range t.settings.AdditionalHeaders {
		req.Header.Set(h.Name, h.Value)
	}

	return req, nil
}

// receive drives the streaming receive loop: wait for the next fragment up
// to the remaining budget, fold it into the accumulator, recompute the
// remainder, and stop on completion, error, or exhaustion.
func (t *HTTPTransport) receive(
	ctx context.Context,
	conn net.Conn,
	reader *bufio.Reader,
	req *http.Request,
	resp *Response,
	deadline time.Time,
	budget time.Duration,
) error {
	// Status line and headers arrive as the first fragment
	httpResp, err := http.ReadResponse(reader, req)
	if err != nil {
		return classifyIOError(err, budget)
	}
	defer httpResp.Body.Close()

	resp.FoldStatus(httpResp.StatusCode)
	for name, values := range httpResp.Header {
		resp.FoldHeader(name, values)
	}

	buf := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return classifyContextError(err, budget)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return &errors.TimeoutError{Budget: budget.String()}
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return &errors.TransportError{Err: err}
		}

		n, err := httpResp.Body.Read(buf)
		if n > 0 {
			resp.FoldData(buf[:n])
		}
		if err == io.EOF {
			// Completion marker: the framed body is fully delivered
			return nil
		}
		if err != nil {
			return classifyIOError(err, budget)
		}
	}
}

// Close releases the connection. Already-closed transports return nil.
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil
	t.reader = nil

	if err != nil {
		return &errors.CloseError{Err: err}
	}
	return nil
}

// classifyIOError distinguishes budget exhaustion from mid-stream failure
func classifyIOError(err error, budget time.Duration) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &errors.TimeoutError{Budget: budget.String()}
	}
	return &errors.TransportError{Err: err}
}

// classifyContextError maps context expiry onto the protocol taxonomy
func classifyContextError(err error, budget time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &errors.TimeoutError{Budget: budget.String()}
	}
	return &errors.TransportError{Err: fmt.Errorf("request canceled: %w", err)}
}
