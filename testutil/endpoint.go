package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/accountex-org/ash-sparql/config"
)

// CapturedRequest records what a query sent over the wire
type CapturedRequest struct {
	Form   url.Values
	Header http.Header
}

// Endpoint is an in-process SPARQL endpoint backed by httptest. It records
// every request it serves.
type Endpoint struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []CapturedRequest
}

// NewEndpoint starts an endpoint that delegates to the given handler after
// recording the request. The server is shut down when the test ends.
func NewEndpoint(t *testing.T, handler http.HandlerFunc) *Endpoint {
	t.Helper()

	e := &Endpoint{}
	e.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		e.mu.Lock()
		e.requests = append(e.requests, CapturedRequest{
			Form:   r.PostForm,
			Header: r.Header.Clone(),
		})
		e.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(e.Server.Close)
	return e
}

// StaticEndpoint starts an endpoint that answers every query with the given
// payload as SPARQL results JSON.
func StaticEndpoint(t *testing.T, payload []byte) *Endpoint {
	t.Helper()
	return NewEndpoint(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write(payload)
	})
}

// ErrorEndpoint starts an endpoint that fails every query with the given
// status and body.
func ErrorEndpoint(t *testing.T, status int, body string) *Endpoint {
	t.Helper()
	return NewEndpoint(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// TrickleEndpoint starts an endpoint that writes the payload one byte at a
// time with the given delay between writes. Use with a short request budget
// to exercise timeout handling.
func TrickleEndpoint(t *testing.T, payload []byte, delay time.Duration) *Endpoint {
	t.Helper()
	return NewEndpoint(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		flusher, canFlush := w.(http.Flusher)
		for i := range payload {
			_, _ = w.Write(payload[i : i+1])
			if canFlush {
				flusher.Flush()
			}
			time.Sleep(delay)
		}
	})
}

// Settings returns endpoint settings pointing at the test server
func (e *Endpoint) Settings() *config.Settings {
	s := config.DefaultSettings()
	s.Endpoint = e.Server.URL
	return s
}

// Requests returns a copy of the requests served so far
func (e *Endpoint) Requests() []CapturedRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]CapturedRequest, len(e.requests))
	copy(out, e.requests)
	return out
}
