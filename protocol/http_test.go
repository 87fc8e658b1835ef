package protocol

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountex-org/ash-sparql/config"
	"github.com/accountex-org/ash-sparql/errors"
)

const emptySelectBody = `{"head":{"vars":["s","p","o"]},"results":{"bindings":[]}}`

// newTestTransport starts an httptest endpoint and a transport aimed at it
func newTestTransport(t *testing.T, handler http.HandlerFunc, mutate func(*config.Settings)) (*HTTPTransport, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	settings := config.DefaultSettings()
	settings.Endpoint = server.URL + "/sparql"
	if mutate != nil {
		mutate(settings)
	}

	transport, err := NewHTTPTransport(settings)
	require.NoError(t, err)
	return transport, server
}

func sparqlHandler(t *testing.T, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/sparql-results+json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(body))
	}
}

func TestNewHTTPTransport_Validation(t *testing.T) {
	t.Run("nil settings", func(t *testing.T) {
		_, err := NewHTTPTransport(nil)
		assert.Error(t, err)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		_, err := NewHTTPTransport(config.DefaultSettings())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrMissingEndpoint))
	})
}

func TestHTTPTransport_Open(t *testing.T) {
	t.Run("success then double open fails", func(t *testing.T) {
		transport, _ := newTestTransport(t, sparqlHandler(t, emptySelectBody), nil)

		require.NoError(t, transport.Open(context.Background()))
		defer transport.Close()

		err := transport.Open(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrAlreadyConnected))
	})

	t.Run("unreachable endpoint yields ConnectionError", func(t *testing.T) {
		settings := config.DefaultSettings()
		settings.Endpoint = "http://127.0.0.1:1/sparql"

		transport, err := NewHTTPTransport(settings)
		require.NoError(t, err)

		err = transport.Open(context.Background())
		require.Error(t, err)

		var connErr *errors.ConnectionError
		assert.True(t, errors.As(err, &connErr))
	})
}

func TestHTTPTransport_Execute(t *testing.T) {
	var capturedQuery, capturedGraph string
	handler := func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		capturedQuery = r.PostForm.Get("query")
		capturedGraph = r.PostForm.Get("default-graph-uri")

		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(emptySelectBody))
	}

	transport, _ := newTestTransport(t, handler, nil)
	require.NoError(t, transport.Open(context.Background()))
	defer transport.Close()

	resp, err := transport.Execute(context.Background(), "SELECT ?s ?p ?o WHERE { ?s ?p ?o }",
		ExecuteOptions{DefaultGraph: "http://example.org/graph"})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.Status)
	assert.True(t, resp.Succeeded())
	assert.JSONEq(t, emptySelectBody, string(resp.Body()))
	assert.Equal(t, "application/sparql-results+json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "SELECT ?s ?p ?o WHERE { ?s ?p ?o }", capturedQuery)
	assert.Equal(t, "http://example.org/graph", capturedGraph)
}

func TestHTTPTransport_Execute_RequiresOpen(t *testing.T) {
	transport, _ := newTestTransport(t, sparqlHandler(t, emptySelectBody), nil)

	_, err := transport.Execute(context.Background(), "SELECT * WHERE { ?s ?p ?o }", ExecuteOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotConnected))
}

func TestHTTPTransport_Execute_Headers(t *testing.T) {
	var auth, tenant string
	handler := func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		tenant = r.Header.Get("X-Tenant")
		w.Write([]byte(emptySelectBody))
	}

	transport, _ := newTestTransport(t, handler, func(s *config.Settings) {
		s.Authentication = &config.Authentication{Type: config.AuthBearer, Token: "tok-1"}
		s.AdditionalHeaders = []config.Header{{Name: "X-Tenant", Value: "acme"}}
	})

	require.NoError(t, transport.Open(context.Background()))
	defer transport.Close()

	_, err := transport.Execute(context.Background(), "ASK { ?s ?p ?o }", ExecuteOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", auth)
	assert.Equal(t, "acme", tenant)
}

func TestHTTPTransport_Execute_HTTPError(t *testing.T) {
	handler := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("parse error at line 1"))
	}

	transport, _ := newTestTransport(t, handler, nil)
	require.NoError(t, transport.Open(context.Background()))
	defer transport.Close()

	_, err := transport.Execute(context.Background(), "SELEKT", ExecuteOptions{})
	require.Error(t, err)

	var httpErr *errors.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 400, httpErr.Status)
	assert.Equal(t, "parse error at line 1", string(httpErr.Body))
}

func TestHTTPTransport_Execute_Timeout(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		// Outlive any reasonable test budget
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}

	transport, _ := newTestTransport(t, handler, nil)
	require.NoError(t, transport.Open(context.Background()))

	start := time.Now()
	_, err := transport.Execute(context.Background(), "SELECT * WHERE { ?s ?p ?o }",
		ExecuteOptions{Timeout: 150 * time.Millisecond})
	elapsed := time.Since(start)

	require.Error(t, err)
	var timeoutErr *errors.TimeoutError
	assert.True(t, errors.As(err, &timeoutErr), "got %T: %v", err, err)
	assert.Less(t, elapsed, 2*time.Second)

	// Owner closes exactly once afterward; the second close is a no-op
	assert.NoError(t, transport.Close())
	assert.NoError(t, transport.Close())
}

func TestHTTPTransport_Execute_MonotonicBudget(t *testing.T) {
	// A trickling endpoint must not restart the clock with each fragment
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for i := 0; i < 50; i++ {
			if _, err := w.Write([]byte("x")); err != nil {
				return
			}
			flusher.Flush()
			select {
			case <-r.Context().Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
		}
	}

	transport, _ := newTestTransport(t, handler, nil)
	require.NoError(t, transport.Open(context.Background()))
	defer transport.Close()

	start := time.Now()
	_, err := transport.Execute(context.Background(), "SELECT * WHERE { ?s ?p ?o }",
		ExecuteOptions{Timeout: 300 * time.Millisecond})
	elapsed := time.Since(start)

	require.Error(t, err)
	var timeoutErr *errors.TimeoutError
	assert.True(t, errors.As(err, &timeoutErr), "got %T: %v", err, err)
	assert.Less(t, elapsed, 2*time.Second,
		"fragments kept arriving, so only a monotonic budget stops the loop")
}

func TestHTTPTransport_Execute_ContextDeadline(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}

	transport, _ := newTestTransport(t, handler, nil)
	require.NoError(t, transport.Open(context.Background()))
	defer transport.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := transport.Execute(ctx, "SELECT * WHERE { ?s ?p ?o }", ExecuteOptions{})
	require.Error(t, err)

	var timeoutErr *errors.TimeoutError
	assert.True(t, errors.As(err, &timeoutErr), "got %T: %v", err, err)
}

func TestHTTPTransport_SingleRequestInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	handler := func(w http.ResponseWriter, _ *http.Request) {
		close(started)
		<-release
		w.Write([]byte(emptySelectBody))
	}

	transport, _ := newTestTransport(t, handler, nil)
	require.NoError(t, transport.Open(context.Background()))
	defer transport.Close()

	firstDone := make(chan error, 1)
	go func() {
		_, err := transport.Execute(context.Background(), "SELECT * WHERE { ?s ?p ?o }", ExecuteOptions{})
		firstDone <- err
	}()

	<-started
	_, err := transport.Execute(context.Background(), "SELECT * WHERE { ?s ?p ?o }", ExecuteOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRequestInFlight))

	close(release)
	assert.NoError(t, <-firstDone)
}

func TestHTTPTransport_Close(t *testing.T) {
	t.Run("close without open is a no-op", func(t *testing.T) {
		transport, _ := newTestTransport(t, sparqlHandler(t, emptySelectBody), nil)
		assert.NoError(t, transport.Close())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		transport, _ := newTestTransport(t, sparqlHandler(t, emptySelectBody), nil)
		require.NoError(t, transport.Open(context.Background()))

		assert.NoError(t, transport.Close())
		assert.NoError(t, transport.Close())
		assert.NoError(t, transport.Close())
	})

	t.Run("reopen after close", func(t *testing.T) {
		transport, _ := newTestTransport(t, sparqlHandler(t, emptySelectBody), nil)

		require.NoError(t, transport.Open(context.Background()))
		require.NoError(t, transport.Close())
		require.NoError(t, transport.Open(context.Background()))

		resp, err := transport.Execute(context.Background(), "SELECT * WHERE { ?s ?p ?o }", ExecuteOptions{})
		require.NoError(t, err)
		assert.True(t, resp.Succeeded())

		assert.NoError(t, transport.Close())
	})
}

func TestHTTPTransport_TLS(t *testing.T) {
	server := httptest.NewTLSServer(sparqlHandler(t, emptySelectBody))
	t.Cleanup(server.Close)

	settings := config.DefaultSettings()
	settings.Endpoint = server.URL + "/sparql"
	settings.TLS.InsecureSkipVerify = true // httptest uses a self-signed cert

	transport, err := NewHTTPTransport(settings)
	require.NoError(t, err)

	require.NoError(t, transport.Open(context.Background()))
	defer transport.Close()

	resp, err := transport.Execute(context.Background(), "SELECT * WHERE { ?s ?p ?o }", ExecuteOptions{})
	require.NoError(t, err)
	assert.True(t, resp.Succeeded())
}
