// Package protocol implements the SPARQL 1.1 Protocol client side: one
// transport connection carrying one request at a time, with a streaming
// receive loop bounded by a cumulative wall-clock budget.
package protocol

import (
	"context"
	"time"
)

// ExecuteOptions adjusts a single Execute call.
type ExecuteOptions struct {
	// DefaultGraph, when set, is sent as the default-graph-uri form field,
	// overriding the endpoint's own default graph for this request.
	DefaultGraph string

	// Timeout overrides the configured receive budget when positive.
	Timeout time.Duration
}

// Transport is the pluggable connection capability set. HTTP is the only
// variant today; callers must depend on this interface, never on a concrete
// transport.
//
// A transport is exclusively owned by the caller that opened it: it must not
// be handed to a second concurrent caller, and closing it is the owner's
// sole responsibility: exactly once per opened connection, on every exit
// path.
type Transport interface {
	// Open establishes the connection without sending a request.
	Open(ctx context.Context) error

	// Execute sends one query and drives the receive loop to completion,
	// error, or budget exhaustion. At most one request may be in flight.
	Execute(ctx context.Context, queryText string, opts ExecuteOptions) (*Response, error)

	// Close releases the connection. Closing an already-closed transport
	// is a no-op success.
	Close() error
}
