// Package errors provides standardized error handling for the SPARQL client.
//
// # Overview
//
// The package combines two layers. The first is the protocol error taxonomy:
// typed errors for each distinct failure mode of a query invocation
// (ConnectionError, TransportError, TimeoutError, HTTPError,
// MalformedResponseError, CoercionError, CloseError). Every failure path in
// the module returns exactly one of these, so callers can pattern-match with
// errors.As instead of string inspection.
//
// The second layer is a three-class classification system with Transient
// (temporary, a caller outside this module may retry), Invalid (bad input or
// payload, do not retry), and Fatal (unrecoverable) classes, plus wrapping
// helpers that follow the standardized format:
//
//	"component.method: action failed: %w"
//
// This module performs no retries itself; classification exists so the
// surrounding application can make that decision.
//
// # Quick Start
//
// Inspect a failed invocation:
//
//	var httpErr *errors.HTTPError
//	if errors.As(err, &httpErr) {
//	    log.Printf("endpoint rejected query: %d %s", httpErr.Status, httpErr.Body)
//	}
//
//	if errors.IsTransient(err) {
//	    // safe to retry at the application layer
//	}
//
// Wrap errors with context when crossing a component boundary:
//
//	if err := transport.Open(ctx); err != nil {
//	    return errors.WrapTransient(err, "Client", "Select", "transport open")
//	}
//
// All error types support the standard library's errors.Is, errors.As, and
// Unwrap chains; classification is preserved through wrapping.
package errors
