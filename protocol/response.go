package protocol

import (
	"bytes"
	"net/http"
)

// Response accumulates one HTTP response over the receive loop. It is
// created empty at request start, mutated only by the loop's fold
// operations, consumed once by the decoder, then discarded.
type Response struct {
	// Status is the terminal HTTP status; 0 until a status fragment folds in.
	Status int

	// Header holds folded header fragments. A name set by an earlier
	// fragment is overwritten by a later one (last-write-wins).
	Header http.Header

	body bytes.Buffer
}

// NewResponse creates an empty accumulator.
func NewResponse() *Response {
	return &Response{Header: make(http.Header)}
}

// FoldStatus records a status fragment, overwriting any earlier one.
func (r *Response) FoldStatus(status int) {
	r.Status = status
}

// FoldHeader records a header fragment. Values replace, never append, so a
// re-delivered header converges on the last fragment observed.
func (r *Response) FoldHeader(name string, values []string) {
	r.Header[http.CanonicalHeaderKey(name)] = values
}

// FoldData appends a body fragment in delivery order.
func (r *Response) FoldData(fragment []byte) {
	r.body.Write(fragment)
}

// Body returns the accumulated body bytes.
func (r *Response) Body() []byte {
	return r.body.Bytes()
}

// Len returns the accumulated body size in bytes.
func (r *Response) Len() int {
	return r.body.Len()
}

// Succeeded reports whether the terminal status is in the 2xx range.
func (r *Response) Succeeded() bool {
	return r.Status >= 200 && r.Status <= 299
}
