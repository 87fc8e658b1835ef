package client

import (
	"context"

	"github.com/accountex-org/ash-sparql/query"
	"github.com/accountex-org/ash-sparql/results"
)

// Request pairs a query with the attribute names its records should carry.
type Request struct {
	Query query.Query
	Attrs []string
}

// Querier is the read interface against a SPARQL endpoint. Each call runs
// on its own connection; implementations never share connections between
// concurrent calls.
type Querier interface {
	// Select runs a SELECT query and returns one record per binding row,
	// keyed and coerced by the requested attribute names.
	Select(ctx context.Context, q query.Query, attrs []string) ([]results.Record, error)

	// Ask runs an ASK query and returns the boolean verdict.
	Ask(ctx context.Context, q query.Query) (bool, error)

	// SelectEach runs the given requests concurrently, one connection per
	// request, and returns results in request order. The first failure
	// cancels the remaining requests.
	SelectEach(ctx context.Context, reqs []Request) ([]*results.Result, error)
}
