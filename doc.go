// Package sparql provides a client for the SPARQL 1.1 Protocol: building
// SELECT and ASK queries from declarative descriptions, executing them over
// HTTP against a configured endpoint, and decoding the SPARQL results JSON
// into typed Go values.
//
// # Architecture
//
// The module is layered from the wire up:
//
//   - protocol: connection lifecycle and the request/response exchange.
//     The HTTP transport opens one connection, runs one request at a time,
//     streams the response body under a fixed cumulative time budget, and
//     surfaces every failure as a typed error.
//   - term: the RDF term variant used in result bindings (uri, literal,
//     typed-literal, bnode) and the XSD-driven coercion of literal text to
//     Go values.
//   - query: the query description record and the SPARQL text builder
//     (prefixes, projection, graph scoping, filters, limit and offset).
//   - results: decoding of result payloads into records, with a strict or
//     lenient policy for rows that fail coercion.
//   - client: the orchestrator tying the layers together, with optional
//     Prometheus metrics and client-side rate limiting.
//
// Supporting packages: config (endpoint settings with JSON/YAML loading and
// schema validation), errors (classification and typed failures), metric
// (Prometheus registry and scrape server), vocabulary (RDF/XSD namespace
// constants), and testutil (mock endpoints for tests).
//
// # Usage
//
//	settings := config.DefaultSettings()
//	settings.Endpoint = "https://example.org/sparql"
//
//	c, err := client.New(settings)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	records, err := c.Select(ctx, query.Query{
//		Projection: []string{"name"},
//		Pattern: []query.Triple{
//			{Subject: "?s", Predicate: "foaf:name", Object: "?name"},
//		},
//	}, nil)
//
// Every failure is a typed error from the errors package; use errors.As to
// inspect, or errors.IsTransient to decide whether a retry by the caller
// makes sense.
package sparql
