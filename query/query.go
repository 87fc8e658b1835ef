// Package query builds SPARQL 1.1 query text from a structured description.
// Building is pure: no I/O, no endpoint knowledge, stable output for a given
// description.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Triple is one pattern in the WHERE block. Each position holds a SPARQL
// term as written in query text: a variable ("?s"), an IRI
// ("<http://...>"), a prefixed name ("rdf:type"), or a literal ("\"x\"").
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Query is an immutable description of a SELECT or ASK query.
type Query struct {
	// Projection lists variable names (without the "?" sigil) to select.
	// Empty means the generic triple scan projection: s, p, o.
	Projection []string `json:"projection,omitempty"`

	// Graph optionally restricts the query to a named graph IRI.
	Graph string `json:"graph,omitempty"`

	// Pattern lists WHERE triple patterns. Empty means the generic scan
	// pattern "?s ?p ?o".
	Pattern []Triple `json:"pattern,omitempty"`

	// Filter optionally constrains binding rows. Nil means no FILTER clause.
	Filter Filter `json:"-"`

	// Limit and Offset are optional and independent; nil means absent.
	Limit  *int `json:"limit,omitempty"`
	Offset *int `json:"offset,omitempty"`

	// PrefixMap supplies resource-level prefix bindings. Entries override
	// the fixed rdf/rdfs defaults and any endpoint-level bindings.
	PrefixMap map[string]string `json:"prefix_map,omitempty"`
}

// WithLimit returns a copy of the query with the limit set.
func (q Query) WithLimit(n int) Query {
	q.Limit = &n
	return q
}

// WithOffset returns a copy of the query with the offset set.
func (q Query) WithOffset(n int) Query {
	q.Offset = &n
	return q
}

// Filter is a predicate expression rendered into a FILTER clause. The
// builder only decides whether a clause is emitted; translation of richer
// expression trees plugs in through this interface.
type Filter interface {
	// SPARQL returns the expression text placed inside FILTER( ... ).
	SPARQL() string
}

// rawFilter passes an expression through verbatim.
type rawFilter string

// SPARQL returns the raw expression text
func (f rawFilter) SPARQL() string { return string(f) }

// Raw wraps an already-formed SPARQL expression as a Filter.
func Raw(expr string) Filter { return rawFilter(expr) }

// Comparison operators accepted by Compare.
const (
	OpEqual          = "="
	OpNotEqual       = "!="
	OpLess           = "<"
	OpLessOrEqual    = "<="
	OpGreater        = ">"
	OpGreaterOrEqual = ">="
)

// Comparison constrains one variable against a constant value.
type Comparison struct {
	Variable string
	Operator string
	Value    any
}

// Compare builds a single-variable comparison filter.
func Compare(variable, operator string, value any) Filter {
	return Comparison{Variable: variable, Operator: operator, Value: value}
}

// SPARQL renders the comparison as an expression
func (c Comparison) SPARQL() string {
	return fmt.Sprintf("?%s %s %s", c.Variable, c.Operator, renderValue(c.Value))
}

// And combines filters conjunctively.
func And(filters ...Filter) Filter {
	return combined{op: "&&", filters: filters}
}

// Or combines filters disjunctively.
func Or(filters ...Filter) Filter {
	return combined{op: "||", filters: filters}
}

type combined struct {
	op      string
	filters []Filter
}

// SPARQL renders the combination with each operand parenthesized
func (c combined) SPARQL() string {
	parts := make([]string, 0, len(c.filters))
	for _, f := range c.filters {
		parts = append(parts, "("+f.SPARQL()+")")
	}
	return strings.Join(parts, " "+c.op+" ")
}

// renderValue converts a Go constant to its SPARQL literal form
func renderValue(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return fmt.Sprintf("%q^^<http://www.w3.org/2001/XMLSchema#dateTime>",
			v.UTC().Format(time.RFC3339))
	default:
		return strconv.Quote(fmt.Sprintf("%v", v))
	}
}
