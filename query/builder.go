package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/accountex-org/ash-sparql/errors"
	"github.com/accountex-org/ash-sparql/vocabulary"
)

// Options carries endpoint-level builder settings from configuration.
type Options struct {
	// PrefixMap supplies endpoint-level prefix bindings, merged over the
	// rdf/rdfs defaults and under resource-level bindings on the query.
	PrefixMap map[string]string
}

// Build renders a SELECT query from the description.
func Build(q Query, opts Options) (string, error) {
	if err := validate(q); err != nil {
		return "", err
	}

	var b strings.Builder
	writePrefixes(&b, q, opts)

	b.WriteString("SELECT")
	for _, v := range projection(q) {
		b.WriteString(" ?")
		b.WriteString(v)
	}
	b.WriteString("\n")

	writeWhere(&b, q)

	if q.Limit != nil {
		fmt.Fprintf(&b, "LIMIT %d\n", *q.Limit)
	}
	if q.Offset != nil {
		fmt.Fprintf(&b, "OFFSET %d\n", *q.Offset)
	}

	return b.String(), nil
}

// BuildAsk renders an ASK query from the description. Projection, limit,
// and offset do not apply to the boolean form and are ignored.
func BuildAsk(q Query, opts Options) (string, error) {
	if err := validatePattern(q); err != nil {
		return "", err
	}

	var b strings.Builder
	writePrefixes(&b, q, opts)

	b.WriteString("ASK\n")
	writeWhere(&b, q)

	return b.String(), nil
}

// validate checks the full SELECT description
func validate(q Query) error {
	if q.Limit != nil && *q.Limit < 0 {
		return errors.WrapInvalid(errors.ErrNegativeLimit, "query", "Build", "validation")
	}
	if q.Offset != nil && *q.Offset < 0 {
		return errors.WrapInvalid(errors.ErrNegativeOffset, "query", "Build", "validation")
	}
	for _, v := range q.Projection {
		if v == "" || strings.ContainsAny(v, " ?\t\n") {
			return errors.WrapInvalid(
				fmt.Errorf("invalid projection variable %q", v),
				"query", "Build", "validation")
		}
	}
	return validatePattern(q)
}

// validatePattern checks the WHERE constituents shared by SELECT and ASK
func validatePattern(q Query) error {
	for _, t := range q.Pattern {
		if t.Subject == "" || t.Predicate == "" || t.Object == "" {
			return errors.WrapInvalid(
				fmt.Errorf("triple pattern has empty position: %+v", t),
				"query", "Build", "validation")
		}
	}
	return nil
}

// projection returns the declared projection or the generic scan default
func projection(q Query) []string {
	if len(q.Projection) == 0 {
		return []string{"s", "p", "o"}
	}
	return q.Projection
}

// pattern returns the declared triple patterns or the generic scan default
func pattern(q Query) []Triple {
	if len(q.Pattern) == 0 {
		return []Triple{{Subject: "?s", Predicate: "?p", Object: "?o"}}
	}
	return q.Pattern
}

// writePrefixes emits one PREFIX line per merged binding, sorted by prefix
// name so output is stable across runs.
func writePrefixes(b *strings.Builder, q Query, opts Options) {
	merged := vocabulary.MergePrefixes(opts.PrefixMap)
	for prefix, namespace := range q.PrefixMap {
		merged[prefix] = namespace
	}

	prefixes := make([]string, 0, len(merged))
	for prefix := range merged {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		fmt.Fprintf(b, "PREFIX %s: <%s>\n", prefix, merged[prefix])
	}
}

// writeWhere emits the WHERE block, wrapping the patterns in a GRAPH block
// when the query names one.
func writeWhere(b *strings.Builder, q Query) {
	b.WriteString("WHERE {\n")

	indent := "  "
	if q.Graph != "" {
		fmt.Fprintf(b, "  GRAPH <%s> {\n", q.Graph)
		indent = "    "
	}

	for _, t := range pattern(q) {
		fmt.Fprintf(b, "%s%s %s %s .\n", indent, t.Subject, t.Predicate, t.Object)
	}
	if q.Filter != nil {
		fmt.Fprintf(b, "%sFILTER(%s)\n", indent, q.Filter.SPARQL())
	}

	if q.Graph != "" {
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
}
