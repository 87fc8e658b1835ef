// Package term models the four RDF term kinds appearing in SPARQL 1.1 Query
// Results JSON and coerces typed literals into native Go values.
//
// Binding value objects on the wire are loosely shaped maps. This package
// replaces them with an explicit tagged variant so every call site switches
// exhaustively over exactly four known kinds instead of propagating
// unrecognized shapes as nil.
package term

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/accountex-org/ash-sparql/errors"
	"github.com/accountex-org/ash-sparql/pkg/timestamp"
	"github.com/accountex-org/ash-sparql/vocabulary"
)

// Kind identifies one of the four RDF term variants.
type Kind int

const (
	// KindIRI is a URI reference
	KindIRI Kind = iota
	// KindLiteral is an untyped plain literal, optionally language-tagged
	KindLiteral
	// KindTypedLiteral is a literal carrying an XSD datatype IRI
	KindTypedLiteral
	// KindBlankNode is a blank node label
	KindBlankNode
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "uri"
	case KindLiteral:
		return "literal"
	case KindTypedLiteral:
		return "typed-literal"
	case KindBlankNode:
		return "bnode"
	default:
		return "unknown"
	}
}

// Term is one RDF term from a binding row.
type Term struct {
	Kind     Kind
	Value    string
	Datatype string // typed literals only
	Language string // plain literals only, from xml:lang
}

// wireTerm mirrors the SPARQL JSON binding value object.
type wireTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Language string `json:"xml:lang,omitempty"`
}

// UnmarshalJSON decodes a SPARQL JSON binding value into the tagged variant.
// A "literal" carrying a datatype field normalizes to KindTypedLiteral; SPARQL
// 1.1 endpoints emit that form while older ones emit "typed-literal".
func (t *Term) UnmarshalJSON(data []byte) error {
	var w wireTerm
	if err := json.Unmarshal(data, &w); err != nil {
		return &errors.MalformedResponseError{
			Detail: fmt.Sprintf("binding value is not an object: %v", err),
		}
	}

	switch w.Type {
	case "uri":
		*t = Term{Kind: KindIRI, Value: w.Value}
	case "bnode":
		*t = Term{Kind: KindBlankNode, Value: w.Value}
	case "typed-literal":
		*t = Term{Kind: KindTypedLiteral, Value: w.Value, Datatype: w.Datatype}
	case "literal":
		if w.Datatype != "" {
			*t = Term{Kind: KindTypedLiteral, Value: w.Value, Datatype: w.Datatype}
		} else {
			*t = Term{Kind: KindLiteral, Value: w.Value, Language: w.Language}
		}
	default:
		return &errors.MalformedResponseError{
			Detail: fmt.Sprintf("unknown binding value type %q", w.Type),
		}
	}

	return nil
}

// MarshalJSON encodes the term back into SPARQL JSON binding value form.
func (t Term) MarshalJSON() ([]byte, error) {
	w := wireTerm{Type: t.Kind.String(), Value: t.Value}
	switch t.Kind {
	case KindTypedLiteral:
		w.Datatype = t.Datatype
	case KindLiteral:
		w.Language = t.Language
	}
	return json.Marshal(w)
}

// Coerce converts a term to its native Go value.
//
// IRIs and plain literals pass through as strings, blank nodes gain a "_:"
// prefix, and typed literals dispatch on the datatype's local name:
//
//	integer          -> int64   (CoercionError on a bad lexical form)
//	decimal, double  -> float64 (CoercionError on a bad lexical form)
//	boolean          -> bool, true iff the value text is exactly "true"
//	dateTime         -> time.Time, raw string fallback when unparseable
//	anything else    -> string verbatim
func Coerce(t Term) (any, error) {
	switch t.Kind {
	case KindIRI, KindLiteral:
		return t.Value, nil
	case KindBlankNode:
		return "_:" + t.Value, nil
	case KindTypedLiteral:
		return coerceTyped(t)
	default:
		return nil, &errors.MalformedResponseError{
			Detail: fmt.Sprintf("unknown term kind %d", t.Kind),
		}
	}
}

// coerceTyped applies the datatype coercion table to a typed literal
func coerceTyped(t Term) (any, error) {
	switch vocabulary.LocalName(t.Datatype) {
	case "integer":
		n, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return nil, &errors.CoercionError{
				Value:    t.Value,
				Datatype: t.Datatype,
				Row:      -1,
			}
		}
		return n, nil

	case "decimal", "double":
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, &errors.CoercionError{
				Value:    t.Value,
				Datatype: t.Datatype,
				Row:      -1,
			}
		}
		return f, nil

	case "boolean":
		// Unrecognized text is false by contract, never an error
		return t.Value == "true", nil

	case "dateTime":
		parsed, err := timestamp.ParseISO(t.Value)
		if err != nil {
			// Unparseable timestamps degrade to the raw lexical form
			return t.Value, nil
		}
		return parsed, nil

	default:
		return t.Value, nil
	}
}
