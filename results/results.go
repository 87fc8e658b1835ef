// Package results decodes SPARQL 1.1 Query Results JSON into typed records.
//
// Two payload shapes exist: the SELECT shape (head.vars plus
// results.bindings) decoding to an ordered record sequence, and the ASK shape
// (a bare boolean field) decoding to a boolean result. Anything else is a
// malformed response.
package results

import (
	"encoding/json"

	"github.com/accountex-org/ash-sparql/errors"
	"github.com/accountex-org/ash-sparql/term"
)

// Form distinguishes which query form produced a result.
type Form int

const (
	// FormSelect is a record-sequence result from a SELECT query
	FormSelect Form = iota
	// FormAsk is a boolean result from an ASK query
	FormAsk
)

// String returns the string representation of Form
func (f Form) String() string {
	switch f {
	case FormSelect:
		return "select"
	case FormAsk:
		return "ask"
	default:
		return "unknown"
	}
}

// Record maps attribute names to coerced native values. Attributes with no
// matching bound variable are absent keys, never nil placeholders.
type Record map[string]any

// RowError positions a coercion failure at the binding row that produced it,
// so one bad row does not void the rest of the result set in lenient mode.
type RowError struct {
	Row int
	Err error
}

// Error implements the error interface
func (re RowError) Error() string { return re.Err.Error() }

// Unwrap returns the underlying error
func (re RowError) Unwrap() error { return re.Err }

// Result is a decoded SPARQL response: a record sequence for SELECT or a
// boolean for ASK, never both.
type Result struct {
	Form    Form
	Vars    []string // head.vars, SELECT only
	Records []Record // SELECT only
	Boolean *bool    // ASK only

	// RowErrors lists rows skipped in lenient mode, in row order.
	RowErrors []RowError
}

// IsAsk reports whether the result carries an ASK boolean.
func (r *Result) IsAsk() bool { return r.Form == FormAsk }

// DecodeOptions controls decode strictness.
type DecodeOptions struct {
	// Strict aborts the whole decode on the first coercion failure.
	// The default (lenient) skips the offending row and records it in
	// Result.RowErrors.
	Strict bool
}

// payload mirrors the top-level SPARQL JSON document for shape detection.
type payload struct {
	Head *struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings []map[string]term.Term `json:"bindings"`
	} `json:"results"`
	Boolean *bool `json:"boolean"`
}

// Decode parses a SPARQL results payload, building one record per binding
// row from the requested attribute names. A row binding none of the
// requested attributes yields no record. A well-formed but empty binding set
// yields an empty record slice, not an error.
func Decode(data []byte, attrs []string, opts DecodeOptions) (*Result, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		var malformed *errors.MalformedResponseError
		if errors.As(err, &malformed) {
			return nil, malformed
		}
		return nil, &errors.MalformedResponseError{Detail: err.Error()}
	}

	// ASK responses may also carry an empty head, so check boolean first
	if p.Boolean != nil {
		return &Result{Form: FormAsk, Boolean: p.Boolean}, nil
	}

	if p.Head == nil || p.Results == nil {
		return nil, &errors.MalformedResponseError{
			Detail: "payload has neither SELECT shape (head.vars + results.bindings) nor ASK shape (boolean)",
		}
	}

	result := &Result{
		Form:    FormSelect,
		Vars:    p.Head.Vars,
		Records: make([]Record, 0, len(p.Results.Bindings)),
	}

	for i, row := range p.Results.Bindings {
		record, err := decodeRow(row, attrs, i)
		if err != nil {
			if opts.Strict {
				return nil, err
			}
			result.RowErrors = append(result.RowErrors, RowError{Row: i, Err: err})
			continue
		}
		if len(record) == 0 {
			// No requested attribute was bound in this row
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}

// decodeRow coerces the requested attributes bound in one binding row
func decodeRow(row map[string]term.Term, attrs []string, rowIndex int) (Record, error) {
	record := make(Record)
	for _, attr := range attrs {
		t, bound := row[attr]
		if !bound {
			continue
		}

		value, err := term.Coerce(t)
		if err != nil {
			var coercion *errors.CoercionError
			if errors.As(err, &coercion) {
				coercion.Variable = attr
				coercion.Row = rowIndex
			}
			return nil, err
		}
		record[attr] = value
	}
	return record, nil
}
