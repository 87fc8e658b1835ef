package testutil

import (
	"encoding/json"
	"fmt"
)

// Binding is one wire-format term for building canned result payloads
type Binding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// URI builds a uri binding
func URI(value string) Binding {
	return Binding{Type: "uri", Value: value}
}

// Literal builds a plain literal binding
func Literal(value string) Binding {
	return Binding{Type: "literal", Value: value}
}

// TypedLiteral builds a typed-literal binding with the given datatype IRI
func TypedLiteral(value, datatype string) Binding {
	return Binding{Type: "typed-literal", Value: value, Datatype: datatype}
}

// LangLiteral builds a language-tagged literal binding
func LangLiteral(value, lang string) Binding {
	return Binding{Type: "literal", Value: value, Lang: lang}
}

// BNode builds a blank node binding
func BNode(label string) Binding {
	return Binding{Type: "bnode", Value: label}
}

// SelectPayload builds a SPARQL results JSON document for a SELECT query
func SelectPayload(vars []string, rows ...map[string]Binding) []byte {
	if rows == nil {
		rows = []map[string]Binding{}
	}
	doc := map[string]any{
		"head":    map[string]any{"vars": vars},
		"results": map[string]any{"bindings": rows},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("testutil: building select payload: %v", err))
	}
	return data
}

// AskPayload builds a SPARQL results JSON document for an ASK query
func AskPayload(verdict bool) []byte {
	data, err := json.Marshal(map[string]any{"boolean": verdict})
	if err != nil {
		panic(fmt.Sprintf("testutil: building ask payload: %v", err))
	}
	return data
}
