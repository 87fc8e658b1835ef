// Package vocabulary provides W3C namespace and datatype IRIs used when
// building SPARQL queries and coercing typed literals from results.
//
// References:
// - RDF: https://www.w3.org/TR/rdf11-concepts/
// - RDF Schema: https://www.w3.org/TR/rdf-schema/
// - XML Schema Datatypes: https://www.w3.org/TR/xmlschema11-2/
package vocabulary

import "strings"

// Core namespace IRIs
const (
	// RDF is the RDF syntax namespace
	RDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	// RDFS is the RDF Schema namespace
	RDFS = "http://www.w3.org/2000/01/rdf-schema#"

	// XSD is the XML Schema Datatypes namespace
	XSD = "http://www.w3.org/2001/XMLSchema#"

	// OWL is the Web Ontology Language namespace
	OWL = "http://www.w3.org/2002/07/owl#"
)

// XSD datatype IRIs driving typed-literal coercion
const (
	// XSDInteger coerces to int64
	XSDInteger = XSD + "integer"

	// XSDDecimal coerces to float64
	XSDDecimal = XSD + "decimal"

	// XSDDouble coerces to float64
	XSDDouble = XSD + "double"

	// XSDBoolean coerces to bool ("true" is true, anything else is false)
	XSDBoolean = XSD + "boolean"

	// XSDDateTime coerces to time.Time, falling back to the raw string
	// when the lexical form does not parse
	XSDDateTime = XSD + "dateTime"

	// XSDString passes through verbatim
	XSDString = XSD + "string"
)

// LocalName returns the fragment or final path segment of an IRI, e.g.
// "integer" for the xsd:integer datatype. Endpoints vary between "#" and "/"
// separators, so coercion dispatches on this suffix rather than the full IRI.
func LocalName(iri string) string {
	if i := strings.LastIndex(iri, "#"); i >= 0 {
		return iri[i+1:]
	}
	if i := strings.LastIndex(iri, "/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}
