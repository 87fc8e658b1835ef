// Package testutil provides mock SPARQL endpoints and canned result
// payloads for tests.
package testutil
