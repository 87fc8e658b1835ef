// Package config defines the endpoint settings record consumed by the SPARQL
// client, with validation and file loading from JSON or YAML.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/accountex-org/ash-sparql/errors"
	"github.com/accountex-org/ash-sparql/pkg/tlsutil"
)

// Authentication type constants
const (
	AuthBasic  = "basic"  // Authorization: Basic base64(user:pass)
	AuthBearer = "bearer" // Authorization: Bearer token
	AuthCustom = "custom" // caller-specified header name/value pair
)

// DefaultRequestTimeoutMs bounds the receive loop when no timeout is configured
const DefaultRequestTimeoutMs = 30000

// Authentication describes how requests authenticate against the endpoint.
// The client attaches a pre-built header; it performs no negotiation.
type Authentication struct {
	Type string `json:"type" yaml:"type"`

	// Basic
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// Bearer
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// Custom
	Header string `json:"header,omitempty" yaml:"header,omitempty"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
}

// HeaderPair returns the header name and value to attach to each request.
func (a *Authentication) HeaderPair() (string, string, error) {
	switch a.Type {
	case AuthBasic:
		credentials := base64.StdEncoding.EncodeToString(
			[]byte(a.Username + ":" + a.Password))
		return "Authorization", "Basic " + credentials, nil
	case AuthBearer:
		return "Authorization", "Bearer " + a.Token, nil
	case AuthCustom:
		return a.Header, a.Value, nil
	default:
		return "", "", errors.WrapInvalid(
			fmt.Errorf("unknown authentication type %q", a.Type),
			"Authentication", "HeaderPair", "header construction")
	}
}

// validate checks the authentication form is complete
func (a *Authentication) validate() error {
	switch a.Type {
	case AuthBasic:
		if a.Username == "" {
			return fmt.Errorf("basic authentication requires a username")
		}
	case AuthBearer:
		if a.Token == "" {
			return fmt.Errorf("bearer authentication requires a token")
		}
	case AuthCustom:
		if a.Header == "" || a.Value == "" {
			return fmt.Errorf("custom authentication requires header and value")
		}
	default:
		return fmt.Errorf("unknown authentication type %q", a.Type)
	}
	return nil
}

// Header is one additional name/value pair attached to each request.
type Header struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Settings is the read-only endpoint configuration record.
type Settings struct {
	// Endpoint is the SPARQL endpoint URL. Required.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Graph optionally names the default graph queries run against.
	Graph string `json:"graph,omitempty" yaml:"graph,omitempty"`

	// PrefixMap supplies endpoint-level prefix bindings merged into every
	// built query (resource-level bindings still win on key conflict).
	PrefixMap map[string]string `json:"prefix_map,omitempty" yaml:"prefix_map,omitempty"`

	// Authentication optionally attaches a pre-built auth header.
	Authentication *Authentication `json:"authentication,omitempty" yaml:"authentication,omitempty"`

	// RequestTimeoutMs bounds the whole receive loop per request,
	// cumulatively. Zero means DefaultRequestTimeoutMs.
	RequestTimeoutMs int64 `json:"request_timeout_ms,omitempty" yaml:"request_timeout_ms,omitempty"`

	// AdditionalHeaders are attached to every request after the protocol
	// headers, in order.
	AdditionalHeaders []Header `json:"additional_headers,omitempty" yaml:"additional_headers,omitempty"`

	// TLS configures certificate handling for https endpoints.
	TLS tlsutil.Config `json:"tls,omitempty" yaml:"tls,omitempty"`

	// RatePerSecond optionally throttles query submission client-side.
	// Zero means unlimited.
	RatePerSecond float64 `json:"rate_per_second,omitempty" yaml:"rate_per_second,omitempty"`

	// RateBurst is the throttle burst size; defaults to 1 when throttled.
	RateBurst int `json:"rate_burst,omitempty" yaml:"rate_burst,omitempty"`

	// StrictDecode aborts result decoding on the first coercion failure
	// instead of skipping the offending row.
	StrictDecode bool `json:"strict_decode,omitempty" yaml:"strict_decode,omitempty"`
}

// DefaultSettings returns settings with the documented defaults applied.
// Endpoint is left empty and must be supplied by the caller.
func DefaultSettings() *Settings {
	return &Settings{
		RequestTimeoutMs: DefaultRequestTimeoutMs,
	}
}

// RequestTimeout returns the receive budget as a duration.
func (s *Settings) RequestTimeout() time.Duration {
	if s.RequestTimeoutMs <= 0 {
		return DefaultRequestTimeoutMs * time.Millisecond
	}
	return time.Duration(s.RequestTimeoutMs) * time.Millisecond
}

// Validate checks the settings record for completeness and consistency.
func (s *Settings) Validate() error {
	if s.Endpoint == "" {
		return errors.WrapInvalid(errors.ErrMissingEndpoint,
			"Settings", "Validate", "endpoint check")
	}

	parsed, err := url.Parse(s.Endpoint)
	if err != nil {
		return errors.WrapInvalid(err, "Settings", "Validate", "endpoint parse")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.WrapInvalid(
			fmt.Errorf("endpoint scheme must be http or https, got %q", parsed.Scheme),
			"Settings", "Validate", "endpoint scheme check")
	}
	if parsed.Host == "" {
		return errors.WrapInvalid(
			fmt.Errorf("endpoint %q has no host", s.Endpoint),
			"Settings", "Validate", "endpoint host check")
	}

	if s.RequestTimeoutMs < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("request_timeout_ms cannot be negative"),
			"Settings", "Validate", "timeout check")
	}

	if s.Authentication != nil {
		if err := s.Authentication.validate(); err != nil {
			return errors.WrapInvalid(err, "Settings", "Validate", "authentication check")
		}
	}

	if s.RatePerSecond < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("rate_per_second cannot be negative"),
			"Settings", "Validate", "rate check")
	}
	if s.RateBurst < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("rate_burst cannot be negative"),
			"Settings", "Validate", "rate check")
	}

	return nil
}

// Clone creates a deep copy of the settings record.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return DefaultSettings()
	}

	// JSON round trip covers the nested maps and slices
	data, err := json.Marshal(s)
	if err != nil {
		copied := *s
		return &copied
	}

	var clone Settings
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *s
		return &copied
	}

	return &clone
}
