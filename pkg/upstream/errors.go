package upstream

import (
	"fmt"
	"time"
)

// UpstreamError represents a non-2xx response from the generative-language
// API. The upstream status code is preserved so the gateway can pass it
// through verbatim.
type UpstreamError struct {
	// StatusCode is the HTTP status code returned by the upstream.
	StatusCode int

	// Body is the raw response body text.
	Body string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// TimeoutError represents a request that exceeded the configured timeout.
// The in-flight request is cancelled when the deadline fires; no further
// I/O happens for that call.
type TimeoutError struct {
	// Timeout is the configured timeout duration.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream request timed out after %s", e.Timeout)
}

// ParseError represents a response that arrived with a success status but
// could not be parsed as JSON.
type ParseError struct {
	// RawResponse is the raw response body that failed to parse.
	RawResponse string

	// Cause is the underlying parse error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse upstream response: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// TransportError represents a network-level failure other than a timeout:
// DNS resolution, connection reset, TLS handshake, and the like.
type TransportError struct {
	// Cause is the underlying transport error.
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream request failed: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an invalid client configuration.
type ConfigError struct {
	// Field is the configuration field that is invalid.
	Field string

	// Message describes the configuration error.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("upstream configuration error for field %q: %s", e.Field, e.Message)
}
