package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"calliope-hq/calliope/pkg/gateway/types"
)

const (
	// MaxRequestBodySize is the default maximum request body size (1MB).
	// The configured limit takes precedence when set.
	MaxRequestBodySize = 1 * 1024 * 1024

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// Payload is a parsed request body: an arbitrary JSON object. Fields are
// read optionally by the handlers; parsing imposes no schema beyond JSON
// well-formedness.
type Payload map[string]any

// RequestError represents a request parsing or validation failure. It is a
// client fault and maps to HTTP 400.
type RequestError struct {
	Message string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to an error envelope.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message)
}

// ParseBody reads and parses a JSON request body.
//
// The body is limited to maxBytes (MaxRequestBodySize when maxBytes is not
// positive) to prevent memory exhaustion. An absent or empty body, a body
// over the limit, invalid JSON, and a non-object top level are all client
// faults: the returned RequestError carries the diagnostic. On success the
// decoded object is returned unchanged.
func ParseBody(r io.Reader, maxBytes int64) (Payload, *RequestError) {
	if maxBytes <= 0 {
		maxBytes = MaxRequestBodySize
	}

	if r == nil {
		return nil, &RequestError{Message: "request body is empty"}
	}

	body, err := io.ReadAll(io.LimitReader(r, maxBytes))
	if err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("failed to read request body: %v", err)}
	}

	if len(body) == 0 {
		return nil, &RequestError{Message: "request body is empty"}
	}

	if int64(len(body)) >= maxBytes {
		return nil, &RequestError{Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", maxBytes)}
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("invalid JSON in request body: %v", err)}
	}

	// JSON null, arrays, and scalars are well-formed but carry no fields the
	// handlers could read.
	object, ok := value.(map[string]any)
	if !ok {
		return nil, &RequestError{Message: "request body must be a JSON object"}
	}

	return Payload(object), nil
}

// CheckTextLength validates that value is a non-empty string of at most
// maxLength characters.
//
// It fails when value is absent, not a string, or empty, and when the
// character count exceeds maxLength; exactly maxLength characters passes.
// Length is measured in characters of the decoded string, not bytes. On
// success the string is returned unchanged.
func CheckTextLength(value any, maxLength int, fieldName string) (string, *RequestError) {
	text, ok := value.(string)
	if !ok || text == "" {
		return "", &RequestError{
			Message: fmt.Sprintf("%s must be non-empty and a string.", fieldName),
		}
	}

	if length := utf8.RuneCountInString(text); length > maxLength {
		return "", &RequestError{
			Message: fmt.Sprintf("%s exceeds maximum length %d (current: %d).", fieldName, maxLength, length),
		}
	}

	return text, nil
}
