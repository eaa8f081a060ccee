package gateway

import (
	"errors"
	"fmt"

	"calliope-hq/calliope/pkg/gateway/types"
	"calliope-hq/calliope/pkg/secrets"
	"calliope-hq/calliope/pkg/upstream"
)

// HandleError converts the error types raised along the request path into
// error envelopes with the right HTTP status codes.
//
// Example usage:
//
//	if err != nil {
//	    errResp := HandleError(err)
//	    WriteError(w, errResp)
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	// Validation errors carry their own client-facing message.
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	// A missing API key is an operator fault, not a client one.
	var keyErr *secrets.NotConfiguredError
	if errors.As(err, &keyErr) {
		return types.NewConfigurationError(keyErr.Error())
	}

	var timeoutErr *upstream.TimeoutError
	if errors.As(err, &timeoutErr) {
		return types.NewGatewayTimeoutError(
			fmt.Sprintf("Upstream request timed out after %s.", timeoutErr.Timeout),
		)
	}

	// Non-2xx upstream statuses pass through verbatim.
	var upErr *upstream.UpstreamError
	if errors.As(err, &upErr) {
		return types.NewUpstreamStatusError(
			fmt.Sprintf("Upstream returned status %d: %s", upErr.StatusCode, upErr.Body),
			upErr.StatusCode,
		)
	}

	var parseErr *upstream.ParseError
	if errors.As(err, &parseErr) {
		return types.NewServerError(
			fmt.Sprintf("Failed to parse upstream response: %v", parseErr.Cause),
		)
	}

	var transportErr *upstream.TransportError
	if errors.As(err, &transportErr) {
		return types.NewServerError(
			fmt.Sprintf("Upstream request failed: %v", transportErr.Cause),
		)
	}

	var cfgErr *upstream.ConfigError
	if errors.As(err, &cfgErr) {
		return types.NewConfigurationError(cfgErr.Error())
	}

	// Default to internal server error for unknown errors
	return types.NewServerError(
		"An internal error occurred. Please try again later.",
	)
}
