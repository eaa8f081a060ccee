package types

// ErrorResponse is the uniform error envelope returned for every failure.
// The body exposes a single human-readable message; the HTTP status code is
// the only machine-readable discriminator, so the envelope carries no error
// type or code fields.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`

	// status is the HTTP status code to send with the envelope.
	// It is not serialized; clients see it only as the response status.
	status int
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`
}

// NewErrorResponse creates an error response with the given message and status.
func NewErrorResponse(message string, status int) *ErrorResponse {
	return &ErrorResponse{
		Error:  ErrorDetail{Message: message},
		status: status,
	}
}

// NewInvalidRequestError creates an error response for client input errors (400).
func NewInvalidRequestError(message string) *ErrorResponse {
	return NewErrorResponse(message, 400)
}

// NewConfigurationError creates an error response for operator configuration
// faults, such as a missing upstream API key (500).
func NewConfigurationError(message string) *ErrorResponse {
	return NewErrorResponse(message, 500)
}

// NewServerError creates an error response for internal server errors (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, 500)
}

// NewUpstreamStatusError creates an error response that propagates a non-2xx
// upstream status code verbatim.
func NewUpstreamStatusError(message string, status int) *ErrorResponse {
	return NewErrorResponse(message, status)
}

// NewGatewayTimeoutError creates an error response for upstream timeouts (504).
func NewGatewayTimeoutError(message string) *ErrorResponse {
	return NewErrorResponse(message, 504)
}

// HTTPStatusCode returns the HTTP status code for the response.
// Responses built without a status default to 500.
func (e *ErrorResponse) HTTPStatusCode() int {
	if e.status == 0 {
		return 500
	}
	return e.status
}
