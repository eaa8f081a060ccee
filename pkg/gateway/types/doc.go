// Package types defines the outward response types of the gateway.
//
// Every failure, regardless of which stage of the request pipeline produced
// it, is expressed as an ErrorResponse: an HTTP status code plus a body of
// the form
//
//	{"error": {"message": "..."}}
//
// The message is the only structured information exposed to clients; there
// are no error type or code fields beyond the HTTP status itself. The
// constructors (NewInvalidRequestError, NewConfigurationError,
// NewUpstreamStatusError, ...) fix the status per failure class so handlers
// never pick numbers ad hoc.
//
// Successful responses have no envelope of their own: the gateway returns
// the upstream's JSON verbatim, so success types live with the upstream
// client, not here.
package types
