// Package gateway provides request parsing, validation, and response writing
// for the generative-language gateway.
//
// The gateway package is the core of the request path: it turns raw HTTP
// bodies into validated payloads, enforces the text length limits, converts
// every failure into the uniform error envelope, and writes success responses
// with the fixed header set.
//
// # Architecture
//
// The gateway splits the request path into small, independently testable
// pieces:
//
//   - Request parsing: ParseBody reads and decodes JSON bodies with a size cap
//   - Validation: CheckTextLength enforces per-field character limits
//   - Error mapping: HandleError converts internal errors to envelopes
//   - Response writing: WriteSuccess and WriteError serialize responses
//   - Handlers: endpoint logic for text generation and speech synthesis
//   - Middleware: cross-cutting concerns (request ID, logging, CORS, recovery)
//
// # Request Flow
//
// The flow through the gateway for a generation request:
//
//  1. Client sends a JSON request to /v1/generate/text or /v1/generate/speech
//  2. Middleware chain processes the request (recovery → request ID → logging → CORS → metrics)
//  3. Handler parses the body and validates the text fields
//  4. The upstream API key is resolved from the configured sources
//  5. The request is forwarded to the generative-language API
//  6. The upstream JSON is returned to the client byte for byte
//
// # Error Handling
//
// Every failure produces the same envelope shape, with the HTTP status code
// as the only machine-readable discriminator:
//
//	{
//	  "error": {
//	    "message": "prompt exceeds maximum length 5000 (current: 5321)."
//	  }
//	}
//
// Client faults (malformed bodies, missing or oversized fields) map to 400,
// operator faults (missing API key) to 500, upstream statuses pass through
// verbatim, and timeouts map to 504.
//
// # Response Headers
//
// Successful responses always carry:
//
//	Content-Type: application/json
//	Cache-Control: no-cache, no-store, must-revalidate
//
// Generated content is unique per request, so intermediaries must not cache
// it.
//
// # Thread Safety
//
// All functions in this package are stateless and safe for concurrent use.
package gateway
