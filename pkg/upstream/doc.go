// Package upstream implements the client for the Generative Language API.
//
// # Overview
//
// The gateway forwards each inbound request as exactly one outbound call:
// no retries, no caching, no reshaping of the response. The client validates
// that a successful response is well-formed JSON and hands the bytes back
// verbatim as a json.RawMessage so handlers can pass them through unchanged.
//
// # Usage
//
//	client, err := upstream.NewClient(upstream.ClientConfig{
//	    BaseURL: "https://generativelanguage.googleapis.com",
//	    Timeout: 30 * time.Second,
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	req := upstream.NewTextRequest("Write a haiku about rivers.", "")
//	raw, err := client.GenerateContent(ctx, "gemini-2.0-flash", apiKey, req)
//
// # Error Handling
//
// Every failure maps to a typed error:
//
//   - UpstreamError: non-2xx status, carries the upstream status and raw body
//   - TimeoutError: the configured deadline fired; the call was cancelled
//   - ParseError: 2xx response whose body is not valid JSON
//   - TransportError: any other network-level failure (DNS, reset, ...)
//   - ConfigError: invalid client configuration
//
// Handlers translate these into the outward error envelope; see
// pkg/gateway.HandleError.
//
// # Credentials
//
// The API key travels as the "key" query parameter, so request URLs are
// never logged. The key is resolved per call by the caller; the client
// holds no credential state.
package upstream
