// Package handlers provides HTTP request handlers for the gateway server.
//
// This package implements all HTTP endpoint handlers: text generation,
// speech synthesis, and health checks. Each handler is responsible for
// resolving the upstream credential, validating the request, forwarding
// it upstream, and writing the response.
//
// # Handler Types
//
// Generation handlers:
//   - TextHandler: POST /v1/generate/text, proxies text generation
//   - SpeechHandler: POST /v1/generate/speech, proxies speech synthesis
//
// Health check handlers:
//   - HealthHandler: GET /health, liveness probe (always returns 200)
//   - ReadyHandler: GET /ready, readiness probe (follows the upstream probe)
//
// # Request Flow
//
// Both generation handlers follow the same pipeline:
//
//  1. Resolve the upstream API key from the configured sources
//  2. Parse the request body (JSON object, size-capped)
//  3. Validate the text field lengths in characters
//  4. Build the fixed upstream payload for the use case
//  5. Forward to the Generative Language API (one call, no retries)
//  6. Write the upstream JSON back verbatim with the fixed success headers
//
// The first failing step short-circuits the pipeline; its error envelope
// becomes the response. The speech handler adds one post-call check: a
// success response must carry inline audio data, otherwise it answers 500.
//
// # Error Handling
//
// All handlers return errors as the uniform envelope:
//
//	{
//	  "error": {
//	    "message": "text exceeds maximum length 3000 (current: 3001)."
//	  }
//	}
//
// # Health Checks
//
// Health check endpoints are designed for Kubernetes liveness/readiness
// probes:
//
//	livenessProbe:
//	  httpGet:
//	    path: /health
//	    port: 8080
//	  periodSeconds: 30
//
//	readinessProbe:
//	  httpGet:
//	    path: /ready
//	    port: 8080
//	  periodSeconds: 10
//
// With the reachability probe disabled, /ready always reports ready.
package handlers
