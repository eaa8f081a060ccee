package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"calliope-hq/calliope/pkg/gateway/types"
)

// Recovery catches panics in HTTP handlers and converts them into a 500
// response in the standard error envelope. The envelope message names the
// fault so clients can report it; the stack trace is only logged.
//
// Recovery must be the outermost middleware so that a panic anywhere in the
// chain still produces a well-formed response.
//
// Example usage:
//
//	handler = Recovery(handler)
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(r.Context())
				stack := debug.Stack()

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				)

				errResp := types.NewServerError(
					fmt.Sprintf("An unexpected error occurred: %v", err),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)

				// Encoding errors are unrecoverable at this point.
				_ = json.NewEncoder(w).Encode(errResp)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
