package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"calliope-hq/calliope/pkg/gateway/types"
)

// WriteSuccess writes a 200 response with the fixed success headers.
//
// json.RawMessage data is written byte for byte, so upstream responses pass
// through losslessly; anything else is serialized with encoding/json. The
// Cache-Control header forbids caching because generated content is unique
// per request.
func WriteSuccess(w http.ResponseWriter, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)

	switch body := data.(type) {
	case json.RawMessage:
		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("failed to write response body: %w", err)
		}
		return nil
	case []byte:
		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("failed to write response body: %w", err)
		}
		return nil
	default:
		if err := json.NewEncoder(w).Encode(data); err != nil {
			return fmt.Errorf("failed to encode JSON response: %w", err)
		}
		return nil
	}
}

// WriteJSON writes a JSON response with the given status code.
// It sets the content-type header and reports marshaling errors.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteError writes an error envelope with its HTTP status code.
func WriteError(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSON(w, errResp.HTTPStatusCode(), errResp)
}
