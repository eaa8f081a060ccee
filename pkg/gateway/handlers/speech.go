package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"calliope-hq/calliope/pkg/gateway"
	"calliope-hq/calliope/pkg/gateway/middleware"
	"calliope-hq/calliope/pkg/gateway/types"
	"calliope-hq/calliope/pkg/upstream"
)

// SpeechConfig contains the per-handler settings for speech synthesis.
type SpeechConfig struct {
	// Model is the upstream TTS model identifier.
	Model string

	// Voice is the prebuilt voice name sent with every request.
	Voice string

	// MaxTextLength bounds the text field in characters.
	MaxTextLength int

	// MaxBodyBytes bounds the request body size. Zero selects the package
	// default.
	MaxBodyBytes int64
}

// SpeechHandler handles speech synthesis requests on /v1/generate/speech.
type SpeechHandler struct {
	client Generator
	keys   KeySource
	config SpeechConfig
}

// NewSpeechHandler creates a new speech synthesis handler.
func NewSpeechHandler(client Generator, keys KeySource, config SpeechConfig) *SpeechHandler {
	return &SpeechHandler{
		client: client,
		keys:   keys,
		config: config,
	}
}

// ServeHTTP implements http.Handler.
//
// The pipeline matches the text handler, with one extra post-call check:
// a success response from the upstream must carry inline audio data at
// candidates[0].content.parts[0].inlineData.data, otherwise the handler
// answers 500.
func (h *SpeechHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	startTime := time.Now()

	if r.Method != http.MethodPost {
		errResp := types.NewErrorResponse(
			fmt.Sprintf("Method %s not allowed. Use POST instead.", r.Method),
			http.StatusMethodNotAllowed,
		)
		writeError(ctx, w, errResp)
		return
	}

	apiKey, err := h.keys.APIKey(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "credential resolution failed",
			"request_id", requestID,
			"error", err,
		)
		writeError(ctx, w, gateway.HandleError(err))
		return
	}

	payload, reqErr := gateway.ParseBody(r.Body, h.config.MaxBodyBytes)
	if reqErr != nil {
		slog.WarnContext(ctx, "rejected request body",
			"request_id", requestID,
			"error", reqErr.Message,
		)
		writeError(ctx, w, reqErr.ToErrorResponse())
		return
	}

	text, reqErr := gateway.CheckTextLength(payload["text"], h.config.MaxTextLength, "text")
	if reqErr != nil {
		slog.WarnContext(ctx, "rejected text field",
			"request_id", requestID,
			"error", reqErr.Message,
		)
		writeError(ctx, w, reqErr.ToErrorResponse())
		return
	}

	slog.InfoContext(ctx, "processing speech synthesis request",
		"request_id", requestID,
		"model", h.config.Model,
		"voice", h.config.Voice,
		"text_chars", utf8.RuneCountInString(text),
	)

	upstreamReq := upstream.NewSpeechRequest(text, h.config.Voice)

	upstreamStart := time.Now()
	data, err := h.client.GenerateContent(ctx, h.config.Model, apiKey, upstreamReq)
	upstreamLatency := time.Since(upstreamStart)

	if err != nil {
		slog.ErrorContext(ctx, "upstream speech synthesis failed",
			"request_id", requestID,
			"model", h.config.Model,
			"error", err,
			"upstream_latency_ms", upstreamLatency.Milliseconds(),
		)
		writeError(ctx, w, gateway.HandleError(err))
		return
	}

	// A success status without audio content is an upstream fault, not
	// something the client can act on.
	var parsed upstream.GenerateContentResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		slog.ErrorContext(ctx, "upstream speech response has unexpected shape",
			"request_id", requestID,
			"model", h.config.Model,
			"error", err,
		)
		writeError(ctx, w, types.NewServerError("Upstream response did not contain audio data."))
		return
	}
	if _, ok := parsed.InlineAudioData(); !ok {
		slog.ErrorContext(ctx, "upstream speech response missing audio data",
			"request_id", requestID,
			"model", h.config.Model,
			"response_bytes", len(data),
		)
		writeError(ctx, w, types.NewServerError("Upstream response did not contain audio data."))
		return
	}

	slog.InfoContext(ctx, "speech synthesis successful",
		"request_id", requestID,
		"model", h.config.Model,
		"voice", h.config.Voice,
		"response_bytes", len(data),
		"upstream_latency_ms", upstreamLatency.Milliseconds(),
		"total_latency_ms", time.Since(startTime).Milliseconds(),
	)

	if err := gateway.WriteSuccess(w, data); err != nil {
		slog.ErrorContext(ctx, "failed to write response",
			"request_id", requestID,
			"error", err,
		)
	}
}
