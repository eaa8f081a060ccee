package handlers

import (
	"context"
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

// TextConfig contains the per-handler settings for text generation.
type TextConfig struct {
	// Model is the upstream model identifier.
	Model string

	// MaxPromptLength bounds the prompt field in characters.
	MaxPromptLength int

	// MaxSystemInstructionLength bounds the optional systemInstruction field.
	MaxSystemInstructionLength int

	// MaxBodyBytes bounds the request body size. Zero selects the package
	// default.
	MaxBodyBytes int64
}

// TextHandler handles text generation requests on /v1/generate/text.
type TextHandler struct {
	client Generator
	keys   KeySource
	config TextConfig
}

// NewTextHandler creates a new text generation handler.
func NewTextHandler(client Generator, keys KeySource, config TextConfig) *TextHandler {
	return &TextHandler{
		client: client,
		keys:   keys,
		config: config,
	}
}

// ServeHTTP implements http.Handler.
//
// The pipeline runs credential resolution, body parsing, and field
// validation in order; the first failure short-circuits and is written as
// the response. On success the upstream JSON is passed through verbatim.
func (h *TextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	prompt, reqErr := gateway.CheckTextLength(payload["prompt"], h.config.MaxPromptLength, "prompt")
	if reqErr != nil {
		slog.WarnContext(ctx, "rejected prompt field",
			"request_id", requestID,
			"error", reqErr.Message,
		)
		writeError(ctx, w, reqErr.ToErrorResponse())
		return
	}

	// systemInstruction is optional: null and empty string mean "none".
	systemInstruction := ""
	if raw, ok := payload["systemInstruction"]; ok && raw != nil && raw != "" {
		systemInstruction, reqErr = gateway.CheckTextLength(raw, h.config.MaxSystemInstructionLength, "systemInstruction")
		if reqErr != nil {
			slog.WarnContext(ctx, "rejected systemInstruction field",
				"request_id", requestID,
				"error", reqErr.Message,
			)
			writeError(ctx, w, reqErr.ToErrorResponse())
			return
		}
	}

	slog.InfoContext(ctx, "processing text generation request",
		"request_id", requestID,
		"model", h.config.Model,
		"prompt_chars", utf8.RuneCountInString(prompt),
		"has_system_instruction", systemInstruction != "",
	)

	upstreamReq := upstream.NewTextRequest(prompt, systemInstruction)

	upstreamStart := time.Now()
	data, err := h.client.GenerateContent(ctx, h.config.Model, apiKey, upstreamReq)
	upstreamLatency := time.Since(upstreamStart)

	if err != nil {
		slog.ErrorContext(ctx, "upstream text generation failed",
			"request_id", requestID,
			"model", h.config.Model,
			"error", err,
			"upstream_latency_ms", upstreamLatency.Milliseconds(),
		)
		writeError(ctx, w, gateway.HandleError(err))
		return
	}

	slog.InfoContext(ctx, "text generation successful",
		"request_id", requestID,
		"model", h.config.Model,
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

// writeError writes an error envelope and logs write failures.
func writeError(ctx context.Context, w http.ResponseWriter, errResp *types.ErrorResponse) {
	if err := gateway.WriteError(w, errResp); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}
