package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"calliope-hq/calliope/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultTimeout bounds an upstream call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// MetricsRecorder receives upstream call outcomes. A nil recorder disables
// recording.
type MetricsRecorder interface {
	// RecordUpstreamRequest records one completed upstream call.
	// status is the numeric HTTP status, or "timeout" / "transport_error"
	// when no response arrived.
	RecordUpstreamRequest(model, status string, duration time.Duration)

	// RecordUpstreamTimeout records a call cancelled by the deadline.
	RecordUpstreamTimeout(model string)
}

// ClientConfig contains the configuration for the upstream client.
type ClientConfig struct {
	// BaseURL is the root of the Generative Language API,
	// e.g. "https://generativelanguage.googleapis.com".
	BaseURL string

	// Timeout bounds each call end to end: connection, request, and body
	// read. Default: DefaultTimeout.
	Timeout time.Duration

	// Connection pool tuning. Zero values select the defaults below.
	MaxIdleConns        int           // Default: 100
	MaxIdleConnsPerHost int           // Default: 10
	IdleConnTimeout     time.Duration // Default: 90s
}

// Client calls the Generative Language API. Each call issues exactly one
// outbound request: no retries, no caching. Responses are returned as raw
// JSON so the gateway can pass them through without reshaping.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	metrics MetricsRecorder
}

// NewClient creates an upstream client with a pooled transport.
// metrics may be nil.
func NewClient(cfg ClientConfig, metrics MetricsRecorder) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &ConfigError{Field: "base_url", Message: "base URL is required"}
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, &ConfigError{Field: "base_url", Message: fmt.Sprintf("invalid base URL: %v", err)}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 100
	}
	maxIdlePerHost := cfg.MaxIdleConnsPerHost
	if maxIdlePerHost <= 0 {
		maxIdlePerHost = 10
	}
	idleTimeout := cfg.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        maxIdle,
		MaxIdleConnsPerHost: maxIdlePerHost,
		IdleConnTimeout:     idleTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		baseURL: cfg.BaseURL,
		timeout: timeout,
		client:  &http.Client{Transport: transport},
		metrics: metrics,
	}, nil
}

// Timeout returns the configured per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// GenerateContent posts a generation request for the given model and returns
// the upstream response as validated raw JSON, byte for byte.
func (c *Client) GenerateContent(ctx context.Context, model, apiKey string, req *GenerateContentRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.endpoint("/v1beta/models/"+model+":generateContent", apiKey, nil)

	ctx, span := tracing.StartClientSpan(ctx, "upstream.generate")
	span.SetAttributes(attribute.String(tracing.AttrModel, model))
	defer span.End()

	start := time.Now()
	respBody, err := c.do(ctx, http.MethodPost, endpoint, body, model)
	if err != nil {
		tracing.SetError(span, err)
		return nil, err
	}

	// Unmarshal into a RawMessage: validates the syntax of the whole body
	// while keeping the bytes verbatim for pass-through.
	var raw json.RawMessage
	if err := json.Unmarshal(respBody, &raw); err != nil {
		parseErr := &ParseError{RawResponse: string(respBody), Cause: err}
		tracing.SetError(span, parseErr)
		return nil, parseErr
	}

	slog.DebugContext(ctx, "upstream call succeeded",
		"model", model,
		"latency_ms", time.Since(start).Milliseconds(),
		"response_bytes", len(raw),
	)
	return raw, nil
}

// ListModels fetches the first page of the model listing. It is used by the
// reachability probe; callers control the deadline through ctx.
func (c *Client) ListModels(ctx context.Context, apiKey string) (*ModelList, error) {
	endpoint := c.endpoint("/v1beta/models", apiKey, url.Values{"pageSize": {"1"}})

	respBody, err := c.do(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	var list ModelList
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, &ParseError{RawResponse: string(respBody), Cause: err}
	}
	return &list, nil
}

// endpoint builds a full request URL with the API key in the query string.
func (c *Client) endpoint(path, apiKey string, extra url.Values) string {
	query := url.Values{}
	for k, vs := range extra {
		query[k] = vs
	}
	query.Set("key", apiKey)
	return c.baseURL + path + "?" + query.Encode()
}

// do performs exactly one HTTP exchange bounded by the configured timeout
// and maps every failure to a typed error. On success it returns the
// response body bytes.
//
// The request URL carries the API key, so it is never logged.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, model string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tracing.Inject(ctx, req.Header)

	slog.DebugContext(ctx, "sending upstream request", "method", method, "model", model)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.record(model, "timeout", start)
			c.recordTimeout(model)
			return nil, &TimeoutError{Timeout: c.timeout}
		}
		c.record(model, "transport_error", start)
		return nil, &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			c.record(model, "timeout", start)
			c.recordTimeout(model)
			return nil, &TimeoutError{Timeout: c.timeout}
		}
		c.record(model, strconv.Itoa(resp.StatusCode), start)
		return nil, &ParseError{Cause: fmt.Errorf("failed to read response: %w", err)}
	}

	c.record(model, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

func (c *Client) record(model, status string, start time.Time) {
	if c.metrics == nil || model == "" {
		return
	}
	c.metrics.RecordUpstreamRequest(model, status, time.Since(start))
}

func (c *Client) recordTimeout(model string) {
	if c.metrics == nil || model == "" {
		return
	}
	c.metrics.RecordUpstreamTimeout(model)
}

// Close releases idle connections held by the transport.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
