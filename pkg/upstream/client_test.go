package upstream

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ClientConfig
		wantErr bool
	}{
		{
			name:    "missing base URL",
			cfg:     ClientConfig{},
			wantErr: true,
		},
		{
			name:    "valid config",
			cfg:     ClientConfig{BaseURL: "https://generativelanguage.googleapis.com"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg, nil)
			if tt.wantErr {
				var cfgErr *ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("NewClient() error = %v, want *ConfigError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if client.Timeout() != DefaultTimeout {
				t.Errorf("Timeout() = %s, want default %s", client.Timeout(), DefaultTimeout)
			}
		})
	}
}

func TestGenerateContentPassthrough(t *testing.T) {
	// Deliberately odd formatting: the client must hand back the upstream
	// bytes exactly, whitespace included.
	upstreamBody := `{"candidates": [ {"content":{"parts":[{"text":"hello"}]}} ],  "modelVersion":"gemini-2.0-flash"}`

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)

		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key query parameter = %q, want test-key", got)
		}
		if !strings.HasPrefix(r.URL.Path, "/v1beta/models/gemini-2.0-flash") {
			t.Errorf("path = %q, want /v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	raw, err := client.GenerateContent(context.Background(), "gemini-2.0-flash", "test-key", NewTextRequest("hi", ""))
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}

	if !bytes.Equal(raw, []byte(upstreamBody)) {
		t.Errorf("response bytes differ from upstream body:\n got %s\nwant %s", raw, upstreamBody)
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("upstream saw %d requests, want exactly 1", got)
	}
}

func TestGenerateContentUpstreamStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{name: "bad request", statusCode: 400, body: `{"error":{"message":"invalid argument"}}`},
		{name: "rate limited", statusCode: 429, body: `{"error":{"message":"quota exceeded"}}`},
		{name: "server error", statusCode: 500, body: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewClient(ClientConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil)
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			defer client.Close()

			_, err = client.GenerateContent(context.Background(), "gemini-2.0-flash", "k", NewTextRequest("hi", ""))

			var upErr *UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("error = %T (%v), want *UpstreamError", err, err)
			}
			if upErr.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", upErr.StatusCode, tt.statusCode)
			}
			if !strings.Contains(upErr.Error(), tt.body) {
				t.Errorf("Error() = %q, want it to contain the upstream body %q", upErr.Error(), tt.body)
			}
		})
	}
}

func TestGenerateContentMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"candidates": [truncated`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	_, err = client.GenerateContent(context.Background(), "gemini-2.0-flash", "k", NewTextRequest("hi", ""))

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %T (%v), want *ParseError", err, err)
	}
	if parseErr.Cause == nil {
		t.Error("ParseError.Cause is nil, want the decoder diagnostic")
	}
	if !strings.Contains(parseErr.Error(), "parse") {
		t.Errorf("Error() = %q, want a parse diagnostic", parseErr.Error())
	}
}

func TestGenerateContentTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	timeout := 50 * time.Millisecond
	client, err := NewClient(ClientConfig{BaseURL: server.URL, Timeout: timeout}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	start := time.Now()
	_, err = client.GenerateContent(context.Background(), "gemini-2.0-flash", "k", NewTextRequest("hi", ""))
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %T (%v), want *TimeoutError", err, err)
	}
	if timeoutErr.Timeout != timeout {
		t.Errorf("TimeoutError.Timeout = %s, want %s", timeoutErr.Timeout, timeout)
	}
	if !strings.Contains(timeoutErr.Error(), timeout.String()) {
		t.Errorf("Error() = %q, want it to name the configured timeout %s", timeoutErr.Error(), timeout)
	}
	// The call must not outlive the deadline by much: cancellation, not polling.
	if elapsed > 2*time.Second {
		t.Errorf("call took %s, want prompt cancellation at the %s deadline", elapsed, timeout)
	}
}

func TestGenerateContentTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.GenerateContent(context.Background(), "gemini-2.0-flash", "k", NewTextRequest("hi", ""))

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %T (%v), want *TransportError", err, err)
	}
	if transportErr.Cause == nil {
		t.Error("TransportError.Cause is nil, want the underlying error")
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models" {
			t.Errorf("path = %q, want /v1beta/models", r.URL.Path)
		}
		if got := r.URL.Query().Get("pageSize"); got != "1" {
			t.Errorf("pageSize = %q, want 1", got)
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"models/gemini-2.0-flash"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	list, err := client.ListModels(context.Background(), "k")
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(list.Models) != 1 || list.Models[0].Name != "models/gemini-2.0-flash" {
		t.Errorf("ListModels() = %+v, want one model named models/gemini-2.0-flash", list)
	}
}

type recordedCall struct {
	model  string
	status string
}

type mockRecorder struct {
	calls    []recordedCall
	timeouts int32
}

func (m *mockRecorder) RecordUpstreamRequest(model, status string, duration time.Duration) {
	m.calls = append(m.calls, recordedCall{model: model, status: status})
}

func (m *mockRecorder) RecordUpstreamTimeout(model string) {
	atomic.AddInt32(&m.timeouts, 1)
}

func TestClientRecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	recorder := &mockRecorder{}
	client, err := NewClient(ClientConfig{BaseURL: server.URL, Timeout: time.Second}, recorder)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	if _, err := client.GenerateContent(context.Background(), "gemini-2.0-flash", "k", NewTextRequest("hi", "")); err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}

	if len(recorder.calls) != 1 {
		t.Fatalf("recorded %d calls, want 1", len(recorder.calls))
	}
	if recorder.calls[0].model != "gemini-2.0-flash" || recorder.calls[0].status != "200" {
		t.Errorf("recorded call = %+v, want model gemini-2.0-flash status 200", recorder.calls[0])
	}
}

func TestGenerateContentEmitsClientSpan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("traceparent") == "" {
			t.Error("traceparent header not propagated to upstream")
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	ctx, parent := provider.Tracer("test").Start(context.Background(), "parent")

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	if _, err := client.GenerateContent(ctx, "gemini-2.0-flash", "k", NewTextRequest("hi", "")); err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	parent.End()

	spans := exporter.GetSpans()
	var generateSpan *tracetest.SpanStub
	for i := range spans {
		if spans[i].Name == "upstream.generate" {
			generateSpan = &spans[i]
		}
	}
	if generateSpan == nil {
		t.Fatal("upstream.generate span not exported")
	}
	if generateSpan.SpanKind != trace.SpanKindClient {
		t.Errorf("SpanKind = %v, want SpanKindClient", generateSpan.SpanKind)
	}

	var model string
	for _, attr := range generateSpan.Attributes {
		if string(attr.Key) == "calliope.model" {
			model = attr.Value.AsString()
		}
	}
	if model != "gemini-2.0-flash" {
		t.Errorf("calliope.model attribute = %q, want gemini-2.0-flash", model)
	}
}
