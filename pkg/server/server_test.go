package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mockapi "calliope-hq/calliope/internal/upstream"
	"calliope-hq/calliope/pkg/config"
	"calliope-hq/calliope/pkg/secrets"
	"calliope-hq/calliope/pkg/telemetry/metrics"
	"calliope-hq/calliope/pkg/upstream"
)

// newTestServer wires a gateway server against the fake upstream API and
// serves it over httptest. mutate may adjust the config before wiring.
func newTestServer(t *testing.T, mock *mockapi.MockServer, mutate func(*config.Config)) (*httptest.Server, *Server) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Upstream.BaseURL = mock.URL()
	if mutate != nil {
		mutate(cfg)
	}

	client, err := upstream.NewClient(upstream.ClientConfig{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create upstream client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	srv := NewServer(cfg, Dependencies{
		Generator: client,
		Keys:      secrets.NewStatic("test-key"),
		Collector: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts, srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return body
}

// errorMessage extracts the message from the standard error envelope.
func errorMessage(t *testing.T, body []byte) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("Response is not an error envelope: %v\nbody: %s", err, body)
	}
	return envelope.Error.Message
}

func TestServer_TextGeneration(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, nil)

	resp := postJSON(t, ts.URL+"/v1/generate/text", `{"prompt":"tell me a story"}`)
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200\nbody: %s", resp.StatusCode, body)
	}

	var parsed upstream.GenerateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content.Parts[0].Text != mockapi.DefaultGeneratedText {
		t.Errorf("Response text not passed through verbatim: %s", body)
	}

	if got := mock.LastAPIKey(); got != "test-key" {
		t.Errorf("Upstream API key = %q, want %q", got, "test-key")
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID response header not set")
	}
}

func TestServer_SpeechGeneration(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, nil)

	resp := postJSON(t, ts.URL+"/v1/generate/speech", `{"text":"read this aloud"}`)
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200\nbody: %s", resp.StatusCode, body)
	}

	var parsed upstream.GenerateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if data, ok := parsed.InlineAudioData(); !ok || data != mockapi.DefaultAudioData {
		t.Errorf("Response audio not passed through verbatim: %s", body)
	}

	// The synthesized upstream request must ask for audio with the
	// configured voice.
	sent := string(mock.LastRequestBody())
	if !strings.Contains(sent, `"AUDIO"`) {
		t.Errorf("Upstream request missing AUDIO modality: %s", sent)
	}
	if !strings.Contains(sent, config.DefaultVoice) {
		t.Errorf("Upstream request missing voice %q: %s", config.DefaultVoice, sent)
	}
}

func TestServer_ValidationError(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, nil)

	resp := postJSON(t, ts.URL+"/v1/generate/text", `{"prompt":""}`)
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Status = %d, want 400\nbody: %s", resp.StatusCode, body)
	}
	if got, want := errorMessage(t, body), "prompt must be non-empty and a string."; got != want {
		t.Errorf("Error message = %q, want %q", got, want)
	}
	if mock.RequestCount() != 0 {
		t.Errorf("Upstream called %d times for invalid request, want 0", mock.RequestCount())
	}
}

func TestServer_UpstreamErrorPassthrough(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, nil)

	mock.SetResponse("/v1beta/models/"+config.DefaultTextModel+":generateContent", mockapi.MockRateLimitError(30))

	resp := postJSON(t, ts.URL+"/v1/generate/text", `{"prompt":"hello"}`)
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("Status = %d, want 429\nbody: %s", resp.StatusCode, body)
	}
	if msg := errorMessage(t, body); !strings.Contains(msg, "Upstream returned status 429") {
		t.Errorf("Error message = %q, want upstream status mention", msg)
	}
}

func TestServer_UpstreamTimeout(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, func(cfg *config.Config) {
		cfg.Upstream.Timeout = 50 * time.Millisecond
	})

	mock.SetResponse("/v1beta/models/"+config.DefaultTextModel+":generateContent",
		mockapi.MockSlowResponse(2*time.Second))

	resp := postJSON(t, ts.URL+"/v1/generate/text", `{"prompt":"hello"}`)
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("Status = %d, want 504\nbody: %s", resp.StatusCode, body)
	}
	if msg := errorMessage(t, body); !strings.Contains(msg, "timed out") {
		t.Errorf("Error message = %q, want timeout mention", msg)
	}
}

func TestServer_MalformedUpstreamResponse(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, nil)

	mock.SetResponse("/v1beta/models/"+config.DefaultTextModel+":generateContent",
		mockapi.MockMalformedResponse())

	resp := postJSON(t, ts.URL+"/v1/generate/text", `{"prompt":"hello"}`)
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Status = %d, want 500\nbody: %s", resp.StatusCode, body)
	}
	if msg := errorMessage(t, body); !strings.Contains(msg, "parse upstream response") {
		t.Errorf("Error message = %q, want parse failure mention", msg)
	}
}

func TestServer_HealthEndpoints(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, nil)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/health", http.StatusOK, `"status":"ok"`},
		{"/ready", http.StatusOK, `"status":"ready"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s failed: %v", tt.path, err)
			}
			body := readBody(t, resp)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(string(body), tt.wantBody) {
				t.Errorf("Body %s does not contain %s", body, tt.wantBody)
			}
		})
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, nil)

	resp := postJSON(t, ts.URL+"/v1/generate/text", `{"prompt":"hello"}`)
	readBody(t, resp)

	metricsResp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	body := string(readBody(t, metricsResp))

	if metricsResp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", metricsResp.StatusCode)
	}
	if !strings.Contains(body, `calliope_gateway_requests_total{handler="text",status="200"} 1`) {
		t.Errorf("Exposition missing text request count:\n%s", body)
	}
	if !strings.Contains(body, `calliope_upstream_requests_total`) {
		t.Errorf("Exposition missing upstream families:\n%s", body)
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, func(cfg *config.Config) {
		cfg.Telemetry.Metrics.Enabled = false
	})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	readBody(t, resp)

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Status = %d, want 404 with metrics disabled", resp.StatusCode)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, nil)

	resp, err := http.Get(ts.URL + "/v1/generate/text")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("Status = %d, want 405\nbody: %s", resp.StatusCode, body)
	}
	if msg := errorMessage(t, body); !strings.Contains(msg, "Use POST instead") {
		t.Errorf("Error message = %q, want method guidance", msg)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, nil)

	resp, err := http.Get(ts.URL + "/v1/unknown")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	readBody(t, resp)

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	ts, _ := newTestServer(t, mock, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/generate/text", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS failed: %v", err)
	}
	readBody(t, resp)

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("Access-Control-Allow-Origin header not set on preflight")
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("Access-Control-Allow-Methods = %q, want POST included",
			resp.Header.Get("Access-Control-Allow-Methods"))
	}
}

func TestServer_StartStop(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	cfg := config.DefaultConfig()
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Upstream.BaseURL = mock.URL()

	client, err := upstream.NewClient(upstream.ClientConfig{BaseURL: cfg.Upstream.BaseURL}, nil)
	if err != nil {
		t.Fatalf("Failed to create upstream client: %v", err)
	}
	defer client.Close()

	srv := NewServer(cfg, Dependencies{
		Generator: client,
		Keys:      secrets.NewStatic("test-key"),
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(context.Background())
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !srv.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("Server did not report running before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}

	srv.Stop()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Start() returned error on graceful stop: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Stop()")
	}

	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestServer_StartTwice(t *testing.T) {
	mock := mockapi.NewMockServer()
	defer mock.Close()

	cfg := config.DefaultConfig()
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Upstream.BaseURL = mock.URL()

	client, err := upstream.NewClient(upstream.ClientConfig{BaseURL: cfg.Upstream.BaseURL}, nil)
	if err != nil {
		t.Fatalf("Failed to create upstream client: %v", err)
	}
	defer client.Close()

	srv := NewServer(cfg, Dependencies{
		Generator: client,
		Keys:      secrets.NewStatic("test-key"),
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(context.Background())
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !srv.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("Server did not report running before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := srv.Start(context.Background()); err == nil {
		t.Error("Second Start() did not return an error")
	}

	srv.Stop()
	<-errChan
}
