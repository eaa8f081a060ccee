package upstream

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockServer is a fake Generative Language API for testing the upstream
// client and the gateway end to end. By default it answers generateContent
// calls with a canned text or audio response, picked by the requested
// response modality, and model listings with a single model. Individual
// paths can be overridden to script failures.
type MockServer struct {
	server       *httptest.Server
	responses    map[string]MockResponse
	requestCount int
	lastKey      string
	lastBody     []byte
	mu           sync.Mutex
}

// MockResponse defines a scripted response for one path.
type MockResponse struct {
	StatusCode int
	Body       interface{}
	Delay      time.Duration
	Headers    map[string]string
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}

	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))

	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets a scripted response for a specific path. The path is
// matched without the query string, e.g.
// "/v1beta/models/gemini-2.0-flash:generateContent".
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[path] = response
}

// RequestCount returns the number of requests received.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.requestCount
}

// LastAPIKey returns the key query parameter of the most recent request.
func (ms *MockServer) LastAPIKey() string {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.lastKey
}

// LastRequestBody returns the body bytes of the most recent request.
func (ms *MockServer) LastRequestBody() []byte {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.lastBody
}

// Reset clears the request log and all scripted responses.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.requestCount = 0
	ms.lastKey = ""
	ms.lastBody = nil
	ms.responses = make(map[string]MockResponse)
}

// handler answers incoming requests from the scripted responses, falling
// back to canned success bodies for well-formed API calls.
func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		body = nil
	}

	ms.mu.Lock()
	ms.requestCount++
	ms.lastKey = r.URL.Query().Get("key")
	ms.lastBody = body
	response, scripted := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !scripted {
		response = ms.defaultResponse(r, body)
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.StatusCode)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// defaultResponse fabricates a plausible success for unscripted paths.
func (ms *MockServer) defaultResponse(r *http.Request, body []byte) MockResponse {
	switch {
	case strings.HasSuffix(r.URL.Path, ":generateContent"):
		if wantsAudio(body) {
			return MockResponse{
				StatusCode: http.StatusOK,
				Body:       MockAudioResponse(DefaultAudioData),
			}
		}
		return MockResponse{
			StatusCode: http.StatusOK,
			Body:       MockTextResponse(DefaultGeneratedText),
		}
	case strings.HasSuffix(r.URL.Path, "/v1beta/models"):
		return MockResponse{
			StatusCode: http.StatusOK,
			Body:       MockModelList("models/gemini-2.0-flash"),
		}
	default:
		return MockResponse{
			StatusCode: http.StatusNotFound,
			Body:       MockAPIError(http.StatusNotFound, "NOT_FOUND", "Requested entity was not found."),
		}
	}
}

// wantsAudio reports whether the request asks for the AUDIO response
// modality.
func wantsAudio(body []byte) bool {
	var req struct {
		GenerationConfig struct {
			ResponseModalities []string `json:"responseModalities"`
		} `json:"generationConfig"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return false
	}
	for _, m := range req.GenerationConfig.ResponseModalities {
		if m == "AUDIO" {
			return true
		}
	}
	return false
}

// Canned payload defaults.
const (
	// DefaultGeneratedText is the text carried by unscripted text responses.
	DefaultGeneratedText = "Once upon a time, a gateway passed this response through verbatim."
)

// DefaultAudioData is the base64 payload carried by unscripted audio
// responses.
var DefaultAudioData = base64.StdEncoding.EncodeToString([]byte("pcm-audio-bytes"))

// MockTextResponse creates a generateContent response carrying text.
func MockTextResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role": "model",
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
				"finishReason": "STOP",
				"index":        0,
			},
		},
		"usageMetadata": map[string]interface{}{
			"promptTokenCount":     7,
			"candidatesTokenCount": 14,
			"totalTokenCount":      21,
		},
	}
}

// MockAudioResponse creates a generateContent response carrying inline
// audio data.
func MockAudioResponse(base64Data string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role": "model",
					"parts": []map[string]interface{}{
						{
							"inlineData": map[string]interface{}{
								"mimeType": "audio/L16;codec=pcm;rate=24000",
								"data":     base64Data,
							},
						},
					},
				},
				"finishReason": "STOP",
				"index":        0,
			},
		},
	}
}

// MockModelList creates a models listing response.
func MockModelList(names ...string) map[string]interface{} {
	models := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		models = append(models, map[string]interface{}{"name": name})
	}
	return map[string]interface{}{"models": models}
}

// MockAPIError creates an error body in the API's error envelope.
func MockAPIError(code int, status, message string) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
			"status":  status,
		},
	}
}

// MockRateLimitError creates a 429 response with a Retry-After header.
func MockRateLimitError(retryAfterSeconds int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       MockAPIError(http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", "Quota exceeded."),
		Headers: map[string]string{
			"Retry-After": strconv.Itoa(retryAfterSeconds),
		},
	}
}

// MockSlowResponse creates a response that stalls for the given delay
// before answering, for exercising client timeouts.
func MockSlowResponse(delay time.Duration) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       MockTextResponse(DefaultGeneratedText),
		Delay:      delay,
	}
}

// MockMalformedResponse creates a 200 response whose body is not valid
// JSON.
func MockMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"candidates": [ this is not json`,
	}
}
