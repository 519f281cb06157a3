package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	api, method, route string
	status             int
}

// fakeMetrics records calls for assertions.
type fakeMetrics struct {
	mu           sync.Mutex
	requests     []recordedRequest
	authFailures []string
	sessions     int
}

func (f *fakeMetrics) RecordRequest(api, method, route string, statusCode int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{api, method, route, statusCode})
}

func (f *fakeMetrics) RecordAuthFailure(api, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authFailures = append(f.authFailures, api+":"+reason)
}

func (f *fakeMetrics) RecordSessionCreated() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions++
}

func (f *fakeMetrics) SetBackendUp(string, bool) {}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}
