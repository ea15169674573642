package httpx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(timeout time.Duration, maxRetries int) *Client {
	limiter := NewRateLimiter(map[string]int{})
	retryer := NewRetryer(Policy{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   2 * time.Millisecond,
	})
	return NewClient(timeout, limiter, retryer, testLogger())
}

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected method POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("expected bearer header, got %q", auth)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body["contract_number"] != "CN-1" {
			t.Errorf("unexpected body: %v", body)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	c := testClient(time.Second, 0)
	resp, err := c.PostJSON(context.Background(), "contract_search", server.URL,
		map[string]string{"Authorization": "Bearer tok"},
		map[string]any{"contract_number": "CN-1", "page_size": 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != 200 || resp.Retries != 0 {
		t.Errorf("status=%d retries=%d", resp.Status, resp.Retries)
	}

	var decoded struct {
		OK bool `json:"ok"`
	}
	if err := resp.DecodeJSON(&decoded); err != nil || !decoded.OK {
		t.Errorf("decode failed: %v %+v", err, decoded)
	}
}

func TestClient_GetSendsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("contractId") != "c1" {
			t.Errorf("missing query param, got %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer server.Close()

	c := testClient(time.Second, 0)
	query := url.Values{}
	query.Set("contractId", "c1")
	resp, err := c.Get(context.Background(), "contract_info", server.URL, nil, query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != 200 {
		t.Errorf("status=%d", resp.Status)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	c := testClient(time.Second, 5)
	resp, err := c.Get(context.Background(), "", server.URL, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != 200 || resp.Retries != 2 || calls != 3 {
		t.Errorf("status=%d retries=%d calls=%d", resp.Status, resp.Retries, calls)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := testClient(time.Second, 5)
	resp, err := c.Get(context.Background(), "", server.URL, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != 403 || resp.Retries != 0 || calls != 1 {
		t.Errorf("status=%d retries=%d calls=%d", resp.Status, resp.Retries, calls)
	}
}

func TestClient_ConnectionFailureMapsToSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	c := testClient(100*time.Millisecond, 1)
	resp, err := c.Get(context.Background(), "", server.URL, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != StatusConnFailed {
		t.Errorf("expected sentinel status 0, got %d", resp.Status)
	}
	if resp.Retries != 1 {
		t.Errorf("expected 1 retry, got %d", resp.Retries)
	}
}

func TestClient_TimeoutIsPerAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := testClient(50*time.Millisecond, 1)
	resp, err := c.Get(context.Background(), "", server.URL, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != StatusConnFailed {
		t.Errorf("expected sentinel after timeouts, got %d", resp.Status)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}
