package clm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contract-chat-mapping/internal/core/domain"
	"contract-chat-mapping/internal/infra/httpx"
)

func testClient(t *testing.T, handler http.Handler) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(handler)

	limiter := httpx.NewRateLimiter(map[string]int{})
	retryer := httpx.NewRetryer(httpx.Policy{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   2 * time.Millisecond,
	})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	transport := httpx.NewClient(time.Second, limiter, retryer, log)
	return NewClient(transport, server.URL, "sess-1", log), server.Close
}

func TestCooperationID_Found(t *testing.T) {
	client, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != cooperationPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if cookie := r.Header.Get("Cookie"); cookie != "session=sess-1" {
			t.Errorf("unexpected cookie %q", cookie)
		}
		q := r.URL.Query()
		if q.Get("contractId") != "c-1" || q.Get("withDocVersion") != "true" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"contract": map[string]any{
					"contractInfo": map[string]any{"cooperationId": "coop-9"},
				},
			},
		})
	}))
	defer done()

	res := client.CooperationID(context.Background(), "c-1")
	if !res.OK() || res.Value != "coop-9" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestCooperationID_Missing(t *testing.T) {
	client, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"contract": map[string]any{}},
		})
	}))
	defer done()

	res := client.CooperationID(context.Background(), "c-1")
	if res.Reason != domain.StatusNoCooperation {
		t.Errorf("expected NO_COOPERATION, got %+v", res)
	}
}

func TestOpenChatID_Found(t *testing.T) {
	client, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != chatPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("cooperationId") != "coop-9" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"openChatId": "oc_abc"},
		})
	}))
	defer done()

	res := client.OpenChatID(context.Background(), "coop-9")
	if !res.OK() || res.Value != "oc_abc" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestOpenChatID_Missing(t *testing.T) {
	client, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer done()

	res := client.OpenChatID(context.Background(), "coop-9")
	if res.Reason != domain.StatusNoChatGroup {
		t.Errorf("expected NO_CHAT_GROUP, got %+v", res)
	}
}

func TestLookup_HTTPClassification(t *testing.T) {
	tests := []struct {
		status int
		expect domain.Status
	}{
		{http.StatusUnauthorized, domain.StatusAuthFailed},
		{http.StatusForbidden, domain.StatusPermissionDenied},
		{http.StatusInternalServerError, domain.StatusRetryExceeded},
		{http.StatusTeapot, domain.StatusUnknownError},
	}

	for _, tt := range tests {
		client, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		if res := client.CooperationID(context.Background(), "c-1"); res.Reason != tt.expect {
			t.Errorf("cooperation status %d: got %v, want %v", tt.status, res.Reason, tt.expect)
		}
		if res := client.OpenChatID(context.Background(), "coop-1"); res.Reason != tt.expect {
			t.Errorf("chat status %d: got %v, want %v", tt.status, res.Reason, tt.expect)
		}
		done()
	}
}

func TestLookup_MalformedBody(t *testing.T) {
	client, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer done()

	res := client.CooperationID(context.Background(), "c-1")
	if res.Reason != domain.StatusUnknownError {
		t.Errorf("expected UNKNOWN_ERROR for malformed body, got %+v", res)
	}
}
