package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jakehorton1228-droid/habit-tracker/internal/auth"
	"github.com/jakehorton1228-droid/habit-tracker/internal/logging"
)

func newAuthed(t *testing.T) (*AuthMiddleware, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Minute, time.Hour)
	return NewAuthMiddleware(tokens, nil, []string{"/api/auth/login/", "/health"}), tokens
}

func TestAuthRejectsMissingAndMalformedHeaders(t *testing.T) {
	m, _ := newAuthed(t)
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached without a token")
	}))

	for _, header := range []string{"", "token abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/habits/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestAuthAcceptsAccessTokenOnly(t *testing.T) {
	m, tokens := newAuthed(t)

	var gotUserID string
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = logging.GetUserID(r.Context())
	}))

	pair, err := tokens.IssuePair("user-1")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/habits/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("access token: status = %d, want 200", rec.Code)
	}
	if gotUserID != "user-1" {
		t.Fatalf("user id in context = %q, want user-1", gotUserID)
	}

	// A refresh token is not a credential for API calls.
	req = httptest.NewRequest(http.MethodGet, "/api/habits/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Refresh)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token: status = %d, want 401", rec.Code)
	}
}

func TestAuthSkipsListedPathsWithEitherSlash(t *testing.T) {
	m, _ := newAuthed(t)
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, path := range []string{"/api/auth/login/", "/api/auth/login", "/health", "/health/"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("%s: status = %d, want skip", path, rec.Code)
		}
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	m := NewCORSMiddleware([]string{"http://localhost:5173"})
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the router")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/habits/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("missing allow-origin header: %+v", rec.Header())
	}

	// Unlisted origins get no CORS headers.
	req = httptest.NewRequest(http.MethodOptions, "/api/habits/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected allow-origin for unlisted origin")
	}
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2, nil)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/habits/", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want burst of 2 then 429", codes)
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/habits/", nil)
	req.RemoteAddr = "10.0.0.2:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("second client: status = %d, want 200", rec.Code)
	}
}

func TestTracingSetsAndEchoesTraceID(t *testing.T) {
	m := NewTracingMiddleware(nil)
	var gotTraceID string
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTraceID = logging.GetTraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/habits/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if gotTraceID == "" {
		t.Fatal("trace id missing from context")
	}
	if rec.Header().Get("X-Trace-ID") != gotTraceID {
		t.Fatalf("header trace id %q != context %q", rec.Header().Get("X-Trace-ID"), gotTraceID)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/habits/", nil)
	req.Header.Set("X-Trace-ID", "supplied-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Trace-ID") != "supplied-id" {
		t.Fatalf("client trace id not honored: %q", rec.Header().Get("X-Trace-ID"))
	}
}
