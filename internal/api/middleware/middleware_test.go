package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var fromCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	echoed := rec.Header().Get(RequestIDHeader)
	if echoed == "" {
		t.Fatal("expected a generated request ID on the response")
	}
	if fromCtx != echoed {
		t.Fatalf("expected context and header to agree, got %q and %q", fromCtx, echoed)
	}
}

func TestRequestID_EchoesCallerID(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "caller-42" {
		t.Fatalf("expected the caller's ID echoed, got %q", got)
	}
}

func TestRequestID_ReplacesOversizedID(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	oversized := strings.Repeat("a", maxRequestIDLen+1)
	req.Header.Set(RequestIDHeader, oversized)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	got := rec.Header().Get(RequestIDHeader)
	if got == oversized {
		t.Fatal("expected an oversized caller ID to be replaced")
	}
	if got == "" || len(got) > maxRequestIDLen {
		t.Fatalf("expected a generated ID within bounds, got %q", got)
	}
}

func TestMetrics_CountsRequestsAndErrors(t *testing.T) {
	var requests, errs atomic.Int64

	ok := Metrics(&requests, &errs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	failing := Metrics(&requests, &errs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	failing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if requests.Load() != 3 {
		t.Fatalf("expected 3 requests counted, got %d", requests.Load())
	}
	if errs.Load() != 1 {
		t.Fatalf("expected 1 error counted, got %d", errs.Load())
	}
}
