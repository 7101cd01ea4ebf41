package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	logpkg "github.com/kailas-cloud/dlf/internal/logger"
)

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := jsonRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/search", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "internal error" {
		t.Errorf("body = %v", body)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("panic not logged")
	}
}

func TestJSONRecoverer_AbortHandler(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rvr := recover(); rvr != http.ErrAbortHandler {
			t.Errorf("recovered %v, want ErrAbortHandler", rvr)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var ctxLogger *zap.Logger
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logpkg.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	h := chiMiddleware.RequestID(wideEventMiddleware(zap.New(core))(inner))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/search?settings=secret-token", http.NoBody))

	requestID := rr.Header().Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("X-Request-ID not set")
	}
	if ctxLogger == nil {
		t.Fatal("request logger not stored in context")
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d lines, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != requestID || fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("fields = %v", fields)
	}
	if fields["path"] != "/api/search" {
		t.Errorf("path = %v", fields["path"])
	}
	for _, v := range fields {
		if s, ok := v.(string); ok && s == "settings=secret-token" {
			t.Error("query string logged")
		}
	}
}
