//go:build !integration

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestTraceIDEchoesHeader(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), TraceID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Header().Get("X-Trace-Id") == "" {
		t.Error("expected an X-Trace-Id response header")
	}
}

func TestRequestLogCountsBytesAndStatus(t *testing.T) {
	var got *statusWriter
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = w.(*statusWriter)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}), RequestLog(nopLogger()))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got.status != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", got.status)
	}
	if got.bytes != len("short and stout") {
		t.Errorf("expected %d bytes, got %d", len("short and stout"), got.bytes)
	}
}

func TestRecoverTurnsPanicInto500(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("register on fire")
	}), Recover(nopLogger()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected a json error body, got content type %q", ct)
	}
}

func TestTimeoutCancelsContext(t *testing.T) {
	done := make(chan struct{})
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
			t.Error("expected the request context to be cancelled")
		}
		close(done)
	}), Timeout(5*time.Millisecond))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	<-done
}
