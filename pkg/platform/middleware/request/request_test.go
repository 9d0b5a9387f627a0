package request

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("propagates inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "req-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))
	})

	t.Run("mints id when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, strings.Repeat("x", maxRequestIDLen+1))
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Len(t, seen, 36)
	})
}

func TestRecovery(t *testing.T) {
	h := Recovery(discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, rec.Body.String())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/claims", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/v1/claims"`)
	assert.Contains(t, out, `"request_id"`)
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := Timeout(time.Second)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}

func TestContentTypeJSON(t *testing.T) {
	h := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name        string
		contentType string
		body        string
		want        int
	}{
		{"json body", "application/json; charset=utf-8", `{}`, http.StatusNoContent},
		{"form body", "application/x-www-form-urlencoded", `a=b`, http.StatusBadRequest},
		{"no body", "text/plain", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequestWithContext(context.Background(), http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
