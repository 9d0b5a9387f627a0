package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "auditlink/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})

	t.Run("wrong party maps to forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeForbidden, "caller is not the patient named on this claim"))

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
		}
	})

	t.Run("invalid state maps to conflict", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInvalidState, "cannot approve"))

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if w.Code != http.StatusConflict || body["error"] != "invalid_state" {
			t.Fatalf("expected 409 invalid_state, got %d %q", w.Code, body["error"])
		}
	})

	t.Run("unclassified error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("connection reset"))

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if w.Code != http.StatusInternalServerError || body["error"] != "internal_error" {
			t.Fatalf("expected 500 internal_error, got %d %q", w.Code, body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted")
		}
	})
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("accepts a single object", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
		var p payload
		if err := DecodeJSON(r, &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "a" {
			t.Fatalf("expected name a, got %q", p.Name)
		}
	})

	for name, body := range map[string]string{
		"unknown field":  `{"nope":1}`,
		"trailing data":  `{"name":"a"}{}`,
		"malformed json": `{"name":`,
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			var p payload
			if err := DecodeJSON(r, &p); !dErrors.HasCode(err, dErrors.CodeBadRequest) {
				t.Fatalf("expected bad_request, got %v", err)
			}
		})
	}
}
