// Package httputil writes JSON responses and maps domain errors to HTTP.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "auditlink/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the wire shape of every error.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// StatusFor maps a domain code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeInvalidState:
		return http.StatusConflict
	case dErrors.CodePaymentFailed:
		return http.StatusBadGateway
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as {"error","error_description"}. Unclassified and
// internal errors never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := StatusFor(code)
	resp := ErrorResponse{Error: string(code)}
	if de, ok := dErrors.As(err); ok && status != http.StatusInternalServerError {
		resp.ErrorDescription = de.Message
	}
	if status == http.StatusInternalServerError {
		resp.Error = string(dErrors.CodeInternal)
	}
	WriteJSON(w, status, resp)
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a single JSON object into dst, rejecting unknown fields
// and oversized bodies.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return dErrors.New(dErrors.CodeBadRequest, "request body must contain a single JSON object")
	}
	return nil
}
