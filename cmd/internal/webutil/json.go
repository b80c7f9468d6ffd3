// Package webutil carries the HTTP response envelope and JSON helpers
// shared by every PlaceMate handler package.
package webutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"placemate/cmd/identity"
)

// Envelope is the uniform response shape:
// {"success": bool, "message": string, "data": ...}.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes v verbatim. Responses are never cacheable; some carry tokens.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a success envelope with a payload.
func WriteData(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteMessage writes a success envelope without a payload.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: true, Message: message})
}

// WriteError writes a failure envelope.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message})
}

// DecodeJSON strictly decodes one JSON value into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Ensure there is no extra data after the first JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}

// WriteDomainError maps identity error kinds onto HTTP statuses. Unknown
// errors become an opaque 500; their detail belongs in logs, not responses.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case identity.IsInvalidInput(err):
		WriteError(w, http.StatusBadRequest, userFacingMessage(err, "Invalid input"))
	case identity.IsConflict(err):
		WriteError(w, http.StatusConflict, "Resource already exists")
	case identity.IsNotFound(err):
		WriteError(w, http.StatusNotFound, "Resource not found")
	default:
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// userFacingMessage surfaces the Msg of an OpError when present; the Op and
// Kind prefixes are internal.
func userFacingMessage(err error, fallback string) string {
	var oe identity.OpError
	if errors.As(err, &oe) && oe.Msg != "" {
		return oe.Msg
	}
	return fallback
}
