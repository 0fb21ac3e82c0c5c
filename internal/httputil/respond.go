// Package httputil provides JSON request/response helpers shared by the HTTP
// handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jakehorton1228-droid/habit-tracker/internal/errors"
	"github.com/jakehorton1228-droid/habit-tracker/internal/logging"
)

// WriteJSON encodes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError sends a plain error body: {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// WriteFieldErrors sends a field-keyed validation body.
func WriteFieldErrors(w http.ResponseWriter, fields map[string]string) {
	WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"fields": fields,
	})
}

// BadRequest sends a 400 with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, msg)
}

// Unauthorized sends a 401 with the given message.
func Unauthorized(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "authentication required"
	}
	WriteError(w, http.StatusUnauthorized, msg)
}

// Forbidden sends a 403 with the given message.
func Forbidden(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "forbidden"
	}
	WriteError(w, http.StatusForbidden, msg)
}

// NotFound sends a 404 with the given message.
func NotFound(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "not found"
	}
	WriteError(w, http.StatusNotFound, msg)
}

// InternalError sends a 500 with the given message. The underlying error is
// never written to the client.
func InternalError(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "internal error"
	}
	WriteError(w, http.StatusInternalServerError, msg)
}

// Error maps a service error onto the wire: validation failures become
// field-keyed 400s, missing rows 404, cross-owner attaches 403,
// authentication failures 401, anything else a generic 500.
func Error(w http.ResponseWriter, err error) {
	if v, ok := apperrors.AsValidation(err); ok {
		WriteFieldErrors(w, v.Fields)
		return
	}
	switch {
	case apperrors.IsNotFound(err):
		NotFound(w, "not found")
	case apperrors.IsForbidden(err):
		Forbidden(w, "forbidden")
	case apperrors.IsAuth(err):
		Unauthorized(w, err.Error())
	default:
		InternalError(w, "internal error")
	}
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
// On failure it writes a 400 and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		BadRequest(w, "invalid request body")
		return false
	}
	return true
}

// RequireUserID extracts the authenticated user's ID from the request
// context (set by the auth middleware) or, as a fallback for direct calls in
// tests, the X-User-ID header. On absence it writes a 401 and returns false.
func RequireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := logging.GetUserID(r.Context())
	if userID == "" {
		userID = r.Header.Get("X-User-ID")
	}
	if userID == "" {
		Unauthorized(w, "")
		return "", false
	}
	return userID, true
}
