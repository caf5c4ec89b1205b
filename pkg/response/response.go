// Package response writes the JSON envelope shared by every API endpoint:
// {"ok": true, ...payload} on success, {"ok": false, "error": "..."} on
// failure.
package response

import (
	"encoding/json"
	"net/http"
)

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 response with {"ok":true} merged with payload fields.
func Success(w http.ResponseWriter, payload map[string]interface{}) {
	body := map[string]interface{}{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	write(w, http.StatusOK, body)
}

// OK sends a bare {"ok":true}.
func OK(w http.ResponseWriter) {
	Success(w, nil)
}

// JSON sends an arbitrary body with the given status, bypassing the envelope.
// Used by /who, whose contract predates the ok envelope.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	write(w, status, v)
}

// Error sends {"ok":false,"error":message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, map[string]interface{}{"ok": false, "error": message})
}

// ValidationError sends a 400 with the first field-level error message.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	for _, msg := range errs {
		Error(w, http.StatusBadRequest, msg)
		return
	}
	Error(w, http.StatusBadRequest, "validation failed")
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Not authenticated")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}
