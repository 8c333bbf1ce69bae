// Package handlers contains the HTTP surface: the command endpoint, audit
// history reads, and health checks.
package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse writes a failure envelope and returns any encoding error.
// The body matches the envelope shape so callers branch on error_code alone.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]any{
		"success":    false,
		"error":      message,
		"error_code": errorCode,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}
