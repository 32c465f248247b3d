// Package handlers contains HTTP request handlers for the portal API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/civicfix/portal-server/internal/apperr"
)

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondAppError maps the error taxonomy to HTTP statuses. Storage failures
// and unknown errors get a generic body; wrapped internals never leak.
func respondAppError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Internal error", "code": "internal",
		})
		return
	}

	status := http.StatusInternalServerError
	message := ae.Message
	switch ae.Kind {
	case apperr.Validation:
		status = http.StatusBadRequest
	case apperr.Authentication:
		status = http.StatusUnauthorized
	case apperr.Authorization:
		status = http.StatusForbidden
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Storage:
		message = "Internal error"
	}

	respondJSON(w, status, map[string]string{"error": message, "code": string(ae.Kind)})
}
