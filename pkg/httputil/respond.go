package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// JSON writes a JSON response body with the given status code.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response body")
	}
}

// Error classifies err against the sentinel taxonomy and writes a uniform
// {"error": ...} body. Unclassified errors become a generic 500 so internal
// details never leak to the client.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidOperation):
		status = http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrPaymentRequired):
		status = http.StatusPaymentRequired
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, ErrUpstream):
		status = http.StatusBadGateway
	default:
		log.WithError(err).Error("Unhandled internal error")
		message = "internal server error"
	}

	JSON(w, status, map[string]string{"error": message})
}
