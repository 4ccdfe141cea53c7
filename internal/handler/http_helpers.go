package handler

import (
	"encoding/json"
	"net/http"

	"manga-translator/internal/domain"
	apperrors "manga-translator/pkg/errors"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps a service-layer error onto an HTTP response,
// logging everything that surfaces as a 5xx.
func writeServiceError(w http.ResponseWriter, logger domain.Logger, err error) {
	statusCode := apperrors.GetStatusCode(err)
	if statusCode >= http.StatusInternalServerError {
		logger.Error("Request failed", err)
	}

	message := err.Error()
	if appErr, ok := err.(*apperrors.AppError); ok {
		message = appErr.Message
		if appErr.Details != "" {
			message = appErr.Message + ": " + appErr.Details
		}
	}
	writeError(w, statusCode, message)
}
