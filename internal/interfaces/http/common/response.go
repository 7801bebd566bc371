package common

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/apperr"
)

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Warn("json encode failed", zap.Error(err))
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteMessage writes {"error": message} with status.
func WriteMessage(logger *zap.Logger, w http.ResponseWriter, status int, message string) {
	WriteJSON(logger, w, status, ErrorResponse{Error: message})
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindPermission:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

// WriteError answers with the status of err's kind and its localized
// message, or fallback when err carries none. Server side failures are logged.
func WriteError(logger *zap.Logger, w http.ResponseWriter, err error, fallback string) {
	kind := apperr.KindOf(err)
	status := StatusOf(kind)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", zap.Stringer("kind", kind), zap.Error(err))
	}
	WriteMessage(logger, w, status, apperr.MessageOf(err, fallback))
}
