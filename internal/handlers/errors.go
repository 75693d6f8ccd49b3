package handlers

import (
	"encoding/json"
	"net/http"

	"deckdrill/internal/apperr"

	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps the engine's error taxonomy onto HTTP status codes. This is
// the only place the mapping exists; services and engines never see HTTP.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the caller-safe message and logs internals
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	respondJSON(w, status, errorBody{Error: apperr.MessageOf(err)})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
