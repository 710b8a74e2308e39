package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"lendbook/internal/services"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	respondWithJSON(w, code, errorResponse{Error: errorCode, Message: message})
}

// respondWithServiceError maps the service error taxonomy onto transport
// statuses. Anything outside the taxonomy is an internal error and the
// message is not leaked.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrInvalidArgument):
		respondWithError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, services.ErrInvalidState):
		respondWithError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, services.ErrConflict):
		respondWithError(w, http.StatusConflict, "conflict", err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}
