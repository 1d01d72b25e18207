package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// Standard response types for consistent API responses

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Get a buffer from the pool to reduce allocations
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent; nothing else to do but log
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// mapServiceErrorToUserMessage maps domain errors to user-facing HTTP
// responses without exposing internal error details.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrBattleNotFound):
		return http.StatusNotFound, ErrMsgBattleNotFoundError
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, ErrMsgSessionNotFoundError
	case errors.Is(err, domain.ErrQuestNotFound):
		return http.StatusNotFound, ErrMsgQuestNotFoundError
	case errors.Is(err, domain.ErrRuinsNotFound):
		return http.StatusNotFound, ErrMsgRuinsNotFoundError
	case errors.Is(err, domain.ErrBeastNotFound):
		return http.StatusNotFound, ErrMsgBeastNotFoundError
	case errors.Is(err, domain.ErrBattleFinished):
		return http.StatusConflict, ErrMsgBattleFinishedError
	case errors.Is(err, domain.ErrSessionExists):
		return http.StatusConflict, ErrMsgSessionExistsError
	case errors.Is(err, domain.ErrRoomSearched):
		return http.StatusConflict, ErrMsgRoomSearchedError
	case errors.Is(err, domain.ErrInsufficientEnergy):
		return http.StatusBadRequest, ErrMsgInsufficientEnergyError
	case errors.Is(err, domain.ErrPrerequisiteNotMet):
		return http.StatusBadRequest, ErrMsgPrerequisiteError
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, ErrMsgInvalidRequestError
	default:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}
}

// respondServiceError logs the real error and sends the mapped user message
func respondServiceError(w http.ResponseWriter, err error) {
	status, message := mapServiceErrorToUserMessage(err)
	if status == http.StatusInternalServerError {
		slog.Error("Unhandled service error", "error", err)
	}
	respondError(w, status, message)
}
