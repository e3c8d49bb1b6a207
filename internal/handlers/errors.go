package handlers

import (
	"context"
	"errors"
	"net/http"

	"colortap/internal/game"
)

// statusFor maps game errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrDoubleResolution),
		errors.Is(err, game.ErrUnknownRound),
		errors.Is(err, game.ErrNotPlaying),
		errors.Is(err, game.ErrInvalidPhase):
		return http.StatusConflict
	case errors.Is(err, game.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, game.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}
