package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-phone-auth/internal/domain"
)

// httpError maps a service error onto a status code. The message of the
// outermost domain sentinel is echoed; anything unrecognised is a 500.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		writeError(w, http.StatusNotFound, "verification code not found")
	case errors.Is(err, domain.ErrCodeMismatch):
		writeError(w, http.StatusBadRequest, "verification code does not match")
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
