package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"libraryapi/internal/apperr"
)

// WriteError maps a service error onto the error envelope. Errors of an
// unknown kind are logged and reported as 500 without details.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *apperr.ValidationError
	var aerr *apperr.Error

	switch {
	case errors.As(err, &verr):
		JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", verr.Fields)
	case errors.Is(err, apperr.ErrAuthRequired):
		JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided", nil)
	case errors.Is(err, apperr.ErrPermissionDenied):
		JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action", nil)
	case errors.Is(err, apperr.ErrNotFound):
		msg := "Not found"
		if errors.As(err, &aerr) {
			msg = aerr.Message
		}
		JSONError(w, r, http.StatusNotFound, "NOT_FOUND", msg, nil)
	case errors.Is(err, apperr.ErrIntegrity):
		msg := "Integrity error"
		if errors.As(err, &aerr) {
			msg = aerr.Message
		}
		JSONError(w, r, http.StatusBadRequest, "INTEGRITY_ERROR", msg, nil)
	case errors.Is(err, apperr.ErrConflict):
		msg := "Conflict"
		if errors.As(err, &aerr) {
			msg = aerr.Message
		}
		JSONError(w, r, http.StatusConflict, "CONFLICT", msg, nil)
	default:
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", RequestIDFrom(r)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
