package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/libms/library-backend/internal/api/httpx"
	"github.com/libms/library-backend/internal/api/validate"
	"github.com/libms/library-backend/internal/models"
)

// writeDomainErr is the single translation point from domain errors to HTTP
// responses. Anything unmapped becomes a generic 500; the cause is only
// logged, never sent to the client.
func writeDomainErr(w http.ResponseWriter, err error) {
	var verrs validate.Errs
	switch {
	case errors.As(err, &verrs):
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", verrs)
	case errors.Is(err, models.ErrInvalidName),
		errors.Is(err, models.ErrInvalidEmail),
		errors.Is(err, models.ErrInvalidRole),
		errors.Is(err, models.ErrInvalidTitle),
		errors.Is(err, models.ErrInvalidAuthor):
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", err.Error(), nil)
	case errors.Is(err, models.ErrDuplicateEmail):
		httpx.WriteError(w, http.StatusConflict, "duplicate_email", "email is already registered", nil)
	case errors.Is(err, models.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "user_not_found", "user not found", nil)
	case errors.Is(err, models.ErrBookNotFound):
		httpx.WriteError(w, http.StatusNotFound, "book_not_found", "book not found", nil)
	case errors.Is(err, models.ErrActiveBorrowNotFound):
		httpx.WriteError(w, http.StatusNotFound, "active_borrow_not_found", "active borrow record not found", nil)
	case errors.Is(err, models.ErrBookNotAvailable):
		httpx.WriteError(w, http.StatusConflict, "book_not_available", "book is not available for borrowing", nil)
	case errors.Is(err, models.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
	default:
		slog.Error("internal error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
