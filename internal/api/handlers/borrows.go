package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/libms/library-backend/internal/api/httpx"
	"github.com/libms/library-backend/internal/middleware"
	"github.com/libms/library-backend/internal/models"
	"github.com/libms/library-backend/internal/services"
)

type BorrowHandler struct {
	svc *services.BorrowService
}

func NewBorrowHandler(svc *services.BorrowService) *BorrowHandler {
	return &BorrowHandler{svc: svc}
}

// callerID resolves the patron's identity from the validated token claims;
// it is never taken from a request parameter.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	u, ok := middleware.FromCtx(r.Context())
	if !ok || u.UserID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
		return "", false
	}
	return u.UserID, true
}

func (h *BorrowHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Borrow(r.Context(), userID, chi.URLParam(r, "bookId"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rec)
}

func (h *BorrowHandler) Return(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Return(r.Context(), userID, chi.URLParam(r, "bookId"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rec)
}

func (h *BorrowHandler) OwnHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	h.writeHistory(w, r, userID)
}

func (h *BorrowHandler) UserHistory(w http.ResponseWriter, r *http.Request) {
	h.writeHistory(w, r, chi.URLParam(r, "userId"))
}

func (h *BorrowHandler) writeHistory(w http.ResponseWriter, r *http.Request, userID string) {
	records, err := h.svc.History(r.Context(), userID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if records == nil {
		records = []models.BorrowRecord{}
	}
	httpx.WriteJSON(w, http.StatusOK, records)
}

func (h *BorrowHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Overdue(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if records == nil {
		records = []models.BorrowRecord{}
	}
	httpx.WriteJSON(w, http.StatusOK, records)
}
