package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/libms/library-backend/internal/api/httpx"
	"github.com/libms/library-backend/internal/api/validate"
	"github.com/libms/library-backend/internal/models"
	repo "github.com/libms/library-backend/internal/repository"
	"github.com/libms/library-backend/internal/services"
)

type BookHandler struct {
	svc *services.BookService
}

func NewBookHandler(svc *services.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

type bookReq struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	ISBN            string `json:"isbn"`
	PublicationDate string `json:"publication_date"` // YYYY-MM-DD
}

func (req bookReq) toModel() (models.Book, error) {
	b := models.Book{
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
		ISBN:   req.ISBN,
	}
	if req.PublicationDate != "" {
		d, err := time.Parse(time.DateOnly, req.PublicationDate)
		if err != nil {
			return models.Book{}, validate.Errs{{Field: "publication_date", Msg: "must be YYYY-MM-DD"}}
		}
		b.PublicationDate = d
	}
	return b, nil
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if books == nil {
		books = []models.Book{}
	}
	httpx.WriteJSON(w, http.StatusOK, books)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, book)
}

func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.BookFilter{
		Title:  q.Get("title"),
		Author: q.Get("author"),
		ISBN:   q.Get("isbn"),
		Genre:  q.Get("genre"),
	}
	page, _ := strconv.Atoi(q.Get("page"))
	size := 10
	if v := q.Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			size = n
		}
	}

	result, err := h.svc.Search(r.Context(), f, page, size)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *BookHandler) OverdueReport(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.OverdueReport(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if books == nil {
		books = []models.Book{}
	}
	httpx.WriteJSON(w, http.StatusOK, books)
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	b, err := req.toModel()
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	created, err := h.svc.Create(r.Context(), b)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req bookReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	b, err := req.toModel()
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), b)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
