package services

import (
	"context"
	"log/slog"

	"github.com/libms/library-backend/internal/models"
	repo "github.com/libms/library-backend/internal/repository"
	"github.com/libms/library-backend/internal/worker"
)

type BookService struct {
	books repo.Books
	audit repo.AuditLogs
	wp    *worker.Pool
}

func NewBookService(books repo.Books, audit repo.AuditLogs, wp *worker.Pool) *BookService {
	return &BookService{books: books, audit: audit, wp: wp}
}

func (s *BookService) List(ctx context.Context) ([]models.Book, error) {
	return s.books.List(ctx)
}

func (s *BookService) GetByID(ctx context.Context, id string) (models.Book, error) {
	return s.books.GetByID(ctx, id)
}

func (s *BookService) Search(ctx context.Context, f repo.BookFilter, page, size int) (models.BookPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	items, total, err := s.books.Search(ctx, f, page, size)
	if err != nil {
		return models.BookPage{}, err
	}
	if items == nil {
		items = []models.Book{}
	}
	return models.BookPage{Items: items, Page: page, PageSize: size, TotalElements: total}, nil
}

// OverdueReport lists the books currently out past their due date.
func (s *BookService) OverdueReport(ctx context.Context) ([]models.Book, error) {
	return s.books.ListOverdue(ctx)
}

func (s *BookService) Create(ctx context.Context, b models.Book) (models.Book, error) {
	if err := b.Validate(); err != nil {
		return models.Book{}, err
	}
	b.Available = true // new books go on the shelf

	created, err := s.books.Create(ctx, b)
	if err != nil {
		return models.Book{}, err
	}
	s.auditAsync(created.ID, "created", created.Title)
	slog.Info("book created", "book_id", created.ID, "title", created.Title)
	return created, nil
}

func (s *BookService) Update(ctx context.Context, id string, b models.Book) (models.Book, error) {
	if err := b.Validate(); err != nil {
		return models.Book{}, err
	}
	b.ID = id

	updated, err := s.books.Update(ctx, b)
	if err != nil {
		return models.Book{}, err
	}
	s.auditAsync(id, "updated", updated.Title)
	slog.Info("book updated", "book_id", id)
	return updated, nil
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}
	s.auditAsync(id, "deleted", "")
	slog.Info("book deleted", "book_id", id)
	return nil
}

func (s *BookService) auditAsync(bookID, action, title string) {
	l := models.AuditLog{
		EntityType: "book",
		EntityID:   &bookID,
		Action:     action,
	}
	if title != "" {
		l.Details = map[string]any{"title": title}
	}
	s.wp.Submit(func() {
		if err := s.audit.Create(context.Background(), l); err != nil {
			slog.Error("audit write", "err", err)
		}
	})
}
