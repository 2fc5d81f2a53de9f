package repository

import (
	"context"
	"time"

	"github.com/libms/library-backend/internal/models"
)

type Users interface {
	Create(ctx context.Context, name, email, passwordHash string, role models.Role) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u models.User) (models.User, error)
	Delete(ctx context.Context, id string) error
}

// BookFilter carries the optional search predicates; empty fields are
// omitted from the query, not compared.
type BookFilter struct {
	Title  string
	Author string
	ISBN   string
	Genre  string
}

type Books interface {
	Create(ctx context.Context, b models.Book) (models.Book, error)
	GetByID(ctx context.Context, id string) (models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	Search(ctx context.Context, f BookFilter, page, size int) ([]models.Book, int, error)
	Update(ctx context.Context, b models.Book) (models.Book, error)
	Delete(ctx context.Context, id string) error
	// ListOverdue returns books that have an active loan past its due date.
	ListOverdue(ctx context.Context) ([]models.Book, error)
}

type Borrows interface {
	// Borrow inserts the record and flips the book's availability flag in
	// one transaction. Fails with ErrBookNotAvailable if the flag is
	// already down when the update runs.
	Borrow(ctx context.Context, rec models.BorrowRecord) (models.BorrowRecord, error)
	// Return closes the active record for (user, book) and restores the
	// availability flag in one transaction.
	Return(ctx context.Context, userID, bookID string, returned time.Time) (models.BorrowRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.BorrowRecord, error)
	ListAll(ctx context.Context) ([]models.BorrowRecord, error)
	ListOverdue(ctx context.Context) ([]models.BorrowRecord, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
