package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/libms/library-backend/internal/metrics"
	"github.com/libms/library-backend/internal/models"
	repo "github.com/libms/library-backend/internal/repository"
	"github.com/libms/library-backend/internal/worker"
)

const loanPeriodDays = 14

// BorrowService orchestrates the borrow/return transitions and the derived
// history/overdue views. All precondition failures happen before the
// transaction boundary, so a failed call leaves no side effect.
type BorrowService struct {
	users   repo.Users
	books   repo.Books
	borrows repo.Borrows
	audit   repo.AuditLogs
	wp      *worker.Pool

	now func() time.Time
}

func NewBorrowService(users repo.Users, books repo.Books, borrows repo.Borrows, audit repo.AuditLogs, wp *worker.Pool) *BorrowService {
	return &BorrowService{
		users:   users,
		books:   books,
		borrows: borrows,
		audit:   audit,
		wp:      wp,
		now:     time.Now,
	}
}

// today truncates the clock to a civil date in UTC; loan dates are
// date-granular throughout.
func (s *BorrowService) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *BorrowService) Borrow(ctx context.Context, userID, bookID string) (models.BorrowRecord, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return models.BorrowRecord{}, err
	}
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return models.BorrowRecord{}, err
	}
	if !book.Available {
		slog.Warn("borrow of unavailable book", "user_id", userID, "book_id", bookID)
		metrics.BorrowsFailed.Inc()
		return models.BorrowRecord{}, models.ErrBookNotAvailable
	}

	today := s.today()
	rec := models.BorrowRecord{
		UserID:     userID,
		BookID:     bookID,
		Status:     models.StatusBorrowed,
		BorrowDate: today,
		DueDate:    today.AddDate(0, 0, loanPeriodDays),
	}

	// The repo re-checks the availability flag inside the transaction, so
	// a concurrent borrow that got there first surfaces here as
	// ErrBookNotAvailable rather than a double checkout.
	rec, err = s.borrows.Borrow(ctx, rec)
	if err != nil {
		metrics.BorrowsFailed.Inc()
		return models.BorrowRecord{}, err
	}

	metrics.BorrowsTotal.WithLabelValues("borrow").Inc()
	s.auditAsync("borrow_record", rec.ID, "borrowed", map[string]any{
		"user_id": userID,
		"book_id": bookID,
		"due":     rec.DueDate.Format(time.DateOnly),
	})
	slog.Info("book borrowed", "user_id", userID, "book_id", bookID, "record_id", rec.ID)
	return rec, nil
}

func (s *BorrowService) Return(ctx context.Context, userID, bookID string) (models.BorrowRecord, error) {
	rec, err := s.borrows.Return(ctx, userID, bookID, s.today())
	if err != nil {
		metrics.BorrowsFailed.Inc()
		return models.BorrowRecord{}, err
	}

	metrics.BorrowsTotal.WithLabelValues("return").Inc()
	s.auditAsync("borrow_record", rec.ID, "returned", map[string]any{
		"user_id": userID,
		"book_id": bookID,
	})
	slog.Info("book returned", "user_id", userID, "book_id", bookID, "record_id", rec.ID)
	return rec, nil
}

// History returns the complete borrow history for one user, most recent
// borrow first.
func (s *BorrowService) History(ctx context.Context, userID string) ([]models.BorrowRecord, error) {
	return s.borrows.ListByUser(ctx, userID)
}

func (s *BorrowService) AllHistory(ctx context.Context) ([]models.BorrowRecord, error) {
	return s.borrows.ListAll(ctx)
}

// Overdue lists records still marked BORROWED whose due date is strictly
// before today. A record due today is not overdue.
func (s *BorrowService) Overdue(ctx context.Context) ([]models.BorrowRecord, error) {
	return s.borrows.ListOverdue(ctx)
}

func (s *BorrowService) auditAsync(entityType, entityID, action string, details map[string]any) {
	l := models.AuditLog{
		EntityType: entityType,
		EntityID:   &entityID,
		Action:     action,
		Details:    details,
	}
	s.wp.Submit(func() {
		if err := s.audit.Create(context.Background(), l); err != nil {
			slog.Error("audit write", "err", err)
		}
	})
}
