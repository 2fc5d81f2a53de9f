package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/libms/library-backend/internal/models"
	repo "github.com/libms/library-backend/internal/repository"
)

// In-memory stand-ins for the postgres repositories. They enforce the same
// invariants the real queries do (unique email, conditional availability
// flip, single active record per user/book pair).

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]models.User{}} }

func (f *fakeUsers) Create(_ context.Context, name, email, hash string, role models.Role) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return models.User{}, models.ErrDuplicateEmail
		}
	}
	u := models.User{
		ID: uuid.NewString(), Name: name, Email: email, PasswordHash: hash, Role: role,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrUserNotFound
}

func (f *fakeUsers) List(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return models.User{}, models.ErrUserNotFound
	}
	for id, other := range f.users {
		if id != u.ID && other.Email == u.Email {
			return models.User{}, models.ErrDuplicateEmail
		}
	}
	u.UpdatedAt = time.Now()
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return models.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeBooks struct {
	mu    sync.Mutex
	books map[string]models.Book
}

func newFakeBooks() *fakeBooks { return &fakeBooks{books: map[string]models.Book{}} }

func (f *fakeBooks) Create(_ context.Context, b models.Book) (models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.books[b.ID] = b
	return b, nil
}

func (f *fakeBooks) GetByID(_ context.Context, id string) (models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return models.Book{}, models.ErrBookNotFound
	}
	return b, nil
}

func (f *fakeBooks) List(_ context.Context) ([]models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Book, 0, len(f.books))
	for _, b := range f.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeBooks) Search(_ context.Context, filter repo.BookFilter, page, size int) ([]models.Book, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contains := func(haystack, needle string) bool {
		return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}
	var matched []models.Book
	for _, b := range f.books {
		if contains(b.Title, filter.Title) && contains(b.Author, filter.Author) &&
			contains(b.ISBN, filter.ISBN) && contains(b.Genre, filter.Genre) {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })
	total := len(matched)
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeBooks) Update(_ context.Context, b models.Book) (models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.books[b.ID]
	if !ok {
		return models.Book{}, models.ErrBookNotFound
	}
	b.Available = existing.Available // flag is owned by the borrowing flow
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = time.Now()
	f.books[b.ID] = b
	return b, nil
}

func (f *fakeBooks) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[id]; !ok {
		return models.ErrBookNotFound
	}
	delete(f.books, id)
	return nil
}

func (f *fakeBooks) ListOverdue(_ context.Context) ([]models.Book, error) {
	return nil, nil
}

func (f *fakeBooks) setAvailable(id string, available bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.books[id]
	b.Available = available
	f.books[id] = b
}

type fakeBorrows struct {
	mu      sync.Mutex
	records []models.BorrowRecord
	books   *fakeBooks
}

func newFakeBorrows(books *fakeBooks) *fakeBorrows { return &fakeBorrows{books: books} }

func (f *fakeBorrows) Borrow(_ context.Context, rec models.BorrowRecord) (models.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books.books[rec.BookID]
	if !ok || !b.Available {
		return models.BorrowRecord{}, models.ErrBookNotAvailable
	}
	b.Available = false
	f.books.books[rec.BookID] = b

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.BookTitle = b.Title
	rec.CreatedAt = time.Now()
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeBorrows) Return(_ context.Context, userID, bookID string, returned time.Time) (models.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rec := range f.records {
		if rec.UserID == userID && rec.BookID == bookID && rec.Status == models.StatusBorrowed {
			rec.Status = models.StatusReturned
			rec.ReturnDate = &returned
			f.records[i] = rec

			b := f.books.books[bookID]
			b.Available = true
			f.books.books[bookID] = b
			return rec, nil
		}
	}
	return models.BorrowRecord{}, models.ErrActiveBorrowNotFound
}

func (f *fakeBorrows) ListByUser(_ context.Context, userID string) ([]models.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BorrowRecord
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func (f *fakeBorrows) ListAll(_ context.Context) ([]models.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.BorrowRecord(nil), f.records...)
	sortRecords(out)
	return out, nil
}

func (f *fakeBorrows) ListOverdue(_ context.Context) ([]models.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	y, m, d := time.Now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var out []models.BorrowRecord
	for _, rec := range f.records {
		if rec.Status == models.StatusBorrowed && rec.DueDate.Before(today) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeBorrows) add(rec models.BorrowRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	f.records = append(f.records, rec)
}

func sortRecords(recs []models.BorrowRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].BorrowDate.Equal(recs[j].BorrowDate) {
			return recs[i].BorrowDate.After(recs[j].BorrowDate)
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}

type fakeAudit struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (f *fakeAudit) Create(_ context.Context, l models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeAudit) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs)
}
