package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libms/library-backend/internal/models"
	"github.com/libms/library-backend/internal/worker"
)

type borrowFixture struct {
	users   *fakeUsers
	books   *fakeBooks
	borrows *fakeBorrows
	audit   *fakeAudit
	wp      *worker.Pool
	svc     *BorrowService
}

func newBorrowFixture(t *testing.T) *borrowFixture {
	t.Helper()
	users := newFakeUsers()
	books := newFakeBooks()
	borrows := newFakeBorrows(books)
	audit := &fakeAudit{}
	wp := worker.NewPool(1)

	svc := NewBorrowService(users, books, borrows, audit, wp)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC) }

	return &borrowFixture{users: users, books: books, borrows: borrows, audit: audit, wp: wp, svc: svc}
}

func (f *borrowFixture) addUser(t *testing.T, name, email string) string {
	t.Helper()
	u, err := f.users.Create(context.Background(), name, email, "hash", models.RolePatron)
	require.NoError(t, err)
	return u.ID
}

func (f *borrowFixture) addBook(t *testing.T, title string, available bool) string {
	t.Helper()
	b, err := f.books.Create(context.Background(), models.Book{Title: title, Author: "A. Author", Available: available})
	require.NoError(t, err)
	return b.ID
}

func TestBorrowBook(t *testing.T) {
	fix := newBorrowFixture(t)
	defer fix.wp.Stop()

	userID := fix.addUser(t, "Jane", "jane@x.com")
	bookID := fix.addBook(t, "The Go Programming Language", true)

	rec, err := fix.svc.Borrow(context.Background(), userID, bookID)
	require.NoError(t, err)

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, models.StatusBorrowed, rec.Status)
	assert.Equal(t, today, rec.BorrowDate)
	assert.Equal(t, today.AddDate(0, 0, 14), rec.DueDate)
	assert.Nil(t, rec.ReturnDate)

	book, err := fix.books.GetByID(context.Background(), bookID)
	require.NoError(t, err)
	assert.False(t, book.Available)
}

func TestBorrowBookUnknownUser(t *testing.T) {
	fix := newBorrowFixture(t)
	defer fix.wp.Stop()

	bookID := fix.addBook(t, "Dune", true)

	_, err := fix.svc.Borrow(context.Background(), "no-such-user", bookID)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.Empty(t, fix.borrows.records)
}

func TestBorrowBookUnknownBook(t *testing.T) {
	fix := newBorrowFixture(t)
	defer fix.wp.Stop()

	userID := fix.addUser(t, "Jane", "jane@x.com")

	_, err := fix.svc.Borrow(context.Background(), userID, "no-such-book")
	assert.ErrorIs(t, err, models.ErrBookNotFound)
	assert.Empty(t, fix.borrows.records)
}

func TestBorrowUnavailableBookFails(t *testing.T) {
	fix := newBorrowFixture(t)
	defer fix.wp.Stop()

	userID := fix.addUser(t, "Jane", "jane@x.com")
	bookID := fix.addBook(t, "Dune", false)

	_, err := fix.svc.Borrow(context.Background(), userID, bookID)
	assert.ErrorIs(t, err, models.ErrBookNotAvailable)
	assert.Empty(t, fix.borrows.records, "no record may be created for a failed borrow")
}

// A successful borrow is deliberately not idempotent: the immediate retry
// sees the flag down and fails.
func TestBorrowRetryAfterSuccessFails(t *testing.T) {
	fix := newBorrowFixture(t)
	defer fix.wp.Stop()

	userID := fix.addUser(t, "Jane", "jane@x.com")
	bookID := fix.addBook(t, "Dune", true)

	_, err := fix.svc.Borrow(context.Background(), userID, bookID)
	require.NoError(t, err)

	_, err = fix.svc.Borrow(context.Background(), userID, bookID)
	assert.ErrorIs(t, err, models.ErrBookNotAvailable)
	assert.Len(t, fix.borrows.records, 1)
}

func TestBorrowThenReturn(t *testing.T) {
	fix := newBorrowFixture(t)
	defer fix.wp.Stop()

	userID := fix.addUser(t, "Jane", "jane@x.com")
	bookID := fix.addBook(t, "Dune", true)

	_, err := fix.svc.Borrow(context.Background(), userID, bookID)
	require.NoError(t, err)

	rec, err := fix.svc.Return(context.Background(), userID, bookID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusReturned, rec.Status)
	require.NotNil(t, rec.ReturnDate)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), *rec.ReturnDate)

	book, err := fix.books.GetByID(context.Background(), bookID)
	require.NoError(t, err)
	assert.True(t, book.Available)

	require.Len(t, fix.borrows.records, 1)
	assert.Equal(t, models.StatusReturned, fix.borrows.records[0].Status)
}

func TestReturnWithoutActiveBorrow(t *testing.T) {
	fix := newBorrowFixture(t)
	defer fix.wp.Stop()

	userID := fix.addUser(t, "Jane", "jane@x.com")
	bookID := fix.addBook(t, "Dune", true)

	_, err := fix.svc.Return(context.Background(), userID, bookID)
	assert.ErrorIs(t, err, models.ErrActiveBorrowNotFound)
}

// Register patron Jane, borrow, have a second patron collide, return:
// availability follows the active record the whole way.
func TestTwoPatronsOneCopy(t *testing.T) {
	fix := newBorrowFixture(t)
	defer fix.wp.Stop()

	jane := fix.addUser(t, "Jane", "jane@x.com")
	other := fix.addUser(t, "Ben", "ben@x.com")
	bookID := fix.addBook(t, "Snow Crash", true)

	_, err := fix.svc.Borrow(context.Background(), jane, bookID)
	require.NoError(t, err)

	_, err = fix.svc.Borrow(context.Background(), other, bookID)
	assert.ErrorIs(t, err, models.ErrBookNotAvailable)

	_, err = fix.svc.Return(context.Background(), jane, bookID)
	require.NoError(t, err)

	book, err := fix.books.GetByID(context.Background(), bookID)
	require.NoError(t, err)
	assert.True(t, book.Available)

	_, err = fix.svc.Borrow(context.Background(), other, bookID)
	assert.NoError(t, err, "book is borrowable again after return")
}

func TestHistoryMostRecentFirst(t *testing.T) {
	fix := newBorrowFixture(t)
	defer fix.wp.Stop()

	userID := fix.addUser(t, "Jane", "jane@x.com")
	first := fix.addBook(t, "First", true)
	second := fix.addBook(t, "Second", true)

	fix.svc.now = func() time.Time { return time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC) }
	_, err := fix.svc.Borrow(context.Background(), userID, first)
	require.NoError(t, err)

	fix.svc.now = func() time.Time { return time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC) }
	_, err = fix.svc.Borrow(context.Background(), userID, second)
	require.NoError(t, err)

	history, err := fix.svc.History(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second, history[0].BookID)
	assert.Equal(t, first, history[1].BookID)
}

func TestOverdueBooks(t *testing.T) {
	fix := newBorrowFixture(t)
	defer fix.wp.Stop()

	userID := fix.addUser(t, "Jane", "jane@x.com")
	lateBook := fix.addBook(t, "Late One", true)
	dueTodayBook := fix.addBook(t, "Due Today", true)

	// A loan taken 20 days ago is 6 days past its 14-day window.
	fix.svc.now = func() time.Time { return time.Now().UTC().AddDate(0, 0, -20) }
	late, err := fix.svc.Borrow(context.Background(), userID, lateBook)
	require.NoError(t, err)

	// A loan due exactly today is not overdue.
	fix.svc.now = func() time.Time { return time.Now().UTC().AddDate(0, 0, -14) }
	_, err = fix.svc.Borrow(context.Background(), userID, dueTodayBook)
	require.NoError(t, err)

	overdue, err := fix.svc.Overdue(context.Background())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)

	fix.svc.now = time.Now
	_, err = fix.svc.Return(context.Background(), userID, lateBook)
	require.NoError(t, err)

	overdue, err = fix.svc.Overdue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, overdue, "returned records drop out of the overdue view")
}

// available == true iff no BORROWED record references the book.
func TestAvailabilityMatchesLedger(t *testing.T) {
	fix := newBorrowFixture(t)
	defer fix.wp.Stop()

	userID := fix.addUser(t, "Jane", "jane@x.com")
	a := fix.addBook(t, "A", true)
	b := fix.addBook(t, "B", true)

	_, err := fix.svc.Borrow(context.Background(), userID, a)
	require.NoError(t, err)
	_, err = fix.svc.Borrow(context.Background(), userID, b)
	require.NoError(t, err)
	_, err = fix.svc.Return(context.Background(), userID, a)
	require.NoError(t, err)

	books, err := fix.books.List(context.Background())
	require.NoError(t, err)
	for _, book := range books {
		active := 0
		for _, rec := range fix.borrows.records {
			if rec.BookID == book.ID && rec.Status == models.StatusBorrowed {
				active++
			}
		}
		assert.Equal(t, active == 0, book.Available, "book %s", book.Title)
		assert.LessOrEqual(t, active, 1, "at most one active record per book")
	}
}

func TestBorrowAndReturnAreAudited(t *testing.T) {
	fix := newBorrowFixture(t)

	userID := fix.addUser(t, "Jane", "jane@x.com")
	bookID := fix.addBook(t, "Dune", true)

	_, err := fix.svc.Borrow(context.Background(), userID, bookID)
	require.NoError(t, err)
	_, err = fix.svc.Return(context.Background(), userID, bookID)
	require.NoError(t, err)

	fix.wp.Stop() // drain the queue
	assert.Equal(t, 2, fix.audit.count())
}
