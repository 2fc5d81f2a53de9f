package models

import "time"

type BorrowStatus string

const (
	StatusBorrowed BorrowStatus = "BORROWED"
	StatusReturned BorrowStatus = "RETURNED"
	StatusOverdue  BorrowStatus = "OVERDUE"
)

// BorrowRecord is the fact row for a single loan. It references user and
// book by id only; BookTitle is filled in by the list queries that join books.
type BorrowRecord struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	BookID     string       `json:"book_id"`
	BookTitle  string       `json:"book_title,omitempty"`
	Status     BorrowStatus `json:"status"`
	BorrowDate time.Time    `json:"borrow_date"`
	DueDate    time.Time    `json:"due_date"`
	ReturnDate *time.Time   `json:"return_date,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Overdue reports whether the loan is still out past its due date.
// Overdue-ness is always derived at read time; no job rewrites the status.
func (r BorrowRecord) Overdue(today time.Time) bool {
	return r.ReturnDate == nil && r.DueDate.Before(today)
}
