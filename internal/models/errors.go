package models

import "errors"

// Domain errors. They travel up from the repository and service layers
// unmodified; the handlers package owns the mapping to HTTP statuses.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrBookNotFound         = errors.New("book not found")
	ErrBookNotAvailable     = errors.New("book is not available for borrowing")
	ErrActiveBorrowNotFound = errors.New("active borrow record not found")
	ErrDuplicateEmail       = errors.New("email is already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")

	ErrInvalidRole   = errors.New("invalid role")
	ErrInvalidName   = errors.New("name is too short")
	ErrInvalidEmail  = errors.New("invalid email")
	ErrInvalidTitle  = errors.New("title is required")
	ErrInvalidAuthor = errors.New("author is required")
)
