package library

import "errors"

// Policy rejections. None of them are fatal; the attempted change does not happen.
var (
	ErrLimitReached          = errors.New("borrowing limit reached, return a book first")
	ErrOutstandingFine       = errors.New("outstanding fine, pay it before borrowing")
	ErrSevereOverdue         = errors.New("a book is overdue by more than 60 days, return it before borrowing")
	ErrNotBorrowed           = errors.New("book is not in your borrowed list")
	ErrNotAvailable          = errors.New("book is not available")
	ErrLibrarianCannotBorrow = errors.New("librarians do not borrow books")
	ErrLibrarianCannotReturn = errors.New("librarians do not return books")
	ErrNoFineDue             = errors.New("no outstanding fine")
	ErrNoFinesForRole        = errors.New("no fines applicable for this role")
)

// Lookup misses and registry validation.
var (
	ErrBookNotFound    = errors.New("book not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrRoleMismatch    = errors.New("account exists with a different role")
	ErrInvalidField    = errors.New("field is empty or contains a comma or newline")
	ErrInvalidRole     = errors.New("invalid role")
)

// ErrLoadFailed refuses a save over a file whose last load failed.
var ErrLoadFailed = errors.New("file was not loaded completely, refusing to overwrite it")
