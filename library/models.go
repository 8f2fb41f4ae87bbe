package library

import (
	"fmt"
	"strings"
)

// Role is the closed set of account kinds. It decides which borrower policy applies.
type Role string

const (
	RoleStudent   Role = "Student"
	RoleFaculty   Role = "Faculty"
	RoleLibrarian Role = "Librarian"
)

// ParseRole accepts the persisted spelling or any case variant of it.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, nil
	case "faculty":
		return RoleFaculty, nil
	case "librarian":
		return RoleLibrarian, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// User is an immutable identity: name, numeric ID and role.
type User struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
	Role Role   `json:"role"`
}

// AccountKey identifies an account in the registry.
type AccountKey struct {
	Name string
	ID   int
}

// Key returns the registry key for u.
func (u User) Key() AccountKey { return AccountKey{Name: u.Name, ID: u.ID} }

// Loan is a single borrowed title and the day it was borrowed.
type Loan struct {
	Title      string `json:"title"`
	BorrowedOn Day    `json:"borrowed_on"`
}

// BookStatus is the availability of a catalog entry.
type BookStatus string

const (
	StatusAvailable BookStatus = "Available"
	StatusBorrowed  BookStatus = "Borrowed"
	// StatusReserved is accepted from persisted catalogs but never assigned.
	StatusReserved BookStatus = "Reserved"
)

// Book is one catalog entry. ReservedBy names the current holder and is empty while Available.
type Book struct {
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	Publisher  string     `json:"publisher"`
	Year       int        `json:"year"`
	ISBN       string     `json:"isbn"`
	Status     BookStatus `json:"status"`
	ReservedBy string     `json:"reserved_by"`
}

// NewBook returns an Available catalog entry.
func NewBook(title, author, publisher string, year int, isbn string) Book {
	return Book{
		Title:     title,
		Author:    author,
		Publisher: publisher,
		Year:      year,
		ISBN:      isbn,
		Status:    StatusAvailable,
	}
}

// AccountData is the snapshot form of an account.
type AccountData struct {
	User  User     `json:"user"`
	Loans []Loan   `json:"loans,omitempty"`
	Fine  *float64 `json:"fine,omitempty"`
}

// LibraryData represents the complete library state for export.
type LibraryData struct {
	Day      Day           `json:"day"`
	Books    []Book        `json:"books"`
	Accounts []AccountData `json:"accounts"`
}
