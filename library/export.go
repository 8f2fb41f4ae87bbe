package library

import (
	"fmt"
	"io"
	"math"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteSnapshot encodes data as indented JSON.
func WriteSnapshot(w io.Writer, data LibraryData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (LibraryData, error) {
	var data LibraryData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return LibraryData{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces the library's state with data after checking that every
// record fits the flat files. On error the library is left unchanged.
func (l *Library) Restore(data LibraryData) error {
	for _, b := range data.Books {
		if err := validBook(b); err != nil {
			return err
		}
	}

	accounts := make([]*Account, 0, len(data.Accounts))
	seen := make(map[AccountKey]bool, len(data.Accounts))
	for _, d := range data.Accounts {
		acc, err := accountFromData(d)
		if err != nil {
			return err
		}
		if seen[acc.Key()] {
			return fmt.Errorf("%w: %s (ID: %d)", ErrAccountExists, d.User.Name, d.User.ID)
		}
		seen[acc.Key()] = true
		accounts = append(accounts, acc)
	}

	l.Replace(data.Books, accounts)
	return nil
}

func validBook(b Book) error {
	if err := validField(b.Title, true); err != nil {
		return err
	}
	for _, f := range []string{b.Author, b.Publisher, b.ISBN, b.ReservedBy} {
		if err := validField(f, false); err != nil {
			return err
		}
	}
	switch b.Status {
	case StatusAvailable, StatusBorrowed, StatusReserved:
		return nil
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidField, b.Status)
	}
}

func accountFromData(d AccountData) (*Account, error) {
	if err := validField(d.User.Name, true); err != nil {
		return nil, err
	}
	for _, l := range d.Loans {
		if err := validField(l.Title, true); err != nil {
			return nil, err
		}
	}

	switch d.User.Role {
	case RoleStudent:
		fine := 0.0
		if d.Fine != nil {
			fine = *d.Fine
		}
		if fine < 0 || math.IsNaN(fine) || math.IsInf(fine, 0) {
			return nil, fmt.Errorf("%w: fine %v for %s", ErrInvalidField, fine, d.User.Name)
		}
		return NewStudentAccount(d.User.Name, d.User.ID, RestoreStudent(d.Loans, fine)), nil
	case RoleFaculty:
		return NewFacultyAccount(d.User.Name, d.User.ID, RestoreFaculty(d.Loans)), nil
	default:
		return NewAccount(d.User)
	}
}
