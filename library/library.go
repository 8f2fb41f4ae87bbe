package library

import (
	"fmt"
	"strings"
)

// Library is the registry: it owns the catalog and every account. Other
// components refer to an account by its AccountKey and resolve it here.
type Library struct {
	catalog  *Catalog
	accounts []*Account
}

// New returns an empty library.
func New() *Library {
	return &Library{catalog: NewCatalog(nil)}
}

// Replace discards the current state and installs books and accounts.
func (l *Library) Replace(books []Book, accounts []*Account) {
	l.catalog = NewCatalog(books)
	l.accounts = append([]*Account(nil), accounts...)
}

func (l *Library) Catalog() *Catalog { return l.catalog }

// Accounts returns the accounts in registry order.
func (l *Library) Accounts() []*Account { return append([]*Account(nil), l.accounts...) }

// ------------------ Catalog ------------------

// AddBook appends a new Available entry after validating its fields for the flat-file layout.
func (l *Library) AddBook(b Book) error {
	if err := validField(b.Title, true); err != nil {
		return err
	}
	for _, f := range []string{b.Author, b.Publisher, b.ISBN} {
		if err := validField(f, false); err != nil {
			return err
		}
	}
	b.Status = StatusAvailable
	b.ReservedBy = ""
	l.catalog.Add(b)
	return nil
}

// RemoveBook deletes the first entry with title.
func (l *Library) RemoveBook(title string) error {
	if !l.catalog.Remove(title) {
		return fmt.Errorf("%w: %q", ErrBookNotFound, title)
	}
	return nil
}

// ------------------ Accounts ------------------

// AddAccount registers a user with an empty policy for its role.
func (l *Library) AddAccount(u User) (*Account, error) {
	if err := validField(u.Name, true); err != nil {
		return nil, err
	}
	if _, err := l.Lookup(u.Key()); err == nil {
		return nil, fmt.Errorf("%w: %s (ID: %d)", ErrAccountExists, u.Name, u.ID)
	}
	acc, err := NewAccount(u)
	if err != nil {
		return nil, err
	}
	l.accounts = append(l.accounts, acc)
	return acc, nil
}

// RemoveAccount deletes the first account with name.
func (l *Library) RemoveAccount(name string) error {
	for i, acc := range l.accounts {
		if acc.User().Name == name {
			l.accounts = append(l.accounts[:i], l.accounts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrAccountNotFound, name)
}

// Lookup finds the account whose name and ID both match key.
func (l *Library) Lookup(key AccountKey) (*Account, error) {
	for _, acc := range l.accounts {
		if acc.Key() == key {
			return acc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s (ID: %d)", ErrAccountNotFound, key.Name, key.ID)
}

// Session resolves key for a session opened under role. An account that
// exists with another role yields ErrRoleMismatch naming the actual role.
func (l *Library) Session(key AccountKey, role Role) (*Account, error) {
	acc, err := l.Lookup(key)
	if err != nil {
		return nil, err
	}
	if acc.User().Role != role {
		return nil, fmt.Errorf("%w: %s has role %s", ErrRoleMismatch, key.Name, acc.User().Role)
	}
	return acc, nil
}

// ------------------ Circulation ------------------

func (l *Library) Borrow(key AccountKey, title string, day Day) error {
	acc, err := l.Lookup(key)
	if err != nil {
		return err
	}
	return acc.Borrow(title, day, l.catalog)
}

func (l *Library) Return(key AccountKey, title string, day Day) (ReturnResult, error) {
	acc, err := l.Lookup(key)
	if err != nil {
		return ReturnResult{}, err
	}
	return acc.Return(title, day, l.catalog)
}

func (l *Library) PayFine(key AccountKey) (float64, error) {
	acc, err := l.Lookup(key)
	if err != nil {
		return 0, err
	}
	return acc.PayFine()
}

func (l *Library) Summary(key AccountKey, today Day) (AccountSummary, error) {
	acc, err := l.Lookup(key)
	if err != nil {
		return AccountSummary{}, err
	}
	return acc.Summary(today), nil
}

// Data returns a snapshot of the whole library.
func (l *Library) Data(today Day) LibraryData {
	data := LibraryData{Day: today, Books: l.catalog.Books()}
	for _, acc := range l.accounts {
		data.Accounts = append(data.Accounts, acc.Data())
	}
	return data
}

// validField rejects values the comma-delimited files cannot hold.
func validField(s string, required bool) error {
	if (required && strings.TrimSpace(s) == "") || strings.ContainsAny(s, ",\n\r") {
		return fmt.Errorf("%w: %q", ErrInvalidField, s)
	}
	return nil
}
