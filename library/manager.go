package library

import (
	"errors"
	"log/slog"
	"time"
)

// LibraryManager is a thin façade over the registry and its flat-file store,
// keeping CLI code simple. Every mutating call saves both files afterwards.
type LibraryManager struct {
	lib   *Library
	store *Store
	log   *slog.Logger
	now   func() time.Time
}

// Option customises a LibraryManager.
type Option func(*LibraryManager)

// WithClock replaces the wall clock used to derive the reference day.
func WithClock(now func() time.Time) Option {
	return func(lm *LibraryManager) { lm.now = now }
}

// NewLibraryManager opens the flat files at booksPath and accountsPath and
// loads them. Load problems are logged; the manager is usable regardless.
func NewLibraryManager(booksPath, accountsPath string, logger *slog.Logger, opts ...Option) (*LibraryManager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store, err := NewStore(booksPath, accountsPath, logger)
	if err != nil {
		return nil, err
	}
	lm := &LibraryManager{lib: New(), store: store, log: logger, now: time.Now}
	for _, opt := range opts {
		opt(lm)
	}
	if err := lm.Reload(); err != nil {
		logger.Error("loading library state", "err", err)
	}
	return lm, nil
}

// Close saves the current state.
func (lm *LibraryManager) Close() error { return lm.Save() }

// Today is the reference day for the current operation.
func (lm *LibraryManager) Today() Day { return Today(lm.now()) }

// Reload discards in-memory state and reads both files again.
func (lm *LibraryManager) Reload() error { return lm.store.Load(lm.lib) }

// Save writes both files, logging each failure.
func (lm *LibraryManager) Save() error {
	err := lm.store.Save(lm.lib)
	if err != nil {
		lm.log.Error("saving library state", "err", err)
	}
	return err
}

func (lm *LibraryManager) persist() { _ = lm.Save() }

// ------------------ Sessions ------------------

// OpenSession resolves name and id to an account holding role. A librarian
// session for the default Admin creates that account when it is missing.
func (lm *LibraryManager) OpenSession(name string, id int, role Role) (User, error) {
	key := AccountKey{Name: name, ID: id}
	acc, err := lm.lib.Session(key, role)
	if errors.Is(err, ErrAccountNotFound) && role == RoleLibrarian &&
		name == DefaultAdminName && id == DefaultAdminID {
		acc, err = lm.lib.AddAccount(User{Name: name, ID: id, Role: RoleLibrarian})
		if err == nil {
			lm.log.Info("created default librarian account", "name", name, "id", id)
			lm.persist()
		}
	}
	if err != nil {
		return User{}, err
	}
	return acc.User(), nil
}

// ------------------ Circulation ------------------

// Borrow lends title to the account on today's day-number.
func (lm *LibraryManager) Borrow(key AccountKey, title string) error {
	err := lm.lib.Borrow(key, title, lm.Today())
	lm.persist()
	return err
}

// Return hands title back on today's day-number.
func (lm *LibraryManager) Return(key AccountKey, title string) (ReturnResult, error) {
	res, err := lm.lib.Return(key, title, lm.Today())
	lm.persist()
	return res, err
}

func (lm *LibraryManager) PayFine(key AccountKey) (float64, error) {
	paid, err := lm.lib.PayFine(key)
	lm.persist()
	return paid, err
}

// Summary is the account's display view on today's day-number.
func (lm *LibraryManager) Summary(key AccountKey) (AccountSummary, error) {
	return lm.lib.Summary(key, lm.Today())
}

// LoanCount reports how many loans the account currently holds.
func (lm *LibraryManager) LoanCount(key AccountKey) int {
	acc, err := lm.lib.Lookup(key)
	if err != nil {
		return 0
	}
	return len(acc.Loans())
}

// ------------------ Catalog ------------------

func (lm *LibraryManager) AddBook(b Book) error {
	if err := lm.lib.AddBook(b); err != nil {
		return err
	}
	lm.persist()
	return nil
}

func (lm *LibraryManager) RemoveBook(title string) error {
	if err := lm.lib.RemoveBook(title); err != nil {
		return err
	}
	lm.persist()
	return nil
}

func (lm *LibraryManager) GetAllBooks() []Book       { return lm.lib.Catalog().Books() }
func (lm *LibraryManager) GetAvailableBooks() []Book { return lm.lib.Catalog().Available() }

// ------------------ Accounts ------------------

func (lm *LibraryManager) AddAccount(u User) error {
	if _, err := lm.lib.AddAccount(u); err != nil {
		return err
	}
	lm.persist()
	return nil
}

func (lm *LibraryManager) RemoveAccount(name string) error {
	if err := lm.lib.RemoveAccount(name); err != nil {
		return err
	}
	lm.persist()
	return nil
}

func (lm *LibraryManager) GetAllAccounts() []*Account { return lm.lib.Accounts() }

// Snapshot returns the complete library state as of today.
func (lm *LibraryManager) Snapshot() LibraryData { return lm.lib.Data(lm.Today()) }

// Restore installs a snapshot and writes both files, even over files whose
// last load failed.
func (lm *LibraryManager) Restore(data LibraryData) error {
	if err := lm.lib.Restore(data); err != nil {
		return err
	}
	lm.log.Info("library restored from snapshot", "books", len(data.Books), "accounts", len(data.Accounts))
	if err := lm.store.Overwrite(lm.lib); err != nil {
		lm.log.Error("saving restored library", "err", err)
		return err
	}
	return nil
}
