package library

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Default Librarian synthesised when no accounts file exists.
const (
	DefaultAdminName = "Admin"
	DefaultAdminID   = 1
)

// Store persists the library as two comma-delimited text files. Every save
// replaces both files entirely and every load replaces the in-memory state.
type Store struct {
	booksPath    string
	accountsPath string
	log          *slog.Logger

	// Set when the last load of that file failed for a reason other than
	// absence. Saving would overwrite records that were never read.
	booksLocked    bool
	accountsLocked bool
}

// NewStore prepares a store for the given file paths, creating their directories so first-run succeeds.
func NewStore(booksPath, accountsPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, p := range []string{booksPath, accountsPath} {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
	}
	return &Store{booksPath: booksPath, accountsPath: accountsPath, log: logger}, nil
}

func (s *Store) BooksPath() string    { return s.booksPath }
func (s *Store) AccountsPath() string { return s.accountsPath }

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// Load replaces lib's state with the persisted one. A missing catalog is an
// empty catalog; a missing accounts file yields the default Admin librarian.
// Books and accounts load independently and their errors are joined. A file
// that failed to load is not written again until a later load succeeds.
func (s *Store) Load(lib *Library) error {
	books, errBooks := s.LoadBooks()
	accounts, found, errAccounts := s.LoadAccounts()
	s.booksLocked = errBooks != nil
	s.accountsLocked = errAccounts != nil

	if !found && errAccounts == nil {
		admin, _ := NewAccount(User{Name: DefaultAdminName, ID: DefaultAdminID, Role: RoleLibrarian})
		accounts = append(accounts, admin)
		s.log.Info("created default librarian account", "name", DefaultAdminName, "id", DefaultAdminID)
	}

	lib.Replace(books, accounts)
	return errors.Join(errBooks, errAccounts)
}

// LoadBooks reads the catalog file. Malformed lines are skipped.
func (s *Store) LoadBooks() ([]Book, error) {
	f, err := os.Open(s.booksPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info("no books file found, starting with an empty catalog", "path", s.booksPath)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open books: %w", err)
	}
	defer f.Close()

	books, err := s.readBooks(f)
	if err != nil {
		return books, fmt.Errorf("read books: %w", err)
	}
	s.log.Debug("books loaded", "path", s.booksPath, "count", len(books))
	return books, nil
}

func (s *Store) readBooks(r io.Reader) ([]Book, error) {
	var books []Book
	err := eachLine(r, func(lineNo int, line string) {
		b, err := parseBookLine(line)
		if err != nil {
			s.log.Warn("skipping malformed book record", "line", lineNo, "err", err)
			return
		}
		books = append(books, b)
	})
	return books, err
}

// LoadAccounts reads the accounts file. found is false when the file does not exist.
func (s *Store) LoadAccounts() (accounts []*Account, found bool, err error) {
	f, err := os.Open(s.accountsPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info("no accounts file found", "path", s.accountsPath)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open accounts: %w", err)
	}
	defer f.Close()

	accounts, err = s.readAccounts(f)
	if err != nil {
		return accounts, true, fmt.Errorf("read accounts: %w", err)
	}
	s.log.Debug("accounts loaded", "path", s.accountsPath, "count", len(accounts))
	return accounts, true, nil
}

func (s *Store) readAccounts(r io.Reader) ([]*Account, error) {
	var accounts []*Account
	err := eachLine(r, func(lineNo int, line string) {
		acc, err := s.parseAccountLine(line)
		if err != nil {
			s.log.Warn("skipping malformed account record", "line", lineNo, "err", err)
			return
		}
		accounts = append(accounts, acc)
	})
	return accounts, err
}

// eachLine calls fn for every non-blank line of r, without a length limit.
func eachLine(r io.Reader, fn func(lineNo int, line string)) error {
	br := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) != "" {
			fn(lineNo, line)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

// Save writes both files. A failure on one file does not stop the other.
func (s *Store) Save(lib *Library) error {
	errBooks := s.SaveBooks(lib.Catalog().Books())
	errAccounts := s.SaveAccounts(lib.Accounts())
	return errors.Join(errBooks, errAccounts)
}

// Overwrite writes both files regardless of earlier load failures.
func (s *Store) Overwrite(lib *Library) error {
	s.booksLocked, s.accountsLocked = false, false
	return s.Save(lib)
}

func (s *Store) SaveBooks(books []Book) error {
	if s.booksLocked {
		return fmt.Errorf("save books: %w", ErrLoadFailed)
	}
	var buf bytes.Buffer
	for _, b := range books {
		buf.WriteString(formatBookLine(b))
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(s.booksPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save books: %w", err)
	}
	s.log.Debug("books saved", "path", s.booksPath, "count", len(books))
	return nil
}

func (s *Store) SaveAccounts(accounts []*Account) error {
	if s.accountsLocked {
		return fmt.Errorf("save accounts: %w", ErrLoadFailed)
	}
	var buf bytes.Buffer
	for _, acc := range accounts {
		buf.WriteString(formatAccountLine(acc))
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(s.accountsPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	s.log.Debug("accounts saved", "path", s.accountsPath, "count", len(accounts))
	return nil
}

// ---------------------------------------------------------------------------
// Record formats
// ---------------------------------------------------------------------------

// title,author,publisher,year,isbn,status,reservedBy
func formatBookLine(b Book) string {
	return strings.Join([]string{
		b.Title, b.Author, b.Publisher, strconv.Itoa(b.Year), b.ISBN, string(b.Status), b.ReservedBy,
	}, ",")
}

func parseBookLine(line string) (Book, error) {
	fields := strings.Split(line, ",")
	// A trailing empty reservedBy may be absent.
	if len(fields) < 6 || len(fields) > 7 {
		return Book{}, fmt.Errorf("want 7 fields, got %d", len(fields))
	}
	year, err := strconv.Atoi(fields[3])
	if err != nil {
		return Book{}, fmt.Errorf("year %q: %w", fields[3], err)
	}
	status := BookStatus(fields[5])
	switch status {
	case StatusAvailable, StatusBorrowed, StatusReserved:
	default:
		return Book{}, fmt.Errorf("unknown status %q", fields[5])
	}
	b := Book{
		Title:     fields[0],
		Author:    fields[1],
		Publisher: fields[2],
		Year:      year,
		ISBN:      fields[4],
		Status:    status,
	}
	if len(fields) == 7 {
		b.ReservedBy = fields[6]
	}
	return b, nil
}

// name,id,role, then title:day tokens each followed by a comma, then the student fine.
func formatAccountLine(acc *Account) string {
	u := acc.User()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s,%d,%s,", u.Name, u.ID, u.Role)
	for _, l := range acc.Loans() {
		fmt.Fprintf(&sb, "%s:%d,", l.Title, l.BorrowedOn)
	}
	if u.Role == RoleStudent {
		sb.WriteString(FormatAmount(acc.Fine()))
	}
	return sb.String()
}

func (s *Store) parseAccountLine(line string) (*Account, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return nil, fmt.Errorf("want at least 3 fields, got %d", len(fields))
	}
	name := fields[0]
	id, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return nil, fmt.Errorf("id %q: %w", fields[1], err)
	}
	role, err := ParseRole(fields[2])
	if err != nil {
		return nil, err
	}

	if role == RoleLibrarian {
		return NewAccount(User{Name: name, ID: id, Role: role})
	}

	rest := fields[3:]
	var loans []Loan
	i := 0
	for ; i < len(rest) && rest[i] != "" && strings.Contains(rest[i], ":"); i++ {
		loan, err := parseLoanToken(rest[i])
		if err != nil {
			s.log.Warn("skipping malformed loan", "account", name, "token", rest[i], "err", err)
			continue
		}
		loans = append(loans, loan)
	}

	if role == RoleFaculty {
		return NewFacultyAccount(name, id, RestoreFaculty(loans)), nil
	}

	var fineToken string
	if i < len(rest) && rest[i] != "" {
		fineToken = rest[i]
	} else if i+1 < len(rest) {
		fineToken = rest[i+1]
	}
	fine := 0.0
	if strings.TrimSpace(fineToken) != "" {
		fine, err = strconv.ParseFloat(strings.TrimSpace(fineToken), 64)
		if err != nil || fine < 0 || math.IsNaN(fine) || math.IsInf(fine, 0) {
			s.log.Warn("invalid fine, defaulting to 0", "account", name, "token", fineToken)
			fine = 0
		}
	}
	return NewStudentAccount(name, id, RestoreStudent(loans, fine)), nil
}

func parseLoanToken(tok string) (Loan, error) {
	idx := strings.LastIndex(tok, ":")
	title := tok[:idx]
	if title == "" {
		return Loan{}, errors.New("empty title")
	}
	day, err := strconv.ParseInt(strings.TrimSpace(tok[idx+1:]), 10, 64)
	if err != nil {
		return Loan{}, fmt.Errorf("borrow day: %w", err)
	}
	return Loan{Title: title, BorrowedOn: Day(day)}, nil
}

// FormatAmount renders a fine the way it is persisted: shortest decimal form.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
