package library

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := NewStore(filepath.Join(dir, "books.txt"), filepath.Join(dir, "accounts.txt"), discardLogger())
	require.NoError(t, err)
	return st
}

func TestBooksRoundTrip(t *testing.T) {
	st := tempStore(t)
	books := []Book{
		NewBook("Dune", "Frank Herbert", "Chilton", 1965, "0441013597"),
		{Title: "Emma", Author: "Jane Austen", Publisher: "Murray", Year: 1815, ISBN: "x1", Status: StatusBorrowed, ReservedBy: "Asha"},
		{Title: "Ulysses", Author: "Joyce", Publisher: "", Year: 1922, ISBN: "", Status: StatusReserved, ReservedBy: "Ravi"},
		NewBook("Dune", "Frank Herbert", "Ace", 1990, "2"),
	}

	require.NoError(t, st.SaveBooks(books))
	got, err := st.LoadBooks()

	require.NoError(t, err)
	assert.Equal(t, books, got)
}

func TestBooksFileLayout(t *testing.T) {
	st := tempStore(t)
	require.NoError(t, st.SaveBooks([]Book{
		NewBook("Dune", "Herbert", "Chilton", 1965, "123"),
		{Title: "Emma", Author: "Austen", Publisher: "Murray", Year: 1815, ISBN: "9", Status: StatusBorrowed, ReservedBy: "Asha"},
	}))

	raw, err := os.ReadFile(st.BooksPath())
	require.NoError(t, err)
	assert.Equal(t, "Dune,Herbert,Chilton,1965,123,Available,\nEmma,Austen,Murray,1815,9,Borrowed,Asha\n", string(raw))
}

func TestAccountsRoundTrip(t *testing.T) {
	st := tempStore(t)
	student := NewStudentAccount("Asha", 2, RestoreStudent([]Loan{{"Algorithms", 100}, {"Networks", 110}}, 37.5))
	faculty := NewFacultyAccount("Ravi", 7, RestoreFaculty([]Loan{{"Compilers", 5}}))
	admin := mustAccount(t, "Admin", 1, RoleLibrarian)

	require.NoError(t, st.SaveAccounts([]*Account{student, faculty, admin}))

	raw, err := os.ReadFile(st.AccountsPath())
	require.NoError(t, err)
	assert.Equal(t,
		"Asha,2,Student,Algorithms:100,Networks:110,37.5\nRavi,7,Faculty,Compilers:5,\nAdmin,1,Librarian,\n",
		string(raw))

	got, found, err := st.LoadAccounts()
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 3)

	assert.Equal(t, User{Name: "Asha", ID: 2, Role: RoleStudent}, got[0].User())
	assert.Equal(t, []Loan{{"Algorithms", 100}, {"Networks", 110}}, got[0].Loans())
	assert.Equal(t, 37.5, got[0].Fine(), "persisted fine is ground truth until recomputed")
	assert.Equal(t, 0.0, got[0].Student().ComputeFine(110))

	assert.Equal(t, []Loan{{"Compilers", 5}}, got[1].Loans())
	assert.Equal(t, RoleLibrarian, got[2].User().Role)
	assert.Empty(t, got[2].Loans())
}

func TestLoadRestoresLoansBeyondPolicyLimits(t *testing.T) {
	st := tempStore(t)
	line := "Asha,2,Student,A:1,B:2,C:3,D:400,0\n"
	require.NoError(t, os.WriteFile(st.AccountsPath(), []byte(line), 0o644))

	got, _, err := st.LoadAccounts()

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Loans(), 4)
}

func TestLoadAccountsTolerance(t *testing.T) {
	st := tempStore(t)
	content := strings.Join([]string{
		"Asha,2,Student,Algorithms:100,abc", // bad fine
		"Bo,3,Student,Networks:100,,12",     // empty token before fine
		"Cy,4,Student,",                     // no loans, no fine
		"Dee,x,Student,0",                   // bad id
		"Eve,5,Janitor,",                    // unknown role
		"Fay,6,Faculty,Good:10,Bad:xyz,",    // bad loan token
		"",                                  // blank
		"Gil",                               // too short
		"Hal,8,Student,T:it:le:100,-4",      // colon in title, negative fine
	}, "\n")
	require.NoError(t, os.WriteFile(st.AccountsPath(), []byte(content), 0o644))

	got, found, err := st.LoadAccounts()
	require.NoError(t, err)
	require.True(t, found)

	names := make([]string, 0, len(got))
	for _, acc := range got {
		names = append(names, acc.User().Name)
	}
	require.Equal(t, []string{"Asha", "Bo", "Cy", "Fay", "Hal"}, names)

	assert.Equal(t, 0.0, got[0].Fine())
	assert.Len(t, got[0].Loans(), 1)
	assert.Equal(t, 12.0, got[1].Fine())
	assert.Empty(t, got[2].Loans())
	assert.Equal(t, []Loan{{"Good", 10}}, got[3].Loans())
	assert.Equal(t, []Loan{{"T:it:le", 100}}, got[4].Loans())
	assert.Equal(t, 0.0, got[4].Fine())
}

func TestLoadBooksSkipsMalformed(t *testing.T) {
	st := tempStore(t)
	content := "Dune,Herbert,Chilton,1965,1,Available,\n" +
		"Short,line\n" +
		"Emma,Austen,Murray,year,9,Available,\n" +
		"Odd,Author,Pub,2000,9,Lost,\n" +
		"Emma,Austen,Murray,1815,9,Borrowed\r\n"
	require.NoError(t, os.WriteFile(st.BooksPath(), []byte(content), 0o644))

	got, err := st.LoadBooks()

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dune", got[0].Title)
	assert.Equal(t, Book{Title: "Emma", Author: "Austen", Publisher: "Murray", Year: 1815, ISBN: "9", Status: StatusBorrowed}, got[1])
}

func TestLoadMissingFiles(t *testing.T) {
	st := tempStore(t)
	lib := New()

	require.NoError(t, st.Load(lib))

	assert.Zero(t, lib.Catalog().Len())
	accounts := lib.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, User{Name: DefaultAdminName, ID: DefaultAdminID, Role: RoleLibrarian}, accounts[0].User())
}

func TestLoadEmptyAccountsFileHasNoDefaultAdmin(t *testing.T) {
	st := tempStore(t)
	require.NoError(t, os.WriteFile(st.AccountsPath(), nil, 0o644))
	lib := New()

	require.NoError(t, st.Load(lib))

	assert.Empty(t, lib.Accounts())
}

func TestLoadReplacesState(t *testing.T) {
	st := tempStore(t)
	lib := New()
	require.NoError(t, lib.AddBook(NewBook("Stale", "A", "P", 2000, "1")))
	_, err := lib.AddAccount(User{Name: "Stale", ID: 9, Role: RoleStudent})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(st.BooksPath(), []byte("Dune,Herbert,Chilton,1965,1,Available,\n"), 0o644))
	require.NoError(t, os.WriteFile(st.AccountsPath(), []byte("Asha,2,Student,0\n"), 0o644))
	require.NoError(t, st.Load(lib))

	require.Len(t, lib.Catalog().Books(), 1)
	assert.Equal(t, "Dune", lib.Catalog().Books()[0].Title)
	require.Len(t, lib.Accounts(), 1)
	assert.Equal(t, "Asha", lib.Accounts()[0].User().Name)
}

func TestSaveFailuresAreIndependent(t *testing.T) {
	dir := t.TempDir()
	booksDir := filepath.Join(dir, "books-as-dir")
	require.NoError(t, os.Mkdir(booksDir, 0o755))
	st, err := NewStore(booksDir, filepath.Join(dir, "accounts.txt"), discardLogger())
	require.NoError(t, err)

	lib := New()
	_, err = lib.AddAccount(User{Name: "Asha", ID: 2, Role: RoleStudent})
	require.NoError(t, err)

	err = st.Save(lib)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save books")

	raw, readErr := os.ReadFile(st.AccountsPath())
	require.NoError(t, readErr)
	assert.Equal(t, "Asha,2,Student,0\n", string(raw))
}

func TestLoadWarnsOnMalformedFine(t *testing.T) {
	var logs bytes.Buffer
	dir := t.TempDir()
	st, err := NewStore(filepath.Join(dir, "b.txt"), filepath.Join(dir, "a.txt"), slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(st.AccountsPath(), []byte("Asha,2,Student,oops\n"), 0o644))

	got, _, err := st.LoadAccounts()

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Fine())
	assert.Contains(t, logs.String(), "invalid fine")
}

func TestLoadLongRecordKeepsFollowingRecords(t *testing.T) {
	st := tempStore(t)
	long := strings.Repeat("x", 70*1024)
	content := "Dune,Herbert,Chilton,1965,1,Available,\n" +
		long + ",Author,Pub,2000,2,Available,\n" +
		"Emma,Austen,Murray,1815,3,Available,\n" +
		"Ulysses,Joyce,Shakespeare,1922,4,Available,\n"
	require.NoError(t, os.WriteFile(st.BooksPath(), []byte(content), 0o644))
	lib := New()

	require.NoError(t, st.Load(lib))
	require.Equal(t, 4, lib.Catalog().Len())
	assert.Equal(t, long, lib.Catalog().Books()[1].Title)

	require.NoError(t, st.Save(lib))
	raw, err := os.ReadFile(st.BooksPath())
	require.NoError(t, err)
	assert.Equal(t, content, string(raw))
}

func TestReadBooksReportsReadError(t *testing.T) {
	st := tempStore(t)
	errDisk := errors.New("disk failure")
	r := io.MultiReader(strings.NewReader("Dune,Herbert,Chilton,1965,1,Available,\n"), iotest.ErrReader(errDisk))

	books, err := st.readBooks(r)

	require.ErrorIs(t, err, errDisk)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
}

func TestFailedLoadBlocksOverwrite(t *testing.T) {
	dir := t.TempDir()
	accountsPath := filepath.Join(dir, "accounts.txt")
	// Opening a directory succeeds but reading it fails.
	require.NoError(t, os.Mkdir(accountsPath, 0o755))
	st, err := NewStore(filepath.Join(dir, "books.txt"), accountsPath, discardLogger())
	require.NoError(t, err)
	lib := New()

	require.Error(t, st.Load(lib))
	assert.Empty(t, lib.Accounts(), "a failed read must not install the default librarian")
	require.NoError(t, lib.AddBook(NewBook("Dune", "Herbert", "Chilton", 1965, "1")))

	err = st.Save(lib)
	require.ErrorIs(t, err, ErrLoadFailed)
	raw, readErr := os.ReadFile(st.BooksPath())
	require.NoError(t, readErr)
	assert.Equal(t, "Dune,Herbert,Chilton,1965,1,Available,\n", string(raw))

	require.NoError(t, os.Remove(accountsPath))
	require.NoError(t, os.WriteFile(accountsPath, []byte("Asha,2,Student,0\n"), 0o644))
	require.NoError(t, st.Load(lib))
	require.NoError(t, st.Save(lib))
}
