package library

import "fmt"

// Account binds a user to the borrower policy chosen by its role. Exactly one
// of student and faculty is set for borrowing roles; librarians carry neither.
type Account struct {
	user    User
	student *Student
	faculty *Faculty
}

// NewAccount creates an account with an empty policy for user's role.
func NewAccount(user User) (*Account, error) {
	switch user.Role {
	case RoleStudent:
		return &Account{user: user, student: NewStudent()}, nil
	case RoleFaculty:
		return &Account{user: user, faculty: NewFaculty()}, nil
	case RoleLibrarian:
		return &Account{user: user}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, user.Role)
	}
}

// NewStudentAccount wraps an existing student policy, e.g. one restored from disk.
func NewStudentAccount(name string, id int, s *Student) *Account {
	return &Account{user: User{Name: name, ID: id, Role: RoleStudent}, student: s}
}

// NewFacultyAccount wraps an existing faculty policy.
func NewFacultyAccount(name string, id int, f *Faculty) *Account {
	return &Account{user: User{Name: name, ID: id, Role: RoleFaculty}, faculty: f}
}

func (a *Account) User() User        { return a.user }
func (a *Account) Key() AccountKey   { return a.user.Key() }
func (a *Account) Student() *Student { return a.student }
func (a *Account) Faculty() *Faculty { return a.faculty }

// Loans returns the authoritative loan list of the account's policy.
func (a *Account) Loans() []Loan {
	switch a.user.Role {
	case RoleStudent:
		return a.student.Loans()
	case RoleFaculty:
		return a.faculty.Loans()
	}
	return nil
}

// BorrowedTitles is a read-only view derived from the policy's loans.
func (a *Account) BorrowedTitles() []string {
	loans := a.Loans()
	titles := make([]string, 0, len(loans))
	for _, l := range loans {
		titles = append(titles, l.Title)
	}
	return titles
}

// Fine reports the student's stored fine without recomputing it. Other roles owe nothing.
func (a *Account) Fine() float64 {
	if a.user.Role == RoleStudent {
		return a.student.Fine()
	}
	return 0
}

// Borrow lends the first Available copy of title to the account holder.
// The catalog is only changed when the policy accepts the loan.
func (a *Account) Borrow(title string, day Day, catalog *Catalog) error {
	book := catalog.FindAvailable(title)
	if book == nil {
		return fmt.Errorf("%w: %q", ErrNotAvailable, title)
	}

	var err error
	switch a.user.Role {
	case RoleStudent:
		err = a.student.Borrow(title, day)
	case RoleFaculty:
		err = a.faculty.Borrow(title, day)
	default:
		return ErrLibrarianCannotBorrow
	}
	if err != nil {
		return err
	}

	book.Status = StatusBorrowed
	book.ReservedBy = a.user.Name
	return nil
}

// ReturnResult carries the informational outcome of a successful return.
type ReturnResult struct {
	// SevereOverdue is set when a faculty loan came back more than 60 days past its allowance.
	SevereOverdue bool
	// MissingFromCatalog is set when the title no longer exists in the catalog.
	MissingFromCatalog bool
}

// Return hands title back. The policy decides first; the catalog entry, if it
// still exists, becomes Available again.
func (a *Account) Return(title string, day Day, catalog *Catalog) (ReturnResult, error) {
	var res ReturnResult
	switch a.user.Role {
	case RoleStudent:
		if err := a.student.Return(title, day); err != nil {
			return res, err
		}
	case RoleFaculty:
		severe, err := a.faculty.Return(title, day)
		if err != nil {
			return res, err
		}
		res.SevereOverdue = severe
	default:
		return res, ErrLibrarianCannotReturn
	}

	book := catalog.Find(title)
	if book == nil {
		res.MissingFromCatalog = true
		return res, nil
	}
	book.Status = StatusAvailable
	book.ReservedBy = ""
	return res, nil
}

// PayFine settles a student's fine.
func (a *Account) PayFine() (float64, error) {
	if a.user.Role != RoleStudent {
		return 0, ErrNoFinesForRole
	}
	return a.student.PayFine()
}

// AccountSummary is the display view of an account.
type AccountSummary struct {
	User       User
	Loans      []LoanView
	Fine       float64
	Restricted bool
}

// Summary recomputes the policy view on today. For students this refreshes the stored fine.
func (a *Account) Summary(today Day) AccountSummary {
	sum := AccountSummary{User: a.user}
	switch a.user.Role {
	case RoleStudent:
		s := a.student.Summary(today)
		sum.Loans, sum.Fine = s.Loans, s.Fine
	case RoleFaculty:
		f := a.faculty.Summary(today)
		sum.Loans, sum.Restricted = f.Loans, f.Restricted
	}
	return sum
}

// Data returns the snapshot form of the account.
func (a *Account) Data() AccountData {
	d := AccountData{User: a.user, Loans: a.Loans()}
	if a.user.Role == RoleStudent {
		fine := a.student.Fine()
		d.Fine = &fine
	}
	return d
}
