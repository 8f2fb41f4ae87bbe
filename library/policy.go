package library

import "fmt"

const (
	studentLimit       = 3
	studentGraceDays   = 15
	studentFinePerDay  = 10
	facultyLimit       = 5
	facultyAllowedDays = 30
	facultySevereDays  = 60
)

// LoanView is a display line for one loan. OverdueDays is zero unless the loan is past its grace period.
type LoanView struct {
	Title       string
	BorrowedOn  Day
	OverdueDays int
}

// Student holds a student's loans and fine. The fine is replaced by every
// recomputation; PayFine and loading set it directly until the next one.
type Student struct {
	loans []Loan
	fine  float64
}

// NewStudent returns a student policy with no loans and no fine.
func NewStudent() *Student { return &Student{} }

// RestoreStudent rebuilds persisted state without applying policy checks.
func RestoreStudent(loans []Loan, fine float64) *Student {
	return &Student{loans: append([]Loan(nil), loans...), fine: fine}
}

func studentOverdue(ref Day, l Loan) int {
	return int(ref - l.BorrowedOn - studentGraceDays)
}

// ComputeFine replaces the stored fine with the fine owed on ref.
func (s *Student) ComputeFine(ref Day) float64 {
	total := 0.0
	for _, l := range s.loans {
		if late := studentOverdue(ref, l); late > 0 {
			total += float64(late * studentFinePerDay)
		}
	}
	s.fine = total
	return total
}

// Borrow records a loan on day. The limit check precedes the fine check.
func (s *Student) Borrow(title string, day Day) error {
	s.ComputeFine(day)
	if len(s.loans) >= studentLimit {
		return ErrLimitReached
	}
	if s.fine > 0 {
		return fmt.Errorf("%w: %s rupees", ErrOutstandingFine, FormatAmount(s.fine))
	}
	s.loans = append(s.loans, Loan{Title: title, BorrowedOn: day})
	return nil
}

// Return removes the first loan of title, recomputing the fine at day first.
func (s *Student) Return(title string, day Day) error {
	s.ComputeFine(day)
	i := indexOfLoan(s.loans, title)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotBorrowed, title)
	}
	s.loans = append(s.loans[:i], s.loans[i+1:]...)
	return nil
}

// PayFine clears a positive fine and reports the amount paid.
func (s *Student) PayFine() (float64, error) {
	if s.fine <= 0 {
		return 0, ErrNoFineDue
	}
	paid := s.fine
	s.fine = 0
	return paid, nil
}

func (s *Student) Fine() float64 { return s.fine }
func (s *Student) Loans() []Loan { return append([]Loan(nil), s.loans...) }

// StudentSummary is the display view of a student.
type StudentSummary struct {
	Loans []LoanView
	Fine  float64
}

// Summary recomputes the fine at today and lists loans with their overdue days.
func (s *Student) Summary(today Day) StudentSummary {
	sum := StudentSummary{Fine: s.ComputeFine(today)}
	for _, l := range s.loans {
		v := LoanView{Title: l.Title, BorrowedOn: l.BorrowedOn}
		if late := studentOverdue(today, l); late > 0 {
			v.OverdueDays = late
		}
		sum.Loans = append(sum.Loans, v)
	}
	return sum
}

// Faculty holds a faculty member's loans. There is no fine; a loan more than
// 60 days past its 30-day allowance blocks new borrowing.
type Faculty struct {
	loans []Loan
}

// NewFaculty returns a faculty policy with no loans.
func NewFaculty() *Faculty { return &Faculty{} }

// RestoreFaculty rebuilds persisted state without applying policy checks.
func RestoreFaculty(loans []Loan) *Faculty {
	return &Faculty{loans: append([]Loan(nil), loans...)}
}

func severelyOverdue(ref Day, l Loan) bool {
	return int(ref-l.BorrowedOn-facultyAllowedDays) > facultySevereDays
}

// HasSevereOverdue reports whether any loan is more than 60 days past its allowance on ref.
func (f *Faculty) HasSevereOverdue(ref Day) bool {
	for _, l := range f.loans {
		if severelyOverdue(ref, l) {
			return true
		}
	}
	return false
}

// Borrow records a loan on day. The limit check precedes the overdue check.
func (f *Faculty) Borrow(title string, day Day) error {
	if len(f.loans) >= facultyLimit {
		return ErrLimitReached
	}
	if f.HasSevereOverdue(day) {
		return ErrSevereOverdue
	}
	f.loans = append(f.loans, Loan{Title: title, BorrowedOn: day})
	return nil
}

// Return removes the first loan of title. severe reports that the returned
// loan was more than 60 days past its allowance; it never blocks the return.
func (f *Faculty) Return(title string, day Day) (severe bool, err error) {
	i := indexOfLoan(f.loans, title)
	if i < 0 {
		return false, fmt.Errorf("%w: %q", ErrNotBorrowed, title)
	}
	severe = severelyOverdue(day, f.loans[i])
	f.loans = append(f.loans[:i], f.loans[i+1:]...)
	return severe, nil
}

func (f *Faculty) Loans() []Loan { return append([]Loan(nil), f.loans...) }

// FacultySummary is the display view of a faculty member.
type FacultySummary struct {
	Loans      []LoanView
	Restricted bool
}

func (f *Faculty) Summary(today Day) FacultySummary {
	sum := FacultySummary{Restricted: f.HasSevereOverdue(today)}
	for _, l := range f.loans {
		sum.Loans = append(sum.Loans, LoanView{Title: l.Title, BorrowedOn: l.BorrowedOn})
	}
	return sum
}

func indexOfLoan(loans []Loan, title string) int {
	for i, l := range loans {
		if l.Title == title {
			return i
		}
	}
	return -1
}
