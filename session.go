package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"library-console/internal/display"
	"library-console/library"
)

// console drives one run of the interactive menus over a line-oriented input.
type console struct {
	sc          *bufio.Scanner
	out         io.Writer
	mgr         *library.LibraryManager
	log         *slog.Logger
	interactive bool
}

func newConsole(in io.Reader, out io.Writer, mgr *library.LibraryManager, logger *slog.Logger) *console {
	return &console{sc: bufio.NewScanner(in), out: out, mgr: mgr, log: logger}
}

func (c *console) printf(format string, args ...any) { fmt.Fprintf(c.out, format, args...) }
func (c *console) println(args ...any)               { fmt.Fprintln(c.out, args...) }

// prompt prints label and reads one trimmed line. ok is false at end of input.
func (c *console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.sc.Text()), true
}

func (c *console) run() {
	if c.interactive {
		c.println("Welcome to the Library Management System!")
		c.println("Tips:")
		c.println("  • Log in with your name and ID; ask a librarian if you have no account")
		c.println("  • A fresh library can be managed as librarian 'Admin' with ID 1")
	}
	c.log.Info("session started")

	for c.roleMenu() {
	}

	if err := c.mgr.Close(); err != nil {
		c.println("Warning: library state could not be saved completely.")
	}
	c.log.Info("session ended")
	c.println("Goodbye!")
}

// roleMenu runs one login and its session. It returns false when the user exits.
func (c *console) roleMenu() bool {
	c.println()
	c.println(strings.Repeat("-", 42))
	c.println("Roles: student, faculty, librarian, exit")
	choice, ok := c.prompt("Select your role: ")
	if !ok || strings.EqualFold(choice, "exit") {
		return false
	}

	role, err := library.ParseRole(choice)
	if err != nil {
		c.println("Invalid role choice. Please try again.")
		return true
	}

	name, ok := c.prompt("Enter your name: ")
	if !ok {
		return false
	}
	idStr, ok := c.prompt("Enter your ID: ")
	if !ok {
		return false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.printf("Invalid ID: %s\n", idStr)
		return true
	}

	user, err := c.mgr.OpenSession(name, id, role)
	switch {
	case errors.Is(err, library.ErrAccountNotFound):
		c.printf("No account found with name '%s' and ID %d.\n", name, id)
		if role == library.RoleLibrarian {
			c.printf("Please use the default librarian account (%s, ID: %d) to create new accounts.\n",
				library.DefaultAdminName, library.DefaultAdminID)
		} else {
			c.println("Please contact a librarian to create an account.")
		}
		return true
	case err != nil:
		c.printf("Error: %v\n", err)
		return true
	}

	c.log.Info("login", "name", user.Name, "id", user.ID, "role", user.Role)
	switch role {
	case library.RoleStudent:
		return c.studentSession(user)
	case library.RoleFaculty:
		return c.facultySession(user)
	default:
		return c.librarianSession(user)
	}
}

// ------------------ Borrower sessions ------------------

func (c *console) studentSession(u library.User) bool {
	c.printf("\nStudent commands: borrow, return, pay fine, display, list available, exit\n")
	for {
		cmd, ok := c.prompt("\nstudent> ")
		if !ok {
			return false
		}
		switch cmd {
		case "borrow":
			c.handleBorrow(u)
		case "return":
			c.handleReturn(u)
		case "pay fine":
			c.handlePayFine(u)
		case "display":
			c.handleDisplay(u)
		case "list available":
			c.handleListAvailable()
		case "exit":
			c.mgr.Save()
			return true
		case "":
		default:
			c.println("Invalid choice. Please try again.")
		}
	}
}

func (c *console) facultySession(u library.User) bool {
	c.printf("\nFaculty commands: borrow, return, display, list available, exit\n")
	for {
		cmd, ok := c.prompt("\nfaculty> ")
		if !ok {
			return false
		}
		switch cmd {
		case "borrow":
			c.handleBorrow(u)
		case "return":
			c.handleReturn(u)
		case "display":
			c.handleDisplay(u)
		case "list available":
			c.handleListAvailable()
		case "exit":
			c.mgr.Save()
			return true
		case "":
		default:
			c.println("Invalid choice. Please try again.")
		}
	}
}

func (c *console) handleBorrow(u library.User) {
	title, ok := c.prompt("Enter the book title: ")
	if !ok {
		return
	}
	if err := c.mgr.Borrow(u.Key(), title); err != nil {
		c.log.Debug("borrow rejected", "title", title, "err", err)
		c.printf("Could not borrow '%s': %v\n", title, err)
		return
	}
	c.printf("Book '%s' borrowed successfully. Total books now: %d.\n", title, c.mgr.LoanCount(u.Key()))
}

func (c *console) handleReturn(u library.User) {
	title, ok := c.prompt("Enter the book title: ")
	if !ok {
		return
	}
	res, err := c.mgr.Return(u.Key(), title)
	if err != nil {
		c.printf("Could not return '%s': %v\n", title, err)
		return
	}
	if res.SevereOverdue {
		c.println("Note: This book is very overdue.")
	}
	if res.MissingFromCatalog {
		c.printf("Warning: The book '%s' was not found in the library collection.\n", title)
	}
	c.printf("Book '%s' returned. Total books now: %d.\n", title, c.mgr.LoanCount(u.Key()))
}

func (c *console) handlePayFine(u library.User) {
	paid, err := c.mgr.PayFine(u.Key())
	switch {
	case errors.Is(err, library.ErrNoFineDue):
		c.println("You don't have any outstanding fines.")
	case err != nil:
		c.printf("Error: %v\n", err)
	default:
		c.printf("You paid %s rupees. Thank you.\n", library.FormatAmount(paid))
	}
}

func (c *console) handleDisplay(u library.User) {
	sum, err := c.mgr.Summary(u.Key())
	if err != nil {
		c.printf("Error: %v\n", err)
		return
	}
	c.printf("%s (ID: %d), %s\n", sum.User.Name, sum.User.ID, sum.User.Role)
	if len(sum.Loans) == 0 {
		c.println("Borrowed Books: none")
	} else {
		c.println("Borrowed Books:")
		for _, l := range sum.Loans {
			line := "  " + l.Title
			if sum.User.Role == library.RoleStudent && l.OverdueDays > 0 {
				line += fmt.Sprintf(" (Overdue by %d days)", l.OverdueDays)
			}
			c.println(line)
		}
	}
	switch sum.User.Role {
	case library.RoleStudent:
		c.printf("Outstanding Fine: %s rupees\n", library.FormatAmount(sum.Fine))
	case library.RoleFaculty:
		if sum.Restricted {
			c.println("Please note: You have a book overdue by more than 60 days.")
		}
	}
}

func (c *console) handleListAvailable() {
	books := c.mgr.GetAvailableBooks()
	if len(books) == 0 {
		c.println("No books available.")
		return
	}
	c.println("Available Books:")
	for _, b := range books {
		c.println(formatBook(b))
	}
}

// ------------------ Librarian session ------------------

func (c *console) librarianSession(u library.User) bool {
	c.printf("\nLibrarian commands: add book, remove book, add account, remove account, list books, list accounts, exit\n")
	for {
		cmd, ok := c.prompt("\nlibrarian> ")
		if !ok {
			return false
		}
		switch cmd {
		case "add book":
			c.handleAddBook(u)
		case "remove book":
			c.handleRemoveBook(u)
		case "add account":
			c.handleAddAccount(u)
		case "remove account":
			c.handleRemoveAccount(u)
		case "list books":
			c.handleListBooks()
		case "list accounts":
			c.handleListAccounts()
		case "exit":
			c.mgr.Save()
			return true
		case "":
		default:
			c.println("Invalid choice. Please try again.")
		}
	}
}

func (c *console) handleAddBook(u library.User) {
	var fields [5]string
	for i, label := range []string{"Enter book title: ", "Enter author: ", "Enter publisher: ", "Enter year: ", "Enter ISBN: "} {
		v, ok := c.prompt(label)
		if !ok {
			return
		}
		fields[i] = v
	}
	year, err := strconv.Atoi(fields[3])
	if err != nil {
		c.printf("Invalid year: %s\n", fields[3])
		return
	}

	if err := c.mgr.AddBook(library.NewBook(fields[0], fields[1], fields[2], year, fields[4])); err != nil {
		c.printf("Error adding book: %v\n", err)
		return
	}
	c.printf("Librarian %s added '%s'.\n", u.Name, fields[0])
}

func (c *console) handleRemoveBook(u library.User) {
	title, ok := c.prompt("Enter the book title to remove: ")
	if !ok {
		return
	}
	if err := c.mgr.RemoveBook(title); err != nil {
		c.printf("Error: %v\n", err)
		return
	}
	c.printf("Librarian %s removed '%s'.\n", u.Name, title)
}

func (c *console) handleAddAccount(u library.User) {
	name, ok := c.prompt("Enter new user name: ")
	if !ok {
		return
	}
	idStr, ok := c.prompt("Enter new user ID: ")
	if !ok {
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.printf("Invalid ID: %s\n", idStr)
		return
	}
	roleStr, ok := c.prompt("Enter user type (student, faculty, librarian): ")
	if !ok {
		return
	}
	role, err := library.ParseRole(roleStr)
	if err != nil {
		c.println("Invalid user type. Account creation failed.")
		return
	}

	if err := c.mgr.AddAccount(library.User{Name: name, ID: id, Role: role}); err != nil {
		c.printf("Error: %v\n", err)
		return
	}
	c.printf("Librarian %s added account for %s.\n", u.Name, name)
}

func (c *console) handleRemoveAccount(u library.User) {
	name, ok := c.prompt("Enter the user name to remove: ")
	if !ok {
		return
	}
	if err := c.mgr.RemoveAccount(name); err != nil {
		c.printf("Error: %v\n", err)
		return
	}
	c.printf("Librarian %s removed account for %s.\n", u.Name, name)
}

func (c *console) handleListBooks() {
	books := c.mgr.GetAllBooks()
	if len(books) == 0 {
		c.println("No books in library.")
		return
	}
	c.println("Library Books:")
	for _, b := range books {
		c.println(formatBook(b))
	}
}

func (c *console) handleListAccounts() {
	accounts := c.mgr.GetAllAccounts()
	if len(accounts) == 0 {
		c.println("No accounts registered.")
		return
	}

	c.printf("%-25s %-6s %-10s %-40s %s\n", "Name", "ID", "Role", "Borrowed Books", "Fine")
	c.println(strings.Repeat("-", 90))
	for _, acc := range accounts {
		u := acc.User()
		fine := "-"
		if u.Role == library.RoleStudent {
			fine = library.FormatAmount(acc.Fine())
		}
		c.printf("%-25s %-6d %-10s %-40s %s\n",
			display.Truncate(u.Name, 25),
			u.ID,
			u.Role,
			display.Truncate(strings.Join(acc.BorrowedTitles(), ", "), 40),
			fine)
	}
}

func formatBook(b library.Book) string {
	s := fmt.Sprintf("Title: %s, Author: %s, Publisher: %s, Year: %d, ISBN: %s, Status: %s",
		b.Title, b.Author, b.Publisher, b.Year, b.ISBN, b.Status)
	if b.Status == library.StatusReserved {
		s += ", Reserved By: " + b.ReservedBy
	}
	return s
}
