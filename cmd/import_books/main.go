package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"library-console/internal/config"
	"library-console/internal/display"
	"library-console/internal/logging"
	"library-console/library"
)

// Imports books from a CSV file with the columns title,author,publisher,year,isbn
// into the catalog file. A header row starting with "title" is skipped.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	fresh := flag.Bool("fresh", false, "remove the existing catalog file before importing")
	flag.StringVar(&cfg.Data.Dir, "data-dir", cfg.Data.Dir, "directory holding the books and accounts files")
	flag.Parse()

	seedPath := "seed_books.csv"
	if flag.NArg() > 0 {
		seedPath = flag.Arg(0)
	}

	if *fresh {
		fmt.Println("Cleaning up existing catalog file...")
		if err := os.Remove(cfg.Data.BooksPath()); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", cfg.Data.BooksPath(), err)
		}
	}

	logger := logging.New(cfg.Logging, os.Stderr)
	manager, err := library.NewLibraryManager(cfg.Data.BooksPath(), cfg.Data.AccountsPath(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening library: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading seed file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Printf("Importing books from %s...\n", seedPath)
	successCount, errorCount := importBooks(f, os.Stdout, manager)

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nCatalog:")
		fmt.Printf("%-50s %-30s %-6s\n", "Title", "Author", "Year")
		fmt.Println(strings.Repeat("-", 88))
		for _, book := range manager.GetAllBooks() {
			fmt.Printf("%-50s %-30s %-6d\n", display.Truncate(book.Title, 50), display.Truncate(book.Author, 30), book.Year)
		}
	}
}

// importBooks adds every record of r to the catalog and reports each one on
// out. Line numbers refer to the seed file, so quoted multi-line fields count.
func importBooks(r io.Reader, out io.Writer, manager *library.LibraryManager) (successCount, errorCount int) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = 5
	rd.TrimLeadingSpace = true

	for first := true; ; first = false {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return successCount, errorCount
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				fmt.Fprintf(out, "Line %d: ERROR - %v\n", perr.StartLine, perr.Err)
			} else {
				fmt.Fprintf(out, "ERROR - %v\n", err)
			}
			errorCount++
			continue
		}
		if first && strings.EqualFold(rec[0], "title") {
			continue
		}
		line, _ := rd.FieldPos(0)

		year, err := strconv.Atoi(rec[3])
		if err != nil {
			fmt.Fprintf(out, "Line %d: ERROR - invalid year %q\n", line, rec[3])
			errorCount++
			continue
		}

		fmt.Fprintf(out, "Importing: %s by %s... ", rec[0], rec[1])
		if err := manager.AddBook(library.NewBook(rec[0], rec[1], rec[2], year, rec[4])); err != nil {
			fmt.Fprintf(out, "ERROR - line %d: %v\n", line, err)
			errorCount++
			continue
		}
		fmt.Fprintln(out, "SUCCESS")
		successCount++
	}
}
