package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Data    DataConfig
	Logging LoggingConfig
}

// DataConfig locates the flat files holding the catalog and the accounts.
type DataConfig struct {
	Dir          string
	BooksFile    string
	AccountsFile string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string
	Format string // text|json
}

const (
	defaultDataDir       = "."
	defaultBooksFile     = "books.txt"
	defaultAccountsFile  = "accounts.txt"
	defaultLoggingLevel  = "warn"
	defaultLoggingFormat = "text"
)

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Data: DataConfig{
			Dir:          fallback(os.Getenv("LIBRARY_DATA_DIR"), defaultDataDir),
			BooksFile:    fallback(os.Getenv("LIBRARY_BOOKS_FILE"), defaultBooksFile),
			AccountsFile: fallback(os.Getenv("LIBRARY_ACCOUNTS_FILE"), defaultAccountsFile),
		},
		Logging: LoggingConfig{
			Level:  fallback(os.Getenv("LOG_LEVEL"), defaultLoggingLevel),
			Format: fallback(os.Getenv("LOG_FORMAT"), defaultLoggingFormat),
		},
	}
}

// BooksPath is the catalog file, resolved against Dir unless absolute.
func (c DataConfig) BooksPath() string { return c.resolve(c.BooksFile) }

// AccountsPath is the accounts file, resolved against Dir unless absolute.
func (c DataConfig) AccountsPath() string { return c.resolve(c.AccountsFile) }

func (c DataConfig) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir, name)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
