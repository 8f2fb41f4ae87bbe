package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-console/internal/config"
	"library-console/internal/logging"
	"library-console/library"
)

func main() {
	loadLocalEnv()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("reading .env: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:          "library",
		Short:        "Library management console for students, faculty and librarians",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.New(cfg.Logging, cmd.ErrOrStderr())
			mgr, err := openManager(cfg, logger)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			c := newConsole(in, cmd.OutOrStdout(), mgr, logger.With("session", uuid.NewString()))
			c.interactive = isTerminal(in)
			c.run()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Data.Dir, "data-dir", cfg.Data.Dir, "directory holding the books and accounts files")
	flags.StringVar(&cfg.Data.BooksFile, "books-file", cfg.Data.BooksFile, "catalog file name")
	flags.StringVar(&cfg.Data.AccountsFile, "accounts-file", cfg.Data.AccountsFile, "accounts file name")
	flags.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "debug, info, warn or error")
	flags.StringVar(&cfg.Logging.Format, "log-format", cfg.Logging.Format, "text or json")

	root.AddCommand(newExportCmd(&cfg), newRestoreCmd(&cfg))
	return root
}

func newExportCmd(cfg *config.Config) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the library state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.New(cfg.Logging, cmd.ErrOrStderr())
			mgr, err := openManager(*cfg, logger)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return library.WriteSnapshot(w, mgr.Snapshot())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func newRestoreCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot.json>",
		Short: "Replace the library state with a JSON snapshot written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open snapshot: %w", err)
			}
			defer f.Close()

			data, err := library.ReadSnapshot(f)
			if err != nil {
				return err
			}

			logger := logging.New(cfg.Logging, cmd.ErrOrStderr())
			mgr, err := openManager(*cfg, logger)
			if err != nil {
				return err
			}
			if err := mgr.Restore(data); err != nil {
				return fmt.Errorf("restore: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d books and %d accounts.\n", len(data.Books), len(data.Accounts))
			return nil
		},
	}
}

func openManager(cfg config.Config, logger *slog.Logger) (*library.LibraryManager, error) {
	mgr, err := library.NewLibraryManager(cfg.Data.BooksPath(), cfg.Data.AccountsPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	return mgr, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
