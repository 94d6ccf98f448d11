package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli/config"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
)

// errNoDatabaseFile is returned when changes should be saved but no file was given.
var errNoDatabaseFile = errors.New("no database file to write to (use --database)")

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
	Script bool
	Write  bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against a database",
		Long: `Run SQL against the database given with --database.

The database is loaded into memory; changes are discarded unless --write is
given. Without --database the statements run against an empty in-memory
database.

When invoked without arguments and stdin is a terminal, enters interactive
REPL mode.`,
		Example: `  # Execute SQL directly
  sqliteweb query --database library.db "SELECT * FROM books"

  # List available tables
  sqliteweb query --database library.db tables

  # Show columns and DDL for a table
  sqliteweb query --database library.db schema books

  # Run a script and save the result back to the file
  sqliteweb query --database library.db --input migrate.sql --script --write

  # Output as JSON
  sqliteweb query --database library.db "SELECT * FROM books" --format json

  # Interactive mode
  sqliteweb query --database library.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	// Flags
	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", config.OutputTable, "Output format: table, json, csv, md (default from --output)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVar(&opts.Script, "script", false, "Run the input as a script of statements that return no rows")
	cmd.Flags().BoolVar(&opts.Write, "write", false, "Write the database back to its file afterwards")
	cmd.Flags().Duration("timeout", config.DefaultQueryTimeout, "Timeout for each statement (0 for no limit)")

	// Subcommands
	cmd.AddCommand(newQueryTablesCommand(opts))
	cmd.AddCommand(newQueryViewsCommand(opts))
	cmd.AddCommand(newQuerySchemaCommand(opts))

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx := NewCommandContext(cmd)
	format := resolveFormat(cmd, cmdCtx.Cfg, opts)
	path := cmdCtx.Cfg.Database
	if opts.Write && path == "" {
		return errNoDatabaseFile
	}

	// Determine SQL source
	var sqlQuery string
	repl := false

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(cmd.InOrStdin()):
		// Read from stdin (piped input)
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		repl = true
	}

	s, cleanup, err := cmdCtx.OpenSession(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer cleanup()

	if repl {
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, cmdCtx, s, path, format)
	}

	if opts.Script {
		n, err := s.RunScript(cmd.Context(), sqlQuery)
		if err != nil {
			return err
		}
		cmdCtx.Renderer.Success(fmt.Sprintf("Script executed, %d rows affected", n))
	} else if err := executeAndRender(cmd.Context(), cmd.OutOrStdout(), s, sqlQuery, format); err != nil {
		return err
	}

	if opts.Write {
		if err := writeDatabase(cmd.Context(), s, path); err != nil {
			return err
		}
		cmdCtx.Renderer.Success("Saved " + path)
	}
	return nil
}

// resolveFormat prefers an explicit --format over the configured output.
func resolveFormat(cmd *cobra.Command, cfg *config.Config, opts *QueryOptions) string {
	if cmd.Flags().Changed("format") {
		f := strings.ToLower(opts.Format)
		if f == "markdown" {
			return config.OutputMarkdown
		}
		return f
	}
	return cfg.Output
}

func executeAndRender(ctx context.Context, w io.Writer, s *session.Session, sqlQuery, format string) error {
	rs, err := s.QueryResult(ctx, sqlQuery)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return renderResults(w, rs, format)
}

// writeDatabase exports the in-memory database over the file at path.
func writeDatabase(ctx context.Context, s *session.Session, path string) error {
	if path == "" {
		return errNoDatabaseFile
	}
	data, _, err := s.Export(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}
	return nil
}

// newQueryTablesCommand creates the tables subcommand.
func newQueryTablesCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List all tables and views in the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withQuerySession(cmd, opts, func(s *session.Session, format string) error {
				return listTables(cmd.Context(), cmd.OutOrStdout(), s, format, false)
			})
		},
	}
}

// newQueryViewsCommand creates the views subcommand.
func newQueryViewsCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List views only",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withQuerySession(cmd, opts, func(s *session.Session, format string) error {
				return listTables(cmd.Context(), cmd.OutOrStdout(), s, format, true)
			})
		},
	}
}

// newQuerySchemaCommand creates the schema subcommand.
func newQuerySchemaCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show columns and DDL for a table or view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQuerySession(cmd, opts, func(s *session.Session, format string) error {
				return showSchema(cmd.Context(), cmd.OutOrStdout(), s, args[0], format)
			})
		},
	}
}

func withQuerySession(cmd *cobra.Command, opts *QueryOptions, fn func(*session.Session, string) error) error {
	cmdCtx := NewCommandContext(cmd)
	s, cleanup, err := cmdCtx.OpenSession(cmd.Context(), cmdCtx.Cfg.Database)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(s, resolveFormat(cmd, cmdCtx.Cfg, opts))
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec
}
