package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
)

const (
	replPrompt     = "sqlite> "
	replContPrompt = "   ...> "
	historyFile    = ".sqliteweb_history"
)

// repl carries what dot-commands need between lines.
type repl struct {
	session *session.Session
	path    string
	format  string
	out     io.Writer
	errOut  io.Writer
}

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext, s *session.Session, path, format string) error {
	ctx := cmd.Context()
	r := &repl{
		session: s,
		path:    path,
		format:  format,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}

	// Configure readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyPath(),
		AutoComplete:    newTableCompleter(ctx, s),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	cmdCtx.Renderer.Header(fmt.Sprintf("sqliteweb query REPL (database: %s)", s.Filename()))
	cmdCtx.Renderer.Muted("Type .help for commands, .quit to exit")
	cmdCtx.Renderer.Println()

	// REPL loop
	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands
		if multiLineBuffer.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := r.handleDotCommand(ctx, line); quit {
				break
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt(replContPrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		query := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()
		r.execute(ctx, query)
		_, _ = fmt.Fprintln(r.out)
	}

	return nil
}

// execute runs one statement and reports errors without leaving the REPL.
func (r *repl) execute(ctx context.Context, query string) {
	if err := executeAndRender(ctx, r.out, r.session, query, r.format); err != nil {
		_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
	}
}

// handleDotCommand runs a dot-command and reports whether the REPL should exit.
func (r *repl) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	var err error
	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.out)

	case ".tables":
		err = listTables(ctx, r.out, r.session, r.format, false)

	case ".views":
		err = listTables(ctx, r.out, r.session, r.format, true)

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(r.errOut, "Usage: .schema <table>")
			return false
		}
		err = showSchema(ctx, r.out, r.session, parts[1], r.format)

	case ".mode":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(r.out, "Output format: %s\n", r.format)
			return false
		}
		r.format = strings.ToLower(parts[1])

	case ".save":
		if err = writeDatabase(ctx, r.session, r.path); err == nil {
			_, _ = fmt.Fprintf(r.out, "Saved %s\n", r.path)
		}

	case ".clear":
		_, _ = fmt.Fprint(r.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(r.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}

	if err != nil {
		_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List all tables and views
  .views          List views only
  .schema <name>  Show columns and DDL for a table or view
  .mode [format]  Show or set the output format (table, json, csv, md)
  .save           Write the database back to its file
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// historyPath keeps REPL history in the home directory, or nowhere if it is unknown.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}

// newTableCompleter creates a readline completer for table names.
func newTableCompleter(ctx context.Context, s *session.Session) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	// Structure names are optional for autocomplete
	tables, views, err := s.Structures(ctx)
	if err == nil {
		for _, ref := range append(tables, views...) {
			items = append(items, readline.PcItem(ref.Name))
		}
	}

	// Add dot-commands
	schemaItems := make([]readline.PrefixCompleterInterface, 0, len(items))
	schemaItems = append(schemaItems, items...)
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".views"),
		readline.PcItem(".schema", schemaItems...),
		readline.PcItem(".mode",
			readline.PcItem("table"),
			readline.PcItem("json"),
			readline.PcItem("csv"),
			readline.PcItem("md"),
		),
		readline.PcItem(".save"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
