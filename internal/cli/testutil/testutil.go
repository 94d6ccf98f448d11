// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli/output"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/testutil"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/testutil/dbtest"
)

// Library is a small database used by CLI tests.
const Library = `
	CREATE TABLE books (id INTEGER PRIMARY KEY, title TEXT NOT NULL, year INTEGER DEFAULT 2000);
	CREATE TABLE tags (label TEXT, cover BLOB);
	CREATE INDEX idx_tags_label ON tags (label);
	CREATE VIEW v_titles AS SELECT title FROM books;
	INSERT INTO books (id, title, year) VALUES (1, 'Dune', 1965), (2, 'Emma', NULL);
	INSERT INTO tags (label, cover) VALUES ('classic', X'CAFE');
`

// SetupTestDatabase writes a database file built from statements into a
// temporary directory and returns its path. Without statements the Library
// fixture is used.
func SetupTestDatabase(t *testing.T, statements ...string) string {
	t.Helper()
	if len(statements) == 0 {
		statements = []string{Library}
	}

	data, err := dbtest.Open(t, statements...).Export(context.Background())
	require.NoError(t, err)
	return testutil.WriteFile(t, t.TempDir(), "library.db", data)
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer without colors.
// Output is captured in buffers for inspection.
func NewTestRenderer() *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRenderer(out, errOut, true),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Result is the captured outcome of a command run.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Execute runs cmd with args and stdin, capturing both output streams.
func Execute(ctx context.Context, cmd *cobra.Command, stdin string, args ...string) Result {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return Result{Stdout: out.String(), Stderr: errOut.String(), Err: err}
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
