// Package main provides tests for the sqliteweb CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli"
	clitest "github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli/testutil"
)

// run executes the root command and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := run(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "sqliteweb") {
		t.Errorf("version output should contain 'sqliteweb', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"serve", "query", "config", "version", "completion"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestQueryCommand(t *testing.T) {
	db := clitest.SetupTestDatabase(t)

	output, err := run(t, "query", "--database", db, "--output", "csv", "SELECT title FROM books ORDER BY id")
	if err != nil {
		t.Fatalf("query command error = %v", err)
	}
	if output != "title\nDune\nEmma\n" {
		t.Errorf("unexpected query output: %q", output)
	}
}

func TestQueryCommandEnv(t *testing.T) {
	db := clitest.SetupTestDatabase(t)
	t.Setenv("SQLITEWEB_DATABASE", db)
	t.Setenv("SQLITEWEB_OUTPUT", "json")

	output, err := run(t, "query", "SELECT id FROM books WHERE title = 'Emma'")
	if err != nil {
		t.Fatalf("query command error = %v", err)
	}
	if !strings.Contains(output, `"id": 2`) {
		t.Errorf("expected JSON output, got: %s", output)
	}
}

func TestQueryCommandConfigFile(t *testing.T) {
	db := clitest.SetupTestDatabase(t)
	cfgPath := filepath.Join(t.TempDir(), "custom.yaml")
	content := "database: " + db + "\noutput: md\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	output, err := run(t, "--config", cfgPath, "query", "tables")
	if err != nil {
		t.Fatalf("query tables error = %v", err)
	}
	if !strings.Contains(output, "| books | table |") {
		t.Errorf("expected markdown table list, got: %s", output)
	}
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "query", "--log-level", "loud", "SELECT 1")
	if err == nil || !strings.Contains(err.Error(), "log_level") {
		t.Errorf("expected log_level validation error, got: %v", err)
	}
}

func TestConfigCommand(t *testing.T) {
	output, err := run(t, "config", "--no-color", "-v")
	if err != nil {
		t.Fatalf("config command error = %v", err)
	}
	for _, want := range []string{"log_level: debug", "port: 8080", "query_timeout: 30s"} {
		if !strings.Contains(output, want) {
			t.Errorf("config output should contain %q, got: %s", want, output)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	output, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion command error = %v", err)
	}
	if !strings.Contains(output, "sqliteweb") {
		t.Errorf("completion output should mention sqliteweb")
	}

	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
