// Package config provides configuration management for the sqliteweb CLI.
package config

import "time"

// Default configuration values.
const (
	DefaultPort         = 8080
	DefaultLogLevel     = "info"
	DefaultOutput       = "table"
	DefaultMaxRows      = 1000
	DefaultQueryTimeout = 30 * time.Second

	DefaultDatabaseFilename = "file.sqli"
	DefaultSQLFilename      = "file.sql"
	DefaultCSVFilename      = "query.csv"
)

// Output formats understood by the query command.
const (
	OutputTable    = "table"
	OutputJSON     = "json"
	OutputCSV      = "csv"
	OutputMarkdown = "md"
)

// Config holds all CLI configuration options.
type Config struct {
	Database string       `koanf:"database" yaml:"database"`
	LogLevel string       `koanf:"log_level" yaml:"log_level"`
	Verbose  bool         `koanf:"verbose" yaml:"verbose"`
	Output   string       `koanf:"output" yaml:"output"`
	NoColor  bool         `koanf:"no_color" yaml:"no_color"`
	UI       UIConfig     `koanf:"ui" yaml:"ui"`
	Export   ExportConfig `koanf:"export" yaml:"export"`
}

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port          int           `koanf:"port" yaml:"port"`
	AutoOpen      bool          `koanf:"auto_open" yaml:"auto_open"`
	Watch         bool          `koanf:"watch" yaml:"watch"`
	Dev           bool          `koanf:"dev" yaml:"dev"`
	SessionSecret string        `koanf:"session_secret" yaml:"session_secret,omitempty"`
	MaxRows       int           `koanf:"max_rows" yaml:"max_rows"`
	QueryTimeout  time.Duration `koanf:"query_timeout" yaml:"query_timeout"`
}

// ExportConfig holds the file names offered for downloads.
type ExportConfig struct {
	DatabaseFilename string `koanf:"database_filename" yaml:"database_filename"`
	SQLFilename      string `koanf:"sql_filename" yaml:"sql_filename"`
	CSVFilename      string `koanf:"csv_filename" yaml:"csv_filename"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() map[string]any {
	return map[string]any{
		"database":                 "",
		"log_level":                DefaultLogLevel,
		"verbose":                  false,
		"output":                   DefaultOutput,
		"no_color":                 false,
		"ui.port":                  DefaultPort,
		"ui.auto_open":             true,
		"ui.watch":                 false,
		"ui.dev":                   false,
		"ui.session_secret":        "",
		"ui.max_rows":              DefaultMaxRows,
		"ui.query_timeout":         DefaultQueryTimeout.String(),
		"export.database_filename": DefaultDatabaseFilename,
		"export.sql_filename":      DefaultSQLFilename,
		"export.csv_filename":      DefaultCSVFilename,
	}
}
