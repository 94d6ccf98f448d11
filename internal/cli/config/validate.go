package config

import (
	"fmt"
	"log/slog"
	"strings"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a configured level name to a slog level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	if l, ok := logLevels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.LogLevel)
	}
	switch c.Output {
	case OutputTable, OutputJSON, OutputCSV, OutputMarkdown:
	default:
		return fmt.Errorf("invalid output %q (want table, json, csv or md)", c.Output)
	}
	if c.UI.Port < 1 || c.UI.Port > 65535 {
		return fmt.Errorf("invalid ui.port %d", c.UI.Port)
	}
	if c.UI.QueryTimeout < 0 {
		return fmt.Errorf("ui.query_timeout must not be negative")
	}
	if c.Export.DatabaseFilename == "" || c.Export.SQLFilename == "" || c.Export.CSVFilename == "" {
		return fmt.Errorf("export file names must not be empty")
	}
	return nil
}
