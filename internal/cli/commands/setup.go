package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli/config"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli/output"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the values the root command
// stored on cmd's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.NoColor),
	}
}

// OpenSession creates a session over the database at path, or over an empty
// in-memory database when path is empty.
// Returns the session and a cleanup function that must be called (typically via defer).
func (c *CommandContext) OpenSession(ctx context.Context, path string) (*session.Session, func(), error) {
	s := session.New(session.Config{
		Logger:          c.Logger,
		MaxRows:         c.Cfg.UI.MaxRows,
		QueryTimeout:    c.Cfg.UI.QueryTimeout,
		DefaultFilename: c.Cfg.Export.DatabaseFilename,
	})

	var err error
	if path != "" {
		err = s.LoadFile(ctx, path)
	} else {
		err = s.Open(ctx)
	}
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := s.Close(); err != nil {
			c.Logger.Warn("failed to close database", "error", err)
		}
	}
	return s, cleanup, nil
}

// databasePath picks the positional file argument over the configured database.
func databasePath(cfg *config.Config, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.Database
}
