package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli/config"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui"
)

// NewServeCommand creates the serve command. Its flags are read through the
// configuration layers, so they only need to be declared here.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Start the web interface",
		Long: `Start a local web server for browsing and editing a SQLite database.

The interface provides:
- Table and view explorer
- Paged results with sorting and inline cell editing
- Row insert and delete forms
- SQL editor with CSV export
- Database upload and download

Without a file the server starts on an empty in-memory database.
Changes are kept in memory; use the download button to save them.`,
		Example: `  # Browse a database file
  sqliteweb serve library.db

  # Start on a custom port without opening a browser
  sqliteweb serve library.db --port 3000 --no-browser

  # Reload the page when the file changes on disk
  sqliteweb serve library.db --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServe,
	}

	cmd.Flags().Int("port", config.DefaultPort, "Port to serve on")
	cmd.Flags().Bool("no-browser", false, "Don't auto-open browser")
	cmd.Flags().Bool("watch", false, "Reload the database when the file changes on disk")
	cmd.Flags().Bool("dev", false, "Enable hot reload endpoints")
	cmd.Flags().Int("max-rows", config.DefaultMaxRows, "Maximum rows rendered for a query (0 for no limit)")
	cmd.Flags().Duration("timeout", config.DefaultQueryTimeout, "Timeout for editor queries (0 for no limit)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	ctx := cmd.Context()

	path := databasePath(cfg, args)
	s, cleanup, err := cmdCtx.OpenSession(ctx, path)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.UI.Watch && path == "" {
		cmdCtx.Logger.Warn("--watch needs a database file, ignoring")
	}

	server := ui.NewServer(ui.Config{
		Session:       s,
		Port:          cfg.UI.Port,
		Watch:         cfg.UI.Watch,
		Dev:           cfg.UI.Dev,
		SessionSecret: cfg.UI.SessionSecret,
		Logger:        cmdCtx.Logger,
		DatabasePath:  path,
		SQLFilename:   cfg.Export.SQLFilename,
		CSVFilename:   cfg.Export.CSVFilename,
	})

	r := cmdCtx.Renderer
	if path != "" {
		r.Header(fmt.Sprintf("Serving %s", s.Filename()))
	} else {
		r.Header("Serving an empty in-memory database")
	}
	r.Printf("Listening on %s\n", server.URL())
	r.Muted("Press Ctrl+C to stop")

	if cfg.UI.AutoOpen {
		go openBrowser(server.URL())
	}

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
