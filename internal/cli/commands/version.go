package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/format"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/adapters/sqlite"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the sqliteweb version together with the embedded SQLite
engine and the Go runtime it was built with.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(out, version)
				return nil
			}
			_, _ = fmt.Fprintf(out, "sqliteweb v%s\n", version)
			_, _ = fmt.Fprintf(out, "SQLite %s (modernc.org/sqlite)\n", engineVersion(cmd.Context()))
			_, _ = fmt.Fprintf(out, "%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

// engineVersion asks a throwaway in-memory database for its library version.
func engineVersion(ctx context.Context) string {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := sqlite.Open(ctx, sqlite.Config{})
	if err != nil {
		return "unknown"
	}
	defer func() { _ = db.Close() }()

	rs, err := db.Query(ctx, "select sqlite_version() as version")
	if err != nil || len(rs.Rows) == 0 {
		return "unknown"
	}
	return format.Cell(rs.Rows[0]["version"])
}
