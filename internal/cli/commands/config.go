package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, SQLITEWEB_*
environment variables and flags have been applied.`,
		Example: `  sqliteweb config
  SQLITEWEB_UI_PORT=9000 sqliteweb config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			cfg := *cmdCtx.Cfg
			if cfg.UI.SessionSecret != "" {
				cfg.UI.SessionSecret = "********"
			}
			out, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			cmdCtx.Renderer.Printf("%s", out)
			return nil
		},
	}
}
