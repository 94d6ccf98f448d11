// Package cli provides the command-line interface for sqliteweb.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli/commands"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli/config"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli/output"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqliteweb",
		Short: "sqliteweb - Web interface for SQLite databases",
		Long: `sqliteweb loads a SQLite database into memory and serves a browser
interface for exploring tables and views, editing rows, and running SQL.

The edited database can be downloaded again from the interface, or written
back with 'sqliteweb query --write'.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Load configuration from file, environment and CLI flags
			res, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			cfg := res.Config

			logger := config.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
			ctx := config.WithLogger(cmd.Context(), logger)
			ctx = config.WithConfig(ctx, cfg)
			cmd.SetContext(ctx)

			if res.FileUsed != "" {
				logger.Debug("using config file", "path", res.FileUsed)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Built with Go and SQLite
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sqliteweb.yaml)")
	rootCmd.PersistentFlags().String("database", "", "Path to the SQLite database file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output (same as --log-level debug)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringP("output", "o", config.DefaultOutput, "Output format (table|json|csv|md)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputTable, config.OutputJSON, config.OutputCSV, config.OutputMarkdown}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output.NewRenderer(os.Stdout, os.Stderr, false).Error(err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sqliteweb.

To load completions:

Bash:
  $ source <(sqliteweb completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ sqliteweb completion bash > /etc/bash_completion.d/sqliteweb
  # macOS:
  $ sqliteweb completion bash > $(brew --prefix)/etc/bash_completion.d/sqliteweb

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ sqliteweb completion zsh > "${fpath[1]}/_sqliteweb"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ sqliteweb completion fish | source

  # To load completions for each session, execute once:
  $ sqliteweb completion fish > ~/.config/fish/completions/sqliteweb.fish

PowerShell:
  PS> sqliteweb completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> sqliteweb completion powershell > sqliteweb.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell: %s", args[0])
		},
	}
	return cmd
}
