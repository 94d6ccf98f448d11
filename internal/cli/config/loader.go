package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read into the configuration.
const EnvPrefix = "SQLITEWEB_"

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// configFileNames are looked up in the working directory when --config is not given.
var configFileNames = []string{"sqliteweb.yaml", "sqliteweb.yml"}

// flagKeys maps CLI flag names to configuration keys. Flags not listed here
// are command options, not configuration.
var flagKeys = map[string]string{
	"database":  "database",
	"log-level": "log_level",
	"verbose":   "verbose",
	"output":    "output",
	"no-color":  "no_color",
	"port":      "ui.port",
	"watch":     "ui.watch",
	"dev":       "ui.dev",
	"max-rows":  "ui.max_rows",
	"timeout":   "ui.query_timeout",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > sqliteweb.yaml > sqliteweb.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Result is a loaded configuration and where it came from.
type Result struct {
	Config   *Config
	FileUsed string
}

// Load builds the configuration from defaults, the config file, environment
// variables and explicitly set flags. Later sources win.
func Load(cfgFile string, flags *pflag.FlagSet) (*Result, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	fileUsed := findConfigFile(cfgFile)
	if fileUsed != "" {
		if err := k.Load(file.Provider(fileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", fileUsed, err)
		}
	}

	// 3. Environment variables: SQLITEWEB_UI_PORT -> ui.port
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			if f.Name == "no-browser" {
				return "ui.auto_open", !posflagBool(flags, f)
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	cfg.Output = strings.ToLower(cfg.Output)
	if cfg.Output == "markdown" {
		cfg.Output = OutputMarkdown
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Result{Config: &cfg, FileUsed: fileUsed}, nil
}

// envKey turns SQLITEWEB_UI_QUERY_TIMEOUT into ui.query_timeout. Only the
// first underscore after a section name becomes a separator.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"ui", "export"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

func posflagBool(flags *pflag.FlagSet, f *pflag.Flag) bool {
	v, err := flags.GetBool(f.Name)
	return err == nil && v
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored by WithConfig, or the defaults when
// none was loaded (help and completion skip loading).
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		LogLevel: DefaultLogLevel,
		Output:   DefaultOutput,
		UI: UIConfig{
			Port:         DefaultPort,
			AutoOpen:     true,
			MaxRows:      DefaultMaxRows,
			QueryTimeout: DefaultQueryTimeout,
		},
		Export: ExportConfig{
			DatabaseFilename: DefaultDatabaseFilename,
			SQLFilename:      DefaultSQLFilename,
			CSVFilename:      DefaultCSVFilename,
		},
	}
}

// NewLogger builds the text logger for a configured level.
func NewLogger(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}
