// Package config provides configuration management for graphyaml.
//
// Configuration is loaded from four sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GRAPHYAML_ prefix)
//  3. Config file (.graphyaml.yaml)
//  4. Built-in defaults
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Indentation bounds for YAML output.
const (
	DefaultIndent = 2
	MinIndent     = 2
	MaxIndent     = 8
)

// DefaultFormat is the output format used when none is configured.
const DefaultFormat = "yaml"

// Config represents the global configuration for graphyaml.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// NoColor disables colored output.
	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Indent is the number of spaces per YAML nesting level.
	Indent int `mapstructure:"indent" json:"indent"`

	// Format is the output format name (yaml, json, tokens).
	Format string `mapstructure:"format" json:"format"`

	// Namespace seeds object identities for manifests that do not name
	// their own namespace. Empty uses the built-in namespace.
	Namespace string `mapstructure:"namespace" json:"namespace,omitempty"`

	// ConfigFile is the resolved path to the config file used.
	// Set by Load, never read from the config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LogLevel:  LogLevelInfo,
		LogFormat: LogFormatText,
		Indent:    DefaultIndent,
		Format:    DefaultFormat,
	}
}

// Validate checks that all config values are valid. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	var errs []error

	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel))
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat))
	}

	if c.Indent < MinIndent || c.Indent > MaxIndent {
		errs = append(errs, fmt.Errorf("invalid indent %d: must be between %d and %d", c.Indent, MinIndent, MaxIndent))
	}

	if c.Format == "" {
		errs = append(errs, errors.New("invalid format: must not be empty"))
	}

	if c.Namespace != "" {
		if _, err := uuid.Parse(c.Namespace); err != nil {
			errs = append(errs, fmt.Errorf("invalid namespace %q: %w", c.Namespace, err))
		}
	}

	return errors.Join(errs...)
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", LogLevelInfo)
	v.SetDefault("log-format", LogFormatText)
	v.SetDefault("no-color", false)
	v.SetDefault("quiet", false)
	v.SetDefault("indent", DefaultIndent)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("namespace", "")
}

func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("GRAPHYAML")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile reads configFile, or looks for .graphyaml.yaml in the
// working directory and in ~/.config/graphyaml when configFile is empty.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(".graphyaml")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "graphyaml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags binds the command's own flags and the persistent flags of every
// command from cmd up to the root.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
