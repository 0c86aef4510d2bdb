// Package config loads blendkey settings.
//
// Values are resolved with the following precedence (highest first):
//  1. CLI flags
//  2. Environment variables (BLENDKEY_ prefix, dashes become underscores)
//  3. Config file (.blendkey.yaml in the working directory or
//     ~/.config/blendkey)
//
// The config file may also declare weight presets; see [Presets].
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
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

// Supported clip file formats.
const (
	ClipFormatYAML = "yaml"
	ClipFormatJSON = "json"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BLENDKEY"

var (
	logLevels   = []string{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}
	logFormats  = []string{LogFormatText, LogFormatJSON}
	clipFormats = []string{ClipFormatYAML, ClipFormatJSON}
)

// Config holds the resolved blendkey settings.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat is text or json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet raises the effective log level to error.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Target is the default path of the mesh to edit, relative to the rig
	// root. Empty means the root itself.
	Target string `mapstructure:"target" json:"target"`

	// ClipFormat is used when saving clips whose file extension does not
	// decide the format. Valid values: yaml, json.
	ClipFormat string `mapstructure:"clip-format" json:"clipFormat"`

	// Presets are the weight presets declared in the config file.
	Presets Presets `mapstructure:"-" json:"presets,omitempty"`

	// ConfigFile is the config file Load read, if any.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		LogLevel:   LogLevelInfo,
		LogFormat:  LogFormatText,
		ClipFormat: ClipFormatYAML,
		Presets:    Presets{},
	}
}

// normalize trims and lower-cases enumerated values and strips leading and
// trailing slashes from the target path.
func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.ClipFormat = strings.ToLower(strings.TrimSpace(c.ClipFormat))
	c.Target = strings.Trim(strings.TrimSpace(c.Target), "/")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	errs := []error{
		oneOf("log level", c.LogLevel, logLevels),
		oneOf("log format", c.LogFormat, logFormats),
		oneOf("clip format", c.ClipFormat, clipFormats),
		c.Presets.Validate(),
	}

	return utilerrors.NewAggregate(errs)
}

func oneOf(what, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}

	return fmt.Errorf("invalid %s %q: must be one of %s", what, value, strings.Join(allowed, ", "))
}

// EffectiveLogLevel returns the configured log level, or error when Quiet
// is set.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Load resolves the configuration for cmd. configFile names an explicit
// config file; when empty the default locations are searched and a missing
// file is not an error. Each call uses its own viper instance.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v, Default())
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.normalize()

	presets, err := LoadPresets(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg.Presets = presets

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("no-color", d.NoColor)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("target", d.Target)
	v.SetDefault("clip-format", d.ClipFormat)
}

func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(".blendkey")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "blendkey"))
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

// bindFlags binds cmd's local flags and the persistent flags of cmd and all
// of its parents.
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

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the context's Config, or Default() when none is set.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
