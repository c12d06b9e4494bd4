package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "barlabel"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "BARLABEL"
)

// Loader handles loading configuration from files, environment variables and defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on v; a nil v gets a fresh viper instance.
func NewLoader(v *viper.Viper) *Loader {
	if v == nil {
		v = viper.New()
	}
	return &Loader{v: v}
}

// Load searches the standard paths for barlabel.yaml. A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithFile("")
}

// LoadWithFile loads configuration from configFile, or from the search paths when empty.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string { return l.v.ConfigFileUsed() }

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper { return l.v }

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if configDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		l.v.AddConfigPath(filepath.Join(configDir, "barlabel"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "barlabel"))
	}
	l.v.AddConfigPath("/etc/barlabel")
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("log_format", d.LogFormat)
	l.v.SetDefault("font_dir", d.FontDir)

	l.v.SetDefault("render.width", d.Render.Width)
	l.v.SetDefault("render.height", d.Render.Height)
	l.v.SetDefault("render.dpi", d.Render.DPI)
	l.v.SetDefault("render.font", d.Render.Font)
	l.v.SetDefault("render.font_style", d.Render.FontStyle)
	l.v.SetDefault("render.font_size", d.Render.FontSize)
	l.v.SetDefault("render.fore_color", d.Render.ForeColor)
	l.v.SetDefault("render.back_color", d.Render.BackColor)
	l.v.SetDefault("render.label_position", d.Render.LabelPosition)
	l.v.SetDefault("render.alignment", d.Render.Alignment)
	l.v.SetDefault("render.include_label", d.Render.IncludeLabel)
	l.v.SetDefault("render.rotate", d.Render.Rotate)
	l.v.SetDefault("render.flip_h", d.Render.FlipH)
	l.v.SetDefault("render.flip_v", d.Render.FlipV)
	l.v.SetDefault("render.format", d.Render.Format)

	l.v.SetDefault("server.host", d.Server.Host)
	l.v.SetDefault("server.port", d.Server.Port)
	l.v.SetDefault("server.timeout_sec", d.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	l.v.SetDefault("server.max_width", d.Server.MaxWidth)
	l.v.SetDefault("server.max_height", d.Server.MaxHeight)

	l.v.SetDefault("batch.workers", d.Batch.Workers)
	l.v.SetDefault("batch.continue_on_error", d.Batch.ContinueOnError)
	l.v.SetDefault("batch.output_dir", d.Batch.OutputDir)
}
