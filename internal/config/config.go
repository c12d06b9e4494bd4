package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByLCY/barlabel/barcode"
	"github.com/ByLCY/barlabel/layout"
)

// Config is the full application configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`
	FontDir   string `mapstructure:"font_dir" yaml:"font_dir" json:"font_dir"`
	// Fonts maps names to font files; a font is referenced as builtin:<name>.
	// Relative paths resolve against FontDir.
	Fonts map[string]string `mapstructure:"fonts" yaml:"fonts" json:"fonts"`

	Render RenderConfig `mapstructure:"render" yaml:"render" json:"render"`
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
	Batch  BatchConfig  `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// RenderConfig holds the default barcode rendering options.
type RenderConfig struct {
	Width         int     `mapstructure:"width" yaml:"width" json:"width"`
	Height        int     `mapstructure:"height" yaml:"height" json:"height"`
	DPI           float64 `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
	Font          string  `mapstructure:"font" yaml:"font" json:"font"`
	FontStyle     string  `mapstructure:"font_style" yaml:"font_style" json:"font_style"`
	FontSize      float64 `mapstructure:"font_size" yaml:"font_size" json:"font_size"`
	ForeColor     string  `mapstructure:"fore_color" yaml:"fore_color" json:"fore_color"`
	BackColor     string  `mapstructure:"back_color" yaml:"back_color" json:"back_color"`
	LabelPosition string  `mapstructure:"label_position" yaml:"label_position" json:"label_position"`
	Alignment     string  `mapstructure:"alignment" yaml:"alignment" json:"alignment"`
	IncludeLabel  bool    `mapstructure:"include_label" yaml:"include_label" json:"include_label"`
	Rotate        int     `mapstructure:"rotate" yaml:"rotate" json:"rotate"`
	FlipH         bool    `mapstructure:"flip_h" yaml:"flip_h" json:"flip_h"`
	FlipV         bool    `mapstructure:"flip_v" yaml:"flip_v" json:"flip_v"`
	Format        string  `mapstructure:"format" yaml:"format" json:"format"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxWidth        int    `mapstructure:"max_width" yaml:"max_width" json:"max_width"`
	MaxHeight       int    `mapstructure:"max_height" yaml:"max_height" json:"max_height"`
}

// BatchConfig holds batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	opts := barcode.DefaultOptions()
	return Config{
		LogLevel:  "info",
		LogFormat: "json",
		Render: RenderConfig{
			Width:         opts.Width,
			Height:        opts.Height,
			DPI:           opts.DPI,
			FontSize:      opts.LabelFontSize,
			ForeColor:     opts.ForeColor.Hex(),
			BackColor:     opts.BackColor.Hex(),
			LabelPosition: opts.LabelPosition.String(),
			Alignment:     opts.Alignment.String(),
			IncludeLabel:  opts.IncludeLabel,
			Format:        opts.Format,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			MaxWidth:        4000,
			MaxHeight:       4000,
		},
		Batch: BatchConfig{
			Workers:   4,
			OutputDir: ".",
		},
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the configuration and joins every problem found.
func (c *Config) Validate() error {
	var errs []error
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level: invalid value %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log_format: invalid value %q", c.LogFormat))
	}
	if _, err := c.Render.Options(); err != nil {
		errs = append(errs, fmt.Errorf("render: %w", err))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: out of range: %d", c.Server.Port))
	}
	if c.Server.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("server.timeout_sec: must be positive"))
	}
	if c.Server.MaxWidth <= 0 || c.Server.MaxHeight <= 0 {
		errs = append(errs, fmt.Errorf("server.max_width/max_height: must be positive"))
	}
	for name, path := range c.Fonts {
		if name == "" || path == "" {
			errs = append(errs, fmt.Errorf("fonts: empty name or path (%q: %q)", name, path))
		}
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("batch.workers: must be at least 1"))
	}
	return errors.Join(errs...)
}

// Options converts the render section into generator options.
func (r RenderConfig) Options() (barcode.Options, error) {
	opts := barcode.Options{
		Width:         r.Width,
		Height:        r.Height,
		DPI:           r.DPI,
		IncludeLabel:  r.IncludeLabel,
		LabelFont:     layout.FontResource{Name: "Label", Src: r.Font, Style: r.FontStyle},
		LabelFontSize: r.FontSize,
		Rotate:        r.Rotate,
		FlipH:         r.FlipH,
		FlipV:         r.FlipV,
		Format:        strings.ToLower(r.Format),
	}
	var err error
	if opts.ForeColor, err = layout.ParseColor(r.ForeColor); err != nil {
		return opts, fmt.Errorf("fore_color: %w", err)
	}
	if opts.BackColor, err = layout.ParseColor(r.BackColor); err != nil {
		return opts, fmt.Errorf("back_color: %w", err)
	}
	if opts.LabelPosition, err = layout.ParseLabelPosition(r.LabelPosition); err != nil {
		return opts, fmt.Errorf("label_position: %w", err)
	}
	if opts.Alignment, err = layout.ParseAlignment(r.Alignment); err != nil {
		return opts, fmt.Errorf("alignment: %w", err)
	}
	if opts.Format != barcode.FormatPDF {
		if _, err := barcode.ParseFormat(opts.Format); err != nil {
			return opts, fmt.Errorf("format: %w", err)
		}
	}
	return opts, opts.Validate()
}
