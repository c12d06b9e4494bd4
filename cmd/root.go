package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/barlabel/barcode"
	"github.com/ByLCY/barlabel/internal/config"
	canvasrenderer "github.com/ByLCY/barlabel/renderer/canvas"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

// rootOptions is shared by every subcommand.
type rootOptions struct {
	cfgFile string
	loader  *config.Loader
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCommand builds a fresh command tree with its own configuration loader.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{loader: config.NewLoader(nil)}

	cmd := &cobra.Command{
		Use:   "barlabel",
		Short: "Barcode image generator with human-readable labels",
		Long: `barlabel encodes data into 1D barcodes and draws the human-readable label
the way retail printers expect: EAN-13 and UPC-A digits split around the guard
bars, ITF-14 with its bearer frame, and a generic label for everything else.

Examples:
  barlabel render ean13 590123412345 -o ean.png
  barlabel render code128 HELLO --position top-center --format pdf -o hello.pdf
  barlabel batch labels.barlabel --data items.json --out-dir out/
  barlabel serve --port 8080`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is search in ., $XDG_CONFIG_HOME/barlabel, /etc/barlabel)")
	flags.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, text)")
	flags.String("font-dir", "", "directory used to resolve relative font paths")

	v := opts.loader.Viper()
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log_format", flags.Lookup("log-format"))
	_ = v.BindPFlag("font_dir", flags.Lookup("font-dir"))
	_ = v.BindPFlag("verbose", flags.Lookup("verbose"))

	cmd.AddCommand(
		newRenderCommand(opts),
		newBatchCommand(opts),
		newServeCommand(opts),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// init loads the configuration and installs the structured logger.
func (o *rootOptions) init(stderr io.Writer) error {
	cfg, err := o.loader.LoadWithFile(o.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	o.cfg = cfg

	level := parseLevel(cfg.LogLevel)
	if o.loader.Viper().GetBool("verbose") {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		handler = slog.NewTextHandler(stderr, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(stderr, handlerOpts)
	}
	o.logger = slog.New(handler)
	slog.SetDefault(o.logger)
	barcode.SetLogger(o.logger.With("component", "barcode"))

	if path := o.loader.ConfigFileUsed(); path != "" {
		o.logger.Debug("Configuration loaded", "file", path)
	}
	return nil
}

// generator creates a barcode generator whose relative font paths resolve
// against font_dir, or fallbackDir when font_dir is unset. Fonts named in the
// configuration are injected as builtin:<name>.
func (o *rootOptions) generator(fallbackDir string) *barcode.Generator {
	opts := canvasrenderer.Options{BaseDir: fallbackDir}
	if o.cfg != nil {
		if o.cfg.FontDir != "" {
			opts.BaseDir = o.cfg.FontDir
		}
		opts.Fonts = make(map[string]canvasrenderer.Resource, len(o.cfg.Fonts))
		for name, path := range o.cfg.Fonts {
			if !filepath.IsAbs(path) && o.cfg.FontDir != "" {
				path = filepath.Join(o.cfg.FontDir, path)
			}
			opts.Fonts[name] = canvasrenderer.Resource{Path: path}
		}
	}
	return barcode.NewGenerator(canvasrenderer.NewRendererWithOptions(opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
