package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ByLCY/barlabel/barcode"
	"github.com/ByLCY/barlabel/fonts"
	"github.com/ByLCY/barlabel/internal/batch"
	"github.com/ByLCY/barlabel/layout"
	"github.com/ByLCY/barlabel/symbology"
)

// optionFlags are string flags whose names match barcode.Options.Set keys.
var optionFlags = []struct {
	name  string
	usage string
}{
	{"width", "image width (px, or with mm/cm/in/pt units)"},
	{"height", "image height (px, or with mm/cm/in/pt units)"},
	{"dpi", "resolution used for unit conversion and font sizing"},
	{"label", "alternate label text instead of the encoded data"},
	{"show-label", "draw the human-readable label (true/false)"},
	{"font", "label font: embed:<name>, builtin:<name> or a font file path"},
	{"style", "label font style (regular, bold, italic, semibold)"},
	{"size", "label font size in pt"},
	{"position", "label position (top-left, top-center, top-right, bottom-left, bottom-center, bottom-right)"},
	{"align", "barcode alignment within the image (left, center, right)"},
	{"fore", "bar and text colour (#rrggbb)"},
	{"back", "background colour (#rrggbb)"},
	{"rotate", "rotation in degrees counter-clockwise (0, 90, 180, 270)"},
	{"flip", "flip the output (none, h, v, hv)"},
}

func addOptionFlags(fs *pflag.FlagSet) {
	for _, f := range optionFlags {
		fs.String(f.name, "", f.usage)
	}
}

// applyOptionFlags overrides opts with every option flag set on the command line.
// dpi goes first so that unit lengths convert at the requested resolution.
func applyOptionFlags(fs *pflag.FlagSet, opts *barcode.Options) error {
	if fs.Changed("dpi") {
		v, _ := fs.GetString("dpi")
		if err := opts.Set("dpi", v); err != nil {
			return fmt.Errorf("--dpi: %w", err)
		}
	}
	for _, f := range optionFlags {
		if f.name == "dpi" || !fs.Changed(f.name) {
			continue
		}
		v, _ := fs.GetString(f.name)
		if err := opts.Set(f.name, v); err != nil {
			return fmt.Errorf("--%s: %w", f.name, err)
		}
	}
	return nil
}

func newRenderCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <type> <data> | --from-report <file>",
		Short: "Render a single barcode to an image or PDF",
		Long: `Render encodes data with the given symbology and writes the image.
The output format follows the file extension of --output unless --format is set.
Use --output - to write to stdout. --from-report re-renders a barcode from a
report written by --report; option flags still override it.

Supported types: ` + strings.Join(symbologyNames(), ", ") + `
Embedded fonts:  ` + strings.Join(fonts.Names(), ", "),
		Example: `  barlabel render ean13 590123412345 -o ean.png
  barlabel render upca 03600029145 --size 12 --report upc.yaml -o upc.jpg
  barlabel render itf14 1540014128876 --width 60mm --dpi 300 -o itf.pdf`,
		Args: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("from-report") {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, args)
		},
	}

	fs := cmd.Flags()
	addOptionFlags(fs)
	fs.StringP("output", "o", "barcode.png", "output file, or - for stdout")
	fs.String("format", "", "output format (png, jpg, gif, tif, bmp, pdf); defaults to the output extension")
	fs.String("report", "", "write a render report (.json or .yaml)")
	fs.String("debug", "", "write the label draw plan as JSON")
	fs.String("from-report", "", "re-render the barcode described by a saved report instead of <type> <data>")
	return cmd
}

func runRender(cmd *cobra.Command, root *rootOptions, args []string) error {
	fs := cmd.Flags()
	var (
		sym  layout.Symbology
		data string
		opts barcode.Options
		err  error
	)
	if path, _ := fs.GetString("from-report"); path != "" {
		sym, data, opts, err = fromReport(path)
	} else {
		data = args[1]
		if sym, err = symbology.Parse(args[0]); err == nil {
			opts, err = root.cfg.Render.Options()
		}
	}
	if err != nil {
		return err
	}
	if err := applyOptionFlags(fs, &opts); err != nil {
		return err
	}

	output, _ := fs.GetString("output")
	format, _ := fs.GetString("format")
	if format == "" && output != "-" {
		format = batch.Format(output, opts.Format)
	}
	if format == "" {
		format = opts.Format
	}
	opts.Format = strings.ToLower(strings.TrimPrefix(format, "."))

	gen := root.generator("")
	res, err := gen.Encode(data, sym, opts)
	if err != nil {
		return err
	}

	if err := writeOutput(output, cmd.OutOrStdout(), func(w io.Writer) error {
		return gen.Write(w, res, opts.Format)
	}); err != nil {
		return err
	}

	if path, _ := fs.GetString("report"); path != "" {
		if err := writeReport(res.Report, path); err != nil {
			return err
		}
	}
	if path, _ := fs.GetString("debug"); path != "" {
		if err := writeDebug(gen, res, path); err != nil {
			return err
		}
	}
	if output != "-" {
		root.logger.Info("Barcode written", "type", sym, "data", res.Report.Data, "output", output)
	}
	return nil
}

// fromReport restores symbology, raw data and options from a JSON or YAML report.
func fromReport(path string) (layout.Symbology, string, barcode.Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", barcode.Options{}, fmt.Errorf("读取报告失败: %w", err)
	}
	rep, err := barcode.ParseReport(raw)
	if err != nil {
		return "", "", barcode.Options{}, err
	}
	sym, err := symbology.Parse(rep.Type)
	if err != nil {
		return "", "", barcode.Options{}, err
	}
	opts, err := rep.Options()
	if err != nil {
		return "", "", barcode.Options{}, fmt.Errorf("报告 %s: %w", path, err)
	}
	return sym, rep.RawData, opts, nil
}

// writeOutput opens path (or uses stdout for "-") and hands it to write.
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeReport(r barcode.Report, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = r.YAML()
	default:
		data, err = r.JSON()
	}
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入报告失败: %w", err)
	}
	return nil
}

func writeDebug(gen *barcode.Generator, res *barcode.Result, path string) error {
	plans, err := gen.Plans(res)
	if err != nil {
		return fmt.Errorf("重算绘制计划失败: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
	}
	if err := layout.WriteDebugJSON(plans[len(plans)-1], path); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func symbologyNames() []string {
	var names []string
	for _, s := range layout.Symbologies() {
		names = append(names, string(s))
	}
	return names
}
