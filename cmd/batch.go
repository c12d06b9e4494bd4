package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/barlabel/dsl"
	"github.com/ByLCY/barlabel/internal/batch"
)

func newBatchCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Render every barcode declared in a batch file",
		Long: `Batch parses a batch file, binds ${path} placeholders against the data file
(JSON or YAML) and renders the resulting barcodes with a worker pool.

Example batch file:

  batch Retail {
    defaults { width: 300  height: 150  size: 10 }
    barcode EAN13 "590123412345" { position: bottom-center  out: "ean.png" }
    each "items" as item {
      barcode CODE128 "${item.sku}" { label: "${item.name|unnamed}"  out: "${item.sku}.png" }
    }
  }`,
		Example: `  barlabel batch labels.barlabel --data items.json --out-dir out/
  barlabel batch labels.barlabel --workers 8 --continue-on-error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, root, args[0])
		},
	}

	fs := cmd.Flags()
	fs.String("data", "", "JSON or YAML file bound to ${...} placeholders")
	fs.IntP("workers", "w", 0, "number of parallel workers (default from config)")
	fs.Bool("continue-on-error", false, "keep rendering after a barcode fails")
	fs.String("out-dir", "", "directory for outputs (default from config)")
	fs.Bool("dry-run", false, "list the compiled jobs without rendering")

	v := root.loader.Viper()
	_ = v.BindPFlag("batch.workers", fs.Lookup("workers"))
	_ = v.BindPFlag("batch.continue_on_error", fs.Lookup("continue-on-error"))
	_ = v.BindPFlag("batch.output_dir", fs.Lookup("out-dir"))
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootOptions, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("无法打开批处理文件 %s: %w", path, err)
	}
	doc, err := dsl.Parse(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("解析批处理文件失败: %w", err)
	}

	var data any
	if dataPath, _ := cmd.Flags().GetString("data"); dataPath != "" {
		if data, err = loadData(dataPath); err != nil {
			return err
		}
	}

	base, err := root.cfg.Render.Options()
	if err != nil {
		return fmt.Errorf("invalid render configuration: %w", err)
	}
	jobs, err := dsl.Compile(doc, base, data)
	if err != nil {
		return fmt.Errorf("展开批处理任务失败: %w", err)
	}

	out := cmd.OutOrStdout()
	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		for _, job := range jobs {
			fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", job.Line, job.Type, job.Data, job.Out)
		}
		return nil
	}

	cfg := root.cfg.Batch
	summary, err := batch.Run(cmd.Context(), root.generator(filepath.Dir(path)), jobs, batch.Config{
		Workers:         cfg.Workers,
		ContinueOnError: cfg.ContinueOnError,
		OutputDir:       cfg.OutputDir,
		Logger:          root.logger.With("batch", doc.Name),
	})
	if summary != nil {
		fmt.Fprintf(out, "%s: %d/%d barcodes written", doc.Name, summary.Succeeded, len(jobs))
		if summary.Failed > 0 || summary.Skipped > 0 {
			fmt.Fprintf(out, " (%d failed, %d skipped)", summary.Failed, summary.Skipped)
		}
		fmt.Fprintln(out)
	}
	return err
}

// loadData reads the binding data; .yaml/.yml files are decoded as YAML, anything else as JSON.
func loadData(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}
	var data any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &data)
	default:
		err = json.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("解析数据文件 %s 失败: %w", path, err)
	}
	return data, nil
}
