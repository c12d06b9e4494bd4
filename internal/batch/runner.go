// Package batch renders compiled batch jobs with a worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/barlabel/barcode"
	"github.com/ByLCY/barlabel/dsl"
	"github.com/ByLCY/barlabel/layout"
)

// ErrOutsideOutputDir is returned for job outputs that would escape the output directory.
var ErrOutsideOutputDir = errors.New("output path must stay inside the output directory")

// Generator is what the runner needs from barcode.Generator.
type Generator interface {
	Encode(data string, sym layout.Symbology, opts barcode.Options) (*barcode.Result, error)
	Write(w io.Writer, res *barcode.Result, format string) error
}

// Config controls a batch run.
type Config struct {
	Workers         int    // 0 = runtime.NumCPU()
	ContinueOnError bool   // keep rendering after a failed job
	OutputDir       string // job outputs are relative to this directory
	Logger          *slog.Logger
}

// Result is the outcome of one job.
type Result struct {
	Job      dsl.Job
	Path     string
	Report   barcode.Report
	Duration time.Duration
	Err      error
}

// Summary aggregates a batch run. Results keep the job order.
type Summary struct {
	Results   []Result
	Succeeded int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// Run renders jobs in parallel. Without ContinueOnError the first failure cancels
// the jobs not yet started; they are reported as skipped.
// The returned error joins every job failure.
func Run(ctx context.Context, gen Generator, jobs []dsl.Job, cfg Config) (*Summary, error) {
	if gen == nil {
		return nil, errors.New("batch runner requires a generator")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	start := time.Now()
	summary := &Summary{Results: make([]Result, len(jobs))}
	if len(jobs) == 0 {
		return summary, nil
	}

	// 每个下标只由一个 goroutine 写入，无需加锁。
	done := make([]bool, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)
	for i, job := range jobs {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if egCtx.Err() != nil {
				return nil
			}
			res := renderJob(gen, job, cfg.OutputDir)
			summary.Results[i] = res
			done[i] = true
			if res.Err != nil && !cfg.ContinueOnError {
				return res.Err
			}
			return nil
		})
	}
	firstErr := eg.Wait()

	var errs []error
	processed := 0
	for i, job := range jobs {
		res := &summary.Results[i]
		switch {
		case !done[i]:
			res.Job = job
			res.Err = context.Canceled
			summary.Skipped++
		case res.Err != nil:
			processed++
			summary.Failed++
			errs = append(errs, fmt.Errorf("line %d (%s): %w", job.Line, job.Name, res.Err))
			cfg.Logger.Error("Barcode failed", "line", job.Line, "name", job.Name, "error", res.Err)
		default:
			processed++
			summary.Succeeded++
			cfg.Logger.Debug("Barcode written", "name", job.Name, "output", res.Path, "duration", res.Duration)
		}
	}
	summary.Duration = time.Since(start)
	cfg.Logger.Info("Batch finished",
		"jobs", len(jobs),
		"processed", processed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", summary.Duration,
	)
	if len(errs) == 0 {
		if firstErr != nil {
			return summary, firstErr
		}
		// 外部取消，没有任务失败。
		return summary, ctx.Err()
	}
	return summary, errors.Join(errs...)
}

func renderJob(gen Generator, job dsl.Job, outDir string) Result {
	start := time.Now()
	res := Result{Job: job, Path: filepath.Join(outDir, job.Out)}
	if !filepath.IsLocal(job.Out) {
		res.Err = fmt.Errorf("%w: %q", ErrOutsideOutputDir, job.Out)
		return res
	}
	out, err := gen.Encode(job.Data, job.Type, job.Options)
	if err != nil {
		res.Err = err
		return res
	}
	res.Report = out.Report
	res.Err = writeFile(res.Path, func(w io.Writer) error {
		return gen.Write(w, out, Format(job.Out, job.Options.Format))
	})
	res.Duration = time.Since(start)
	return res
}

// Format picks the output format from path's extension, or fallback when it has none.
func Format(path, fallback string) string {
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if fallback == "" {
		return "png"
	}
	return fallback
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
