package dsl

import (
	"fmt"
	"strings"

	"github.com/ByLCY/barlabel/barcode"
	"github.com/ByLCY/barlabel/binding"
	"github.com/ByLCY/barlabel/layout"
	"github.com/ByLCY/barlabel/symbology"
)

// Job 是展开、绑定后的单个生成任务。
type Job struct {
	Name    string
	Type    layout.Symbology
	Data    string
	Out     string
	Options barcode.Options
	Line    int
}

// Compile 把文档展开成任务列表。base 为 defaults 之前的缺省值，data 为绑定数据，可为 nil。
// 所有占位符都必须能解析（或带 fallback），否则返回错误。
func Compile(doc *Document, base barcode.Options, data any) ([]Job, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	defaults := base
	var jobs []Job
	for _, sec := range doc.Sections {
		switch {
		case sec.Defaults != nil:
			opts, _, err := applyBlock(defaults, sec.Defaults.Block, data)
			if err != nil {
				return nil, fmt.Errorf("defaults: %w", err)
			}
			defaults = opts
		case sec.Barcode != nil:
			job, err := compileBarcode(sec.Barcode, defaults, data)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job)
		case sec.Each != nil:
			items, err := binding.List(data, string(sec.Each.Path))
			if err != nil {
				return nil, fmt.Errorf("line %d: each: %w", sec.Each.Pos.Line, err)
			}
			for i, item := range items {
				scope := binding.With(binding.With(data, sec.Each.Var, item), "index", i)
				for _, bc := range sec.Each.Barcodes {
					job, err := compileBarcode(bc, defaults, scope)
					if err != nil {
						return nil, fmt.Errorf("each %s[%d]: %w", sec.Each.Path, i, err)
					}
					jobs = append(jobs, job)
				}
			}
		}
	}
	for i := range jobs {
		if jobs[i].Out == "" {
			jobs[i].Out = fmt.Sprintf("%s-%03d.%s", strings.ToLower(doc.Name), i+1, outputExt(jobs[i].Options.Format))
		}
	}
	return jobs, nil
}

func outputExt(format string) string {
	if format == "" {
		return "png"
	}
	return strings.ToLower(strings.TrimPrefix(format, "."))
}

func compileBarcode(bc *BarcodeSection, defaults barcode.Options, data any) (Job, error) {
	line := bc.Pos.Line
	sym, err := symbology.Parse(bc.Type)
	if err != nil {
		return Job{}, fmt.Errorf("line %d: %w", line, err)
	}
	value, err := binding.InterpolateStrict(string(bc.Data), data)
	if err != nil {
		return Job{}, fmt.Errorf("line %d: %w", line, err)
	}
	opts, out, err := applyBlock(defaults, bc.Block, data)
	if err != nil {
		return Job{}, fmt.Errorf("line %d: %w", line, err)
	}
	return Job{
		Name:    fmt.Sprintf("%s %s", sym, value),
		Type:    sym,
		Data:    value,
		Out:     out,
		Options: opts,
		Line:    line,
	}, nil
}

// applyBlock 在 opts 副本上应用属性块，返回新选项与 out 路径。
func applyBlock(opts barcode.Options, block *Block, data any) (barcode.Options, string, error) {
	var out string
	if block == nil {
		return opts, out, nil
	}
	for _, a := range block.Assignments {
		raw, err := binding.InterpolateStrict(a.Value.Raw(), data)
		if err != nil {
			return opts, out, fmt.Errorf("%s: %w", a.Key, err)
		}
		if a.Key == "out" {
			out = raw
			continue
		}
		if err := opts.Set(a.Key, raw); err != nil {
			return opts, out, fmt.Errorf("line %d: %s: %w", a.Pos.Line, a.Key, err)
		}
	}
	return opts, out, nil
}
