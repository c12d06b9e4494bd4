// Package barcode 把编码、条纹绘制、标签绘制与输出方向串成一次生成。
package barcode

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/barlabel/layout"
	"github.com/ByLCY/barlabel/renderer"
	"github.com/ByLCY/barlabel/symbology"
)

// Generator 持有渲染引擎；引擎需支持并发调用时 Generator 也可并发使用。
type Generator struct {
	engine renderer.Engine
	now    func() time.Time
}

// NewGenerator 使用给定引擎创建生成器。
func NewGenerator(engine renderer.Engine) *Generator {
	return &Generator{engine: engine, now: time.Now}
}

// Result 是一次生成的产物。Barcode 保存未旋转时的描述，可用于重算绘制计划。
type Result struct {
	Image   *image.NRGBA
	Barcode *layout.Barcode
	Options Options
	Report  Report
}

// Encode 编码 data 并绘制条纹与标签，最后按选项旋转、翻转。
func (g *Generator) Encode(data string, sym layout.Symbology, opts Options) (*Result, error) {
	if g.engine == nil {
		return nil, fmt.Errorf("生成器缺少渲染引擎")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start := g.now()

	enc, err := symbology.Encode(sym, data)
	if err != nil {
		return nil, err
	}
	b := descriptor(enc, opts)

	img := imaging.New(opts.Width, opts.Height, toColor(opts.BackColor))
	bars, err := layout.Bars(b, opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("绘制条纹失败: %w", err)
	}
	if err := g.engine.Render(bars, img); err != nil {
		return nil, fmt.Errorf("绘制条纹失败: %w", err)
	}
	if opts.IncludeLabel {
		if _, err := renderer.Label(b, img, g.engine); err != nil {
			return nil, err
		}
	}
	out := orient(img, opts)
	elapsed := g.now().Sub(start)

	Logger().Debug("barcode generated",
		"type", string(sym),
		"modules", len(enc.Value),
		"width", out.Bounds().Dx(),
		"height", out.Bounds().Dy(),
		"elapsed", elapsed,
	)
	return &Result{
		Image:   out,
		Barcode: b,
		Options: opts,
		Report:  newReport(data, enc, b, opts, out.Bounds(), elapsed),
	}, nil
}

// Plans 重新计算未旋转图像上的条纹与标签绘制计划。
func (g *Generator) Plans(res *Result) ([]*layout.Plan, error) {
	if res == nil || res.Barcode == nil {
		return nil, fmt.Errorf("生成结果为空")
	}
	b := res.Barcode
	bars, err := layout.Bars(b, b.Width, b.Height)
	if err != nil {
		return nil, err
	}
	plans := []*layout.Plan{bars}
	if res.Options.IncludeLabel {
		label, err := layout.Layout(b, b.Width, b.Height, g.engine)
		if err != nil {
			return nil, err
		}
		plans = append(plans, label)
	}
	return plans, nil
}

func descriptor(enc *symbology.Encoded, opts Options) *layout.Barcode {
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = layout.DefaultDPI
	}
	return &layout.Barcode{
		Type:                 enc.Symbology,
		Data:                 enc.Data,
		EncodedValue:         enc.Value,
		AlternateLabel:       opts.AlternateLabel,
		Width:                opts.Width,
		Height:               opts.Height,
		ForeColor:            opts.ForeColor,
		BackColor:            opts.BackColor,
		LabelFont:            opts.LabelFont,
		LabelFontSize:        opts.LabelFontSize,
		LabelPosition:        opts.LabelPosition,
		Alignment:            opts.Alignment,
		HorizontalResolution: dpi,
		VerticalResolution:   dpi,
	}
}

// orient 先旋转再翻转。
func orient(img *image.NRGBA, opts Options) *image.NRGBA {
	out := img
	switch opts.Rotate {
	case 90:
		out = imaging.Rotate90(out)
	case 180:
		out = imaging.Rotate180(out)
	case 270:
		out = imaging.Rotate270(out)
	}
	if opts.FlipH {
		out = imaging.FlipH(out)
	}
	if opts.FlipV {
		out = imaging.FlipV(out)
	}
	return out
}

func newReport(raw string, enc *symbology.Encoded, b *layout.Barcode, opts Options, bounds image.Rectangle, elapsed time.Duration) Report {
	return Report{
		Type:          string(enc.Symbology),
		RawData:       raw,
		Data:          enc.Data,
		EncodedValue:  enc.Value,
		CheckSum:      enc.CheckSum,
		EncodingTime:  float64(elapsed.Microseconds()) / 1000,
		IncludeLabel:  opts.IncludeLabel,
		Label:         opts.AlternateLabel,
		LabelFont:     opts.LabelFont.Src,
		LabelFontSize: b.LabelFontSize,
		LabelPosition: opts.LabelPosition.String(),
		Alignment:     opts.Alignment.String(),
		ForeColor:     opts.ForeColor.Hex(),
		BackColor:     opts.BackColor.Hex(),
		ImageWidth:    bounds.Dx(),
		ImageHeight:   bounds.Dy(),
		DPI:           b.DPI(),
		Rotate:        opts.Rotate,
		FlipH:         opts.FlipH,
		FlipV:         opts.FlipV,
		ImageFormat:   opts.Format,
	}
}

func toColor(c layout.Color) color.NRGBA {
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}
}
